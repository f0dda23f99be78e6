package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"jobboard-api/internal/models"
	"jobboard-api/internal/storage"
)

const userColumns = `id, name, email, role, password_hash, reset_password_token, reset_password_expire, created_at`

// UserRepo implements the storage.UserRepository interface using PostgreSQL.
type UserRepo struct {
	db     Querier
	logger *zap.Logger
}

// NewUserRepo creates a new UserRepo.
func NewUserRepo(db *pgxpool.Pool, logger *zap.Logger) *UserRepo {
	return &UserRepo{db: db, logger: logger}
}

func (r *UserRepo) WithTx(tx pgx.Tx) storage.UserRepository {
	return &UserRepo{db: tx, logger: r.logger}
}

var _ storage.UserRepository = (*UserRepo)(nil)

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	var role string
	err := row.Scan(&u.ID, &u.Name, &u.Email, &role, &u.PasswordHash, &u.ResetPasswordToken, &u.ResetPasswordExpire, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	u.Role = models.Role(role)
	return &u, nil
}

// Create inserts a user. The password must already be hashed.
func (r *UserRepo) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query := `
		INSERT INTO users (id, name, email, role, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + userColumns

	created, err := scanUser(r.db.QueryRow(ctx, query,
		user.ID, user.Name, user.Email, string(user.Role), user.PasswordHash, user.CreatedAt))
	if err != nil {
		if pgErrorCode(err) == pgUniqueViolation {
			r.logger.Debug("Attempted to create user with duplicate email", zap.String("email", user.Email))
			return nil, storage.ErrDuplicateEmail
		}
		r.logger.Error("Error creating user", zap.String("email", user.Email), zap.Error(err))
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	r.logger.Info("User created", zap.String("user_id", created.ID.String()))
	return created, nil
}

// GetByID retrieves a single user by ID.
func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		r.logger.Error("Error getting user by ID", zap.String("user_id", id.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to get user %s: %w", id, err)
	}
	return u, err
}

// GetByEmail retrieves a single user by email, case-insensitively.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email))
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		r.logger.Error("Error getting user by email", zap.Error(err))
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return u, err
}

// List returns every user ordered by name.
func (r *UserRepo) List(ctx context.Context) ([]models.User, error) {
	rows, err := r.db.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY name, id`)
	if err != nil {
		r.logger.Error("Error listing users", zap.Error(err))
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	users, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.User, error) {
		u, err := scanUser(row)
		if err != nil {
			return models.User{}, err
		}
		return *u, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan users: %w", err)
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}

// Update changes a user's name and email.
func (r *UserRepo) Update(ctx context.Context, user *models.User) (*models.User, error) {
	query := `
		UPDATE users SET name = $2, email = $3
		WHERE id = $1
		RETURNING ` + userColumns

	updated, err := scanUser(r.db.QueryRow(ctx, query, user.ID, user.Name, user.Email))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}
		if pgErrorCode(err) == pgUniqueViolation {
			return nil, storage.ErrDuplicateEmail
		}
		r.logger.Error("Error updating user", zap.String("user_id", user.ID.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to update user %s: %w", user.ID, err)
	}
	return updated, nil
}

// UpdatePassword stores a new password hash.
func (r *UserRepo) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	cmdTag, err := r.db.Exec(ctx, `UPDATE users SET password_hash = $2 WHERE id = $1`, id, passwordHash)
	if err != nil {
		r.logger.Error("Error updating password", zap.String("user_id", id.String()), zap.Error(err))
		return fmt.Errorf("failed to update password for %s: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// SetResetToken stores or clears the hashed reset token.
func (r *UserRepo) SetResetToken(ctx context.Context, id uuid.UUID, tokenHash *string, expire *time.Time) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE users SET reset_password_token = $2, reset_password_expire = $3 WHERE id = $1`,
		id, tokenHash, expire)
	if err != nil {
		r.logger.Error("Error setting reset token", zap.String("user_id", id.String()), zap.Error(err))
		return fmt.Errorf("failed to set reset token for %s: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ConsumeResetToken replaces the password of the user holding an unexpired
// token and clears the token in the same statement, so a token works once.
func (r *UserRepo) ConsumeResetToken(ctx context.Context, tokenHash, passwordHash string, now time.Time) (*models.User, error) {
	query := `
		UPDATE users
		SET password_hash = $2, reset_password_token = NULL, reset_password_expire = NULL
		WHERE reset_password_token = $1 AND reset_password_expire > $3
		RETURNING ` + userColumns

	u, err := scanUser(r.db.QueryRow(ctx, query, tokenHash, passwordHash, now))
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		r.logger.Error("Error consuming reset token", zap.Error(err))
		return nil, fmt.Errorf("failed to reset password: %w", err)
	}
	return u, err
}
