package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"jobboard-api/internal/mailer"
	"jobboard-api/internal/models"
	"jobboard-api/internal/storage"
	"jobboard-api/internal/transport/dto"
)

// PasswordResetOptions configures the forgot/reset password flow.
type PasswordResetOptions struct {
	TokenTTL time.Duration
	URLBase  string // the raw token is appended as the last path segment
}

type userService struct {
	repo     storage.UserRepository
	tokens   *TokenManager
	denylist storage.TokenDenylist
	mailer   mailer.Mailer
	reset    PasswordResetOptions
	logger   *zap.Logger
}

// NewUserService creates a new instance of UserService.
func NewUserService(
	repo storage.UserRepository,
	tokens *TokenManager,
	denylist storage.TokenDenylist,
	m mailer.Mailer,
	reset PasswordResetOptions,
	logger *zap.Logger,
) UserService {
	return &userService{
		repo:     repo,
		tokens:   tokens,
		denylist: denylist,
		mailer:   m,
		reset:    reset,
		logger:   logger,
	}
}

func (s *userService) Register(ctx context.Context, req *dto.RegisterRequest) (*models.User, *IssuedToken, error) {
	role := models.RoleSeeker
	if req.Role != "" {
		role = models.Role(req.Role)
	}
	if role == models.RoleAdmin || !role.Valid() {
		return nil, nil, newError(ErrValidation, fmt.Sprintf("Role %q can not be registered", req.Role))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.repo.Create(ctx, &models.User{
		ID:           uuid.New(),
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.TrimSpace(req.Email),
		Role:         role,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		return nil, nil, mapRepoError(s.logger, err, "creating user", nil)
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, nil, err
	}
	s.logger.Info("User registered", zap.String("user_id", user.ID.String()), zap.String("role", string(user.Role)))
	return user, token, nil
}

func (s *userService) Login(ctx context.Context, req *dto.LoginRequest) (*models.User, *IssuedToken, error) {
	user, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.logger.Info("Login failed: unknown email")
			return nil, nil, ErrBadLogin
		}
		return nil, nil, mapRepoError(s.logger, err, "fetching user for login", nil)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Info("Login failed: invalid password", zap.String("user_id", user.ID.String()))
		return nil, nil, ErrBadLogin
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, nil, err
	}
	return user, token, nil
}

// Authenticate resolves a session token to its user. Revoked tokens and tokens of deleted users are rejected.
func (s *userService) Authenticate(ctx context.Context, token string) (*models.User, *TokenClaims, error) {
	if token == "" {
		return nil, nil, ErrLoginRequired
	}
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, nil, err
	}

	revoked, err := s.denylist.IsRevoked(ctx, claims.ID)
	if err != nil {
		s.logger.Error("Failed to check token denylist", zap.Error(err))
		return nil, nil, fmt.Errorf("failed to check token: %w", err)
	}
	if revoked {
		return nil, nil, ErrInvalidToken
	}

	userID, _ := claims.UserID()
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, nil, mapRepoError(s.logger, err, "loading token user", ErrUserGone)
	}
	return user, claims, nil
}

// Logout revokes the token until it would have expired anyway.
func (s *userService) Logout(ctx context.Context, claims *TokenClaims) error {
	if claims == nil || claims.ExpiresAt == nil {
		return nil
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if err := s.denylist.Revoke(ctx, claims.ID, ttl); err != nil {
		s.logger.Error("Failed to revoke token", zap.String("subject", claims.Subject), zap.Error(err))
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

func (s *userService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(s.logger, err, "getting user", ErrUserNotFound)
	}
	return user, nil
}

func (s *userService) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, mapRepoError(s.logger, err, "listing users", nil)
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}

func (s *userService) UpdateProfile(ctx context.Context, actor *models.User, req *dto.UpdateProfileRequest) (*models.User, error) {
	if actor == nil {
		return nil, ErrLoginRequired
	}
	user := *actor
	user.Name = strings.TrimSpace(req.Name)
	user.Email = strings.TrimSpace(req.Email)

	updated, err := s.repo.Update(ctx, &user)
	if err != nil {
		return nil, mapRepoError(s.logger, err, "updating profile", ErrUserNotFound)
	}
	return updated, nil
}

func (s *userService) UpdatePassword(ctx context.Context, actor *models.User, req *dto.UpdatePasswordRequest) (*IssuedToken, error) {
	if actor == nil {
		return nil, ErrLoginRequired
	}
	user, err := s.repo.GetByID(ctx, actor.ID)
	if err != nil {
		return nil, mapRepoError(s.logger, err, "fetching user for password update", ErrUserNotFound)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return nil, ErrWrongPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.repo.UpdatePassword(ctx, user.ID, string(hash)); err != nil {
		return nil, mapRepoError(s.logger, err, "updating password", ErrUserNotFound)
	}
	return s.tokens.Issue(user.ID)
}

// ForgotPassword stores a hashed reset token and mails the raw one.
func (s *userService) ForgotPassword(ctx context.Context, req *dto.ForgotPasswordRequest) error {
	user, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		return mapRepoError(s.logger, err, "fetching user for password reset", ErrUserNotFound)
	}

	raw, err := newResetToken()
	if err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}
	hashed := hashResetToken(raw)
	expire := time.Now().Add(s.reset.TokenTTL)
	if err := s.repo.SetResetToken(ctx, user.ID, &hashed, &expire); err != nil {
		return mapRepoError(s.logger, err, "saving reset token", ErrUserNotFound)
	}

	resetURL := strings.TrimRight(s.reset.URLBase, "/") + "/" + raw
	msg := mailer.Message{
		To:      user.Email,
		Subject: "Job board password recovery",
		Body: fmt.Sprintf("Your password reset link is as follow:\n\n%s\n\n"+
			"If you have not requested this, then please ignore that.", resetURL),
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		s.logger.Error("Failed to send reset email", zap.String("user_id", user.ID.String()), zap.Error(err))
		if clearErr := s.repo.SetResetToken(ctx, user.ID, nil, nil); clearErr != nil {
			s.logger.Warn("Failed to clear reset token", zap.String("user_id", user.ID.String()), zap.Error(clearErr))
		}
		return ErrEmailNotSent
	}

	s.logger.Info("Password reset email sent", zap.String("user_id", user.ID.String()))
	return nil
}

// ResetPassword consumes an unexpired reset token and signs the user in.
func (s *userService) ResetPassword(ctx context.Context, token string, req *dto.ResetPasswordRequest) (*models.User, *IssuedToken, error) {
	if req.Password != req.ConfirmPassword {
		return nil, nil, ErrPasswordMismatch
	}
	if token == "" {
		return nil, nil, ErrInvalidResetToken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.repo.ConsumeResetToken(ctx, hashResetToken(token), string(hash), time.Now())
	if err != nil {
		return nil, nil, mapRepoError(s.logger, err, "consuming reset token", ErrInvalidResetToken)
	}

	issued, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, nil, err
	}
	return user, issued, nil
}

func newResetToken() (string, error) {
	b := make([]byte, 20)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func hashResetToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
