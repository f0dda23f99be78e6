package services_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"

	"jobboard-api/internal/mailer"
	"jobboard-api/internal/mocks"
	"jobboard-api/internal/models"
	"jobboard-api/internal/services"
	"jobboard-api/internal/storage"
	"jobboard-api/internal/transport/dto"
)

const testSecret = "test-secret"

type userServiceDeps struct {
	repo     *mocks.MockUserRepository
	denylist *mocks.MockTokenDenylist
	mailer   *mocks.MockMailer
	tokens   *services.TokenManager
}

func setupUserServiceTest(t *testing.T) (context.Context, services.UserService, userServiceDeps) {
	ctrl := gomock.NewController(t)
	deps := userServiceDeps{
		repo:     mocks.NewMockUserRepository(ctrl),
		denylist: mocks.NewMockTokenDenylist(ctrl),
		mailer:   mocks.NewMockMailer(ctrl),
		tokens:   services.NewTokenManager(testSecret, time.Hour),
	}
	reset := services.PasswordResetOptions{TokenTTL: 30 * time.Minute, URLBase: "http://localhost:8080/api/v1/password/reset/"}
	svc := services.NewUserService(deps.repo, deps.tokens, deps.denylist, deps.mailer, reset, zaptest.NewLogger(t))
	return context.Background(), svc, deps
}

func userWithPassword(t *testing.T, password string) *models.User {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &models.User{ID: uuid.New(), Name: "Jane", Email: "jane@example.com", Role: models.RoleSeeker, PasswordHash: string(hash)}
}

func TestUserService_Register_Success(t *testing.T) {
	ctx, svc, deps := setupUserServiceTest(t)
	req := &dto.RegisterRequest{Name: " Jane ", Email: "jane@example.com", Password: "password123"}

	deps.repo.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, u *models.User) (*models.User, error) {
		assert.Equal(t, "Jane", u.Name)
		assert.Equal(t, models.RoleSeeker, u.Role)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("password123")))
		return u, nil
	}).Times(1)

	user, token, err := svc.Register(ctx, req)

	require.NoError(t, err)
	require.NotNil(t, token)
	claims, err := deps.tokens.Parse(token.Value)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims.Subject)
}

func TestUserService_Register_RejectsAdminRole(t *testing.T) {
	ctx, svc, _ := setupUserServiceTest(t)

	_, _, err := svc.Register(ctx, &dto.RegisterRequest{Name: "Eve", Email: "eve@example.com", Password: "password123", Role: "admin"})

	assert.ErrorIs(t, err, services.ErrValidation)
}

func TestUserService_Register_DuplicateEmail(t *testing.T) {
	ctx, svc, deps := setupUserServiceTest(t)

	deps.repo.EXPECT().Create(ctx, gomock.Any()).Return(nil, storage.ErrDuplicateEmail).Times(1)

	_, _, err := svc.Register(ctx, &dto.RegisterRequest{Name: "Jane", Email: "jane@example.com", Password: "password123", Role: "employer"})

	assert.ErrorIs(t, err, services.ErrDuplicateEmail)
	assert.ErrorIs(t, err, services.ErrConflict)
}

func TestUserService_Login(t *testing.T) {
	user := userWithPassword(t, "correct-horse")

	t.Run("success", func(t *testing.T) {
		ctx, svc, deps := setupUserServiceTest(t)
		deps.repo.EXPECT().GetByEmail(ctx, user.Email).Return(user, nil).Times(1)

		got, token, err := svc.Login(ctx, &dto.LoginRequest{Email: user.Email, Password: "correct-horse"})

		require.NoError(t, err)
		assert.Equal(t, user, got)
		assert.NotEmpty(t, token.Value)
	})

	t.Run("wrong password", func(t *testing.T) {
		ctx, svc, deps := setupUserServiceTest(t)
		deps.repo.EXPECT().GetByEmail(ctx, user.Email).Return(user, nil).Times(1)

		_, _, err := svc.Login(ctx, &dto.LoginRequest{Email: user.Email, Password: "battery-staple"})

		assert.ErrorIs(t, err, services.ErrBadLogin)
		assert.ErrorIs(t, err, services.ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		ctx, svc, deps := setupUserServiceTest(t)
		deps.repo.EXPECT().GetByEmail(ctx, "nobody@example.com").Return(nil, storage.ErrNotFound).Times(1)

		_, _, err := svc.Login(ctx, &dto.LoginRequest{Email: "nobody@example.com", Password: "x"})

		assert.ErrorIs(t, err, services.ErrBadLogin)
	})
}

func TestUserService_Authenticate(t *testing.T) {
	user := userWithPassword(t, "pw")

	t.Run("valid token", func(t *testing.T) {
		ctx, svc, deps := setupUserServiceTest(t)
		token, err := deps.tokens.Issue(user.ID)
		require.NoError(t, err)

		deps.denylist.EXPECT().IsRevoked(ctx, gomock.Any()).Return(false, nil).Times(1)
		deps.repo.EXPECT().GetByID(ctx, user.ID).Return(user, nil).Times(1)

		got, claims, err := svc.Authenticate(ctx, token.Value)

		require.NoError(t, err)
		assert.Equal(t, user, got)
		assert.NotEmpty(t, claims.ID)
	})

	t.Run("missing token", func(t *testing.T) {
		ctx, svc, _ := setupUserServiceTest(t)

		_, _, err := svc.Authenticate(ctx, "")

		assert.ErrorIs(t, err, services.ErrLoginRequired)
	})

	t.Run("garbage token", func(t *testing.T) {
		ctx, svc, _ := setupUserServiceTest(t)

		_, _, err := svc.Authenticate(ctx, "not-a-jwt")

		assert.ErrorIs(t, err, services.ErrInvalidToken)
	})

	t.Run("revoked token", func(t *testing.T) {
		ctx, svc, deps := setupUserServiceTest(t)
		token, err := deps.tokens.Issue(user.ID)
		require.NoError(t, err)

		deps.denylist.EXPECT().IsRevoked(ctx, gomock.Any()).Return(true, nil).Times(1)

		_, _, err = svc.Authenticate(ctx, token.Value)

		assert.ErrorIs(t, err, services.ErrInvalidToken)
	})

	t.Run("deleted user", func(t *testing.T) {
		ctx, svc, deps := setupUserServiceTest(t)
		token, err := deps.tokens.Issue(user.ID)
		require.NoError(t, err)

		deps.denylist.EXPECT().IsRevoked(ctx, gomock.Any()).Return(false, nil).Times(1)
		deps.repo.EXPECT().GetByID(ctx, user.ID).Return(nil, storage.ErrNotFound).Times(1)

		_, _, err = svc.Authenticate(ctx, token.Value)

		assert.ErrorIs(t, err, services.ErrUserGone)
		assert.ErrorIs(t, err, services.ErrUnauthenticated)
	})
}

func TestUserService_Logout_RevokesUntilExpiry(t *testing.T) {
	ctx, svc, deps := setupUserServiceTest(t)
	token, err := deps.tokens.Issue(uuid.New())
	require.NoError(t, err)
	claims, err := deps.tokens.Parse(token.Value)
	require.NoError(t, err)

	deps.denylist.EXPECT().Revoke(ctx, claims.ID, gomock.Any()).DoAndReturn(func(_ context.Context, _ string, ttl time.Duration) error {
		assert.Greater(t, ttl, 59*time.Minute)
		assert.LessOrEqual(t, ttl, time.Hour)
		return nil
	}).Times(1)

	require.NoError(t, svc.Logout(ctx, claims))
}

func TestUserService_UpdatePassword(t *testing.T) {
	user := userWithPassword(t, "old-password")

	t.Run("wrong current password", func(t *testing.T) {
		ctx, svc, deps := setupUserServiceTest(t)
		deps.repo.EXPECT().GetByID(ctx, user.ID).Return(user, nil).Times(1)

		_, err := svc.UpdatePassword(ctx, user, &dto.UpdatePasswordRequest{CurrentPassword: "nope", NewPassword: "new-password"})

		assert.ErrorIs(t, err, services.ErrWrongPassword)
	})

	t.Run("success", func(t *testing.T) {
		ctx, svc, deps := setupUserServiceTest(t)
		deps.repo.EXPECT().GetByID(ctx, user.ID).Return(user, nil).Times(1)
		deps.repo.EXPECT().UpdatePassword(ctx, user.ID, gomock.Any()).DoAndReturn(func(_ context.Context, _ uuid.UUID, hash string) error {
			assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("new-password")))
			return nil
		}).Times(1)

		token, err := svc.UpdatePassword(ctx, user, &dto.UpdatePasswordRequest{CurrentPassword: "old-password", NewPassword: "new-password"})

		require.NoError(t, err)
		assert.NotEmpty(t, token.Value)
	})
}

func TestUserService_UpdateProfile_DuplicateEmail(t *testing.T) {
	ctx, svc, deps := setupUserServiceTest(t)
	user := userWithPassword(t, "pw")

	deps.repo.EXPECT().Update(ctx, gomock.Any()).Return(nil, storage.ErrDuplicateEmail).Times(1)

	_, err := svc.UpdateProfile(ctx, user, &dto.UpdateProfileRequest{Name: "Jane", Email: "taken@example.com"})

	assert.ErrorIs(t, err, services.ErrDuplicateEmail)
	assert.Equal(t, "jane@example.com", user.Email)
}

func TestUserService_ForgotPassword_MailsRawTokenStoresHash(t *testing.T) {
	ctx, svc, deps := setupUserServiceTest(t)
	user := userWithPassword(t, "pw")

	var storedHash string
	deps.repo.EXPECT().GetByEmail(ctx, user.Email).Return(user, nil).Times(1)
	deps.repo.EXPECT().SetResetToken(ctx, user.ID, gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, _ uuid.UUID, hash *string, expire *time.Time) error {
			require.NotNil(t, hash)
			require.NotNil(t, expire)
			assert.WithinDuration(t, time.Now().Add(30*time.Minute), *expire, 5*time.Second)
			storedHash = *hash
			return nil
		}).Times(1)
	deps.mailer.EXPECT().Send(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, msg mailer.Message) error {
		assert.Equal(t, user.Email, msg.To)
		prefix := "http://localhost:8080/api/v1/password/reset/"
		idx := strings.Index(msg.Body, prefix)
		require.GreaterOrEqual(t, idx, 0)
		raw := strings.Fields(msg.Body[idx+len(prefix):])[0]
		assert.Len(t, raw, 40)
		sum := sha256.Sum256([]byte(raw))
		assert.Equal(t, hex.EncodeToString(sum[:]), storedHash)
		return nil
	}).Times(1)

	require.NoError(t, svc.ForgotPassword(ctx, &dto.ForgotPasswordRequest{Email: user.Email}))
}

func TestUserService_ForgotPassword_MailFailureClearsToken(t *testing.T) {
	ctx, svc, deps := setupUserServiceTest(t)
	user := userWithPassword(t, "pw")

	gomock.InOrder(
		deps.repo.EXPECT().GetByEmail(ctx, user.Email).Return(user, nil),
		deps.repo.EXPECT().SetResetToken(ctx, user.ID, gomock.Not(gomock.Nil()), gomock.Not(gomock.Nil())).Return(nil),
		deps.mailer.EXPECT().Send(ctx, gomock.Any()).Return(errors.New("smtp down")),
		deps.repo.EXPECT().SetResetToken(ctx, user.ID, gomock.Nil(), gomock.Nil()).Return(nil),
	)

	err := svc.ForgotPassword(ctx, &dto.ForgotPasswordRequest{Email: user.Email})

	assert.ErrorIs(t, err, services.ErrEmailNotSent)
	assert.Equal(t, "Email is not sent.", err.Error())
}

func TestUserService_ForgotPassword_UnknownEmail(t *testing.T) {
	ctx, svc, deps := setupUserServiceTest(t)

	deps.repo.EXPECT().GetByEmail(ctx, "ghost@example.com").Return(nil, storage.ErrNotFound).Times(1)

	err := svc.ForgotPassword(ctx, &dto.ForgotPasswordRequest{Email: "ghost@example.com"})

	assert.ErrorIs(t, err, services.ErrUserNotFound)
}

func TestUserService_ResetPassword(t *testing.T) {
	raw := "0123456789abcdef0123456789abcdef01234567"
	sum := sha256.Sum256([]byte(raw))
	hashed := hex.EncodeToString(sum[:])

	t.Run("mismatch", func(t *testing.T) {
		ctx, svc, _ := setupUserServiceTest(t)

		_, _, err := svc.ResetPassword(ctx, raw, &dto.ResetPasswordRequest{Password: "aaaaaaaa", ConfirmPassword: "bbbbbbbb"})

		assert.ErrorIs(t, err, services.ErrPasswordMismatch)
	})

	t.Run("expired or unknown token", func(t *testing.T) {
		ctx, svc, deps := setupUserServiceTest(t)
		deps.repo.EXPECT().ConsumeResetToken(ctx, hashed, gomock.Any(), gomock.Any()).Return(nil, storage.ErrNotFound).Times(1)

		_, _, err := svc.ResetPassword(ctx, raw, &dto.ResetPasswordRequest{Password: "newpass12", ConfirmPassword: "newpass12"})

		assert.ErrorIs(t, err, services.ErrInvalidResetToken)
	})

	t.Run("success", func(t *testing.T) {
		ctx, svc, deps := setupUserServiceTest(t)
		user := &models.User{ID: uuid.New(), Email: "jane@example.com"}
		deps.repo.EXPECT().ConsumeResetToken(ctx, hashed, gomock.Any(), gomock.Any()).Return(user, nil).Times(1)

		got, token, err := svc.ResetPassword(ctx, raw, &dto.ResetPasswordRequest{Password: "newpass12", ConfirmPassword: "newpass12"})

		require.NoError(t, err)
		assert.Equal(t, user, got)
		assert.NotEmpty(t, token.Value)
	})
}
