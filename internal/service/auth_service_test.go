package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/college-timetable-api/internal/dto"
	"github.com/noah-isme/college-timetable-api/internal/models"
	appErrors "github.com/noah-isme/college-timetable-api/pkg/errors"
)

func TestAuthServiceLoginSuccess(t *testing.T) {
	repo := newAuthRepoStub(t, "admin@college.edu", "adm1n-s3cret", true)
	audit := &auditRecorderStub{}
	service := NewAuthService(repo, audit, validator.New(), zap.NewNop(), AuthConfig{Secret: "test-secret", Issuer: "college-timetable-api"})

	resp, err := service.Login(context.Background(), dto.LoginRequest{Email: "admin@college.edu", Password: "adm1n-s3cret"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "admin@college.edu", resp.User.Email)
	assert.Equal(t, models.RoleAdmin, resp.User.Role)
	assert.True(t, repo.lastLoginSet)

	require.Len(t, audit.entries, 1)
	assert.Equal(t, models.AuditActionLogin, audit.entries[0].Action)

	claims, err := service.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, repo.user.ID, claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	repo := newAuthRepoStub(t, "admin@college.edu", "adm1n-s3cret", true)
	service := NewAuthService(repo, nil, validator.New(), zap.NewNop(), AuthConfig{Secret: "test-secret"})

	_, err := service.Login(context.Background(), dto.LoginRequest{Email: "admin@college.edu", Password: "not-the-password"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginRejectsShortPassword(t *testing.T) {
	repo := newAuthRepoStub(t, "admin@college.edu", "adm1n-s3cret", true)
	service := NewAuthService(repo, nil, validator.New(), zap.NewNop(), AuthConfig{Secret: "test-secret"})

	// Passwords under eight characters never reach the credential check.
	_, err := service.Login(context.Background(), dto.LoginRequest{Email: "admin@college.edu", Password: "short"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginUnknownEmail(t *testing.T) {
	repo := newAuthRepoStub(t, "admin@college.edu", "adm1n-s3cret", true)
	service := NewAuthService(repo, nil, validator.New(), zap.NewNop(), AuthConfig{Secret: "test-secret"})

	_, err := service.Login(context.Background(), dto.LoginRequest{Email: "ghost@college.edu", Password: "adm1n-s3cret"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginInactiveAccount(t *testing.T) {
	repo := newAuthRepoStub(t, "admin@college.edu", "adm1n-s3cret", false)
	service := NewAuthService(repo, nil, validator.New(), zap.NewNop(), AuthConfig{Secret: "test-secret"})

	_, err := service.Login(context.Background(), dto.LoginRequest{Email: "admin@college.edu", Password: "adm1n-s3cret"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceValidateTokenRejectsForgedSecret(t *testing.T) {
	repo := newAuthRepoStub(t, "admin@college.edu", "adm1n-s3cret", true)
	issuer := NewAuthService(repo, nil, validator.New(), zap.NewNop(), AuthConfig{Secret: "other-secret"})
	verifier := NewAuthService(repo, nil, validator.New(), zap.NewNop(), AuthConfig{Secret: "test-secret"})

	resp, err := issuer.Login(context.Background(), dto.LoginRequest{Email: "admin@college.edu", Password: "adm1n-s3cret"})
	require.NoError(t, err)

	_, err = verifier.ValidateToken(resp.AccessToken)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

// --- Fixtures ---

type authRepoStub struct {
	user         *models.User
	lastLoginSet bool
}

func newAuthRepoStub(t *testing.T, email, password string, active bool) *authRepoStub {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &authRepoStub{user: &models.User{
		ID:           "user-1",
		Email:        email,
		PasswordHash: string(hash),
		FullName:     "Admin User",
		Role:         models.RoleAdmin,
		Active:       active,
	}}
}

func (s *authRepoStub) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if s.user == nil || s.user.Email != email {
		return nil, sql.ErrNoRows
	}
	return s.user, nil
}

func (s *authRepoStub) FindByID(ctx context.Context, id string) (*models.User, error) {
	if s.user == nil || s.user.ID != id {
		return nil, sql.ErrNoRows
	}
	return s.user, nil
}

func (s *authRepoStub) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	s.lastLoginSet = true
	return nil
}

type auditRecorderStub struct {
	entries []*models.AuditLog
}

func (s *auditRecorderStub) Record(entry *models.AuditLog) {
	s.entries = append(s.entries, entry)
}
