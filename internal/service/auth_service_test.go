package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/eadms/academic-api/internal/models"
	appErrors "github.com/eadms/academic-api/pkg/errors"
)

type mockUserRepo struct {
	users map[string]*models.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: map[string]*models.User{}}
}

func (m *mockUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserRepo) FindByID(_ context.Context, id string) (*models.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserRepo) Create(_ context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = "usr-" + user.Email
	}
	m.users[user.ID] = user
	return nil
}

func newAuthFixture(t *testing.T) (*AuthService, *mockUserRepo) {
	t.Helper()
	repo := newMockUserRepo()
	svc := NewAuthService(repo, nil, nil, AuthConfig{
		Secret:      "test-secret",
		TokenExpiry: time.Hour,
		Issuer:      "eadms-academic-api",
	})
	return svc, repo
}

func seedUser(t *testing.T, repo *mockUserRepo, email, password string, role models.UserRole, active bool) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	profile := "prof-1"
	user := &models.User{
		ID:           "usr-1",
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		ProfileID:    &profile,
		Active:       active,
	}
	repo.users[user.ID] = user
	return user
}

func TestAuthServiceLoginTokenRoundTrip(t *testing.T) {
	svc, repo := newAuthFixture(t)
	seedUser(t, repo, "teacher@school.test", "s3cretpass", models.RoleTeacher, true)

	resp, err := svc.Login(context.Background(), LoginRequest{Email: "teacher@school.test", Password: "s3cretpass"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.AccessToken)
	require.True(t, resp.ExpiresAt.After(time.Now()))

	claims, err := svc.ParseToken(resp.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "usr-1", claims.Subject)
	require.Equal(t, "teacher@school.test", claims.Email)
	require.Equal(t, "TEACHER", claims.Role)
	require.NotNil(t, claims.ProfileID)
	require.Equal(t, "prof-1", *claims.ProfileID)
}

func TestAuthServiceLoginRejectsBadPassword(t *testing.T) {
	svc, repo := newAuthFixture(t)
	seedUser(t, repo, "teacher@school.test", "s3cretpass", models.RoleTeacher, true)

	_, err := svc.Login(context.Background(), LoginRequest{Email: "teacher@school.test", Password: "wrong"})
	assertErrorCode(t, err, appErrors.ErrInvalidCredentials.Code)

	_, err = svc.Login(context.Background(), LoginRequest{Email: "nobody@school.test", Password: "whatever"})
	assertErrorCode(t, err, appErrors.ErrInvalidCredentials.Code)
}

func TestAuthServiceLoginRejectsInactiveAccount(t *testing.T) {
	svc, repo := newAuthFixture(t)
	seedUser(t, repo, "gone@school.test", "s3cretpass", models.RoleStudent, false)

	_, err := svc.Login(context.Background(), LoginRequest{Email: "gone@school.test", Password: "s3cretpass"})
	assertErrorCode(t, err, appErrors.ErrInactiveAccount.Code)
}

func TestAuthServiceParseTokenRejectsForgedToken(t *testing.T) {
	svc, repo := newAuthFixture(t)
	seedUser(t, repo, "teacher@school.test", "s3cretpass", models.RoleTeacher, true)

	resp, err := svc.Login(context.Background(), LoginRequest{Email: "teacher@school.test", Password: "s3cretpass"})
	require.NoError(t, err)

	other := NewAuthService(repo, nil, nil, AuthConfig{Secret: "other-secret", TokenExpiry: time.Hour})
	_, err = other.ParseToken(resp.AccessToken)
	assertErrorCode(t, err, appErrors.ErrUnauthorized.Code)
}

func TestAuthServiceParseTokenRejectsExpiredToken(t *testing.T) {
	svc, repo := newAuthFixture(t)
	seedUser(t, repo, "teacher@school.test", "s3cretpass", models.RoleTeacher, true)
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	resp, err := svc.Login(context.Background(), LoginRequest{Email: "teacher@school.test", Password: "s3cretpass"})
	require.NoError(t, err)

	_, err = svc.ParseToken(resp.AccessToken)
	assertErrorCode(t, err, appErrors.ErrUnauthorized.Code)
}

func TestAuthServiceRegister(t *testing.T) {
	svc, _ := newAuthFixture(t)

	user, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "new@school.test",
		Password: "longenough",
		Role:     models.RoleAdmin,
	})
	require.NoError(t, err)
	require.True(t, user.Active)
	require.NotEqual(t, "longenough", user.PasswordHash)

	_, err = svc.Register(context.Background(), RegisterRequest{
		Email:    "new@school.test",
		Password: "longenough",
		Role:     models.RoleAdmin,
	})
	assertErrorCode(t, err, appErrors.ErrConflict.Code)

	_, err = svc.Register(context.Background(), RegisterRequest{
		Email:    "short@school.test",
		Password: "short",
		Role:     models.RoleAdmin,
	})
	assertErrorCode(t, err, appErrors.ErrValidation.Code)
}
