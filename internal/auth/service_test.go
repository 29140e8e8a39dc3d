package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hostelgrievance/grievance-backend/internal/users"
	pkgAuth "github.com/hostelgrievance/grievance-backend/pkg/auth"
	"github.com/hostelgrievance/grievance-backend/pkg/auth/session"
	"github.com/hostelgrievance/grievance-backend/pkg/config"
	"github.com/hostelgrievance/grievance-backend/pkg/db/dbtest"
	"github.com/hostelgrievance/grievance-backend/pkg/enums"
	pkgerrors "github.com/hostelgrievance/grievance-backend/pkg/errors"
	"github.com/hostelgrievance/grievance-backend/pkg/security"
)

var (
	testPasswordCfg = config.PasswordConfig{ArgonMemoryKB: 8192, ArgonTime: 1, ArgonParallelism: 1, ArgonSaltLen: 16, ArgonKeyLen: 32}
	testJWTCfg      = config.JWTConfig{Secret: "secret", Issuer: "grievance-portal", ExpirationMinutes: 30, RefreshTokenTTLMinutes: 60}
)

func buildTestService(t *testing.T) (Service, *users.Repository, *stubSessionManager) {
	t.Helper()
	repo := users.NewRepository(dbtest.Open(t))
	sessions := newStubSessionManager()
	svc, err := NewService(ServiceParams{
		Users:          repo,
		SessionManager: sessions,
		JWTConfig:      testJWTCfg,
		PasswordConfig: testPasswordCfg,
	})
	require.NoError(t, err)
	return svc, repo, sessions
}

func signupRequest(email string) SignupRequest {
	return SignupRequest{
		Name:        "Asha Verma",
		Email:       email,
		PhoneNumber: "9876543210",
		Password:    "hostel-pass",
		Role:        "STUDENT",
	}
}

func TestSignupIssuesSession(t *testing.T) {
	svc, _, sessions := buildTestService(t)

	out, err := svc.Signup(context.Background(), signupRequest("Asha@Hostel.edu"))
	require.NoError(t, err)
	assert.Equal(t, "asha@hostel.edu", out.User.Email)
	assert.Equal(t, enums.RoleStudent, out.User.Role)
	assert.NotEmpty(t, out.RefreshToken)

	claims, err := pkgAuth.ParseAccessToken(testJWTCfg, out.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, out.User.ID, claims.UserID)
	assert.Equal(t, out.RefreshToken, sessions.tokens[claims.ID])
}

func TestSignupRejectsDuplicatesAndStaffRoles(t *testing.T) {
	svc, repo, _ := buildTestService(t)
	ctx := context.Background()
	_, err := svc.Signup(ctx, signupRequest("asha@hostel.edu"))
	require.NoError(t, err)

	_, err = svc.Signup(ctx, signupRequest("ASHA@hostel.edu"))
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.CodeOf(err))

	other := signupRequest("bilal@hostel.edu")
	_, err = svc.Signup(ctx, other)
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.CodeOf(err), "phone number is already taken")

	admin := signupRequest("root@hostel.edu")
	admin.PhoneNumber = "1111111111"
	admin.Role = "ADMIN"
	_, err = svc.Signup(ctx, admin)
	assert.Equal(t, pkgerrors.CodeForbidden, pkgerrors.CodeOf(err))

	admin.Role = "WARDEN"
	_, err = svc.Signup(ctx, admin)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))

	all, err := repo.List(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 1, "rejected signups insert nothing")
}

func TestSignin(t *testing.T) {
	svc, _, _ := buildTestService(t)
	ctx := context.Background()
	_, err := svc.Signup(ctx, signupRequest("asha@hostel.edu"))
	require.NoError(t, err)

	byEmail, err := svc.Signin(ctx, SigninRequest{Email: "asha@hostel.edu", Password: "hostel-pass", Role: "student"})
	require.NoError(t, err)
	resp := SigninResponseFrom(byEmail)
	assert.Equal(t, "Asha Verma", resp.Name)
	assert.Equal(t, enums.RoleStudent, resp.Role)

	_, err = svc.Signin(ctx, SigninRequest{PhoneNumber: "9876543210", Password: "hostel-pass", Role: "STUDENT"})
	require.NoError(t, err)

	_, err = svc.Signin(ctx, SigninRequest{Email: "asha@hostel.edu", Password: "wrong-pass", Role: "STUDENT"})
	assert.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.CodeOf(err))
	assert.Equal(t, invalidCredentialsMessage, pkgerrors.As(err).Message())

	_, err = svc.Signin(ctx, SigninRequest{Email: "ghost@hostel.edu", Password: "hostel-pass", Role: "STUDENT"})
	assert.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.CodeOf(err))

	_, err = svc.Signin(ctx, SigninRequest{Email: "asha@hostel.edu", Password: "hostel-pass", Role: "ADMIN"})
	assert.Equal(t, pkgerrors.CodeForbidden, pkgerrors.CodeOf(err))
	assert.Equal(t, roleMismatchMessage, pkgerrors.As(err).Message())

	_, err = svc.Signin(ctx, SigninRequest{Password: "hostel-pass", Role: "STUDENT"})
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
}

func TestSigninUpgradesWeakHash(t *testing.T) {
	svc, repo, _ := buildTestService(t)
	ctx := context.Background()
	weak := testPasswordCfg
	weak.ArgonMemoryKB = 4096
	hash := mustHash(t, "hostel-pass", weak)
	user, err := repo.Create(ctx, users.CreateUserDTO{Name: "Prof Rao", Email: "rao@hostel.edu", PasswordHash: hash, Role: enums.RoleFaculty})
	require.NoError(t, err)

	_, err = svc.Signin(ctx, SigninRequest{Email: "rao@hostel.edu", Password: "hostel-pass", Role: "FACULTY"})
	require.NoError(t, err)

	stored, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.NotEqual(t, hash, stored.PasswordHash)
}

func TestRefreshRotatesAndSignoutRevokes(t *testing.T) {
	svc, _, sessions := buildTestService(t)
	ctx := context.Background()
	first, err := svc.Signup(ctx, signupRequest("asha@hostel.edu"))
	require.NoError(t, err)

	_, err = svc.Refresh(ctx, first.AccessToken, "not-the-token")
	assert.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.CodeOf(err))

	second, err := svc.Refresh(ctx, first.AccessToken, first.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, first.AccessToken, second.AccessToken)
	assert.Len(t, sessions.tokens, 1, "old session is dropped on rotation")

	_, err = svc.Refresh(ctx, first.AccessToken, first.RefreshToken)
	assert.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.CodeOf(err), "a rotated token cannot be replayed")

	require.NoError(t, svc.Signout(ctx, second.AccessToken))
	assert.Empty(t, sessions.tokens)

	err = svc.Signout(ctx, "garbage")
	assert.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.CodeOf(err))
}

func TestMe(t *testing.T) {
	svc, _, _ := buildTestService(t)
	ctx := context.Background()
	out, err := svc.Signup(ctx, signupRequest("asha@hostel.edu"))
	require.NoError(t, err)

	me, err := svc.Me(ctx, out.User.ID)
	require.NoError(t, err)
	assert.Equal(t, out.User.Email, me.Email)

	_, err = svc.Me(ctx, uuid.New())
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(ServiceParams{SessionManager: newStubSessionManager()})
	assert.Error(t, err)
	_, err = NewService(ServiceParams{Users: users.NewRepository(dbtest.Open(t))})
	assert.Error(t, err)
}

func mustHash(t *testing.T, password string, cfg config.PasswordConfig) string {
	t.Helper()
	hash, err := security.HashPassword(password, cfg)
	require.NoError(t, err)
	return hash
}

type stubSessionManager struct {
	tokens map[string]string
	owners map[string]uuid.UUID
	err    error
}

func newStubSessionManager() *stubSessionManager {
	return &stubSessionManager{tokens: map[string]string{}, owners: map[string]uuid.UUID{}}
}

func (s *stubSessionManager) Generate(ctx context.Context, accessID string, userID uuid.UUID) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	token := "refresh-" + accessID
	s.tokens[accessID] = token
	s.owners[accessID] = userID
	return token, nil
}

func (s *stubSessionManager) Rotate(ctx context.Context, oldAccessID string, userID uuid.UUID, provided string) (string, string, error) {
	stored, ok := s.tokens[oldAccessID]
	if !ok || stored != provided || s.owners[oldAccessID] != userID {
		return "", "", session.ErrInvalidRefreshToken
	}
	delete(s.tokens, oldAccessID)
	delete(s.owners, oldAccessID)
	next := session.NewAccessID()
	token, err := s.Generate(ctx, next, userID)
	return next, token, err
}

func (s *stubSessionManager) Revoke(ctx context.Context, accessID string) error {
	if accessID == "" {
		return errors.New("access id is required")
	}
	delete(s.tokens, accessID)
	delete(s.owners, accessID)
	return nil
}
