package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/fitlab-service/internal/auth"
	"github.com/spec-kit/fitlab-service/internal/config"
	"github.com/spec-kit/fitlab-service/internal/domain"
	apperrors "github.com/spec-kit/fitlab-service/pkg/util/errorutil"
)

type authFixture struct {
	svc      *AuthService
	users    *fakeUserRepo
	sessions *fakeSessionRepo
}

func newAuthFixture(t *testing.T) authFixture {
	t.Helper()
	hash, err := auth.HashPassword("admin-pass", bcrypt.MinCost)
	require.NoError(t, err)

	cfg := config.Config{
		Auth: config.AuthConfig{JWTSecret: "test-secret", AccessTokenTTLMinutes: 60, BcryptCost: bcrypt.MinCost},
		Admin: config.AdminConfig{
			Email:              "admin@fitlab.test",
			PasswordHash:       hash,
			Name:               "Admin",
			MaxLoginAttempts:   3,
			LoginWindowSeconds: 60,
			SessionTTLMinutes:  30,
		},
	}
	users := newFakeUserRepo(newTestClock())
	sessions := newFakeSessionRepo()
	svc := NewAuthService(cfg, AuthDependencies{UserRepo: users, SessionRepo: sessions})
	return authFixture{svc: svc, users: users, sessions: sessions}
}

func TestRegisterSetsApprovalByRole(t *testing.T) {
	tests := []struct {
		name         string
		role         domain.Role
		wantStatus   domain.ApprovalStatus
		wantApproved bool
	}{
		{"fitness enthusiast is approved", domain.RoleFitnessEnthusiast, domain.ApprovalApproved, true},
		{"trainer starts pending", domain.RoleTrainer, domain.ApprovalPending, false},
		{"lab partner starts pending", domain.RoleLabPartner, domain.ApprovalPending, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAuthFixture(t)
			user, token, err := f.svc.Register(context.Background(), RegisterInput{
				Name:           "Ann",
				Email:          "Ann@Example.com",
				Password:       "secret1",
				Role:           tt.role,
				LaboratoryName: "Ann Labs",
			})
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, user.ApprovalStatus)
			assert.Equal(t, tt.wantApproved, user.IsApproved)
			assert.Equal(t, "ann@example.com", user.Email)
			assert.NotEqual(t, "secret1", user.PasswordHash)
			assert.NotEmpty(t, token.Token)
		})
	}
}

func TestRegisterRejectsInvalidInput(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, _, err := f.svc.Register(ctx, RegisterInput{Name: "X", Email: "x@example.com", Password: "secret1", Role: domain.RoleAdmin})
	assert.True(t, apperrors.HasCode(err, "VALIDATION_FAILED"))

	_, _, err = f.svc.Register(ctx, RegisterInput{Name: "X", Email: "not-an-email", Password: "secret1", Role: domain.RoleTrainer})
	assert.True(t, apperrors.HasCode(err, "VALIDATION_FAILED"))

	_, _, err = f.svc.Register(ctx, RegisterInput{Name: "X", Email: "x@example.com", Password: "123", Role: domain.RoleTrainer})
	assert.True(t, apperrors.HasCode(err, "VALIDATION_FAILED"))

	_, _, err = f.svc.Register(ctx, RegisterInput{Name: "X", Email: "lab@example.com", Password: "secret1", Role: domain.RoleLabPartner})
	assert.True(t, apperrors.HasCode(err, "VALIDATION_FAILED"))
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	input := RegisterInput{Name: "Ann", Email: "ann@example.com", Password: "secret1", Role: domain.RoleFitnessEnthusiast}

	_, _, err := f.svc.Register(ctx, input)
	require.NoError(t, err)

	input.Email = "ANN@example.com"
	_, _, err = f.svc.Register(ctx, input)
	assert.True(t, apperrors.HasCode(err, "CONFLICT"))
}

func TestRegisterMapsUniqueViolationToConflict(t *testing.T) {
	f := newAuthFixture(t)
	// a concurrent registration wins the race after the lookup
	f.users.createErr = fmt.Errorf("insert user: %w", &pgconn.PgError{Code: "23505", ConstraintName: "users_email_lower_idx"})

	_, _, err := f.svc.Register(context.Background(), RegisterInput{
		Name: "Ann", Email: "ann@example.com", Password: "secret1", Role: domain.RoleFitnessEnthusiast,
	})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, "CONFLICT"))
	assert.Equal(t, "email already registered", err.Error())
}

func TestLoginRespectsAccountState(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	hash, err := auth.HashPassword("secret1", bcrypt.MinCost)
	require.NoError(t, err)
	withHash := func(u *domain.User) { u.PasswordHash = hash }

	seedUser(f.users, domain.RoleFitnessEnthusiast, "Active", "active@example.com", withHash)
	seedUser(f.users, domain.RoleTrainer, "Pending", "pending@example.com", withHash)
	seedUser(f.users, domain.RoleTrainer, "Rejected", "rejected@example.com", withHash, func(u *domain.User) {
		u.ApprovalStatus = domain.ApprovalRejected
	})
	seedUser(f.users, domain.RoleFitnessEnthusiast, "Suspended", "suspended@example.com", withHash, func(u *domain.User) {
		u.IsSuspended = true
	})
	seedUser(f.users, domain.RoleFitnessEnthusiast, "Inactive", "inactive@example.com", withHash, func(u *domain.User) {
		u.IsActive = false
	})

	tests := []struct {
		email    string
		password string
		wantCode string
	}{
		{"active@example.com", "secret1", ""},
		{"active@example.com", "wrong", "UNAUTHORIZED"},
		{"missing@example.com", "secret1", "UNAUTHORIZED"},
		{"pending@example.com", "secret1", "FORBIDDEN"},
		{"rejected@example.com", "secret1", "FORBIDDEN"},
		{"suspended@example.com", "secret1", "FORBIDDEN"},
		{"inactive@example.com", "secret1", "FORBIDDEN"},
	}
	for _, tt := range tests {
		t.Run(tt.email+"/"+tt.password, func(t *testing.T) {
			user, token, err := f.svc.Login(ctx, tt.email, tt.password)
			if tt.wantCode == "" {
				require.NoError(t, err)
				assert.Equal(t, tt.email, user.Email)

				claims, err := f.svc.TokenManager().ParseToken(token.Token)
				require.NoError(t, err)
				assert.Equal(t, user.ID, claims.SubjectID)
				assert.Equal(t, domain.RoleFitnessEnthusiast, claims.Role)
				return
			}
			assert.True(t, apperrors.HasCode(err, tt.wantCode), "got %v", err)
		})
	}
}

func TestAdminLoginIssuesRevocableSession(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	identity, token, err := f.svc.AdminLogin(ctx, "ADMIN@fitlab.test", "admin-pass")
	require.NoError(t, err)
	assert.Equal(t, "admin@fitlab.test", identity.Email)

	claims, err := f.svc.TokenManager().ParseToken(token.Token)
	require.NoError(t, err)
	assert.Equal(t, domain.SubjectTypeAdmin, claims.Subject)
	assert.Equal(t, domain.RoleAdmin, claims.Role)

	active, _ := f.sessions.Exists(ctx, claims.ID)
	assert.True(t, active)

	require.NoError(t, f.svc.AdminLogout(ctx, claims.ID))
	active, _ = f.sessions.Exists(ctx, claims.ID)
	assert.False(t, active)
}

func TestAdminLoginThrottlesFailures(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, _, err := f.svc.AdminLogin(ctx, "admin@fitlab.test", "nope")
		assert.True(t, apperrors.HasCode(err, "UNAUTHORIZED"))
	}

	_, _, err := f.svc.AdminLogin(ctx, "admin@fitlab.test", "admin-pass")
	assert.True(t, apperrors.HasCode(err, "TOO_MANY_REQUESTS"))

	require.NoError(t, f.sessions.ResetLoginFailures(ctx, "admin@fitlab.test"))
	_, _, err = f.svc.AdminLogin(ctx, "admin@fitlab.test", "admin-pass")
	assert.NoError(t, err)
}
