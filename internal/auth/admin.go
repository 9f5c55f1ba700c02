package auth

import (
	"crypto/subtle"
	"strings"

	"github.com/spec-kit/fitlab-service/internal/config"
)

// AdminIdentity is the externally configured administrator principal.
type AdminIdentity struct {
	Email string
	Name  string
}

// AdminVerifier checks admin credentials without exposing the stored secret.
type AdminVerifier interface {
	Verify(email, password string) (*AdminIdentity, bool)
	Identity(email string) (*AdminIdentity, bool)
}

type configuredAdmin struct {
	email        string
	name         string
	passwordHash string
}

// NewAdminVerifier builds a verifier from configuration. An unconfigured admin never verifies.
func NewAdminVerifier(cfg config.AdminConfig) AdminVerifier {
	return &configuredAdmin{
		email:        strings.ToLower(strings.TrimSpace(cfg.Email)),
		name:         cfg.Name,
		passwordHash: cfg.PasswordHash,
	}
}

func (a *configuredAdmin) Verify(email, password string) (*AdminIdentity, bool) {
	identity, ok := a.Identity(email)
	if !ok || a.passwordHash == "" {
		return nil, false
	}
	if err := ComparePassword(a.passwordHash, password); err != nil {
		return nil, false
	}
	return identity, true
}

func (a *configuredAdmin) Identity(email string) (*AdminIdentity, bool) {
	if a.email == "" {
		return nil, false
	}
	candidate := strings.ToLower(strings.TrimSpace(email))
	if subtle.ConstantTimeCompare([]byte(candidate), []byte(a.email)) != 1 {
		return nil, false
	}
	return &AdminIdentity{Email: a.email, Name: a.name}, true
}
