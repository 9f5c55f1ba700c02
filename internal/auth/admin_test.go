package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/fitlab-service/internal/config"
)

func TestAdminVerifier(t *testing.T) {
	hash, err := HashPassword("letmein", 4)
	require.NoError(t, err)
	v := NewAdminVerifier(config.AdminConfig{Email: "Admin@Fitlab.test", PasswordHash: hash, Name: "Ops"})

	identity, ok := v.Verify(" admin@fitlab.test ", "letmein")
	require.True(t, ok)
	assert.Equal(t, "admin@fitlab.test", identity.Email)
	assert.Equal(t, "Ops", identity.Name)

	_, ok = v.Verify("admin@fitlab.test", "wrong")
	assert.False(t, ok)
	_, ok = v.Verify("someone@fitlab.test", "letmein")
	assert.False(t, ok)
}

func TestUnconfiguredAdminNeverVerifies(t *testing.T) {
	v := NewAdminVerifier(config.AdminConfig{})
	_, ok := v.Verify("", "")
	assert.False(t, ok)
	_, ok = v.Identity("")
	assert.False(t, ok)
}
