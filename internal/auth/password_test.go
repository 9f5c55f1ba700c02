package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("pa55word", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NoError(t, ComparePassword(hash, "pa55word"))
	assert.ErrorIs(t, ComparePassword(hash, "wrong"), ErrInvalidCredentials)
}

func TestHashPasswordOutOfRangeCost(t *testing.T) {
	hash, err := HashPassword("pa55word", 0)
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
}

func TestComparePasswordMalformedHash(t *testing.T) {
	err := ComparePassword("not-a-hash", "pa55word")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}
