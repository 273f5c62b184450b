package pkg_test

import (
	"testing"

	"Vibe_Tribe/internal/pkg"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParsePair(t *testing.T) {
	pair, err := pkg.GeneratePair(42)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	claims, err := pkg.ParseAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), claims.UserID)

	// refresh token 不能当 access 用
	_, err = pkg.ParseAccess(pair.RefreshToken)
	assert.Error(t, err)
}

func TestRefresh(t *testing.T) {
	pair, err := pkg.GeneratePair(7)
	require.NoError(t, err)

	next, userID, err := pkg.Refresh(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), userID)

	claims, err := pkg.ParseAccess(next.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), claims.UserID)
}

func TestRandDigits(t *testing.T) {
	code, err := pkg.RandDigits(6)
	require.NoError(t, err)
	require.Len(t, code, 6)
	for _, r := range code {
		assert.True(t, r >= '0' && r <= '9')
	}
}
