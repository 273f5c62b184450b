package service_test

import (
	"testing"

	"Vibe_Tribe/internal/pkg"
	redisrepo "Vibe_Tribe/internal/repository/redis"
	"Vibe_Tribe/internal/service"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 全局 redis Client，不能并行
func setupRedis(t *testing.T) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	require.NoError(t, redisrepo.Init(mr.Addr(), "", 0))

	t.Cleanup(func() {
		redisrepo.Close()
		mr.Close()
	})
}

// 刷新出来的 access token 必须能过单点登录校验：
// 新 token 要写回 redis，否则中间件会按异地登录拒掉
func TestRefreshTokenKeepsSession(t *testing.T) {
	setupRedis(t)
	svc := service.NewUserService()
	rUser := &redisrepo.UserRepository{}

	// 模拟登录态：redis 里存着首个 access token
	first, err := pkg.GeneratePair(42)
	require.NoError(t, err)
	require.NoError(t, rUser.AddUserToken(42, first.AccessToken))

	next, err := svc.RefreshToken(first.RefreshToken)
	require.NoError(t, err)

	claims, err := pkg.ParseAccess(next.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), claims.UserID)

	// 中间件判定 stored == presented，刷新后两者必须一致
	stored, err := rUser.GetUserToken(42)
	require.NoError(t, err)
	assert.Equal(t, next.AccessToken, stored)
}

func TestRefreshTokenRejectsAccessToken(t *testing.T) {
	setupRedis(t)
	svc := service.NewUserService()

	pair, err := pkg.GeneratePair(7)
	require.NoError(t, err)

	// access token 不能当 refresh 用
	_, err = svc.RefreshToken(pair.AccessToken)
	assert.Error(t, err)
}
