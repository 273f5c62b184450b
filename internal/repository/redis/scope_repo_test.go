package redis_test

import (
	"context"
	"testing"
	"time"

	redisrepo "Vibe_Tribe/internal/repository/redis"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTest(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	require.NoError(t, redisrepo.Init(mr.Addr(), "", 0))

	t.Cleanup(func() {
		redisrepo.Close()
		mr.Close()
	})
	return mr
}

func TestScopeCacheRoundTrip(t *testing.T) {
	setupTest(t)
	repo := redisrepo.NewScopeCacheRepository(time.Minute)
	ctx := context.Background()

	_, hit, err := repo.Get(ctx, 1)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, repo.Set(ctx, 1, `{"inner":{}}`))

	payload, hit, err := repo.Get(ctx, 1)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, `{"inner":{}}`, payload)
}

func TestScopeCacheTTL(t *testing.T) {
	mr := setupTest(t)
	repo := redisrepo.NewScopeCacheRepository(30 * time.Second)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, 1, "payload"))

	mr.FastForward(time.Minute)

	_, hit, err := repo.Get(ctx, 1)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestScopeCacheInvalidate(t *testing.T) {
	setupTest(t)
	repo := redisrepo.NewScopeCacheRepository(time.Minute)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, 1, "a"))
	require.NoError(t, repo.Set(ctx, 2, "b"))
	require.NoError(t, repo.Set(ctx, 3, "c"))

	require.NoError(t, repo.Invalidate(ctx, 1))
	_, hit, err := repo.Get(ctx, 1)
	require.NoError(t, err)
	assert.False(t, hit)

	// 批量失效同圈成员
	require.NoError(t, repo.InvalidateMany(ctx, []uint64{2, 3}))
	for _, id := range []uint64{2, 3} {
		_, hit, err = repo.Get(ctx, id)
		require.NoError(t, err)
		assert.False(t, hit)
	}

	// 空列表不报错
	require.NoError(t, repo.InvalidateMany(ctx, nil))
}

func TestInviteCodeRepository(t *testing.T) {
	mr := setupTest(t)
	repo := &redisrepo.InviteCodeRepository{}
	ctx := context.Background()

	ok, err := repo.Verify(ctx, 10, "123456")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.Save(ctx, 10, "123456"))

	ok, err = repo.Verify(ctx, 10, "123456")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Verify(ctx, 10, "654321")
	require.NoError(t, err)
	assert.False(t, ok)

	// 过期后不可用
	mr.FastForward(redisrepo.DefaultInviteTTL + time.Second)
	ok, err = repo.Verify(ctx, 10, "123456")
	require.NoError(t, err)
	assert.False(t, ok)
}
