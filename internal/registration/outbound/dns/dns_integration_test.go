//go:build integration

package dns

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/shandysiswandi/registra/internal/pkg/testutil/containers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChecker_CachesAnswers(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	ctx := context.Background()

	r := &fakeResolver{mx: []*net.MX{{Host: "mx.example.com.", Pref: 10}}}
	c := NewChecker(Config{Resolver: r, Cache: rc.Client, CacheTTL: time.Minute})

	for range 3 {
		ok, err := c.Resolvable(ctx, "example.com")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	assert.Equal(t, 1, r.mxCalls)

	val, err := rc.Client.Get(ctx, cachePrefix+"example.com").Result()
	require.NoError(t, err)
	assert.Equal(t, cacheResolvable, val)
}

func TestChecker_DoesNotCacheFailures(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	ctx := context.Background()

	r := &fakeResolver{mxErr: &net.DNSError{Err: "server misbehaving", IsTemporary: true}}
	c := NewChecker(Config{Resolver: r, Cache: rc.Client, CacheTTL: time.Minute})

	_, err := c.Resolvable(ctx, "example.com")
	require.Error(t, err)

	n, err := rc.Client.Exists(ctx, cachePrefix+"example.com").Result()
	require.NoError(t, err)
	assert.Zero(t, n)
}
