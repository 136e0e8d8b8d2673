package params

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaults(t *testing.T) {
	p := Get()
	assert.Equal(t, int64(64<<20), p.CacheCapacityBytes)
	assert.Equal(t, 15*time.Second, p.FetchTimeout)
	assert.Equal(t, uint(1), p.FetchAttempts)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv(EnvCacheCapacityBytes, "1024")
	t.Setenv(EnvFetchTimeout, "2s")
	t.Setenv(EnvFetchAttempts, "5")
	t.Setenv(EnvPoolSize, "8")

	p := Get()
	assert.Equal(t, int64(1024), p.CacheCapacityBytes)
	assert.Equal(t, 2*time.Second, p.FetchTimeout)
	assert.Equal(t, uint(5), p.FetchAttempts)
	assert.Equal(t, 8, p.PoolSize)
}

func TestEnvOverrideUnparseable(t *testing.T) {
	t.Setenv(EnvCacheCapacityBytes, "lots")

	p := Get()
	assert.Equal(t, int64(64<<20), p.CacheCapacityBytes)
}
