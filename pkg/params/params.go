// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance
// with the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License
// is distributed on an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express
// or implied. See the License for the specific language governing permissions and limitations under the License.

// Package params holds the tunable defaults of the module. Constructors take
// explicit options; params only supplies the values used when an option is
// not given, overridable through URLIMAGE_* environment variables.
package params

import (
	"os"
	"time"

	"github.com/spf13/cast"
	"go.uber.org/zap"

	"github.com/urlimage-io/urlimage/pkg/log"
)

const (
	EnvCacheCapacityBytes = "URLIMAGE_CACHE_CAPACITY_BYTES"
	EnvCacheMaxEntries    = "URLIMAGE_CACHE_MAX_ENTRIES"
	EnvFetchTimeout       = "URLIMAGE_FETCH_TIMEOUT"
	EnvFetchAttempts      = "URLIMAGE_FETCH_ATTEMPTS"
	EnvMaxBodySize        = "URLIMAGE_MAX_BODY_SIZE"
	EnvPoolSize           = "URLIMAGE_POOL_SIZE"
)

// Params are the resolved defaults.
type Params struct {
	// CacheCapacityBytes bounds the total byte cost of resident images.
	CacheCapacityBytes int64
	// CacheMaxEntries bounds the entry count, 0 means unbounded.
	CacheMaxEntries int64
	// FetchTimeout bounds a single fetch attempt.
	FetchTimeout time.Duration
	// FetchAttempts is the number of attempts for retryable fetch errors.
	FetchAttempts uint
	// MaxBodySize rejects responses larger than this many bytes.
	MaxBodySize int64
	// PoolSize is the fetch worker pool size, 0 means the CPU count.
	PoolSize int
}

func defaults() Params {
	return Params{
		CacheCapacityBytes: 64 << 20,
		CacheMaxEntries:    0,
		FetchTimeout:       15 * time.Second,
		FetchAttempts:      1,
		MaxBodySize:        32 << 20,
		PoolSize:           0,
	}
}

// Get resolves the defaults with environment overrides applied.
// Unparseable values are logged and ignored.
func Get() Params {
	p := defaults()
	overrideInt64(&p.CacheCapacityBytes, EnvCacheCapacityBytes)
	overrideInt64(&p.CacheMaxEntries, EnvCacheMaxEntries)
	overrideDuration(&p.FetchTimeout, EnvFetchTimeout)
	overrideUint(&p.FetchAttempts, EnvFetchAttempts)
	overrideInt64(&p.MaxBodySize, EnvMaxBodySize)
	overrideInt(&p.PoolSize, EnvPoolSize)
	return p
}

func overrideInt64(dst *int64, key string) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return
	}
	v, err := cast.ToInt64E(raw)
	if err != nil {
		log.L().Warn("ignoring unparseable param", zap.String("key", key), zap.String("value", raw), zap.Error(err))
		return
	}
	*dst = v
}

func overrideInt(dst *int, key string) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return
	}
	v, err := cast.ToIntE(raw)
	if err != nil {
		log.L().Warn("ignoring unparseable param", zap.String("key", key), zap.String("value", raw), zap.Error(err))
		return
	}
	*dst = v
}

func overrideUint(dst *uint, key string) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return
	}
	v, err := cast.ToUintE(raw)
	if err != nil {
		log.L().Warn("ignoring unparseable param", zap.String("key", key), zap.String("value", raw), zap.Error(err))
		return
	}
	*dst = v
}

func overrideDuration(dst *time.Duration, key string) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return
	}
	v, err := cast.ToDurationE(raw)
	if err != nil {
		log.L().Warn("ignoring unparseable param", zap.String("key", key), zap.String("value", raw), zap.Error(err))
		return
	}
	*dst = v
}
