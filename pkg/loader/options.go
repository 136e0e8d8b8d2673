package loader

import (
	"net/http"
	"runtime"
	"time"

	"github.com/urlimage-io/urlimage/pkg/params"
)

type loaderOption struct {
	fetcher       Fetcher
	client        *http.Client
	fetchTimeout  time.Duration
	fetchAttempts uint
	maxBodySize   int64
	poolSize      int
}

func defaultLoaderOption() *loaderOption {
	p := params.Get()
	poolSize := p.PoolSize
	if poolSize <= 0 {
		poolSize = runtime.NumCPU()
	}
	return &loaderOption{
		fetchTimeout:  p.FetchTimeout,
		fetchAttempts: p.FetchAttempts,
		maxBodySize:   p.MaxBodySize,
		poolSize:      poolSize,
	}
}

// Option configures a Loader.
type Option func(opt *loaderOption)

// WithFetcher replaces the default HTTP fetcher.
func WithFetcher(f Fetcher) Option {
	return func(opt *loaderOption) {
		opt.fetcher = f
	}
}

// WithHTTPClient sets the http.Client used by the default fetcher.
func WithHTTPClient(client *http.Client) Option {
	return func(opt *loaderOption) {
		opt.client = client
	}
}

// WithFetchTimeout bounds a single fetch attempt.
func WithFetchTimeout(d time.Duration) Option {
	return func(opt *loaderOption) {
		opt.fetchTimeout = d
	}
}

// WithFetchAttempts sets how many times retryable fetch errors are attempted.
func WithFetchAttempts(n uint) Option {
	return func(opt *loaderOption) {
		if n > 0 {
			opt.fetchAttempts = n
		}
	}
}

// WithMaxBodySize rejects responses larger than the given byte count.
func WithMaxBodySize(n int64) Option {
	return func(opt *loaderOption) {
		opt.maxBodySize = n
	}
}

// WithPoolSize sets the fetch worker pool size.
func WithPoolSize(n int) Option {
	return func(opt *loaderOption) {
		if n > 0 {
			opt.poolSize = n
		}
	}
}
