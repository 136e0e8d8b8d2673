// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance
// with the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License
// is distributed on an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express
// or implied. See the License for the specific language governing permissions and limitations under the License.

package loader

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/urlimage-io/urlimage/pkg/util/ierr"
	"github.com/urlimage-io/urlimage/pkg/util/retry"
)

// Fetcher retrieves the encoded bytes behind a url.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, url string) ([]byte, error)

func (f FetcherFunc) Fetch(ctx context.Context, url string) ([]byte, error) {
	return f(ctx, url)
}

// HTTPFetcher fetches with GET over a shared http.Client, following
// redirects. Transport failures and non-2xx statuses map to ierr.ErrNetwork;
// retryable failures are reattempted up to the configured attempts.
type HTTPFetcher struct {
	client      *http.Client
	timeout     time.Duration
	attempts    uint
	maxBodySize int64
}

// NewHTTPFetcher returns a fetcher with a per-attempt timeout and a response
// size bound. A nil client falls back to http.DefaultClient.
func NewHTTPFetcher(client *http.Client, timeout time.Duration, attempts uint, maxBodySize int64) *HTTPFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	if attempts == 0 {
		attempts = 1
	}
	return &HTTPFetcher{
		client:      client,
		timeout:     timeout,
		attempts:    attempts,
		maxBodySize: maxBodySize,
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	var body []byte
	err := retry.Do(ctx, func() error {
		b, err := f.fetchOnce(ctx, url)
		if err != nil {
			return err
		}
		body = b
		return nil
	}, retry.Attempts(f.attempts), retry.RetryErr(ierr.IsRetryable))
	if err != nil {
		return nil, err
	}
	return body, nil
}

func (f *HTTPFetcher) fetchOnce(ctx context.Context, url string) ([]byte, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, ierr.WrapErrInvalidKey(url, err.Error())
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, ierr.WrapErrNetwork(url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, ierr.WrapErrNetworkStatus(url, resp.StatusCode)
	}

	reader := io.Reader(resp.Body)
	if f.maxBodySize > 0 {
		reader = io.LimitReader(resp.Body, f.maxBodySize+1)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, ierr.WrapErrNetwork(url, err)
	}
	if f.maxBodySize > 0 && int64(len(body)) > f.maxBodySize {
		// re-fetching cannot shrink the payload
		return nil, retry.Unrecoverable(ierr.WrapErrNetwork(url, errors.Newf("response body exceeds %d bytes", f.maxBodySize)))
	}
	return body, nil
}
