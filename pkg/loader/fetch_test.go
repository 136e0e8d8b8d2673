package loader

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urlimage-io/urlimage/pkg/util/ierr"
)

func TestHTTPFetcherOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.Write([]byte("payload"))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(srv.Client(), time.Second, 1, 1<<20)
	body, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), body)
}

func TestHTTPFetcherStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	f := NewHTTPFetcher(srv.Client(), time.Second, 1, 1<<20)
	_, err := f.Fetch(context.Background(), srv.URL)
	assert.ErrorIs(t, err, ierr.ErrNetwork)
	assert.True(t, ierr.IsRetryable(err))
}

func TestHTTPFetcherBodyLimit(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write(make([]byte, 2048))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(srv.Client(), time.Second, 3, 1024)
	_, err := f.Fetch(context.Background(), srv.URL)
	assert.ErrorIs(t, err, ierr.ErrNetwork)
	// oversized bodies are not worth refetching
	assert.Equal(t, 1, calls)
}

func TestHTTPFetcherTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	f := NewHTTPFetcher(nil, time.Second, 1, 1<<20)
	_, err := f.Fetch(context.Background(), srv.URL)
	assert.ErrorIs(t, err, ierr.ErrNetwork)
}

func TestHTTPFetcherFollowsRedirect(t *testing.T) {
	target := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("moved payload"))
	}))
	defer target.Close()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, target.URL, http.StatusFound)
	}))
	defer srv.Close()

	f := NewHTTPFetcher(nil, time.Second, 1, 1<<20)
	body, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, []byte("moved payload"), body)
}
