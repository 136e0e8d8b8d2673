// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance
// with the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License
// is distributed on an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express
// or implied. See the License for the specific language governing permissions and limitations under the License.

// Package loader resolves image URLs to decoded payloads, serving from an
// injected cache first and coalescing concurrent requests for the same key
// into a single network fetch. Observers receive Loading/Loaded/Failed
// transitions; asynchronous ones arrive on one delivery goroutine per
// loader, cache hits and invalid keys are reported synchronously in the
// calling context.
package loader

import (
	"context"
	"net/url"
	"sync"
	"time"

	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/urlimage-io/urlimage/pkg/cache"
	"github.com/urlimage-io/urlimage/pkg/log"
	"github.com/urlimage-io/urlimage/pkg/metrics"
	"github.com/urlimage-io/urlimage/pkg/util/conc"
	"github.com/urlimage-io/urlimage/pkg/util/ierr"
)

var tokenCounter atomic.Uint64

// attachment binds one observer and its handle to an in-flight entry.
type attachment struct {
	handle   *Handle
	observer Observer
}

func (a attachment) deliver(event Event) {
	a.handle.state.Store(int32(event.State))
	if a.observer != nil {
		a.observer.OnImageEvent(event)
	}
}

type inflightEntry struct {
	observers map[uint64]attachment
}

func (e *inflightEntry) snapshot() []attachment {
	attachments := make([]attachment, 0, len(e.observers))
	for _, att := range e.observers {
		attachments = append(attachments, att)
	}
	return attachments
}

type notification struct {
	attachments []attachment
	event       Event
}

// Loader resolves URL keys to decoded images.
type Loader struct {
	cache   cache.Cache[string, *Image]
	fetcher Fetcher
	pool    *conc.Pool[any]
	sf      conc.Singleflight[*Image]

	mu       sync.Mutex
	inflight map[string]*inflightEntry
	closed   bool

	queue   *notifyQueue
	done    chan struct{}
	pending sync.WaitGroup
}

// New returns a loader backed by the given cache. The cache is shared
// state owned by the caller; one cache may back many loaders.
func New(c cache.Cache[string, *Image], opts ...Option) *Loader {
	opt := defaultLoaderOption()
	for _, o := range opts {
		o(opt)
	}
	fetcher := opt.fetcher
	if fetcher == nil {
		fetcher = NewHTTPFetcher(opt.client, opt.fetchTimeout, opt.fetchAttempts, opt.maxBodySize)
	}

	l := &Loader{
		cache:    c,
		fetcher:  fetcher,
		pool:     conc.NewPool[any](opt.poolSize),
		inflight: make(map[string]*inflightEntry),
		queue:    newNotifyQueue(),
		done:     make(chan struct{}),
	}
	go l.dispatch()
	return l
}

// Handle identifies one load request. Cancel detaches its observer; sibling
// observers of the same key are unaffected.
type Handle struct {
	loader *Loader
	key    string
	token  uint64
	state  *atomic.Int32
}

// Key returns the normalized key of the request.
func (h *Handle) Key() string {
	return h.key
}

// State returns the last state published for this request.
func (h *Handle) State() State {
	return State(h.state.Load())
}

// Cancel detaches the observer before the terminal state. The underlying
// fetch keeps running; a late result still populates the cache but is not
// delivered to this observer.
func (h *Handle) Cancel() {
	l := h.loader
	l.mu.Lock()
	defer l.mu.Unlock()
	if entry, ok := l.inflight[h.key]; ok {
		delete(entry.observers, h.token)
	}
}

// Load resolves rawURL to a decoded image and reports transitions to obs.
//
// Cache hits publish Loaded synchronously before Load returns, without ever
// visiting Loading. Malformed keys publish Failed(ErrInvalidKey)
// synchronously before any cache or network activity. On a miss the request
// either attaches to the in-flight fetch of the same key or starts the only
// fetch for it.
func (l *Loader) Load(ctx context.Context, rawURL string, obs Observer) *Handle {
	h := &Handle{
		loader: l,
		key:    rawURL,
		state:  atomic.NewInt32(int32(StateIdle)),
	}

	key, err := normalizeKey(rawURL)
	if err != nil {
		attachment{handle: h, observer: obs}.deliver(Event{Key: rawURL, State: StateFailed, Err: err})
		return h
	}
	h.key = key

	if img, ok := l.cache.Get(key); ok {
		attachment{handle: h, observer: obs}.deliver(Event{Key: key, State: StateLoaded, Image: img})
		return h
	}

	att := attachment{handle: h, observer: obs}

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		att.deliver(Event{Key: key, State: StateFailed, Err: ierr.WrapErrLoaderClosed(key)})
		return h
	}

	entry, running := l.inflight[key]
	if !running {
		// the fetch for this key may have completed between the cache
		// probe above and taking the registry lock
		if img, ok := l.cache.Get(key); ok {
			l.mu.Unlock()
			att.deliver(Event{Key: key, State: StateLoaded, Image: img})
			return h
		}
		entry = &inflightEntry{
			observers: make(map[uint64]attachment),
		}
		l.inflight[key] = entry
		metrics.LoaderInflight.Set(float64(len(l.inflight)))
		l.pending.Add(1)
	} else {
		metrics.LoaderCoalescedTotal.Inc()
	}
	h.token = tokenCounter.Inc()
	entry.observers[h.token] = att
	// pushed under the registry lock so it is ordered before the terminal
	// notification of this entry
	l.queue.push(notification{
		attachments: []attachment{att},
		event:       Event{Key: key, State: StateLoading},
	})
	l.mu.Unlock()

	if !running {
		fetchCtx := context.WithoutCancel(ctx)
		l.pool.Submit(func() (any, error) {
			l.runFetch(fetchCtx, key)
			return nil, nil
		})
	}
	return h
}

// runFetch performs the single fetch for key, updates the cache, and
// publishes the terminal state to every observer attached to the entry.
func (l *Loader) runFetch(ctx context.Context, key string) {
	defer l.pending.Done()

	start := time.Now()
	// the registry admits at most one live runFetch per key: the inflight
	// entry is removed only after this call returns, so Do never observes
	// a shared call
	img, err, _ := l.sf.Do(key, func() (*Image, error) {
		raw, ferr := l.fetcher.Fetch(ctx, key)
		if ferr != nil {
			return nil, ferr
		}
		return decodeImage(key, raw)
	})

	if err == nil {
		// populate before the entry is removed so that a racing Load
		// either sees the hit or attaches to this entry, never fetches
		l.cache.Put(key, img, img.Size())
		metrics.LoaderFetchTotal.WithLabelValues(metrics.LoaderStatusLoaded).Inc()
		metrics.LoaderFetchLatency.Observe(float64(time.Since(start).Milliseconds()))
	} else {
		metrics.LoaderFetchTotal.WithLabelValues(metrics.LoaderStatusFailed).Inc()
		log.Ctx(ctx).Warn("image fetch failed",
			log.FieldKey(key),
			zap.Int32("code", ierr.Code(err)),
			zap.Error(err),
		)
	}

	event := Event{Key: key, State: StateLoaded, Image: img}
	if err != nil {
		event = Event{Key: key, State: StateFailed, Err: err}
	}

	l.mu.Lock()
	entry := l.inflight[key]
	delete(l.inflight, key)
	metrics.LoaderInflight.Set(float64(len(l.inflight)))
	var attachments []attachment
	if entry != nil {
		attachments = entry.snapshot()
	}
	if len(attachments) > 0 {
		l.queue.push(notification{attachments: attachments, event: event})
	}
	l.mu.Unlock()

	if len(attachments) == 0 {
		log.Ctx(ctx).Debug("discarding late result, all observers detached", log.FieldKey(key))
	}
}

// dispatch is the designated delivery context: every asynchronous
// notification of this loader is issued from this goroutine, and all
// observers of one request see the terminal state in the same pass.
func (l *Loader) dispatch() {
	defer close(l.done)
	for {
		n, ok := l.queue.pop()
		if !ok {
			return
		}
		for _, att := range n.attachments {
			att.deliver(n.event)
		}
	}
}

// Close rejects further loads, waits for in-flight fetches to settle and
// their notifications to drain, and stops the delivery goroutine. Must not
// be called from an observer.
func (l *Loader) Close() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.closed = true
	l.mu.Unlock()

	l.pending.Wait()
	l.queue.close()
	<-l.done
	l.pool.Release()
}

func normalizeKey(raw string) (string, error) {
	if raw == "" {
		return "", ierr.WrapErrInvalidKey(raw, "empty key")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", ierr.WrapErrInvalidKey(raw, err.Error())
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", ierr.WrapErrInvalidKey(raw, "scheme must be http or https")
	}
	if u.Host == "" {
		return "", ierr.WrapErrInvalidKey(raw, "missing host")
	}
	return u.String(), nil
}
