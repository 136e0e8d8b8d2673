package cache

import "go.uber.org/atomic"

// Stats is a point-in-time snapshot of cache counters.
type Stats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
	Puts      uint64
}

type statsCounter struct {
	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
	puts      atomic.Uint64
}

func (s *statsCounter) snapshot() Stats {
	return Stats{
		Hits:      s.hits.Load(),
		Misses:    s.misses.Load(),
		Evictions: s.evictions.Load(),
		Puts:      s.puts.Load(),
	}
}
