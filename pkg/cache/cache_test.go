// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance
// with the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License
// is distributed on an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express
// or implied. See the License for the specific language governing permissions and limitations under the License.

package cache

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"
)

type CacheSuite struct {
	suite.Suite
}

func (s *CacheSuite) TestGetAfterPut() {
	c := NewLRUCache(WithCapacity[string, string](1024))

	c.Put("k", "v", 10)
	v, ok := c.Get("k")
	s.True(ok)
	s.Equal("v", v)
	s.Equal(1, c.Len())
	s.Equal(int64(10), c.ResidentBytes())

	_, ok = c.Get("absent")
	s.False(ok)
}

func (s *CacheSuite) TestEvictLeastRecentlyAccessed() {
	c := NewLRUCache(WithCapacity[int, int](30))

	c.Put(1, 1, 10)
	c.Put(2, 2, 10)
	c.Put(3, 3, 10)

	// refresh 1 so that 2 is now the oldest
	_, ok := c.Get(1)
	s.True(ok)

	c.Put(4, 4, 10)
	s.False(c.Contains(2))
	s.True(c.Contains(1))
	s.True(c.Contains(3))
	s.True(c.Contains(4))
	s.LessOrEqual(c.ResidentBytes(), int64(30))
}

func (s *CacheSuite) TestInsertedEntryNeverSelfEvicted() {
	c := NewLRUCache(WithCapacity[string, string](10))

	// larger than the whole budget, admitted alone
	c.Put("big", "payload", 100)
	v, ok := c.Get("big")
	s.True(ok)
	s.Equal("payload", v)
	s.Equal(1, c.Len())

	// the oversized entry goes as soon as something else arrives
	c.Put("small", "x", 5)
	s.False(c.Contains("big"))
	s.True(c.Contains("small"))
}

func (s *CacheSuite) TestMaxEntriesScenario() {
	c := NewLRUCache(WithCapacity[string, string](1<<20), WithMaxEntries[string, string](2))

	c.Put("A", "a", 1)
	c.Put("B", "b", 1)
	c.Put("C", "c", 1)

	s.False(c.Contains("A"))
	s.True(c.Contains("B"))
	s.True(c.Contains("C"))
	s.Equal(2, c.Len())
}

func (s *CacheSuite) TestReplace() {
	c := NewLRUCache(WithCapacity[string, string](100))

	c.Put("k", "old", 10)
	c.Put("k", "new", 40)
	v, ok := c.Get("k")
	s.True(ok)
	s.Equal("new", v)
	s.Equal(1, c.Len())
	s.Equal(int64(40), c.ResidentBytes())
}

func (s *CacheSuite) TestInvalidate() {
	c := NewLRUCache(WithCapacity[string, int](100))

	c.Put("a", 1, 1)
	c.Put("b", 2, 1)
	c.Invalidate("a")
	s.False(c.Contains("a"))
	s.True(c.Contains("b"))

	c.InvalidateAll()
	s.Equal(0, c.Len())
	s.Equal(int64(0), c.ResidentBytes())
}

func (s *CacheSuite) TestListeners() {
	var (
		mu       sync.Mutex
		inserted []string
		removed  []string
	)
	c := NewLRUCache(
		WithCapacity[string, int](20),
		WithInsertionListener[string, int](func(k string, _ int) {
			mu.Lock()
			inserted = append(inserted, k)
			mu.Unlock()
		}),
		WithRemovalListener[string, int](func(k string, _ int) {
			mu.Lock()
			removed = append(removed, k)
			mu.Unlock()
		}),
	)

	c.Put("a", 1, 10)
	c.Put("b", 2, 10)
	c.Put("c", 3, 10)
	c.Invalidate("c")

	mu.Lock()
	defer mu.Unlock()
	s.Equal([]string{"a", "b", "c"}, inserted)
	s.Equal([]string{"a", "c"}, removed)
}

func (s *CacheSuite) TestStats() {
	c := NewLRUCache(WithCapacity[string, int](20))

	c.Put("a", 1, 10)
	c.Put("b", 2, 10)
	c.Put("c", 3, 10)
	c.Get("c")
	c.Get("absent")

	st := c.Stats()
	s.Equal(uint64(3), st.Puts)
	s.Equal(uint64(1), st.Hits)
	s.Equal(uint64(1), st.Misses)
	s.Equal(uint64(1), st.Evictions)
}

func (s *CacheSuite) TestConcurrentAccess() {
	c := NewLRUCache(WithCapacity[string, int](1000))

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("key-%d", i%20)
				c.Put(key, g*1000+i, 10)
				c.Get(key)
			}
		}(g)
	}
	wg.Wait()

	s.LessOrEqual(c.ResidentBytes(), int64(1000))
	s.Equal(int64(c.Len())*10, c.ResidentBytes())
}

func TestCacheSuite(t *testing.T) {
	suite.Run(t, new(CacheSuite))
}
