package view

import (
	"sort"
	"sync"

	"github.com/mazzegi/keva/model"
	"github.com/mazzegi/keva/slicesx"
)

type entry struct {
	m     member
	enc   string
	score float64
	rec   *model.Record
}

// cache mirrors the head of the projection in the view's default direction.
// Its entries are always a true prefix of the persisted order: when complete
// is false, every member not held sorts at or after the last entry. Mutations
// that cannot keep that promise shrink the cache instead of guessing; a
// repopulate rebuilds it to full length. A nil cache ignores all calls.
type cache struct {
	mu       sync.RWMutex
	size     int
	desc     bool
	complete bool
	entries  []entry
}

func newCache(size int, desc bool) *cache {
	return &cache{
		size:     size,
		desc:     desc,
		complete: true,
	}
}

// less orders like the persisted set read in the default direction: by
// score, ties by the encoded member.
func (c *cache) less(a, b entry) bool {
	if c.desc {
		if a.score != b.score {
			return a.score > b.score
		}
		return a.enc > b.enc
	}
	if a.score != b.score {
		return a.score < b.score
	}
	return a.enc < b.enc
}

func (c *cache) upsert(e entry) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.splice(e.m)
	if !c.complete {
		if len(c.entries) == 0 {
			return
		}
		if !c.less(e, c.entries[len(c.entries)-1]) {
			// beyond the known prefix, position not provable
			return
		}
	}
	c.entries = append(c.entries, e)
	c.sort()
	if len(c.entries) > c.size {
		c.entries = c.entries[:c.size]
		c.complete = false
	}
}

func (c *cache) remove(m member) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.splice(m)
}

func (c *cache) splice(m member) {
	c.entries = slicesx.Filter(c.entries, func(e entry) bool {
		return e.m != m
	})
}

func (c *cache) sort() {
	sort.Slice(c.entries, func(i, j int) bool {
		return c.less(c.entries[i], c.entries[j])
	})
}

func (c *cache) clear() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = nil
	c.complete = true
}

// prime replaces the cache content with the given head entries. full marks
// whether they are the whole projection.
func (c *cache) prime(entries []entry, full bool) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = entries
	c.complete = full
}

// window serves records for the requested page when the cache can prove it
// covers it: either the page ends within the entries, or the cache holds the
// complete projection and the page just clips.
func (c *cache) window(offset, limit int) ([]*model.Record, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	end := offset + limit
	if end > len(c.entries) {
		if !c.complete {
			return nil, false
		}
		end = len(c.entries)
	}
	if offset >= end {
		return nil, true
	}
	recs := make([]*model.Record, 0, end-offset)
	for _, e := range c.entries[offset:end] {
		recs = append(recs, e.rec)
	}
	return recs, true
}

func (c *cache) len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
