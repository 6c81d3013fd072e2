package store

import (
	"sort"
	"sync"

	"github.com/mazzegi/keva/maps"
	"github.com/mazzegi/keva/set"
)

var _ Store = (*MemStore)(nil)

// MemStore keeps everything in process memory. It is the reference backend
// for the conformance suite and the default for tests and ephemeral setups.
// Where no order is promised (NoSort, set materialization) it returns
// members lexicographically, so equal calls return equal sequences.
type MemStore struct {
	mu     sync.RWMutex
	hashes map[string]map[string]string
	sets   map[string]set.Set[string]
	zsets  map[string]map[string]float64
}

func NewMemStore() *MemStore {
	return &MemStore{
		hashes: map[string]map[string]string{},
		sets:   map[string]set.Set[string]{},
		zsets:  map[string]map[string]float64{},
	}
}

func (s *MemStore) HSetAll(key string, fields map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hsetAll(key, fields)
	return nil
}

func (s *MemStore) hsetAll(key string, fields map[string]string) {
	h, ok := s.hashes[key]
	if !ok {
		h = map[string]string{}
		s.hashes[key] = h
	}
	for f, v := range fields {
		h[f] = v
	}
}

func (s *MemStore) HGetAll(key string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hgetAll(key), nil
}

func (s *MemStore) hgetAll(key string) map[string]string {
	h, ok := s.hashes[key]
	if !ok {
		return map[string]string{}
	}
	return maps.Clone(h)
}

func (s *MemStore) Del(keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.del(keys)
	return nil
}

func (s *MemStore) del(keys []string) {
	for _, key := range keys {
		delete(s.hashes, key)
		delete(s.sets, key)
		delete(s.zsets, key)
	}
}

func (s *MemStore) SAdd(key string, members ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sadd(key, members)
	return nil
}

func (s *MemStore) sadd(key string, members []string) {
	ms, ok := s.sets[key]
	if !ok {
		ms = set.New[string]()
		s.sets[key] = ms
	}
	for _, m := range members {
		ms.Insert(m)
	}
}

func (s *MemStore) SRem(key string, members ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.srem(key, members)
	return nil
}

func (s *MemStore) srem(key string, members []string) {
	ms, ok := s.sets[key]
	if !ok {
		return
	}
	for _, m := range members {
		ms.Delete(m)
	}
	if ms.Len() == 0 {
		delete(s.sets, key)
	}
}

func (s *MemStore) ZAdd(key string, score float64, member string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.zadd(key, score, member), nil
}

func (s *MemStore) zadd(key string, score float64, member string) int {
	zs, ok := s.zsets[key]
	if !ok {
		zs = map[string]float64{}
		s.zsets[key] = zs
	}
	_, exists := zs[member]
	zs[member] = score
	if exists {
		return 0
	}
	return 1
}

func (s *MemStore) ZRem(key string, members ...string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.zrem(key, members), nil
}

func (s *MemStore) zrem(key string, members []string) int {
	zs, ok := s.zsets[key]
	if !ok {
		return 0
	}
	var removed int
	for _, m := range members {
		if _, exists := zs[m]; exists {
			delete(zs, m)
			removed++
		}
	}
	if len(zs) == 0 {
		delete(s.zsets, key)
	}
	return removed
}

func (s *MemStore) ZRange(key string, start, stop int) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.zrange(key, start, stop, false), nil
}

func (s *MemStore) ZRevRange(key string, start, stop int) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.zrange(key, start, stop, true), nil
}

func (s *MemStore) zrange(key string, start, stop int, rev bool) []string {
	zs, ok := s.zsets[key]
	if !ok {
		return nil
	}
	members := s.zorder(zs)
	if rev {
		for i, j := 0, len(members)-1; i < j; i, j = i+1, j-1 {
			members[i], members[j] = members[j], members[i]
		}
	}
	lo, hi, ok := rangeWindow(len(members), start, stop)
	if !ok {
		return nil
	}
	return members[lo : hi+1]
}

// zorder returns the members by ascending score, ties by member.
func (s *MemStore) zorder(zs map[string]float64) []string {
	members := maps.Keys(zs)
	sort.Slice(members, func(i, j int) bool {
		si, sj := zs[members[i]], zs[members[j]]
		if si != sj {
			return si < sj
		}
		return members[i] < members[j]
	})
	return members
}

func (s *MemStore) Sort(key string, spec SortSpec) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortSet(key, spec)
}

func (s *MemStore) sortSet(key string, spec SortSpec) ([]string, error) {
	ms, ok := s.sets[key]
	if !ok {
		return nil, nil
	}
	weightOf := func(member string) string { return member }
	if !spec.NoSort && spec.By != "" {
		bp, err := parseByPattern(spec.By)
		if err != nil {
			return nil, err
		}
		weightOf = func(member string) string {
			return s.hashes[bp.key(member)][bp.field]
		}
	}
	return sortedPage(ms.Values(), weightOf, spec), nil
}

func (s *MemStore) Multi() *Tx {
	return &Tx{exec: s.execTx}
}

func (s *MemStore) execTx(cmds []txCmd) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, cmd := range cmds {
		switch cmd.op {
		case opHSetAll:
			s.hsetAll(cmd.key, cmd.fields)
		case opHGetAll:
			cmd.res.val = s.hgetAll(cmd.key)
		case opDel:
			s.del(cmd.keys)
		case opSAdd:
			s.sadd(cmd.key, cmd.members)
		case opSRem:
			s.srem(cmd.key, cmd.members)
		case opZAdd:
			s.zadd(cmd.key, cmd.score, cmd.member)
		case opZRem:
			s.zrem(cmd.key, cmd.members)
		}
	}
	return nil
}

func (s *MemStore) Close() error {
	return nil
}
