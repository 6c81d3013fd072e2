package keva

import "github.com/mazzegi/keva/store"

var _ store.Store = (*busStore)(nil)

// busStore forwards every failed store operation to the bus before handing
// the error back. The host sees connectivity trouble even when a layer above
// swallows the error.
type busStore struct {
	store.Store
	bus Bus
}

func (s *busStore) emit(err error) error {
	if err != nil && s.bus != nil {
		s.bus.Emit(EventError, err.Error())
	}
	return err
}

func (s *busStore) HSetAll(key string, fields map[string]string) error {
	return s.emit(s.Store.HSetAll(key, fields))
}

func (s *busStore) HGetAll(key string) (map[string]string, error) {
	m, err := s.Store.HGetAll(key)
	return m, s.emit(err)
}

func (s *busStore) Del(keys ...string) error {
	return s.emit(s.Store.Del(keys...))
}

func (s *busStore) SAdd(key string, members ...string) error {
	return s.emit(s.Store.SAdd(key, members...))
}

func (s *busStore) SRem(key string, members ...string) error {
	return s.emit(s.Store.SRem(key, members...))
}

func (s *busStore) ZAdd(key string, score float64, member string) (int, error) {
	n, err := s.Store.ZAdd(key, score, member)
	return n, s.emit(err)
}

func (s *busStore) ZRem(key string, members ...string) (int, error) {
	n, err := s.Store.ZRem(key, members...)
	return n, s.emit(err)
}

func (s *busStore) ZRange(key string, start, stop int) ([]string, error) {
	ms, err := s.Store.ZRange(key, start, stop)
	return ms, s.emit(err)
}

func (s *busStore) ZRevRange(key string, start, stop int) ([]string, error) {
	ms, err := s.Store.ZRevRange(key, start, stop)
	return ms, s.emit(err)
}

func (s *busStore) Sort(key string, spec store.SortSpec) ([]string, error) {
	ms, err := s.Store.Sort(key, spec)
	return ms, s.emit(err)
}

func (s *busStore) Multi() *store.Tx {
	return s.Store.Multi().Observe(s.emit)
}
