// Package view maintains named projections over one or more collections: a
// persisted ordered set of record references, scored by a sort field and
// optionally filtered, kept up to date through the collections' save and
// destroy hooks. Reactions are best-effort; drift after partial failures is
// healed by Repopulate. An optional in-memory cache mirrors the head of the
// projection and serves covered pages without store access.
package view

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/mazzegi/keva/convert"
	"github.com/mazzegi/keva/mathx"
	"github.com/mazzegi/keva/model"
	"github.com/mazzegi/keva/query"
	"github.com/mazzegi/keva/slicesx"
	"github.com/mazzegi/keva/store"
	"github.com/mazzegi/log"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultListLimit   = 10
	DefaultReplayLimit = 4
)

// member identifies one projected record. Its JSON form is the persisted
// set member.
type member struct {
	ID     string `json:"id"`
	Schema string `json:"schema"`
}

func (m member) encode() string {
	b, _ := json.Marshal(m)
	return string(b)
}

func decodeMember(s string) (member, error) {
	var m member
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return member{}, fmt.Errorf("unmarshal member %q: %w", s, err)
	}
	return m, nil
}

// Config describes a view. Sort names the record field providing scores;
// without it all scores are 0 and the member encoding decides the order.
// Order is the default list direction, Filter decides membership, CacheSize
// enables the head cache and ReplayLimit bounds Repopulate's concurrency.
type Config struct {
	Name        string
	Sort        string
	Order       query.SortOrder
	Filter      func(r *model.Record) bool
	CacheSize   int
	ReplayLimit int
}

type View struct {
	*log.Hook
	mu        sync.Mutex
	st        store.Store
	keys      store.Keys
	cfg       Config
	key       string
	colls     map[string]*model.Collection
	cache     *cache
	unsubs    []model.Unsub
	eventSubs subs[func(evt Event)]
	errorSubs subs[func(err error)]
}

// New builds the view and subscribes it to the given collections' lifecycle
// hooks. With a cache configured, the current head of the projection is read
// in before any events flow.
func New(st store.Store, keys store.Keys, cfg Config, colls ...*model.Collection) (*View, error) {
	if st == nil {
		return nil, fmt.Errorf("store is nil")
	}
	if cfg.Name == "" {
		return nil, fmt.Errorf("view name is empty")
	}
	if len(colls) == 0 {
		return nil, fmt.Errorf("view %q has no collections", cfg.Name)
	}
	names := slicesx.Map(colls, func(c *model.Collection) string {
		return c.Name()
	})
	if len(slicesx.Dedup(names)) != len(names) {
		return nil, fmt.Errorf("view %q has duplicate collections", cfg.Name)
	}
	if cfg.Order != query.SortDESC {
		cfg.Order = query.SortASC
	}
	if cfg.ReplayLimit <= 0 {
		cfg.ReplayLimit = DefaultReplayLimit
	}
	v := &View{
		Hook:  log.ComponentHook("view-" + cfg.Name),
		st:    st,
		keys:  keys,
		cfg:   cfg,
		key:   keys.View(cfg.Name),
		colls: map[string]*model.Collection{},
	}
	for _, coll := range colls {
		v.colls[coll.Name()] = coll
	}
	if cfg.CacheSize > 0 {
		v.cache = newCache(cfg.CacheSize, cfg.Order == query.SortDESC)
		if err := v.primeCache(); err != nil {
			return nil, fmt.Errorf("prime cache: %w", err)
		}
	}
	for _, coll := range colls {
		v.unsubs = append(v.unsubs, coll.OnSave(v.onSave), coll.OnDestroy(v.onDestroy))
	}
	return v, nil
}

func (v *View) Name() string {
	return v.cfg.Name
}

// Key is the sorted-set key the projection persists under.
func (v *View) Key() string {
	return v.key
}

// List reads one page of the projection and hydrates the referenced records,
// preserving the projection order. A non-positive limit falls back to
// DefaultListLimit, SortNone to the view's default direction. Pages the
// cache provably covers in the default direction are served without store
// access.
func (v *View) List(lo query.LimitOffset, order query.SortOrder) ([]*model.Record, error) {
	limit := lo.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	offset := mathx.Max(lo.Offset, 0)
	if order != query.SortASC && order != query.SortDESC {
		order = v.cfg.Order
	}
	if order == v.cfg.Order {
		if recs, ok := v.cache.window(offset, limit); ok {
			return recs, nil
		}
	}
	ms, err := v.rangeMembers(offset, limit, order == query.SortDESC)
	if err != nil {
		return nil, err
	}
	return v.hydrate(ms)
}

// Destroy removes the persisted projection. Subscriptions stay alive, so
// subsequent saves fill a fresh projection.
func (v *View) Destroy() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if err := v.st.Del(v.key); err != nil {
		return fmt.Errorf("del %q: %w", v.key, err)
	}
	v.cache.clear()
	return nil
}

// Close detaches the view from its collections. The persisted projection
// stays.
func (v *View) Close() {
	for _, unsub := range v.unsubs {
		unsub()
	}
	v.unsubs = nil
}

// Repopulate rebuilds the projection from the collections' current records:
// tear down, then replay the save reaction for every record with bounded
// concurrency. This heals drift accumulated through failed reactions.
func (v *View) Repopulate() error {
	if err := v.Destroy(); err != nil {
		return err
	}
	for name, coll := range v.colls {
		recs, err := coll.Find(query.Query{})
		if err != nil {
			return fmt.Errorf("find all %q: %w", name, err)
		}
		g := errgroup.Group{}
		g.SetLimit(v.cfg.ReplayLimit)
		for _, rec := range recs {
			rec := rec
			g.Go(func() error {
				evt, err := v.react(rec)
				if err != nil {
					return err
				}
				if evt != nil {
					v.emitEvent(*evt)
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return fmt.Errorf("replay %q: %w", name, err)
		}
	}
	return nil
}

func (v *View) onSave(chg model.Change) {
	evt, err := v.react(chg.Record)
	if err != nil {
		v.emitError(err)
		return
	}
	if evt != nil {
		v.emitEvent(*evt)
	}
}

func (v *View) onDestroy(r *model.Record) {
	m := member{ID: r.ID(), Schema: r.Collection().Name()}
	if err := v.retract(m); err != nil {
		v.emitError(err)
		return
	}
	v.emitEvent(Event{Kind: EventRemoved, ID: m.ID, Schema: m.Schema})
}

// react applies one record state to the projection and the cache as a unit.
// The returned event is nil when nothing changed.
func (v *View) react(rec *model.Record) (*Event, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	m := member{ID: rec.ID(), Schema: rec.Collection().Name()}
	enc := m.encode()
	if v.cfg.Filter != nil && !v.cfg.Filter(rec) {
		removed, err := v.st.ZRem(v.key, enc)
		if err != nil {
			return nil, fmt.Errorf("zrem %q: %w", v.key, err)
		}
		if removed == 0 {
			return nil, nil
		}
		v.cache.remove(m)
		return &Event{Kind: EventRemoved, ID: m.ID, Schema: m.Schema}, nil
	}
	score := v.scoreOf(rec)
	added, err := v.st.ZAdd(v.key, score, enc)
	if err != nil {
		return nil, fmt.Errorf("zadd %q: %w", v.key, err)
	}
	v.cache.upsert(entry{m: m, enc: enc, score: score, rec: rec})
	kind := EventUpdated
	if added > 0 {
		kind = EventAdded
	}
	return &Event{Kind: kind, ID: m.ID, Schema: m.Schema}, nil
}

func (v *View) retract(m member) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, err := v.st.ZRem(v.key, m.encode()); err != nil {
		return fmt.Errorf("zrem %q: %w", v.key, err)
	}
	v.cache.remove(m)
	return nil
}

func (v *View) scoreOf(rec *model.Record) float64 {
	if v.cfg.Sort == "" {
		return 0
	}
	f, _ := convert.ToFloat(rec.Get(v.cfg.Sort))
	return f
}

func (v *View) rangeMembers(offset, limit int, desc bool) ([]member, error) {
	stop := offset + limit - 1
	var raw []string
	var err error
	if desc {
		raw, err = v.st.ZRevRange(v.key, offset, stop)
	} else {
		raw, err = v.st.ZRange(v.key, offset, stop)
	}
	if err != nil {
		return nil, fmt.Errorf("zrange %q: %w", v.key, err)
	}
	ms := make([]member, 0, len(raw))
	for _, s := range raw {
		m, err := decodeMember(s)
		if err != nil {
			return nil, err
		}
		ms = append(ms, m)
	}
	return ms, nil
}

// hydrate loads the records behind the members concurrently, preserving the
// member order. Vanished records collapse out.
func (v *View) hydrate(ms []member) ([]*model.Record, error) {
	recs := make([]*model.Record, len(ms))
	g := errgroup.Group{}
	for i, m := range ms {
		i, m := i, m
		g.Go(func() error {
			coll, ok := v.colls[m.Schema]
			if !ok {
				return fmt.Errorf("no collection for schema %q", m.Schema)
			}
			rec, err := coll.Get(m.ID)
			if err != nil {
				return fmt.Errorf("get %s/%s: %w", m.Schema, m.ID, err)
			}
			recs[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	res := make([]*model.Record, 0, len(recs))
	for _, rec := range recs {
		if rec != nil {
			res = append(res, rec)
		}
	}
	return res, nil
}

// primeCache fills the cache with the current head of the projection. A
// short read marks it complete.
func (v *View) primeCache() error {
	ms, err := v.rangeMembers(0, v.cfg.CacheSize, v.cfg.Order == query.SortDESC)
	if err != nil {
		return err
	}
	full := len(ms) < v.cfg.CacheSize
	entries := make([]entry, 0, len(ms))
	for _, m := range ms {
		coll, ok := v.colls[m.Schema]
		if !ok {
			full = false
			break
		}
		rec, err := coll.Get(m.ID)
		if err != nil {
			return fmt.Errorf("get %s/%s: %w", m.Schema, m.ID, err)
		}
		if rec == nil {
			// drifted member, needs a repopulate
			full = false
			break
		}
		entries = append(entries, entry{m: m, enc: m.encode(), score: v.scoreOf(rec), rec: rec})
	}
	v.cache.prime(entries, full)
	return nil
}
