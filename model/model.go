// Package model maps typed records onto a flat key-value store. A collection
// binds a namespace and a schema to a shared store client and serves as
// factory and query surface for its records. Secondary index sets and view
// projections are maintained through save and destroy hooks only, strictly
// after the primary record state settled. Those reactions are best-effort:
// a failure leaves the record state intact and is reported through OnError.
package model

import (
	"errors"
	"fmt"

	"github.com/mazzegi/keva/codec"
	"github.com/mazzegi/keva/query"
	"github.com/mazzegi/keva/store"
	"github.com/mazzegi/log"
	"golang.org/x/exp/slices"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrMultipleConditions rejects queries with more than one condition.
	ErrMultipleConditions = errors.New("find supports at most one condition")
	// ErrUnknownIndex rejects conditions on fields not declared as index.
	ErrUnknownIndex = errors.New("field is not indexed")
)

// Collection is the factory and query surface for the records of one
// namespace. It owns no records and no store; both are shared.
type Collection struct {
	*log.Hook
	st      store.Store
	keys    store.Keys
	name    string
	schema  Schema
	indexes []string
	hooks   hooks
}

// New builds a collection over st for the given namespace and schema.
// Configuration problems fail here, not later during operations.
func New(st store.Store, keys store.Keys, name string, schema Schema) (*Collection, error) {
	if st == nil {
		return nil, fmt.Errorf("store is nil")
	}
	if name == "" {
		return nil, fmt.Errorf("namespace is empty")
	}
	if name == store.ViewsNamespace {
		return nil, fmt.Errorf("namespace %q is reserved", name)
	}
	if err := schema.validate(); err != nil {
		return nil, fmt.Errorf("schema: %w", err)
	}
	c := &Collection{
		Hook:    log.ComponentHook("collection-" + name),
		st:      st,
		keys:    keys,
		name:    name,
		schema:  schema,
		indexes: schema.indexedFields(),
	}
	c.OnSave(c.applyIndexes)
	c.OnDestroy(c.retractIndexes)
	return c, nil
}

func (c *Collection) Name() string {
	return c.name
}

func (c *Collection) Store() store.Store {
	return c.st
}

func (c *Collection) Indexes() []string {
	return slices.Clone(c.indexes)
}

// NewRecord builds an unsaved record bound to this collection. The store is
// not contacted.
func (c *Collection) NewRecord(props map[string]any) *Record {
	if props == nil {
		props = map[string]any{}
	}
	return &Record{coll: c, props: props}
}

// Create builds a record from props and saves it immediately.
func (c *Collection) Create(props map[string]any) (*Record, error) {
	r := c.NewRecord(props)
	if err := r.Save(); err != nil {
		return nil, err
	}
	return r, nil
}

// Get loads the record with the given id. A missing record yields (nil, nil).
func (c *Collection) Get(id string) (*Record, error) {
	if id == "" {
		return nil, fmt.Errorf("id is empty")
	}
	r := &Record{coll: c, id: id, props: map[string]any{}}
	found, err := r.Load()
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return r, nil
}

// Update loads the record, overwrites the named properties and saves. An
// unknown id yields (nil, nil) like Get.
func (c *Collection) Update(id string, props map[string]any) (*Record, error) {
	r, err := c.Get(id)
	if err != nil {
		return nil, fmt.Errorf("get %q: %w", id, err)
	}
	if r == nil {
		return nil, nil
	}
	for name, v := range props {
		r.Set(name, v)
	}
	if err := r.Save(); err != nil {
		return nil, err
	}
	return r, nil
}

// Find resolves the query against the namespace set or, with a condition,
// against the matching index set, and hydrates the resulting ids in order.
// More than one condition fails fast without any store operation.
func (c *Collection) Find(q query.Query) ([]*Record, error) {
	if len(q.Conditions) > 1 {
		return nil, ErrMultipleConditions
	}
	key := c.keys.Namespace(c.name)
	if cond, ok := q.Condition(); ok {
		if !slices.Contains(c.indexes, cond.Name) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownIndex, cond.Name)
		}
		val, err := codec.EncodeValue(cond.Value)
		if err != nil {
			return nil, fmt.Errorf("encode condition %q: %w", cond.Name, err)
		}
		key = c.keys.Index(c.name, cond.Name, val)
	}
	ids, err := c.st.Sort(key, c.sortSpec(q))
	if err != nil {
		return nil, fmt.Errorf("sort %q: %w", key, err)
	}
	return c.GetAll(ids...)
}

// FindOne is Find with limit 1. No match yields (nil, nil).
func (c *Collection) FindOne(q query.Query) (*Record, error) {
	q.LimitOffset.Limit = 1
	rs, err := c.Find(q)
	if err != nil {
		return nil, err
	}
	if len(rs) == 0 {
		return nil, nil
	}
	return rs[0], nil
}

// GetAll loads many ids concurrently, keeping the input order in the result.
// Ids vanished since the id list was read collapse out; any load error fails
// the whole call.
func (c *Collection) GetAll(ids ...string) ([]*Record, error) {
	recs := make([]*Record, len(ids))
	g := errgroup.Group{}
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			r, err := c.Get(id)
			if err != nil {
				return fmt.Errorf("get %q: %w", id, err)
			}
			recs[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	res := make([]*Record, 0, len(recs))
	for _, r := range recs {
		if r != nil {
			res = append(res, r)
		}
	}
	return res, nil
}

func (c *Collection) sortSpec(q query.Query) store.SortSpec {
	spec := store.SortSpec{
		Alpha:  q.Alpha,
		Limit:  q.LimitOffset.Limit,
		Offset: q.LimitOffset.Offset,
	}
	if q.Sort.Name == "" || (q.Sort.Order != query.SortASC && q.Sort.Order != query.SortDESC) {
		spec.NoSort = true
		return spec
	}
	spec.By = c.keys.Record(c.name, "*") + "->" + q.Sort.Name
	spec.Desc = q.Sort.Order == query.SortDESC
	if f, ok := c.schema[q.Sort.Name]; ok {
		switch f.Type {
		case codec.KindString, codec.KindDate, codec.KindPattern:
			// canonical date text sorts lexically
			spec.Alpha = true
		}
	}
	return spec
}
