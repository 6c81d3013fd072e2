package model

import (
	"fmt"

	"github.com/mazzegi/keva/codec"
	"github.com/mazzegi/keva/jsonpath"
	"github.com/mazzegi/keva/query"
	"github.com/mazzegi/keva/uuid"
	"github.com/r3labs/diff/v3"
)

// Record is one addressable entity of a collection: an id and a mutable
// property bag. Mutations stay in memory until Save.
type Record struct {
	coll  *Collection
	id    string
	props map[string]any
}

func (r *Record) ID() string {
	return r.id
}

func (r *Record) Collection() *Collection {
	return r.coll
}

// Key is the hash key the record persists under.
func (r *Record) Key() string {
	return r.coll.keys.Record(r.coll.name, r.id)
}

func (r *Record) Get(name string) any {
	return r.props[name]
}

func (r *Record) Set(name string, v any) {
	r.props[name] = v
}

// Props is the live property bag, not a copy.
func (r *Record) Props() map[string]any {
	return r.props
}

// GetPath reads inside a nested property, addressed like "specs/dims/0".
func (r *Record) GetPath(path string) (any, error) {
	return jsonpath.Query(r.props, path)
}

// SetPath writes into a nested property. The path must resolve to an
// existing slot; like Set, the change stays in memory until Save.
func (r *Record) SetPath(path string, v any) error {
	return jsonpath.Set(r.props, path, v)
}

// Save persists the record: defaults fill absent fields, the properties are
// validated, before-save hooks run, a missing id is generated, then the
// dehydrated hash is written and read back in one atomic unit. The read-back
// defines the in-memory state afterwards, not what was written. Finally the
// on-save hooks run; their errors never surface here.
//
// A validation failure returns ValidationErrors without touching the store.
func (r *Record) Save() error {
	c := r.coll
	c.schema.applyDefaults(r.props)
	if verrs := c.schema.validateProps(r.props); len(verrs) > 0 {
		return verrs
	}
	for _, fn := range c.hooks.beforeSave.fns() {
		fn(r)
	}
	if r.id == "" {
		id, err := uuid.MakeV4()
		if err != nil {
			return fmt.Errorf("make-id: %w", err)
		}
		r.id = id
	}
	fields, err := codec.Dehydrate(r.props)
	if err != nil {
		return fmt.Errorf("dehydrate: %w", err)
	}
	key := r.Key()
	prev, err := c.st.HGetAll(key)
	if err != nil {
		return fmt.Errorf("read previous %q: %w", key, err)
	}

	tx := c.st.Multi()
	tx.HSetAll(key, fields)
	res := tx.HGetAll(key)
	if err := tx.Exec(); err != nil {
		return fmt.Errorf("exec save %q: %w", key, err)
	}
	if err := res.Err(); err != nil {
		return fmt.Errorf("read-back %q: %w", key, err)
	}
	props, err := codec.Hydrate(res.Value())
	if err != nil {
		return fmt.Errorf("hydrate read-back: %w", err)
	}
	r.props = props

	prevProps := map[string]any{}
	if len(prev) > 0 {
		prevProps, err = codec.Hydrate(prev)
		if err != nil {
			c.emitError("hydrate-previous", err)
			prevProps = map[string]any{}
		}
	}
	cl, err := diff.Diff(prevProps, r.props)
	if err != nil {
		c.emitError("diff", err)
	}
	chg := Change{
		Record:  r,
		Prev:    prev,
		Log:     cl,
		Created: len(prev) == 0,
	}
	for _, fn := range c.hooks.onSave.fns() {
		fn(chg)
	}
	return nil
}

// Destroy removes the persisted hash. Before-destroy hooks run first, then
// the delete, then the on-destroy hooks which retract index and view
// membership. The record is void afterwards.
func (r *Record) Destroy() error {
	c := r.coll
	if r.id == "" {
		return fmt.Errorf("destroy record without id")
	}
	for _, fn := range c.hooks.beforeDestroy.fns() {
		fn(r)
	}
	key := r.Key()
	if err := c.st.Del(key); err != nil {
		return fmt.Errorf("del %q: %w", key, err)
	}
	for _, fn := range c.hooks.onDestroy.fns() {
		fn(r)
	}
	return nil
}

// Load reads the record's hash and replaces the property bag with the
// hydrated result. An absent hash is no error, just not found.
func (r *Record) Load() (query.Found, error) {
	c := r.coll
	if r.id == "" {
		return false, fmt.Errorf("load record without id")
	}
	key := r.Key()
	fields, err := c.st.HGetAll(key)
	if err != nil {
		return false, fmt.Errorf("hget-all %q: %w", key, err)
	}
	if len(fields) == 0 {
		return false, nil
	}
	props, err := codec.Hydrate(fields)
	if err != nil {
		return false, fmt.Errorf("hydrate: %w", err)
	}
	r.props = props
	return true, nil
}
