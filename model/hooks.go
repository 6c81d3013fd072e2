package model

import (
	"sync"

	"github.com/mazzegi/keva/slicesx"
	"github.com/r3labs/diff/v3"
)

// Change describes one settled save. Prev holds the raw hash fields before
// the save, empty on creation. Log is the property diff against the previous
// state. Record carries the read-back state.
type Change struct {
	Record  *Record
	Prev    map[string]string
	Log     diff.Changelog
	Created bool
}

// Unsub removes the hook it was returned for. Calling it again is a no-op.
type Unsub func()

type hook[F any] struct {
	id int
	fn F
}

type hookList[F any] struct {
	sync.RWMutex
	nextID int
	hooks  []hook[F]
}

func (l *hookList[F]) add(fn F) Unsub {
	l.Lock()
	defer l.Unlock()
	l.nextID++
	id := l.nextID
	l.hooks = append(l.hooks, hook[F]{id: id, fn: fn})
	return func() {
		l.remove(id)
	}
}

func (l *hookList[F]) remove(id int) {
	l.Lock()
	defer l.Unlock()
	l.hooks = slicesx.Filter(l.hooks, func(h hook[F]) bool {
		return h.id != id
	})
}

// fns snapshots the registered hooks in registration order.
func (l *hookList[F]) fns() []F {
	l.RLock()
	defer l.RUnlock()
	return slicesx.Map(l.hooks, func(h hook[F]) F {
		return h.fn
	})
}

type hooks struct {
	beforeSave    hookList[func(r *Record)]
	onSave        hookList[func(chg Change)]
	beforeDestroy hookList[func(r *Record)]
	onDestroy     hookList[func(r *Record)]
	onError       hookList[func(stage string, err error)]
}

// BeforeSave registers fn to run after validation and before the write.
// Hooks may still mutate the record's properties.
func (c *Collection) BeforeSave(fn func(r *Record)) Unsub {
	return c.hooks.beforeSave.add(fn)
}

// OnSave registers fn to run once a save settled. Index sets and views hang
// off this hook; their store errors route through OnError, never into the
// save result.
func (c *Collection) OnSave(fn func(chg Change)) Unsub {
	return c.hooks.onSave.add(fn)
}

func (c *Collection) BeforeDestroy(fn func(r *Record)) Unsub {
	return c.hooks.beforeDestroy.add(fn)
}

func (c *Collection) OnDestroy(fn func(r *Record)) Unsub {
	return c.hooks.onDestroy.add(fn)
}

// OnError registers fn for errors of best-effort reactions. Without any
// subscriber such errors go to the collection log.
func (c *Collection) OnError(fn func(stage string, err error)) Unsub {
	return c.hooks.onError.add(fn)
}

func (c *Collection) emitError(stage string, err error) {
	fns := c.hooks.onError.fns()
	if len(fns) == 0 {
		c.Errorf("%s: %v", stage, err)
		return
	}
	for _, fn := range fns {
		fn(stage, err)
	}
}
