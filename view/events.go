package view

import (
	"sync"

	"github.com/mazzegi/keva/model"
	"github.com/mazzegi/keva/slicesx"
)

type EventKind string

const (
	EventAdded   EventKind = "added"
	EventUpdated EventKind = "updated"
	EventRemoved EventKind = "removed"
)

// Event reports one settled membership change of the projection.
type Event struct {
	Kind   EventKind
	ID     string
	Schema string
}

type sub[F any] struct {
	id int
	fn F
}

type subs[F any] struct {
	sync.RWMutex
	nextID int
	subs   []sub[F]
}

func (s *subs[F]) add(fn F) model.Unsub {
	s.Lock()
	defer s.Unlock()
	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, sub[F]{id: id, fn: fn})
	return func() {
		s.remove(id)
	}
}

func (s *subs[F]) remove(id int) {
	s.Lock()
	defer s.Unlock()
	s.subs = slicesx.Filter(s.subs, func(e sub[F]) bool {
		return e.id != id
	})
}

func (s *subs[F]) fns() []F {
	s.RLock()
	defer s.RUnlock()
	return slicesx.Map(s.subs, func(e sub[F]) F {
		return e.fn
	})
}

// OnEvent registers fn for added, updated and removed events.
func (v *View) OnEvent(fn func(evt Event)) model.Unsub {
	return v.eventSubs.add(fn)
}

// OnError registers fn for errors of the best-effort reactions. Without any
// subscriber such errors go to the view log.
func (v *View) OnError(fn func(err error)) model.Unsub {
	return v.errorSubs.add(fn)
}

func (v *View) emitEvent(evt Event) {
	for _, fn := range v.eventSubs.fns() {
		fn(evt)
	}
}

func (v *View) emitError(err error) {
	fns := v.errorSubs.fns()
	if len(fns) == 0 {
		v.Errorf("%v", err)
		return
	}
	for _, fn := range fns {
		fn(err)
	}
}
