package model

import "golang.org/x/sync/errgroup"

// Destroyer is the capability the bulk teardown acts on. Records and views
// implement it.
type Destroyer interface {
	Destroy() error
}

// DestroyAll destroys everything concurrently, waits for all to settle and
// returns the first error. Nil entries are skipped.
func DestroyAll(ds ...Destroyer) error {
	g := errgroup.Group{}
	for _, d := range ds {
		if d == nil {
			continue
		}
		g.Go(d.Destroy)
	}
	return g.Wait()
}

// Destroyers widens a concrete slice for DestroyAll.
func Destroyers[T Destroyer](ts []T) []Destroyer {
	ds := make([]Destroyer, 0, len(ts))
	for _, t := range ts {
		ds = append(ds, t)
	}
	return ds
}
