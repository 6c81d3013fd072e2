package store

import (
	"testing"

	"github.com/mazzegi/keva/testx"
)

func TestKeyShapes(t *testing.T) {
	tx := testx.NewTx(t)
	keys := NewKeys("app")

	tx.AssertEqual("app:fruits:f1", keys.Record("fruits", "f1"))
	tx.AssertEqual("app:fruits", keys.Namespace("fruits"))
	tx.AssertEqual("app:fruits:name:apple", keys.Index("fruits", "name", "apple"))
	tx.AssertEqual("app:views:by-calories", keys.View("by-calories"))

	// zero value falls back to the default root
	tx.AssertEqual(DefaultRoot+":fruits:f1", Keys{}.Record("fruits", "f1"))
}

func TestKeySkipsEmptySegments(t *testing.T) {
	tx := testx.NewTx(t)
	keys := NewKeys("app")

	tx.AssertEqual("app:fruits", keys.Build("fruits", ""))
	tx.AssertEqual("app:fruits:f1", keys.Build("", "fruits", "", "f1"))
}

func TestKeyWithoutSegmentsPanics(t *testing.T) {
	tx := testx.NewTx(t)
	panicked := func(fn func()) (p bool) {
		defer func() {
			p = recover() != nil
		}()
		fn()
		return false
	}
	keys := NewKeys("app")
	tx.AssertTrue(panicked(func() { keys.Build() }))
	tx.AssertTrue(panicked(func() { keys.Build("", "") }))
	tx.AssertTrue(!panicked(func() { keys.Build("x") }))
}
