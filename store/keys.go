package store

import (
	"github.com/mazzegi/keva/slicesx"
	"github.com/mazzegi/keva/urn"
)

const (
	// DefaultRoot prefixes every key built by a zero Keys value.
	DefaultRoot = "keva"
	// ViewsNamespace is the reserved namespace for view projections.
	ViewsNamespace = "views"
)

// Keys builds the namespaced key strings under which records, index sets and
// view projections live. Key construction is deterministic: equal inputs
// yield equal keys.
type Keys struct {
	Root string
}

func NewKeys(root string) Keys {
	return Keys{Root: root}
}

func (k Keys) root() string {
	if k.Root == "" {
		return DefaultRoot
	}
	return k.Root
}

// Build joins the root and all non-empty segments into a colon-separated
// urn. Empty segments are skipped entirely. A call leaving nothing but the
// root is a caller error and panics.
func (k Keys) Build(segments ...string) string {
	sl := []string{k.root()}
	for _, seg := range segments {
		if seg == "" {
			continue
		}
		sl = append(sl, seg)
	}
	if len(sl) == 1 {
		panic("store: key build without any segment")
	}
	return urn.Make(slicesx.Anys(sl)...).String()
}

// Record is the hash key of one record: root:namespace:id
func (k Keys) Record(namespace, id string) string {
	return k.Build(namespace, id)
}

// Namespace is the all-ids set key of a namespace: root:namespace
func (k Keys) Namespace(namespace string) string {
	return k.Build(namespace)
}

// Index is the set key of one index value: root:namespace:field:value
func (k Keys) Index(namespace, field, value string) string {
	return k.Build(namespace, field, value)
}

// View is the sorted-set key of a view projection: root:views:name
func (k Keys) View(name string) string {
	return k.Build(ViewsNamespace, name)
}
