package maps

import (
	"sort"

	"golang.org/x/exp/constraints"
)

func Clone[K comparable, V any](m map[K]V) map[K]V {
	cm := map[K]V{}
	for k, v := range m {
		cm[k] = v
	}
	return cm
}

// OrderedKeys returns the keys of m in ascending order, for deterministic
// iteration.
func OrderedKeys[K constraints.Ordered, V any](m map[K]V) []K {
	var ks []K
	for k := range m {
		ks = append(ks, k)
	}
	sort.Slice(ks, func(i, j int) bool {
		return ks[i] < ks[j]
	})
	return ks
}

func Keys[K comparable, V any](m map[K]V) []K {
	var ks []K
	for k := range m {
		ks = append(ks, k)
	}
	return ks
}
