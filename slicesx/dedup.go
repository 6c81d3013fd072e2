package slicesx

import "slices"

func Dedup[S ~[]E, E comparable](ts S) []E {
	var dts []E
	for _, t := range ts {
		if !slices.Contains(dts, t) {
			dts = append(dts, t)
		}
	}
	return dts
}
