package slicesx

// Anys widens the elements of ts to a slice of any, as variadic driver and
// client APIs want them.
func Anys[S ~[]E, E any](ts S) []any {
	as := make([]any, len(ts))
	for i, t := range ts {
		as[i] = t
	}
	return as
}
