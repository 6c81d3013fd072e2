package codec

import "time"

// TimeLayout renders dates fixed-width in UTC. Zero-padded fractions keep
// the textual order equal to the chronological order, which sorted reads
// over date fields rely on.
const TimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

func ParseTime(s string) (time.Time, error) {
	return time.Parse(TimeLayout, s)
}
