// Package query holds the descriptors collection lookups are built from.
package query

// Found reports whether a load hit an existing record. Absence is a valid
// outcome, not an error.
type Found bool

type LimitOffset struct {
	Limit  int
	Offset int
}

func LO(limit, offset int) LimitOffset {
	return LimitOffset{
		Limit:  limit,
		Offset: offset,
	}
}

type SortOrder string

const (
	SortNone SortOrder = "None"
	SortASC  SortOrder = "ASC"
	SortDESC SortOrder = "DESC"
)

// Condition matches records whose field equals the value. Conditions route
// through declared index sets; a collection find accepts at most one.
type Condition struct {
	Name  string
	Value any
}

func C(name string, val any) Condition {
	return Condition{
		Name:  name,
		Value: val,
	}
}

type Sort struct {
	Name  string
	Order SortOrder
}

func S(name string, ord SortOrder) Sort {
	return Sort{
		Name:  name,
		Order: ord,
	}
}

// Query describes one collection lookup. Alpha forces lexicographic weight
// comparison; string and date sort fields compare that way regardless.
type Query struct {
	LimitOffset LimitOffset
	Conditions  []Condition
	Sort        Sort
	Alpha       bool
}

func (q Query) Condition() (Condition, bool) {
	if len(q.Conditions) == 0 {
		return Condition{}, false
	}
	return q.Conditions[0], true
}

// Where is a one-condition query.
func Where(name string, val any) Query {
	return Query{Conditions: []Condition{C(name, val)}}
}

func (q Query) WithSort(name string, ord SortOrder) Query {
	q.Sort = S(name, ord)
	return q
}

func (q Query) WithLimitOffset(limit, offset int) Query {
	q.LimitOffset = LO(limit, offset)
	return q
}
