// Package store adapts flat key-value engines with hash, set and sorted-set
// capabilities to one common surface. All values are strings; typing happens
// in the codec layer above.
package store

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/mazzegi/keva/mathx"
)

// Store is the capability surface every backend provides. Reads of absent
// keys succeed with empty results; not-found is not an error at this layer.
type Store interface {
	HSetAll(key string, fields map[string]string) error
	HGetAll(key string) (map[string]string, error)
	Del(keys ...string) error
	SAdd(key string, members ...string) error
	SRem(key string, members ...string) error
	ZAdd(key string, score float64, member string) (added int, err error)
	ZRem(key string, members ...string) (removed int, err error)
	ZRange(key string, start, stop int) ([]string, error)
	ZRevRange(key string, start, stop int) ([]string, error)
	Sort(key string, spec SortSpec) ([]string, error)
	Multi() *Tx
	Close() error
}

// SortSpec describes how Sort materializes the members of a set.
// By is an external-key pattern like "root:ns:*->field": the "*" is replaced
// with each member and the field behind "->" provides the sort weight. An
// empty By sorts by the members themselves. Limit <= 0 means no limit.
type SortSpec struct {
	By     string
	Alpha  bool
	Desc   bool
	NoSort bool
	Limit  int
	Offset int
}

type byPattern struct {
	prefix string
	suffix string
	field  string
}

func parseByPattern(by string) (byPattern, error) {
	keyPart, field, ok := strings.Cut(by, "->")
	if !ok {
		return byPattern{}, fmt.Errorf("by-pattern %q: no field part", by)
	}
	prefix, suffix, ok := strings.Cut(keyPart, "*")
	if !ok {
		return byPattern{}, fmt.Errorf("by-pattern %q: no member placeholder", by)
	}
	return byPattern{prefix: prefix, suffix: suffix, field: field}, nil
}

func (bp byPattern) key(member string) string {
	return bp.prefix + member + bp.suffix
}

// sortedPage orders members according to spec and carves the page. weightOf
// resolves the raw sort weight per member; it is ignored with NoSort. Weights
// compare numerically unless Alpha; unparsable or missing numeric weights
// count as 0. Equal weights tie-break on the member itself, with the
// direction applied to both, which keeps repeated calls stable.
func sortedPage(members []string, weightOf func(member string) string, spec SortSpec) []string {
	sort.Strings(members)
	if spec.NoSort {
		return spec.page(members)
	}
	type mw struct {
		member string
		weight string
		num    float64
	}
	mws := make([]mw, 0, len(members))
	for _, m := range members {
		e := mw{member: m, weight: weightOf(m)}
		if !spec.Alpha {
			e.num, _ = strconv.ParseFloat(e.weight, 64)
		}
		mws = append(mws, e)
	}
	less := func(i, j int) bool {
		ei, ej := mws[i], mws[j]
		if spec.Desc {
			ei, ej = ej, ei
		}
		if spec.Alpha {
			if ei.weight != ej.weight {
				return ei.weight < ej.weight
			}
		} else {
			if ei.num != ej.num {
				return ei.num < ej.num
			}
		}
		return ei.member < ej.member
	}
	sort.SliceStable(mws, less)
	page := make([]string, 0, len(mws))
	for _, e := range mws {
		page = append(page, e.member)
	}
	return spec.page(page)
}

func (spec SortSpec) page(members []string) []string {
	off := mathx.Max(spec.Offset, 0)
	if off >= len(members) {
		return nil
	}
	end := len(members)
	if spec.Limit > 0 {
		end = mathx.Min(off+spec.Limit, end)
	}
	return members[off:end]
}

// rangeWindow clamps inclusive start/stop positions over n elements.
// Negative positions count from the end. ok is false for an empty window.
func rangeWindow(n, start, stop int) (lo, hi int, ok bool) {
	if start < 0 {
		start = mathx.Max(n+start, 0)
	}
	if stop < 0 {
		stop = n + stop
	}
	stop = mathx.Min(stop, n-1)
	if start > stop || start >= n {
		return 0, 0, false
	}
	return start, stop, true
}
