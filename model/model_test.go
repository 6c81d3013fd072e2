package model

import (
	"errors"
	"testing"
	"time"

	"github.com/mazzegi/keva/codec"
	"github.com/mazzegi/keva/makex"
	"github.com/mazzegi/keva/mathx"
	"github.com/mazzegi/keva/query"
	"github.com/mazzegi/keva/slicesx"
	"github.com/mazzegi/keva/store"
	"github.com/mazzegi/keva/testx"
)

// tracingStore records which operations pass through to the wrapped store.
type tracingStore struct {
	store.Store
	ops []string
}

func (s *tracingStore) trace(op string) {
	s.ops = append(s.ops, op)
}

func (s *tracingStore) HSetAll(key string, fields map[string]string) error {
	s.trace("hset-all")
	return s.Store.HSetAll(key, fields)
}

func (s *tracingStore) HGetAll(key string) (map[string]string, error) {
	s.trace("hget-all")
	return s.Store.HGetAll(key)
}

func (s *tracingStore) Del(keys ...string) error {
	s.trace("del")
	return s.Store.Del(keys...)
}

func (s *tracingStore) SAdd(key string, members ...string) error {
	s.trace("sadd")
	return s.Store.SAdd(key, members...)
}

func (s *tracingStore) SRem(key string, members ...string) error {
	s.trace("srem")
	return s.Store.SRem(key, members...)
}

func (s *tracingStore) Sort(key string, spec store.SortSpec) ([]string, error) {
	s.trace("sort")
	return s.Store.Sort(key, spec)
}

func (s *tracingStore) Multi() *store.Tx {
	s.trace("multi")
	return s.Store.Multi()
}

func fruitSchema() Schema {
	return Schema{
		"name":     {Type: codec.KindString, Required: true, Index: true},
		"group":    {Type: codec.KindString, Index: true},
		"calories": {Type: codec.KindNumber},
		"fresh":    {Type: codec.KindBoolean, Default: true},
		"picked":   {Type: codec.KindDate},
		"tags":     {Type: codec.KindArray},
	}
}

func fruits(t *testing.T) *Collection {
	coll, err := New(store.NewMemStore(), store.Keys{}, "fruits", fruitSchema())
	if err != nil {
		t.Fatalf("new collection: %v", err)
	}
	return coll
}

func recordIDs(rs []*Record) []string {
	return slicesx.Map(rs, func(r *Record) string {
		return r.ID()
	})
}

func TestNewFails(t *testing.T) {
	tx := testx.NewTx(t)
	type test struct {
		st     store.Store
		name   string
		schema Schema
	}
	mem := store.NewMemStore()
	tests := []test{
		{st: nil, name: "fruits", schema: Schema{}},
		{st: mem, name: "", schema: Schema{}},
		{st: mem, name: "views", schema: Schema{}},
		{st: mem, name: "fruits", schema: Schema{"x": {Type: "mystery"}}},
		{st: mem, name: "fruits", schema: Schema{"x": {Type: codec.KindObject, Index: true}}},
		{st: mem, name: "fruits", schema: Schema{"x": {Type: codec.KindNumber, Default: "nan"}}},
		{st: mem, name: "fruits", schema: Schema{codec.TypesField: {Type: codec.KindString}}},
		{st: mem, name: "fruits", schema: Schema{"x": {Type: codec.KindString, Range: makex.PtrOf(mathx.NewRange(0.0, 1.0))}}},
		{st: mem, name: "fruits", schema: Schema{"x": {Type: codec.KindNumber, Range: makex.PtrOf(mathx.NewRange(2.0, 1.0))}}},
		{st: mem, name: "fruits", schema: Schema{"x": {Type: codec.KindNumber, Default: float64(5), Range: makex.PtrOf(mathx.NewRange(0.0, 1.0))}}},
	}
	testx.RunTests(tx, tests, func(tx *testx.Tx, test test) {
		_, err := New(test.st, store.Keys{}, test.name, test.schema)
		tx.AssertErr(err)
	})
}

func TestCreateGetRoundTrip(t *testing.T) {
	tx := testx.NewTx(t)
	coll := fruits(t)

	picked := time.Date(2024, 3, 17, 9, 30, 0, 0, time.UTC)
	rec, err := coll.Create(map[string]any{
		"name":     "apple",
		"group":    "fruit",
		"calories": float64(90),
		"picked":   picked,
		"tags":     []any{"crisp", "green"},
	})
	tx.AssertNoErr(err)
	tx.AssertTrue(rec.ID() != "")

	got, err := coll.Get(rec.ID())
	tx.AssertNoErr(err)
	tx.AssertEqual(map[string]any{
		"name":     "apple",
		"group":    "fruit",
		"calories": float64(90),
		"fresh":    true,
		"picked":   picked,
		"tags":     []any{"crisp", "green"},
	}, got.Props())
	tx.AssertEqual(rec.Props(), got.Props())
}

func TestGetNotFound(t *testing.T) {
	tx := testx.NewTx(t)
	coll := fruits(t)

	rec, err := coll.Get("no-such-id")
	tx.AssertNoErr(err)
	tx.AssertTrue(rec == nil)
}

func TestValidation(t *testing.T) {
	tx := testx.NewTx(t)
	ts := &tracingStore{Store: store.NewMemStore()}
	coll, err := New(ts, store.Keys{}, "fruits", fruitSchema())
	tx.AssertNoErr(err)

	_, err = coll.Create(map[string]any{
		"calories": "ninety",
	})
	tx.AssertErr(err)
	var verrs ValidationErrors
	tx.AssertTrue(errors.As(err, &verrs))
	tx.AssertEqual(ValidationErrors{
		{Field: "calories", Reason: `expect kind "number", have "string"`},
		{Field: "name", Reason: "required"},
	}, verrs)
	tx.AssertEqual(0, len(ts.ops))
}

func TestRangeValidation(t *testing.T) {
	tx := testx.NewTx(t)
	coll, err := New(store.NewMemStore(), store.Keys{}, "sensors", Schema{
		"name":  {Type: codec.KindString, Required: true},
		"level": {Type: codec.KindNumber, Range: makex.PtrOf(mathx.NewRange(0.0, 100.0))},
	})
	tx.AssertNoErr(err)

	_, err = coll.Create(map[string]any{"name": "probe", "level": float64(50)})
	tx.AssertNoErr(err)
	_, err = coll.Create(map[string]any{"name": "probe", "level": float64(100)})
	tx.AssertNoErr(err)

	_, err = coll.Create(map[string]any{"name": "probe", "level": float64(101)})
	var verrs ValidationErrors
	tx.AssertTrue(errors.As(err, &verrs))
	tx.AssertEqual(ValidationErrors{{Field: "level", Reason: "101 out of range [0, 100]"}}, verrs)

	// ints coerce before the bounds check
	_, err = coll.Create(map[string]any{"name": "probe", "level": -1})
	tx.AssertErr(err)
}

func TestDefaults(t *testing.T) {
	tx := testx.NewTx(t)
	coll := fruits(t)

	rec, err := coll.Create(map[string]any{"name": "apple"})
	tx.AssertNoErr(err)
	tx.AssertEqual(true, rec.Get("fresh"))

	rec, err = coll.Create(map[string]any{"name": "prune", "fresh": false})
	tx.AssertNoErr(err)
	tx.AssertEqual(false, rec.Get("fresh"))
}

func TestUpdate(t *testing.T) {
	tx := testx.NewTx(t)
	coll := fruits(t)

	rec, err := coll.Create(map[string]any{"name": "apple", "calories": float64(90)})
	tx.AssertNoErr(err)

	upd, err := coll.Update(rec.ID(), map[string]any{"calories": float64(95)})
	tx.AssertNoErr(err)
	tx.AssertEqual(float64(95), upd.Get("calories"))
	tx.AssertEqual("apple", upd.Get("name"))

	got, err := coll.Get(rec.ID())
	tx.AssertNoErr(err)
	tx.AssertEqual(float64(95), got.Get("calories"))

	missing, err := coll.Update("no-such-id", map[string]any{"calories": float64(1)})
	tx.AssertNoErr(err)
	tx.AssertTrue(missing == nil)
}

func seedFruits(t *testing.T, coll *Collection) map[string]string {
	ids := map[string]string{}
	for _, props := range []map[string]any{
		{"name": "apple", "group": "fruit", "calories": float64(90)},
		{"name": "cake", "group": "dessert", "calories": float64(500)},
		{"name": "orange", "group": "fruit", "calories": float64(130)},
		{"name": "banana", "group": "fruit", "calories": float64(105)},
	} {
		rec, err := coll.Create(props)
		if err != nil {
			t.Fatalf("create %v: %v", props, err)
		}
		ids[props["name"].(string)] = rec.ID()
	}
	return ids
}

func TestFind(t *testing.T) {
	tx := testx.NewTx(t)
	coll := fruits(t)
	ids := seedFruits(t, coll)

	// all records, ascending by calories
	rs, err := coll.Find(query.Query{}.WithSort("calories", query.SortASC))
	tx.AssertNoErr(err)
	tx.AssertEqual([]string{ids["apple"], ids["banana"], ids["orange"], ids["cake"]}, recordIDs(rs))

	// descending window
	rs, err = coll.Find(query.Query{}.WithSort("calories", query.SortDESC).WithLimitOffset(2, 1))
	tx.AssertNoErr(err)
	tx.AssertEqual([]string{ids["orange"], ids["banana"]}, recordIDs(rs))

	// condition on an indexed field, sorted by name
	rs, err = coll.Find(query.Where("group", "fruit").WithSort("name", query.SortASC))
	tx.AssertNoErr(err)
	tx.AssertEqual([]string{ids["apple"], ids["banana"], ids["orange"]}, recordIDs(rs))

	// no match
	rs, err = coll.Find(query.Where("group", "cheese"))
	tx.AssertNoErr(err)
	tx.AssertEqual(0, len(rs))
}

func TestFindFailsFast(t *testing.T) {
	tx := testx.NewTx(t)
	ts := &tracingStore{Store: store.NewMemStore()}
	coll, err := New(ts, store.Keys{}, "fruits", fruitSchema())
	tx.AssertNoErr(err)

	_, err = coll.Find(query.Query{Conditions: []query.Condition{
		query.C("name", "apple"),
		query.C("group", "fruit"),
	}})
	tx.AssertTrue(errors.Is(err, ErrMultipleConditions))
	tx.AssertEqual(0, len(ts.ops))

	_, err = coll.Find(query.Where("calories", float64(90)))
	tx.AssertTrue(errors.Is(err, ErrUnknownIndex))
	tx.AssertEqual(0, len(ts.ops))
}

func TestFindOne(t *testing.T) {
	tx := testx.NewTx(t)
	coll := fruits(t)
	ids := seedFruits(t, coll)

	rec, err := coll.FindOne(query.Where("group", "fruit").WithSort("calories", query.SortDESC))
	tx.AssertNoErr(err)
	tx.AssertEqual(ids["orange"], rec.ID())

	rec, err = coll.FindOne(query.Where("group", "cheese"))
	tx.AssertNoErr(err)
	tx.AssertTrue(rec == nil)
}

func TestGetAll(t *testing.T) {
	tx := testx.NewTx(t)
	coll := fruits(t)
	ids := seedFruits(t, coll)

	rs, err := coll.GetAll(ids["orange"], "vanished", ids["apple"])
	tx.AssertNoErr(err)
	tx.AssertEqual([]string{ids["orange"], ids["apple"]}, recordIDs(rs))
}

func TestStaleFieldComesBack(t *testing.T) {
	tx := testx.NewTx(t)
	coll := fruits(t)

	rec, err := coll.Create(map[string]any{"name": "apple", "group": "fruit"})
	tx.AssertNoErr(err)

	// a field removed in memory survives in the hash and the read-back
	// resurrects it
	delete(rec.Props(), "group")
	err = rec.Save()
	tx.AssertNoErr(err)
	tx.AssertEqual("fruit", rec.Get("group"))
}

func TestRecordPaths(t *testing.T) {
	tx := testx.NewTx(t)
	coll, err := New(store.NewMemStore(), store.Keys{}, "parcels", Schema{
		"name":  {Type: codec.KindString, Required: true},
		"specs": {Type: codec.KindObject},
	})
	tx.AssertNoErr(err)

	rec, err := coll.Create(map[string]any{
		"name": "box",
		"specs": map[string]any{
			"weight": 1.5,
			"dims":   []any{"10", "20"},
		},
	})
	tx.AssertNoErr(err)

	v, err := rec.GetPath("specs/weight")
	tx.AssertNoErr(err)
	tx.AssertEqual(1.5, v)

	v, err = rec.GetPath("specs/dims/1")
	tx.AssertNoErr(err)
	tx.AssertEqual("20", v)

	_, err = rec.GetPath("specs/height")
	tx.AssertErr(err)
	err = rec.SetPath("specs/height", 3.0)
	tx.AssertErr(err)

	err = rec.SetPath("specs/weight", 2.25)
	tx.AssertNoErr(err)
	err = rec.Save()
	tx.AssertNoErr(err)

	got, err := coll.Get(rec.ID())
	tx.AssertNoErr(err)
	v, err = got.GetPath("specs/weight")
	tx.AssertNoErr(err)
	tx.AssertEqual(2.25, v)
}
