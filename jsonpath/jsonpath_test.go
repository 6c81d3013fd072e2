package jsonpath

import (
	"testing"
	"time"

	"github.com/mazzegi/keva/testx"
)

type TT1 struct {
	F1 string
	F2 int
	F3 float64
	T2 TT2
	EmbeddedT
}

type TT2 struct {
	G1 string
	G2 int
	G3 float64
	S1 []int
	S2 []TT3
}

type TT3 struct {
	H1   string
	H2   int
	M1   map[string]string
	M2   map[string]TT1
	M3   map[string][]int
	TT2s []TT2
}

type EmbeddedT struct {
	E1 string
}

func testTT1() TT1 {
	return TT1{
		F1: "a-string",
		F2: 42,
		F3: 0.42,
		T2: TT2{
			G1: "a-g-string",
			G2: 433,
			G3: 12.433,
			S1: []int{2, 3, 4},
			S2: []TT3{
				{
					H1: "h1-s",
					H2: 1,
				},
				{
					H1: "h2-s",
					H2: 2,
					M1: map[string]string{
						"cows": "are-flying",
						"cats": "are-swimming",
					},
					M2: map[string]TT1{
						"moon_01": {
							F1: "moon_string",
							F2: 23,
						},
					},
					M3: map[string][]int{
						"num_1":  {1, 42},
						"num_42": {42, 1},
					},
					TT2s: []TT2{
						{
							S1: []int{34, 35, 36},
						},
					},
				},
			},
		},
		EmbeddedT: EmbeddedT{
			E1: "embedded_1",
		},
	}
}

func TestQuery(t *testing.T) {
	tx := testx.NewTx(t)
	v := testTT1()

	r, err := Query(v, "F1")
	tx.AssertNoErr(err)
	tx.AssertEqual("a-string", r)

	r, err = Query(v, "EmbeddedT/E1")
	tx.AssertNoErr(err)
	tx.AssertEqual("embedded_1", r)

	_, err = Query(v, "C1")
	tx.AssertErr(err)

	r, err = Query(v, "T2/G2")
	tx.AssertNoErr(err)
	tx.AssertEqual(433, r)

	r, err = Query(v, "T2/G3")
	tx.AssertNoErr(err)
	tx.AssertEqual(12.433, r)

	r, err = Query(v, "T2/S1/1")
	tx.AssertNoErr(err)
	tx.AssertEqual(3, r)

	r, err = Query(v, "T2/S2/0/H1")
	tx.AssertNoErr(err)
	tx.AssertEqual("h1-s", r)

	r, err = Query(v, "T2/S2/1/M1/cats")
	tx.AssertNoErr(err)
	tx.AssertEqual("are-swimming", r)
}

func TestQueryBag(t *testing.T) {
	tx := testx.NewTx(t)

	// nested any-valued bags, as records carry them
	bag := map[string]any{
		"name": "box",
		"specs": map[string]any{
			"weight": 1.5,
			"dims":   []any{"10", "20"},
		},
		"gone": nil,
	}

	r, err := Query(bag, "specs/weight")
	tx.AssertNoErr(err)
	tx.AssertEqual(1.5, r)

	r, err = Query(bag, "specs/dims/1")
	tx.AssertNoErr(err)
	tx.AssertEqual("20", r)

	r, err = Query(bag, "gone")
	tx.AssertNoErr(err)
	tx.AssertEqual(nil, r)

	_, err = Query(bag, "gone/deeper")
	tx.AssertErr(err)
	_, err = Query(bag, "specs/height")
	tx.AssertErr(err)
}

func TestSet(t *testing.T) {
	tx := testx.NewTx(t)
	v := testTT1()

	err := Set(&v, "T2/S2/0/H2", 2)
	tx.AssertNoErr(err)
	tx.AssertEqual(2, v.T2.S2[0].H2)

	err = Set(&v, "EmbeddedT/E1", "em2")
	tx.AssertNoErr(err)
	tx.AssertEqual("em2", v.EmbeddedT.E1)

	err = Set(&v, "F1", "hola")
	tx.AssertNoErr(err)
	tx.AssertEqual("hola", v.F1)

	err = Set(&v, "T2/S2/1/TT2s/0/S1/2", 42)
	tx.AssertNoErr(err)
	tx.AssertEqual(42, v.T2.S2[1].TT2s[0].S1[2])

	err = Set(&v, "T2/S2/1/M1/cats", "get milk")
	tx.AssertNoErr(err)
	tx.AssertEqual("get milk", v.T2.S2[1].M1["cats"])

	err = Set(&v, "T2/S2/1/M2/moon_01/F1", "mars_string")
	tx.AssertNoErr(err)
	tx.AssertEqual("mars_string", v.T2.S2[1].M2["moon_01"].F1)

	err = Set(&v, "T2/S2/1/M3/num_42/0", 2)
	tx.AssertNoErr(err)
	tx.AssertEqual(2, v.T2.S2[1].M3["num_42"][0])

	err = Set(&v, "T2/S2/1/M3/num_1/1", 112)
	tx.AssertNoErr(err)
	tx.AssertEqual(112, v.T2.S2[1].M3["num_1"][1])
}

func TestSetBag(t *testing.T) {
	tx := testx.NewTx(t)

	bag := map[string]any{
		"name": "box",
		"specs": map[string]any{
			"weight": 1.5,
		},
	}
	err := Set(bag, "specs/weight", 2.25)
	tx.AssertNoErr(err)
	specs := bag["specs"].(map[string]any)
	tx.AssertEqual(2.25, specs["weight"])

	err = Set(bag, "specs/height", 1.0)
	tx.AssertErr(err)
}

type TestSetData struct {
	IntData    int       `json:"int_data"`
	BoolData   bool      `json:"bool_data"`
	FloatData  float64   `json:"float_data"`
	StringData string    `json:"string_data"`
	TimeData   time.Time `json:"time_data"`
}

func TestSetValue(t *testing.T) {
	tx := testx.NewTx(t)

	tsd := TestSetData{}
	var err error

	// test set all with strings
	err = Set(&tsd, "int_data", "42")
	tx.AssertNoErr(err)
	tx.AssertEqual(42, tsd.IntData)

	err = Set(&tsd, "bool_data", "on")
	tx.AssertNoErr(err)
	tx.AssertEqual(true, tsd.BoolData)

	err = Set(&tsd, "float_data", "3.1415")
	tx.AssertNoErr(err)
	tx.AssertEqual(3.1415, tsd.FloatData)

	err = Set(&tsd, "string_data", "dubidu")
	tx.AssertNoErr(err)
	tx.AssertEqual("dubidu", tsd.StringData)

	err = Set(&tsd, "time_data", "2024-06-24T14:56:23.345Z")
	tx.AssertNoErr(err)
	tx.AssertEqual("24062024145623", tsd.TimeData.Format("02012006150405"))

	// test set integers
	err = Set(&tsd, "float_data", 43)
	tx.AssertNoErr(err)
	tx.AssertEqual(43.0, tsd.FloatData)

	err = Set(&tsd, "string_data", 44)
	tx.AssertNoErr(err)
	tx.AssertEqual("44", tsd.StringData)

	// test set floats
	err = Set(&tsd, "int_data", 4.13)
	tx.AssertNoErr(err)
	tx.AssertEqual(4, tsd.IntData)

	err = Set(&tsd, "string_data", 4.13)
	tx.AssertNoErr(err)
	tx.AssertEqual("4.13", tsd.StringData)
}
