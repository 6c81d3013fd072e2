package env

import (
	"fmt"
	"testing"
)

func TestEnvExpand(t *testing.T) {
	tests := []struct {
		in    []Var
		probe map[string]string
	}{
		{
			in: []Var{
				MkVar("s", "b"),
				MkVar("c", "d"),
			},
			probe: map[string]string{
				"s": "b",
				"c": "d",
			},
		},
		{
			in: []Var{
				MkVar("esc", "foo\\bar"),
				MkVar("glob", "glob.attr"),
				MkVar("p1", "{glob}_v1"),
				MkVar("p2", "v2_{glob}"),
				MkVar("p3", "v3_{glob}_v4"),
				MkVar("pesc", "p_{esc}_s"),
			},
			probe: map[string]string{
				"p1":   "glob.attr_v1",
				"p2":   "v2_glob.attr",
				"p3":   "v3_glob.attr_v4",
				"pesc": "p_foo\\bar_s",
			},
		},
	}

	for i, test := range tests {
		t.Run(fmt.Sprintf("test_%02d", i), func(t *testing.T) {
			env := Load(test.in...)
			for k, v := range test.probe {
				res, ok := env.String(k)
				if !ok {
					t.Fatalf("expect key %q present, but it is not", k)
				}
				if res != v {
					t.Fatalf("value for %q: want %q, have %q", k, v, res)
				}
			}
		})
	}
}

func TestEnvAccessors(t *testing.T) {
	env := Load(
		MkVar("KEVA_BACKEND", "sqlite"),
		MkVar("KEVA_REDIS_DB", "3"),
	)

	backend, ok := env.String("KEVA_BACKEND")
	if !ok || backend != "sqlite" {
		t.Fatalf("want sqlite, have %q (ok=%t)", backend, ok)
	}
	db, ok := env.Int("KEVA_REDIS_DB")
	if !ok || db != 3 {
		t.Fatalf("want 3, have %d (ok=%t)", db, ok)
	}
	if have := env.StringOrDefault("KEVA_ROOT", "keva"); have != "keva" {
		t.Fatalf("want default keva, have %q", have)
	}
	if have := env.IntOrDefault("KEVA_REDIS_DB", 0); have != 3 {
		t.Fatalf("want 3, have %d", have)
	}
}
