package model

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mazzegi/keva/codec"
	"github.com/mazzegi/keva/convert"
	"github.com/mazzegi/keva/maps"
	"github.com/mazzegi/keva/mathx"
)

// Field declares one schema property. Index marks the field for secondary
// index maintenance, Required makes validation fail on absent or nil values
// and Default fills the field before validation when it is absent. A Range
// bounds number fields inclusively.
type Field struct {
	Type     codec.Kind
	Index    bool
	Required bool
	Default  any
	Range    *mathx.Range[float64]
}

// Schema maps property names to field declarations. Properties outside the
// schema pass through validation untouched; the codec decides whether they
// can be stored.
type Schema map[string]Field

func (s Schema) validate() error {
	for _, name := range maps.OrderedKeys(s) {
		f := s[name]
		if name == "" {
			return fmt.Errorf("field with empty name")
		}
		if name == codec.TypesField {
			return fmt.Errorf("field name %q is reserved", name)
		}
		switch f.Type {
		case codec.KindString, codec.KindNumber, codec.KindBoolean,
			codec.KindDate, codec.KindObject, codec.KindArray, codec.KindPattern:
		default:
			return fmt.Errorf("field %q: cannot declare kind %q", name, f.Type)
		}
		if f.Index {
			switch f.Type {
			case codec.KindObject, codec.KindArray:
				return fmt.Errorf("field %q: cannot index kind %q", name, f.Type)
			}
		}
		if f.Range != nil {
			if f.Type != codec.KindNumber {
				return fmt.Errorf("field %q: cannot range-bound kind %q", name, f.Type)
			}
			if f.Range.Min > f.Range.Max {
				return fmt.Errorf("field %q: empty range [%v, %v]", name, f.Range.Min, f.Range.Max)
			}
		}
		if f.Default != nil {
			kind, err := codec.KindOf(f.Default)
			if err != nil {
				return fmt.Errorf("field %q: default: %w", name, err)
			}
			if kind != f.Type {
				return fmt.Errorf("field %q: default is kind %q, field is %q", name, kind, f.Type)
			}
			if f.Range != nil {
				if d, ok := convert.ToFloat(f.Default); ok && !f.Range.Contains(d) {
					return fmt.Errorf("field %q: default %v out of range [%v, %v]", name, f.Default, f.Range.Min, f.Range.Max)
				}
			}
		}
	}
	return nil
}

func (s Schema) indexedFields() []string {
	var fields []string
	for name, f := range s {
		if f.Index {
			fields = append(fields, name)
		}
	}
	sort.Strings(fields)
	return fields
}

func (s Schema) applyDefaults(props map[string]any) {
	for _, name := range maps.OrderedKeys(s) {
		f := s[name]
		if f.Default == nil {
			continue
		}
		if _, ok := props[name]; !ok {
			props[name] = f.Default
		}
	}
}

func (s Schema) validateProps(props map[string]any) ValidationErrors {
	var verrs ValidationErrors
	for _, name := range maps.OrderedKeys(s) {
		f := s[name]
		v, ok := props[name]
		if !ok || v == nil {
			if f.Required {
				verrs = append(verrs, FieldError{Field: name, Reason: "required"})
			}
			continue
		}
		kind, err := codec.KindOf(v)
		if err != nil {
			verrs = append(verrs, FieldError{Field: name, Reason: err.Error()})
			continue
		}
		if kind != f.Type {
			verrs = append(verrs, FieldError{Field: name, Reason: fmt.Sprintf("expect kind %q, have %q", f.Type, kind)})
			continue
		}
		if f.Range != nil {
			if n, ok := convert.ToFloat(v); ok && !f.Range.Contains(n) {
				verrs = append(verrs, FieldError{Field: name, Reason: fmt.Sprintf("%v out of range [%v, %v]", n, f.Range.Min, f.Range.Max)})
			}
		}
	}
	return verrs
}

// FieldError is one field-level validation failure.
type FieldError struct {
	Field  string
	Reason string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("field %q: %s", e.Field, e.Reason)
}

// ValidationErrors collects all field failures of one validation pass.
// A save returning it has not touched the store.
type ValidationErrors []FieldError

func (ve ValidationErrors) Error() string {
	sl := make([]string, 0, len(ve))
	for _, e := range ve {
		sl = append(sl, e.Error())
	}
	return strings.Join(sl, "; ")
}
