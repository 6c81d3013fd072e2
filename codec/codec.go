// Package codec converts typed property bags into the flat string fields
// a hash store holds, and back. Each dehydrated hash carries its kinds in
// a reserved field, so a later read can rebuild the typed values without
// any schema at hand.
package codec

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/mazzegi/keva/convert"
	"github.com/mazzegi/keva/maps"
)

// TypesField is the reserved hash field holding the encoded kind map.
// Property names must not collide with it.
const TypesField = "_types"

// Pattern is a match expression kept verbatim. It dehydrates like a string
// but keeps its own kind, so read-back can tell the two apart.
type Pattern string

type Kind string

const (
	KindString  Kind = "string"
	KindNumber  Kind = "number"
	KindBoolean Kind = "boolean"
	KindDate    Kind = "date"
	KindObject  Kind = "object"
	KindArray   Kind = "array"
	KindPattern Kind = "pattern"
	KindNull    Kind = "null"
)

// KindOf reports the codec kind of v. Values outside the supported set
// yield an error rather than a guessed encoding.
func KindOf(v any) (Kind, error) {
	switch v.(type) {
	case nil:
		return KindNull, nil
	case Pattern:
		return KindPattern, nil
	case string:
		return KindString, nil
	case bool:
		return KindBoolean, nil
	case time.Time:
		return KindDate, nil
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return KindNumber, nil
	case map[string]any:
		return KindObject, nil
	case []any:
		return KindArray, nil
	default:
		return "", fmt.Errorf("unsupported value type %T", v)
	}
}

// EncodeValue renders v in its canonical string form. Numbers normalize to
// float64 first, dates use the sortable time layout, objects and arrays
// marshal as JSON.
func EncodeValue(v any) (string, error) {
	kind, err := KindOf(v)
	if err != nil {
		return "", err
	}
	switch kind {
	case KindNull:
		return "", nil
	case KindString:
		return v.(string), nil
	case KindPattern:
		return string(v.(Pattern)), nil
	case KindBoolean:
		return strconv.FormatBool(v.(bool)), nil
	case KindNumber:
		f, _ := convert.ToFloat(v)
		return strconv.FormatFloat(f, 'g', -1, 64), nil
	case KindDate:
		return FormatTime(v.(time.Time)), nil
	case KindObject, KindArray:
		b, err := json.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("marshal: %w", err)
		}
		return string(b), nil
	default:
		return "", fmt.Errorf("unsupported kind %q", kind)
	}
}

func decodeValue(s string, kind Kind) (any, error) {
	switch kind {
	case KindNull:
		return nil, nil
	case KindString:
		return s, nil
	case KindPattern:
		return Pattern(s), nil
	case KindBoolean:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return nil, fmt.Errorf("parse-bool %q: %w", s, err)
		}
		return b, nil
	case KindNumber:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("parse-float %q: %w", s, err)
		}
		return f, nil
	case KindDate:
		t, err := ParseTime(s)
		if err != nil {
			return nil, fmt.Errorf("parse-time %q: %w", s, err)
		}
		return t, nil
	case KindObject:
		var m map[string]any
		if err := json.Unmarshal([]byte(s), &m); err != nil {
			return nil, fmt.Errorf("unmarshal object: %w", err)
		}
		return m, nil
	case KindArray:
		var sl []any
		if err := json.Unmarshal([]byte(s), &sl); err != nil {
			return nil, fmt.Errorf("unmarshal array: %w", err)
		}
		return sl, nil
	default:
		return nil, fmt.Errorf("unsupported kind %q", kind)
	}
}

func EncodeKinds(kinds map[string]Kind) (string, error) {
	b, err := json.Marshal(kinds)
	if err != nil {
		return "", fmt.Errorf("marshal kinds: %w", err)
	}
	return string(b), nil
}

func DecodeKinds(s string) (map[string]Kind, error) {
	var kinds map[string]Kind
	if err := json.Unmarshal([]byte(s), &kinds); err != nil {
		return nil, fmt.Errorf("unmarshal kinds: %w", err)
	}
	return kinds, nil
}

// Dehydrate flattens props into string hash fields and appends the encoded
// kind map under TypesField. Kinds are recorded per top-level field only;
// values nested inside objects or arrays round-trip as their JSON forms.
func Dehydrate(props map[string]any) (map[string]string, error) {
	fields := make(map[string]string, len(props)+1)
	kinds := make(map[string]Kind, len(props))
	for _, name := range maps.OrderedKeys(props) {
		if name == TypesField {
			return nil, fmt.Errorf("reserved field name %q", TypesField)
		}
		v := props[name]
		kind, err := KindOf(v)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", name, err)
		}
		s, err := EncodeValue(v)
		if err != nil {
			return nil, fmt.Errorf("encode field %q: %w", name, err)
		}
		fields[name] = s
		kinds[name] = kind
	}
	enc, err := EncodeKinds(kinds)
	if err != nil {
		return nil, err
	}
	fields[TypesField] = enc
	return fields, nil
}

// Hydrate rebuilds typed props from dehydrated hash fields using the kind
// map stored under TypesField. Fields without a recorded kind, including
// all fields of a hash missing TypesField entirely, come back as strings.
func Hydrate(fields map[string]string) (map[string]any, error) {
	kinds := map[string]Kind{}
	if enc, ok := fields[TypesField]; ok {
		var err error
		kinds, err = DecodeKinds(enc)
		if err != nil {
			return nil, err
		}
	}
	props := make(map[string]any, len(fields))
	for _, name := range maps.OrderedKeys(fields) {
		if name == TypesField {
			continue
		}
		kind, ok := kinds[name]
		if !ok {
			kind = KindString
		}
		v, err := decodeValue(fields[name], kind)
		if err != nil {
			return nil, fmt.Errorf("decode field %q: %w", name, err)
		}
		props[name] = v
	}
	return props, nil
}
