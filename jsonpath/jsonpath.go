// Package jsonpath reads and writes values inside nested bags, structs and
// slices through slash-separated paths like "specs/dims/0/width". Map hops
// need string keys; struct hops match the field name or its json tag.
package jsonpath

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/mazzegi/keva/convert"
)

var (
	ErrNotFound = fmt.Errorf("not-found")
	ErrBadArgs  = fmt.Errorf("bad-args")
)

func isRVZero(rv reflect.Value) bool {
	zv := reflect.Value{}
	return rv == zv
}

// match on either field-name or json-name
func structFieldByName(sv reflect.Value, name string) reflect.Value {
	ty := sv.Type()
	for i := 0; i < ty.NumField(); i++ {
		sf := ty.Field(i)
		if sf.Name == name {
			return sv.Field(i)
		}
		if js := sf.Tag.Get("json"); js != "" {
			jname, _, _ := strings.Cut(js, ",")
			if jname == name {
				return sv.Field(i)
			}
		}
	}
	return reflect.Value{}
}

// unwrap resolves pointers and interface boxes to the value behind them.
// Descending into a nil leaves an invalid value.
func unwrap(rv reflect.Value) reflect.Value {
	for rv.IsValid() {
		kind := rv.Kind()
		if kind != reflect.Pointer && kind != reflect.Interface {
			return rv
		}
		rv = rv.Elem()
	}
	return rv
}

func queryValue(in any, spath string) (reflect.Value, error) {
	path := strings.Split(spath, "/")
	crv := reflect.ValueOf(in)
	for _, elt := range path {
		if elt == "" {
			//skip empty
			continue
		}
		crv = unwrap(crv)
		if !crv.IsValid() {
			return reflect.Value{}, errors.Join(ErrNotFound, fmt.Errorf("nil value before %q", elt))
		}

		switch crv.Kind() {
		case reflect.Struct:
			crv = structFieldByName(crv, elt)
			if isRVZero(crv) {
				return reflect.Value{}, errors.Join(ErrNotFound, fmt.Errorf("no such struct field %q", elt))
			}
		case reflect.Slice:
			ix, err := strconv.ParseInt(elt, 10, 64)
			if err != nil {
				return reflect.Value{}, errors.Join(ErrBadArgs, fmt.Errorf("cannot parse %q as int for slice index: %w", elt, err))
			}

			if ix < 0 {
				return reflect.Value{}, errors.Join(ErrBadArgs, fmt.Errorf("invalid slice index %d", ix))
			}
			if ix >= int64(crv.Len()) {
				return reflect.Value{}, errors.Join(ErrBadArgs, fmt.Errorf("invalid slice index %d ( >= len=%d)", ix, crv.Len()))
			}
			crv = crv.Index(int(ix))
		case reflect.Map:
			if crv.Type().Key().Kind() != reflect.String {
				return reflect.Value{}, fmt.Errorf("cannot query non-string map keys. map keys are %s", crv.Type().Kind().String())
			}
			crv = crv.MapIndex(reflect.ValueOf(elt))
			if isRVZero(crv) {
				return reflect.Value{}, errors.Join(ErrNotFound, fmt.Errorf("no such map key %q", elt))
			}

		default:
			return reflect.Value{}, errors.Join(ErrNotFound, fmt.Errorf("cannot query reflect-kind %q", crv.Kind().String()))
		}
	}
	return crv, nil
}

func Query(in any, spath string) (any, error) {
	rv, err := queryValue(in, spath)
	if err != nil {
		return nil, fmt.Errorf("query-value: %w", err)
	}
	if !rv.IsValid() {
		return nil, nil
	}
	return rv.Interface(), nil
}

func Set(in any, spath string, value any) error {
	path := strings.Split(spath, "/")
	crv := reflect.ValueOf(in)
	return set(crv, path, value)
}

func set(crv reflect.Value, path []string, value any) error {
	// resolve pointers; open interface boxes only while the path continues.
	// when the path ends on a box, the box itself is the set target.
	for crv.IsValid() &&
		(crv.Kind() == reflect.Pointer || (crv.Kind() == reflect.Interface && len(path) > 0)) {
		crv = crv.Elem()
	}
	if !crv.IsValid() {
		return errors.Join(ErrNotFound, fmt.Errorf("nil value in path"))
	}

	if len(path) > 0 {
		elt := path[0]
		switch crv.Kind() {
		case reflect.Struct:
			crv = structFieldByName(crv, elt)
			if isRVZero(crv) {
				return errors.Join(ErrNotFound, fmt.Errorf("no such struct field %q", elt))
			}
		case reflect.Slice:
			ix, err := strconv.ParseInt(elt, 10, 64)
			if err != nil {
				return errors.Join(ErrBadArgs, fmt.Errorf("cannot parse %q as int for slice index: %w", elt, err))
			}

			if ix < 0 {
				return errors.Join(ErrBadArgs, fmt.Errorf("invalid slice index %d", ix))
			}
			if ix >= int64(crv.Len()) {
				return errors.Join(ErrBadArgs, fmt.Errorf("invalid slice index %d ( >= len=%d)", ix, crv.Len()))
			}
			crv = crv.Index(int(ix))
		case reflect.Map:
			if crv.Type().Key().Kind() != reflect.String {
				return fmt.Errorf("cannot query non-string map keys. map keys are %s", crv.Type().Kind().String())
			}
			mix := reflect.ValueOf(elt)
			mapcrv := crv.MapIndex(mix)
			if isRVZero(mapcrv) {
				return errors.Join(ErrNotFound, fmt.Errorf("no such map key %q", elt))
			}
			//
			path = path[1:]

			// create pointer type of target type, to set it
			pcrv := reflect.New(mapcrv.Type())
			pcrv.Elem().Set(mapcrv)
			err := set(pcrv, path, value)
			if err != nil {
				return fmt.Errorf("set map value: %w", err)
			}
			crv.SetMapIndex(mix, pcrv.Elem())
			return nil

		default:
			return errors.Join(ErrNotFound, fmt.Errorf("cannot query reflect-kind %q", crv.Kind().String()))
		}
	}

	if len(path) > 0 {
		path = path[1:]
		return set(crv, path, value)
	}

	if !crv.CanSet() {
		return fmt.Errorf("cannot set %v (%s)", crv.String(), crv.Type())
	}

	err := setValue(value, crv)
	if err != nil {
		return fmt.Errorf("set-value: %w", err)
	}

	return nil
}

func trySetValueReflect(value any, toRV reflect.Value) error {
	setVal := reflect.ValueOf(value)
	if !setVal.CanConvert(toRV.Type()) {
		return fmt.Errorf("cannot convert value of type %s to %s", setVal.Type().String(), toRV.Type().String())
	}
	setValConv := setVal.Convert(toRV.Type())
	toRV.Set(setValConv)
	return nil
}

func setValue(val any, toRV reflect.Value) error {
	switch toRV.Kind() {
	case reflect.Bool:
		convVal := convert.ToBool(val)
		return trySetValueReflect(convVal, toRV)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		iv, ok := convert.ToInt(val)
		if !ok {
			return fmt.Errorf("cannot convert %v to %q", val, toRV.Type().String())
		}
		return trySetValueReflect(iv, toRV)
	case reflect.Float32, reflect.Float64:
		iv, ok := convert.ToFloat(val)
		if !ok {
			return fmt.Errorf("cannot convert %v to %q", val, toRV.Type().String())
		}
		return trySetValueReflect(iv, toRV)
	case reflect.String:
		err := trySetValueReflect(fmt.Sprintf("%v", val), toRV)
		return err
	default:
		if s, ok := val.(string); ok && toRV.Type() == reflect.TypeOf(time.Time{}) {
			t, err := time.Parse(time.RFC3339Nano, s)
			if err != nil {
				return fmt.Errorf("cannot convert string to time: %w", err)
			}
			return trySetValueReflect(t, toRV)
		}
	}
	return trySetValueReflect(val, toRV)
}
