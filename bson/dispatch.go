// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"math"
	"reflect"
	"sort"
	"time"
)

// TypeOf returns the wire type Serialize would write for v. It fails with
// ErrInvalidType for values that have no wire representation.
func TypeOf(v interface{}) (Type, error) {
	t, _, err := classify(v, false)
	return t, err
}

// classify resolves v to its wire type. Pointers are followed and the value
// they point to is returned alongside the type; a nil pointer is Null.
//
// Wrapper types are matched before the generic kinds so that, for example,
// a Symbol is never taken for a string or an ObjectID for an array.
func classify(v interface{}, integerFloats bool) (Type, interface{}, error) {
	switch tv := v.(type) {
	case nil, Null:
		return TypeNull, nil, nil
	case Undefined:
		return TypeUndefined, v, nil
	case ObjectID:
		return TypeObjectID, v, nil
	case Timestamp:
		return TypeTimestamp, v, nil
	case Symbol:
		return TypeSymbol, v, nil
	case Code:
		if tv.HasScope() {
			return TypeCodeWithScope, v, nil
		}
		return TypeJavaScript, v, nil
	case Decimal128:
		return TypeDecimal128, v, nil
	case Regex:
		return TypeRegex, v, nil
	case bool:
		return TypeBoolean, v, nil
	case DateTime, time.Time:
		return TypeDateTime, v, nil
	case int32:
		return TypeInt32, v, nil
	case int64:
		return intType(tv), v, nil
	case int:
		return intType(int64(tv)), v, nil
	case float64:
		return floatType(tv, integerFloats), v, nil
	case string:
		return TypeString, v, nil
	case D:
		if tv == nil {
			return TypeNull, nil, nil
		}
		return TypeEmbeddedDocument, v, nil
	case M:
		if tv == nil {
			return TypeNull, nil, nil
		}
		return TypeEmbeddedDocument, v, nil
	case A:
		if tv == nil {
			return TypeNull, nil, nil
		}
		return TypeArray, v, nil
	case Binary, []byte:
		return 0, nil, newError(CodeInvalidType, "", "binary values are not supported")
	case MinKey, MaxKey:
		return 0, nil, newError(CodeInvalidType, "", "%T values are not supported", v)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr:
		if rv.IsNil() {
			return TypeNull, nil, nil
		}
		return classify(rv.Elem().Interface(), integerFloats)
	case reflect.Bool:
		return TypeBoolean, v, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return intType(rv.Int()), v, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return 0, nil, newError(CodeInvalidType, "", "%d overflows a 64-bit integer", u)
		}
		return intType(int64(u)), v, nil
	case reflect.Float32, reflect.Float64:
		return floatType(rv.Float(), integerFloats), v, nil
	case reflect.String:
		return TypeString, v, nil
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return 0, nil, newError(CodeInvalidType, "", "binary values are not supported")
		}
		if rv.IsNil() {
			return TypeNull, nil, nil
		}
		return TypeArray, v, nil
	case reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return 0, nil, newError(CodeInvalidType, "", "binary values are not supported")
		}
		return TypeArray, v, nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return 0, nil, newError(CodeInvalidType, "", "map keys must be strings, not %s", rv.Type().Key())
		}
		if rv.IsNil() {
			return TypeNull, nil, nil
		}
		return TypeEmbeddedDocument, v, nil
	}

	return 0, nil, newError(CodeInvalidType, "", "cannot encode value of type %T", v)
}

func intType(i64 int64) Type {
	if i64 >= math.MinInt32 && i64 <= math.MaxInt32 {
		return TypeInt32
	}
	return TypeInt64
}

func floatType(f float64, integerFloats bool) Type {
	if integerFloats && isIntegral(f) {
		return intType(int64(f))
	}
	return TypeDouble
}

func isIntegral(f float64) bool {
	return !math.IsInf(f, 0) && !math.IsNaN(f) && f == math.Trunc(f) &&
		f >= math.MinInt64 && f < math.MaxInt64
}

// intValue returns the value of a classified Int32 or Int64.
func intValue(v interface{}) int64 {
	switch tv := v.(type) {
	case int32:
		return int64(tv)
	case int64:
		return tv
	case int:
		return int64(tv)
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return int64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return int64(rv.Float())
	}
	return 0
}

// floatValue returns the value of a classified Double.
func floatValue(v interface{}) float64 {
	if f, ok := v.(float64); ok {
		return f
	}
	return reflect.ValueOf(v).Float()
}

// stringValue returns the value of a classified String.
func stringValue(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return reflect.ValueOf(v).String()
}

// boolValue returns the value of a classified Boolean.
func boolValue(v interface{}) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	return reflect.ValueOf(v).Bool()
}

// dateValue returns the value of a classified DateTime.
func dateValue(v interface{}) int64 {
	if t, ok := v.(time.Time); ok {
		return int64(NewDateTimeFromTime(t))
	}
	return int64(v.(DateTime))
}

// rangeDocument calls fn for every field of a classified document in write
// order. D keeps its order; map keys are sorted.
func rangeDocument(v interface{}, fn func(key string, val interface{}) error) error {
	switch tv := v.(type) {
	case D:
		for _, e := range tv {
			if err := fn(e.Key, e.Value); err != nil {
				return err
			}
		}
		return nil
	case M:
		keys := make([]string, 0, len(tv))
		for k := range tv {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if err := fn(k, tv[k]); err != nil {
				return err
			}
		}
		return nil
	}

	rv := reflect.ValueOf(v)
	keys := rv.MapKeys()
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	for _, k := range keys {
		if err := fn(k.String(), rv.MapIndex(k).Interface()); err != nil {
			return err
		}
	}
	return nil
}

// rangeArray calls fn for every element of a classified array.
func rangeArray(v interface{}, fn func(i int, val interface{}) error) error {
	switch tv := v.(type) {
	case A:
		for i, val := range tv {
			if err := fn(i, val); err != nil {
				return err
			}
		}
		return nil
	case []interface{}:
		for i, val := range tv {
			if err := fn(i, val); err != nil {
				return err
			}
		}
		return nil
	}

	rv := reflect.ValueOf(v)
	for i := 0; i < rv.Len(); i++ {
		if err := fn(i, rv.Index(i).Interface()); err != nil {
			return err
		}
	}
	return nil
}

// documentLen returns the number of fields of a classified document.
func documentLen(v interface{}) int {
	if d, ok := v.(D); ok {
		return len(d)
	}
	return reflect.ValueOf(v).Len()
}
