// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerialize(t *testing.T) {
	testCases := []struct {
		name string
		v    interface{}
		opts *Options
		want []byte
	}{
		{"nil", nil, nil, []byte{0x0A}},
		{"Null", Null{}, nil, []byte{0x0A}},
		{"nil pointer", (*int)(nil), nil, []byte{0x0A}},
		{"nil map", M(nil), nil, []byte{0x0A}},
		{"undefined", Undefined{}, nil, []byte{0x06}},
		{"int", 42, nil, []byte{0x10, 0x2A, 0x00, 0x00, 0x00}},
		{"string", "hi", nil, []byte{0x02, 0x03, 0x00, 0x00, 0x00, 0x68, 0x69, 0x00}},
		{
			"document",
			D{{"a", 1}},
			nil,
			[]byte{0x03, 0x0C, 0x00, 0x00, 0x00, 0x10, 0x61, 0x00, 0x01, 0x00, 0x00, 0x00, 0x00},
		},
		{
			"document standard root",
			D{{"a", 1}},
			NewOptions().SetStandardRoot(true),
			[]byte{0x0C, 0x00, 0x00, 0x00, 0x10, 0x61, 0x00, 0x01, 0x00, 0x00, 0x00, 0x00},
		},
		{
			"map keys are sorted",
			M{"b": 1, "a": 2},
			nil,
			[]byte{
				0x03, 0x13, 0x00, 0x00, 0x00,
				0x10, 'a', 0x00, 0x02, 0x00, 0x00, 0x00,
				0x10, 'b', 0x00, 0x01, 0x00, 0x00, 0x00,
				0x00,
			},
		},
		{
			"array",
			A{true},
			nil,
			[]byte{0x04, 0x09, 0x00, 0x00, 0x00, 0x08, '0', 0x00, 0x01, 0x00},
		},
		{"false", false, nil, []byte{0x08, 0x00}},
		{"double", 1.5, nil, []byte{0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0xF8, 0x3F}},
		{"integral double", 2.0, nil, []byte{0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x40}},
		{"integer floats", 2.0, NewOptions().SetIntegerFloats(true), []byte{0x10, 0x02, 0x00, 0x00, 0x00}},
		{
			"int64",
			int64(5000000000),
			nil,
			[]byte{0x12, 0x00, 0xF2, 0x05, 0x2A, 0x01, 0x00, 0x00, 0x00},
		},
		{
			"negative int64",
			int64(-2147483649),
			nil,
			[]byte{0x12, 0xFF, 0xFF, 0xFF, 0x7F, 0xFF, 0xFF, 0xFF, 0xFF},
		},
		{
			"datetime",
			DateTime(1),
			nil,
			[]byte{0x09, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00},
		},
		{
			"time.Time",
			time.Unix(0, 2*int64(time.Millisecond)),
			nil,
			[]byte{0x09, 0x02, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00},
		},
		{
			"timestamp",
			NewTimestamp(1, 2),
			nil,
			[]byte{0x11, 0x01, 0x00, 0x00, 0x00, 0x02, 0x00, 0x00, 0x00},
		},
		{"symbol", Symbol("s"), nil, []byte{0x0E, 0x02, 0x00, 0x00, 0x00, 's', 0x00}},
		{"code", Code{Code: "x"}, nil, []byte{0x0D, 0x02, 0x00, 0x00, 0x00, 'x', 0x00}},
		{
			"code with empty scope",
			Code{Code: "x", Scope: D{}},
			nil,
			[]byte{
				0x0F, 0x0F, 0x00, 0x00, 0x00,
				0x02, 0x00, 0x00, 0x00, 'x', 0x00,
				0x05, 0x00, 0x00, 0x00, 0x00,
			},
		},
		{"regex", Regex{Pattern: "ab", Options: "i"}, nil, []byte{0x0B, 'a', 'b', 0x00, 'i', 0x00}},
		{
			"objectID",
			ObjectID{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11},
			nil,
			[]byte{0x07, 0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11},
		},
		{
			"decimal128",
			NewDecimal128(0x3040000000000000, 12345),
			nil,
			[]byte{
				0x13,
				0x39, 0x30, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
				0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x40, 0x30,
			},
		},
		{"named string", namedString("hi"), nil, []byte{0x02, 0x03, 0x00, 0x00, 0x00, 0x68, 0x69, 0x00}},
		{"pointer", ptrTo(42), nil, []byte{0x10, 0x2A, 0x00, 0x00, 0x00}},
		{"uint8", uint8(200), nil, []byte{0x10, 0xC8, 0x00, 0x00, 0x00}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Serialize(tc.v, tc.opts)
			require.NoError(t, err)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("bytes differ (-want +got):\n%s", diff)
			}
		})
	}
}

type namedString string

func ptrTo(i int) *int { return &i }

func TestIntegerBoundaries(t *testing.T) {
	testCases := []struct {
		name string
		v    interface{}
		want Type
	}{
		{"max int32", 2147483647, TypeInt32},
		{"max int32 + 1", 2147483648, TypeInt64},
		{"min int32", -2147483648, TypeInt32},
		{"min int32 - 1", -2147483649, TypeInt64},
		{"int64 holding a small value", int64(1), TypeInt32},
		{"max uint32", uint32(math.MaxUint32), TypeInt64},
		{"max int64", int64(math.MaxInt64), TypeInt64},
		{"max int64 as uint64", uint64(math.MaxInt64), TypeInt64},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := TypeOf(tc.v)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)

			b, err := Serialize(tc.v)
			require.NoError(t, err)
			assert.Equal(t, byte(tc.want), b[0])
		})
	}
}

func nested(depth int) D {
	d := D{{"leaf", 1}}
	for i := 1; i < depth; i++ {
		d = D{{"a", d}}
	}
	return d
}

func TestSerializeErrors(t *testing.T) {
	selfDoc := D{{"self", nil}}
	selfDoc[0].Value = selfDoc

	selfMap := M{}
	selfMap["self"] = selfMap

	selfArr := A{nil}
	selfArr[0] = selfArr

	// a[:1] refers to itself through a[0].
	prefixCycle := A{nil, int32(2)}
	prefixCycle[0] = prefixCycle[:1]

	selfPtr := &D{}
	*selfPtr = D{{"p", selfPtr}}

	selfScope := D{{"c", nil}}
	selfScope[0].Value = Code{Code: "f()", Scope: selfScope}

	testCases := []struct {
		name string
		v    interface{}
		opts *Options
		code error
		path string
	}{
		{"document contains itself", selfDoc, nil, ErrCircularReference, "self"},
		{"map contains itself", selfMap, nil, ErrCircularReference, "self"},
		{"array contains itself", D{{"arr", selfArr}}, nil, ErrCircularReference, "arr[0]"},
		{"prefix slice contains itself", prefixCycle, nil, ErrCircularReference, "[0][0]"},
		{"pointer cycle", selfPtr, nil, ErrCircularReference, "p"},
		{"scope contains its code", selfScope, nil, ErrCircularReference, "c.scope"},
		{"depth 101", nested(101), nil, ErrMaxDepthExceeded, strings.Repeat("a.", 99) + "a"},
		{"custom max depth", nested(3), NewOptions().SetMaxDepth(2), ErrMaxDepthExceeded, "a.a"},
		{"array depth", A{A{A{}}}, NewOptions().SetMaxDepth(2), ErrMaxDepthExceeded, "[0][0]"},
		{"dotted key", D{{"a.b", 1}}, nil, ErrInvalidKey, "a.b"},
		{"NUL in key", D{{"a\x00b", 1}}, nil, ErrInvalidKey, "a\x00b"},
		{"unknown operator", D{{"$foo", 1}}, nil, ErrInvalidKey, "$foo"},
		{"nested invalid key", D{{"outer", A{M{"$bad": 1}}}}, nil, ErrInvalidKey, "outer[0].$bad"},
		{"invalid key in scope", Code{Code: "x", Scope: D{{"a.b", 1}}}, nil, ErrInvalidKey, "scope.a.b"},
		{"byte slice", []byte{1}, nil, ErrInvalidType, ""},
		{"binary", D{{"b", Binary{Data: []byte{1}}}}, nil, ErrInvalidType, "b"},
		{"min key", A{MinKey{}}, nil, ErrInvalidType, "[0]"},
		{"max key", MaxKey{}, nil, ErrInvalidType, ""},
		{"struct", struct{ A int }{1}, nil, ErrInvalidType, ""},
		{"channel", D{{"ch", make(chan int)}}, nil, ErrInvalidType, "ch"},
		{"uint64 overflow", uint64(math.MaxUint64), nil, ErrInvalidType, ""},
		{"non-string map key", map[int]string{1: "a"}, nil, ErrInvalidType, ""},
		{"NUL in regex", D{{"r", Regex{Pattern: "a\x00"}}}, nil, ErrInvalidType, "r"},
		{"standard root requires a document", 1, NewOptions().SetStandardRoot(true), ErrInvalidType, ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			b, err := Serialize(tc.v, tc.opts)
			require.Error(t, err)
			assert.Nil(t, b)

			assert.True(t, errors.Is(err, ErrSerializationFailed), "expected a serialization error, got %v", err)
			assert.True(t, errors.Is(err, tc.code), "expected %v, got %v", tc.code, err)

			var bsonErr *Error
			require.True(t, errors.As(err, &bsonErr))
			assert.Equal(t, CodeSerializationFailed, bsonErr.Code)
			assert.Equal(t, tc.path, bsonErr.Path)
		})
	}
}

func TestSerializeValidKeysAndDepth(t *testing.T) {
	shared := D{{"x", 1}}

	testCases := []struct {
		name string
		v    interface{}
	}{
		{"allowed operator", D{{"$eq", 1}}},
		{"every operator", D{
			{"$eq", 1}, {"$gt", 1}, {"$gte", 1}, {"$in", A{}}, {"$lt", 1}, {"$lte", 1},
			{"$ne", 1}, {"$nin", A{}}, {"$and", A{}}, {"$not", D{}}, {"$nor", A{}}, {"$or", A{}},
			{"$exists", true}, {"$type", "string"}, {"$mod", A{2, 0}}, {"$regex", "^a"},
			{"$text", D{}}, {"$where", "true"},
		}},
		{"dollar inside a key", D{{"a$", 1}}},
		{"depth 100", nested(100)},
		{"shared subtree", D{{"a", shared}, {"b", shared}}},
		{"shared map", func() M { m := M{"k": 1}; return M{"a": m, "b": A{m, m}} }()},
		{"prefix of the parent slice", func() A { a := A{int32(1), nil}; a[1] = a[:1]; return a }()},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Serialize(tc.v)
			require.NoError(t, err)
		})
	}
}

func TestSizeMatchesWrittenLength(t *testing.T) {
	testCases := []struct {
		name string
		v    interface{}
		opts *Options
	}{
		{"scalars", D{
			{"null", nil}, {"undefined", Undefined{}}, {"bool", true}, {"int32", 1},
			{"int64", int64(1) << 40}, {"double", 0.5}, {"string", "héllo"},
			{"date", DateTime(7)}, {"ts", NewTimestamp(1, 2)}, {"oid", NewObjectID()},
			{"regex", Regex{Pattern: "^a", Options: "im"}}, {"symbol", Symbol("sym")},
			{"code", Code{Code: "x"}}, {"decimal", NewDecimal128(1, 2)},
		}, nil},
		{"code with scope", Code{Code: "function() {}", Scope: D{{"x", A{1, "two"}}}}, nil},
		{"wide array", func() A {
			a := make(A, 120)
			for i := range a {
				a[i] = i
			}
			return a
		}(), nil},
		{"maps", map[string]interface{}{"b": M{"c": []int{1, 2}}, "a": []string{"x"}}, nil},
		{"standard root", D{{"a", D{{"b", "c"}}}}, NewOptions().SetStandardRoot(true)},
		{"integer floats", A{1.0, 1.5, 1e12}, NewOptions().SetIntegerFloats(true)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := newConfig(tc.opts)
			want, err := sizer{integerFloats: cfg.integerFloats}.rootSize(tc.v, cfg.standardRoot)
			require.NoError(t, err)

			b, err := Serialize(tc.v, tc.opts)
			require.NoError(t, err)
			assert.Equal(t, want, len(b))
			assert.Equal(t, want, cap(b))
		})
	}
}

func TestIndexKeyLen(t *testing.T) {
	for _, i := range []int{0, 9, 10, 99, 100, 12345} {
		assert.Equal(t, len(strconv.Itoa(i)), indexKeyLen(i), "index %d", i)
	}
}
