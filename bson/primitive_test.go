// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDateTime(t *testing.T) {
	t.Run("from time", func(t *testing.T) {
		tm := time.Date(2021, time.March, 4, 5, 6, 7, 891234567, time.UTC)
		dt := NewDateTimeFromTime(tm)

		assert.Equal(t, DateTime(tm.UnixNano()/1e6), dt)
		assert.Equal(t, tm.Truncate(time.Millisecond), dt.Time())
		assert.Equal(t, "2021-03-04T05:06:07.891Z", dt.String())
	})
	t.Run("before the epoch", func(t *testing.T) {
		dt := DateTime(-1500)
		assert.Equal(t, time.Unix(-2, 500*int64(time.Millisecond)).UTC(), dt.Time())
	})
}

func TestTimestamp(t *testing.T) {
	ts := NewTimestamp(1, 2)

	assert.Equal(t, Timestamp{T: 2, I: 1}, ts)
	assert.True(t, ts.Equal(Timestamp{T: 2, I: 1}))
	assert.False(t, ts.Equal(Timestamp{T: 1, I: 2}))
	assert.False(t, ts.IsZero())
	assert.True(t, Timestamp{}.IsZero())
}

func TestCode(t *testing.T) {
	testCases := []struct {
		name  string
		a, b  Code
		equal bool
	}{
		{"same code", Code{Code: "x"}, Code{Code: "x"}, true},
		{"different code", Code{Code: "x"}, Code{Code: "y"}, false},
		{"scope and no scope", Code{Code: "x", Scope: D{}}, Code{Code: "x"}, false},
		{"equal scopes", Code{Code: "x", Scope: D{{"a", 1}}}, Code{Code: "x", Scope: D{{"a", int32(1)}}}, true},
		{"different scopes", Code{Code: "x", Scope: D{{"a", 1}}}, Code{Code: "x", Scope: D{{"a", 2}}}, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.equal, tc.a.Equal(tc.b))
			assert.Equal(t, tc.equal, tc.b.Equal(tc.a))
		})
	}

	assert.False(t, Code{Code: "x"}.HasScope())
	assert.True(t, Code{Code: "x", Scope: D{}}.HasScope())
}

func TestType(t *testing.T) {
	testCases := []struct {
		t        Type
		name     string
		valid    bool
		reserved bool
	}{
		{TypeDouble, "double", true, false},
		{TypeString, "string", true, false},
		{TypeEmbeddedDocument, "embedded document", true, false},
		{TypeArray, "array", true, false},
		{TypeBinary, "binary", false, true},
		{TypeUndefined, "undefined", true, false},
		{TypeCodeWithScope, "code with scope", true, false},
		{TypeDecimal128, "128-bit decimal", true, false},
		{TypeMinKey, "min key", false, true},
		{TypeMaxKey, "max key", false, true},
		{Type(0x0C), "invalid", false, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.name, tc.t.String())
			assert.Equal(t, tc.valid, tc.t.IsValid())
			assert.Equal(t, tc.reserved, tc.t.IsReserved())
		})
	}
}
