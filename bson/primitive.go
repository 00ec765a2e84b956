// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"fmt"
	"time"
)

// D is an ordered representation of a document. Keys are unique and their
// insertion order is preserved on the wire.
//
// Example usage:
//
//	bson.D{{"foo", "bar"}, {"hello", "world"}, {"pi", 3.14159}}
type D []E

// E represents a single element of a D.
type E struct {
	Key   string
	Value interface{}
}

// M is an unordered representation of a document. Keys are written in sorted
// order so that the same M always produces the same bytes.
//
// Example usage:
//
//	bson.M{"foo": "bar", "hello": "world", "pi": 3.14159}
type M map[string]interface{}

// A is an ordered representation of an array.
//
// Example usage:
//
//	bson.A{"bar", "world", 3.14159, bson.D{{"qux", 12345}}}
type A []interface{}

// Null represents the null value. A nil interface encodes the same way.
type Null struct{}

// Undefined represents a value that is present but undefined. It is distinct
// from Null.
type Undefined struct{}

// DateTime represents a date as milliseconds since the Unix epoch.
type DateTime int64

// NewDateTimeFromTime creates a new DateTime from a time.Time.
func NewDateTimeFromTime(t time.Time) DateTime {
	return DateTime(t.Unix()*1e3 + int64(t.Nanosecond())/1e6)
}

// Time returns the date as a time.Time in UTC.
func (d DateTime) Time() time.Time {
	return time.Unix(int64(d)/1000, int64(d)%1000*1000000).UTC()
}

// String returns the date in RFC 3339 form with millisecond precision.
func (d DateTime) String() string {
	return d.Time().Format("2006-01-02T15:04:05.000Z07:00")
}

// Regex represents a regular expression: a pattern and its option flags.
// Neither may contain a NUL byte.
type Regex struct {
	Pattern string
	Options string
}

func (rp Regex) String() string {
	return fmt.Sprintf(`{"pattern": "%s", "options": "%s"}`, rp.Pattern, rp.Options)
}

// Symbol represents a symbol. Symbols compare by value.
type Symbol string

// Code represents a piece of code with an optional scope document. A nil
// Scope means the code has no scope and is written with the code tag; a
// non-nil Scope, even an empty one, is written with the code with scope tag.
type Code struct {
	Code  string
	Scope D
}

// HasScope reports whether the code carries a scope document.
func (c Code) HasScope() bool {
	return c.Scope != nil
}

// Equal compares c to other. Scopes are compared as documents.
func (c Code) Equal(other Code) bool {
	if c.Code != other.Code || c.HasScope() != other.HasScope() {
		return false
	}
	return !c.HasScope() || Equal(c.Scope, other.Scope)
}

func (c Code) String() string {
	if !c.HasScope() {
		return c.Code
	}
	return fmt.Sprintf(`{"code": "%s", "scope": %v}`, c.Code, c.Scope)
}

// Timestamp represents a timestamp: two unsigned 32-bit fields. I is the low
// half and is written first; T is the high half.
type Timestamp struct {
	T uint32
	I uint32
}

// NewTimestamp creates a Timestamp from its low and high halves.
func NewTimestamp(low, high uint32) Timestamp {
	return Timestamp{T: high, I: low}
}

// Equal compares tp to tp2.
func (tp Timestamp) Equal(tp2 Timestamp) bool {
	return tp.T == tp2.T && tp.I == tp2.I
}

// IsZero returns if tp is the zero Timestamp.
func (tp Timestamp) IsZero() bool {
	return tp.T == 0 && tp.I == 0
}

// Binary represents binary data. The binary tag is reserved: values of this
// type, and []byte, fail to encode with an invalid type error.
type Binary struct {
	Subtype byte
	Data    []byte
}

// MinKey represents the min key value. It is reserved and fails to encode.
type MinKey struct{}

// MaxKey represents the max key value. It is reserved and fails to encode.
type MaxKey struct{}
