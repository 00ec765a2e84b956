// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package llbson

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var wireTypes = []struct {
	t    Type
	tag  byte
	name string
}{
	{TypeDouble, 0x01, "double"},
	{TypeString, 0x02, "string"},
	{TypeEmbeddedDocument, 0x03, "embedded document"},
	{TypeArray, 0x04, "array"},
	{TypeBinary, 0x05, "binary"},
	{TypeUndefined, 0x06, "undefined"},
	{TypeObjectID, 0x07, "objectID"},
	{TypeBoolean, 0x08, "boolean"},
	{TypeDateTime, 0x09, "UTC datetime"},
	{TypeNull, 0x0A, "null"},
	{TypeRegex, 0x0B, "regex"},
	{TypeJavaScript, 0x0D, "javascript"},
	{TypeSymbol, 0x0E, "symbol"},
	{TypeCodeWithScope, 0x0F, "code with scope"},
	{TypeInt32, 0x10, "32-bit integer"},
	{TypeTimestamp, 0x11, "timestamp"},
	{TypeInt64, 0x12, "64-bit integer"},
	{TypeDecimal128, 0x13, "128-bit decimal"},
	{TypeMaxKey, 0x7F, "max key"},
	{TypeMinKey, 0xFF, "min key"},
}

func TestTypeHeader(t *testing.T) {
	for _, wt := range wireTypes {
		t.Run(wt.name, func(t *testing.T) {
			assert.Equal(t, wt.name, wt.t.String())

			b := AppendHeader(nil, wt.t, "k")
			assert.Equal(t, []byte{wt.tag, 'k', 0x00}, b)

			got, rem, ok := ReadType(b)
			require.True(t, ok)
			assert.Equal(t, wt.t, got)

			key, rem, ok := ReadKey(rem)
			require.True(t, ok)
			assert.Equal(t, "k", key)
			assert.Empty(t, rem)
		})
	}
}

func TestUnassignedTags(t *testing.T) {
	for _, tag := range []byte{0x00, 0x0C, 0x14, 0x7E, 0x80, 0xFE} {
		assert.Equal(t, "invalid", Type(tag).String(), "tag 0x%02X", tag)
	}

	_, rem, ok := ReadType(nil)
	assert.False(t, ok)
	assert.Empty(t, rem)
}
