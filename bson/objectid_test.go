// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"encoding/binary"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var lowerHex = regexp.MustCompile(`^[0-9a-f]{24}$`)

func TestNew(t *testing.T) {
	// Ensure that objectid.NewObjectID() doesn't panic.
	NewObjectID()
}

func TestObjectIDHexRoundTrip(t *testing.T) {
	id := NewObjectID()

	hex := id.Hex()
	assert.Regexp(t, lowerHex, hex)

	parsed, err := ObjectIDFromHex(hex)
	require.NoError(t, err)
	assert.Equal(t, id, parsed)
	assert.True(t, id == parsed)
}

func TestObjectIDFromHexErrors(t *testing.T) {
	testCases := []struct {
		name string
		hex  string
	}{
		{"empty", ""},
		{"too short", "5ef7fdd91c19e3222b41b83"},
		{"too long", "5ef7fdd91c19e3222b41b8390"},
		{"not hex", "5ef7fdd91c19e3222b41b83z"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ObjectIDFromHex(tc.hex)
			assert.Error(t, err)
		})
	}
}

func TestObjectIDFromTimestamp(t *testing.T) {
	ts := time.Date(2020, time.June, 28, 2, 1, 13, 0, time.UTC)

	a := NewObjectIDFromTimestamp(ts)
	b := NewObjectIDFromTimestamp(ts)

	assert.Equal(t, uint32(ts.Unix()), binary.BigEndian.Uint32(a[0:4]))
	assert.Equal(t, ts, a.Timestamp())
	assert.Equal(t, a[0:4], b[0:4])
	assert.NotEqual(t, a, b, "random tails should differ")
}

func TestObjectIDString(t *testing.T) {
	id, err := ObjectIDFromHex("5ef7fdd91c19e3222b41b839")
	require.NoError(t, err)

	assert.Equal(t, `ObjectID("5ef7fdd91c19e3222b41b839")`, id.String())
	assert.False(t, id.IsZero())
	assert.True(t, NilObjectID.IsZero())
}

func TestObjectIDText(t *testing.T) {
	id := NewObjectID()

	text, err := id.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, id.Hex(), string(text))

	var got ObjectID
	require.NoError(t, got.UnmarshalText(text))
	assert.Equal(t, id, got)

	unchanged := id
	require.NoError(t, unchanged.UnmarshalText(nil))
	assert.Equal(t, id, unchanged)

	assert.Error(t, got.UnmarshalText([]byte("nope")))
}
