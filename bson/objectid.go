// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"encoding"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"math/rand"
	"time"

	"github.com/ikmak/dbson/internal/randutil"
)

// ErrInvalidHex indicates that a hex string cannot be converted to an ObjectID.
var ErrInvalidHex = errors.New("the provided hex string is not a valid ObjectID")

// ObjectID is the 12 byte identifier type. Two identifiers are equal when
// their bytes are equal.
type ObjectID [12]byte

// NilObjectID is the zero value for ObjectID.
var NilObjectID ObjectID

var random = randutil.NewLockedRand(rand.NewSource(randutil.CryptoSeed()))

var _ encoding.TextMarshaler = ObjectID{}
var _ encoding.TextUnmarshaler = &ObjectID{}

// NewObjectID generates a new ObjectID.
func NewObjectID() ObjectID {
	return NewObjectIDFromTimestamp(time.Now())
}

// NewObjectIDFromTimestamp generates a new ObjectID based on the given time.
// The first four bytes are the big-endian Unix seconds; the remaining eight
// are three pseudo-random values packed big-endian into 3, 2 and 3 bytes.
func NewObjectIDFromTimestamp(timestamp time.Time) ObjectID {
	var b [12]byte
	var r [3]uint32
	random.Uint32s(r[:])

	binary.BigEndian.PutUint32(b[0:4], uint32(timestamp.Unix()))
	putUint24(b[4:7], r[0])
	binary.BigEndian.PutUint16(b[7:9], uint16(r[1]))
	putUint24(b[9:12], r[2])

	return b
}

// Timestamp extracts the time part of the ObjectId.
func (id ObjectID) Timestamp() time.Time {
	unixSecs := binary.BigEndian.Uint32(id[0:4])
	return time.Unix(int64(unixSecs), 0).UTC()
}

// Hex returns the hex encoding of the ObjectID as a string.
func (id ObjectID) Hex() string {
	var buf [24]byte
	hex.Encode(buf[:], id[:])
	return string(buf[:])
}

func (id ObjectID) String() string {
	return `ObjectID("` + id.Hex() + `")`
}

// IsZero returns true if id is the empty ObjectID.
func (id ObjectID) IsZero() bool {
	return id == NilObjectID
}

// ObjectIDFromHex creates a new ObjectID from a hex string. It returns an error if the hex string is not a
// valid ObjectID.
func ObjectIDFromHex(s string) (ObjectID, error) {
	if len(s) != 24 {
		return NilObjectID, ErrInvalidHex
	}

	var oid [12]byte
	_, err := hex.Decode(oid[:], []byte(s))
	if err != nil {
		return NilObjectID, err
	}

	return oid, nil
}

// MarshalText returns the ObjectID as UTF-8-encoded hex text.
func (id ObjectID) MarshalText() ([]byte, error) {
	var buf [24]byte
	hex.Encode(buf[:], id[:])
	return buf[:], nil
}

// UnmarshalText populates the ObjectID from its 24 character hex form. An
// empty input leaves the ObjectID unchanged.
func (id *ObjectID) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	oid, err := ObjectIDFromHex(string(b))
	if err != nil {
		return err
	}
	*id = oid
	return nil
}

func putUint24(b []byte, v uint32) {
	b[0] = byte(v >> 16)
	b[1] = byte(v >> 8)
	b[2] = byte(v)
}
