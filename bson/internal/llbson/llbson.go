// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package llbson contains functions that encode and decode the individual
// wire values of the document format to and from a slice of bytes. These
// functions do no validation beyond bounds checking and are the building
// blocks of the serializer and deserializer in the bson package.
//
// The Append* functions append a value to the given dst slice and return the
// extended buffer. If dst has enough capacity the slice is not grown, which
// lets the serializer allocate its output exactly once.
//
// The Read* functions return the value read, the remaining bytes after the
// value, and a boolean that is false when src does not contain enough bytes.
// A boolean is used instead of an error because the only failure is always
// the same: not enough bytes.
package llbson

import (
	"bytes"
	"math"
)

// Type is a wire type tag.
type Type byte

// Wire type tags.
const (
	TypeDouble           Type = 0x01
	TypeString           Type = 0x02
	TypeEmbeddedDocument Type = 0x03
	TypeArray            Type = 0x04
	TypeBinary           Type = 0x05
	TypeUndefined        Type = 0x06
	TypeObjectID         Type = 0x07
	TypeBoolean          Type = 0x08
	TypeDateTime         Type = 0x09
	TypeNull             Type = 0x0A
	TypeRegex            Type = 0x0B
	TypeJavaScript       Type = 0x0D
	TypeSymbol           Type = 0x0E
	TypeCodeWithScope    Type = 0x0F
	TypeInt32            Type = 0x10
	TypeTimestamp        Type = 0x11
	TypeInt64            Type = 0x12
	TypeDecimal128       Type = 0x13
	TypeMaxKey           Type = 0x7F
	TypeMinKey           Type = 0xFF
)

// String returns the name of the type.
func (t Type) String() string {
	switch t {
	case TypeDouble:
		return "double"
	case TypeString:
		return "string"
	case TypeEmbeddedDocument:
		return "embedded document"
	case TypeArray:
		return "array"
	case TypeBinary:
		return "binary"
	case TypeUndefined:
		return "undefined"
	case TypeObjectID:
		return "objectID"
	case TypeBoolean:
		return "boolean"
	case TypeDateTime:
		return "UTC datetime"
	case TypeNull:
		return "null"
	case TypeRegex:
		return "regex"
	case TypeJavaScript:
		return "javascript"
	case TypeSymbol:
		return "symbol"
	case TypeCodeWithScope:
		return "code with scope"
	case TypeInt32:
		return "32-bit integer"
	case TypeTimestamp:
		return "timestamp"
	case TypeInt64:
		return "64-bit integer"
	case TypeDecimal128:
		return "128-bit decimal"
	case TypeMinKey:
		return "min key"
	case TypeMaxKey:
		return "max key"
	default:
		return "invalid"
	}
}

// AppendType will append t to dst and return the extended buffer.
func AppendType(dst []byte, t Type) []byte { return append(dst, byte(t)) }

// AppendKey will append key followed by a NUL byte to dst and return the
// extended buffer.
func AppendKey(dst []byte, key string) []byte {
	dst = append(dst, key...)
	return append(dst, 0x00)
}

// AppendHeader will append Type t and key to dst and return the extended
// buffer.
func AppendHeader(dst []byte, t Type, key string) []byte {
	return AppendKey(AppendType(dst, t), key)
}

// ReserveLength appends four placeholder bytes for a length field and returns
// the index where the field begins. The field is filled in by UpdateLength
// once the framed contents have been written.
func ReserveLength(dst []byte) (int32, []byte) {
	index := int32(len(dst))
	return index, append(dst, 0x00, 0x00, 0x00, 0x00)
}

// UpdateLength overwrites the four bytes at index with length.
func UpdateLength(dst []byte, index, length int32) []byte {
	dst[index] = byte(length)
	dst[index+1] = byte(length >> 8)
	dst[index+2] = byte(length >> 16)
	dst[index+3] = byte(length >> 24)
	return dst
}

// AppendDocumentEnd appends the document terminator and backpatches the length
// reserved at index. The length spans from the length field through the
// terminator inclusive.
func AppendDocumentEnd(dst []byte, index int32) []byte {
	dst = append(dst, 0x00)
	return UpdateLength(dst, index, int32(len(dst))-index)
}

// AppendDouble will append f to dst and return the extended buffer.
func AppendDouble(dst []byte, f float64) []byte {
	return appendu64(dst, math.Float64bits(f))
}

// AppendString will append s to dst as a length prefixed, NUL terminated
// string and return the extended buffer.
func AppendString(dst []byte, s string) []byte {
	dst = appendi32(dst, int32(len(s)+1))
	dst = append(dst, s...)
	return append(dst, 0x00)
}

// AppendObjectID will append the 12 bytes of oid to dst and return the
// extended buffer.
func AppendObjectID(dst []byte, oid [12]byte) []byte { return append(dst, oid[:]...) }

// AppendBoolean will append b to dst and return the extended buffer.
func AppendBoolean(dst []byte, b bool) []byte {
	if b {
		return append(dst, 0x01)
	}
	return append(dst, 0x00)
}

// AppendDateTime will append dt to dst and return the extended buffer.
func AppendDateTime(dst []byte, dt int64) []byte { return appendi64(dst, dt) }

// AppendRegex will append pattern and options to dst as two NUL terminated
// strings and return the extended buffer.
func AppendRegex(dst []byte, pattern, options string) []byte {
	return AppendKey(AppendKey(dst, pattern), options)
}

// AppendInt32 will append i32 to dst and return the extended buffer.
func AppendInt32(dst []byte, i32 int32) []byte { return appendi32(dst, i32) }

// AppendInt64 will append i64 to dst and return the extended buffer.
func AppendInt64(dst []byte, i64 int64) []byte { return appendi64(dst, i64) }

// AppendTimestamp will append t and i to dst and return the extended buffer.
// i is the low half and is written first.
func AppendTimestamp(dst []byte, t, i uint32) []byte {
	return appendu32(appendu32(dst, i), t)
}

// AppendDecimal128 will append the 16 bytes of d to dst and return the
// extended buffer.
func AppendDecimal128(dst []byte, d [16]byte) []byte { return append(dst, d[:]...) }

// ReadType will return the first byte of src as a type.
func ReadType(src []byte) (Type, []byte, bool) {
	if len(src) < 1 {
		return 0, src, false
	}
	return Type(src[0]), src[1:], true
}

// ReadKey will read a NUL terminated key from src. The NUL byte is not part
// of the returned string.
func ReadKey(src []byte) (string, []byte, bool) { return readcstring(src) }

// ReadLength will read a four byte length from src.
func ReadLength(src []byte) (int32, []byte, bool) { return readi32(src) }

// ReadDouble will read a float64 from src.
func ReadDouble(src []byte) (float64, []byte, bool) {
	bits, rem, ok := readu64(src)
	if !ok {
		return 0, src, false
	}
	return math.Float64frombits(bits), rem, true
}

// ReadString will read a length prefixed string from src. The declared length
// includes the trailing NUL, which is skipped but not checked.
func ReadString(src []byte) (string, []byte, bool) {
	l, rem, ok := readi32(src)
	if !ok || l < 1 || int64(len(rem)) < int64(l) {
		return "", src, false
	}
	return string(rem[:l-1]), rem[l:], true
}

// ReadObjectID will read 12 bytes from src.
func ReadObjectID(src []byte) ([12]byte, []byte, bool) {
	var oid [12]byte
	if len(src) < 12 {
		return oid, src, false
	}
	copy(oid[:], src[:12])
	return oid, src[12:], true
}

// ReadBoolean will read a bool from src. Any non-zero byte is true.
func ReadBoolean(src []byte) (bool, []byte, bool) {
	if len(src) < 1 {
		return false, src, false
	}
	return src[0] != 0x00, src[1:], true
}

// ReadDateTime will read an int64 datetime from src.
func ReadDateTime(src []byte) (int64, []byte, bool) { return readi64(src) }

// ReadRegex will read a pattern and options from src.
func ReadRegex(src []byte) (pattern, options string, rem []byte, ok bool) {
	pattern, rem, ok = readcstring(src)
	if !ok {
		return "", "", src, false
	}
	options, rem, ok = readcstring(rem)
	if !ok {
		return "", "", src, false
	}
	return pattern, options, rem, true
}

// ReadInt32 will read an int32 from src.
func ReadInt32(src []byte) (int32, []byte, bool) { return readi32(src) }

// ReadInt64 will read an int64 from src.
func ReadInt64(src []byte) (int64, []byte, bool) { return readi64(src) }

// ReadTimestamp will read t and i from src.
func ReadTimestamp(src []byte) (t, i uint32, rem []byte, ok bool) {
	i, rem, ok = readu32(src)
	if !ok {
		return 0, 0, src, false
	}
	t, rem, ok = readu32(rem)
	if !ok {
		return 0, 0, src, false
	}
	return t, i, rem, true
}

// ReadDecimal128 will read 16 bytes from src.
func ReadDecimal128(src []byte) ([16]byte, []byte, bool) {
	var d [16]byte
	if len(src) < 16 {
		return d, src, false
	}
	copy(d[:], src[:16])
	return d, src[16:], true
}

func appendi32(dst []byte, i32 int32) []byte {
	return append(dst, byte(i32), byte(i32>>8), byte(i32>>16), byte(i32>>24))
}

func readi32(src []byte) (int32, []byte, bool) {
	if len(src) < 4 {
		return 0, src, false
	}
	return int32(src[0]) | int32(src[1])<<8 | int32(src[2])<<16 | int32(src[3])<<24, src[4:], true
}

func appendi64(dst []byte, i64 int64) []byte {
	return append(dst,
		byte(i64), byte(i64>>8), byte(i64>>16), byte(i64>>24),
		byte(i64>>32), byte(i64>>40), byte(i64>>48), byte(i64>>56),
	)
}

func readi64(src []byte) (int64, []byte, bool) {
	u64, rem, ok := readu64(src)
	return int64(u64), rem, ok
}

func appendu32(dst []byte, u32 uint32) []byte {
	return append(dst, byte(u32), byte(u32>>8), byte(u32>>16), byte(u32>>24))
}

func readu32(src []byte) (uint32, []byte, bool) {
	if len(src) < 4 {
		return 0, src, false
	}
	return uint32(src[0]) | uint32(src[1])<<8 | uint32(src[2])<<16 | uint32(src[3])<<24, src[4:], true
}

func appendu64(dst []byte, u64 uint64) []byte {
	return append(dst,
		byte(u64), byte(u64>>8), byte(u64>>16), byte(u64>>24),
		byte(u64>>32), byte(u64>>40), byte(u64>>48), byte(u64>>56),
	)
}

func readu64(src []byte) (uint64, []byte, bool) {
	if len(src) < 8 {
		return 0, src, false
	}
	u64 := uint64(src[0]) | uint64(src[1])<<8 | uint64(src[2])<<16 | uint64(src[3])<<24 |
		uint64(src[4])<<32 | uint64(src[5])<<40 | uint64(src[6])<<48 | uint64(src[7])<<56
	return u64, src[8:], true
}

func readcstring(src []byte) (string, []byte, bool) {
	idx := bytes.IndexByte(src, 0x00)
	if idx < 0 {
		return "", src, false
	}
	return string(src[:idx]), src[idx+1:], true
}
