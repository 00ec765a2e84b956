// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"strconv"

	"github.com/ikmak/dbson/bson/internal/llbson"
	"github.com/ikmak/dbson/internal/logger"
)

// Deserialize decodes a single value from b. Documents are returned as D,
// arrays as A, integers as int32 or int64, doubles as float64 and null as
// nil. Bytes left over after the value are an error; use DeserializeFirst
// to read a stream of concatenated values.
//
// Every failure is an *Error with code DESERIALIZE_ERROR whose Offset is the
// position in b where reading failed.
func Deserialize(b []byte, opts ...*Options) (interface{}, error) {
	cfg := newConfig(opts...)

	v, rem, err := deserialize(b, cfg)
	if err == nil && len(rem) != 0 {
		err = decoder{src: b}.errorf(CodeMalformed, rem, nil, "%d trailing bytes after the root value", len(rem))
	}
	return finishDeserialize(b, v, rem, err, cfg)
}

// DeserializeFirst decodes the first value in b and returns the bytes that
// follow it.
func DeserializeFirst(b []byte, opts ...*Options) (interface{}, []byte, error) {
	cfg := newConfig(opts...)

	v, rem, err := deserialize(b, cfg)
	v, err = finishDeserialize(b, v, rem, err, cfg)
	if err != nil {
		return nil, b, err
	}
	return v, rem, nil
}

func finishDeserialize(b []byte, v interface{}, rem []byte, err error, cfg config) (interface{}, error) {
	if err != nil {
		wrapped := wrapFailure(CodeDeserializationFailed, "deserialization failed", err)
		if cfg.logger.LevelComponentEnabled(logger.LevelInfo, logger.ComponentDeserializer) {
			cfg.logger.Print(logger.LevelInfo, logger.ComponentDeserializer, "deserialize failed",
				"code", innerCode(err), "path", wrapped.Path, "offset", wrapped.Offset, "error", err.Error())
		}
		return nil, wrapped
	}

	if cfg.logger.LevelComponentEnabled(logger.LevelDebug, logger.ComponentDeserializer) {
		t, _ := TypeOf(v)
		cfg.logger.Print(logger.LevelDebug, logger.ComponentDeserializer, "deserialized",
			"type", t.String(), "bytes", len(b)-len(rem))
	}
	return v, nil
}

func deserialize(b []byte, cfg config) (interface{}, []byte, error) {
	d := decoder{src: b, cfg: cfg}
	if cfg.standardRoot {
		return d.readDocument(b, nil, 1)
	}

	t, rem, ok := llbson.ReadType(b)
	if !ok {
		return nil, b, d.tooSmall(b, nil)
	}
	return d.readValue(Type(t), rem, nil, 0)
}

// decoder reads values from src. Offsets in errors are relative to src.
type decoder struct {
	src []byte
	cfg config
}

// offset returns the position of rem in src. Containers are read from bounded
// reslices of src, so the position is derived from capacities, which still
// reach the end of src, rather than lengths.
func (d decoder) offset(rem []byte) int { return cap(d.src) - cap(rem) }

func (d decoder) errorf(code ErrorCode, rem []byte, p *path, format string, args ...interface{}) error {
	err := newError(code, p.String(), format, args...)
	err.Offset = d.offset(rem)
	return err
}

func (d decoder) tooSmall(rem []byte, p *path) error {
	return &Error{
		Code:   CodeMalformed,
		Msg:    "unexpected end of input",
		Path:   p.String(),
		Offset: d.offset(rem),
		Err:    NewErrTooSmall(),
	}
}

// readValue reads the payload of a value of type t. depth is the nesting of
// the container holding the value.
func (d decoder) readValue(t Type, src []byte, p *path, depth int) (interface{}, []byte, error) {
	switch t {
	case TypeDouble:
		f, rem, ok := llbson.ReadDouble(src)
		if !ok {
			return nil, src, d.tooSmall(src, p)
		}
		return f, rem, nil
	case TypeString:
		s, rem, ok := llbson.ReadString(src)
		if !ok {
			return nil, src, d.tooSmall(src, p)
		}
		return s, rem, nil
	case TypeEmbeddedDocument:
		return d.readDocument(src, p, depth+1)
	case TypeArray:
		return d.readArray(src, p, depth+1)
	case TypeUndefined:
		return Undefined{}, src, nil
	case TypeObjectID:
		oid, rem, ok := llbson.ReadObjectID(src)
		if !ok {
			return nil, src, d.tooSmall(src, p)
		}
		return ObjectID(oid), rem, nil
	case TypeBoolean:
		b, rem, ok := llbson.ReadBoolean(src)
		if !ok {
			return nil, src, d.tooSmall(src, p)
		}
		return b, rem, nil
	case TypeDateTime:
		dt, rem, ok := llbson.ReadDateTime(src)
		if !ok {
			return nil, src, d.tooSmall(src, p)
		}
		return DateTime(dt), rem, nil
	case TypeNull:
		return nil, src, nil
	case TypeRegex:
		pattern, options, rem, ok := llbson.ReadRegex(src)
		if !ok {
			return nil, src, d.tooSmall(src, p)
		}
		return Regex{Pattern: pattern, Options: options}, rem, nil
	case TypeJavaScript:
		code, rem, ok := llbson.ReadString(src)
		if !ok {
			return nil, src, d.tooSmall(src, p)
		}
		return Code{Code: code}, rem, nil
	case TypeSymbol:
		s, rem, ok := llbson.ReadString(src)
		if !ok {
			return nil, src, d.tooSmall(src, p)
		}
		return Symbol(s), rem, nil
	case TypeCodeWithScope:
		return d.readCodeWithScope(src, p, depth)
	case TypeInt32:
		i32, rem, ok := llbson.ReadInt32(src)
		if !ok {
			return nil, src, d.tooSmall(src, p)
		}
		return i32, rem, nil
	case TypeTimestamp:
		ts, ti, rem, ok := llbson.ReadTimestamp(src)
		if !ok {
			return nil, src, d.tooSmall(src, p)
		}
		return Timestamp{T: ts, I: ti}, rem, nil
	case TypeInt64:
		i64, rem, ok := llbson.ReadInt64(src)
		if !ok {
			return nil, src, d.tooSmall(src, p)
		}
		return i64, rem, nil
	case TypeDecimal128:
		b, rem, ok := llbson.ReadDecimal128(src)
		if !ok {
			return nil, src, d.tooSmall(src, p)
		}
		return NewDecimal128FromBytes(b), rem, nil
	case TypeBinary, TypeMinKey, TypeMaxKey:
		return nil, src, d.errorf(CodeInvalidType, src, p, "%s values are not supported", t)
	}
	return nil, src, d.errorf(CodeUnknownType, src, p, "unknown type 0x%02x", byte(t))
}

// readFramed reads a length prefixed container. body holds the bytes after
// the length field up to and including the terminator; rem holds the bytes
// after the container.
func (d decoder) readFramed(src []byte, p *path, minLength int32) (body, rem []byte, err error) {
	length, after, ok := llbson.ReadLength(src)
	if !ok {
		return nil, src, d.tooSmall(src, p)
	}
	if length < minLength {
		return nil, src, d.errorf(CodeMalformed, src, p, "invalid length %d", length)
	}
	if int64(len(after)) < int64(length)-4 {
		return nil, src, d.tooSmall(src, p)
	}
	return after[:length-4], after[length-4:], nil
}

// readEntries calls fn for each element of a document or array body. The
// body must end with exactly one terminator byte. Elements are read from
// the body only, so an element that runs past the end of its container
// fails instead of reading the bytes that follow it.
func (d decoder) readEntries(body []byte, p *path, depth int, array bool, fn func(key string, val interface{}, at []byte) error) error {
	for len(body) > 1 {
		at := body
		t, rem, _ := llbson.ReadType(body)
		if t == 0 {
			return d.errorf(CodeMalformed, at, p, "unexpected terminator")
		}
		key, rem, ok := llbson.ReadKey(rem)
		if !ok {
			return d.errorf(CodeMalformed, at, p, "unterminated key")
		}

		child := p.field(key)
		if i, ok := parseIndex(key); array && ok {
			child = p.element(i)
		}
		val, rem, err := d.readValue(Type(t), rem, child, depth)
		if err != nil {
			return err
		}
		if err := fn(key, val, at); err != nil {
			return err
		}
		body = rem
	}

	if len(body) != 1 || body[0] != 0x00 {
		return d.errorf(CodeMalformed, body, p, "missing terminator")
	}
	return nil
}

func (d decoder) readDocument(src []byte, p *path, depth int) (interface{}, []byte, error) {
	if depth > d.cfg.maxDepth {
		return nil, src, d.errorf(CodeMaxDepthExceeded, src, p, "nesting exceeds max depth %d", d.cfg.maxDepth)
	}
	body, rem, err := d.readFramed(src, p, 5)
	if err != nil {
		return nil, src, err
	}

	doc := make(D, 0)
	err = d.readEntries(body, p, depth, false, func(key string, val interface{}, _ []byte) error {
		doc = append(doc, E{Key: key, Value: val})
		return nil
	})
	if err != nil {
		return nil, src, err
	}
	return doc, rem, nil
}

func (d decoder) readArray(src []byte, p *path, depth int) (interface{}, []byte, error) {
	if depth > d.cfg.maxDepth {
		return nil, src, d.errorf(CodeMaxDepthExceeded, src, p, "nesting exceeds max depth %d", d.cfg.maxDepth)
	}
	body, rem, err := d.readFramed(src, p, 5)
	if err != nil {
		return nil, src, err
	}

	arr := make(A, 0)
	err = d.readEntries(body, p, depth, true, func(key string, val interface{}, at []byte) error {
		if !d.cfg.lenientArrays {
			if key != strconv.Itoa(len(arr)) {
				return d.errorf(CodeInvalidKey, at, p, "array key %q, expected %q", key, strconv.Itoa(len(arr)))
			}
			arr = append(arr, val)
			return nil
		}

		i, ok := parseIndex(key)
		if !ok {
			return d.errorf(CodeInvalidKey, at, p, "array key %q is not an index", key)
		}
		// Each element takes at least three bytes, so no valid array body
		// places an element beyond its own length.
		if i > len(body) {
			return d.errorf(CodeMalformed, at, p, "array index %d out of range", i)
		}
		for len(arr) <= i {
			arr = append(arr, Undefined{})
		}
		arr[i] = val
		return nil
	})
	if err != nil {
		return nil, src, err
	}
	return arr, rem, nil
}

// parseIndex parses an unsigned decimal array index.
func parseIndex(key string) (int, bool) {
	if key == "" {
		return 0, false
	}
	for i := 0; i < len(key); i++ {
		if key[i] < '0' || key[i] > '9' {
			return 0, false
		}
	}
	i, err := strconv.Atoi(key)
	return i, err == nil
}

func (d decoder) readCodeWithScope(src []byte, p *path, depth int) (interface{}, []byte, error) {
	length, after, ok := llbson.ReadLength(src)
	if !ok {
		return nil, src, d.tooSmall(src, p)
	}
	// length field, code string holding only its NUL, empty scope
	if length < 4+4+1+5 {
		return nil, src, d.errorf(CodeMalformed, src, p, "invalid code with scope length %d", length)
	}
	if int64(len(after)) < int64(length)-4 {
		return nil, src, d.tooSmall(src, p)
	}
	body, rem := after[:length-4], after[length-4:]

	code, scopeSrc, ok := llbson.ReadString(body)
	if !ok {
		return nil, src, d.errorf(CodeMalformed, body, p, "code with scope length does not cover its code")
	}
	scope, left, err := d.readDocument(scopeSrc, p.field("scope"), depth+1)
	if err != nil {
		return nil, src, err
	}
	if len(left) != 0 {
		return nil, src, d.errorf(CodeMalformed, left, p, "code with scope length mismatch: %d bytes unaccounted for", len(left))
	}
	return Code{Code: code, Scope: scope.(D)}, rem, nil
}
