// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"math"
	"strconv"

	"github.com/ikmak/dbson/bson/internal/llbson"
	"github.com/ikmak/dbson/internal/logger"
)

// Serialize encodes v and returns the encoded bytes.
//
// The tree is validated first: a value reachable from itself, nesting deeper
// than the configured maximum, an illegal key or a value with no wire type
// fails before any byte is written. The output is then allocated once, at
// its exact size, and written in a single pass.
//
// Every failure is an *Error with code SERIALIZE_ERROR whose Path locates
// the offending value; errors.Is reports the underlying kind, for example
// errors.Is(err, ErrCircularReference).
func Serialize(v interface{}, opts ...*Options) ([]byte, error) {
	cfg := newConfig(opts...)

	b, err := serialize(v, cfg)
	if err != nil {
		wrapped := wrapFailure(CodeSerializationFailed, "serialization failed", err)
		if cfg.logger.LevelComponentEnabled(logger.LevelInfo, logger.ComponentSerializer) {
			cfg.logger.Print(logger.LevelInfo, logger.ComponentSerializer, "serialize failed",
				"code", innerCode(err), "path", wrapped.Path, "error", err.Error())
		}
		return nil, wrapped
	}

	if cfg.logger.LevelComponentEnabled(logger.LevelDebug, logger.ComponentSerializer) {
		t, _ := TypeOf(v)
		cfg.logger.Print(logger.LevelDebug, logger.ComponentSerializer, "serialized",
			"type", t.String(), "bytes", len(b))
	}
	return b, nil
}

func serialize(v interface{}, cfg config) ([]byte, error) {
	if err := newValidator(cfg).validate(v, nil, 0); err != nil {
		return nil, err
	}

	t, rv, err := classify(v, cfg.integerFloats)
	if err != nil {
		return nil, err
	}
	if cfg.standardRoot && t != TypeEmbeddedDocument {
		return nil, newError(CodeInvalidType, "", "root must be a document, not %s", t)
	}

	size, err := sizer{integerFloats: cfg.integerFloats}.rootSize(v, cfg.standardRoot)
	if err != nil {
		return nil, err
	}
	if size > math.MaxInt32 {
		return nil, newError(CodeInvalidType, "", "encoded size %d exceeds the maximum of %d bytes", size, math.MaxInt32)
	}

	w := writer{integerFloats: cfg.integerFloats}
	dst := make([]byte, 0, size)
	if !cfg.standardRoot {
		dst = llbson.AppendType(dst, llbson.Type(t))
	}
	dst, err = w.appendPayload(dst, t, rv, nil)
	if err != nil {
		return nil, err
	}

	if len(dst) != size {
		return nil, newError(CodeSerializationFailed, "", "wrote %d bytes, expected %d", len(dst), size)
	}
	return dst, nil
}

// writer appends values to a buffer sized by sizer.
type writer struct {
	integerFloats bool
}

func (w writer) appendPayload(dst []byte, t Type, v interface{}, p *path) ([]byte, error) {
	switch t {
	case TypeNull, TypeUndefined:
		return dst, nil
	case TypeBoolean:
		return llbson.AppendBoolean(dst, boolValue(v)), nil
	case TypeInt32:
		return llbson.AppendInt32(dst, int32(intValue(v))), nil
	case TypeInt64:
		return llbson.AppendInt64(dst, intValue(v)), nil
	case TypeDouble:
		return llbson.AppendDouble(dst, floatValue(v)), nil
	case TypeDateTime:
		return llbson.AppendDateTime(dst, dateValue(v)), nil
	case TypeTimestamp:
		ts := v.(Timestamp)
		return llbson.AppendTimestamp(dst, ts.T, ts.I), nil
	case TypeObjectID:
		return llbson.AppendObjectID(dst, v.(ObjectID)), nil
	case TypeDecimal128:
		return llbson.AppendDecimal128(dst, v.(Decimal128).Bytes()), nil
	case TypeString:
		return llbson.AppendString(dst, stringValue(v)), nil
	case TypeSymbol:
		return llbson.AppendString(dst, string(v.(Symbol))), nil
	case TypeJavaScript:
		return llbson.AppendString(dst, v.(Code).Code), nil
	case TypeRegex:
		re := v.(Regex)
		return llbson.AppendRegex(dst, re.Pattern, re.Options), nil
	case TypeCodeWithScope:
		c := v.(Code)
		idx, dst := llbson.ReserveLength(dst)
		dst = llbson.AppendString(dst, c.Code)
		dst, err := w.appendDocument(dst, c.Scope, p.field("scope"))
		if err != nil {
			return nil, err
		}
		return llbson.UpdateLength(dst, idx, int32(len(dst))-idx), nil
	case TypeEmbeddedDocument:
		return w.appendDocument(dst, v, p)
	case TypeArray:
		return w.appendArray(dst, v, p)
	}
	return nil, newError(CodeInvalidType, p.String(), "no writer for %s", t)
}

func (w writer) appendElement(dst []byte, key string, val interface{}, p *path) ([]byte, error) {
	t, rv, err := classify(val, w.integerFloats)
	if err != nil {
		err.(*Error).Path = p.String()
		return nil, err
	}
	dst = llbson.AppendHeader(dst, llbson.Type(t), key)
	return w.appendPayload(dst, t, rv, p)
}

func (w writer) appendDocument(dst []byte, doc interface{}, p *path) ([]byte, error) {
	idx, dst := llbson.ReserveLength(dst)
	err := rangeDocument(doc, func(key string, val interface{}) error {
		var err error
		dst, err = w.appendElement(dst, key, val, p.field(key))
		return err
	})
	if err != nil {
		return nil, err
	}
	return llbson.AppendDocumentEnd(dst, idx), nil
}

func (w writer) appendArray(dst []byte, arr interface{}, p *path) ([]byte, error) {
	idx, dst := llbson.ReserveLength(dst)
	err := rangeArray(arr, func(i int, val interface{}) error {
		var err error
		dst, err = w.appendElement(dst, strconv.Itoa(i), val, p.element(i))
		return err
	})
	if err != nil {
		return nil, err
	}
	return llbson.AppendDocumentEnd(dst, idx), nil
}

// innerCode returns the code of the innermost *Error in err's chain.
func innerCode(err error) ErrorCode {
	code := CodeSerializationFailed
	for err != nil {
		if e, ok := err.(*Error); ok {
			code = e.Code
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	return code
}
