// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package extjson

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/ikmak/dbson/bson"
)

// ErrUnexpectedToken is returned when the token stream is not valid JSON.
var ErrUnexpectedToken = errors.New("extjson: unexpected token")

// Decoder reads a stream of Extended JSON values.
type Decoder struct {
	dec *json.Decoder
}

// NewDecoder returns a Decoder reading from r. Relaxed and canonical input
// are both accepted.
func NewDecoder(r io.Reader) *Decoder {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	return &Decoder{dec: dec}
}

// Unmarshal parses a single Extended JSON value.
func Unmarshal(data []byte) (interface{}, error) {
	d := NewDecoder(bytes.NewReader(data))
	v, err := d.Decode()
	if err != nil {
		return nil, err
	}
	if _, err := d.dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data after value", ErrUnexpectedToken)
	}
	return v, nil
}

// Decode reads the next value. Objects become bson.D, arrays bson.A, and
// wrapper objects such as {"$oid": ...} the matching wrapper type. Integral
// numbers become int32 when they fit and int64 otherwise; all other numbers
// become float64. Decode returns io.EOF when the stream is exhausted.
func (d *Decoder) Decode() (interface{}, error) {
	tok, err := d.dec.Token()
	if err != nil {
		return nil, err
	}
	return d.value(tok)
}

func (d *Decoder) value(tok interface{}) (interface{}, error) {
	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			doc, err := d.object()
			if err != nil {
				return nil, err
			}
			return convertWrapper(doc)
		case '[':
			return d.array()
		}
		return nil, fmt.Errorf("%w: %q", ErrUnexpectedToken, v)
	case string:
		return v, nil
	case bool:
		return v, nil
	case json.Number:
		return parseNumber(string(v))
	case float64:
		return v, nil
	case nil:
		return nil, nil
	}
	return nil, fmt.Errorf("%w: %v", ErrUnexpectedToken, tok)
}

func (d *Decoder) object() (bson.D, error) {
	doc := bson.D{}
	for d.dec.More() {
		tok, err := d.dec.Token()
		if err != nil {
			return nil, unexpectedEOF(err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("%w: object key %v", ErrUnexpectedToken, tok)
		}
		tok, err = d.dec.Token()
		if err != nil {
			return nil, unexpectedEOF(err)
		}
		val, err := d.value(tok)
		if err != nil {
			return nil, err
		}
		doc = append(doc, bson.E{Key: key, Value: val})
	}
	if _, err := d.dec.Token(); err != nil {
		return nil, unexpectedEOF(err)
	}
	return doc, nil
}

func (d *Decoder) array() (bson.A, error) {
	arr := bson.A{}
	for d.dec.More() {
		tok, err := d.dec.Token()
		if err != nil {
			return nil, unexpectedEOF(err)
		}
		val, err := d.value(tok)
		if err != nil {
			return nil, err
		}
		arr = append(arr, val)
	}
	if _, err := d.dec.Token(); err != nil {
		return nil, unexpectedEOF(err)
	}
	return arr, nil
}

func unexpectedEOF(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}

func parseNumber(s string) (interface{}, error) {
	if !strings.ContainsAny(s, ".eE") {
		i64, err := strconv.ParseInt(s, 10, 64)
		if err == nil {
			if i64 >= math.MinInt32 && i64 <= math.MaxInt32 {
				return int32(i64), nil
			}
			return i64, nil
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("extjson: invalid number %q: %w", s, err)
	}
	return f, nil
}

// convertWrapper turns a wrapper object into its value. Objects whose keys
// do not form a known wrapper are returned unchanged.
func convertWrapper(doc bson.D) (interface{}, error) {
	if len(doc) == 0 || !strings.HasPrefix(doc[0].Key, "$") {
		return doc, nil
	}

	if len(doc) == 2 && doc[0].Key == "$code" && doc[1].Key == "$scope" {
		code, ok := doc[0].Value.(string)
		scope, sok := doc[1].Value.(bson.D)
		if !ok || !sok {
			return nil, wrapperError("$code", doc)
		}
		return bson.Code{Code: code, Scope: scope}, nil
	}
	if len(doc) != 1 {
		return doc, nil
	}

	key, val := doc[0].Key, doc[0].Value
	switch key {
	case "$oid":
		s, ok := val.(string)
		if !ok {
			return nil, wrapperError(key, doc)
		}
		oid, err := bson.ObjectIDFromHex(s)
		if err != nil {
			return nil, fmt.Errorf("extjson: %s: %w", key, err)
		}
		return oid, nil
	case "$numberInt":
		s, ok := val.(string)
		if !ok {
			return nil, wrapperError(key, doc)
		}
		i, err := strconv.ParseInt(s, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("extjson: %s: %w", key, err)
		}
		return int32(i), nil
	case "$numberLong":
		s, ok := val.(string)
		if !ok {
			return nil, wrapperError(key, doc)
		}
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("extjson: %s: %w", key, err)
		}
		return i, nil
	case "$numberDouble":
		s, ok := val.(string)
		if !ok {
			return nil, wrapperError(key, doc)
		}
		return parseDouble(s)
	case "$numberDecimal":
		s, ok := val.(string)
		if !ok {
			return nil, wrapperError(key, doc)
		}
		dec, err := bson.ParseDecimal128(s)
		if err != nil {
			return nil, fmt.Errorf("extjson: %s: %w", key, err)
		}
		return dec, nil
	case "$date":
		return parseDate(val, doc)
	case "$regularExpression":
		inner, ok := val.(bson.D)
		if !ok || len(inner) != 2 || inner[0].Key != "pattern" || inner[1].Key != "options" {
			return nil, wrapperError(key, doc)
		}
		pattern, pok := inner[0].Value.(string)
		options, ook := inner[1].Value.(string)
		if !pok || !ook {
			return nil, wrapperError(key, doc)
		}
		return bson.Regex{Pattern: pattern, Options: options}, nil
	case "$code":
		s, ok := val.(string)
		if !ok {
			return nil, wrapperError(key, doc)
		}
		return bson.Code{Code: s}, nil
	case "$symbol":
		s, ok := val.(string)
		if !ok {
			return nil, wrapperError(key, doc)
		}
		return bson.Symbol(s), nil
	case "$timestamp":
		return parseTimestamp(val, doc)
	case "$undefined":
		if b, ok := val.(bool); !ok || !b {
			return nil, wrapperError(key, doc)
		}
		return bson.Undefined{}, nil
	}
	return doc, nil
}

func parseDouble(s string) (interface{}, error) {
	switch s {
	case "NaN":
		return math.NaN(), nil
	case "Infinity":
		return math.Inf(1), nil
	case "-Infinity":
		return math.Inf(-1), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("extjson: $numberDouble: %w", err)
	}
	return f, nil
}

func parseDate(val interface{}, doc bson.D) (interface{}, error) {
	switch tv := val.(type) {
	case string:
		t, err := time.Parse(time.RFC3339Nano, tv)
		if err != nil {
			return nil, fmt.Errorf("extjson: $date: %w", err)
		}
		return bson.NewDateTimeFromTime(t), nil
	case int64:
		return bson.DateTime(tv), nil
	case int32:
		return bson.DateTime(tv), nil
	}
	return nil, wrapperError("$date", doc)
}

func parseTimestamp(val interface{}, doc bson.D) (interface{}, error) {
	inner, ok := val.(bson.D)
	if !ok || len(inner) != 2 || inner[0].Key != "t" || inner[1].Key != "i" {
		return nil, wrapperError("$timestamp", doc)
	}
	t, tok := uint32Value(inner[0].Value)
	i, iok := uint32Value(inner[1].Value)
	if !tok || !iok {
		return nil, wrapperError("$timestamp", doc)
	}
	return bson.Timestamp{T: t, I: i}, nil
}

func uint32Value(v interface{}) (uint32, bool) {
	var i64 int64
	switch tv := v.(type) {
	case int32:
		i64 = int64(tv)
	case int64:
		i64 = tv
	default:
		return 0, false
	}
	if i64 < 0 || i64 > math.MaxUint32 {
		return 0, false
	}
	return uint32(i64), true
}

func wrapperError(key string, doc bson.D) error {
	return fmt.Errorf("extjson: invalid %s wrapper: %v", key, doc)
}
