// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package extjson converts value trees to and from Extended JSON v2.
//
// Relaxed output renders numbers and in-range dates natively; canonical
// output wraps every number and date so that the wire type survives a round
// trip.
package extjson

import (
	"fmt"
	"math"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/ikmak/dbson/bson"
)

// maxRelaxedDate is 9999-12-31T23:59:59.999Z in milliseconds.
const maxRelaxedDate = 253402300799999

// Marshal renders v as Extended JSON. v is first normalized through the
// codec, so the output shows the value exactly as it would be decoded from
// the wire. opts apply to that normalization.
func Marshal(v interface{}, canonical bool, opts ...*bson.Options) ([]byte, error) {
	raw, err := bson.Serialize(v, opts...)
	if err != nil {
		return nil, err
	}
	tree, err := bson.Deserialize(raw, opts...)
	if err != nil {
		return nil, err
	}
	return MarshalTree(tree, canonical)
}

// MarshalTree renders a decoded tree as Extended JSON without passing it
// through the codec. It accepts the types the decoder produces.
func MarshalTree(tree interface{}, canonical bool) ([]byte, error) {
	e := encoder{canonical: canonical}
	return e.appendValue(nil, tree)
}

type encoder struct {
	canonical bool
}

func (e encoder) appendValue(dst []byte, v interface{}) ([]byte, error) {
	switch tv := v.(type) {
	case nil:
		return append(dst, "null"...), nil
	case bool:
		return strconv.AppendBool(dst, tv), nil
	case string:
		return appendString(dst, tv)
	case int32:
		if e.canonical {
			return appendWrapped(dst, "$numberInt", strconv.FormatInt(int64(tv), 10))
		}
		return strconv.AppendInt(dst, int64(tv), 10), nil
	case int64:
		if e.canonical {
			return appendWrapped(dst, "$numberLong", strconv.FormatInt(tv, 10))
		}
		return strconv.AppendInt(dst, tv, 10), nil
	case float64:
		return e.appendDouble(dst, tv)
	case bson.Decimal128:
		return appendWrapped(dst, "$numberDecimal", tv.String())
	case bson.ObjectID:
		return appendWrapped(dst, "$oid", tv.Hex())
	case bson.DateTime:
		return e.appendDate(dst, tv)
	case bson.Symbol:
		return appendWrapped(dst, "$symbol", string(tv))
	case bson.Undefined:
		return append(dst, `{"$undefined":true}`...), nil
	case bson.Timestamp:
		dst = append(dst, `{"$timestamp":{"t":`...)
		dst = strconv.AppendUint(dst, uint64(tv.T), 10)
		dst = append(dst, `,"i":`...)
		dst = strconv.AppendUint(dst, uint64(tv.I), 10)
		return append(dst, "}}"...), nil
	case bson.Regex:
		var err error
		dst = append(dst, `{"$regularExpression":{"pattern":`...)
		if dst, err = appendString(dst, tv.Pattern); err != nil {
			return nil, err
		}
		dst = append(dst, `,"options":`...)
		if dst, err = appendString(dst, tv.Options); err != nil {
			return nil, err
		}
		return append(dst, "}}"...), nil
	case bson.Code:
		var err error
		dst = append(dst, `{"$code":`...)
		if dst, err = appendString(dst, tv.Code); err != nil {
			return nil, err
		}
		if tv.HasScope() {
			dst = append(dst, `,"$scope":`...)
			if dst, err = e.appendDocument(dst, tv.Scope); err != nil {
				return nil, err
			}
		}
		return append(dst, '}'), nil
	case bson.D:
		return e.appendDocument(dst, tv)
	case bson.A:
		var err error
		dst = append(dst, '[')
		for i, elem := range tv {
			if i > 0 {
				dst = append(dst, ',')
			}
			if dst, err = e.appendValue(dst, elem); err != nil {
				return nil, err
			}
		}
		return append(dst, ']'), nil
	}
	return nil, fmt.Errorf("extjson: cannot render value of type %T", v)
}

func (e encoder) appendDocument(dst []byte, doc bson.D) ([]byte, error) {
	var err error
	dst = append(dst, '{')
	for i, elem := range doc {
		if i > 0 {
			dst = append(dst, ',')
		}
		if dst, err = appendString(dst, elem.Key); err != nil {
			return nil, err
		}
		dst = append(dst, ':')
		if dst, err = e.appendValue(dst, elem.Value); err != nil {
			return nil, err
		}
	}
	return append(dst, '}'), nil
}

func (e encoder) appendDouble(dst []byte, f float64) ([]byte, error) {
	switch {
	case math.IsNaN(f):
		return appendWrapped(dst, "$numberDouble", "NaN")
	case math.IsInf(f, 1):
		return appendWrapped(dst, "$numberDouble", "Infinity")
	case math.IsInf(f, -1):
		return appendWrapped(dst, "$numberDouble", "-Infinity")
	}
	if e.canonical {
		return appendWrapped(dst, "$numberDouble", formatDouble(f))
	}
	return append(dst, formatDouble(f)...), nil
}

func (e encoder) appendDate(dst []byte, d bson.DateTime) ([]byte, error) {
	if e.canonical || d < 0 || d > maxRelaxedDate {
		dst = append(dst, `{"$date":{"$numberLong":"`...)
		dst = strconv.AppendInt(dst, int64(d), 10)
		return append(dst, `"}}`...), nil
	}
	return appendWrapped(dst, "$date", d.String())
}

// formatDouble keeps a decimal point on integral values so that they read
// back as doubles.
func formatDouble(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64) + ".0"
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func appendWrapped(dst []byte, key, val string) ([]byte, error) {
	var err error
	dst = append(dst, `{"`...)
	dst = append(dst, key...)
	dst = append(dst, `":`...)
	if dst, err = appendString(dst, val); err != nil {
		return nil, err
	}
	return append(dst, '}'), nil
}

func appendString(dst []byte, s string) ([]byte, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return append(dst, b...), nil
}
