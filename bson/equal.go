// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"errors"
	"math"
)

var errStop = errors.New("stop")

// Equal reports whether a and b encode to the same value. Values are
// compared by wire type, so int(1) equals int32(1) but not float64(1).
// Documents are compared by order when both are D and as sets of fields
// otherwise. ObjectID and Decimal128 compare byte-wise and NaN doubles are
// equal to each other. Values with no wire type are never equal.
//
// Equal does not detect cycles.
func Equal(a, b interface{}) bool {
	ta, va, err := classify(a, false)
	if err != nil {
		return false
	}
	tb, vb, err := classify(b, false)
	if err != nil || ta != tb {
		return false
	}

	switch ta {
	case TypeNull, TypeUndefined:
		return true
	case TypeBoolean:
		return boolValue(va) == boolValue(vb)
	case TypeInt32, TypeInt64:
		return intValue(va) == intValue(vb)
	case TypeDouble:
		fa, fb := floatValue(va), floatValue(vb)
		return fa == fb || math.IsNaN(fa) && math.IsNaN(fb)
	case TypeDateTime:
		return dateValue(va) == dateValue(vb)
	case TypeString:
		return stringValue(va) == stringValue(vb)
	case TypeObjectID, TypeDecimal128, TypeTimestamp, TypeSymbol, TypeRegex:
		return va == vb
	case TypeJavaScript, TypeCodeWithScope:
		return va.(Code).Equal(vb.(Code))
	case TypeArray:
		return equalArrays(va, vb)
	case TypeEmbeddedDocument:
		return equalDocuments(va, vb)
	}
	return false
}

func equalArrays(a, b interface{}) bool {
	var elems []interface{}
	_ = rangeArray(b, func(_ int, val interface{}) error {
		elems = append(elems, val)
		return nil
	})

	n := 0
	equal := true
	_ = rangeArray(a, func(i int, val interface{}) error {
		n++
		if i >= len(elems) || !Equal(val, elems[i]) {
			equal = false
			return errStop
		}
		return nil
	})
	return equal && n == len(elems)
}

func equalDocuments(a, b interface{}) bool {
	da, aOrdered := a.(D)
	db, bOrdered := b.(D)
	if aOrdered && bOrdered {
		if len(da) != len(db) {
			return false
		}
		for i := range da {
			if da[i].Key != db[i].Key || !Equal(da[i].Value, db[i].Value) {
				return false
			}
		}
		return true
	}

	fields := make(map[string]interface{}, documentLen(b))
	_ = rangeDocument(b, func(key string, val interface{}) error {
		fields[key] = val
		return nil
	})
	if documentLen(a) != len(fields) {
		return false
	}

	equal := true
	_ = rangeDocument(a, func(key string, val interface{}) error {
		other, ok := fields[key]
		if !ok || !Equal(val, other) {
			equal = false
			return errStop
		}
		return nil
	})
	return equal
}
