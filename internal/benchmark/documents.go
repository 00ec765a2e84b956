// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package benchmark

import (
	"fmt"
	"math"
	"time"

	"github.com/ikmak/dbson/bson"
)

const (
	flatFields = 145
	deepLevels = 50
)

var fixtureEpoch = time.Date(2018, time.November, 28, 12, 0, 0, 0, time.UTC)

// FlatDocument returns a single-level document of scalar fields.
func FlatDocument() bson.D {
	doc := make(bson.D, 0, flatFields)
	for i := 0; i < flatFields; i++ {
		key := fmt.Sprintf("field%03d", i)
		var val interface{}
		switch i % 8 {
		case 0:
			val = fmt.Sprintf("value %d of a flat document", i)
		case 1:
			val = int32(i * 1000)
		case 2:
			val = int64(i) << 40
		case 3:
			val = float64(i) + 0.25
		case 4:
			val = i%3 == 0
		case 5:
			val = bson.NewDateTimeFromTime(fixtureEpoch.Add(time.Duration(i) * time.Hour))
		case 6:
			val = bson.NewObjectIDFromTimestamp(fixtureEpoch)
		default:
			val = nil
		}
		doc = append(doc, bson.E{Key: key, Value: val})
	}
	return doc
}

// DeepDocument returns a chain of nested documents, each level holding a
// counter, a label and an array.
func DeepDocument() bson.D {
	var child interface{} = "leaf"
	for i := deepLevels; i > 0; i-- {
		child = bson.D{
			{Key: "level", Value: int32(i)},
			{Key: "label", Value: fmt.Sprintf("level-%d", i)},
			{Key: "items", Value: bson.A{int32(i), float64(i) / 2, "x"}},
			{Key: "child", Value: child},
		}
	}
	return child.(bson.D)
}

// FullDocument returns a document holding every encodable wire type.
func FullDocument() bson.D {
	dec, _ := bson.ParseDecimal128("1234567890.123456789")
	return bson.D{
		{Key: "double", Value: 3.14159},
		{Key: "nan", Value: math.NaN()},
		{Key: "string", Value: "unicode ☃ text"},
		{Key: "document", Value: bson.D{{Key: "a", Value: int32(1)}, {Key: "b", Value: "two"}}},
		{Key: "array", Value: bson.A{int32(1), "two", 3.0, bson.A{}}},
		{Key: "undefined", Value: bson.Undefined{}},
		{Key: "oid", Value: bson.NewObjectIDFromTimestamp(fixtureEpoch)},
		{Key: "bool", Value: true},
		{Key: "date", Value: bson.NewDateTimeFromTime(fixtureEpoch)},
		{Key: "null", Value: nil},
		{Key: "regex", Value: bson.Regex{Pattern: "^ab+c$", Options: "im"}},
		{Key: "code", Value: bson.Code{Code: "function() { return 1; }"}},
		{Key: "symbol", Value: bson.Symbol("sym")},
		{Key: "scoped", Value: bson.Code{Code: "x + y", Scope: bson.D{{Key: "x", Value: int32(1)}, {Key: "y", Value: int32(2)}}}},
		{Key: "int32", Value: int32(-42)},
		{Key: "timestamp", Value: bson.NewTimestamp(7, 1543406400)},
		{Key: "int64", Value: int64(math.MaxInt64)},
		{Key: "decimal", Value: dec},
	}
}

func fixtureSize(doc bson.D) int {
	b, err := bson.Serialize(doc)
	if err != nil {
		return -1
	}
	return len(b)
}

func flatDocumentSize() int { return fixtureSize(FlatDocument()) }
func deepDocumentSize() int { return fixtureSize(DeepDocument()) }
func fullDocumentSize() int { return fixtureSize(FullDocument()) }
