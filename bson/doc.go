// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package bson is a codec for a BSON-like binary document format. It turns a
// tree of Go values into a compact, length prefixed byte encoding and back.
//
// Trees are built from native Go types and the wrapper types of this package.
// D is an ordered document, M an unordered one and A an array:
//
//	b, err := bson.Serialize(bson.D{{"a", 1}})
//	if err != nil { return err }
//	// b is 03 0c000000 10 6100 01000000 00
//
//	v, err := bson.Deserialize(b)
//	if err != nil { return err }
//	// v is bson.D{{"a", int32(1)}}
//
// Every value, including the root, starts with a one byte type tag. Setting
// Options.StandardRoot writes the root as a bare document instead, which is
// the framing used by conventional BSON.
//
// The default mappings for Go types are:
//
//  1. nil, Null, and nil pointers, maps and slices encode as null and decode as nil.
//  2. Integer kinds encode as a 32-bit integer when the value fits and a 64-bit
//     integer otherwise. They decode as int32 or int64.
//  3. Float kinds encode as a double and decode as float64. With
//     Options.IntegerFloats, integral floats encode as integers.
//  4. string encodes as a string, Symbol as a symbol.
//  5. time.Time and DateTime encode as a UTC datetime and decode as DateTime.
//  6. D, M and maps with string keys encode as documents and decode as D. Map
//     keys are written in sorted order.
//  7. A and other slices and arrays encode as arrays and decode as A.
//  8. ObjectID, Timestamp, Regex, Code and Decimal128 encode as their wire types.
//     A Code with a non-nil Scope encodes as code with scope.
//  9. Binary, []byte, MinKey and MaxKey are reserved and fail with ErrInvalidType.
//
// Before writing, Serialize rejects trees that contain themselves, nest deeper
// than Options.MaxDepth, or hold keys containing a NUL byte, a '.', or a
// leading '$' that is not one of a fixed set of query operators.
package bson
