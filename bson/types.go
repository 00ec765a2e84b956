// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import "github.com/ikmak/dbson/bson/internal/llbson"

// Type represents a wire type tag.
type Type byte

// String returns the string representation of the type's name.
func (bt Type) String() string {
	return llbson.Type(bt).String()
}

// IsValid will return true if the Type has a reader and a writer. Binary,
// MinKey and MaxKey are reserved in the tag space but have neither.
func (bt Type) IsValid() bool {
	switch bt {
	case TypeDouble, TypeString, TypeEmbeddedDocument, TypeArray,
		TypeUndefined, TypeObjectID, TypeBoolean, TypeDateTime, TypeNull, TypeRegex,
		TypeJavaScript, TypeSymbol, TypeCodeWithScope, TypeInt32,
		TypeTimestamp, TypeInt64, TypeDecimal128:
		return true
	default:
		return false
	}
}

// IsReserved will return true for tags that are part of the tag space but
// cannot be encoded or decoded.
func (bt Type) IsReserved() bool {
	switch bt {
	case TypeBinary, TypeMinKey, TypeMaxKey:
		return true
	default:
		return false
	}
}

// Wire type tags.
const (
	TypeDouble           = Type(llbson.TypeDouble)
	TypeString           = Type(llbson.TypeString)
	TypeEmbeddedDocument = Type(llbson.TypeEmbeddedDocument)
	TypeArray            = Type(llbson.TypeArray)
	TypeBinary           = Type(llbson.TypeBinary)
	TypeUndefined        = Type(llbson.TypeUndefined)
	TypeObjectID         = Type(llbson.TypeObjectID)
	TypeBoolean          = Type(llbson.TypeBoolean)
	TypeDateTime         = Type(llbson.TypeDateTime)
	TypeNull             = Type(llbson.TypeNull)
	TypeRegex            = Type(llbson.TypeRegex)
	TypeJavaScript       = Type(llbson.TypeJavaScript)
	TypeSymbol           = Type(llbson.TypeSymbol)
	TypeCodeWithScope    = Type(llbson.TypeCodeWithScope)
	TypeInt32            = Type(llbson.TypeInt32)
	TypeTimestamp        = Type(llbson.TypeTimestamp)
	TypeInt64            = Type(llbson.TypeInt64)
	TypeDecimal128       = Type(llbson.TypeDecimal128)
	TypeMaxKey           = Type(llbson.TypeMaxKey)
	TypeMinKey           = Type(llbson.TypeMinKey)
)
