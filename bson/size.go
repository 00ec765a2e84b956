// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

// sizer computes the exact number of bytes the writer produces for a value.
// It mirrors the writer's layout so the two can be checked against each
// other.
type sizer struct {
	integerFloats bool
}

// rootSize returns the size of the whole output, including the root tag byte
// unless the root is written as a bare document.
func (s sizer) rootSize(v interface{}, standardRoot bool) (int, error) {
	t, rv, err := classify(v, s.integerFloats)
	if err != nil {
		return 0, err
	}
	n, err := s.payloadSize(t, rv)
	if err != nil {
		return 0, err
	}
	if standardRoot {
		return n, nil
	}
	return 1 + n, nil
}

// payloadSize returns the size of a value without its tag byte and key.
func (s sizer) payloadSize(t Type, v interface{}) (int, error) {
	switch t {
	case TypeNull, TypeUndefined:
		return 0, nil
	case TypeBoolean:
		return 1, nil
	case TypeInt32:
		return 4, nil
	case TypeInt64, TypeDateTime, TypeDouble, TypeTimestamp:
		return 8, nil
	case TypeObjectID:
		return 12, nil
	case TypeDecimal128:
		return 16, nil
	case TypeString:
		return 4 + len(stringValue(v)) + 1, nil
	case TypeSymbol:
		return 4 + len(v.(Symbol)) + 1, nil
	case TypeJavaScript:
		return 4 + len(v.(Code).Code) + 1, nil
	case TypeRegex:
		re := v.(Regex)
		return len(re.Pattern) + 1 + len(re.Options) + 1, nil
	case TypeCodeWithScope:
		c := v.(Code)
		scope, err := s.documentSize(c.Scope)
		if err != nil {
			return 0, err
		}
		return 4 + 4 + len(c.Code) + 1 + scope, nil
	case TypeEmbeddedDocument:
		return s.documentSize(v)
	case TypeArray:
		return s.arraySize(v)
	}
	return 0, newError(CodeInvalidType, "", "no writer for %s", t)
}

func (s sizer) elementSize(keyLen int, val interface{}) (int, error) {
	t, rv, err := classify(val, s.integerFloats)
	if err != nil {
		return 0, err
	}
	n, err := s.payloadSize(t, rv)
	if err != nil {
		return 0, err
	}
	return 1 + keyLen + 1 + n, nil
}

func (s sizer) documentSize(doc interface{}) (int, error) {
	total := 4 + 1
	err := rangeDocument(doc, func(key string, val interface{}) error {
		n, err := s.elementSize(len(key), val)
		total += n
		return err
	})
	return total, err
}

func (s sizer) arraySize(arr interface{}) (int, error) {
	total := 4 + 1
	err := rangeArray(arr, func(i int, val interface{}) error {
		n, err := s.elementSize(indexKeyLen(i), val)
		total += n
		return err
	})
	return total, err
}

// indexKeyLen returns len(strconv.Itoa(i)) for i >= 0.
func indexKeyLen(i int) int {
	n := 1
	for i >= 10 {
		i /= 10
		n++
	}
	return n
}
