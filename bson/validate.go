// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"reflect"
	"strconv"
	"strings"
)

// operatorKeys are the only $-prefixed keys a document may contain.
var operatorKeys = map[string]struct{}{
	"$eq": {}, "$gt": {}, "$gte": {}, "$in": {}, "$lt": {}, "$lte": {}, "$ne": {}, "$nin": {},
	"$and": {}, "$not": {}, "$nor": {}, "$or": {},
	"$exists": {}, "$type": {}, "$mod": {}, "$regex": {}, "$text": {}, "$where": {},
}

// path is the location of a value in a tree. It is a linked list from the
// value back to the root and is only rendered when an error is reported.
type path struct {
	parent  *path
	key     string
	index   int
	isIndex bool
}

func (p *path) field(key string) *path { return &path{parent: p, key: key} }

func (p *path) element(i int) *path { return &path{parent: p, index: i, isIndex: true} }

// String renders the path: "" for the root, ".key" for a field and "[i]" for
// an array element. A leading field has no dot.
func (p *path) String() string {
	if p == nil {
		return ""
	}
	var nodes []*path
	for n := p; n != nil; n = n.parent {
		nodes = append(nodes, n)
	}

	var sb strings.Builder
	for i := len(nodes) - 1; i >= 0; i-- {
		n := nodes[i]
		switch {
		case n.isIndex:
			sb.WriteByte('[')
			sb.WriteString(strconv.Itoa(n.index))
			sb.WriteByte(']')
		case sb.Len() == 0:
			sb.WriteString(n.key)
		default:
			sb.WriteByte('.')
			sb.WriteString(n.key)
		}
	}
	return sb.String()
}

// identity names a composite by the memory it refers to. A slice also
// carries its length, so a shorter slice of the same backing array is a
// different value.
type identity struct {
	t reflect.Type
	p uintptr
	n int
}

// validator walks a tree before anything is written. It holds the set of
// composites on the path from the root to the current value; entries are
// removed on the way back up so siblings sharing a value do not collide.
type validator struct {
	maxDepth      int
	integerFloats bool
	onPath        map[identity]struct{}
}

func newValidator(cfg config) *validator {
	return &validator{
		maxDepth:      cfg.maxDepth,
		integerFloats: cfg.integerFloats,
		onPath:        make(map[identity]struct{}),
	}
}

func (vr *validator) validate(v interface{}, p *path, depth int) error {
	leave, err := vr.enter(v, p)
	if err != nil {
		return err
	}
	defer leave()

	t, rv, cerr := classify(v, vr.integerFloats)
	if cerr != nil {
		cerr.(*Error).Path = p.String()
		return cerr
	}

	switch t {
	case TypeEmbeddedDocument:
		return vr.validateDocument(rv, p, depth+1)
	case TypeArray:
		if depth+1 > vr.maxDepth {
			return newError(CodeMaxDepthExceeded, p.String(), "nesting exceeds max depth %d", vr.maxDepth)
		}
		return rangeArray(rv, func(i int, val interface{}) error {
			return vr.validate(val, p.element(i), depth+1)
		})
	case TypeCodeWithScope:
		scope, sp := rv.(Code).Scope, p.field("scope")
		leaveScope, err := vr.enter(scope, sp)
		if err != nil {
			return err
		}
		defer leaveScope()
		return vr.validateDocument(scope, sp, depth+1)
	case TypeRegex:
		re := rv.(Regex)
		if strings.IndexByte(re.Pattern, 0) >= 0 || strings.IndexByte(re.Options, 0) >= 0 {
			return newError(CodeInvalidType, p.String(), "regex pattern and options cannot contain a NUL byte")
		}
	}

	return nil
}

// enter records v as being on the current path. The returned func removes it.
func (vr *validator) enter(v interface{}, p *path) (func(), error) {
	id, ok := identityOf(v)
	if !ok {
		return func() {}, nil
	}
	if _, seen := vr.onPath[id]; seen {
		return nil, newError(CodeCircularReference, p.String(), "circular reference")
	}
	vr.onPath[id] = struct{}{}
	return func() { delete(vr.onPath, id) }, nil
}

func (vr *validator) validateDocument(doc interface{}, p *path, depth int) error {
	if depth > vr.maxDepth {
		return newError(CodeMaxDepthExceeded, p.String(), "nesting exceeds max depth %d", vr.maxDepth)
	}
	return rangeDocument(doc, func(key string, val interface{}) error {
		fp := p.field(key)
		if err := validateKey(key); err != nil {
			err.Path = fp.String()
			return err
		}
		return vr.validate(val, fp, depth)
	})
}

func validateKey(key string) *Error {
	switch {
	case strings.IndexByte(key, 0) >= 0:
		return newError(CodeInvalidKey, "", "key %q contains a NUL byte", key)
	case strings.IndexByte(key, '.') >= 0:
		return newError(CodeInvalidKey, "", "key %q contains a '.'", key)
	case strings.HasPrefix(key, "$"):
		if _, ok := operatorKeys[key]; !ok {
			return newError(CodeInvalidKey, "", "key %q starts with '$' and is not an allowed operator", key)
		}
	}
	return nil
}

// identityOf returns the identity of composites that can contain themselves:
// non-empty slices, non-empty maps and non-nil pointers.
func identityOf(v interface{}) (identity, bool) {
	if v == nil {
		return identity{}, false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice:
		if rv.Len() == 0 {
			return identity{}, false
		}
		return identity{t: rv.Type(), p: rv.Pointer(), n: rv.Len()}, true
	case reflect.Map:
		if rv.Len() == 0 {
			return identity{}, false
		}
	case reflect.Ptr:
		if rv.IsNil() {
			return identity{}, false
		}
	default:
		return identity{}, false
	}
	return identity{t: rv.Type(), p: rv.Pointer()}, true
}
