// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package internal

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type layer struct {
	msg   string
	inner error
}

func (l *layer) Message() string { return l.msg }
func (l *layer) Inner() error    { return l.inner }
func (l *layer) Error() string   { return RolledUpErrorMessage(l) }
func (l *layer) Unwrap() error   { return l.inner }

func TestWrappedErrors(t *testing.T) {
	root := errors.New("root cause")

	testCases := []struct {
		name      string
		err       error
		message   string
		innermost error
	}{
		{"plain", root, "root cause", root},
		{"wrapped", &layer{"reading input", root}, "reading input: root cause", root},
		{
			"wrapped twice",
			&layer{"file a.dbson", &layer{"inner", root}},
			"file a.dbson: inner: root cause",
			root,
		},
		{"no inner", &layer{"alone", nil}, "alone", nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.message, tc.err.Error())
			assert.Equal(t, tc.message, RolledUpErrorMessage(tc.err))

			innermost := InnermostError(tc.err)
			if tc.innermost == nil {
				assert.Equal(t, tc.err, innermost)
				return
			}
			assert.Equal(t, tc.innermost, innermost)
			assert.True(t, errors.Is(tc.err, root))
		})
	}
}
