// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package internal holds helpers shared by the codec packages.
package internal

import "fmt"

// WrappedError represents an error that contains another error.
type WrappedError interface {
	// Message gets the basic message of the error.
	Message() string
	// Inner gets the inner error if one exists.
	Inner() error
}

// RolledUpErrorMessage gets a flattened error message. Each wrapped layer
// contributes its own message, separated by ": ".
func RolledUpErrorMessage(err error) string {
	if wrappedErr, ok := err.(WrappedError); ok {
		inner := wrappedErr.Inner()
		if inner != nil {
			return fmt.Sprintf("%s: %s", wrappedErr.Message(), RolledUpErrorMessage(inner))
		}

		return wrappedErr.Message()
	}

	return err.Error()
}

// InnermostError follows Inner until it reaches an error that does not wrap
// another one.
func InnermostError(err error) error {
	for {
		wrappedErr, ok := err.(WrappedError)
		if !ok || wrappedErr.Inner() == nil {
			return err
		}
		err = wrappedErr.Inner()
	}
}
