// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package benchmark runs timed encode and decode cases against the codec.
// The same cases back the package's testing.B benchmarks and the
// `dbson bench` command.
package benchmark

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const (
	ExecutionTimeout = 5 * time.Minute
	StandardRuntime  = 10 * time.Second
	MinimumRuntime   = time.Second
	MinIterations    = 10

	ten         = 10
	hundred     = ten * ten
	thousand    = ten * hundred
	tenThousand = ten * thousand
)

// TimerManager is the part of *testing.B a case needs to exclude its setup
// from the measurement.
type TimerManager interface {
	ResetTimer()
	StartTimer()
	StopTimer()
}

type BenchCase func(context.Context, TimerManager, int) error
type BenchFunction func(*testing.B)

// WrapCase adapts a case to a testing.B benchmark.
func WrapCase(bench BenchCase) BenchFunction {
	name := getName(bench)
	return func(b *testing.B) {
		ctx := context.Background()
		b.ReportAllocs()
		b.ResetTimer()
		err := bench(ctx, b, b.N)
		require.NoError(b, err, "case='%s'", name)
	}
}

// AllCases returns the standard case definitions.
func AllCases() []*CaseDefinition {
	return []*CaseDefinition{
		{
			Bench:   CanaryIncCase,
			Count:   hundred,
			Size:    -1,
			Runtime: MinimumRuntime,
		},
		{
			Bench:   FlatDocumentEncoding,
			Count:   thousand,
			Size:    thousand * flatDocumentSize(),
			Runtime: StandardRuntime,
		},
		{
			Bench:   FlatDocumentDecoding,
			Count:   thousand,
			Size:    thousand * flatDocumentSize(),
			Runtime: StandardRuntime,
		},
		{
			Bench:   DeepDocumentEncoding,
			Count:   thousand,
			Size:    thousand * deepDocumentSize(),
			Runtime: StandardRuntime,
		},
		{
			Bench:   DeepDocumentDecoding,
			Count:   thousand,
			Size:    thousand * deepDocumentSize(),
			Runtime: StandardRuntime,
		},
		{
			Bench:   FullDocumentEncoding,
			Count:   thousand,
			Size:    thousand * fullDocumentSize(),
			Runtime: StandardRuntime,
		},
		{
			Bench:   FullDocumentDecoding,
			Count:   thousand,
			Size:    thousand * fullDocumentSize(),
			Runtime: StandardRuntime,
		},
		{
			Bench:   ParallelRoundTrip,
			Count:   thousand,
			Size:    thousand * flatDocumentSize(),
			Runtime: StandardRuntime,
		},
	}
}
