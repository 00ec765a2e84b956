// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package benchmark

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ikmak/dbson/bson"
)

func BenchmarkCanaryInc(b *testing.B)            { WrapCase(CanaryIncCase)(b) }
func BenchmarkFlatDocumentEncoding(b *testing.B) { WrapCase(FlatDocumentEncoding)(b) }
func BenchmarkFlatDocumentDecoding(b *testing.B) { WrapCase(FlatDocumentDecoding)(b) }
func BenchmarkDeepDocumentEncoding(b *testing.B) { WrapCase(DeepDocumentEncoding)(b) }
func BenchmarkDeepDocumentDecoding(b *testing.B) { WrapCase(DeepDocumentDecoding)(b) }
func BenchmarkFullDocumentEncoding(b *testing.B) { WrapCase(FullDocumentEncoding)(b) }
func BenchmarkFullDocumentDecoding(b *testing.B) { WrapCase(FullDocumentDecoding)(b) }
func BenchmarkParallelRoundTrip(b *testing.B)    { WrapCase(ParallelRoundTrip)(b) }

func TestAllCasesRun(t *testing.T) {
	for _, c := range AllCases() {
		c := c
		t.Run(c.Name(), func(t *testing.T) {
			c.Count = ten
			c.Runtime = 0
			c.MinTrials = 2

			var buf bytes.Buffer
			res := c.Run(context.Background(), &buf)

			require.False(t, res.HasErrors(), "errors: %v", res.ErrReport())
			assert.Equal(t, 2, res.Trials)
			assert.Len(t, res.Raw, 2)
			assert.Contains(t, buf.String(), "=== RUN "+c.Name())
			assert.Contains(t, buf.String(), "--- PASS: "+c.Name())

			summary, err := res.Summarize()
			require.NoError(t, err)
			assert.Equal(t, c.Name(), summary.Name)
			assert.True(t, summary.Min <= summary.Median && summary.Median <= summary.Max)
		})
	}
}

func TestFixtures(t *testing.T) {
	testCases := []struct {
		name string
		doc  bson.D
	}{
		{"flat", FlatDocument()},
		{"deep", DeepDocument()},
		{"full", FullDocument()},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			raw, err := bson.Serialize(tc.doc)
			require.NoError(t, err)
			out, err := bson.Deserialize(raw)
			require.NoError(t, err)
			assert.True(t, bson.Equal(tc.doc, out))
			assert.Equal(t, len(raw), fixtureSize(tc.doc))
		})
	}
}

func TestCaseNames(t *testing.T) {
	assert.Equal(t, "FlatDocumentEncoding", getName(BenchCase(FlatDocumentEncoding)))
	assert.Equal(t, "CanaryIncCase", (&CaseDefinition{Bench: CanaryIncCase}).Name())
}

func TestSummarize(t *testing.T) {
	res := &BenchResult{
		Name:       "case",
		Trials:     5,
		DataSize:   10 * 1000,
		Operations: 10,
		Raw: []Result{
			{Duration: 10 * time.Millisecond, Iterations: 10},
			{Duration: 20 * time.Millisecond, Iterations: 10},
			{Duration: 30 * time.Millisecond, Iterations: 10},
			{Duration: 40 * time.Millisecond, Iterations: 10},
			{Duration: time.Second, Iterations: 10, Error: errors.New("boom")},
		},
	}

	assert.True(t, res.HasErrors())
	assert.Equal(t, []string{"boom"}, res.ErrReport())

	s, err := res.Summarize()
	require.NoError(t, err)
	assert.InDelta(t, float64(time.Millisecond), float64(s.Min), float64(time.Microsecond))
	assert.InDelta(t, float64(4*time.Millisecond), float64(s.Max), float64(time.Microsecond))
	assert.InDelta(t, float64(2500*time.Microsecond), float64(s.Median), float64(time.Microsecond))
	assert.InDelta(t, 400, s.OpsPerSecond, 1)
	assert.InDelta(t, 0.4, s.MBPerSecond, 0.001)
}

func TestSummarizeNoTrials(t *testing.T) {
	_, err := (&BenchResult{Name: "empty"}).Summarize()
	assert.Error(t, err)
}

func TestTrialTimer(t *testing.T) {
	tm := &trialTimer{}
	tm.ResetTimer()
	tm.StopTimer()
	stopped := tm.total
	time.Sleep(5 * time.Millisecond)
	tm.StopTimer()
	assert.Equal(t, stopped, tm.total)
	tm.StartTimer()
	assert.True(t, tm.elapsed() >= stopped)
}
