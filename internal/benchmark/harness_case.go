// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package benchmark

import (
	"context"
	"fmt"
	"io"
	"reflect"
	"runtime"
	"strings"
	"time"
)

// CaseDefinition describes how a case is run: Count operations per trial,
// repeated until Runtime has elapsed and at least MinTrials trials ran.
type CaseDefinition struct {
	Bench     BenchCase
	Count     int
	Size      int
	Runtime   time.Duration
	MinTrials int

	startAt time.Time
}

// Run executes the case, writing progress lines to w.
func (c *CaseDefinition) Run(ctx context.Context, w io.Writer) *BenchResult {
	out := &BenchResult{
		DataSize:   c.Size,
		Name:       c.Name(),
		Operations: c.Count,
	}
	minTrials := c.MinTrials
	if minTrials <= 0 {
		minTrials = MinIterations
	}

	var cancel context.CancelFunc
	ctx, cancel = context.WithTimeout(ctx, ExecutionTimeout)
	defer cancel()

	fmt.Fprintln(w, "=== RUN", out.Name)
	c.startAt = time.Now()
	for {
		if time.Since(c.startAt) > c.Runtime && out.Trials >= minTrials {
			break
		}
		if ctx.Err() != nil {
			break
		}

		res := Result{
			Iterations: c.Count,
		}
		tm := &trialTimer{}
		tm.ResetTimer()
		res.Error = c.Bench(ctx, tm, c.Count)
		res.Duration = tm.elapsed()

		if res.Error == context.Canceled {
			break
		}

		out.Trials++
		out.Raw = append(out.Raw, res)
	}
	out.Duration = time.Since(c.startAt)
	if out.HasErrors() {
		fmt.Fprintf(w, "--- FAIL: %s (%s)\n", out.Name, out.roundedRuntime())
	} else {
		fmt.Fprintf(w, "--- PASS: %s (%s)\n", out.Name, out.roundedRuntime())
	}

	return out
}

func (c *CaseDefinition) String() string {
	return fmt.Sprintf("name=%s, count=%d, runtime=%s timeout=%s",
		c.Name(), c.Count, c.Runtime, ExecutionTimeout)
}

func (c *CaseDefinition) Name() string { return getName(c.Bench) }

func getName(i interface{}) string {
	n := runtime.FuncForPC(reflect.ValueOf(i).Pointer()).Name()
	parts := strings.Split(n, ".")
	if len(parts) > 1 {
		return parts[len(parts)-1]
	}

	return n
}

// trialTimer is the TimerManager used outside of testing.B.
type trialTimer struct {
	start   time.Time
	total   time.Duration
	running bool
}

func (t *trialTimer) ResetTimer() {
	t.total = 0
	t.start = time.Now()
	t.running = true
}

func (t *trialTimer) StartTimer() {
	if !t.running {
		t.start = time.Now()
		t.running = true
	}
}

func (t *trialTimer) StopTimer() {
	if t.running {
		t.total += time.Since(t.start)
		t.running = false
	}
}

func (t *trialTimer) elapsed() time.Duration {
	t.StopTimer()
	return t.total
}
