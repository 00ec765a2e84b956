// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package benchmark

import (
	"fmt"
	"time"

	"github.com/montanaflynn/stats"
)

// BenchResult collects the trials of a single case.
type BenchResult struct {
	Name       string
	Trials     int
	Duration   time.Duration
	Raw        []Result
	DataSize   int
	Operations int
	hasErrors  *bool
}

// Summary holds per-operation timings computed over the trials of a case.
type Summary struct {
	Name         string        `json:"name"`
	Trials       int           `json:"trials"`
	Median       time.Duration `json:"median"`
	Min          time.Duration `json:"min"`
	Max          time.Duration `json:"max"`
	P90          time.Duration `json:"p90"`
	OpsPerSecond float64       `json:"ops_per_second"`
	MBPerSecond  float64       `json:"mb_per_second,omitempty"`
}

// Summarize computes the median, min, max and 90th percentile of the
// per-operation durations of the successful trials.
func (r *BenchResult) Summarize() (Summary, error) {
	timings := r.timings()

	median, err := stats.Median(timings)
	if err != nil {
		return Summary{}, err
	}

	min, err := stats.Min(timings)
	if err != nil {
		return Summary{}, err
	}

	max, err := stats.Max(timings)
	if err != nil {
		return Summary{}, err
	}

	p90, err := stats.Percentile(timings, 90)
	if err != nil {
		return Summary{}, err
	}

	out := Summary{
		Name:         r.Name,
		Trials:       r.Trials,
		Median:       secondsToDuration(median),
		Min:          secondsToDuration(min),
		Max:          secondsToDuration(max),
		P90:          secondsToDuration(p90),
		OpsPerSecond: r.getThroughput(median),
	}
	if r.DataSize > 0 {
		out.MBPerSecond = r.adjustResults(median) / 1e6
	}

	return out, nil
}

// timings returns the per-operation duration, in seconds, of every trial
// that did not fail.
func (r *BenchResult) timings() []float64 {
	out := []float64{}
	for _, res := range r.Raw {
		if res.Error != nil || res.Iterations <= 0 {
			continue
		}
		out = append(out, res.Duration.Seconds()/float64(res.Iterations))
	}
	return out
}

func (r *BenchResult) adjustResults(data float64) float64 {
	if r.Operations <= 0 {
		return 0
	}
	return float64(r.DataSize) / float64(r.Operations) / data
}
func (r *BenchResult) getThroughput(data float64) float64 { return 1 / data }
func (r *BenchResult) roundedRuntime() time.Duration      { return roundDurationMS(r.Duration) }

func (r *BenchResult) String() string {
	return fmt.Sprintf("name=%s, trials=%d, secs=%s", r.Name, r.Trials, r.roundedRuntime())
}

// HasErrors reports whether any trial failed.
func (r *BenchResult) HasErrors() bool {
	if r.hasErrors == nil {
		var val bool
		for _, res := range r.Raw {
			if res.Error != nil {
				val = true
				break
			}
		}
		r.hasErrors = &val
	}

	return *r.hasErrors
}

// ErrReport returns the messages of the failed trials.
func (r *BenchResult) ErrReport() []string {
	errs := []string{}
	for _, res := range r.Raw {
		if res.Error != nil {
			errs = append(errs, res.Error.Error())
		}
	}
	return errs
}

// Result is a single trial.
type Result struct {
	Duration   time.Duration
	Iterations int
	Error      error
}

func (s Summary) String() string {
	return fmt.Sprintf("%-28s trials=%-5d median=%-10s min=%-10s max=%-10s p90=%-10s ops/s=%.0f",
		s.Name, s.Trials, s.Median, s.Min, s.Max, s.P90, s.OpsPerSecond)
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func roundDurationMS(d time.Duration) time.Duration {
	rounded := d.Round(time.Millisecond)
	if rounded == 1<<63-1 {
		return 0
	}
	return rounded
}
