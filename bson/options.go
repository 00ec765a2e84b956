// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package bson

import (
	"sync"

	"github.com/ikmak/dbson/internal/logger"
)

// DefaultMaxDepth is the nesting limit used when Options.MaxDepth is unset.
const DefaultMaxDepth = 100

// LogSink receives the codec's log messages. Its shape matches
// logr.LogSink.Info; level 0 is info and 1 is debug.
type LogSink interface {
	Info(level int, msg string, keysAndValues ...interface{})
}

// Options represents all possible options for Serialize and Deserialize.
type Options struct {
	MaxDepth      *int    // Maximum document/array nesting. Values <= 0 mean DefaultMaxDepth.
	StandardRoot  *bool   // Write and read the root as a document without a leading tag byte. Defaults to false.
	IntegerFloats *bool   // Encode integral floats as Int32/Int64. Defaults to false.
	LenientArrays *bool   // Accept sparse and out of order array keys when decoding. Defaults to false.
	LogLevel      *string // One of "off", "info" or "debug". Defaults to the DBSON_LOG_* environment.
	LogSink       LogSink // Receives log messages. Defaults to os.Stderr.
}

// NewOptions creates a new *Options.
func NewOptions() *Options {
	return &Options{}
}

// SetMaxDepth specifies the maximum document/array nesting. Defaults to 100.
func (o *Options) SetMaxDepth(d int) *Options {
	o.MaxDepth = &d
	return o
}

// SetStandardRoot specifies if the root is a document written without a
// leading tag byte, as conventional BSON does. Defaults to false.
func (o *Options) SetStandardRoot(b bool) *Options {
	o.StandardRoot = &b
	return o
}

// SetIntegerFloats specifies if floats holding an integral value in the
// int64 range are encoded as integers. Defaults to false.
func (o *Options) SetIntegerFloats(b bool) *Options {
	o.IntegerFloats = &b
	return o
}

// SetLenientArrays specifies if array keys may be sparse or out of order
// when decoding. Holes are filled with Undefined. Defaults to false.
func (o *Options) SetLenientArrays(b bool) *Options {
	o.LenientArrays = &b
	return o
}

// SetLogLevel specifies the log level for both directions.
func (o *Options) SetLogLevel(level string) *Options {
	o.LogLevel = &level
	return o
}

// SetLogSink specifies the sink that receives log messages.
func (o *Options) SetLogSink(sink LogSink) *Options {
	o.LogSink = sink
	return o
}

// MergeOptions combines the given *Options into a single *Options in a last one wins fashion.
func MergeOptions(opts ...*Options) *Options {
	o := NewOptions()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if opt.MaxDepth != nil {
			o.MaxDepth = opt.MaxDepth
		}
		if opt.StandardRoot != nil {
			o.StandardRoot = opt.StandardRoot
		}
		if opt.IntegerFloats != nil {
			o.IntegerFloats = opt.IntegerFloats
		}
		if opt.LenientArrays != nil {
			o.LenientArrays = opt.LenientArrays
		}
		if opt.LogLevel != nil {
			o.LogLevel = opt.LogLevel
		}
		if opt.LogSink != nil {
			o.LogSink = opt.LogSink
		}
	}

	return o
}

// config is the resolved form of Options used by a single call.
type config struct {
	maxDepth      int
	standardRoot  bool
	integerFloats bool
	lenientArrays bool
	logger        *logger.Logger
}

var (
	envLoggerOnce sync.Once
	envLogger     *logger.Logger
)

func defaultLogger() *logger.Logger {
	envLoggerOnce.Do(func() {
		envLogger = logger.New(nil)
	})
	return envLogger
}

func newConfig(opts ...*Options) config {
	o := MergeOptions(opts...)

	cfg := config{maxDepth: DefaultMaxDepth}
	if o.MaxDepth != nil && *o.MaxDepth > 0 {
		cfg.maxDepth = *o.MaxDepth
	}
	if o.StandardRoot != nil {
		cfg.standardRoot = *o.StandardRoot
	}
	if o.IntegerFloats != nil {
		cfg.integerFloats = *o.IntegerFloats
	}
	if o.LenientArrays != nil {
		cfg.lenientArrays = *o.LenientArrays
	}

	switch {
	case o.LogLevel == nil && o.LogSink == nil:
		cfg.logger = defaultLogger()
	case o.LogLevel == nil:
		cfg.logger = logger.New(o.LogSink)
	default:
		cfg.logger = logger.New(o.LogSink, map[logger.Component]logger.Level{
			logger.ComponentAll: logger.ParseLevel(*o.LogLevel),
		})
	}

	return cfg
}
