// Copyright (C) MongoDB, Inc. 2023-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package logger is the codec's component logger. Messages are printed
// synchronously to a LogSink when the level configured for their component
// allows it.
package logger

import "os"

// Keys shared by every message.
const (
	KeyMessage   = "message"
	KeyComponent = "component"
)

// LogSink is an interface that can be implemented to provide a custom sink
// for the codec's logs. Its shape matches logr.LogSink.Info.
type LogSink interface {
	Info(level int, msg string, keysAndValues ...interface{})
}

// Logger is the codec's logger. It is safe for concurrent use as long as the
// sink is.
type Logger struct {
	ComponentLevels map[Component]Level
	Sink            LogSink
}

// New will construct a new logger with the given LogSink. If the given
// LogSink is nil, then the logger will log to os.Stderr.
//
// The "componentLevels" parameter is variadic with the latest value taking
// precedence. Levels from the environment are applied first.
func New(sink LogSink, componentLevels ...map[Component]Level) *Logger {
	levels := append([]map[Component]Level{getEnvComponentLevels()}, componentLevels...)

	logger := &Logger{
		ComponentLevels: mergeComponentLevels(levels...),
		Sink:            sink,
	}
	if logger.Sink == nil {
		logger.Sink = NewIOSink(os.Stderr)
	}

	return logger
}

// LevelComponentEnabled will return true if the given Level is enabled for
// the given Component.
func (logger *Logger) LevelComponentEnabled(level Level, component Component) bool {
	if logger == nil || level == LevelOff {
		return false
	}
	return logger.ComponentLevels[component] >= level
}

// Print will print the given message to the configured LogSink if the level
// is enabled for the component.
func (logger *Logger) Print(level Level, component Component, msg string, keysAndValues ...interface{}) {
	if !logger.LevelComponentEnabled(level, component) {
		return
	}

	kv := make([]interface{}, 0, len(keysAndValues)+2)
	kv = append(kv, KeyComponent, component.String())
	kv = append(kv, keysAndValues...)

	logger.Sink.Info(int(level)-DiffToInfo, msg, kv...)
}

// mergeComponentLevels will merge the given maps, with the latest value
// taking precedence. A ComponentAll entry sets every component.
func mergeComponentLevels(componentLevels ...map[Component]Level) map[Component]Level {
	merged := make(map[Component]Level)
	for _, levels := range componentLevels {
		if all, ok := levels[ComponentAll]; ok {
			merged[ComponentSerializer] = all
			merged[ComponentDeserializer] = all
		}
		for component, level := range levels {
			if component == ComponentAll {
				continue
			}
			merged[component] = level
		}
	}

	return merged
}
