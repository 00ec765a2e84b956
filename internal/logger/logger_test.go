// Copyright (C) MongoDB, Inc. 2023-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockLogSink struct {
	levels []int
	msgs   []string
	kvs    [][]interface{}
}

func (s *mockLogSink) Info(level int, msg string, keysAndValues ...interface{}) {
	s.levels = append(s.levels, level)
	s.msgs = append(s.msgs, msg)
	s.kvs = append(s.kvs, keysAndValues)
}

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv(string(componentEnvVarAll), "")
	t.Setenv(string(componentEnvVarSerializer), "")
	t.Setenv(string(componentEnvVarDeserializer), "")
}

func TestParseLevel(t *testing.T) {
	testCases := []struct {
		input string
		want  Level
	}{
		{"off", LevelOff},
		{"", LevelOff},
		{"bogus", LevelOff},
		{"error", LevelInfo},
		{"WARN", LevelInfo},
		{"info", LevelInfo},
		{"Debug", LevelDebug},
		{"trace", LevelDebug},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.want, ParseLevel(tc.input))
		})
	}
}

func TestGetEnvComponentLevels(t *testing.T) {
	testCases := []struct {
		name string
		env  map[string]string
		want map[Component]Level
	}{
		{
			name: "no env",
			want: map[Component]Level{},
		},
		{
			name: "invalid env",
			env:  map[string]string{"DBSON_LOG_ALL": "invalid"},
			want: map[Component]Level{},
		},
		{
			name: "all debug",
			env:  map[string]string{"DBSON_LOG_ALL": "debug"},
			want: map[Component]Level{
				ComponentSerializer:   LevelDebug,
				ComponentDeserializer: LevelDebug,
			},
		},
		{
			name: "component overrides all",
			env: map[string]string{
				"DBSON_LOG_ALL":          "info",
				"DBSON_LOG_DESERIALIZER": "debug",
			},
			want: map[Component]Level{
				ComponentSerializer:   LevelInfo,
				ComponentDeserializer: LevelDebug,
			},
		},
		{
			name: "component off",
			env: map[string]string{
				"DBSON_LOG_ALL":        "info",
				"DBSON_LOG_SERIALIZER": "off",
			},
			want: map[Component]Level{
				ComponentDeserializer: LevelInfo,
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			assert.Equal(t, tc.want, getEnvComponentLevels())
		})
	}
}

func TestLoggerPrint(t *testing.T) {
	t.Run("enabled level reaches the sink", func(t *testing.T) {
		clearEnv(t)
		sink := &mockLogSink{}
		logger := New(sink, map[Component]Level{ComponentSerializer: LevelDebug})

		logger.Print(LevelDebug, ComponentSerializer, "serialized", "bytes", 5)

		require.Len(t, sink.msgs, 1)
		assert.Equal(t, "serialized", sink.msgs[0])
		assert.Equal(t, int(LevelDebug)-DiffToInfo, sink.levels[0])
		assert.Equal(t, []interface{}{KeyComponent, "serializer", "bytes", 5}, sink.kvs[0])
	})
	t.Run("disabled level is dropped", func(t *testing.T) {
		clearEnv(t)
		sink := &mockLogSink{}
		logger := New(sink, map[Component]Level{ComponentSerializer: LevelInfo})

		logger.Print(LevelDebug, ComponentSerializer, "serialized")
		logger.Print(LevelInfo, ComponentDeserializer, "deserialized")

		assert.Empty(t, sink.msgs)
	})
	t.Run("all applies to every component", func(t *testing.T) {
		clearEnv(t)
		sink := &mockLogSink{}
		logger := New(sink, map[Component]Level{ComponentAll: LevelInfo})

		assert.True(t, logger.LevelComponentEnabled(LevelInfo, ComponentSerializer))
		assert.True(t, logger.LevelComponentEnabled(LevelInfo, ComponentDeserializer))
		assert.False(t, logger.LevelComponentEnabled(LevelDebug, ComponentDeserializer))
	})
	t.Run("later levels take precedence", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("DBSON_LOG_ALL", "debug")
		logger := New(&mockLogSink{}, map[Component]Level{ComponentSerializer: LevelOff})

		assert.False(t, logger.LevelComponentEnabled(LevelInfo, ComponentSerializer))
		assert.True(t, logger.LevelComponentEnabled(LevelDebug, ComponentDeserializer))
	})
	t.Run("nil logger is disabled", func(t *testing.T) {
		var logger *Logger
		assert.False(t, logger.LevelComponentEnabled(LevelInfo, ComponentAll))
		logger.Print(LevelInfo, ComponentAll, "ignored")
	})
}

func TestIOSink(t *testing.T) {
	buf := new(bytes.Buffer)
	sink := NewIOSink(buf)

	sink.Info(0, "deserialize failed", "code", "MALFORMED", "offset", 7)

	line := buf.String()
	start := strings.IndexByte(line, '{')
	require.True(t, start >= 0, "no JSON object in %q", line)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(line[start:])), &got))
	assert.Equal(t, map[string]interface{}{
		KeyMessage: "deserialize failed",
		"code":     "MALFORMED",
		"offset":   "7",
	}, got)
}
