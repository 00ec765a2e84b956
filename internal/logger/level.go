// Copyright (C) MongoDB, Inc. 2023-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package logger

import "strings"

// DiffToInfo is the number of levels that come before the "Info" level. This
// ensures that "Info" is the 0th level passed to the sink.
const DiffToInfo = 1

// Level is an enumeration representing the supported log severity levels.
//
// The order of the levels is important. A LogSink built on the logr package
// treats InfoLevel as 0. Any additions before InfoLevel need to also update
// DiffToInfo.
type Level int

const (
	// LevelOff suppresses logging.
	LevelOff Level = iota

	// LevelInfo enables logging of failed encode and decode calls.
	LevelInfo

	// LevelDebug enables logging of every encode and decode call.
	LevelDebug
)

// LevelLiteral are the string forms of the log levels, as read from the
// environment or a configuration file.
type LevelLiteral string

const (
	LevelLiteralOff    LevelLiteral = "off"
	LevelLiteralError  LevelLiteral = "error"
	LevelLiteralWarn   LevelLiteral = "warn"
	LevelLiteralNotice LevelLiteral = "notice"
	LevelLiteralInfo   LevelLiteral = "info"
	LevelLiteralDebug  LevelLiteral = "debug"
	LevelLiteralTrace  LevelLiteral = "trace"
)

// Level will return the Level associated with the level literal. If the
// literal is not a valid level, then LevelOff is returned.
func (llevel LevelLiteral) Level() Level {
	switch llevel {
	case LevelLiteralError, LevelLiteralWarn, LevelLiteralNotice, LevelLiteralInfo:
		return LevelInfo
	case LevelLiteralDebug, LevelLiteralTrace:
		return LevelDebug
	default:
		return LevelOff
	}
}

func allLevelLiterals() []LevelLiteral {
	return []LevelLiteral{
		LevelLiteralOff,
		LevelLiteralError,
		LevelLiteralWarn,
		LevelLiteralNotice,
		LevelLiteralInfo,
		LevelLiteralDebug,
		LevelLiteralTrace,
	}
}

// ParseLevel will check if the given string is a valid level literal, ignoring
// case. If it is, then it will return the Level. The default Level is "Off".
func ParseLevel(str string) Level {
	for _, llevel := range allLevelLiterals() {
		if strings.EqualFold(string(llevel), str) {
			return llevel.Level()
		}
	}

	return LevelOff
}

func (level Level) String() string {
	switch level {
	case LevelInfo:
		return string(LevelLiteralInfo)
	case LevelDebug:
		return string(LevelLiteralDebug)
	default:
		return string(LevelLiteralOff)
	}
}
