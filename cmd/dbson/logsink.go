// Copyright (C) MongoDB, Inc. 2023-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// logrusSink routes codec log messages to a logrus logger. Level 0 is info
// and anything above is debug.
type logrusSink struct {
	log *logrus.Logger
}

func newLogrusSink(log *logrus.Logger) *logrusSink {
	return &logrusSink{log: log}
}

func (s *logrusSink) Info(level int, msg string, keysAndValues ...interface{}) {
	fields := make(logrus.Fields, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	entry := s.log.WithFields(fields)
	if level > 0 {
		entry.Debug(msg)
		return
	}
	entry.Info(msg)
}
