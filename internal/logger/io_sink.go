// Copyright (C) MongoDB, Inc. 2023-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package logger

import (
	"fmt"
	"io"
	"log"

	"github.com/goccy/go-json"
)

// IOSink writes to an io.Writer using the standard library logging solution and
// is the default sink for the logger, with the default IO being os.Stderr.
type IOSink struct {
	log *log.Logger
}

// Compile-time check to ensure IOSink implements the LogSink interface.
var _ LogSink = &IOSink{}

// NewIOSink will create a new IOSink that writes to the provided io.Writer.
func NewIOSink(out io.Writer) *IOSink {
	return &IOSink{
		log: log.New(out, "", log.LstdFlags),
	}
}

// Info will write the provided message and key-value pairs to the io.Writer
// as a JSON object.
func (sink *IOSink) Info(_ int, msg string, keysAndValues ...interface{}) {
	kvMap := make(map[string]interface{}, len(keysAndValues)/2+1)
	kvMap[KeyMessage] = msg

	for i := 0; i+1 < len(keysAndValues); i += 2 {
		kvMap[fmt.Sprint(keysAndValues[i])] = fmt.Sprint(keysAndValues[i+1])
	}

	kvBytes, err := json.Marshal(kvMap)
	if err != nil {
		sink.log.Println(msg)
		return
	}

	sink.log.Println(string(kvBytes))
}
