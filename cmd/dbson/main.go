// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Command dbson converts between Extended JSON and the binary document
// format, inspects encoded files and runs the codec benchmarks.
package main

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/ikmak/dbson/internal"
)

func main() {
	if err := loadDotEnv(".env"); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	app := newApp(os.Stdin, os.Stdout, os.Stderr)
	if err := app.Run(os.Args); err != nil {
		reportError(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp(in io.Reader, out, errOut io.Writer) *cli.App {
	app := &cli.App{
		Name:      "dbson",
		Usage:     "encode, decode and check tagged binary documents",
		Reader:    in,
		Writer:    out,
		ErrWriter: errOut,
		Flags:     globalFlags(),
		Commands: []*cli.Command{
			encodeCommand(),
			decodeCommand(),
			diagCommand(),
			checkCommand(),
			benchCommand(),
		},
		ExitErrHandler: func(*cli.Context, error) {},
	}

	sort.Sort(cli.FlagsByName(app.Flags))
	sort.Sort(cli.CommandsByName(app.Commands))

	return app
}

// reportError prints err and, when it wraps a codec error, the innermost
// cause.
func reportError(w io.Writer, err error) {
	fmt.Fprintf(w, "dbson: %v\n", err)
	cause := internal.InnermostError(errors.Cause(err))
	if cause != nil && cause.Error() != errors.Cause(err).Error() {
		fmt.Fprintf(w, "cause: %v\n", cause)
	}
}

// openInput returns the file named by the first argument, or the app's
// reader when there is none or it is "-".
func openInput(c *cli.Context) (io.ReadCloser, string, error) {
	name := c.Args().First()
	if name == "" || name == "-" {
		return io.NopCloser(c.App.Reader), "stdin", nil
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, name, errors.Wrapf(err, "cannot open %s", name)
	}
	return f, name, nil
}

func readInput(c *cli.Context) ([]byte, string, error) {
	r, name, err := openInput(c)
	if err != nil {
		return nil, name, err
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, name, errors.Wrapf(err, "reading %s", name)
	}
	return data, name, nil
}
