// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"time"

	"github.com/karrick/godirwalk"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/ikmak/dbson/bson"
)

// checkResult is the outcome of checking one file.
type checkResult struct {
	path      string
	values    int
	identical bool
	err       error
}

func checkCommand() *cli.Command {
	return &cli.Command{
		Name:      "check",
		Usage:     "verify that every encoded file under a directory decodes and round trips",
		ArgsUsage: "<dir>",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "jobs", Aliases: []string{"j"}, Value: runtime.NumCPU(), Usage: "files checked in parallel"},
			&cli.StringFlag{Name: "ext", Value: ".dbson", Usage: "extension of the files to check"},
		},
		Action: func(c *cli.Context) error {
			dir := c.Args().First()
			if dir == "" {
				return errors.New("must specify a directory to check")
			}
			cfg, err := resolveConfig(c)
			if err != nil {
				return err
			}
			log := newLogger(c.App.ErrWriter, cfg.LogLevel)
			opts := cfg.codecOptions(log)

			paths, err := findFiles(dir, c.String("ext"))
			if err != nil {
				return err
			}

			start := time.Now()
			results := make([]checkResult, len(paths))
			g, ctx := errgroup.WithContext(c.Context)
			g.SetLimit(max(c.Int("jobs"), 1))
			for i, path := range paths {
				i, path := i, path
				g.Go(func() error {
					if err := ctx.Err(); err != nil {
						return err
					}
					results[i] = checkFile(cfg, path, opts)
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			failures := 0
			for _, res := range results {
				fields := logrus.Fields{"path": res.path, "values": res.values}
				switch {
				case res.err != nil:
					failures++
					fmt.Fprintf(c.App.Writer, "FAIL %s: %v\n", res.path, res.err)
				case !res.identical:
					log.WithFields(fields).Debug("re-encoded bytes differ")
					fmt.Fprintf(c.App.Writer, "ok   %s (%d values, normalized)\n", res.path, res.values)
				default:
					log.WithFields(fields).Debug("checked")
					fmt.Fprintf(c.App.Writer, "ok   %s (%d values)\n", res.path, res.values)
				}
			}
			log.WithFields(logrus.Fields{
				"files":    len(results),
				"failures": failures,
				"elapsed":  elapsed(time.Since(start)),
			}).Info("check finished")

			if failures > 0 {
				return cli.Exit(fmt.Sprintf("%d of %d files failed", failures, len(results)), 1)
			}
			return nil
		},
	}
}

// findFiles returns the regular files under dir with extension ext, sorted.
func findFiles(dir, ext string) ([]string, error) {
	var paths []string
	err := godirwalk.Walk(dir, &godirwalk.Options{
		Callback: func(osPathname string, de *godirwalk.Dirent) error {
			if de.IsRegular() && filepath.Ext(osPathname) == ext {
				paths = append(paths, osPathname)
			}
			return nil
		},
		Unsorted: true,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "walking %s", dir)
	}
	sort.Strings(paths)
	return paths, nil
}

// checkFile decodes every value in the file at path, encodes it again and
// decodes the result. The file passes when both decodes are equal; identical
// reports whether the re-encoded stream matched the file byte for byte.
func checkFile(cfg config, path string, opts *bson.Options) checkResult {
	res := checkResult{path: path, identical: true}

	data, err := os.ReadFile(path)
	if err != nil {
		res.err = err
		return res
	}
	data, err = decompressStream(cfg, data)
	if err != nil {
		res.err = err
		return res
	}

	for len(data) > 0 {
		v, rem, err := bson.DeserializeFirst(data, opts)
		if err != nil {
			res.err = errors.Wrapf(err, "value %d", res.values)
			return res
		}
		consumed := data[:len(data)-len(rem)]

		encoded, err := bson.Serialize(v, opts)
		if err != nil {
			res.err = errors.Wrapf(err, "re-encoding value %d", res.values)
			return res
		}
		again, err := bson.Deserialize(encoded, opts)
		if err != nil {
			res.err = errors.Wrapf(err, "decoding re-encoded value %d", res.values)
			return res
		}
		if !bson.Equal(v, again) {
			res.err = errors.Errorf("value %d changed after re-encoding", res.values)
			return res
		}
		if !bytes.Equal(consumed, encoded) {
			res.identical = false
		}

		res.values++
		data = rem
	}
	return res
}
