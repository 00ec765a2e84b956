// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package main

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	krpretty "github.com/kr/pretty"
	"github.com/pkg/errors"
	"github.com/tidwall/pretty"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/ikmak/dbson/bson"
	"github.com/ikmak/dbson/bson/extjson"
	"github.com/ikmak/dbson/internal/benchmark"
	"github.com/ikmak/dbson/internal/compressor"
)

func encodeCommand() *cli.Command {
	return &cli.Command{
		Name:      "encode",
		Usage:     "encode a stream of Extended JSON values",
		ArgsUsage: "[file]",
		Action: func(c *cli.Context) error {
			cfg, err := resolveConfig(c)
			if err != nil {
				return err
			}
			opts := cfg.codecOptions(newLogger(c.App.ErrWriter, cfg.LogLevel))

			r, name, err := openInput(c)
			if err != nil {
				return err
			}
			defer r.Close()

			var out []byte
			dec := extjson.NewDecoder(r)
			for n := 0; ; n++ {
				v, err := dec.Decode()
				if err == io.EOF {
					break
				}
				if err != nil {
					return errors.Wrapf(err, "%s: parsing value %d", name, n)
				}
				b, err := bson.Serialize(v, opts)
				if err != nil {
					return errors.Wrapf(err, "%s: encoding value %d", name, n)
				}
				out = append(out, b...)
			}

			out, err = compressStream(cfg, out)
			if err != nil {
				return err
			}
			_, err = c.App.Writer.Write(out)
			return errors.Wrap(err, "writing output")
		},
	}
}

func decodeCommand() *cli.Command {
	return &cli.Command{
		Name:      "decode",
		Usage:     "decode an encoded stream to Extended JSON or YAML",
		ArgsUsage: "[file]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "format", Value: "json", Usage: "output format: json or yaml"},
			&cli.BoolFlag{Name: "canonical", Usage: "write canonical Extended JSON"},
			&cli.BoolFlag{Name: "compact", Usage: "write one JSON value per line without indentation"},
		},
		Action: func(c *cli.Context) error {
			format := strings.ToLower(c.String("format"))
			if format != "json" && format != "yaml" {
				return errors.Errorf("unknown format %q", format)
			}

			var enc *yaml.Encoder
			if format == "yaml" {
				enc = yaml.NewEncoder(c.App.Writer)
				enc.SetIndent(2)
			}

			err := forEachValue(c, func(v interface{}) error {
				if enc != nil {
					return writeYAML(enc, v)
				}
				b, err := extjson.MarshalTree(v, c.Bool("canonical"))
				if err != nil {
					return err
				}
				if c.Bool("compact") {
					b = append(b, '\n')
				} else {
					b = pretty.Pretty(b)
				}
				_, err = c.App.Writer.Write(b)
				return err
			})
			if err != nil {
				return err
			}
			if enc != nil {
				return errors.Wrap(enc.Close(), "writing yaml")
			}
			return nil
		},
	}
}

func diagCommand() *cli.Command {
	return &cli.Command{
		Name:      "diag",
		Usage:     "print decoded values as Go structures",
		ArgsUsage: "[file]",
		Action: func(c *cli.Context) error {
			return forEachValue(c, func(v interface{}) error {
				_, err := krpretty.Fprintf(c.App.Writer, "%# v\n", v)
				return err
			})
		},
	}
}

func benchCommand() *cli.Command {
	return &cli.Command{
		Name:  "bench",
		Usage: "run the encode and decode benchmark cases",
		Flags: []cli.Flag{
			&cli.DurationFlag{Name: "runtime", Value: benchmark.MinimumRuntime, Usage: "minimum runtime per case"},
			&cli.StringFlag{Name: "filter", Usage: "only run cases whose name contains this string"},
			&cli.BoolFlag{Name: "json", Usage: "write the summaries as JSON"},
		},
		Action: func(c *cli.Context) error {
			var summaries []benchmark.Summary
			var failed []string
			for _, bc := range benchmark.AllCases() {
				if f := c.String("filter"); f != "" && !strings.Contains(bc.Name(), f) {
					continue
				}
				bc.Runtime = c.Duration("runtime")

				res := bc.Run(c.Context, c.App.ErrWriter)
				if res.HasErrors() {
					failed = append(failed, fmt.Sprintf("%s: %s", res.Name, strings.Join(res.ErrReport(), "; ")))
					continue
				}
				s, err := res.Summarize()
				if err != nil {
					return errors.Wrapf(err, "summarizing %s", res.Name)
				}
				summaries = append(summaries, s)
			}

			if c.Bool("json") {
				b, err := json.MarshalIndent(summaries, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(c.App.Writer, string(b))
			} else {
				for _, s := range summaries {
					fmt.Fprintln(c.App.Writer, s)
				}
			}

			if len(failed) > 0 {
				return cli.Exit(strings.Join(failed, "\n"), 1)
			}
			return nil
		},
	}
}

// forEachValue decodes every value of the input stream and passes it to fn.
func forEachValue(c *cli.Context, fn func(v interface{}) error) error {
	cfg, err := resolveConfig(c)
	if err != nil {
		return err
	}
	opts := cfg.codecOptions(newLogger(c.App.ErrWriter, cfg.LogLevel))

	data, name, err := readInput(c)
	if err != nil {
		return err
	}
	data, err = decompressStream(cfg, data)
	if err != nil {
		return errors.Wrap(err, name)
	}

	for n := 0; len(data) > 0; n++ {
		v, rem, err := bson.DeserializeFirst(data, opts)
		if err != nil {
			return errors.Wrapf(err, "%s: decoding value %d", name, n)
		}
		if err := fn(v); err != nil {
			return errors.Wrapf(err, "%s: writing value %d", name, n)
		}
		data = rem
	}
	return nil
}

func compressStream(cfg config, data []byte) ([]byte, error) {
	id, err := cfg.compressor()
	if err != nil || id == compressor.None {
		return data, err
	}
	out, err := compressor.Compress(data, compressor.DefaultOptions(id))
	return out, errors.Wrap(err, "compressing output")
}

// decompressStream unwraps data when a compressor is configured. The frame
// names its own compressor, so any configured one reads any frame.
func decompressStream(cfg config, data []byte) ([]byte, error) {
	id, err := cfg.compressor()
	if err != nil || id == compressor.None {
		return data, err
	}
	out, err := compressor.Decompress(data)
	return out, errors.Wrap(err, "decompressing input")
}

func writeYAML(enc *yaml.Encoder, v interface{}) error {
	node, err := yamlNode(v)
	if err != nil {
		return err
	}
	return enc.Encode(node)
}

// yamlNode converts a decoded tree to a YAML node, keeping document key
// order. Wrapper values are written as flow mappings of their canonical
// Extended JSON form.
func yamlNode(v interface{}) (*yaml.Node, error) {
	switch tv := v.(type) {
	case nil:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}, nil
	case bool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: fmt.Sprint(tv)}, nil
	case int32, int64:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: fmt.Sprint(tv)}, nil
	case float64:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: yamlFloat(tv)}, nil
	case string:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: tv}, nil
	case bson.D:
		node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, e := range tv {
			val, err := yamlNode(e.Value)
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: e.Key}, val)
		}
		return node, nil
	case bson.A:
		node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, e := range tv {
			val, err := yamlNode(e)
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content, val)
		}
		return node, nil
	}

	b, err := extjson.MarshalTree(v, true)
	if err != nil {
		return nil, err
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, errors.Wrapf(err, "converting %T", v)
	}
	if len(doc.Content) != 1 {
		return nil, errors.Errorf("converting %T: empty document", v)
	}
	return doc.Content[0], nil
}

func yamlFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return ".nan"
	case math.IsInf(f, 1):
		return ".inf"
	case math.IsInf(f, -1):
		return "-.inf"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// elapsed formats d for progress lines.
func elapsed(d time.Duration) string {
	return d.Round(time.Millisecond).String()
}
