// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package main

import (
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/ikmak/dbson/bson"
	"github.com/ikmak/dbson/internal/compressor"
)

// Flag names double as the keys of the configuration file.
const (
	flagConfig        = "config"
	flagMaxDepth      = "max-depth"
	flagStandardRoot  = "standard-root"
	flagLenientArrays = "lenient-arrays"
	flagIntegerFloats = "integer-floats"
	flagCompression   = "compression"
	flagLogLevel      = "log-level"
)

// config is the CLI's resolved configuration. Values come from the TOML
// file named by --config, then the environment (including a .env file),
// then flags.
type config struct {
	MaxDepth      int    `toml:"max-depth"`
	StandardRoot  bool   `toml:"standard-root"`
	LenientArrays bool   `toml:"lenient-arrays"`
	IntegerFloats bool   `toml:"integer-floats"`
	Compression   string `toml:"compression"`
	LogLevel      string `toml:"log-level"`
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    flagConfig,
			Usage:   "TOML configuration file",
			EnvVars: []string{"DBSON_CONFIG"},
		},
		&cli.IntFlag{
			Name:    flagMaxDepth,
			Usage:   "maximum document/array nesting",
			Value:   bson.DefaultMaxDepth,
			EnvVars: []string{"DBSON_MAX_DEPTH"},
		},
		&cli.BoolFlag{
			Name:    flagStandardRoot,
			Usage:   "write and read the root document without a tag byte",
			EnvVars: []string{"DBSON_STANDARD_ROOT"},
		},
		&cli.BoolFlag{
			Name:    flagLenientArrays,
			Usage:   "accept sparse or out of order array keys",
			EnvVars: []string{"DBSON_LENIENT_ARRAYS"},
		},
		&cli.BoolFlag{
			Name:    flagIntegerFloats,
			Usage:   "encode integral floats as integers",
			EnvVars: []string{"DBSON_INTEGER_FLOATS"},
		},
		&cli.StringFlag{
			Name:    flagCompression,
			Usage:   "compress the encoded stream: none, snappy, zlib, zstd or lz4",
			EnvVars: []string{"DBSON_COMPRESSION"},
		},
		&cli.StringFlag{
			Name:    flagLogLevel,
			Usage:   "codec log level: off, info or debug",
			Value:   "off",
			EnvVars: []string{"DBSON_LOG_LEVEL"},
		},
	}
}

// loadDotEnv loads variables from path into the environment without
// overriding ones that are already set. A missing file is not an error.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	return errors.Wrapf(godotenv.Load(path), "loading %s", path)
}

func defaultConfig() config {
	return config{
		MaxDepth: bson.DefaultMaxDepth,
		LogLevel: "off",
	}
}

// loadConfig reads the TOML file at path over the defaults.
func loadConfig(path string) (config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(err, "reading config")
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parsing config %s", path)
	}
	return cfg, nil
}

// resolveConfig applies flags and environment variables that were set over
// the configuration file.
func resolveConfig(c *cli.Context) (config, error) {
	cfg, err := loadConfig(c.String(flagConfig))
	if err != nil {
		return cfg, err
	}
	if c.IsSet(flagMaxDepth) {
		cfg.MaxDepth = c.Int(flagMaxDepth)
	}
	if c.IsSet(flagStandardRoot) {
		cfg.StandardRoot = c.Bool(flagStandardRoot)
	}
	if c.IsSet(flagLenientArrays) {
		cfg.LenientArrays = c.Bool(flagLenientArrays)
	}
	if c.IsSet(flagIntegerFloats) {
		cfg.IntegerFloats = c.Bool(flagIntegerFloats)
	}
	if c.IsSet(flagCompression) {
		cfg.Compression = c.String(flagCompression)
	}
	if c.IsSet(flagLogLevel) {
		cfg.LogLevel = c.String(flagLogLevel)
	}
	if _, err := cfg.compressor(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (cfg config) compressor() (compressor.ID, error) {
	id, err := compressor.ParseID(cfg.Compression)
	return id, errors.Wrap(err, "invalid compression")
}

// codecOptions returns the codec options for cfg, logging through log.
func (cfg config) codecOptions(log *logrus.Logger) *bson.Options {
	return bson.NewOptions().
		SetMaxDepth(cfg.MaxDepth).
		SetStandardRoot(cfg.StandardRoot).
		SetLenientArrays(cfg.LenientArrays).
		SetIntegerFloats(cfg.IntegerFloats).
		SetLogLevel(cfg.LogLevel).
		SetLogSink(newLogrusSink(log))
}

// newLogger returns the CLI's logger. Codec messages at debug level are
// only emitted when the codec log level is debug.
func newLogger(w io.Writer, level string) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(w)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	switch level {
	case "debug":
		log.SetLevel(logrus.DebugLevel)
	default:
		log.SetLevel(logrus.InfoLevel)
	}
	return log
}
