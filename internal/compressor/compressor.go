// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package compressor frames encoded documents with an optional compression
// layer. A frame is a one byte compressor ID, the uncompressed length as a
// four byte little-endian integer, and the payload.
package compressor

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// ID identifies the compression applied to a frame's payload.
type ID uint8

// Compressor IDs.
const (
	None ID = iota
	Snappy
	Zlib
	Zstd
	LZ4
)

// HeaderSize is the number of bytes before a frame's payload.
const HeaderSize = 5

// maxLZ4Ratio bounds how far one compressed LZ4 block byte can expand.
const maxLZ4Ratio = 255

func (id ID) String() string {
	switch id {
	case None:
		return "none"
	case Snappy:
		return "snappy"
	case Zlib:
		return "zlib"
	case Zstd:
		return "zstd"
	case LZ4:
		return "lz4"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(id))
	}
}

// ParseID returns the ID named by s. The empty string is None.
func ParseID(s string) (ID, error) {
	switch strings.ToLower(s) {
	case "", "none", "noop":
		return None, nil
	case "snappy":
		return Snappy, nil
	case "zlib":
		return Zlib, nil
	case "zstd":
		return Zstd, nil
	case "lz4":
		return LZ4, nil
	default:
		return None, fmt.Errorf("unknown compressor %q", s)
	}
}

// Options holds settings for how to compress a payload.
type Options struct {
	Compressor ID
	ZlibLevel  int
	ZstdLevel  int
}

// DefaultOptions returns Options for c with the default levels of each
// algorithm.
func DefaultOptions(c ID) Options {
	return Options{Compressor: c, ZlibLevel: zlib.DefaultCompression, ZstdLevel: 3}
}

func calcZstdWindowSize(n int, l zstd.EncoderLevel) int {
	if n <= zstd.MinWindowSize {
		return zstd.MinWindowSize
	}
	windowSize := zstd.MinWindowSize
	// Window sizes per level, as chosen by the zstd package.
	switch l {
	case zstd.SpeedFastest:
		windowSize = 4 << 20
	case zstd.SpeedDefault:
		windowSize = 8 << 20
	case zstd.SpeedBetterCompression:
		windowSize = 16 << 20
	case zstd.SpeedBestCompression:
		windowSize = 32 << 20
	}
	if windowSize > zstd.MaxWindowSize {
		windowSize = zstd.MaxWindowSize
	}
	// Shrink to the smallest power of 2 that still holds the input.
	for windowSize/2 > n {
		windowSize /= 2
	}
	return windowSize
}

// Compress returns in framed with the compressor in opts. LZ4 input that does
// not compress is framed with None instead.
func Compress(in []byte, opts Options) ([]byte, error) {
	if uint64(len(in)) > math.MaxUint32 {
		return nil, fmt.Errorf("payload of %d bytes is too large to frame", len(in))
	}

	id := opts.Compressor
	payload, err := compressPayload(in, opts)
	if err != nil {
		return nil, fmt.Errorf("%s compress: %w", id, err)
	}
	if payload == nil {
		id, payload = None, in
	}

	frame := make([]byte, HeaderSize, HeaderSize+len(payload))
	frame[0] = byte(id)
	binary.LittleEndian.PutUint32(frame[1:HeaderSize], uint32(len(in)))
	return append(frame, payload...), nil
}

// compressPayload returns nil, nil when the payload should be stored as is.
func compressPayload(in []byte, opts Options) ([]byte, error) {
	switch opts.Compressor {
	case None:
		return nil, nil
	case Snappy:
		return snappy.Encode(nil, in), nil
	case Zlib:
		var b bytes.Buffer
		w, err := zlib.NewWriterLevel(&b, opts.ZlibLevel)
		if err != nil {
			return nil, err
		}
		_, err = w.Write(in)
		if err != nil {
			return nil, err
		}
		err = w.Close()
		if err != nil {
			return nil, err
		}
		return b.Bytes(), nil
	case Zstd:
		var b bytes.Buffer
		level := zstd.EncoderLevelFromZstd(opts.ZstdLevel)
		windowSize := calcZstdWindowSize(len(in), level)
		w, err := zstd.NewWriter(&b, zstd.WithEncoderLevel(level), zstd.WithWindowSize(windowSize))
		if err != nil {
			return nil, err
		}
		_, err = io.Copy(w, bytes.NewReader(in))
		if err != nil {
			_ = w.Close()
			return nil, err
		}
		err = w.Close()
		if err != nil {
			return nil, err
		}
		return b.Bytes(), nil
	case LZ4:
		dst := make([]byte, lz4.CompressBlockBound(len(in)))
		n, err := lz4.CompressBlock(in, dst, nil)
		if err != nil {
			return nil, err
		}
		// Zero means the block is incompressible.
		if n == 0 || n >= len(in) {
			return nil, nil
		}
		return dst[:n], nil
	default:
		return nil, fmt.Errorf("unknown compressor ID %v", opts.Compressor)
	}
}

// Decompress undoes Compress. frame must hold exactly one frame.
func Decompress(frame []byte) ([]byte, error) {
	if len(frame) < HeaderSize {
		return nil, fmt.Errorf("frame of %d bytes is shorter than its header", len(frame))
	}
	id := ID(frame[0])
	size := int(binary.LittleEndian.Uint32(frame[1:HeaderSize]))
	payload := frame[HeaderSize:]

	out, err := decompressPayload(id, payload, size)
	if err != nil {
		return nil, fmt.Errorf("%s decompress: %w", id, err)
	}
	if len(out) != size {
		return nil, fmt.Errorf("%s decompress: got %d bytes, expected %d", id, len(out), size)
	}
	return out, nil
}

func decompressPayload(id ID, in []byte, size int) ([]byte, error) {
	switch id {
	case None:
		return in, nil
	case Snappy:
		n, err := snappy.DecodedLen(in)
		if err != nil {
			return nil, err
		}
		if n != size {
			return nil, fmt.Errorf("decoded length %d does not match %d", n, size)
		}
		return snappy.Decode(make([]byte, size), in)
	case Zlib:
		decompressor, err := zlib.NewReader(bytes.NewReader(in))
		if err != nil {
			return nil, err
		}
		defer decompressor.Close()
		var b bytes.Buffer
		_, err = io.Copy(&b, io.LimitReader(decompressor, int64(size)+1))
		if err != nil {
			return nil, err
		}
		return b.Bytes(), nil
	case Zstd:
		r, err := zstd.NewReader(bytes.NewReader(in))
		if err != nil {
			return nil, err
		}
		defer r.Close()
		var b bytes.Buffer
		_, err = io.Copy(&b, io.LimitReader(r, int64(size)+1))
		if err != nil {
			return nil, err
		}
		return b.Bytes(), nil
	case LZ4:
		if size > len(in)*maxLZ4Ratio {
			return nil, fmt.Errorf("length %d exceeds what %d compressed bytes can hold", size, len(in))
		}
		uncompressed := make([]byte, size)
		n, err := lz4.UncompressBlock(in, uncompressed)
		if err != nil {
			return nil, err
		}
		return uncompressed[:n], nil
	default:
		return nil, fmt.Errorf("unknown compressor ID %v", id)
	}
}
