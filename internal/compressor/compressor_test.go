// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package compressor

import (
	"bytes"
	"encoding/binary"
	"runtime"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompression(t *testing.T) {
	payload := bytes.Repeat([]byte("abcdefghijklmnopqrstuvwxyz"), 40)

	for _, id := range []ID{None, Snappy, Zlib, Zstd, LZ4} {
		t.Run(id.String(), func(t *testing.T) {
			frame, err := Compress(payload, DefaultOptions(id))
			require.NoError(t, err)
			assert.Equal(t, byte(id), frame[0])
			if id != None {
				assert.Less(t, len(frame), len(payload), "expected %s to shrink the payload", id)
			}

			got, err := Decompress(frame)
			require.NoError(t, err)
			assert.Equal(t, payload, got)
		})
	}
}

func TestLZ4Incompressible(t *testing.T) {
	payload := []byte{0x03, 0x05, 0x00, 0x00, 0x00, 0x00}

	frame, err := Compress(payload, DefaultOptions(LZ4))
	require.NoError(t, err)
	assert.Equal(t, byte(None), frame[0])

	got, err := Decompress(frame)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestDecompressErrors(t *testing.T) {
	good, err := Compress([]byte("hello hello hello hello"), DefaultOptions(Snappy))
	require.NoError(t, err)

	wrongLength := append([]byte{}, good...)
	wrongLength[1]++

	testCases := []struct {
		name  string
		frame []byte
	}{
		{"short header", []byte{0x00, 0x01}},
		{"unknown compressor", []byte{0x09, 0x00, 0x00, 0x00, 0x00}},
		{"length mismatch", wrongLength},
		{"stored length mismatch", []byte{0x00, 0x02, 0x00, 0x00, 0x00, 0xAA}},
		{"corrupt zlib", []byte{byte(Zlib), 0x04, 0x00, 0x00, 0x00, 0x01, 0x02}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decompress(tc.frame)
			assert.Error(t, err)
		})
	}
}

func TestDecompressOversizedLength(t *testing.T) {
	const huge = 1 << 30

	withLength := func(frame []byte) []byte {
		frame = append([]byte{}, frame...)
		binary.LittleEndian.PutUint32(frame[1:HeaderSize], huge)
		return frame
	}
	compressed := func(id ID) []byte {
		frame, err := Compress(bytes.Repeat([]byte("hi "), 20), DefaultOptions(id))
		require.NoError(t, err)
		require.Equal(t, byte(id), frame[0])
		return withLength(frame)
	}

	testCases := []struct {
		name  string
		frame []byte
	}{
		{"lz4 header only", []byte{byte(LZ4), 0x00, 0x00, 0x00, 0x40, 0x00}},
		{"lz4", compressed(LZ4)},
		{"zlib", compressed(Zlib)},
		{"zstd", compressed(Zstd)},
		{"snappy", compressed(Snappy)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var before, after runtime.MemStats
			runtime.ReadMemStats(&before)
			_, err := Decompress(tc.frame)
			runtime.ReadMemStats(&after)

			assert.Error(t, err)
			assert.Less(t, after.TotalAlloc-before.TotalAlloc, uint64(huge/16),
				"decompressing allocated %d bytes", after.TotalAlloc-before.TotalAlloc)
		})
	}
}

func TestParseID(t *testing.T) {
	testCases := []struct {
		s    string
		want ID
		err  bool
	}{
		{"", None, false},
		{"none", None, false},
		{"Snappy", Snappy, false},
		{"zlib", Zlib, false},
		{"ZSTD", Zstd, false},
		{"lz4", LZ4, false},
		{"brotli", None, true},
	}

	for _, tc := range testCases {
		t.Run(tc.s, func(t *testing.T) {
			got, err := ParseID(tc.s)
			if tc.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
	assert.Equal(t, "unknown(9)", ID(9).String())
}

func TestCalcZstdWindowSize(t *testing.T) {
	testCases := []struct {
		name  string
		n     int
		level zstd.EncoderLevel
		want  int
	}{
		{"tiny input", 10, zstd.SpeedDefault, zstd.MinWindowSize},
		{"shrinks to input", 3 << 20, zstd.SpeedDefault, 4 << 20},
		{"default level cap", 64 << 20, zstd.SpeedDefault, 8 << 20},
		{"fastest level cap", 64 << 20, zstd.SpeedFastest, 4 << 20},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, calcZstdWindowSize(tc.n, tc.level))
		})
	}
}
