// Copyright (C) MongoDB, Inc. 2022-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package randutil provides the pseudo-random source used for identifier
// generation.
package randutil

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
	"sync"
)

// LockedRand is a pseudo-random source shared by concurrent identifier
// generators.
type LockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewLockedRand returns a LockedRand drawing from src.
func NewLockedRand(src rand.Source) *LockedRand {
	/* #nosec G404 */
	return &LockedRand{r: rand.New(src)}
}

// Uint32s fills dst with pseudo-random values under a single lock, so the
// values of one call are never interleaved with another caller's.
func (lr *LockedRand) Uint32s(dst []uint32) {
	lr.mu.Lock()
	defer lr.mu.Unlock()
	for i := range dst {
		dst[i] = lr.r.Uint32()
	}
}

// CryptoSeed returns a seed read from "crypto/rand". It panics if the reader
// fails.
func CryptoSeed() int64 {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		panic(fmt.Errorf("randutil: reading seed: %w", err))
	}
	return int64(binary.LittleEndian.Uint64(b[:]))
}
