// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package benchmark

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/ikmak/dbson/bson"
)

func encodingCase(ctx context.Context, tm TimerManager, iters int, doc bson.D) error {
	tm.ResetTimer()

	for i := 0; i < iters; i++ {
		out, err := bson.Serialize(doc)
		if err != nil {
			return err
		}
		if len(out) == 0 {
			return errors.New("encoding error")
		}
	}

	return nil
}

func decodingCase(ctx context.Context, tm TimerManager, iters int, doc bson.D) error {
	raw, err := bson.Serialize(doc)
	if err != nil {
		return err
	}

	tm.ResetTimer()

	for i := 0; i < iters; i++ {
		out, err := bson.Deserialize(raw)
		if err != nil {
			return err
		}
		d, ok := out.(bson.D)
		if !ok || len(d) != len(doc) {
			return fmt.Errorf("decoding error: got %d keys, want %d", len(d), len(doc))
		}
	}

	return nil
}

func FlatDocumentEncoding(ctx context.Context, tm TimerManager, iters int) error {
	return encodingCase(ctx, tm, iters, FlatDocument())
}

func FlatDocumentDecoding(ctx context.Context, tm TimerManager, iters int) error {
	return decodingCase(ctx, tm, iters, FlatDocument())
}

func DeepDocumentEncoding(ctx context.Context, tm TimerManager, iters int) error {
	return encodingCase(ctx, tm, iters, DeepDocument())
}

func DeepDocumentDecoding(ctx context.Context, tm TimerManager, iters int) error {
	return decodingCase(ctx, tm, iters, DeepDocument())
}

func FullDocumentEncoding(ctx context.Context, tm TimerManager, iters int) error {
	return encodingCase(ctx, tm, iters, FullDocument())
}

func FullDocumentDecoding(ctx context.Context, tm TimerManager, iters int) error {
	return decodingCase(ctx, tm, iters, FullDocument())
}

// ParallelRoundTrip splits iters round trips of the flat document across
// GOMAXPROCS goroutines sharing one input tree.
func ParallelRoundTrip(ctx context.Context, tm TimerManager, iters int) error {
	doc := FlatDocument()
	var remaining int64 = int64(iters)

	tm.ResetTimer()

	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < runtime.GOMAXPROCS(0); w++ {
		g.Go(func() error {
			for atomic.AddInt64(&remaining, -1) >= 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
				raw, err := bson.Serialize(doc)
				if err != nil {
					return err
				}
				out, err := bson.Deserialize(raw)
				if err != nil {
					return err
				}
				if !bson.Equal(doc, out) {
					return errors.New("round trip mismatch")
				}
			}
			return nil
		})
	}

	return g.Wait()
}
