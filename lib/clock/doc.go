// Copyright 2026 The Punchlist Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time abstraction for testability.
//
// Production code accepts a Clock interface parameter instead of
// calling time.Now directly. In production, Real() provides the
// standard library behavior. In tests, Fake() provides a deterministic
// clock that advances only when Advance is called.
//
// # Wiring Pattern
//
// Add a Clock field to structs that stamp records with the current
// time:
//
//	type Store struct {
//	    clock clock.Clock
//	    // ...
//	}
//
// In production:
//
//	s := &Store{clock: clock.Real()}
//
// In tests:
//
//	c := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	s := &Store{clock: c}
//	// ... exercise s ...
//	c.Advance(5 * time.Second) // the next write sees a later time
//
// An update performed after Advance carries a strictly greater
// timestamp than the write before it, without any wall-clock sleeping.
package clock
