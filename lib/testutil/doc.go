// Copyright 2026 The Punchlist Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for punchlist packages.
//
// [RequireReceive] and [RequireClosed] encapsulate the timeout safety
// valve pattern (select with time.After fallback) so that individual
// tests do not need direct time.After calls. These are the only place
// in the test suite where real wall-clock timeouts are used; everything
// else goes through [github.com/punchlist-io/punchlist/lib/clock].
//
// [UniqueID] generates monotonically increasing identifiers for test
// disambiguation. Use it instead of time.Now() when tests need unique
// owners or item titles distinguishable in a shared store.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
//
// This package has no punchlist-internal dependencies.
package testutil
