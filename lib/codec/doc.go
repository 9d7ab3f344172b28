// Copyright 2026 The Punchlist Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the standard CBOR encoding configuration.
//
// Punchlist uses two serialization formats with a clear boundary:
//
//   - JSON for the external HTTP interface: request bodies, response
//     envelopes, and seed fixtures.
//   - CBOR for bearer token payloads, where a compact, deterministic
//     signed representation matters.
//
// This package provides the shared CBOR encoding and decoding modes so
// that every package encodes identically without duplicating
// configuration. The encoder uses Core Deterministic Encoding (RFC
// 8949 §4.2): sorted map keys, smallest integer encoding, no
// indefinite-length items. Same logical data always produces identical
// bytes — the property Ed25519 signatures over encoded payloads rely on.
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//
// Token payload types use `cbor` keyasint tags: integer map keys keep
// the signed payload small. The wire encoding is always CBOR; JSON
// renderings of those types are operator display only.
package codec
