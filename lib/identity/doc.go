// Copyright 2026 The Punchlist Authors
// SPDX-License-Identifier: Apache-2.0

// Package identity implements Ed25519-signed bearer tokens for
// authenticating callers to the punchlist service over HTTP.
//
// The identity provider is external: it holds the private key and
// mints tokens. The service holds only the public key and verifies.
// The token's Subject claim is the claimed owner for the request —
// every record the request reads or writes is keyed by it, so
// verification is the sole trust boundary between tenants.
//
// # Wire format
//
// A bearer string is base64url (no padding) over raw bytes: a
// CBOR-encoded payload followed by a 64-byte Ed25519 signature over
// the payload bytes.
//
//	base64url( [CBOR payload bytes] [64-byte Ed25519 signature] )
//
// The split point is always len(raw) - 64. No header, no length
// prefix — the algorithm is fixed and the signature size is constant.
// The CBOR payload uses Core Deterministic Encoding (lib/codec), so
// the bytes that were signed are the bytes that re-encode.
//
// # Verification
//
// Verify checks, in order: base64 shape, signature, payload decode,
// expiry, audience, and non-empty subject. Every failure is a 401 to
// the client; the specific cause is for logs only.
//
// The keypair helpers exist for the operator tool and tests. A
// production deployment generates keys wherever the real identity
// provider lives and hands the service the public half.
package identity
