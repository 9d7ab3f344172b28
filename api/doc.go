// Copyright 2026 The Punchlist Authors
// SPDX-License-Identifier: Apache-2.0

// Package api implements the punchlist HTTP surface: four item routes
// (create, list, update, delete), CORS preflight, and two operational
// endpoints (/healthz, /statusz).
//
// [Server] owns the routing table, the middleware chain, and the
// listener lifecycle. Construct one with [NewServer] and call
// [Server.Serve]; it blocks until the context is cancelled and then
// drains in-flight requests. [Server.Ready] and [Server.Addr] support
// tests and port-0 deployments.
//
// Authentication is a bearer token verified against the identity
// provider's public key. The token's verified subject is the owner for
// everything the request does: it is the only owner the handlers ever
// use, and the store keys every row by (owner, id), so a caller cannot
// see or touch another owner's items no matter what the request body
// or URL claims. A miss on another owner's item is reported as 404,
// the same as an item that never existed.
//
// Every error response is the JSON envelope {"message": "..."} with
// one of four statuses: 401 for authentication failures, 400 for
// invalid input (including malformed item ids), 404 for misses, and
// 500 for storage faults. Storage detail is logged, never sent. CORS
// headers are applied outermost so that error responses carry them
// too; without that, a browser surfaces a 401 as an opaque network
// failure instead of a readable error.
package api
