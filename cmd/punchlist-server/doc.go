// Copyright 2026 The Punchlist Authors
// SPDX-License-Identifier: Apache-2.0

// Punchlist-server is the multi-tenant to-do backend. It serves the
// item API over JSON/HTTP, verifies bearer tokens minted by the
// identity provider, and stores items in a local SQLite database keyed
// by (owner, id) so that every caller sees only their own items.
//
// # Startup
//
// Configuration comes from a YAML file named either by --config or by
// the PUNCHLIST_CONFIG environment variable; --listen overrides the
// configured bind address. The server loads the provider's Ed25519
// public key from public_key_path, opens the item store, and serves
// until SIGINT or SIGTERM, then drains in-flight requests for the
// configured shutdown timeout.
//
// # Seeding
//
// --seed loads a JSONC fixture of items into the store before the
// listener starts. Entries carry owner and title plus optional id,
// description, and status; entries with a fixed id are idempotent
// across restarts. Any malformed entry aborts startup. The flag exists
// for development and demo databases, not production.
//
// # HTTP API
//
//   - POST   /todos       (authenticated): create an item
//   - GET    /todos       (authenticated): list the caller's items
//   - PUT    /todos/{id}  (authenticated): partially update an item
//   - DELETE /todos/{id}  (authenticated): delete an item
//   - OPTIONS any path    : CORS preflight
//   - GET    /healthz     : liveness
//   - GET    /statusz     : uptime and item count
package main
