// Copyright 2026 The Punchlist Authors
// SPDX-License-Identifier: Apache-2.0

// Punchlist-token manages the signing keys and bearer tokens for a
// punchlist deployment. keygen generates an Ed25519 keypair, mint
// signs a token binding a subject (the item owner) and audience, and
// verify checks a token the same way punchlist-server does and prints
// its claims. Subcommands: keygen, mint, verify.
package main
