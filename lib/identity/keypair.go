// Copyright 2026 The Punchlist Authors
// SPDX-License-Identifier: Apache-2.0

package identity

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"
	"os"
)

// GenerateKeypair creates a new Ed25519 keypair for token signing.
func GenerateKeypair() (ed25519.PublicKey, ed25519.PrivateKey, error) {
	public, private, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, nil, fmt.Errorf("generating Ed25519 keypair: %w", err)
	}
	return public, private, nil
}

// SaveKeypair writes an Ed25519 keypair next to each other:
// <prefix>.key holds the private key with 0600 permissions,
// <prefix>.pub holds the public key with 0644.
func SaveKeypair(prefix string, public ed25519.PublicKey, private ed25519.PrivateKey) error {
	if err := os.WriteFile(prefix+".key", private, 0600); err != nil {
		return fmt.Errorf("writing private key: %w", err)
	}
	if err := os.WriteFile(prefix+".pub", public, 0644); err != nil {
		return fmt.Errorf("writing public key: %w", err)
	}
	return nil
}

// LoadPublicKey reads an Ed25519 public key from path. Returns an
// error if the file is missing or has an unexpected size. This is the
// only key material the service itself ever holds — minting stays
// with the identity provider.
func LoadPublicKey(path string) (ed25519.PublicKey, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading public key: %w", err)
	}
	if len(raw) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("public key has %d bytes, want %d", len(raw), ed25519.PublicKeySize)
	}
	return ed25519.PublicKey(raw), nil
}

// LoadPrivateKey reads an Ed25519 private key from path. Returns an
// error if the file is missing or has an unexpected size.
func LoadPrivateKey(path string) (ed25519.PrivateKey, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading private key: %w", err)
	}
	if len(raw) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("private key has %d bytes, want %d", len(raw), ed25519.PrivateKeySize)
	}
	return ed25519.PrivateKey(raw), nil
}
