// Copyright 2026 The Punchlist Authors
// SPDX-License-Identifier: Apache-2.0

package identity

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeTestFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

func TestSaveAndLoadKeypair(t *testing.T) {
	public, private := testKeypair(t)

	prefix := filepath.Join(t.TempDir(), "signing")
	if err := SaveKeypair(prefix, public, private); err != nil {
		t.Fatalf("SaveKeypair: %v", err)
	}

	loadedPublic, err := LoadPublicKey(prefix + ".pub")
	if err != nil {
		t.Fatalf("LoadPublicKey: %v", err)
	}
	if !loadedPublic.Equal(public) {
		t.Error("loaded public key differs from saved key")
	}

	loadedPrivate, err := LoadPrivateKey(prefix + ".key")
	if err != nil {
		t.Fatalf("LoadPrivateKey: %v", err)
	}
	if !loadedPrivate.Equal(private) {
		t.Error("loaded private key differs from saved key")
	}

	// A token minted with the loaded private key verifies against
	// the loaded public key.
	encoded, err := Mint(loadedPrivate, &Token{
		Subject:  "user-7f3a",
		Audience: "punchlist",
		IssuedAt: time.Now().Unix(),
	})
	if err != nil {
		t.Fatalf("Mint with loaded key: %v", err)
	}
	if _, err := Verify(loadedPublic, encoded, "punchlist"); err != nil {
		t.Errorf("Verify with loaded key: %v", err)
	}
}

func TestSaveKeypairPermissions(t *testing.T) {
	public, private := testKeypair(t)

	prefix := filepath.Join(t.TempDir(), "signing")
	if err := SaveKeypair(prefix, public, private); err != nil {
		t.Fatalf("SaveKeypair: %v", err)
	}

	info, err := os.Stat(prefix + ".key")
	if err != nil {
		t.Fatalf("stat private key: %v", err)
	}
	if mode := info.Mode().Perm(); mode != 0600 {
		t.Errorf("private key mode = %o, want 0600", mode)
	}

	info, err = os.Stat(prefix + ".pub")
	if err != nil {
		t.Fatalf("stat public key: %v", err)
	}
	if mode := info.Mode().Perm(); mode != 0644 {
		t.Errorf("public key mode = %o, want 0644", mode)
	}
}

func TestLoadPublicKey_WrongSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.pub")
	writeTestFile(t, path, make([]byte, 16))

	_, err := LoadPublicKey(path)
	if err == nil {
		t.Error("LoadPublicKey should reject a truncated key file")
	}
}

func TestLoadPrivateKey_WrongSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.key")
	writeTestFile(t, path, make([]byte, 16))

	_, err := LoadPrivateKey(path)
	if err == nil {
		t.Error("LoadPrivateKey should reject a truncated key file")
	}
}

func TestLoadPublicKey_Missing(t *testing.T) {
	_, err := LoadPublicKey(filepath.Join(t.TempDir(), "absent.pub"))
	if err == nil {
		t.Error("LoadPublicKey should fail for a missing file")
	}
}
