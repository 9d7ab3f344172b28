// Copyright 2026 The Punchlist Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"testing"
)

// sampleClaims is a representative token payload using cbor keyasint
// struct tags (the convention for signed internal types, where small
// integer keys keep the signed payload compact).
type sampleClaims struct {
	Subject   string `cbor:"1,keyasint"`
	Audience  string `cbor:"2,keyasint,omitempty"`
	ExpiresAt int64  `cbor:"3,keyasint"`
}

func TestMarshalUnmarshalRoundtrip(t *testing.T) {
	original := sampleClaims{
		Subject:   "user-7f3a",
		Audience:  "punchlist",
		ExpiresAt: 1790000000,
	}

	data, err := Marshal(original)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	if len(data) == 0 {
		t.Fatal("Marshal produced empty output")
	}

	var decoded sampleClaims
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if decoded != original {
		t.Errorf("roundtrip mismatch: got %+v, want %+v", decoded, original)
	}
}

func TestMarshalDeterministic(t *testing.T) {
	claims := sampleClaims{
		Subject:   "user-7f3a",
		Audience:  "punchlist",
		ExpiresAt: 1790000000,
	}

	first, err := Marshal(claims)
	if err != nil {
		t.Fatalf("first Marshal: %v", err)
	}

	second, err := Marshal(claims)
	if err != nil {
		t.Fatalf("second Marshal: %v", err)
	}

	if !bytes.Equal(first, second) {
		t.Errorf("deterministic encoding violated: %x != %x", first, second)
	}
}

func TestOmitemptyRespected(t *testing.T) {
	// A zero-value omitempty field should not appear in output.
	withAudience := sampleClaims{Subject: "a", Audience: "x", ExpiresAt: 1}
	withoutAudience := sampleClaims{Subject: "a", ExpiresAt: 1}

	dataWith, err := Marshal(withAudience)
	if err != nil {
		t.Fatal(err)
	}
	dataWithout, err := Marshal(withoutAudience)
	if err != nil {
		t.Fatal(err)
	}

	// The encoding without the audience field should be shorter
	// because the omitted field is not present.
	if len(dataWithout) >= len(dataWith) {
		t.Errorf("omitempty not effective: without=%d bytes, with=%d bytes",
			len(dataWithout), len(dataWith))
	}
}

func TestUnmarshalInvalidCBOR(t *testing.T) {
	var claims sampleClaims
	err := Unmarshal([]byte{0xFF, 0xFE, 0xFD}, &claims)
	if err == nil {
		t.Error("Unmarshal should reject invalid CBOR")
	}
}

func TestAnyTargetDecodesToStringKeyedMap(t *testing.T) {
	data, err := Marshal(map[string]any{"subject": "user-7f3a"})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded any
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	asMap, ok := decoded.(map[string]any)
	if !ok {
		t.Fatalf("decoded type = %T, want map[string]any", decoded)
	}
	if asMap["subject"] != "user-7f3a" {
		t.Errorf("subject = %v, want user-7f3a", asMap["subject"])
	}
}

func BenchmarkMarshal(b *testing.B) {
	claims := sampleClaims{
		Subject:   "user-7f3a",
		Audience:  "punchlist",
		ExpiresAt: 1790000000,
	}

	b.ReportAllocs()
	for b.Loop() {
		Marshal(claims)
	}
}
