// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ans104

import (
	"errors"
	"testing"
)

func TestSignatureTable(t *testing.T) {
	tests := []struct {
		signatureType   SignatureType
		name            string
		signatureLength int
		publicKeyLength int
	}{
		{SignatureArweave, "arweave", 512, 512},
		{SignatureED25519, "ed25519", 64, 32},
		{SignatureEthereum, "ethereum", 65, 65},
		{SignatureSolana, "solana", 64, 32},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := test.signatureType.String(); got != test.name {
				t.Errorf("String() = %q, want %q", got, test.name)
			}
			if got := test.signatureType.SignatureLength(); got != test.signatureLength {
				t.Errorf("SignatureLength() = %d, want %d", got, test.signatureLength)
			}
			if got := test.signatureType.PublicKeyLength(); got != test.publicKeyLength {
				t.Errorf("PublicKeyLength() = %d, want %d", got, test.publicKeyLength)
			}
			if !test.signatureType.Supported() {
				t.Error("Supported() = false")
			}
		})
	}
}

func TestUnknownSignatureType(t *testing.T) {
	for _, value := range []uint16{0, 5, 6, 0xffff} {
		signatureType := SignatureType(value)
		if signatureType.Supported() {
			t.Errorf("type %d reported as supported", value)
		}
		if _, err := lookupScheme(signatureType); !errors.Is(err, ErrUnsupportedSignature) {
			t.Errorf("lookupScheme(%d) error = %v, want ErrUnsupportedSignature", value, err)
		}
	}
	if got := SignatureType(5).String(); got != "unknown(5)" {
		t.Errorf("String() = %q, want %q", got, "unknown(5)")
	}
}
