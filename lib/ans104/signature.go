// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ans104

import "fmt"

// SignatureType identifies the signature scheme of a data item. The
// scheme fixes the byte lengths of the signature and owner fields.
// These values are protocol constants.
type SignatureType uint16

const (
	// SignatureArweave is RSA-PSS with a 4096-bit Arweave wallet key.
	SignatureArweave SignatureType = 1

	// SignatureED25519 is a raw Ed25519 signature.
	SignatureED25519 SignatureType = 2

	// SignatureEthereum is secp256k1 with an uncompressed public key.
	SignatureEthereum SignatureType = 3

	// SignatureSolana is Ed25519 over a Solana wallet key.
	SignatureSolana SignatureType = 4
)

// signatureScheme is one row of the fixed signature table.
type signatureScheme struct {
	name            string
	signatureLength int
	publicKeyLength int
}

var signatureSchemes = map[SignatureType]signatureScheme{
	SignatureArweave:  {name: "arweave", signatureLength: 512, publicKeyLength: 512},
	SignatureED25519:  {name: "ed25519", signatureLength: 64, publicKeyLength: 32},
	SignatureEthereum: {name: "ethereum", signatureLength: 65, publicKeyLength: 65},
	SignatureSolana:   {name: "solana", signatureLength: 64, publicKeyLength: 32},
}

// lookupScheme returns the table row for signatureType or an
// ErrUnsupportedSignature error.
func lookupScheme(signatureType SignatureType) (signatureScheme, error) {
	scheme, ok := signatureSchemes[signatureType]
	if !ok {
		return signatureScheme{}, fmt.Errorf("signature type %d: %w", uint16(signatureType), ErrUnsupportedSignature)
	}
	return scheme, nil
}

// String returns the scheme name ("arweave", "ed25519", ...).
func (signatureType SignatureType) String() string {
	if scheme, ok := signatureSchemes[signatureType]; ok {
		return scheme.name
	}
	return fmt.Sprintf("unknown(%d)", uint16(signatureType))
}

// SignatureLength returns the signature byte length for a known
// type, or 0.
func (signatureType SignatureType) SignatureLength() int {
	return signatureSchemes[signatureType].signatureLength
}

// PublicKeyLength returns the owner public key byte length for a
// known type, or 0.
func (signatureType SignatureType) PublicKeyLength() int {
	return signatureSchemes[signatureType].publicKeyLength
}

// Supported reports whether signatureType is in the signature table.
func (signatureType SignatureType) Supported() bool {
	_, ok := signatureSchemes[signatureType]
	return ok
}
