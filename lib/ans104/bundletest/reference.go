// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bundletest

import (
	"fmt"
	"testing"
)

// Reference bundle shape. The first item mirrors a typical Arweave
// upload: an Arweave-signed item with 18 tags and an 11904-byte body.
const (
	ReferenceItemCount      = 4
	ReferenceFirstTagCount  = 18
	ReferenceFirstDataBytes = 11904
)

// ReferenceItems returns the items of the canonical test bundle: one
// item per signature scheme, the first with ReferenceFirstTagCount
// tags and ReferenceFirstDataBytes of data.
func ReferenceItems() []Item {
	firstTags := make([]Tag, 0, ReferenceFirstTagCount)
	firstTags = append(firstTags,
		Tag{Name: "Content-Type", Value: "application/json"},
		Tag{Name: "App-Name", Value: "SmartWeaveAction"},
		Tag{Name: "App-Version", Value: "0.3.0"},
	)
	for i := len(firstTags); i < ReferenceFirstTagCount; i++ {
		firstTags = append(firstTags, Tag{Name: fmt.Sprintf("Tag-%02d", i), Value: fmt.Sprintf("value %d ✓", i)})
	}

	return []Item{
		{
			SignatureType: 1,
			Anchor:        Filler(0xA0, 32),
			Tags:          firstTags,
			Data:          Filler(0x11, ReferenceFirstDataBytes),
		},
		{
			SignatureType: 2,
			Target:        Filler(0xB0, 32),
			Tags:          []Tag{{Name: "Content-Type", Value: "text/plain"}},
			Data:          []byte("hello from ed25519"),
		},
		{
			SignatureType: 3,
			Target:        Filler(0xC0, 32),
			Anchor:        Filler(0xC1, 32),
			Tags: []Tag{
				{Name: "Type", Value: "dup"},
				{Name: "Type", Value: "dup"},
			},
			Data: Filler(0x33, 4096),
		},
		{
			SignatureType: 4,
			Data:          nil,
		},
	}
}

// Reference returns the encoded canonical test bundle.
func Reference(t testing.TB) []byte {
	t.Helper()
	return Build(t, ReferenceItems()...)
}
