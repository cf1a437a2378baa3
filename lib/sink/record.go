// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sink

import (
	"encoding/base64"
	"encoding/hex"

	"github.com/zeebo/blake3"

	"github.com/bureau-foundation/weavedump/lib/ans104"
)

// Record is the serialized form of one data item. Binary fields are
// unpadded base64url. Target and anchor are null when absent.
//
// Exactly one of Data or DataSize/DataBLAKE3 is set, depending on
// RecordOptions.OmitData.
type Record struct {
	ID             string       `json:"id"`
	SignatureName  string       `json:"signature_name"`
	Signature      string       `json:"signature"`
	OwnerPublicKey string       `json:"owner_public_key"`
	Target         *string      `json:"target"`
	Anchor         *string      `json:"anchor"`
	Tags           []ans104.Tag `json:"tags"`
	Data           *string      `json:"data,omitempty"`
	DataSize       *int         `json:"data_size,omitempty"`
	DataBLAKE3     string       `json:"data_blake3,omitempty"`
}

// RecordOptions controls the projection.
type RecordOptions struct {
	// OmitData replaces the payload with its size and BLAKE3-256
	// digest (hex).
	OmitData bool
}

// NewRecord projects item into a Record.
func NewRecord(item *ans104.DataItem, options RecordOptions) *Record {
	id := item.ID()
	record := &Record{
		ID:             encode(id[:]),
		SignatureName:  item.SignatureType.String(),
		Signature:      encode(item.Signature),
		OwnerPublicKey: encode(item.Owner),
		Target:         optional(item.Target),
		Anchor:         optional(item.Anchor),
		Tags:           item.Tags,
	}
	if record.Tags == nil {
		record.Tags = []ans104.Tag{}
	}

	if options.OmitData {
		size := len(item.Data)
		digest := blake3.Sum256(item.Data)
		record.DataSize = &size
		record.DataBLAKE3 = hex.EncodeToString(digest[:])
	} else {
		data := encode(item.Data)
		record.Data = &data
	}
	return record
}

func encode(data []byte) string {
	return base64.RawURLEncoding.EncodeToString(data)
}

func optional(data []byte) *string {
	if data == nil {
		return nil
	}
	encoded := encode(data)
	return &encoded
}
