// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package rec

import (
	"bytes"

	"github.com/lunixbochs/struc"
	"github.com/pkg/errors"
)

// MetaLength is the byte length of the container's fixed metadata block:
// seven fields, 4-byte integers and 1-byte booleans each padded to 4-byte
// alignment.
const MetaLength = 28

// Meta is a decoded view of the container's metadata block.
//
// The container itself round-trips the raw block byte-for-byte; Meta is
// informational only and is never written back.
type Meta struct {
	ChecksumInterval   uint32  `struc:"uint32,little"`
	Multiplayer        bool    `struc:"bool"`
	Pad0               [3]byte `struc:"[3]pad"`
	RecOwner           uint32  `struc:"uint32,little"`
	RevealMap          bool    `struc:"bool"`
	Pad1               [3]byte `struc:"[3]pad"`
	UseSequenceNumbers uint32  `struc:"uint32,little"`
	NumberOfChapters   uint32  `struc:"uint32,little"`
	AokOrDe            uint32  `struc:"uint32,little"`
}

// ParseMeta decodes a container's metadata block.
func ParseMeta(data []byte) (*Meta, error) {
	if len(data) < MetaLength {
		return nil, errors.Errorf("meta block too short: %d bytes, need %d", len(data), MetaLength)
	}

	var m Meta
	if err := struc.Unpack(bytes.NewReader(data), &m); err != nil {
		return nil, errors.Wrap(err, "unpacking meta block")
	}
	return &m, nil
}
