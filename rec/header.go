// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package rec

import (
	"bytes"
	"io"

	"github.com/DJSchaffner/aoe-rec-tools/support/byteslicereader"

	"github.com/klauspost/compress/flate"
	"github.com/lunixbochs/struc"
	"github.com/pkg/errors"
)

// Scalars is the fixed numeric prefix that follows the header's
// NUL-terminated version signature. Field semantics beyond byte layout are
// the game engine's business; values are carried through unmodified.
type Scalars struct {
	Checker         float32   `struc:"float32,little"`
	VersionMinor    uint16    `struc:"uint16,little"`
	VersionMajor    uint16    `struc:"uint16,little"`
	GameVersion     float32   `struc:"float32,little"`
	Build           uint32    `struc:"uint32,little"`
	Timestamp       int32     `struc:"int32,little"`
	Version         [2]uint16 `struc:",little"`
	InternalVersion [2]uint16 `struc:",little"`
}

// Header is the container's compressed sub-block holding lobby, player and
// game setup data.
//
// Payload is everything past the scalar prefix: lobby settings, AI config,
// replay metadata, map info, and one variable-length record per player. It
// has no complete schema; the anonymize package locates the sub-regions it
// understands by byte signature.
type Header struct {
	// Signature is the version string opening the header, stored without
	// its terminating NUL.
	Signature []byte

	Scalars

	// Payload is the opaque remainder of the decompressed header.
	Payload []byte

	// dirty is set once the header has been mutated, telling the container
	// that its cached compressed block is stale.
	dirty bool
}

// ParseHeader parses a Header from data.
//
// If compressed is true, data is first inflated as a headerless raw deflate
// stream (no zlib wrapper, no trailing checksum).
func ParseHeader(data []byte, compressed bool) (*Header, error) {
	if compressed {
		var err error
		if data, err = inflate(data); err != nil {
			return nil, err
		}
	}

	r := &byteslicereader.R{Buffer: data, AlwaysCopy: true}

	var h Header
	var err error
	if h.Signature, err = r.StringZ(); err != nil {
		return nil, errors.Wrap(err, "reading header signature")
	}
	if err := struc.Unpack(r, &h.Scalars); err != nil {
		return nil, errors.Wrap(err, "unpacking header scalars")
	}
	if h.Payload, err = r.Next(r.Remaining()); err != nil {
		return nil, errors.Wrap(err, "reading header payload")
	}
	return &h, nil
}

// Pack serializes and deflate-compresses the header.
//
// The output is a raw deflate stream, as the game engine expects. The
// compression level is not part of the format contract: packed output must
// decompress to the same bytes, not byte-match any prior compressed block.
func (h *Header) Pack() ([]byte, error) {
	raw, err := h.encode()
	if err != nil {
		return nil, err
	}
	return deflateBytes(raw)
}

// SetPayload replaces the header's opaque payload and marks the header
// dirty so that the container recompresses it on write.
func (h *Header) SetPayload(payload []byte) {
	h.Payload = payload
	h.dirty = true
}

func (h *Header) encode() ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(h.Signature)
	buf.WriteByte(0)
	if err := struc.Pack(&buf, &h.Scalars); err != nil {
		return nil, errors.Wrap(err, "packing header scalars")
	}
	buf.Write(h.Payload)
	return buf.Bytes(), nil
}

func inflate(data []byte) ([]byte, error) {
	fr := flate.NewReader(bytes.NewReader(data))
	defer fr.Close()

	out, err := io.ReadAll(fr)
	if err != nil {
		return nil, errors.Wrap(err, "inflating header block")
	}
	return out, nil
}

func deflateBytes(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	fw, err := flate.NewWriter(&buf, flate.DefaultCompression)
	if err != nil {
		return nil, errors.Wrap(err, "creating deflate writer")
	}
	if _, err := fw.Write(data); err != nil {
		return nil, errors.Wrap(err, "deflating header block")
	}
	if err := fw.Close(); err != nil {
		return nil, errors.Wrap(err, "finishing deflate stream")
	}
	return buf.Bytes(), nil
}
