// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package rec

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/DJSchaffner/aoe-rec-tools/support/byteslicereader"

	"github.com/pkg/errors"
)

// headerLengthBias is the fixed amount by which the envelope's header
// length field exceeds the compressed header block's byte length.
const headerLengthBias = 8

// Container is the full on-disk recorded-game file structure.
type Container struct {
	// Checksum is opaque to this codec and round-tripped unmodified.
	Checksum uint32

	// Header is the parsed compressed sub-block.
	Header *Header

	LogVersion uint32

	// Meta is the fixed-size metadata block, round-tripped unmodified.
	// ParseMeta decodes it when a caller wants to look inside.
	Meta []byte

	// Operations is the trailing raw stream of in-game event records.
	Operations []byte

	// rawHeader is the compressed header block exactly as read. It is
	// reused on write while the header is untouched, so an unmodified
	// container writes back byte-identically.
	rawHeader []byte
}

// ParseContainer parses a complete container from data.
//
// The returned Container owns its buffers; data may be reused or discarded
// by the caller.
func ParseContainer(data []byte) (*Container, error) {
	r := &byteslicereader.R{Buffer: data, AlwaysCopy: true}

	var c Container
	headerLength, err := r.Uint32()
	if err != nil {
		return nil, errors.Wrap(err, "reading header length")
	}
	if headerLength < headerLengthBias {
		return nil, errors.Errorf("header length %d out of range", headerLength)
	}
	if c.Checksum, err = r.Uint32(); err != nil {
		return nil, errors.Wrap(err, "reading checksum")
	}
	if c.rawHeader, err = r.Next(int(headerLength) - headerLengthBias); err != nil {
		return nil, errors.Wrapf(err, "reading compressed header (%d bytes)", headerLength-headerLengthBias)
	}
	if c.Header, err = ParseHeader(c.rawHeader, true); err != nil {
		return nil, errors.Wrap(err, "parsing header")
	}
	if c.LogVersion, err = r.Uint32(); err != nil {
		return nil, errors.Wrap(err, "reading log version")
	}
	if c.Meta, err = r.Next(MetaLength); err != nil {
		return nil, errors.Wrapf(err, "reading meta block (%d bytes)", MetaLength)
	}
	if c.Operations, err = r.Next(r.Remaining()); err != nil {
		return nil, errors.Wrap(err, "reading operations")
	}
	return &c, nil
}

// Write serializes the container to w.
//
// The header length field is always recomputed from the compressed header
// block being written; the value read at parse time is never trusted once
// the header may have been mutated.
func (c *Container) Write(w io.Writer) error {
	raw := c.rawHeader
	if c.Header.dirty || raw == nil {
		var err error
		if raw, err = c.Header.Pack(); err != nil {
			return err
		}
	}

	var scratch [4]byte
	binary.LittleEndian.PutUint32(scratch[:], uint32(len(raw)+headerLengthBias))
	if _, err := w.Write(scratch[:]); err != nil {
		return errors.Wrap(err, "writing header length")
	}
	binary.LittleEndian.PutUint32(scratch[:], c.Checksum)
	if _, err := w.Write(scratch[:]); err != nil {
		return errors.Wrap(err, "writing checksum")
	}
	if _, err := w.Write(raw); err != nil {
		return errors.Wrap(err, "writing compressed header")
	}
	binary.LittleEndian.PutUint32(scratch[:], c.LogVersion)
	if _, err := w.Write(scratch[:]); err != nil {
		return errors.Wrap(err, "writing log version")
	}
	if _, err := w.Write(c.Meta); err != nil {
		return errors.Wrap(err, "writing meta block")
	}
	if _, err := w.Write(c.Operations); err != nil {
		return errors.Wrap(err, "writing operations")
	}
	return nil
}

// Bytes serializes the container into a new buffer.
func (c *Container) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := c.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
