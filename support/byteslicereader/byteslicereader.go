// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package byteslicereader offers R, a slice-backed reader for fixed-layout
// binary regions.
//
// Standard io.Reader methods require that data be copied into a target
// buffer. R's Next method instead returns slices of the underlying buffer,
// which is efficient but means the returned data is only valid as long as
// the buffer is, and writes to it are visible to other holders. Setting
// AlwaysCopy decouples returned slices from the backing buffer.
//
// Unlike an io.Reader, short reads are never silently returned: every
// slice or scalar method either yields exactly what was asked for or fails
// with io.ErrUnexpectedEOF. A truncated fixed field means the file is not
// well-formed.
package byteslicereader

import (
	"encoding/binary"
	"io"
)

// R reads scalar and byte-range values from a backing byte slice.
//
// R can act like an io.Reader and io.ByteReader, allowing it to interface
// with other APIs at the expense of introducing data copying.
type R struct {
	// Buffer is the backing buffer for this reader.
	Buffer []byte

	// AlwaysCopy, if true, causes Next and StringZ to return copies of their
	// backing data instead of direct references, so that the returned data
	// is owned by the caller.
	AlwaysCopy bool

	// pos is the R's position within Buffer.
	pos int
}

var _ interface {
	io.Reader
	io.ByteReader
} = (*R)(nil)

// Remaining returns the number of unread bytes.
func (r *R) Remaining() int {
	if r.pos >= len(r.Buffer) {
		return 0
	}
	return len(r.Buffer) - r.pos
}

// Read implements io.Reader. Note that Read copies data.
func (r *R) Read(b []byte) (int, error) {
	if r.pos >= len(r.Buffer) {
		return 0, io.EOF
	}
	amt := copy(b, r.Buffer[r.pos:])
	r.pos += amt
	if r.pos >= len(r.Buffer) {
		return amt, io.EOF
	}
	return amt, nil
}

// ReadByte implements io.ByteReader.
func (r *R) ReadByte() (byte, error) {
	if r.pos >= len(r.Buffer) {
		return 0, io.EOF
	}
	b := r.Buffer[r.pos]
	r.pos++
	return b, nil
}

// Next returns the next n bytes, advancing r.
//
// Next is zero-copy, returning a slice of the underlying buffer, unless
// AlwaysCopy is set. If fewer than n bytes remain, Next returns nil and
// io.ErrUnexpectedEOF without advancing.
func (r *R) Next(n int) ([]byte, error) {
	if n < 0 || n > r.Remaining() {
		return nil, io.ErrUnexpectedEOF
	}

	v := r.Buffer[r.pos : r.pos+n]
	if r.AlwaysCopy {
		v = append([]byte(nil), v...)
	}
	r.pos += n
	return v, nil
}

// Uint16 reads a little-endian 16-bit value.
func (r *R) Uint16() (uint16, error) {
	v, err := r.Next(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(v), nil
}

// Uint32 reads a little-endian 32-bit value.
func (r *R) Uint32() (uint32, error) {
	v, err := r.Next(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(v), nil
}

// StringZ reads bytes up to, but not including, the next NUL byte, and
// positions r immediately after that NUL.
//
// Like Next, the returned slice references the backing buffer unless
// AlwaysCopy is set. If no NUL remains, StringZ fails with
// io.ErrUnexpectedEOF.
func (r *R) StringZ() ([]byte, error) {
	for i := r.pos; i < len(r.Buffer); i++ {
		if r.Buffer[i] == 0 {
			v, err := r.Next(i - r.pos)
			if err != nil {
				return nil, err
			}
			r.pos++ // consume the NUL
			return v, nil
		}
	}
	return nil, io.ErrUnexpectedEOF
}
