// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package bytepatch implements in-place byte-range substitution on a
// mutable buffer.
//
// A Patch describes one substitution. Applying a Patch whose replacement
// differs in size from the removed range shifts every subsequent byte, so
// any offset cached from before the edit is invalid afterwards; callers
// must recompute their cursors against the returned buffer.
package bytepatch

// Patch describes a byte-range substitution: Len bytes at Pos are removed
// and Replacement is inserted in their place.
type Patch struct {
	// Pos is the byte offset of the start of the replaced range.
	Pos int

	// Len is the number of bytes removed from the buffer.
	Len int

	// Replacement is inserted at Pos. It may be empty (pure deletion) and
	// may differ in length from Len.
	Replacement []byte
}

// Delta returns the change in buffer length that applying p causes.
func (p *Patch) Delta() int { return len(p.Replacement) - p.Len }

// Apply splices p into buf and returns the resulting buffer.
//
// The returned slice may share backing storage with buf; buf must not be
// used after Apply returns.
func (p *Patch) Apply(buf []byte) []byte {
	if p.Delta() == 0 {
		copy(buf[p.Pos:p.Pos+p.Len], p.Replacement)
		return buf
	}

	out := make([]byte, 0, len(buf)+p.Delta())
	out = append(out, buf[:p.Pos]...)
	out = append(out, p.Replacement...)
	out = append(out, buf[p.Pos+p.Len:]...)
	return out
}

// Cut removes the range [pos, pos+n) from buf.
func Cut(buf []byte, pos, n int) []byte {
	return append(buf[:pos], buf[pos+n:]...)
}
