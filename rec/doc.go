// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package rec implements the codec for recorded-game container files.
//
// A container is a flat envelope: a length-prefixed, deflate-compressed
// header block, a log version scalar, a fixed-size metadata block, and a
// trailing raw operations stream. Only the envelope and the header's fixed
// scalar prefix have a full schema; the header's remaining payload (lobby
// settings, AI config, map info, per-player init records) is carried as an
// opaque byte blob that the anonymize package edits by byte signature.
//
// The envelope checksum and metadata block are round-tripped byte-for-byte
// and never interpreted; Meta offers a decoded view of the latter for
// diagnostics only.
package rec
