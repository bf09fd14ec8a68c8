// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package anonymize

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"regexp"
	"strconv"
	"unicode/utf8"

	"github.com/DJSchaffner/aoe-rec-tools/support/bytepatch"
	"github.com/DJSchaffner/aoe-rec-tools/support/logging"

	"github.com/pkg/errors"
)

// chatSentinel marks a chat operation in the operations stream: the
// operation type (4) followed by a -1 marker. The record proper begins
// eight bytes before the sentinel and a little-endian u16 payload length
// (padded to four bytes with zeros) follows it.
var chatSentinel = []byte{0x04, 0x00, 0x00, 0x00, 0xFF, 0xFF, 0xFF, 0xFF}

const (
	// chatPreambleLen is the number of record bytes preceding the sentinel.
	chatPreambleLen = 8

	// chatHeaderLen spans the eight sentinel bytes plus the padded length
	// field.
	chatHeaderLen = 12
)

var (
	// chatPlayerPattern pulls the speaking player's id out of the payload's
	// embedded JSON-like structure.
	chatPlayerPattern = regexp.MustCompile(`"player":(\d)`)

	// chatNameMarker anchors the display name inside the messageAGP field:
	// an @#NN color marker, optionally followed by a platform icon tag.
	// The icon tag never opens with a digit, which keeps it distinct from
	// the numeric routing tag of system messages.
	chatNameMarker = regexp.MustCompile(`@#\d+(?:<[^0-9>][^>]*>)?`)

	// chatSystemTag is the numeric routing tag carried only by
	// system-generated messages; its first field is the player id.
	chatSystemTag = regexp.MustCompile(`<(\d+),\d+,0`)
)

// RewriteChat scans the operations stream for chat records and rewrites or
// drops them according to policy, returning the edited copy. The input
// slice is not modified.
//
// A retained record's display name is replaced with "player N", where N is
// the id embedded in the record's own payload; the record's length prefix
// is updated and all subsequent bytes shift by the size delta. A payload
// with no embedded player id is fatal. A payload that cannot be textually
// edited (bad encoding,
// missing name markers) is recoverable: the record is left unedited and a
// warning is emitted.
func RewriteChat(ops []byte, policy ChatPolicy, log logging.L) ([]byte, error) {
	log = logging.Must(log)

	data := append([]byte(nil), ops...)
	pos := 0
	for {
		j := bytes.Index(data[pos:], chatSentinel)
		if j < 0 {
			return data, nil
		}
		s := pos + j

		// The record needs its preamble and a complete, zero-padded length
		// field; anything else is a stray byte pattern, not a chat record.
		if s < chatPreambleLen || s+chatHeaderLen > len(data) ||
			data[s+10] != 0 || data[s+11] != 0 {
			pos = s + 1
			continue
		}
		length := int(binary.LittleEndian.Uint16(data[s+8:]))
		if s+chatHeaderLen+length > len(data) {
			pos = s + 1
			continue
		}

		start := s - chatPreambleLen
		span := chatPreambleLen + chatHeaderLen + length
		payload := data[s+chatHeaderLen : s+chatHeaderLen+length]

		if policy.dropAll() {
			data = bytepatch.Cut(data, start, span)
			chatDropped.Inc()
			pos = start
			continue
		}

		id, err := chatPlayerID(payload)
		if err != nil {
			return nil, errors.Wrapf(err, "chat record at %d", start)
		}

		system := findSystemTag(payload, id) != nil
		if (system && !policy.KeepSystem) || (!system && !policy.KeepPlayer) {
			data = bytepatch.Cut(data, start, span)
			chatDropped.Inc()
			pos = start
			continue
		}

		edited, err := rewriteChatPayload(payload, id, system)
		if err != nil {
			log.Warnf("chat record at %d left unedited: %v", start, err)
			chatSkipped.Inc()
			pos = s + 1
			continue
		}
		log.Debugf("rewrote chat record for player %d", id)

		patch := bytepatch.Patch{
			Pos:         s + len(chatSentinel),
			Len:         4 + length,
			Replacement: chatRecordTail(edited),
		}
		data = patch.Apply(data)
		chatRewritten.Inc()

		// The sentinel itself did not move; resume past it so the next
		// search sees every later record exactly once.
		pos = s + 1
	}
}

func chatPlayerID(payload []byte) (int, error) {
	m := chatPlayerPattern.FindSubmatch(payload)
	if m == nil {
		return 0, errors.Wrap(ErrStructureNotFound, "embedded player id")
	}
	return int(m[1][0] - '0'), nil
}

// findSystemTag returns the match indexes of the routing tag carrying the
// given player id, or nil. Player-typed chat carries no such tag.
func findSystemTag(payload []byte, id int) []int {
	for _, m := range chatSystemTag.FindAllSubmatchIndex(payload, -1) {
		if string(payload[m[2]:m[3]]) == strconv.Itoa(id) {
			return m[:2]
		}
	}
	return nil
}

// rewriteChatPayload replaces the display name embedded in a retained chat
// payload, returning an edited copy.
//
// Player messages read "@#NN[icon]Name: text"; the bytes between the marker
// and the ": " terminator (inclusive) become "player N: ". System messages
// read "@#NN[icon]Name<id,n,0..."; the bytes between the marker and the
// routing tag become "player N" with no trailing separator.
func rewriteChatPayload(payload []byte, id int, system bool) ([]byte, error) {
	if !utf8.Valid(payload) {
		return nil, errors.Wrapf(ErrChatEncoding, "player %d", id)
	}

	m := chatNameMarker.FindIndex(payload)
	if m == nil {
		return nil, errors.New("name marker not found")
	}

	out := append([]byte(nil), payload...)
	if system {
		tag := findSystemTag(payload, id)
		if tag == nil || tag[0] < m[1] {
			return nil, errors.New("system routing tag not found past name marker")
		}
		patch := bytepatch.Patch{
			Pos:         m[1],
			Len:         tag[0] - m[1],
			Replacement: []byte(fmt.Sprintf("player %d", id)),
		}
		return patch.Apply(out), nil
	}

	k := bytes.Index(payload[m[1]:], []byte(": "))
	if k < 0 {
		return nil, errors.New("name terminator not found")
	}
	patch := bytepatch.Patch{
		Pos:         m[1],
		Len:         k + 2,
		Replacement: []byte(fmt.Sprintf("player %d: ", id)),
	}
	return patch.Apply(out), nil
}

// chatRecordTail re-encodes a record's padded length field and payload.
func chatRecordTail(payload []byte) []byte {
	out := make([]byte, 4, 4+len(payload))
	binary.LittleEndian.PutUint16(out, uint16(len(payload)))
	return append(out, payload...)
}
