// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package anonymize

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/DJSchaffner/aoe-rec-tools/support/bytepatch"
	"github.com/DJSchaffner/aoe-rec-tools/support/logging"

	"github.com/pkg/errors"
)

// Signatures anchored in the decompressed header payload. All of these are
// reverse-engineered from observed files rather than a published schema.
var (
	// lobbySeparator delimits sections of the lobby settings. The player
	// count trails the second of two consecutive occurrences.
	lobbySeparator = []byte{0xA3, 0x5F, 0x02, 0x00}

	// playerRecordPrefix opens a player's name+profile record in the lobby
	// settings region.
	playerRecordPrefix = []byte{0x60, 0x0A}

	// profileSeparator sits between a player's name and profile id.
	profileSeparator = []byte{0x02, 0x00, 0x00, 0x00}
)

// lobbySettingsWindow bounds the player record scan. Lobby settings never
// extend past this payload offset in observed files.
const lobbySettingsWindow = 0x330

// PlayerCount extracts the player count from a decompressed header payload.
//
// The count sits behind a doubled lobby separator, past three fields this
// codec does not use (game speed, treaty length, population limit). Its
// absence is fatal to the whole anonymization pass: every player-scoped
// edit depends on the count.
func PlayerCount(payload []byte) (int, error) {
	doubled := append(append([]byte(nil), lobbySeparator...), lobbySeparator...)
	idx := bytes.Index(payload, doubled)
	if idx < 0 {
		return 0, errors.Wrap(ErrStructureNotFound, "lobby settings separator pair")
	}

	countPos := idx + len(doubled) + 12
	if countPos+4 > len(payload) {
		return 0, errors.Wrap(ErrStructureNotFound, "player count field")
	}
	return int(binary.LittleEndian.Uint32(payload[countPos:])), nil
}

// AnonymizePlayers rewrites every player's lobby record in a decompressed
// header payload, returning the edited copy. The input slice is not
// modified.
//
// Player i (1-based) is renamed to "player i" and its profile id zeroed;
// the name's duplicate in the attributes sub-region is renamed to match. A
// missing lobby record is fatal; a missing attributes duplicate is only a
// warning.
func AnonymizePlayers(payload []byte, count int, log logging.L) ([]byte, error) {
	log = logging.Must(log)

	data := append([]byte(nil), payload...)
	offset := 0
	for i := 1; i <= count; i++ {
		var err error
		if offset, data, err = anonymizePlayer(data, offset, i, log); err != nil {
			return nil, errors.Wrapf(err, "anonymizing player %d", i)
		}
	}
	return data, nil
}

// anonymizePlayer rewrites the record of the player with the given 1-based
// id, scanning forward from offset. It returns the scan origin for the next
// player and the post-edit buffer.
func anonymizePlayer(data []byte, offset, id int, log logging.L) (int, []byte, error) {
	p := findPlayerRecord(data, offset)
	if p < 0 {
		return 0, nil, errors.Wrap(ErrStructureNotFound, "lobby record")
	}

	nameLen := int(data[p+2])
	name := append([]byte(nil), data[p+4:p+4+nameLen]...)
	replacement := []byte(fmt.Sprintf("player %d", id))
	log.Infof("found player %q, renaming to %q", name, replacement)

	// Swap the length-prefixed name. The record's one-byte length and its
	// trailing NUL read together as a little-endian u16, so the rewritten
	// prefix is uniformly two bytes.
	namePatch := bytepatch.Patch{
		Pos:         p + 2,
		Len:         nameLen + 2,
		Replacement: lengthPrefixed(replacement, 0),
	}
	data = namePatch.Apply(data)

	// Zero the profile id at its post-edit position: past the two-byte
	// length prefix, the new name and the profile separator.
	profilePos := p + 2 + 2 + len(replacement) + len(profileSeparator)
	zero := bytepatch.Patch{Pos: profilePos, Len: 4, Replacement: make([]byte, 4)}
	data = zero.Apply(data)

	end := profilePos + 4

	// The attributes sub-region repeats the name with a length prefix one
	// larger (it counts a trailing NUL).
	needle := lengthPrefixed(name, 1)
	j := bytes.Index(data[end:], needle)
	if j < 0 {
		log.Warnf("attributes record for player %d not found; duplicate name left in place", id)
		return end, data, nil
	}
	attrPatch := bytepatch.Patch{
		Pos:         end + j,
		Len:         len(needle),
		Replacement: lengthPrefixed(replacement, 1),
	}
	data = attrPatch.Apply(data)

	playersAnonymized.Inc()
	return end, data, nil
}

// findPlayerRecord returns the offset of the first player record signature
// at or after offset, restricted to the lobby settings window, or -1.
//
// The signature is prefix(2) + nameLength(1, nonzero) + NUL + name +
// profile separator(4) + profile id(4).
func findPlayerRecord(data []byte, offset int) int {
	window := data
	if len(window) > lobbySettingsWindow {
		window = window[:lobbySettingsWindow]
	}

	for p := offset; p >= 0 && p < len(window); p++ {
		j := bytes.Index(window[p:], playerRecordPrefix)
		if j < 0 {
			return -1
		}
		p += j
		if matchesPlayerRecord(data, p) {
			return p
		}
	}
	return -1
}

func matchesPlayerRecord(data []byte, p int) bool {
	if p+4 > len(data) {
		return false
	}
	nameLen := int(data[p+2])
	if nameLen == 0 || data[p+3] != 0 {
		return false
	}
	sep := p + 4 + nameLen
	if sep+len(profileSeparator)+4 > len(data) {
		return false
	}
	return bytes.Equal(data[sep:sep+len(profileSeparator)], profileSeparator)
}

// lengthPrefixed prepends a two-byte little-endian length to name. extra is
// added to the encoded length without extending the bytes (the attributes
// region counts a trailing NUL that is not stored with the name).
func lengthPrefixed(name []byte, extra int) []byte {
	out := make([]byte, 2, 2+len(name))
	binary.LittleEndian.PutUint16(out, uint16(len(name)+extra))
	return append(out, name...)
}
