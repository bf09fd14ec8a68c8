// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package anonymize

import (
	"bytes"
	"encoding/binary"

	"github.com/DJSchaffner/aoe-rec-tools/support/logging"

	"github.com/pkg/errors"
)

// postGameTag opens the post-game operation near the end of the operations
// stream; the leaderboard block sits a short, variable distance behind it.
var postGameTag = []byte{0x06, 0x00, 0x00, 0x00}

const (
	// ratingTailWindow bounds the leaderboard search to the final bytes of
	// the operations stream. Heuristic, reverse-engineered from observed
	// files; not a format invariant.
	ratingTailWindow = 255

	// ratingGapMin and ratingGapMax bound the unconstrained bytes between
	// the post-game tag and the player-count field. Heuristic as above.
	ratingGapMin = 22
	ratingGapMax = 255

	// ratingRecordSize is one leaderboard entry: player id, an unknown
	// field, and the rating, u32 each.
	ratingRecordSize = 12

	// AnonymizedRating replaces every player's rating.
	AnonymizedRating = 1000
)

// PatchRatings overwrites every player's rating in the post-game
// leaderboard block, returning the edited copy. The input slice is not
// modified.
//
// Record sizes never change here; only the rating field of each entry is
// rewritten, player id and the unknown field pass through bit-identical.
// A missing leaderboard signature is fatal.
func PatchRatings(ops []byte, count int, log logging.L) ([]byte, error) {
	log = logging.Must(log)

	data := append([]byte(nil), ops...)
	start := findRatingBlock(data, count)
	if start < 0 {
		return nil, errors.Wrap(ErrStructureNotFound, "post-game leaderboard block")
	}

	for i := 0; i < count; i++ {
		entry := data[start+i*ratingRecordSize:][:ratingRecordSize]
		id := binary.LittleEndian.Uint32(entry[0:4])
		binary.LittleEndian.PutUint32(entry[8:12], AnonymizedRating)
		log.Infof("set rating for player %d", id)
		ratingsPatched.Inc()
	}
	return data, nil
}

// findRatingBlock locates the first leaderboard entry: a post-game tag, a
// 22-255 byte gap of unconstrained content, the literal player count, then
// a player id small enough to read as one byte followed by three zeros.
// The entries for all count players must fit before the end of the buffer.
func findRatingBlock(data []byte, count int) int {
	var countField [4]byte
	binary.LittleEndian.PutUint32(countField[:], uint32(count))

	base := len(data) - ratingTailWindow
	if base < 0 {
		base = 0
	}

	for t := base; t < len(data); t++ {
		j := bytes.Index(data[t:], postGameTag)
		if j < 0 {
			return -1
		}
		t += j

		tagEnd := t + len(postGameTag)
		for gap := ratingGapMin; gap <= ratingGapMax; gap++ {
			countPos := tagEnd + gap
			entries := countPos + 4
			if entries+count*ratingRecordSize > len(data) {
				break
			}
			if !bytes.Equal(data[countPos:countPos+4], countField[:]) {
				continue
			}
			if data[entries] <= 7 && data[entries+1] == 0 && data[entries+2] == 0 && data[entries+3] == 0 {
				return entries
			}
		}
	}
	return -1
}
