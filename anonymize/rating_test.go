// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package anonymize

import (
	"bytes"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/pkg/errors"
)

// ratingEntry encodes one leaderboard entry.
func ratingEntry(id uint32, unknown []byte, rating uint32) []byte {
	var out []byte
	out = append(out, le32(id)...)
	out = append(out, unknown...)
	out = append(out, le32(rating)...)
	return out
}

// ratingFixture assembles the tail of an operations stream: the post-game
// tag, a gap, the player count and two leaderboard entries.
func ratingFixture(ratingA, ratingB uint32) []byte {
	var out []byte
	out = append(out, bytes.Repeat([]byte{0x44}, 40)...)
	out = append(out, postGameTag...)
	out = append(out, bytes.Repeat([]byte{0x55}, 30)...)
	out = append(out, le32(2)...)
	out = append(out, ratingEntry(1, []byte{0x11, 0x22, 0x33, 0x44}, ratingA)...)
	out = append(out, ratingEntry(2, []byte{0x99, 0xAA, 0xBB, 0xCC}, ratingB)...)
	return out
}

var _ = Describe("PatchRatings", func() {
	Context("with a two-player leaderboard", func() {
		It("overwrites only the rating fields", func() {
			out, err := PatchRatings(ratingFixture(1234, 5678), 2, nil)
			Expect(err).ToNot(HaveOccurred())

			Expect(out).To(Equal(ratingFixture(AnonymizedRating, AnonymizedRating)))
		})

		It("does not modify the input slice", func() {
			ops := ratingFixture(1234, 5678)

			_, err := PatchRatings(ops, 2, nil)
			Expect(err).ToNot(HaveOccurred())
			Expect(ops).To(Equal(ratingFixture(1234, 5678)))
		})
	})

	Context("with no post-game tag", func() {
		It("fails", func() {
			ops := bytes.Repeat([]byte{0x44}, 120)

			_, err := PatchRatings(ops, 2, nil)
			Expect(errors.Cause(err)).To(Equal(ErrStructureNotFound))
		})
	})

	Context("with the count field closer than the minimum gap", func() {
		It("fails", func() {
			var ops []byte
			ops = append(ops, postGameTag...)
			ops = append(ops, bytes.Repeat([]byte{0x55}, 10)...)
			ops = append(ops, le32(2)...)
			ops = append(ops, ratingEntry(1, []byte{0x11, 0x22, 0x33, 0x44}, 1234)...)
			ops = append(ops, ratingEntry(2, []byte{0x99, 0xAA, 0xBB, 0xCC}, 5678)...)

			_, err := PatchRatings(ops, 2, nil)
			Expect(errors.Cause(err)).To(Equal(ErrStructureNotFound))
		})
	})

	Context("with too little room for every entry", func() {
		It("fails", func() {
			full := ratingFixture(1234, 5678)
			ops := full[:len(full)-4]

			_, err := PatchRatings(ops, 2, nil)
			Expect(errors.Cause(err)).To(Equal(ErrStructureNotFound))
		})
	})
})
