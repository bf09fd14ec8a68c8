// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package rec

import (
	"encoding/binary"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

func le32(v uint32) []byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return b[:]
}

// fabricatedContainer assembles a complete container around the fabricated
// header, returning the file bytes and the compressed header block.
func fabricatedContainer(operations []byte) ([]byte, []byte) {
	compressed, err := deflateBytes(fabricatedHeader())
	Expect(err).ToNot(HaveOccurred())

	meta := make([]byte, MetaLength)
	meta[0] = 0xF4 // checksum interval: 500
	meta[1] = 0x01
	meta[4] = 0x01 // multiplayer
	meta[8] = 0x2A // rec owner: 42
	meta[20] = 0x02
	meta[24] = 0x01

	var out []byte
	out = append(out, le32(uint32(len(compressed)+8))...)
	out = append(out, le32(0xDEADBEEF)...)
	out = append(out, compressed...)
	out = append(out, le32(5)...) // log version
	out = append(out, meta...)
	out = append(out, operations...)
	return out, compressed
}

var _ = Describe("Container", func() {
	operations := []byte{0x10, 0x20, 0x30, 0x40, 0x50}

	Context("parsing a well-formed container", func() {
		var data []byte
		var c *Container

		BeforeEach(func() {
			data, _ = fabricatedContainer(operations)

			var err error
			c, err = ParseContainer(data)
			Expect(err).ToNot(HaveOccurred())
		})

		It("exposes every envelope field", func() {
			Expect(c.Checksum).To(Equal(uint32(0xDEADBEEF)))
			Expect(c.LogVersion).To(Equal(uint32(5)))
			Expect(c.Meta).To(HaveLen(MetaLength))
			Expect(c.Operations).To(Equal(operations))
			Expect(c.Header.Build).To(Equal(uint32(4)))
		})

		It("owns its buffers independently of the input", func() {
			data[len(data)-1] = 0xFF

			Expect(c.Operations).To(Equal(operations))
		})

		It("writes back byte-identically while the header is untouched", func() {
			Expect(c.Bytes()).To(Equal(data))
		})

		It("recomputes the header length once the header is mutated", func() {
			c.Header.SetPayload([]byte("a considerably longer payload than before"))

			out, err := c.Bytes()
			Expect(err).ToNot(HaveOccurred())

			c2, err := ParseContainer(out)
			Expect(err).ToNot(HaveOccurred())
			Expect(c2.Header.Payload).To(Equal([]byte("a considerably longer payload than before")))
			// The length field covers the compressed block plus itself and
			// the checksum, so only the log version is outside it here.
			Expect(binary.LittleEndian.Uint32(out)).To(Equal(uint32(len(out) - len(operations) - MetaLength - 4)))
			Expect(c2.Operations).To(Equal(operations))
		})

		It("decodes the meta block", func() {
			m, err := ParseMeta(c.Meta)

			Expect(err).ToNot(HaveOccurred())
			Expect(m.ChecksumInterval).To(Equal(uint32(500)))
			Expect(m.Multiplayer).To(BeTrue())
			Expect(m.RecOwner).To(Equal(uint32(42)))
			Expect(m.RevealMap).To(BeFalse())
			Expect(m.NumberOfChapters).To(Equal(uint32(2)))
			Expect(m.AokOrDe).To(Equal(uint32(1)))
		})
	})

	Context("parsing truncated data", func() {
		It("fails on an empty input", func() {
			_, err := ParseContainer(nil)

			Expect(err).To(HaveOccurred())
		})

		It("fails when the compressed header is cut short", func() {
			data, _ := fabricatedContainer(operations)

			_, err := ParseContainer(data[:12])
			Expect(err).To(HaveOccurred())
		})

		It("fails when the meta block is cut short", func() {
			data, compressed := fabricatedContainer(operations)

			_, err := ParseContainer(data[:8+len(compressed)+4+10])
			Expect(err).To(HaveOccurred())
		})

		It("fails on an out-of-range header length", func() {
			_, err := ParseContainer([]byte{0x02, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00})

			Expect(err).To(HaveOccurred())
		})
	})
})
