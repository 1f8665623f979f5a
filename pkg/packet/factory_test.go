package packet_test

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mountainvillage/packets/pkg/packet"
)

// contentOfTokens builds content whose canonical JSON is exactly
// tokens*4 bytes: {"data":"..."} has 10 bytes of framing around the data.
func contentOfTokens(tokens int) map[string]any {
	return map[string]any{"data": strings.Repeat("a", tokens*4-10)}
}

var _ = Describe("Factory", func() {
	Describe("New", func() {
		It("assigns ids with the cp_ prefix, monotonically increasing", func() {
			f := packet.NewFactory()

			a, err := f.New(packet.TypeContext, map[string]any{"n": "1"})
			Expect(err).NotTo(HaveOccurred())
			b, err := f.New(packet.TypeContext, map[string]any{"n": "2"})
			Expect(err).NotTo(HaveOccurred())

			Expect(a.ID).To(HavePrefix("cp_"))
			Expect(b.ID).To(HavePrefix("cp_"))
			Expect(a.ID).NotTo(Equal(b.ID))
			Expect(b.ID > a.ID).To(BeTrue())
		})

		It("defaults priority from the packet type", func() {
			f := packet.NewFactory()

			p, err := f.New(packet.TypeIdentity, map[string]any{"name": "x"})
			Expect(err).NotTo(HaveOccurred())
			Expect(p.Priority).To(Equal(packet.PriorityCritical))
		})

		It("honors an explicit priority", func() {
			f := packet.NewFactory()

			p, err := f.New(packet.TypeContext, map[string]any{"n": "1"}, packet.WithPriority(packet.PriorityLow))
			Expect(err).NotTo(HaveOccurred())
			Expect(p.Priority).To(Equal(packet.PriorityLow))
		})

		It("stamps metadata with version, created, tokens, and checksum", func() {
			f := packet.NewFactory()

			p, err := f.New(packet.TypeSession, map[string]any{"k": "v"})
			Expect(err).NotTo(HaveOccurred())
			Expect(p.Metadata.Version).To(Equal(packet.Version))
			Expect(p.Metadata.Created).NotTo(BeEmpty())
			Expect(p.Metadata.Checksum).To(HaveLen(16))
			Expect(p.Metadata.TokenCount).To(BeNumerically(">", 0))
		})

		It("rejects content above the hard size limit", func() {
			f := packet.NewFactory(packet.WithMaxPacketSize(25))

			_, err := f.New(packet.TypeContext, contentOfTokens(26))
			Expect(err).To(BeAssignableToTypeOf(packet.SizeExceededError{}))
		})

		It("admits content at exactly the size limit", func() {
			f := packet.NewFactory(packet.WithMaxPacketSize(25))

			p, err := f.New(packet.TypeContext, contentOfTokens(25))
			Expect(err).NotTo(HaveOccurred())
			Expect(p.Metadata.TokenCount).To(Equal(25))
		})

		It("compresses content above the threshold but below the limit", func() {
			f := packet.NewFactory(
				packet.WithMaxPacketSize(1000),
				packet.WithCompressionThreshold(20),
			)

			original := contentOfTokens(30)
			originalSum, err := packet.Checksum(original)
			Expect(err).NotTo(HaveOccurred())

			p, err := f.New(packet.TypeContext, original)
			Expect(err).NotTo(HaveOccurred())

			Expect(p.Compressed()).To(BeTrue())
			Expect(p.Content["compressed"]).To(Equal(true))
			Expect(p.Content["original_checksum"]).To(Equal(originalSum))
			Expect(p.Content["original_size"]).To(Equal(30))
			Expect(p.Metadata.OriginalChecksum).To(Equal(originalSum))
			Expect(p.VerifyIntegrity()).To(BeTrue())
		})

		It("leaves content at exactly the threshold uncompressed", func() {
			f := packet.NewFactory(packet.WithCompressionThreshold(25))

			p, err := f.New(packet.TypeContext, contentOfTokens(25))
			Expect(err).NotTo(HaveOccurred())
			Expect(p.Compressed()).To(BeFalse())
		})

		It("hands original content to the capture hook before compressing", func() {
			var capturedID, capturedSum string
			var captured map[string]any

			f := packet.NewFactory(
				packet.WithCompressionThreshold(20),
				packet.WithCapture(func(id, checksum string, content map[string]any) error {
					capturedID = id
					capturedSum = checksum
					captured = content
					return nil
				}),
			)

			original := contentOfTokens(30)
			p, err := f.New(packet.TypeContext, original)
			Expect(err).NotTo(HaveOccurred())

			Expect(captured).To(Equal(original))
			Expect(capturedID).To(Equal(p.Content["original_id"]))
			Expect(capturedSum).To(Equal(p.Metadata.OriginalChecksum))
		})
	})
})
