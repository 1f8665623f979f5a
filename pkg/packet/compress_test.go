package packet_test

import (
	"errors"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mountainvillage/packets/pkg/packet"
)

var _ = Describe("Decompress", func() {
	var (
		factory  *packet.Factory
		original map[string]any
		p        *packet.Packet
	)

	BeforeEach(func() {
		factory = packet.NewFactory(packet.WithCompressionThreshold(20))
		original = map[string]any{"conversation": strings.Repeat("details ", 30)}

		var err error
		p, err = factory.New(packet.TypeContext, original)
		Expect(err).NotTo(HaveOccurred())
		Expect(p.Compressed()).To(BeTrue())
	})

	It("returns uncompressed content unchanged", func() {
		plain, err := factory.New(packet.TypeContext, map[string]any{"k": "v"})
		Expect(err).NotTo(HaveOccurred())

		Expect(packet.Decompress(plain, nil)).To(Equal(plain.Content))
	})

	It("returns the placeholder without a fetch capability", func() {
		got := packet.Decompress(p, nil)
		Expect(got["compressed"]).To(Equal(true))
		Expect(got["summary"]).NotTo(BeEmpty())
	})

	It("returns the original when the fetch capability finds it", func() {
		fetch := func(id, checksum string) (map[string]any, error) {
			Expect(id).To(Equal(p.Content["original_id"]))
			Expect(checksum).To(Equal(p.Metadata.OriginalChecksum))
			return original, nil
		}

		Expect(packet.Decompress(p, fetch)).To(Equal(original))
	})

	It("falls back to the placeholder when the fetch fails", func() {
		fetch := func(id, checksum string) (map[string]any, error) {
			return nil, errors.New("archive unavailable")
		}

		got := packet.Decompress(p, fetch)
		Expect(got["compressed"]).To(Equal(true))
	})

	It("truncates the summary to 200 characters plus an ellipsis", func() {
		summary, ok := p.Content["summary"].(string)
		Expect(ok).To(BeTrue())
		Expect(summary).To(HaveLen(203))
		Expect(summary).To(HaveSuffix("..."))
	})

	It("limits key points to five entries", func() {
		wide := map[string]any{}
		for _, k := range []string{"a", "b", "c", "d", "e", "f", "g"} {
			wide[k] = strings.Repeat("x", 20)
		}

		wp, err := factory.New(packet.TypeContext, wide)
		Expect(err).NotTo(HaveOccurred())
		Expect(wp.Compressed()).To(BeTrue())

		points, ok := wp.Content["key_points"].([]string)
		Expect(ok).To(BeTrue())
		Expect(points).To(HaveLen(5))
		Expect(points[0]).To(HavePrefix("a: "))
	})
})
