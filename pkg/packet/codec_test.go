package packet_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mountainvillage/packets/pkg/packet"
)

var _ = Describe("Codec", func() {
	var factory *packet.Factory

	BeforeEach(func() {
		factory = packet.NewFactory()
	})

	Describe("Marshal and Unmarshal", func() {
		It("round-trips a packet without losing identity or integrity", func() {
			p, err := factory.New(packet.TypeSession,
				map[string]any{"topic": "round trip", "turn": "42"},
				packet.WithConsent(packet.Consent{
					Public:  true,
					Scopes:  []string{"read", "quote"},
					Targets: []string{"Claude"},
				}),
			)
			Expect(err).NotTo(HaveOccurred())

			data, err := packet.Marshal(p)
			Expect(err).NotTo(HaveOccurred())

			got, err := packet.Unmarshal(data)
			Expect(err).NotTo(HaveOccurred())

			Expect(got.ID).To(Equal(p.ID))
			Expect(got.Type).To(Equal(p.Type))
			Expect(got.Priority).To(Equal(p.Priority))
			Expect(got.Consent).To(Equal(p.Consent))
			Expect(got.Content).To(Equal(p.Content))
			Expect(got.Metadata).To(Equal(p.Metadata))
			Expect(got.VerifyIntegrity()).To(BeTrue())
		})

		It("keeps the stored checksum rather than recomputing it", func() {
			p, err := factory.New(packet.TypeContext, map[string]any{"k": "v"})
			Expect(err).NotTo(HaveOccurred())

			data, err := packet.Marshal(p)
			Expect(err).NotTo(HaveOccurred())

			got, err := packet.Unmarshal(data)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Metadata.Checksum).To(Equal(p.Metadata.Checksum))
			Expect(got.Metadata.TokenCount).To(Equal(p.Metadata.TokenCount))
			Expect(got.Metadata.Created).To(Equal(p.Metadata.Created))
		})

		It("fails with an encoding error on malformed text", func() {
			_, err := packet.Unmarshal([]byte("{not json"))
			Expect(err).To(BeAssignableToTypeOf(packet.EncodingError{}))
		})

		It("fails with a header error on an unknown type tag", func() {
			_, err := packet.Unmarshal([]byte(`{"id":"cp_x","type":"bogus","priority":3,"content":{}}`))
			Expect(err).To(BeAssignableToTypeOf(packet.HeaderError{}))
		})

		It("fails with a header error on an out-of-range priority", func() {
			_, err := packet.Unmarshal([]byte(`{"id":"cp_x","type":"context","priority":9,"content":{}}`))
			Expect(err).To(BeAssignableToTypeOf(packet.HeaderError{}))
		})

		It("assigns a fresh id only when the wire packet has none", func() {
			got, err := packet.Unmarshal([]byte(`{"type":"context","priority":3,"content":{}}`))
			Expect(err).NotTo(HaveOccurred())
			Expect(got.ID).To(HavePrefix("cp_"))
		})

		It("applies the default consent when the wire packet has none", func() {
			got, err := packet.Unmarshal([]byte(`{"id":"cp_x","type":"sync","priority":4,"content":{}}`))
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Consent.Public).To(BeFalse())
			Expect(got.Consent.Scopes).To(Equal([]string{"read"}))
			Expect(got.Consent.Targets).To(BeEmpty())
		})
	})

	Describe("FromMap", func() {
		It("reconstructs a packet from pre-parsed data", func() {
			p, err := factory.New(packet.TypeIdentity, map[string]any{"name": "Assistant"})
			Expect(err).NotTo(HaveOccurred())

			got, err := packet.FromMap(map[string]any{
				"id":       p.ID,
				"type":     "identity",
				"priority": 1,
				"consent":  map[string]any{"public": false, "targets": []string{}, "scopes": []string{"read"}, "expires_at": nil},
				"content":  p.Content,
				"metadata": map[string]any{
					"created":     p.Metadata.Created,
					"version":     p.Metadata.Version,
					"token_count": p.Metadata.TokenCount,
					"checksum":    p.Metadata.Checksum,
				},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(got.ID).To(Equal(p.ID))
			Expect(got.VerifyIntegrity()).To(BeTrue())
		})
	})

	Describe("EstimateTokens", func() {
		It("is the canonical content length over four", func() {
			// {"data":"aaaa"} is 15 bytes.
			tokens, err := packet.EstimateTokens(map[string]any{"data": "aaaa"})
			Expect(err).NotTo(HaveOccurred())
			Expect(tokens).To(Equal(3))
		})
	})
})
