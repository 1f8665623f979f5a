package store_test

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mountainvillage/packets/pkg/packet"
	"github.com/mountainvillage/packets/pkg/store"
)

// payloadOfTokens builds content whose canonical JSON is exactly
// tokens*4 bytes (see the {"data":"..."} framing of 10 bytes).
func payloadOfTokens(tokens int) map[string]any {
	return map[string]any{"data": strings.Repeat("a", tokens*4-10)}
}

var _ = Describe("Reconstruct", func() {
	var (
		s       *store.LayeredStore
		factory *packet.Factory
	)

	BeforeEach(func() {
		s = store.New()
		factory = packet.NewFactory()
	})

	receive := func(t packet.Type, tokens int, opts ...packet.NewOption) *packet.Packet {
		p, err := factory.New(t, payloadOfTokens(tokens), opts...)
		Expect(err).NotTo(HaveOccurred())
		data, err := packet.Marshal(p)
		Expect(err).NotTo(HaveOccurred())
		got, err := s.Receive(data)
		Expect(err).NotTo(HaveOccurred())
		return got
	}

	It("returns an empty snapshot from an empty store", func() {
		snapshot := s.Reconstruct(4000, true)

		Expect(snapshot.Layers).To(BeEmpty())
		Expect(snapshot.TotalTokens).To(BeZero())
		Expect(snapshot.RemainingTokens).To(Equal(4000))
		Expect(snapshot.Timestamp).NotTo(BeEmpty())
	})

	It("includes the identity layer first and deducts its cost", func() {
		receive(packet.TypeIdentity, 50)
		receive(packet.TypeSession, 50)

		snapshot := s.Reconstruct(4000, true)

		Expect(snapshot.Layers).To(HaveLen(2))
		Expect(snapshot.Layers[0].Type).To(Equal("identity"))
		Expect(snapshot.Layers[0].Tokens).To(Equal(50))
		Expect(snapshot.TotalTokens).To(Equal(100))
		Expect(snapshot.RemainingTokens).To(Equal(3900))
	})

	It("omits the identity layer on request", func() {
		receive(packet.TypeIdentity, 50)

		snapshot := s.Reconstruct(4000, false)
		Expect(snapshot.Layers).To(BeEmpty())
	})

	It("silently skips an identity that exceeds the budget", func() {
		receive(packet.TypeIdentity, 500)
		receive(packet.TypeSession, 150)

		snapshot := s.Reconstruct(400, true)

		Expect(snapshot.Layers).To(HaveLen(1))
		Expect(snapshot.Layers[0].Type).To(Equal("session"))
	})

	It("never exceeds the token budget", func() {
		receive(packet.TypeSession, 300)
		receive(packet.TypeContext, 400)
		receive(packet.TypeContext, 500)
		receive(packet.TypeSession, 700)

		for _, budget := range []int{100, 350, 800, 1500, 5000} {
			snapshot := s.Reconstruct(budget, true)

			total := 0
			for _, layer := range snapshot.Layers {
				total += layer.Tokens
			}
			Expect(total).To(Equal(snapshot.TotalTokens))
			Expect(total).To(BeNumerically("<=", budget))
		}
	})

	It("orders selected packets by priority, then ascending creation time", func() {
		low := receive(packet.TypeContext, 100, packet.WithPriority(packet.PriorityLow))
		highOld := receive(packet.TypeContext, 100, packet.WithPriority(packet.PriorityHigh))
		highNew := receive(packet.TypeContext, 100, packet.WithPriority(packet.PriorityHigh))
		medium := receive(packet.TypeSession, 100, packet.WithPriority(packet.PriorityMedium))

		snapshot := s.Reconstruct(4000, false)
		Expect(snapshot.Layers).To(HaveLen(4))

		// Higher precedence first; equal priorities keep the earlier
		// created packet ahead of the later one.
		Expect(snapshot.Layers[0].Content).To(Equal(highOld.Content))
		Expect(snapshot.Layers[1].Content).To(Equal(highNew.Content))
		Expect(snapshot.Layers[2].Content).To(Equal(medium.Content))
		Expect(snapshot.Layers[3].Content).To(Equal(low.Content))
	})

	It("skips packets that do not fit but keeps walking", func() {
		receive(packet.TypeSession, 900, packet.WithPriority(packet.PriorityHigh))
		receive(packet.TypeSession, 400, packet.WithPriority(packet.PriorityMedium))

		snapshot := s.Reconstruct(600, false)

		Expect(snapshot.Layers).To(HaveLen(1))
		Expect(snapshot.Layers[0].Tokens).To(Equal(400))
	})

	It("stops the walk once the budget drops below the reserve margin", func() {
		receive(packet.TypeSession, 950, packet.WithPriority(packet.PriorityHigh))
		receive(packet.TypeSession, 30, packet.WithPriority(packet.PriorityMedium))
		receive(packet.TypeContext, 30, packet.WithPriority(packet.PriorityLow))

		snapshot := s.Reconstruct(1000, false)

		// After the 950-token packet only 50 remain, under the margin:
		// the 30-token packets still fit but are not considered.
		Expect(snapshot.Layers).To(HaveLen(1))
		Expect(snapshot.RemainingTokens).To(Equal(50))
	})

	It("labels layers by their source tier", func() {
		receive(packet.TypeSession, 50)
		receive(packet.TypeContext, 50)

		snapshot := s.Reconstruct(4000, false)

		labels := []string{snapshot.Layers[0].Type, snapshot.Layers[1].Type}
		Expect(labels).To(ConsistOf("session", "context"))
	})
})
