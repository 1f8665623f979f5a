package config_test

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mountainvillage/packets/pkg/config"
	"github.com/mountainvillage/packets/pkg/packet"
)

func TestConfig(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Config Suite")
}

var _ = Describe("Configer", func() {
	var (
		dir    string
		cfger  *config.Configer
		newErr error
	)

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		cfger, newErr = config.NewConfiger(dir)
		Expect(newErr).NotTo(HaveOccurred())
	})

	Describe("LoadConfig", func() {
		It("returns defaults when no config file exists", func() {
			cfg, err := cfger.LoadConfig()
			Expect(err).NotTo(HaveOccurred())

			Expect(cfg.Version).To(Equal(config.CurrentV))
			Expect(cfg.Storage.Root).To(Equal("packets"))
			Expect(cfg.Storage.ArchivePath).To(Equal("archive.db"))
			Expect(cfg.Limits.MaxPacketSize).To(Equal(packet.DefaultMaxPacketSize))
			Expect(cfg.Limits.CompressionThreshold).To(Equal(packet.DefaultCompressionThreshold))
			Expect(cfg.Reconstruct.TokenBudget).To(Equal(4000))
		})

		It("overlays file values on defaults", func() {
			raw := []byte("[storage]\nroot = \"/var/lib/packets\"\n")
			Expect(os.WriteFile(filepath.Join(dir, "config.toml"), raw, 0o600)).To(Succeed())

			cfg, err := cfger.LoadConfig()
			Expect(err).NotTo(HaveOccurred())

			Expect(cfg.Storage.Root).To(Equal("/var/lib/packets"))
			// Untouched fields keep their defaults.
			Expect(cfg.Storage.ArchivePath).To(Equal("archive.db"))
			Expect(cfg.Limits.MaxPacketSize).To(Equal(packet.DefaultMaxPacketSize))
		})
	})

	Describe("SaveConfig", func() {
		It("round-trips a config through TOML", func() {
			cfg := config.NewDefaultConfig()
			cfg.Limits.MaxPacketSize = 16000

			Expect(cfger.SaveConfig(cfg)).To(Succeed())

			loaded, err := cfger.LoadConfig()
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.Limits.MaxPacketSize).To(Equal(16000))
		})

		It("rejects a nil config", func() {
			Expect(cfger.SaveConfig(nil)).NotTo(Succeed())
		})
	})

	Describe("SetConfigValue and GetConfigValue", func() {
		It("sets and gets a string key", func() {
			Expect(cfger.SetConfigValue("storage.root", "/data/packets")).To(Succeed())

			got, err := cfger.GetConfigValue("storage.root")
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal("/data/packets"))
		})

		It("sets and gets an integer key", func() {
			Expect(cfger.SetConfigValue("reconstruct.token_budget", "8000")).To(Succeed())

			got, err := cfger.GetConfigValue("reconstruct.token_budget")
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal("8000"))
		})

		It("rejects a non-integer value for an integer key", func() {
			err := cfger.SetConfigValue("limits.max_packet_size", "lots")
			Expect(err).To(HaveOccurred())
		})

		It("rejects unknown keys", func() {
			Expect(cfger.SetConfigValue("nope.nope", "x")).NotTo(Succeed())

			_, err := cfger.GetConfigValue("nope.nope")
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("ResolvePaths", func() {
		It("joins relative storage paths onto the target dir", func() {
			cfg := config.NewDefaultConfig()
			cfger.ResolvePaths(cfg)

			Expect(cfg.Storage.Root).To(Equal(filepath.Join(dir, "packets")))
			Expect(cfg.Storage.ArchivePath).To(Equal(filepath.Join(dir, "archive.db")))
		})

		It("leaves absolute paths untouched", func() {
			cfg := config.NewDefaultConfig()
			cfg.Storage.Root = "/srv/packets"
			cfger.ResolvePaths(cfg)

			Expect(cfg.Storage.Root).To(Equal("/srv/packets"))
		})
	})
})

var _ = Describe("ParseConfigTOML", func() {
	It("parses a full config", func() {
		raw := []byte(`
version = 0

[storage]
root = "packets"
archive_path = "archive.db"

[limits]
max_packet_size = 8000
compression_threshold = 4000

[reconstruct]
token_budget = 4000
`)
		cfg, err := config.ParseConfigTOML(raw)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Limits.CompressionThreshold).To(Equal(4000))
	})

	It("rejects an unsupported version", func() {
		_, err := config.ParseConfigTOML([]byte("version = 99\n"))
		Expect(err).To(HaveOccurred())
	})

	It("rejects malformed TOML", func() {
		_, err := config.ParseConfigTOML([]byte("[storage\n"))
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("ValidConfigKeys", func() {
	It("lists every supported key", func() {
		keys := config.ValidConfigKeys()
		Expect(keys).To(HaveLen(5))
		for _, k := range keys {
			Expect(config.IsValidConfigKey(k)).To(BeTrue())
		}
	})
})

var _ = Describe("InitViper", func() {
	It("applies defaults when no config file exists", func() {
		v, err := config.InitViper(GinkgoT().TempDir())
		Expect(err).NotTo(HaveOccurred())

		Expect(v.GetString("storage.root")).To(Equal("packets"))
		Expect(v.GetInt("reconstruct.token_budget")).To(Equal(4000))
	})

	It("reads values from config.toml", func() {
		dir := GinkgoT().TempDir()
		raw := []byte("[limits]\nmax_packet_size = 12000\n")
		Expect(os.WriteFile(filepath.Join(dir, "config.toml"), raw, 0o600)).To(Succeed())

		v, err := config.InitViper(dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(v.GetInt("limits.max_packet_size")).To(Equal(12000))
	})

	It("prefers environment variables over file values", func() {
		dir := GinkgoT().TempDir()
		raw := []byte("[storage]\nroot = \"from-file\"\n")
		Expect(os.WriteFile(filepath.Join(dir, "config.toml"), raw, 0o600)).To(Succeed())

		GinkgoT().Setenv("PACKETS_STORAGE_ROOT", "from-env")

		v, err := config.InitViper(dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(v.GetString("storage.root")).To(Equal("from-env"))
	})
})
