package config_test

import (
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/viper"

	"github.com/evoforge/ai-breaker/config"
)

var _ = Describe("Config", func() {
	var (
		tempDir string
		origDir string
	)

	BeforeEach(func() {
		var err error
		origDir, err = os.Getwd()
		Expect(err).NotTo(HaveOccurred())

		tempDir, err = os.MkdirTemp("", "config-test-*")
		Expect(err).NotTo(HaveOccurred())

		viper.Reset()
	})

	AfterEach(func() {
		Expect(os.Chdir(origDir)).To(Succeed())
		os.RemoveAll(tempDir)
		os.Unsetenv("BREAKER_FAILURE_THRESHOLD")
		os.Unsetenv("BREAKER_TIMEOUT")
		os.Unsetenv("SERVER_ADDRESS")
		viper.Reset()
	})

	writeConfig := func(content string) {
		configPath := filepath.Join(tempDir, "config.yaml")
		Expect(os.WriteFile(configPath, []byte(content), 0644)).To(Succeed())
		Expect(os.Chdir(tempDir)).To(Succeed())
	}

	Describe("Load", func() {
		Context("with valid config file", func() {
			BeforeEach(func() {
				writeConfig(`
server:
  address: ":9090"
  environment: "prod"

breaker:
  failure_threshold: 3
  success_threshold: 1
  timeout: "5s"
  reset_timeout: "10s"
  categories:
    - "crossover"
    - "mutation"

logging:
  level: "debug"
`)
			})

			It("should load configuration successfully", func() {
				cfg, err := config.Load()
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg).NotTo(BeNil())
			})

			It("should parse breaker tunables", func() {
				cfg, _ := config.Load()
				Expect(cfg.Breaker.FailureThreshold).To(Equal(3))
				Expect(cfg.Breaker.SuccessThreshold).To(Equal(1))
				Expect(cfg.Breaker.TimeoutDuration()).To(Equal(5 * time.Second))
				Expect(cfg.Breaker.ResetTimeoutDuration()).To(Equal(10 * time.Second))
			})

			It("should parse the category set", func() {
				cfg, _ := config.Load()
				Expect(cfg.Breaker.Categories).To(Equal([]string{"crossover", "mutation"}))
			})

			It("should parse server and logging settings", func() {
				cfg, _ := config.Load()
				Expect(cfg.Server.Address).To(Equal(":9090"))
				Expect(cfg.Server.Environment).To(Equal("prod"))
				Expect(cfg.Logging.Level).To(Equal("debug"))
			})
		})

		Context("without a config file", func() {
			BeforeEach(func() {
				Expect(os.Chdir(tempDir)).To(Succeed())
			})

			It("should use defaults", func() {
				cfg, err := config.Load()
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.Breaker.FailureThreshold).To(Equal(config.DefaultFailureThreshold))
				Expect(cfg.Breaker.SuccessThreshold).To(Equal(config.DefaultSuccessThreshold))
				Expect(cfg.Breaker.TimeoutDuration()).To(Equal(30 * time.Second))
				Expect(cfg.Breaker.ResetTimeoutDuration()).To(Equal(60 * time.Second))
				Expect(cfg.Breaker.Categories).To(Equal(config.DefaultCategories))
			})

			It("should honor environment variable overrides", func() {
				os.Setenv("BREAKER_FAILURE_THRESHOLD", "7")
				os.Setenv("BREAKER_TIMEOUT", "2s")

				cfg, err := config.Load()
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.Breaker.FailureThreshold).To(Equal(7))
				Expect(cfg.Breaker.TimeoutDuration()).To(Equal(2 * time.Second))
			})
		})

		Context("with invalid breaker tunables", func() {
			It("should fall back to the default failure threshold", func() {
				writeConfig(`
breaker:
  failure_threshold: -2
`)
				cfg, err := config.Load()
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.Breaker.FailureThreshold).To(Equal(config.DefaultFailureThreshold))
			})

			It("should fall back to the default timeout on garbage input", func() {
				writeConfig(`
breaker:
  timeout: "soon"
  reset_timeout: "-5s"
`)
				cfg, err := config.Load()
				Expect(err).NotTo(HaveOccurred())
				Expect(cfg.Breaker.TimeoutDuration()).To(Equal(30 * time.Second))
				Expect(cfg.Breaker.ResetTimeoutDuration()).To(Equal(60 * time.Second))
			})
		})

		Context("with invalid strict settings", func() {
			It("should reject a bad server address", func() {
				writeConfig(`
server:
  address: "no-port-here"
`)
				_, err := config.Load()
				Expect(err).To(HaveOccurred())
			})

			It("should reject an unknown environment", func() {
				writeConfig(`
server:
  environment: "qa"
`)
				_, err := config.Load()
				Expect(err).To(HaveOccurred())
			})

			It("should reject an unknown log level", func() {
				writeConfig(`
logging:
  level: "trace"
`)
				_, err := config.Load()
				Expect(err).To(HaveOccurred())
			})

			It("should reject blank category names", func() {
				writeConfig(`
breaker:
  categories:
    - "crossover"
    - "  "
`)
				_, err := config.Load()
				Expect(err).To(HaveOccurred())
			})
		})
	})
})
