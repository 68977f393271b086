package metrics_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/evoforge/ai-breaker/internal/breaker"
	"github.com/evoforge/ai-breaker/internal/metrics"
)

var _ = Describe("Handler", func() {
	var (
		brk     *breaker.Breaker
		handler *metrics.Handler
		log     *slog.Logger
	)

	categories := []string{"crossover", "mutation", "evaluation", "variant_generation"}

	BeforeEach(func() {
		log = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelError,
		}))

		var err error
		brk, err = breaker.New(breaker.Settings{FailureThreshold: 2}, categories, nil)
		Expect(err).NotTo(HaveOccurred())

		handler = metrics.NewHandler(brk, log)
	})

	failOver := func(category string, times int) {
		failing := func(ctx context.Context) (string, error) {
			return "", errors.New("model unavailable")
		}
		fallback := func(ctx context.Context) (string, error) {
			return "fallback", nil
		}
		for i := 0; i < times; i++ {
			_, err := breaker.Execute(context.Background(), brk, category, failing, fallback)
			Expect(err).NotTo(HaveOccurred())
		}
	}

	Describe("Metrics endpoint", func() {
		It("should serve a JSON snapshot for every category", func() {
			failOver("evaluation", 1)

			rec := httptest.NewRecorder()
			handler.Metrics()(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Header().Get("Content-Type")).To(Equal("application/json"))

			var snap metrics.Snapshot
			Expect(json.Unmarshal(rec.Body.Bytes(), &snap)).To(Succeed())
			Expect(snap.Categories).To(HaveLen(len(categories)))
			Expect(snap.Categories[0].Category).To(Equal("crossover"))

			for _, m := range snap.Categories {
				if m.Category == "evaluation" {
					Expect(m.TotalRequests).To(Equal(int64(1)))
					Expect(m.FailedRequests).To(Equal(int64(1)))
				}
			}
		})

		It("should report uptime in seconds", func() {
			rec := httptest.NewRecorder()
			handler.Metrics()(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

			var decoded map[string]any
			Expect(json.Unmarshal(rec.Body.Bytes(), &decoded)).To(Succeed())

			uptime, ok := decoded["uptime_seconds"].(float64)
			Expect(ok).To(BeTrue())
			Expect(uptime).To(BeNumerically(">=", 0))
			Expect(uptime).To(BeNumerically("<", 60))
		})
	})

	Describe("Health endpoint", func() {
		It("should return 200 while every category is CLOSED", func() {
			rec := httptest.NewRecorder()
			handler.Health()(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			Expect(rec.Code).To(Equal(http.StatusOK))

			var health breaker.Health
			Expect(json.Unmarshal(rec.Body.Bytes(), &health)).To(Succeed())
			Expect(health.Healthy).To(BeTrue())
			Expect(health.Operations).To(HaveLen(len(categories)))
		})

		It("should echo config durations as milliseconds", func() {
			rec := httptest.NewRecorder()
			handler.Health()(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			var decoded map[string]any
			Expect(json.Unmarshal(rec.Body.Bytes(), &decoded)).To(Succeed())

			cfg, ok := decoded["config"].(map[string]any)
			Expect(ok).To(BeTrue())
			// The breaker fills unset durations with its defaults: 30s / 60s.
			Expect(cfg["timeout_ms"]).To(BeNumerically("==", 30000))
			Expect(cfg["reset_timeout_ms"]).To(BeNumerically("==", 60000))
		})

		It("should return 503 once a category trips", func() {
			failOver("mutation", 2)

			rec := httptest.NewRecorder()
			handler.Health()(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			Expect(rec.Code).To(Equal(http.StatusServiceUnavailable))

			var health breaker.Health
			Expect(json.Unmarshal(rec.Body.Bytes(), &health)).To(Succeed())
			Expect(health.Healthy).To(BeFalse())
			Expect(health.Operations["mutation"].State).To(Equal("OPEN"))
			Expect(health.Operations["mutation"].TripCount).To(Equal(int64(1)))
		})
	})

	Describe("admin endpoints", func() {
		It("should force a category open", func() {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/admin/force-open?category=evaluation", nil)
			handler.ForceOpen()(rec, req)

			Expect(rec.Code).To(Equal(http.StatusOK))

			st, _ := brk.State("evaluation")
			Expect(st).To(Equal(breaker.StateOpen))
		})

		It("should force a category closed", func() {
			Expect(brk.ForceOpen("evaluation")).To(Succeed())

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/admin/force-close?category=evaluation", nil)
			handler.ForceClose()(rec, req)

			Expect(rec.Code).To(Equal(http.StatusOK))

			st, _ := brk.State("evaluation")
			Expect(st).To(Equal(breaker.StateClosed))
		})

		It("should reset a category", func() {
			failOver("crossover", 2)

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/admin/reset?category=crossover", nil)
			handler.Reset()(rec, req)

			Expect(rec.Code).To(Equal(http.StatusOK))

			m, _ := brk.Metrics("crossover")
			Expect(m.TotalRequests).To(BeZero())
		})

		It("should reset all categories", func() {
			failOver("crossover", 2)
			failOver("mutation", 1)

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/admin/reset-all", nil)
			handler.ResetAll()(rec, req)

			Expect(rec.Code).To(Equal(http.StatusOK))

			for _, category := range categories {
				m, _ := brk.Metrics(category)
				Expect(m.TotalRequests).To(BeZero())
			}
		})

		It("should reject non-POST methods", func() {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/admin/force-open?category=evaluation", nil)
			handler.ForceOpen()(rec, req)

			Expect(rec.Code).To(Equal(http.StatusMethodNotAllowed))
		})

		It("should require the category parameter", func() {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/admin/force-open", nil)
			handler.ForceOpen()(rec, req)

			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})

		It("should return 404 for an unknown category", func() {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/admin/force-open?category=summarization", nil)
			handler.ForceOpen()(rec, req)

			Expect(rec.Code).To(Equal(http.StatusNotFound))
		})
	})
})
