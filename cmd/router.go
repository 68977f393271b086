package main

import (
	"net/http"

	"github.com/evoforge/ai-breaker/internal/metrics"
)

func setupRouter(handler *metrics.Handler) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", handler.Health())
	mux.HandleFunc("/metrics", handler.Metrics())
	mux.HandleFunc("/admin/force-open", handler.ForceOpen())
	mux.HandleFunc("/admin/force-close", handler.ForceClose())
	mux.HandleFunc("/admin/reset", handler.Reset())
	mux.HandleFunc("/admin/reset-all", handler.ResetAll())

	return mux
}
