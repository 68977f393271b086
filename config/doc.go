// Package config resolves process configuration from an optional yaml file
// and environment variables via viper.
//
// Breaker tunables (failure threshold, success threshold, primary-call
// timeout, reset timeout) each have a hard-coded default. An absent or
// invalid tunable falls back to the default with a warning instead of
// failing startup; the server address, environment, logging level, and
// category names are validated strictly.
//
// Environment variables follow viper's key replacement, e.g.
// BREAKER_FAILURE_THRESHOLD=3 overrides breaker.failure_threshold.
package config
