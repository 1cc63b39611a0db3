// Package server hosts the optional metrics endpoint.
//
// The poller itself has no network surface; when observability is
// enabled a dedicated listener exposes /metrics for Prometheus scraping
// and a /healthz probe, isolated from the polling work.
package server
