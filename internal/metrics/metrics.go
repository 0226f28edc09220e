// Package metrics exposes provider and cache counters in the Prometheus format.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "commitpulse"

// Registry holds every collector of the process. A dedicated registry keeps
// the scrape output free of unrelated default collectors.
var Registry = prometheus.NewRegistry()

var (
	// StatsCacheLookups counts commit stats lookups by outcome (hit or miss).
	StatsCacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "stats_cache",
		Name:      "lookups_total",
		Help:      "Commit stats cache lookups by outcome.",
	}, []string{"outcome"})

	// StatsCacheErrors counts failed cache reads and writes.
	StatsCacheErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "stats_cache",
		Name:      "errors_total",
		Help:      "Commit stats cache failures by operation.",
	}, []string{"op"})

	// ProviderRequests counts hosting provider calls by operation and result.
	ProviderRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "provider",
		Name:      "requests_total",
		Help:      "Hosting provider calls by operation and result.",
	}, []string{"op", "result"})

	// RepoRenames counts repositories found under a new full name.
	RepoRenames = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "provider",
		Name:      "repo_renames_total",
		Help:      "Repositories detected as moved at the provider.",
	})

	// NarrativesGenerated counts narrative generations by result.
	NarrativesGenerated = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "dashboard",
		Name:      "narratives_total",
		Help:      "Product narrative generations by result.",
	}, []string{"result"})
)

// Outcome and result label values.
const (
	OutcomeHit  = "hit"
	OutcomeMiss = "miss"
	ResultOK    = "ok"
	ResultError = "error"
	OpRead      = "read"
	OpWrite     = "write"
)

func init() {
	Registry.MustRegister(StatsCacheLookups, StatsCacheErrors, ProviderRequests, RepoRenames, NarrativesGenerated)
}

// ObserveProvider records one provider call.
func ObserveProvider(op string, err error) {
	result := ResultOK
	if err != nil {
		result = ResultError
	}
	ProviderRequests.WithLabelValues(op, result).Inc()
}

// Handler serves the registry in the text exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done.
func Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics server on %s: %w", addr, err)
	}
	return nil
}
