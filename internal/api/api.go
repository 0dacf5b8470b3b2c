// Package api provides HTTP API endpoints for the watcher service.
// It exposes Prometheus metrics, service statistics, and cached draw lookups.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/VictoriaMetrics/metrics"
	"github.com/uptrace/bunrouter"

	"github.com/Niffl3rReturns/n3r-sdk/internal/cache"
	"github.com/Niffl3rReturns/n3r-sdk/internal/stats"
)

const (
	// metricsPath is the HTTP path for Prometheus metrics endpoint
	metricsPath = "/metrics"
	// statsPath is the HTTP path for service statistics endpoint
	statsPath = "/stats"
	// healthPath is the HTTP path for health check endpoint
	healthPath = "/health"
	// drawPath is the HTTP path for cached draw lookups
	drawPath = "/draws/:distributor/:id"
)

// APIOpts contains the collaborators the API handlers read from.
type APIOpts struct {
	Cache cache.Cache
	Stats *stats.Stats
}

// New creates a new HTTP router with all API endpoints registered.
func New(o APIOpts) *bunrouter.Router {
	router := bunrouter.New()

	router.GET(metricsPath, metricsHandler())
	router.GET(statsPath, statsHandler(o.Stats))
	router.GET(healthPath, healthHandler())
	router.GET(drawPath, drawHandler(o.Cache))

	return router
}

// metricsHandler returns a handler that serves Prometheus metrics.
func metricsHandler() bunrouter.HandlerFunc {
	return func(w http.ResponseWriter, _ bunrouter.Request) error {
		metrics.WritePrometheus(w, true)
		return nil
	}
}

// statsHandler returns a handler that serves service statistics.
func statsHandler(s *stats.Stats) bunrouter.HandlerFunc {
	return func(w http.ResponseWriter, req bunrouter.Request) error {
		snapshot, err := s.APIStatsResponse(req.Context())
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			return err
		}

		w.Header().Set("Content-Type", "application/json")
		return json.NewEncoder(w).Encode(snapshot)
	}
}

// healthHandler returns a handler for health checks.
func healthHandler() bunrouter.HandlerFunc {
	return func(w http.ResponseWriter, _ bunrouter.Request) error {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"healthy"}`))
		return nil
	}
}

// drawHandler returns a handler that serves cached (draw, prize distribution)
// pairs by distributor identity and draw id.
func drawHandler(c cache.Cache) bunrouter.HandlerFunc {
	return func(w http.ResponseWriter, req bunrouter.Request) error {
		drawID, err := strconv.ParseUint(req.Param("id"), 10, 32)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid draw id"}`))
			return nil
		}

		pair, ok, err := c.Get(req.Context(), cache.Key(req.Param("distributor"), uint32(drawID)))
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			return err
		}
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"draw not found"}`))
			return nil
		}

		w.Header().Set("Content-Type", "application/json")
		return json.NewEncoder(w).Encode(bunrouter.H{
			"draw":              pair.Draw,
			"prizeDistribution": pair.PrizeDistribution,
		})
	}
}
