package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/brollyweather/brolly/internal/geocoding"
	"github.com/brollyweather/brolly/internal/metrics"
	"github.com/brollyweather/brolly/internal/models"
	"github.com/brollyweather/brolly/internal/ratelimit"
)

// upstreamLabel is the metrics label for the geocoding upstream.
const upstreamLabel = "nominatim"

// GeocodingService drives the lookup client for single and batch requests,
// spacing batch dispatches through a shared fixed-interval limiter and
// recording metrics. Lookups are issued strictly sequentially; the limiter's
// correctness depends on serialized dispatch timestamps.
type GeocodingService struct {
	log     *slog.Logger       // Logger for logging service activities
	client  geocoding.Lookuper // Lookup client for the geocoding upstream
	limiter *ratelimit.Limiter // Shared dispatch limiter for batch lookups
	metrics *metrics.Metrics   // Metrics for tracking service performance
}

// NewGeocodingService creates a new instance of GeocodingService.
// The limiter is injected rather than created here so that all callers of the
// same service share one dispatch schedule and tests can supply a limiter
// with a controllable clock.
func NewGeocodingService(
	log *slog.Logger,
	client geocoding.Lookuper,
	limiter *ratelimit.Limiter,
	metrics *metrics.Metrics,
) *GeocodingService {
	return &GeocodingService{
		log:     log,
		client:  client,
		limiter: limiter,
		metrics: metrics,
	}
}

// Lookup geocodes a single place name. The optional countryCodes filter
// falls back to the client default when empty.
func (gs *GeocodingService) Lookup(ctx context.Context, name, countryCodes string) models.Outcome {
	startTime := time.Now()
	outcome := gs.client.Lookup(ctx, name, countryCodes)
	gs.observe(outcome, time.Since(startTime))

	return outcome
}

// LookupBatch geocodes every name in the given list, strictly in order and
// one at a time, and returns a map of each input name to its own outcome.
//
// When rateLimited is true every dispatch first waits on the shared limiter.
// A failure for one name (including cancellation during the throttle wait)
// becomes that name's failed entry; it never aborts the remaining names.
// Duplicate input names collapse to the outcome of the last attempt.
func (gs *GeocodingService) LookupBatch(ctx context.Context, names []string, rateLimited bool) models.BatchResult {
	gs.log.InfoContext(ctx, "Starting batch lookup", "names", len(names), "rate_limited", rateLimited)

	results := make(models.BatchResult, len(names))
	for _, name := range names {
		results[name] = gs.lookupOne(ctx, name, rateLimited)
	}

	gs.log.InfoContext(ctx, "Batch lookup finished", "entries", len(results))

	return results
}

// lookupOne performs one rate-limited lookup and converts any error escaping
// the dispatch step into a failed outcome for that name.
func (gs *GeocodingService) lookupOne(ctx context.Context, name string, rateLimited bool) models.Outcome {
	if rateLimited {
		waitStart := time.Now()
		if err := gs.limiter.Wait(ctx); err != nil {
			gs.log.WarnContext(ctx, "Throttle wait aborted", "name", name, "error", err)
			gs.metrics.LookupsProcessed.WithLabelValues("failure").Inc()

			detail := "unknown error"
			if err.Error() != "" {
				detail = err.Error()
			}
			return models.Failed(fmt.Sprintf("failed to geocode %s", name), detail)
		}
		gs.metrics.ThrottleSeconds.Observe(time.Since(waitStart).Seconds())
	}

	startTime := time.Now()
	outcome := gs.client.Lookup(ctx, name, "")
	gs.observe(outcome, time.Since(startTime))

	return outcome
}

// observe records per-lookup metrics.
func (gs *GeocodingService) observe(outcome models.Outcome, elapsed time.Duration) {
	gs.metrics.RequestSeconds.WithLabelValues(upstreamLabel).Observe(elapsed.Seconds())
	if outcome.IsOK() {
		gs.metrics.LookupsProcessed.WithLabelValues("success").Inc()
		return
	}
	gs.metrics.LookupsProcessed.WithLabelValues("failure").Inc()
	gs.metrics.APIErrors.WithLabelValues(upstreamLabel).Inc()
}
