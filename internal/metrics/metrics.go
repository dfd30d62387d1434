package metrics

import (
    "github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the counters the gateway reports.
type Metrics struct {
    CacheHits      prometheus.Counter
    CacheMisses    prometheus.Counter
    UpstreamErrors *prometheus.CounterVec // label: call (spot|chart)
    FallbackServed prometheus.Counter
}

// New registers the counters on reg and returns them. Pass a fresh
// registry in tests to keep instances isolated.
func New(reg prometheus.Registerer) *Metrics {
    m := &Metrics{
        CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
            Name: "pricesnap_cache_hits_total",
            Help: "Snapshot requests served from the cache.",
        }),
        CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
            Name: "pricesnap_cache_misses_total",
            Help: "Snapshot requests that required an upstream fetch.",
        }),
        UpstreamErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
            Name: "pricesnap_upstream_errors_total",
            Help: "Failed upstream calls by call type.",
        }, []string{"call"}),
        FallbackServed: prometheus.NewCounter(prometheus.CounterOpts{
            Name: "pricesnap_fallback_served_total",
            Help: "Responses served from the synthetic fallback generator.",
        }),
    }
    reg.MustRegister(m.CacheHits, m.CacheMisses, m.UpstreamErrors, m.FallbackServed)
    return m
}
