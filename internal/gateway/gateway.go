package gateway

import (
    "context"
    "fmt"
    "time"

    "github.com/rs/zerolog"
    "golang.org/x/sync/singleflight"

    "pricesnap/internal/fallback"
    "pricesnap/internal/metrics"
    "pricesnap/internal/snapcache"
    "pricesnap/internal/snapshot"
    "pricesnap/internal/ticker"
    "pricesnap/internal/upstream"
)

// Upstream is the slice of the market-data client the gateway needs.
type Upstream interface {
    SpotAndStats(ctx context.Context, id string) (upstream.SpotStats, error)
    ChartSeries(ctx context.Context, id string) ([]upstream.ChartPoint, error)
}

// Gateway serves price snapshots: resolve symbol, consult the cache,
// fetch+aggregate on miss, fall back to a synthetic snapshot when the
// spot fetch fails. Concurrent misses for the same symbol collapse into
// one upstream round trip.
type Gateway struct {
    registry *ticker.Registry
    cache    *snapcache.Store
    upstream Upstream
    metrics  *metrics.Metrics
    log      zerolog.Logger

    group singleflight.Group
    now   func() time.Time
}

// flightTimeout bounds one upstream round trip. The flight is detached
// from the caller's context, so this is its only deadline.
const flightTimeout = 15 * time.Second

func New(reg *ticker.Registry, cache *snapcache.Store, up Upstream, m *metrics.Metrics, log zerolog.Logger) *Gateway {
    return &Gateway{
        registry: reg,
        cache:    cache,
        upstream: up,
        metrics:  m,
        log:      log,
        now:      time.Now,
    }
}

// Snapshot returns the current snapshot for symbol. The only error it
// surfaces is ticker.ErrUnknownSymbol (wrapped); upstream failures are
// absorbed by the fallback path so callers always get a shaped value.
func (g *Gateway) Snapshot(ctx context.Context, symbol string) (snapshot.PriceSnapshot, error) {
    id, err := g.registry.Resolve(symbol)
    if err != nil {
        return snapshot.PriceSnapshot{}, err
    }
    sym := ticker.Normalize(symbol)

    if v, ok := g.cache.Get(sym, g.now()); ok {
        g.metrics.CacheHits.Inc()
        return v, nil
    }
    g.metrics.CacheMisses.Inc()

    v, err, _ := g.group.Do(sym, func() (any, error) {
        // A concurrent flight may have refreshed the entry while this
        // caller was queued; serve that instead of refetching.
        if v, ok := g.cache.Get(sym, g.now()); ok {
            return v, nil
        }
        // The flight is shared by every caller waiting on sym and its
        // result is cached, so it must not die with the caller that
        // happened to start it: a disconnect mid-fetch would otherwise
        // cache the synthetic fallback while the upstream is healthy.
        fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), flightTimeout)
        defer cancel()
        return g.refresh(fctx, sym, id), nil
    })
    if err != nil {
        return snapshot.PriceSnapshot{}, err
    }
    snap, ok := v.(snapshot.PriceSnapshot)
    if !ok {
        return snapshot.PriceSnapshot{}, fmt.Errorf("unexpected flight result %T", v)
    }
    return snap, nil
}

// refresh performs the upstream round trip and cache write for sym.
// It never fails: a spot failure degrades to the synthetic fallback,
// a chart failure degrades to an empty series.
func (g *Gateway) refresh(ctx context.Context, sym, id string) snapshot.PriceSnapshot {
    spot, err := g.upstream.SpotAndStats(ctx, id)
    if err != nil {
        g.log.Warn().Err(err).Str("symbol", sym).Msg("spot fetch failed, serving fallback")
        g.metrics.UpstreamErrors.WithLabelValues("spot").Inc()
        g.metrics.FallbackServed.Inc()
        snap := fallback.Generate(sym)
        g.cache.Put(sym, snap, g.now())
        return snap
    }

    chart, err := g.upstream.ChartSeries(ctx, id)
    if err != nil {
        g.log.Warn().Err(err).Str("symbol", sym).Msg("chart fetch failed, serving empty series")
        g.metrics.UpstreamErrors.WithLabelValues("chart").Inc()
        chart = nil
    }

    snap := snapshot.Combine(spot, chart)
    g.cache.Put(sym, snap, g.now())
    return snap
}
