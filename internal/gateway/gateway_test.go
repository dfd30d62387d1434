package gateway

import (
    "context"
    "errors"
    "fmt"
    "sync"
    "sync/atomic"
    "testing"
    "time"

    "github.com/prometheus/client_golang/prometheus"
    "github.com/rs/zerolog"

    "pricesnap/internal/metrics"
    "pricesnap/internal/snapcache"
    "pricesnap/internal/ticker"
    "pricesnap/internal/upstream"
)

type fakeUpstream struct {
    spot     upstream.SpotStats
    spotErr  error
    chart    []upstream.ChartPoint
    chartErr error
    delay    time.Duration

    spotCalls  atomic.Int64
    chartCalls atomic.Int64
}

func (f *fakeUpstream) SpotAndStats(ctx context.Context, id string) (upstream.SpotStats, error) {
    f.spotCalls.Add(1)
    if f.delay > 0 {
        select {
        case <-time.After(f.delay):
        case <-ctx.Done():
            // classify like the real client would
            return upstream.SpotStats{}, fmt.Errorf("%w: %v", upstream.ErrUnavailable, ctx.Err())
        }
    }
    return f.spot, f.spotErr
}

func (f *fakeUpstream) ChartSeries(ctx context.Context, id string) ([]upstream.ChartPoint, error) {
    f.chartCalls.Add(1)
    return f.chart, f.chartErr
}

func newTestGateway(up Upstream, ttl time.Duration) *Gateway {
    reg := ticker.New(nil)
    return New(reg, snapcache.New(ttl), up, metrics.New(prometheus.NewRegistry()), zerolog.Nop())
}

func TestSnapshot_CacheHitWithinTTL(t *testing.T) {
    up := &fakeUpstream{
        spot:  upstream.SpotStats{Price: 1934.12, Change24h: 1.1, MarketCap: 2.3e11, Volume: 8e9},
        chart: []upstream.ChartPoint{{Timestamp: 1, Price: 1930}},
    }
    g := newTestGateway(up, 60*time.Second)
    t0 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
    g.now = func() time.Time { return t0 }

    first, err := g.Snapshot(context.Background(), "eth")
    if err != nil { t.Fatalf("first: %v", err) }

    g.now = func() time.Time { return t0.Add(59 * time.Second) }
    second, err := g.Snapshot(context.Background(), "ETH")
    if err != nil { t.Fatalf("second: %v", err) }

    if n := up.spotCalls.Load(); n != 1 {
        t.Fatalf("spot fetch should run once, ran %d times", n)
    }
    if fmt.Sprintf("%+v", first) != fmt.Sprintf("%+v", second) {
        t.Fatalf("cached snapshot differs:\n%+v\n%+v", first, second)
    }
}

func TestSnapshot_TTLExpiryTriggersRefetch(t *testing.T) {
    up := &fakeUpstream{spot: upstream.SpotStats{Price: 10}}
    g := newTestGateway(up, 60*time.Second)
    t0 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
    g.now = func() time.Time { return t0 }

    if _, err := g.Snapshot(context.Background(), "ETH"); err != nil { t.Fatal(err) }
    g.now = func() time.Time { return t0.Add(61 * time.Second) }
    if _, err := g.Snapshot(context.Background(), "ETH"); err != nil { t.Fatal(err) }

    if n := up.spotCalls.Load(); n != 2 {
        t.Fatalf("want exactly one extra spot fetch after expiry, total %d", n)
    }
}

func TestSnapshot_UnknownSymbol(t *testing.T) {
    g := newTestGateway(&fakeUpstream{}, time.Minute)
    _, err := g.Snapshot(context.Background(), "ZZZZZ")
    if !errors.Is(err, ticker.ErrUnknownSymbol) {
        t.Fatalf("want ErrUnknownSymbol, got %v", err)
    }
}

func TestSnapshot_SpotFailureServesFallback(t *testing.T) {
    up := &fakeUpstream{spotErr: upstream.ErrUnavailable}
    g := newTestGateway(up, time.Minute)

    s, err := g.Snapshot(context.Background(), "ETH")
    if err != nil { t.Fatalf("fallback must not surface an error: %v", err) }
    if s.CurrentPrice != 2500 { t.Fatalf("ETH fallback price = %v, want 2500", s.CurrentPrice) }
    if s.MarketCap != "N/A" || s.Volume != "N/A" {
        t.Fatalf("fallback cap/volume must be N/A: %+v", s)
    }
    if len(s.ChartSeries.Timestamps) != 0 || len(s.ChartSeries.Prices) != 0 {
        t.Fatalf("fallback chart must be empty: %+v", s.ChartSeries)
    }
    if n := up.chartCalls.Load(); n != 0 {
        t.Fatalf("chart must be skipped after spot failure, called %d times", n)
    }

    // the synthetic snapshot is cached like a real one
    cached, err := g.Snapshot(context.Background(), "ETH")
    if err != nil { t.Fatal(err) }
    if cached.PriceChange24h != s.PriceChange24h {
        t.Fatalf("second request should hit the cached synthetic entry")
    }
    if n := up.spotCalls.Load(); n != 1 {
        t.Fatalf("cached fallback must not refetch, spot calls=%d", n)
    }
}

func TestSnapshot_ChartFailureAloneKeepsSpotData(t *testing.T) {
    up := &fakeUpstream{
        spot:     upstream.SpotStats{Price: 1934.12, Change24h: -2.4, MarketCap: 2.33e11, Volume: 8.4e9},
        chartErr: upstream.ErrChartUnavailable,
    }
    g := newTestGateway(up, time.Minute)

    s, err := g.Snapshot(context.Background(), "ETH")
    if err != nil { t.Fatalf("chart failure must not surface: %v", err) }
    if s.CurrentPrice != 1934.12 || s.MarketCap != "$233.0B" || s.Volume != "$8.4B" {
        t.Fatalf("real spot fields expected: %+v", s)
    }
    if len(s.ChartSeries.Timestamps) != 0 || len(s.ChartSeries.Prices) != 0 {
        t.Fatalf("series must be empty on chart failure: %+v", s.ChartSeries)
    }
}

func TestSnapshot_CanceledCallerDoesNotPoisonCache(t *testing.T) {
    up := &fakeUpstream{
        spot:  upstream.SpotStats{Price: 1934.12, MarketCap: 2.33e11, Volume: 8.4e9},
        delay: 30 * time.Millisecond,
    }
    g := newTestGateway(up, time.Minute)

    // the caller is already gone when the fetch starts
    ctx, cancel := context.WithCancel(context.Background())
    cancel()
    first, err := g.Snapshot(ctx, "ETH")
    if err != nil { t.Fatalf("leader: %v", err) }
    if first.CurrentPrice != 1934.12 || first.MarketCap != "$233.0B" {
        t.Fatalf("flight must outlive its caller and fetch real data: %+v", first)
    }

    // a fresh caller must see the real cached entry, not a synthetic one
    second, err := g.Snapshot(context.Background(), "ETH")
    if err != nil { t.Fatalf("follower: %v", err) }
    if second.CurrentPrice == 2500 || second.MarketCap == "N/A" {
        t.Fatalf("synthetic fallback cached despite healthy upstream: %+v", second)
    }
    if n := up.spotCalls.Load(); n != 1 {
        t.Fatalf("follower should hit the cache, spot calls = %d", n)
    }
}

func TestSnapshot_ConcurrentColdMissesSingleFlight(t *testing.T) {
    up := &fakeUpstream{spot: upstream.SpotStats{Price: 10}, delay: 20 * time.Millisecond}
    g := newTestGateway(up, time.Minute)

    var wg sync.WaitGroup
    for i := 0; i < 50; i++ {
        wg.Add(1)
        go func() {
            defer wg.Done()
            if _, err := g.Snapshot(context.Background(), "ETH"); err != nil {
                t.Errorf("snapshot: %v", err)
            }
        }()
    }
    wg.Wait()

    if n := up.spotCalls.Load(); n != 1 {
        t.Fatalf("50 concurrent cold requests must collapse to one spot fetch, got %d", n)
    }
}
