package main

import (
    "context"
    "net/http"
    "os"
    "os/signal"
    "syscall"
    "time"

    "github.com/go-chi/chi/v5"
    "github.com/prometheus/client_golang/prometheus"
    "github.com/prometheus/client_golang/prometheus/promhttp"
    "github.com/rs/zerolog"

    "pricesnap/internal/config"
    "pricesnap/internal/gateway"
    "pricesnap/internal/httpx"
    "pricesnap/internal/metrics"
    "pricesnap/internal/snapcache"
    "pricesnap/internal/ticker"
    "pricesnap/internal/upstream"
    "pricesnap/internal/upstream/ratelimit"
)

func main() {
    cfgPath := os.Getenv("CONFIG_FILE")
    cfg, err := config.Load(cfgPath)
    if err != nil {
        bootLog := zerolog.New(os.Stderr)
        bootLog.Fatal().Err(err).Msg("config")
    }

    level, err := zerolog.ParseLevel(cfg.Server.LogLevel)
    if err != nil { level = zerolog.InfoLevel }
    log := zerolog.New(os.Stdout).Level(level).With().Timestamp().Str("service", "pricesnap").Logger()

    if cfg.Upstream.APIKey == "" {
        log.Warn().Msg("UPSTREAM_API_KEY not set; running against the public tier")
    }

    httpClient := httpx.New(time.Duration(cfg.Server.RequestTimeoutSec) * time.Second)

    opts := []upstream.ClientOption{
        upstream.WithBaseURL(cfg.Upstream.BaseURL),
        upstream.WithHTTPClient(httpClient),
    }
    // Prefer token bucket with burst if RPM is set, otherwise use min-interval
    if cfg.Upstream.MaxRequestsPerMinute > 0 {
        burst := cfg.Upstream.Burst
        if burst <= 0 { burst = 1 }
        opts = append(opts, upstream.WithLimiter(ratelimit.PerMinute(cfg.Upstream.MaxRequestsPerMinute, burst)))
    } else if cfg.Upstream.MinRequestIntervalSec > 0 {
        interval := time.Duration(cfg.Upstream.MinRequestIntervalSec) * time.Second
        opts = append(opts, upstream.WithLimiter(&ratelimit.MinInterval{Interval: interval}))
    }
    client, err := upstream.NewClient(cfg.Upstream.APIKey, opts...)
    if err != nil { log.Fatal().Err(err).Msg("upstream client") }

    registry := ticker.New(cfg.Upstream.ExtraTickers)
    log.Info().Int("tickers", len(registry.Symbols())).Msg("ticker registry loaded")
    store := snapcache.New(time.Duration(cfg.Upstream.CacheTTLSeconds) * time.Second)
    m := metrics.New(prometheus.DefaultRegisterer)
    gw := gateway.New(registry, store, client, m, log)

    r := chi.NewRouter()
    r.Use(requestLogger(log))
    r.Use(recoverPanic(log))
    r.Use(withJSONHeaders)
    r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
        w.WriteHeader(http.StatusOK)
        _, _ = w.Write([]byte("ok"))
    })
    r.Get("/price", handlePrice(gw, log))
    r.Handle("/metrics", promhttp.Handler())

    srv := &http.Server{
        Addr:              ":" + cfg.Server.Port,
        Handler:           r,
        ReadHeaderTimeout: 5 * time.Second,
        ReadTimeout:       15 * time.Second,
        WriteTimeout:      20 * time.Second,
        IdleTimeout:       60 * time.Second,
    }

    go func() {
        log.Info().Str("port", cfg.Server.Port).Msg("server listening")
        if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
            log.Fatal().Err(err).Msg("server")
        }
    }()

    // graceful shutdown
    ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
    defer stop()
    <-ctx.Done()
    shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
    defer cancel()
    _ = srv.Shutdown(shutdownCtx)
}
