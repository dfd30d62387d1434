package main

import (
    "context"
    "encoding/json"
    "flag"
    "os"
    "time"

    "github.com/prometheus/client_golang/prometheus"
    "github.com/rs/zerolog"

    "pricesnap/internal/config"
    "pricesnap/internal/gateway"
    "pricesnap/internal/httpx"
    "pricesnap/internal/metrics"
    "pricesnap/internal/snapcache"
    "pricesnap/internal/ticker"
    "pricesnap/internal/upstream"
)

// fetch is a one-shot debugging CLI: resolve one ticker, run the full
// gateway path once and print the snapshot JSON.
func main() {
    var symbol string
    var timeout int
    var configPath string

    flag.StringVar(&symbol, "ticker", "ETH", "ticker symbol to fetch")
    flag.IntVar(&timeout, "timeout", 15, "request timeout seconds")
    flag.StringVar(&configPath, "config", os.Getenv("CONFIG_FILE"), "path to config.json (optional)")
    flag.Parse()

    log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

    cfg, err := config.Load(configPath)
    if err != nil { log.Fatal().Err(err).Msg("config") }
    if timeout > 0 { cfg.Server.RequestTimeoutSec = timeout }

    httpClient := httpx.New(time.Duration(cfg.Server.RequestTimeoutSec) * time.Second)
    client, err := upstream.NewClient(cfg.Upstream.APIKey,
        upstream.WithBaseURL(cfg.Upstream.BaseURL),
        upstream.WithHTTPClient(httpClient),
    )
    if err != nil { log.Fatal().Err(err).Msg("upstream client") }

    gw := gateway.New(
        ticker.New(cfg.Upstream.ExtraTickers),
        snapcache.New(0), // one-shot: nothing to cache
        client,
        metrics.New(prometheus.NewRegistry()),
        log,
    )

    ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.RequestTimeoutSec)*time.Second)
    defer cancel()

    snap, err := gw.Snapshot(ctx, symbol)
    if err != nil { log.Fatal().Err(err).Str("ticker", symbol).Msg("snapshot") }

    enc := json.NewEncoder(os.Stdout)
    enc.SetIndent("", "  ")
    _ = enc.Encode(snap)
}
