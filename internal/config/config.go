package config

import (
    "encoding/json"
    "errors"
    "fmt"
    "os"
    "strings"

    "github.com/joho/godotenv"
)

type Server struct {
    Port              string `json:"port"`
    RequestTimeoutSec int    `json:"request_timeout_sec"`
    LogLevel          string `json:"log_level"`
}

type Upstream struct {
    BaseURL               string            `json:"base_url"`
    APIKey                string            `json:"api_key"`
    MaxRequestsPerMinute  int               `json:"max_requests_per_minute"`
    MinRequestIntervalSec int               `json:"min_request_interval_sec"`
    Burst                 int               `json:"burst"`
    CacheTTLSeconds       int               `json:"cache_ttl_sec"`
    ExtraTickers          map[string]string `json:"extra_tickers"`
}

type Config struct {
    Server   Server   `json:"server"`
    Upstream Upstream `json:"upstream"`
}

func Default() Config {
    return Config{
        Server: Server{Port: "8080", RequestTimeoutSec: 10, LogLevel: "info"},
        Upstream: Upstream{
            BaseURL:         "https://api.coingecko.com/api/v3",
            CacheTTLSeconds: 60,
            Burst:           1,
        },
    }
}

// Load reads JSON config from path. If path is empty or file does not exist,
// it returns defaults. A .env file is applied first so environment overrides
// (used for secrets) work in local dev too.
func Load(path string) (Config, error) {
    _ = godotenv.Load()
    cfg := Default()
    if path == "" {
        if _, err := os.Stat("config.json"); err == nil {
            path = "config.json"
        }
    }
    if path != "" {
        b, err := os.ReadFile(path)
        if err != nil && !errors.Is(err, os.ErrNotExist) {
            return cfg, fmt.Errorf("read config: %w", err)
        }
        if err == nil {
            if err := json.Unmarshal(b, &cfg); err != nil {
                return cfg, fmt.Errorf("parse config: %w", err)
            }
        }
    }
    applyEnv(&cfg)
    return cfg, nil
}

func applyEnv(cfg *Config) {
    if v := os.Getenv("PORT"); v != "" { cfg.Server.Port = v }
    if v := os.Getenv("REQUEST_TIMEOUT_SEC"); v != "" {
        var x int; fmt.Sscanf(v, "%d", &x); if x > 0 { cfg.Server.RequestTimeoutSec = x }
    }
    if v := os.Getenv("LOG_LEVEL"); v != "" { cfg.Server.LogLevel = strings.ToLower(v) }
    if v := os.Getenv("UPSTREAM_BASE_URL"); v != "" { cfg.Upstream.BaseURL = v }
    if v := os.Getenv("UPSTREAM_API_KEY"); v != "" { cfg.Upstream.APIKey = v }
    if v := os.Getenv("UPSTREAM_MAX_RPM"); v != "" {
        var x int; fmt.Sscanf(v, "%d", &x); if x >= 0 { cfg.Upstream.MaxRequestsPerMinute = x }
    }
    if v := os.Getenv("UPSTREAM_MIN_INTERVAL_SEC"); v != "" {
        var x int; fmt.Sscanf(v, "%d", &x); if x >= 0 { cfg.Upstream.MinRequestIntervalSec = x }
    }
    if v := os.Getenv("UPSTREAM_BURST"); v != "" {
        var x int; fmt.Sscanf(v, "%d", &x); if x > 0 { cfg.Upstream.Burst = x }
    }
    if v := os.Getenv("CACHE_TTL_SEC"); v != "" {
        var x int; fmt.Sscanf(v, "%d", &x); if x >= 0 { cfg.Upstream.CacheTTLSeconds = x }
    }
}
