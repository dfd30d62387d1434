package main

import (
    "context"
    "encoding/json"
    "errors"
    "net/http"
    "strings"
    "time"

    "github.com/rs/zerolog"

    "pricesnap/internal/gateway"
    "pricesnap/internal/ticker"
)

type errorResponse struct {
    Error string `json:"error"`
}

// handlePrice serves GET /price?ticker=SYM.
func handlePrice(gw *gateway.Gateway, log zerolog.Logger) http.HandlerFunc {
    return func(w http.ResponseWriter, r *http.Request) {
        sym := r.URL.Query().Get("ticker")
        if strings.TrimSpace(sym) == "" {
            writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing ticker query param"})
            return
        }

        ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
        defer cancel()

        snap, err := gw.Snapshot(ctx, sym)
        switch {
        case err == nil:
            writeJSON(w, http.StatusOK, snap)
        case errors.Is(err, ticker.ErrUnknownSymbol):
            writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
        default:
            log.Error().Err(err).Str("ticker", sym).Msg("snapshot request failed")
            writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
        }
    }
}

func writeJSON(w http.ResponseWriter, status int, v any) {
    w.WriteHeader(status)
    enc := json.NewEncoder(w)
    enc.SetEscapeHTML(false)
    _ = enc.Encode(v)
}

func withJSONHeaders(next http.Handler) http.Handler {
    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        w.Header().Set("Content-Type", "application/json; charset=utf-8")
        // Basic CORS for the mini-app webview; adjust as needed.
        w.Header().Set("Access-Control-Allow-Origin", "*")
        w.Header().Set("Access-Control-Allow-Methods", "GET,OPTIONS")
        w.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
        if r.Method == http.MethodOptions {
            w.WriteHeader(http.StatusNoContent)
            return
        }
        next.ServeHTTP(w, r)
    })
}

// recoverPanic protects handlers from panics, logging the fault
// server-side and keeping the response body generic.
func recoverPanic(log zerolog.Logger) func(http.Handler) http.Handler {
    return func(next http.Handler) http.Handler {
        return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
            defer func() {
                if rec := recover(); rec != nil {
                    log.Error().Interface("panic", rec).Str("path", r.URL.Path).Msg("handler panicked")
                    writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
                }
            }()
            next.ServeHTTP(w, r)
        })
    }
}

func requestLogger(log zerolog.Logger) func(http.Handler) http.Handler {
    return func(next http.Handler) http.Handler {
        return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
            start := time.Now()
            next.ServeHTTP(w, r)
            log.Debug().
                Str("method", r.Method).
                Str("path", r.URL.Path).
                Dur("elapsed", time.Since(start)).
                Msg("request")
        })
    }
}
