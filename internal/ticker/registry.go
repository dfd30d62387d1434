package ticker

import (
    "errors"
    "fmt"
    "strings"
)

// ErrUnknownSymbol is returned when a symbol has no upstream mapping.
var ErrUnknownSymbol = errors.New("unknown symbol")

// Registry maps canonical ticker symbols to upstream provider ids.
// The table is built once and never mutated afterwards, so lookups
// need no locking.
type Registry struct {
    bySymbol map[string]string
}

// defaultMappings covers the tickers the app supports out of the box.
var defaultMappings = map[string]string{
    "BTC":  "bitcoin",
    "ETH":  "ethereum",
    "SOL":  "solana",
    "DOGE": "dogecoin",
    "BNB":  "binancecoin",
    "XRP":  "ripple",
    "ADA":  "cardano",
    "LINK": "chainlink",
    "AVAX": "avalanche-2",
    "DOT":  "polkadot",
}

// New builds a registry from the default table plus any extra mappings
// (config-supplied). Extra keys are uppercased; extras win on conflict.
func New(extra map[string]string) *Registry {
    m := make(map[string]string, len(defaultMappings)+len(extra))
    for k, v := range defaultMappings { m[k] = v }
    for k, v := range extra {
        k = strings.ToUpper(strings.TrimSpace(k))
        v = strings.TrimSpace(v)
        if k == "" || v == "" { continue }
        m[k] = v
    }
    return &Registry{bySymbol: m}
}

// Resolve normalizes symbol to uppercase and returns the upstream id.
func (r *Registry) Resolve(symbol string) (string, error) {
    sym := strings.ToUpper(strings.TrimSpace(symbol))
    id, ok := r.bySymbol[sym]
    if !ok {
        return "", fmt.Errorf("%w: %q", ErrUnknownSymbol, symbol)
    }
    return id, nil
}

// Normalize returns the canonical (uppercase, trimmed) form of symbol.
func Normalize(symbol string) string {
    return strings.ToUpper(strings.TrimSpace(symbol))
}

// Symbols returns the registered canonical symbols. Order is undefined.
func (r *Registry) Symbols() []string {
    out := make([]string, 0, len(r.bySymbol))
    for k := range r.bySymbol { out = append(out, k) }
    return out
}
