package fallback

import (
    "math/rand"

    "pricesnap/internal/snapshot"
)

// basePrices are the synthetic spot prices served per ticker when the
// upstream is entirely unavailable. Symbols without an entry fall back
// to defaultPrice.
var basePrices = map[string]float64{
    "BTC":  65000,
    "ETH":  2500,
    "SOL":  150,
    "DOGE": 0.12,
    "BNB":  580,
    "XRP":  0.52,
    "ADA":  0.45,
    "LINK": 14,
    "AVAX": 28,
    "DOT":  6.5,
}

const defaultPrice = 100

// Generate produces a well-shaped synthetic snapshot for symbol: the
// documented base price, a pseudo-random 24h change within +/-5
// percentage points, "N/A" cap/volume and an empty chart series.
// Callers cache and serve it exactly like a real snapshot.
func Generate(symbol string) snapshot.PriceSnapshot {
    price, ok := basePrices[symbol]
    if !ok { price = defaultPrice }
    return snapshot.PriceSnapshot{
        CurrentPrice:   price,
        PriceChange24h: rand.Float64()*10 - 5,
        MarketCap:      snapshot.NotAvailable,
        Volume:         snapshot.NotAvailable,
        ChartSeries:    snapshot.EmptySeries(),
    }
}
