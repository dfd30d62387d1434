package snapshot

import (
    "fmt"

    "pricesnap/internal/upstream"
)

// NotAvailable is rendered when a currency-scale figure is absent.
const NotAvailable = "N/A"

// ChartSeries holds index-aligned timestamp/price observations.
// Both slices are always non-nil so an empty series marshals as [].
type ChartSeries struct {
    Timestamps []int64   `json:"timestamps"`
    Prices     []float64 `json:"prices"`
}

// PriceSnapshot is the canonical shape returned to callers.
type PriceSnapshot struct {
    CurrentPrice   float64     `json:"currentPrice"`
    PriceChange24h float64     `json:"priceChange24h"`
    MarketCap      string      `json:"marketCap"`
    Volume         string      `json:"volume"`
    ChartSeries    ChartSeries `json:"chartSeries"`
}

// EmptySeries returns a chart series with zero observations.
func EmptySeries() ChartSeries {
    return ChartSeries{Timestamps: []int64{}, Prices: []float64{}}
}

// FormatUSD renders a dollar figure with a magnitude suffix:
// >=1e12 "T", >=1e9 "B", >=1e6 "M", >=1e3 "K", otherwise two decimals.
// Zero or negative values render as "N/A" rather than "$0.00".
func FormatUSD(v float64) string {
    switch {
    case v <= 0:
        return NotAvailable
    case v >= 1e12:
        return fmt.Sprintf("$%.1fT", v/1e12)
    case v >= 1e9:
        return fmt.Sprintf("$%.1fB", v/1e9)
    case v >= 1e6:
        return fmt.Sprintf("$%.1fM", v/1e6)
    case v >= 1e3:
        return fmt.Sprintf("$%.1fK", v/1e3)
    default:
        return fmt.Sprintf("$%.2f", v)
    }
}

// Combine merges a spot/stats result and an optional chart series into
// the canonical snapshot. chart may be nil or empty when the chart
// fetch failed; the snapshot then carries empty aligned series.
func Combine(spot upstream.SpotStats, chart []upstream.ChartPoint) PriceSnapshot {
    series := EmptySeries()
    if len(chart) > 0 {
        series = ChartSeries{
            Timestamps: make([]int64, len(chart)),
            Prices:     make([]float64, len(chart)),
        }
        for i, p := range chart {
            series.Timestamps[i] = p.Timestamp
            series.Prices[i] = p.Price
        }
    }
    return PriceSnapshot{
        CurrentPrice:   spot.Price,
        PriceChange24h: spot.Change24h,
        MarketCap:      FormatUSD(spot.MarketCap),
        Volume:         FormatUSD(spot.Volume),
        ChartSeries:    series,
    }
}
