package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"net/http"
)

// SpotStats is the spot price and market stats for one id. Fields the
// upstream omits or nulls decode as 0.
type SpotStats struct {
	Price     float64
	Change24h float64
	MarketCap float64
	Volume    float64
}

// marketRow mirrors one element of the markets listing. Nullable fields
// are pointers so absent values stay distinguishable from real zeros.
type marketRow struct {
	ID        string   `json:"id"`
	Price     *float64 `json:"current_price"`
	Change24h *float64 `json:"price_change_percentage_24h"`
	MarketCap *float64 `json:"market_cap"`
	Volume    *float64 `json:"total_volume"`
}

// SpotAndStats fetches the spot price, 24h change, market cap and
// volume for id. Any transport failure, non-2xx status or a response
// missing id classifies as ErrUnavailable.
func (c *Client) SpotAndStats(ctx context.Context, id string) (SpotStats, error) {
	if err := c.wait(ctx); err != nil {
		return SpotStats{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	query := maps.Clone(c.query)
	query.Set("vs_currency", "usd")
	query.Set("ids", id)

	url := fmt.Sprintf("%s/coins/markets?%s", c.baseURL, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return SpotStats{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header = c.header.Clone()

	res, err := c.httpClient.Do(req)
	if err != nil {
		return SpotStats{}, fmt.Errorf("%w: performing request: %v", ErrUnavailable, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return SpotStats{}, fmt.Errorf("%w: status %d", ErrUnavailable, res.StatusCode)
	}

	var rows []marketRow
	if err := json.NewDecoder(res.Body).Decode(&rows); err != nil {
		return SpotStats{}, fmt.Errorf("%w: decoding markets response: %v", ErrUnavailable, err)
	}

	for _, row := range rows {
		if row.ID != id {
			continue
		}
		return SpotStats{
			Price:     deref(row.Price),
			Change24h: deref(row.Change24h),
			MarketCap: deref(row.MarketCap),
			Volume:    deref(row.Volume),
		}, nil
	}
	return SpotStats{}, fmt.Errorf("%w: id %q missing from response", ErrUnavailable, id)
}

// deref is a helper to default a nullable numeric field to 0.
func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
