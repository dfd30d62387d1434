package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"net/http"
)

// ChartPoint is one historical observation: epoch milliseconds and the
// price at that instant.
type ChartPoint struct {
	Timestamp int64
	Price     float64
}

// chartResponse mirrors the market_chart payload: prices is a list of
// [timestamp_ms, price] pairs.
type chartResponse struct {
	Prices [][2]float64 `json:"prices"`
}

// ChartSeries fetches the most recent 1-day price history for id.
// Failures classify as ErrChartUnavailable; the caller substitutes an
// empty series rather than escalating.
func (c *Client) ChartSeries(ctx context.Context, id string) ([]ChartPoint, error) {
	if err := c.wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrChartUnavailable, err)
	}

	query := maps.Clone(c.query)
	query.Set("vs_currency", "usd")
	query.Set("days", "1")

	url := fmt.Sprintf("%s/coins/%s/market_chart?%s", c.baseURL, id, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header = c.header.Clone()

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: performing request: %v", ErrChartUnavailable, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d", ErrChartUnavailable, res.StatusCode)
	}

	var body chartResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decoding chart response: %v", ErrChartUnavailable, err)
	}

	points := make([]ChartPoint, 0, len(body.Prices))
	for _, pair := range body.Prices {
		points = append(points, ChartPoint{Timestamp: int64(pair[0]), Price: pair[1]})
	}
	return points, nil
}
