package yahoo

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/hklens/hklens/internal/interfaces"
	"github.com/hklens/hklens/internal/models"
)

// chartResponse is the v8 chart API envelope. Price cells may be null
// on holidays and halts, hence the interface{} columns.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Currency string `json:"currency"`
				Symbol   string `json:"symbol"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []interface{} `json:"open"`
					High   []interface{} `json:"high"`
					Low    []interface{} `json:"low"`
					Close  []interface{} `json:"close"`
					Volume []interface{} `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func toFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	}
	return 0
}

// GetHistory retrieves OHLCV history via the chart endpoint. Null rows
// (market holidays, halted sessions) are dropped; the remaining bars come
// back sorted ascending with duplicate timestamps removed.
func (c *Client) GetHistory(ctx context.Context, symbol string, opts ...interfaces.HistoryOption) (*models.Series, error) {
	params := &interfaces.HistoryParams{
		Period:   models.Period1Y,
		Interval: models.Interval1d,
	}
	for _, opt := range opts {
		opt(params)
	}

	urlParams := url.Values{}
	urlParams.Set("range", string(params.Period))
	urlParams.Set("interval", string(params.Interval))
	urlParams.Set("includePrePost", "false")

	path := fmt.Sprintf("/v8/finance/chart/%s", url.PathEscape(symbol))

	var resp chartResponse
	if err := c.get(ctx, path, urlParams, &resp); err != nil {
		return nil, err
	}

	if resp.Chart.Error != nil {
		return nil, &APIError{
			StatusCode: 0,
			Message:    resp.Chart.Error.Description,
			Endpoint:   path,
		}
	}
	if len(resp.Chart.Result) == 0 {
		return nil, fmt.Errorf("no chart result for %s", symbol)
	}

	result := resp.Chart.Result[0]
	if len(result.Timestamp) == 0 || len(result.Indicators.Quote) == 0 {
		return models.NewSeries(symbol, nil), nil
	}

	quote := result.Indicators.Quote[0]
	bars := make([]models.Bar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(quote.Close) {
			break
		}
		o := toFloat(quote.Open[i])
		h := toFloat(quote.High[i])
		l := toFloat(quote.Low[i])
		cl := toFloat(quote.Close[i])
		if o == 0 && h == 0 && l == 0 && cl == 0 {
			continue
		}
		var volume int64
		if i < len(quote.Volume) {
			volume = int64(toFloat(quote.Volume[i]))
		}
		bars = append(bars, models.Bar{
			Time:   time.Unix(ts, 0).UTC(),
			Open:   o,
			High:   h,
			Low:    l,
			Close:  cl,
			Volume: volume,
		})
	}

	c.logger.Debug().Str("symbol", symbol).Int("bars", len(bars)).Msg("yahoo chart fetched")

	return models.NewSeries(symbol, bars), nil
}
