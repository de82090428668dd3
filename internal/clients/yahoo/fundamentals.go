package yahoo

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/hklens/hklens/internal/models"
)

const (
	infoModules    = "price,summaryProfile,summaryDetail,defaultKeyStatistics,financialData"
	holdersModules = "majorHoldersBreakdown,institutionOwnership,insiderTransactions"
)

// quoteSummaryResponse is the v10 quoteSummary envelope. Module fields
// arrive either as plain scalars or as {raw, fmt} wrappers.
type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []map[string]map[string]interface{} `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteSummary"`
}

// unwrapValue collapses a {raw, fmt} wrapper to its raw value; scalars
// pass through unchanged.
func unwrapValue(v interface{}) (interface{}, bool) {
	wrapped, isMap := v.(map[string]interface{})
	if !isMap {
		return v, v != nil
	}
	raw, present := wrapped["raw"]
	if !present {
		return nil, false
	}
	return raw, true
}

func unwrapFloat(v interface{}) float64 {
	raw, ok := unwrapValue(v)
	if !ok {
		return 0
	}
	return toFloat(raw)
}

func unwrapString(v interface{}) string {
	if s, isStr := v.(string); isStr {
		return s
	}
	if wrapped, isMap := v.(map[string]interface{}); isMap {
		if s, isStr := wrapped["fmt"].(string); isStr {
			return s
		}
	}
	return ""
}

func unwrapTime(v interface{}) time.Time {
	raw, ok := unwrapValue(v)
	if !ok {
		return time.Time{}
	}
	secs := int64(toFloat(raw))
	if secs == 0 {
		return time.Time{}
	}
	return time.Unix(secs, 0).UTC()
}

func (c *Client) quoteSummary(ctx context.Context, symbol, modules string) (map[string]map[string]interface{}, error) {
	params := url.Values{}
	params.Set("modules", modules)

	path := fmt.Sprintf("/v10/finance/quoteSummary/%s", url.PathEscape(symbol))

	var resp quoteSummaryResponse
	if err := c.get(ctx, path, params, &resp); err != nil {
		return nil, err
	}

	if resp.QuoteSummary.Error != nil {
		return nil, &APIError{
			Message:  resp.QuoteSummary.Error.Description,
			Endpoint: path,
		}
	}
	if len(resp.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("no quote summary for %s", symbol)
	}
	return resp.QuoteSummary.Result[0], nil
}

// GetInfo retrieves descriptive and fundamental metadata, flattened
// across modules into a single field map keyed by the upstream field
// names (longName, marketCap, trailingPE, sector and so on).
func (c *Client) GetInfo(ctx context.Context, symbol string) (models.Info, error) {
	modules, err := c.quoteSummary(ctx, symbol, infoModules)
	if err != nil {
		return nil, err
	}

	info := models.Info{}
	for _, fields := range modules {
		for key, v := range fields {
			raw, ok := unwrapValue(v)
			if !ok {
				continue
			}
			if _, exists := info[key]; exists {
				continue
			}
			info[key] = raw
		}
	}

	c.logger.Debug().Str("symbol", symbol).Int("fields", len(info)).Msg("yahoo info fetched")

	return info, nil
}

// GetHolders retrieves the shareholder breakdowns. Each table maps from
// its own module; a module missing upstream leaves that table empty
// rather than failing the call.
func (c *Client) GetHolders(ctx context.Context, symbol string) (*models.Holders, error) {
	modules, err := c.quoteSummary(ctx, symbol, holdersModules)
	if err != nil {
		return nil, err
	}

	holders := &models.Holders{}

	if breakdown, present := modules["majorHoldersBreakdown"]; present {
		descriptions := map[string]string{
			"insidersPercentHeld":          "% of Shares Held by All Insider",
			"institutionsPercentHeld":      "% of Shares Held by Institutions",
			"institutionsFloatPercentHeld": "% of Float Held by Institutions",
			"institutionsCount":            "Number of Institutions Holding Shares",
		}
		for _, key := range []string{"insidersPercentHeld", "institutionsPercentHeld", "institutionsFloatPercentHeld", "institutionsCount"} {
			v, present := breakdown[key]
			if !present {
				continue
			}
			holders.Major = append(holders.Major, models.MajorHolderRow{
				Value:       unwrapString(v),
				Description: descriptions[key],
			})
		}
	}

	if ownership, present := modules["institutionOwnership"]; present {
		if list, isList := ownership["ownershipList"].([]interface{}); isList {
			for _, entry := range list {
				row, isMap := entry.(map[string]interface{})
				if !isMap {
					continue
				}
				holders.Institutional = append(holders.Institutional, models.InstitutionalHolder{
					Holder:       unwrapString(row["organization"]),
					Shares:       int64(unwrapFloat(row["position"])),
					DateReported: unwrapTime(row["reportDate"]),
					PctOut:       unwrapFloat(row["pctHeld"]),
					Value:        unwrapFloat(row["value"]),
				})
			}
		}
	}

	if transactions, present := modules["insiderTransactions"]; present {
		if list, isList := transactions["transactions"].([]interface{}); isList {
			for _, entry := range list {
				row, isMap := entry.(map[string]interface{})
				if !isMap {
					continue
				}
				holders.Insider = append(holders.Insider, models.InsiderTransaction{
					Insider:     unwrapString(row["filerName"]),
					Position:    unwrapString(row["filerRelation"]),
					Transaction: unwrapString(row["transactionText"]),
					Ownership:   unwrapString(row["ownership"]),
					Date:        unwrapTime(row["startDate"]),
					Shares:      int64(unwrapFloat(row["shares"])),
					Value:       unwrapFloat(row["value"]),
				})
			}
		}
	}

	return holders, nil
}
