package yahoo

import (
	"context"
	"net/url"
	"strconv"

	"github.com/hklens/hklens/internal/models"
)

// searchResponse is the v1 search envelope. News items arrive in one of
// two shapes: a legacy flat record with a Unix-seconds publish time, or
// a newer record nesting everything under "content" with an ISO string.
type searchResponse struct {
	News []newsRecord `json:"news"`
}

type newsRecord struct {
	// legacy flat shape
	Title               string          `json:"title"`
	Link                string          `json:"link"`
	Publisher           string          `json:"publisher"`
	ProviderPublishTime models.FlexTime `json:"providerPublishTime"`

	// nested content shape
	Content *struct {
		Title    string          `json:"title"`
		PubDate  models.FlexTime `json:"pubDate"`
		Provider struct {
			DisplayName string `json:"displayName"`
		} `json:"provider"`
		CanonicalURL struct {
			URL string `json:"url"`
		} `json:"canonicalUrl"`
		ClickThroughURL struct {
			URL string `json:"url"`
		} `json:"clickThroughUrl"`
	} `json:"content"`
}

func (r newsRecord) normalize() models.NewsItem {
	if r.Title != "" || r.Content == nil {
		return models.NewsItem{
			Title:       r.Title,
			Link:        r.Link,
			Publisher:   r.Publisher,
			PublishedAt: r.ProviderPublishTime.Time,
		}
	}

	link := r.Content.CanonicalURL.URL
	if link == "" {
		link = r.Content.ClickThroughURL.URL
	}
	return models.NewsItem{
		Title:       r.Content.Title,
		Link:        link,
		Publisher:   r.Content.Provider.DisplayName,
		PublishedAt: r.Content.PubDate.Time,
	}
}

// GetNews retrieves recent news for a symbol, normalized across both
// upstream record shapes. Items without a title are dropped.
func (c *Client) GetNews(ctx context.Context, symbol string, limit int) ([]models.NewsItem, error) {
	if limit <= 0 {
		limit = 10
	}

	params := url.Values{}
	params.Set("q", symbol)
	params.Set("newsCount", strconv.Itoa(limit))
	params.Set("quotesCount", "0")

	var resp searchResponse
	if err := c.get(ctx, "/v1/finance/search", params, &resp); err != nil {
		return nil, err
	}

	items := make([]models.NewsItem, 0, len(resp.News))
	for _, record := range resp.News {
		item := record.normalize()
		if item.Title == "" {
			continue
		}
		items = append(items, item)
		if len(items) >= limit {
			break
		}
	}

	c.logger.Debug().Str("symbol", symbol).Int("items", len(items)).Msg("yahoo news fetched")

	return items, nil
}
