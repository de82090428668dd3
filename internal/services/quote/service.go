// Package quote resolves display names and searches against the
// secondary quote provider.
package quote

import (
	"context"

	"github.com/hklens/hklens/internal/common"
	"github.com/hklens/hklens/internal/interfaces"
	"github.com/hklens/hklens/internal/models"
)

// Service wraps the quote name client with the raw-code fallback: every
// requested code gets an answer, resolved or not.
type Service struct {
	client interfaces.QuoteNameClient
	logger *common.Logger
}

// NewService creates a quote name service.
func NewService(client interfaces.QuoteNameClient, logger *common.Logger) *Service {
	return &Service{
		client: client,
		logger: logger,
	}
}

// DisplayNames returns a name for every input code. Codes the provider
// cannot resolve, and whole-batch failures, fall back to the raw code so
// callers always have something to show.
func (s *Service) DisplayNames(ctx context.Context, codes []string) map[string]string {
	result := make(map[string]string, len(codes))
	for _, code := range codes {
		result[code] = code
	}
	if len(codes) == 0 {
		return result
	}

	resolved, err := s.client.ResolveNames(ctx, codes)
	if err != nil {
		s.logger.Warn().Err(err).Int("codes", len(codes)).Msg("name resolution failed, using raw codes")
		return result
	}

	for code, name := range resolved {
		if name != "" {
			result[code] = name
		}
	}
	return result
}

// Search finds tickers by company name. Provider failures return an
// empty slice.
func (s *Service) Search(ctx context.Context, query string) []models.SearchResult {
	results, err := s.client.Search(ctx, query)
	if err != nil {
		s.logger.Warn().Err(err).Str("query", query).Msg("stock search failed")
		return []models.SearchResult{}
	}
	if results == nil {
		results = []models.SearchResult{}
	}
	return results
}

// Ensure Service implements QuoteNameService
var _ interfaces.QuoteNameService = (*Service)(nil)
