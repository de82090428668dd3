// Package watchlist manages the persisted ticker working set.
package watchlist

import (
	"context"
	"fmt"

	"github.com/hklens/hklens/internal/common"
	"github.com/hklens/hklens/internal/interfaces"
	"github.com/hklens/hklens/internal/models"
)

// Service maintains the durable ticker list. Only raw codes persist;
// display names are re-resolved on every read so stale snapshots never
// leak into the UI.
type Service struct {
	store  interfaces.TickerStore
	names  interfaces.QuoteNameService
	logger *common.Logger
}

// NewService creates a watchlist service. The name resolver is
// optional; without it entries show their raw codes.
func NewService(store interfaces.TickerStore, names interfaces.QuoteNameService, logger *common.Logger) *Service {
	return &Service{
		store:  store,
		names:  names,
		logger: logger,
	}
}

// List returns the current entries with resolved display names.
func (s *Service) List(ctx context.Context) []models.WatchlistEntry {
	list, err := s.store.LoadTickers(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load ticker list")
		return []models.WatchlistEntry{}
	}
	return s.entries(ctx, list.Tickers)
}

// Add appends codes to the list and persists it. Duplicates are
// detected by exact string match against the stored codes, so "700" and
// "0700" are distinct entries. Free-form input is split on commas and
// whitespace before matching.
func (s *Service) Add(ctx context.Context, codes ...string) ([]models.WatchlistEntry, error) {
	list, err := s.store.LoadTickers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load ticker list: %w", err)
	}

	added := 0
	for _, input := range codes {
		for _, code := range models.SplitTickerInput(input) {
			if list.Contains(code) {
				continue
			}
			list.Tickers = append(list.Tickers, code)
			added++
		}
	}

	if added > 0 {
		if err := s.store.SaveTickers(ctx, list); err != nil {
			return nil, fmt.Errorf("failed to save ticker list: %w", err)
		}
		s.logger.Info().Int("added", added).Int("total", len(list.Tickers)).Msg("watchlist updated")
		s.snapshotDetails(ctx, list.Tickers)
	}

	return s.entries(ctx, list.Tickers), nil
}

// Remove deletes a code from the list and persists it. Removing an
// absent code is a no-op.
func (s *Service) Remove(ctx context.Context, code string) ([]models.WatchlistEntry, error) {
	list, err := s.store.LoadTickers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load ticker list: %w", err)
	}

	kept := list.Tickers[:0]
	removed := false
	for _, t := range list.Tickers {
		if t == code {
			removed = true
			continue
		}
		kept = append(kept, t)
	}
	list.Tickers = kept

	if removed {
		if err := s.store.SaveTickers(ctx, list); err != nil {
			return nil, fmt.Errorf("failed to save ticker list: %w", err)
		}
		s.logger.Info().Str("code", code).Int("total", len(list.Tickers)).Msg("watchlist entry removed")
		s.snapshotDetails(ctx, list.Tickers)
	}

	return s.entries(ctx, list.Tickers), nil
}

// entries pairs codes with display names.
func (s *Service) entries(ctx context.Context, codes []string) []models.WatchlistEntry {
	names := map[string]string{}
	if s.names != nil {
		names = s.names.DisplayNames(ctx, codes)
	}

	entries := make([]models.WatchlistEntry, len(codes))
	for i, code := range codes {
		name := names[code]
		if name == "" {
			name = code
		}
		entries[i] = models.WatchlistEntry{Code: code, Name: name}
	}
	return entries
}

// snapshotDetails writes the optional name snapshot. Best effort; a
// failed write only logs.
func (s *Service) snapshotDetails(ctx context.Context, codes []string) {
	if s.names == nil {
		return
	}

	names := s.names.DisplayNames(ctx, codes)
	details := &models.StockDetails{Stocks: make([]models.StockDetail, len(codes))}
	for i, code := range codes {
		details.Stocks[i] = models.StockDetail{Code: code, Name: names[code]}
	}

	if err := s.store.SaveDetails(ctx, details); err != nil {
		s.logger.Warn().Err(err).Msg("failed to save stock details snapshot")
	}
}

// Ensure Service implements WatchlistService
var _ interfaces.WatchlistService = (*Service)(nil)
