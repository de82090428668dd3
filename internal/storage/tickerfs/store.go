// Package tickerfs implements file-based storage for the ticker
// working set.
package tickerfs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hklens/hklens/internal/common"
	"github.com/hklens/hklens/internal/interfaces"
	"github.com/hklens/hklens/internal/models"
)

const (
	tickersFile = "tickers.json"
	detailsFile = "stock_details.json"
)

// Store provides flat-file JSON storage for the persisted ticker list
// and the optional details snapshot. A missing document reads as empty;
// writes replace the document wholesale via temp file and rename, so a
// crashed write never leaves a torn document behind.
type Store struct {
	basePath string
	logger   *common.Logger
}

// NewStore creates a new ticker file store.
func NewStore(logger *common.Logger, path string) (*Store, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create ticker store path %s: %w", path, err)
	}

	logger.Info().Str("path", path).Msg("ticker store opened")
	return &Store{
		basePath: path,
		logger:   logger,
	}, nil
}

// DataPath returns the base data path.
func (s *Store) DataPath() string {
	return s.basePath
}

// LoadTickers reads the persisted ticker list. A missing file is not an
// error; it reads as an empty list.
func (s *Store) LoadTickers(ctx context.Context) (*models.TickerList, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(s.basePath, tickersFile))
	if os.IsNotExist(err) {
		return &models.TickerList{Tickers: []string{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read ticker list: %w", err)
	}

	var list models.TickerList
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("failed to parse ticker list: %w", err)
	}
	if list.Tickers == nil {
		list.Tickers = []string{}
	}
	return &list, nil
}

// SaveTickers rewrites the ticker list document. Last writer wins.
func (s *Store) SaveTickers(ctx context.Context, list *models.TickerList) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal ticker list: %w", err)
	}
	if err := s.writeAtomic(tickersFile, data); err != nil {
		return err
	}

	s.logger.Debug().Int("tickers", len(list.Tickers)).Msg("ticker list saved")
	return nil
}

// SaveDetails writes the optional details snapshot.
func (s *Store) SaveDetails(ctx context.Context, details *models.StockDetails) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(details, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal stock details: %w", err)
	}
	return s.writeAtomic(detailsFile, data)
}

// writeAtomic writes data to a temp file in the store directory and
// renames it over the target.
func (s *Store) writeAtomic(name string, data []byte) error {
	target := filepath.Join(s.basePath, name)

	tmpFile, err := os.CreateTemp(s.basePath, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, target); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// Ensure Store implements TickerStore
var _ interfaces.TickerStore = (*Store)(nil)
