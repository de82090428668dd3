package interfaces

import (
	"context"

	"github.com/hklens/hklens/internal/models"
)

// TickerStore persists the user's ticker working set as flat JSON
// documents. Reads of a missing document return an empty list, not an
// error. Writes replace the document wholesale; last writer wins.
type TickerStore interface {
	// LoadTickers reads the persisted ticker list
	LoadTickers(ctx context.Context) (*models.TickerList, error)

	// SaveTickers rewrites the ticker list
	SaveTickers(ctx context.Context, list *models.TickerList) error

	// SaveDetails writes the optional details snapshot; best effort,
	// callers ignore the error beyond logging
	SaveDetails(ctx context.Context, details *models.StockDetails) error
}
