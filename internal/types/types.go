package types

import (
	"context"
	"time"

	"github.com/fizko/dte/internal/models"
)

// Core interfaces
type Extractor interface {
	Extract(ctx context.Context, source string) ([]models.RawDTE, error)
}

type Parser interface {
	Parse(raw models.RawDTE) (*models.DTE, error)
	ParseBatch(raws []models.RawDTE) ([]*models.DTE, []string)
}

type Store interface {
	Store(ctx context.Context, docs []*models.DTE) error
	QueryPeriod(ctx context.Context, year int, month time.Month) ([]*models.DTE, error)
	Close()
}
