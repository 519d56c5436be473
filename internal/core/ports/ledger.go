package ports

import (
	"context"

	"github.com/ewilliams-labs/tracklens/internal/core/domain"
)

// ImportLedger persists the history of bulk imports.
type ImportLedger interface {
	StartRun(ctx context.Context, run domain.ImportRun) error
	FinishRun(ctx context.Context, run domain.ImportRun) error
	ListRuns(ctx context.Context, limit int) ([]domain.ImportRun, error)
}
