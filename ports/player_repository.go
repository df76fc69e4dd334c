package ports

import (
	"context"

	"playerscout/models"
)

// PlayerRepository defines the storage operations behind the search endpoint
type PlayerRepository interface {
	// FindByName returns the best match for name, or a NOT_FOUND AppError
	FindByName(ctx context.Context, name string) (*models.PlayerRecord, error)

	// Upsert stores a record keyed by its general_info name
	Upsert(ctx context.Context, record *models.PlayerRecord) error

	// Count returns the number of stored players
	Count(ctx context.Context) (int, error)
}

// OverviewAnalyzer derives the upstream analysis for a record that lacks one
type OverviewAnalyzer interface {
	Analyze(record *models.PlayerRecord) (*models.PlayerOverview, error)
}
