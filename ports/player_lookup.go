package ports

import (
	"context"

	"playerscout/models"
)

// PlayerLookup queries the statistics service for a single best-match player
type PlayerLookup interface {
	// Search returns the service envelope for name. A non-nil error means the
	// envelope could not be obtained at all (network, timeout, undecodable body).
	Search(ctx context.Context, name string) (*models.SearchResponse, error)
}
