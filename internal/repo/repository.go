package repo

import (
	"context"

	"github.com/hamed0406/observatorycheck/internal/domain"
)

// Ports (interfaces); memory and postgres implement both.
type ObservationStore interface {
	Append(ctx context.Context, obs []domain.Observation) error
	// Latest returns the most recent observation per host and metric name.
	Latest(ctx context.Context) ([]domain.Observation, error)
}
