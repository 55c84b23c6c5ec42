package repo

import (
	"context"
	"time"
)

// GradeRecord holds the last numeric grade seen for a host and the last time
// a notification was sent about it (used for cooldown).
type GradeRecord struct {
	Host       string
	LastGrade  int
	LastSentAt *time.Time
}

// GradeStore is implemented by a persistence layer to store alert state.
type GradeStore interface {
	// Get returns nil, nil if there's no record yet.
	Get(ctx context.Context, host string) (*GradeRecord, error)
	// Set upserts the record. If sentAt.IsZero() we store NULL for last_sent_at.
	Set(ctx context.Context, host string, grade int, sentAt time.Time) error
}
