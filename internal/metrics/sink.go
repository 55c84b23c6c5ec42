package metrics

import (
	"sync"
	"time"

	"github.com/hamed0406/observatorycheck/internal/domain"
)

// Sink accepts gauge observations.
type Sink interface {
	Gauge(name string, value float64, tags []string)
}

// Batch collects the observations of one check invocation for a single host.
type Batch struct {
	Host string
	Now  func() time.Time

	mu  sync.Mutex
	obs []domain.Observation
}

func NewBatch(host string) *Batch {
	return &Batch{Host: host, Now: time.Now}
}

func (b *Batch) Gauge(name string, value float64, tags []string) {
	now := time.Now
	if b.Now != nil {
		now = b.Now
	}
	cp := append([]string(nil), tags...)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.obs = append(b.obs, domain.Observation{
		Name:       name,
		Value:      value,
		Tags:       cp,
		Host:       b.Host,
		ObservedAt: now().UTC(),
	})
}

// Observations returns a copy of what has been recorded so far.
func (b *Batch) Observations() []domain.Observation {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]domain.Observation(nil), b.obs...)
}

func (b *Batch) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.obs)
}
