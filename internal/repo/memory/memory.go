package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/hamed0406/observatorycheck/internal/domain"
	"github.com/hamed0406/observatorycheck/internal/repo"
)

type seriesKey struct {
	host, name string
}

type Store struct {
	mu     sync.RWMutex
	latest map[seriesKey]domain.Observation
	grades map[string]repo.GradeRecord
}

func New() *Store {
	return &Store{
		latest: make(map[seriesKey]domain.Observation),
		grades: make(map[string]repo.GradeRecord),
	}
}

// ---- ObservationStore ----

func (m *Store) Append(ctx context.Context, obs []domain.Observation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range obs {
		k := seriesKey{o.Host, o.Name}
		cur, ok := m.latest[k]
		if !ok || !o.ObservedAt.Before(cur.ObservedAt) {
			o.Tags = append([]string(nil), o.Tags...)
			m.latest[k] = o
		}
	}
	return nil
}

func (m *Store) Latest(ctx context.Context) ([]domain.Observation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.Observation, 0, len(m.latest))
	for _, o := range m.latest {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Host != out[j].Host {
			return out[i].Host < out[j].Host
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// ---- GradeStore ----

func (m *Store) Get(ctx context.Context, host string) (*repo.GradeRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.grades[host]
	if !ok {
		return nil, nil
	}
	rr := r
	return &rr, nil
}

func (m *Store) Set(ctx context.Context, host string, grade int, sentAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ts *time.Time
	if !sentAt.IsZero() {
		ts = &sentAt
	}
	m.grades[host] = repo.GradeRecord{Host: host, LastGrade: grade, LastSentAt: ts}
	return nil
}
