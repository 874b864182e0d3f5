package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"rescue-dog-tracker/internal/domain/events"
)

type eventRepo struct {
	mu      sync.RWMutex
	all     []events.DogEvent
	nextSeq int64
}

func NewEventsRepo() events.Repository {
	return &eventRepo{nextSeq: 1}
}

func (r *eventRepo) Append(ctx context.Context, e events.DogEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.appendLocked(e)
}

func (r *eventRepo) appendLocked(e events.DogEvent) error {
	if e.EventID == "" {
		return errors.New("event id required")
	}
	if e.DogID == "" {
		return errors.New("event dog id required")
	}
	e.Seq = r.nextSeq
	r.nextSeq++
	r.all = append(r.all, e)
	return nil
}

func (r *eventRepo) ListByDog(ctx context.Context, dogID string) ([]events.DogEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]events.DogEvent, 0)
	for _, e := range r.all {
		if e.DogID == dogID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.Before(out[j].Timestamp)
		}
		return out[i].Seq < out[j].Seq
	})
	return out, nil
}

func (r *eventRepo) Recent(ctx context.Context, limit int) ([]events.DogEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]events.DogEvent, len(r.all))
	copy(out, r.all)
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.After(out[j].Timestamp)
		}
		return out[i].Seq > out[j].Seq
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
