package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"rescue-dog-tracker/internal/domain/dogs"
	"rescue-dog-tracker/internal/domain/events"
)

type dogRepo struct {
	mu     sync.RWMutex
	byID   map[string]dogs.Dog
	events events.Repository
}

// NewDogsRepo recibe el repo de eventos para que Save pueda persistir
// perro y eventos juntos.
func NewDogsRepo(ev events.Repository) dogs.Repository {
	return &dogRepo{
		byID:   make(map[string]dogs.Dog),
		events: ev,
	}
}

func (r *dogRepo) GetByID(ctx context.Context, dogID string) (dogs.Dog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.byID[strings.TrimSpace(dogID)]
	if !ok {
		return dogs.Dog{}, dogs.ErrNotFound
	}
	return d, nil
}

func (r *dogRepo) List(ctx context.Context, includeInactive bool) ([]dogs.Dog, error) {
	return r.filter(func(d dogs.Dog) bool {
		return includeInactive || d.IsActive
	}), nil
}

func (r *dogRepo) ListByRescue(ctx context.Context, rescueName string, includeInactive bool) ([]dogs.Dog, error) {
	return r.filter(func(d dogs.Dog) bool {
		if d.RescueName != rescueName {
			return false
		}
		return includeInactive || d.IsActive
	}), nil
}

func (r *dogRepo) ListByStatus(ctx context.Context, status dogs.DogStatus) ([]dogs.Dog, error) {
	return r.filter(func(d dogs.Dog) bool {
		return d.IsActive && d.Status == status
	}), nil
}

func (r *dogRepo) Save(ctx context.Context, d dogs.Dog, evs []events.DogEvent) error {
	if d.DogID == "" {
		return errors.New("dog id required")
	}
	// Los eventos se validan antes de tocar el estado, así una entrada
	// inválida no deja un perro guardado a medias.
	for _, e := range evs {
		if e.EventID == "" {
			return errors.New("event id required")
		}
		if e.DogID == "" {
			return errors.New("event dog id required")
		}
	}

	r.mu.Lock()
	r.byID[d.DogID] = d
	r.mu.Unlock()

	for _, e := range evs {
		if err := r.events.Append(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

func (r *dogRepo) filter(keep func(dogs.Dog) bool) []dogs.Dog {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]dogs.Dog, 0)
	for _, d := range r.byID {
		if keep(d) {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		si, sj := 0, 0
		if out[i].BaseFitScore != nil {
			si = *out[i].BaseFitScore
		}
		if out[j].BaseFitScore != nil {
			sj = *out[j].BaseFitScore
		}
		if si != sj {
			return si > sj
		}
		return out[i].DogName < out[j].DogName
	})
	return out
}
