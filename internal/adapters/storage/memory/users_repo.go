package memory

import (
	"context"
	"errors"
	"sync"

	"rescue-dog-tracker/internal/domain/users"
)

type stateKey struct {
	userID string
	dogID  string
}

type stateRepo struct {
	mu    sync.RWMutex
	byKey map[stateKey]users.UserDogState
}

func NewUserStateRepo() users.StateRepository {
	return &stateRepo{
		byKey: make(map[stateKey]users.UserDogState),
	}
}

func (r *stateRepo) Get(ctx context.Context, userID, dogID string) (users.UserDogState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	st, ok := r.byKey[stateKey{userID, dogID}]
	if !ok {
		return users.UserDogState{}, users.ErrNotFound
	}
	return st, nil
}

func (r *stateRepo) Upsert(ctx context.Context, st users.UserDogState) error {
	if st.UserID == "" || st.DogID == "" {
		return errors.New("user id and dog id required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.byKey[stateKey{st.UserID, st.DogID}] = st
	return nil
}

func (r *stateRepo) ListByUser(ctx context.Context, userID string) ([]users.UserDogState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]users.UserDogState, 0)
	for k, st := range r.byKey {
		if k.userID == userID {
			out = append(out, st)
		}
	}
	return out, nil
}

type prefsRepo struct {
	mu     sync.RWMutex
	byUser map[string]users.UserPreferences
}

func NewUserPrefsRepo() users.PreferencesRepository {
	return &prefsRepo{
		byUser: make(map[string]users.UserPreferences),
	}
}

func (r *prefsRepo) Get(ctx context.Context, userID string) (users.UserPreferences, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	prefs, ok := r.byUser[userID]
	if !ok {
		return users.UserPreferences{}, users.ErrNotFound
	}
	return prefs, nil
}

func (r *prefsRepo) Upsert(ctx context.Context, prefs users.UserPreferences) error {
	if prefs.UserID == "" {
		return errors.New("user id required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.byUser[prefs.UserID] = prefs
	return nil
}
