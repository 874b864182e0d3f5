package users

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("user state not found")

// StateRepository guarda el estado por par (user, dog).
// Get devuelve ErrNotFound cuando no hay estado; el DAL lo convierte
// en un estado default vacío, nunca en un error para el caller.
type StateRepository interface {
	Get(ctx context.Context, userID, dogID string) (UserDogState, error)
	Upsert(ctx context.Context, st UserDogState) error
	ListByUser(ctx context.Context, userID string) ([]UserDogState, error)
}

// PreferencesRepository guarda los settings globales por usuario.
type PreferencesRepository interface {
	Get(ctx context.Context, userID string) (UserPreferences, error)
	Upsert(ctx context.Context, prefs UserPreferences) error
}
