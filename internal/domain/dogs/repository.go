package dogs

import (
	"context"
	"errors"

	"rescue-dog-tracker/internal/domain/events"
)

var ErrNotFound = errors.New("dog not found")

// Repository es el store de perros canónicos.
//
// Save escribe el perro y agrega sus eventos como UNA unidad atómica: si la
// escritura falla a mitad de camino, ni el update del perro ni sus eventos
// quedan visibles para lecturas posteriores.
type Repository interface {
	GetByID(ctx context.Context, dogID string) (Dog, error)
	List(ctx context.Context, includeInactive bool) ([]Dog, error)
	ListByRescue(ctx context.Context, rescueName string, includeInactive bool) ([]Dog, error)
	ListByStatus(ctx context.Context, status DogStatus) ([]Dog, error)

	Save(ctx context.Context, d Dog, evs []events.DogEvent) error
}
