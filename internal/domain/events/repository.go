package events

import "context"

// Repository es el log append-only de eventos.
// La escritura atómica perro+eventos vive en dogs.Repository.Save;
// Append existe para eventos de origen externo (fb_post, admin_edit, image_added).
type Repository interface {
	Append(ctx context.Context, e DogEvent) error

	// ListByDog devuelve el timeline de un perro, del más viejo al más nuevo.
	ListByDog(ctx context.Context, dogID string) ([]DogEvent, error)

	// Recent devuelve los últimos eventos de todos los perros, del más nuevo al más viejo.
	Recent(ctx context.Context, limit int) ([]DogEvent, error)
}
