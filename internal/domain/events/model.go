package events

import "time"

// DogEvent es una entrada del timeline de un perro.
//
// Los eventos son inmutables una vez creados: nunca se editan ni se borran,
// y el historial sobrevive aunque el perro se desactive o se elimine.
type DogEvent struct {
	EventID string
	DogID   string

	Type      EventType
	Timestamp time.Time

	// Seq lo asigna el storage al persistir; desempata eventos
	// con el mismo timestamp dentro del mismo save.
	Seq int64

	Source  Source
	Summary string

	// Para eventos de cambio de un solo campo
	FieldChanged string
	OldValue     string
	NewValue     string

	// Payload específico del tipo de evento
	Details map[string]any

	CreatedBy string
}
