package users

import (
	"time"

	"rescue-dog-tracker/internal/domain/scoring"
)

// DefaultUserID es el usuario que los callers de entrada usan cuando nadie
// se identifica. El DAL no lo asume nunca: user_id viaja explícito.
const DefaultUserID = "default_user"

// UserDogState es la capa de personalización de un usuario sobre un perro.
// Referencia al Dog por DogID, sin ownership: el Dog puede borrarse o
// desactivarse y este estado sigue existiendo.
type UserDogState struct {
	UserID string `json:"user_id"`
	DogID  string `json:"dog_id"`

	// Overrides dispersos; lo no seteado difiere al dato global
	Overrides scoring.Overrides `json:"overrides"`

	Favorite bool `json:"favorite"`
	Hidden   bool `json:"hidden"`

	Applied         bool `json:"applied"`
	ContactedRescue bool `json:"contacted_rescue"`

	// Notas privadas del usuario
	Notes string `json:"notes,omitempty"`

	// Cache del score con overrides aplicados. Derivado, no autoritativo:
	// se recalcula a demanda con scoring.ComputeFitScore.
	ComputedFitScore *int `json:"computed_fit_score,omitempty"`

	CreatedAt   time.Time `json:"created_at,omitzero"`
	UpdatedAt   time.Time `json:"updated_at,omitzero"`
	FavoritedAt time.Time `json:"favorited_at,omitzero"`
}

// UserPreferences son los settings globales por usuario.
type UserPreferences struct {
	UserID string `json:"user_id"`

	Scoring scoring.Config `json:"scoring"`

	// Preferencias de UI
	DefaultFilter string `json:"default_filter"`
	DefaultSort   string `json:"default_sort"`
	DefaultRescue string `json:"default_rescue"`

	// Preferencias de notificación (las consume el notifier, no el DAL)
	EmailNotifications    bool `json:"email_notifications"`
	NotifyOnNewDogs       bool `json:"notify_on_new_dogs"`
	NotifyOnStatusChanges bool `json:"notify_on_status_changes"`
	NotifyMinFitScore     int  `json:"notify_min_fit_score"`
}

// DefaultPreferences arma las preferencias iniciales de un usuario.
func DefaultPreferences(userID string) UserPreferences {
	return UserPreferences{
		UserID:                userID,
		Scoring:               scoring.DefaultConfig(),
		DefaultFilter:         "available",
		DefaultSort:           "fit-desc",
		DefaultRescue:         "all",
		NotifyOnNewDogs:       true,
		NotifyOnStatusChanges: true,
		NotifyMinFitScore:     5,
	}
}
