package dogs

import "strings"

// DogStatus son los valores estandarizados de status.
// Los scrapers reportan variantes libres; ParseStatus las normaliza.
type DogStatus string

const (
	StatusAvailable DogStatus = "Available"
	StatusUpcoming  DogStatus = "Upcoming"
	StatusPending   DogStatus = "Pending"
	StatusAdopted   DogStatus = "Adopted"
	StatusInactive  DogStatus = "Inactive"
	StatusUnknown   DogStatus = "Unknown"
)

// ParseStatus convierte el texto del rescue a un DogStatus, tolerando variantes.
func ParseStatus(value string) DogStatus {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "available", "adoptable":
		return StatusAvailable
	case "coming soon", "upcoming", "coming_soon":
		return StatusUpcoming
	case "pending", "adoption pending":
		return StatusPending
	case "adopted", "adopted/removed", "removed":
		return StatusAdopted
	case "inactive":
		return StatusInactive
	default:
		return StatusUnknown
	}
}

// Valores normalizados de compatibilidad (good_with_*).
// Vacío significa "el rescue no dijo nada", distinto de un "Unknown" explícito
// solo a nivel de dato; para comparación y scoring ambos valen lo mismo.
const (
	CompatYes     = "Yes"
	CompatNo      = "No"
	CompatUnknown = "Unknown"
)

// Niveles de shedding reportados por los rescues.
const (
	SheddingNone     = "None"
	SheddingLow      = "Low"
	SheddingModerate = "Moderate"
	SheddingHigh     = "High"
)

// Niveles de energía.
const (
	EnergyLow    = "Low"
	EnergyMedium = "Medium"
	EnergyHigh   = "High"
)
