package scoring

// Config son los puntos que aporta cada factor del fit score.
// Un usuario puede pisar cualquier subconjunto desde sus preferencias;
// los defaults reflejan las prioridades de búsqueda originales.
type Config struct {
	// Peso
	Weight40Plus int `json:"weight_40_plus" yaml:"weight_40_plus"`

	// Edad
	AgeSweetSpot int `json:"age_sweet_spot" yaml:"age_sweet_spot"` // 1-2 años
	AgeGood      int `json:"age_good" yaml:"age_good"`             // 2-4 años
	AgeSenior    int `json:"age_senior" yaml:"age_senior"`         // 6+ años

	// Shedding
	SheddingNone int `json:"shedding_none" yaml:"shedding_none"`
	SheddingLow  int `json:"shedding_low" yaml:"shedding_low"`

	// Energía
	EnergyLowMed int `json:"energy_low_med" yaml:"energy_low_med"`

	// Compatibilidad
	GoodWithDogs int `json:"good_with_dogs" yaml:"good_with_dogs"`
	GoodWithKids int `json:"good_with_kids" yaml:"good_with_kids"`
	GoodWithCats int `json:"good_with_cats" yaml:"good_with_cats"`

	// Raza target (doodle/poodle)
	DoodleBreed int `json:"doodle_breed" yaml:"doodle_breed"`

	// Penalizaciones
	SpecialNeeds   int `json:"special_needs" yaml:"special_needs"`
	PendingPenalty int `json:"pending_penalty" yaml:"pending_penalty"`
}

// DefaultConfig devuelve la tabla de puntos por defecto.
func DefaultConfig() Config {
	return Config{
		Weight40Plus:   2,
		AgeSweetSpot:   2,
		AgeGood:        1,
		AgeSenior:      -4,
		SheddingNone:   2,
		SheddingLow:    1,
		EnergyLowMed:   2,
		GoodWithDogs:   2,
		GoodWithKids:   1,
		GoodWithCats:   1,
		DoodleBreed:    1,
		SpecialNeeds:   -1,
		PendingPenalty: -8,
	}
}
