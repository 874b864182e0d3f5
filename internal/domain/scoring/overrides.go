package scoring

// Overrides son las correcciones del usuario a los datos del perro
// ("en realidad sí suelta pelo"). Se aplican únicamente al computar el
// score y al personalizar vistas; jamás se escriben sobre el Dog global.
//
// Campos en nil significan "usar el dato global", que es distinto de un
// "Unknown" explícito.
type Overrides struct {
	Shedding     *string  `json:"shedding,omitempty"`
	EnergyLevel  *string  `json:"energy_level,omitempty"`
	GoodWithDogs *string  `json:"good_with_dogs,omitempty"`
	GoodWithCats *string  `json:"good_with_cats,omitempty"`
	GoodWithKids *string  `json:"good_with_kids,omitempty"`
	WeightLbs    *int     `json:"weight_lbs,omitempty"`
	AgeYears     *float64 `json:"age_years,omitempty"`
	SpecialNeeds *bool    `json:"special_needs,omitempty"`

	// Ajuste directo en puntos (+/-)
	ManualScoreAdjustment int `json:"manual_score_adjustment,omitempty"`
}

// HasAny indica si el usuario seteó algo.
func (o Overrides) HasAny() bool {
	return o.Shedding != nil ||
		o.EnergyLevel != nil ||
		o.GoodWithDogs != nil ||
		o.GoodWithCats != nil ||
		o.GoodWithKids != nil ||
		o.WeightLbs != nil ||
		o.AgeYears != nil ||
		o.SpecialNeeds != nil ||
		o.ManualScoreAdjustment != 0
}
