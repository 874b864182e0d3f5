package scoring

import (
	"regexp"
	"strconv"
	"strings"

	"rescue-dog-tracker/internal/domain/dogs"
)

// ComputeFitScore calcula el fit score de un perro.
//
// Es LA forma canónica de calcular scores:
//
//	score := scoring.ComputeFitScore(dog, state.Overrides, prefs.Scoring)
//
// El valor efectivo de cada atributo es el override del usuario si existe,
// sino el dato global del perro. Todos los factores son independientes
// (no hay early exit); un factor en Unknown/null aporta 0. El resultado no
// se recorta: puede ser negativo.
//
// Es una función pura: mismos inputs, mismo entero, sin estado de proceso.
func ComputeFitScore(d dogs.Dog, ov *Overrides, cfg *Config) int {
	c := DefaultConfig()
	if cfg != nil {
		c = *cfg
	}

	score := 0

	// Valores efectivos
	weight := d.WeightLbs
	shedding := d.Shedding
	energy := d.EnergyLevel
	goodDogs := d.GoodWithDogs
	goodKids := d.GoodWithKids
	goodCats := d.GoodWithCats
	specialNeeds := d.SpecialNeeds
	ageYears := d.AgeYears

	if ov != nil {
		if ov.WeightLbs != nil {
			weight = ov.WeightLbs
		}
		if ov.Shedding != nil {
			shedding = *ov.Shedding
		}
		if ov.EnergyLevel != nil {
			energy = *ov.EnergyLevel
		}
		if ov.GoodWithDogs != nil {
			goodDogs = *ov.GoodWithDogs
		}
		if ov.GoodWithKids != nil {
			goodKids = *ov.GoodWithKids
		}
		if ov.GoodWithCats != nil {
			goodCats = *ov.GoodWithCats
		}
		if ov.SpecialNeeds != nil {
			specialNeeds = *ov.SpecialNeeds
		}
		if ov.AgeYears != nil {
			ageYears = ov.AgeYears
		}
	}

	// Peso
	if weight != nil && *weight >= 40 {
		score += c.Weight40Plus
	}

	// Edad: si no hay valor normalizado, intenta parsear el texto display
	if ageYears == nil {
		ageYears = ParseAgeYears(d.AgeDisplay)
	}
	if ageYears != nil {
		switch age := *ageYears; {
		case age >= 1.0 && age < 2.0:
			score += c.AgeSweetSpot
		case age >= 2.0 && age < 4.0:
			score += c.AgeGood
		case age >= 6.0:
			score += c.AgeSenior
		}
	}

	// Shedding
	switch strings.ToLower(shedding) {
	case "none":
		score += c.SheddingNone
	case "low":
		score += c.SheddingLow
	}

	// Energía
	switch strings.ToLower(energy) {
	case "low", "medium":
		score += c.EnergyLowMed
	}

	// Compatibilidad
	if goodDogs == dogs.CompatYes {
		score += c.GoodWithDogs
	}
	if goodKids == dogs.CompatYes {
		score += c.GoodWithKids
	}
	if goodCats == dogs.CompatYes {
		score += c.GoodWithCats
	}

	// Raza target
	breed := strings.ToLower(d.Breed)
	if strings.Contains(breed, "doodle") || strings.Contains(breed, "poodle") {
		score += c.DoodleBreed
	}

	// Special needs
	if specialNeeds {
		score += c.SpecialNeeds
	}

	// Pending: probablemente ya se lo están quedando
	if d.Status == dogs.StatusPending {
		score += c.PendingPenalty
	}

	if ov != nil {
		score += ov.ManualScoreAdjustment
	}

	return score
}

var (
	ageRangeRe  = regexp.MustCompile(`(\d+\.?\d*)\s*-\s*(\d+\.?\d*)\s*(yr|year|mo|month)`)
	ageSingleRe = regexp.MustCompile(`(\d+\.?\d*)\s*(yr|year|mo|month|wk|week)`)
)

// ParseAgeYears interpreta textos tipo "2 yrs", "8 mos" o "1-3 yrs".
// Devuelve nil si no se puede parsear.
func ParseAgeYears(display string) *float64 {
	if strings.TrimSpace(display) == "" {
		return nil
	}
	s := strings.ToLower(display)
	s = strings.NewReplacer("–", "-", "—", "-").Replace(s)

	if m := ageRangeRe.FindStringSubmatch(s); m != nil {
		lo, _ := strconv.ParseFloat(m[1], 64)
		hi, _ := strconv.ParseFloat(m[2], 64)
		if strings.HasPrefix(m[3], "mo") {
			lo /= 12
			hi /= 12
		}
		avg := (lo + hi) / 2
		return &avg
	}

	if m := ageSingleRe.FindStringSubmatch(s); m != nil {
		v, _ := strconv.ParseFloat(m[1], 64)
		switch {
		case strings.HasPrefix(m[2], "mo"):
			v /= 12
		case strings.HasPrefix(m[2], "wk"), strings.HasPrefix(m[2], "week"):
			v /= 52
		}
		return &v
	}

	return nil
}
