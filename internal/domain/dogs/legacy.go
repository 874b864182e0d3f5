package dogs

import (
	"strconv"
	"strings"
	"time"
)

// Tabla explícita de aliases legacy. El formato viejo de la base renombró
// varios campos; aceptamos ambos nombres al construir y proyectamos siempre
// al nombre legacy al exportar. Nada de probing dinámico de atributos.
//
//	canónico           <-> legacy
//	rescue_dog_url     <-> source_url
//	primary_image_url  <-> image_url
//	age_display        <-> age_range
//	weight_lbs         <-> weight
var legacyAliases = map[string]string{
	"rescue_dog_url":    "source_url",
	"primary_image_url": "image_url",
	"age_display":       "age_range",
	"weight_lbs":        "weight",
}

// Formatos de timestamp que aparecen en los dumps legacy.
var legacyTimeFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// FromLegacy construye un Dog desde un dict de campos crudos, aceptando el
// nombre actual o el alias legacy de cada campo renombrado. Nunca falla por
// campos faltantes: todo lo ausente queda en null/Unknown y la validación
// real ocurre en DAL.SaveDog.
func FromLegacy(raw map[string]any) Dog {
	d := Dog{
		DogID:           getString(raw, "dog_id"),
		DogName:         getString(raw, "dog_name"),
		RescueName:      getString(raw, "rescue_name"),
		SourceURL:       getAliased(raw, "rescue_dog_url"),
		Platform:        getString(raw, "platform"),
		Status:          StatusUnknown,
		IsActive:        getBool(raw, "is_active", true),
		WeightLbs:       getIntPtr(raw, "weight_lbs", legacyAliases["weight_lbs"]),
		AgeYears:        getFloatPtr(raw, "age_years"),
		AgeDisplay:      getAliased(raw, "age_display"),
		Sex:             getString(raw, "sex"),
		Breed:           getString(raw, "breed"),
		Location:        getString(raw, "location"),
		GoodWithDogs:    getString(raw, "good_with_dogs"),
		GoodWithCats:    getString(raw, "good_with_cats"),
		GoodWithKids:    getString(raw, "good_with_kids"),
		Shedding:        getString(raw, "shedding"),
		EnergyLevel:     getString(raw, "energy_level"),
		SpecialNeeds:    isLegacyYes(raw["special_needs"]),
		AdoptionFee:     getString(raw, "adoption_fee"),
		PrimaryImageURL: getAliased(raw, "primary_image_url"),
		BaseFitScore:    getIntPtr(raw, "fit_score", "base_fit_score"),
		CreatedAt:       getTime(raw, "date_first_seen", "created_at"),
		UpdatedAt:       getTime(raw, "date_last_updated", "updated_at"),
		StatusChangedAt: getTime(raw, "date_status_changed", "status_changed_at"),
	}

	if s := getString(raw, "status"); s != "" {
		d.Status = ParseStatus(s)
	}

	// El texto libre del rescue se preserva aparte, nunca se normaliza encima
	d.RescueMeta = RescueMeta{
		BioText:                  getString(raw, "notes"),
		AdoptionRequirementsText: getString(raw, "adoption_req"),
	}

	return d
}

// ToLegacyDict es la proyección inversa exacta que consumen los lectores
// legacy. Round-trip: ToLegacyDict(FromLegacy(x)) reproduce todos los valores
// que traía x, bajo el nombre legacy de cada campo.
func (d Dog) ToLegacyDict() map[string]any {
	out := map[string]any{
		"dog_id":         d.DogID,
		"dog_name":       d.DogName,
		"rescue_name":    d.RescueName,
		"breed":          d.Breed,
		"age_range":      d.AgeDisplay,
		"sex":            d.Sex,
		"shedding":       d.Shedding,
		"energy_level":   d.EnergyLevel,
		"good_with_kids": d.GoodWithKids,
		"good_with_dogs": d.GoodWithDogs,
		"good_with_cats": d.GoodWithCats,
		"adoption_fee":   d.AdoptionFee,
		"platform":       d.Platform,
		"location":       d.Location,
		"status":         string(d.Status),
		"source_url":     d.SourceURL,
		"image_url":      d.PrimaryImageURL,
		"notes":          d.RescueMeta.BioText,
		"adoption_req":   d.RescueMeta.AdoptionRequirementsText,
	}

	if d.SpecialNeeds {
		out["special_needs"] = "Yes"
	} else {
		out["special_needs"] = "No"
	}
	if d.IsActive {
		out["is_active"] = 1
	} else {
		out["is_active"] = 0
	}

	if d.WeightLbs != nil {
		out["weight"] = *d.WeightLbs
	}
	if d.AgeYears != nil {
		out["age_years"] = *d.AgeYears
	}
	if d.BaseFitScore != nil {
		out["fit_score"] = *d.BaseFitScore
	}

	if !d.CreatedAt.IsZero() {
		out["date_first_seen"] = d.CreatedAt.Format(time.RFC3339)
	}
	if !d.UpdatedAt.IsZero() {
		out["date_last_updated"] = d.UpdatedAt.Format(time.RFC3339)
	}
	if !d.StatusChangedAt.IsZero() {
		out["date_status_changed"] = d.StatusChangedAt.Format(time.RFC3339)
	}

	return out
}

// getAliased lee el nombre canónico y, si no está, su alias legacy.
func getAliased(raw map[string]any, canonical string) string {
	if v := getString(raw, canonical); v != "" {
		return v
	}
	return getString(raw, legacyAliases[canonical])
}

func getString(raw map[string]any, keys ...string) string {
	for _, k := range keys {
		if k == "" {
			continue
		}
		v, ok := raw[k]
		if !ok || v == nil {
			continue
		}
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func getIntPtr(raw map[string]any, keys ...string) *int {
	for _, k := range keys {
		if k == "" {
			continue
		}
		v, ok := raw[k]
		if !ok || v == nil {
			continue
		}
		switch n := v.(type) {
		case int:
			return &n
		case int64:
			i := int(n)
			return &i
		case float64:
			i := int(n)
			return &i
		case string:
			if i, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
				return &i
			}
		}
	}
	return nil
}

func getFloatPtr(raw map[string]any, keys ...string) *float64 {
	for _, k := range keys {
		v, ok := raw[k]
		if !ok || v == nil {
			continue
		}
		switch n := v.(type) {
		case float64:
			return &n
		case int:
			f := float64(n)
			return &f
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil {
				return &f
			}
		}
	}
	return nil
}

func getBool(raw map[string]any, key string, def bool) bool {
	v, ok := raw[key]
	if !ok || v == nil {
		return def
	}
	switch b := v.(type) {
	case bool:
		return b
	case int:
		return b != 0
	case int64:
		return b != 0
	case float64:
		return b != 0
	case string:
		s := strings.ToLower(strings.TrimSpace(b))
		return s == "1" || s == "true" || s == "yes"
	}
	return def
}

func getTime(raw map[string]any, keys ...string) time.Time {
	s := getString(raw, keys...)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range legacyTimeFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// isLegacyYes interpreta el special_needs legacy, que viene como "Yes"/"No" o bool.
func isLegacyYes(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return strings.EqualFold(strings.TrimSpace(b), "yes")
	default:
		return false
	}
}
