package dogs

import (
	"strconv"

	"rescue-dog-tracker/internal/domain/events"
)

// significantFields es el conjunto fijo de campos cuyo cambio genera un
// evento de timeline, en el orden en que se reportan. Cambios en cualquier
// otro campo (p.ej. LastScrapedAt) jamás generan eventos.
var significantFields = []string{
	events.FieldStatus,
	events.FieldWeight,
	events.FieldAgeDisplay,
	events.FieldShedding,
	events.FieldEnergyLevel,
	events.FieldGoodWithDogs,
	events.FieldGoodWithCats,
	events.FieldGoodWithKids,
	events.FieldPrimaryImage,
}

// DetectChanges compara el perro entrante contra el guardado.
//
//   - old == nil => un único marcador first_seen, sin cambios de campo
//   - strings se comparan exactos (case-sensitive)
//   - null y "Unknown" cuentan como iguales SOLO para comparar; nunca se
//     reporta un cambio null<->Unknown
//   - un valor entrante vacío no registra cambio (un hueco del scrape no es
//     un cambio real)
//
// El orden de salida es el de significantFields.
func DetectChanges(old *Dog, incoming Dog) []events.Change {
	if old == nil {
		return []events.Change{{Field: events.FieldFirstSeen, New: string(incoming.Status)}}
	}

	var changes []events.Change
	for _, field := range significantFields {
		oldVal := significantValue(*old, field)
		newVal := significantValue(incoming, field)

		if normalizeForCompare(newVal) == "" {
			continue
		}
		if normalizeForCompare(oldVal) == normalizeForCompare(newVal) {
			continue
		}

		changes = append(changes, events.Change{Field: field, Old: oldVal, New: newVal})
	}

	return changes
}

func significantValue(d Dog, field string) string {
	switch field {
	case events.FieldStatus:
		return string(d.Status)
	case events.FieldWeight:
		if d.WeightLbs == nil {
			return ""
		}
		return strconv.Itoa(*d.WeightLbs)
	case events.FieldAgeDisplay:
		return d.AgeDisplay
	case events.FieldShedding:
		return d.Shedding
	case events.FieldEnergyLevel:
		return d.EnergyLevel
	case events.FieldGoodWithDogs:
		return d.GoodWithDogs
	case events.FieldGoodWithCats:
		return d.GoodWithCats
	case events.FieldGoodWithKids:
		return d.GoodWithKids
	case events.FieldPrimaryImage:
		return d.PrimaryImageURL
	default:
		return ""
	}
}

// normalizeForCompare colapsa null y "Unknown" al mismo valor de comparación.
func normalizeForCompare(v string) string {
	if v == CompatUnknown || v == string(StatusUnknown) {
		return ""
	}
	return v
}
