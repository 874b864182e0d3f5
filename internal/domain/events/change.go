package events

// Nombres estables de los campos significativos de un perro.
// El detector de cambios y la factory de eventos comparten este vocabulario.
const (
	FieldFirstSeen    = "first_seen" // marcador sintético, no es un campo real
	FieldStatus       = "status"
	FieldWeight       = "weight"
	FieldAgeDisplay   = "age_display"
	FieldShedding     = "shedding"
	FieldEnergyLevel  = "energy_level"
	FieldGoodWithDogs = "good_with_dogs"
	FieldGoodWithCats = "good_with_cats"
	FieldGoodWithKids = "good_with_kids"
	FieldPrimaryImage = "primary_image_url"
)

// Change es una diferencia semántica detectada entre el perro guardado
// y el perro entrante.
type Change struct {
	Field string
	Old   string
	New   string
}
