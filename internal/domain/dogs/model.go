package dogs

import (
	"sort"
	"time"

	"rescue-dog-tracker/internal/domain/events"
)

// DogImage es una foto del perro. Priority menor = más prioritaria (0 = principal).
// Los tags json mantienen el formato de blob compatible con los dumps legacy.
type DogImage struct {
	URL      string    `json:"url"`
	Source   string    `json:"source,omitempty"` // "rescue_website", "facebook", "admin_upload"
	Priority int       `json:"priority"`
	Caption  string    `json:"caption,omitempty"`
	AddedAt  time.Time `json:"added_at,omitzero"`
}

// RescueMeta preserva el texto original del rescue tal cual se scrapeó.
// La normalización nunca pisa estos campos: son la evidencia de
// "qué dijo el rescue" vs "qué parseamos nosotros".
type RescueMeta struct {
	WeightText string `json:"weight_text,omitempty"` // "About 50 lbs"
	AgeText    string `json:"age_text,omitempty"`    // "2-3 years old"
	BreedText  string `json:"breed_text,omitempty"`  // "Goldendoodle F1B"
	BioHTML    string `json:"bio_html,omitempty"`
	BioText    string `json:"bio_text,omitempty"`

	RescueDogID        string `json:"rescue_dog_id,omitempty"`        // su ID interno si está visible
	RescueLocationCode string `json:"rescue_location_code,omitempty"` // "HOU", "DFW", etc.

	GoodWithDogsText string `json:"good_with_dogs_text,omitempty"`
	GoodWithCatsText string `json:"good_with_cats_text,omitempty"`
	GoodWithKidsText string `json:"good_with_kids_text,omitempty"`

	CrateTrained string `json:"crate_trained,omitempty"`
	PottyTrained string `json:"potty_trained,omitempty"`
	LeashTrained string `json:"leash_trained,omitempty"`

	SpayNeuterStatus  string `json:"spay_neuter_status,omitempty"`
	VaccinationStatus string `json:"vaccination_status,omitempty"`
	HeartwormStatus   string `json:"heartworm_status,omitempty"`

	AdoptionFeeText          string `json:"adoption_fee_text,omitempty"`
	AdoptionRadiusText       string `json:"adoption_radius_text,omitempty"`
	AdoptionRequirementsText string `json:"adoption_requirements_text,omitempty"`

	// Cualquier otra cosa que el scraper haya encontrado
	Extra map[string]any `json:"extra,omitempty"`
}

// Dog es el registro canónico global de un animal, compartido entre usuarios.
// Todo lo user-specific (overrides, favoritos, notas) vive en users.UserDogState.
//
// Solo DogID y DogName son obligatorios; el resto es nullable porque los
// rescues publican datos incompletos.
//
// Invariantes: DogID y CreatedAt no cambian después de la primera escritura;
// StatusChangedAt nunca es anterior a CreatedAt.
type Dog struct {
	// Identidad. DogID es estable: rescue + nombre normalizado.
	DogID   string
	DogName string

	// Rescue
	RescueName string
	SourceURL  string // link directo a la página del perro (alias legacy: source_url)
	Platform   string // dominio del sitio

	// Status
	Status   DogStatus
	IsActive bool // false = ya no aparece en el sitio

	// Atributos normalizados en ingest, nunca re-derivados de RescueMeta
	WeightLbs  *int
	AgeYears   *float64 // normalizado a años (1.5 = año y medio)
	AgeDisplay string   // texto para mostrar: "2 yrs", "8 mos"
	Sex        string   // "Male", "Female"
	Breed      string
	Location   string

	// Compatibilidad normalizada a Yes/No/Unknown
	GoodWithDogs string
	GoodWithCats string
	GoodWithKids string

	// Características
	Shedding          string // None, Low, Moderate, High
	EnergyLevel       string // Low, Medium, High
	SpecialNeeds      bool
	SpecialNeedsNotes string

	// Adopción
	AdoptionFee          string
	AdoptionRadiusMiles  *int
	AdoptionRequirements []string

	// Imágenes. PrimaryImageURL manda; si está vacío, la primera por Priority.
	PrimaryImageURL string
	Images          []DogImage

	// Texto original del rescue, verbatim
	RescueMeta RescueMeta

	// Score base sin overrides de usuario (cache, se recalcula en ingest)
	BaseFitScore *int

	// Timestamps
	CreatedAt       time.Time // primera vez visto; inmutable
	UpdatedAt       time.Time // se bumpea en cada escritura
	StatusChangedAt time.Time // se bumpea solo cuando cambia Status
	LastScrapedAt   time.Time
}

// PrimaryImage devuelve la URL de la foto principal:
// PrimaryImageURL si está seteada, sino la imagen de menor Priority.
func (d Dog) PrimaryImage() string {
	if d.PrimaryImageURL != "" {
		return d.PrimaryImageURL
	}
	if len(d.Images) == 0 {
		return ""
	}

	imgs := make([]DogImage, len(d.Images))
	copy(imgs, d.Images)
	sort.SliceStable(imgs, func(i, j int) bool { return imgs[i].Priority < imgs[j].Priority })
	return imgs[0].URL
}

// Ref es la identidad que consume la factory de eventos.
func (d Dog) Ref() events.DogRef {
	return events.DogRef{DogID: d.DogID, DogName: d.DogName, RescueName: d.RescueName}
}
