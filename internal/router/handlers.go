package router

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"rescue-dog-tracker/internal/dal"
	"rescue-dog-tracker/internal/domain/dogs"
	"rescue-dog-tracker/internal/domain/events"
	"rescue-dog-tracker/internal/domain/scoring"
	"rescue-dog-tracker/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func registerRoutes(r chi.Router, svc *dal.DAL) {
	r.Route("/dogs", func(dr chi.Router) {
		dr.Get("/", listDogsHandler(svc))
		dr.Get("/{dogID}", getDogHandler(svc))
		dr.Get("/{dogID}/events", dogEventsHandler(svc))
		dr.Post("/{dogID}/events", appendEventHandler(svc))
		dr.Put("/{dogID}/state", putStateHandler(svc))
	})

	r.Get("/events/recent", recentEventsHandler(svc))

	r.Get("/preferences", getPreferencesHandler(svc))
	r.Put("/preferences", putPreferencesHandler(svc))
}

type dogResponse struct {
	DogID      string `json:"dog_id"`
	DogName    string `json:"dog_name"`
	RescueName string `json:"rescue_name"`
	SourceURL  string `json:"source_url"`
	Platform   string `json:"platform,omitempty"`

	Status   string `json:"status"`
	IsActive bool   `json:"is_active"`

	WeightLbs  *int     `json:"weight_lbs,omitempty"`
	AgeYears   *float64 `json:"age_years,omitempty"`
	AgeDisplay string   `json:"age_display,omitempty"`
	Sex        string   `json:"sex,omitempty"`
	Breed      string   `json:"breed,omitempty"`
	Location   string   `json:"location,omitempty"`

	GoodWithDogs string `json:"good_with_dogs,omitempty"`
	GoodWithCats string `json:"good_with_cats,omitempty"`
	GoodWithKids string `json:"good_with_kids,omitempty"`

	Shedding          string `json:"shedding,omitempty"`
	EnergyLevel       string `json:"energy_level,omitempty"`
	SpecialNeeds      bool   `json:"special_needs"`
	SpecialNeedsNotes string `json:"special_needs_notes,omitempty"`

	AdoptionFee          string   `json:"adoption_fee,omitempty"`
	AdoptionRadiusMiles  *int     `json:"adoption_radius_miles,omitempty"`
	AdoptionRequirements []string `json:"adoption_requirements,omitempty"`

	PrimaryImageURL string          `json:"primary_image_url,omitempty"`
	Images          []dogs.DogImage `json:"images,omitempty"`

	RescueMeta dogs.RescueMeta `json:"rescue_meta"`

	FitScore int  `json:"fit_score"`
	Favorite bool `json:"favorite"`
	Hidden   bool `json:"hidden"`

	CreatedAt       time.Time `json:"created_at,omitzero"`
	UpdatedAt       time.Time `json:"updated_at,omitzero"`
	StatusChangedAt time.Time `json:"status_changed_at,omitzero"`
	LastScrapedAt   time.Time `json:"last_scraped_at,omitzero"`
}

type eventResponse struct {
	EventID      string         `json:"event_id"`
	DogID        string         `json:"dog_id"`
	Type         string         `json:"event_type"`
	Timestamp    time.Time      `json:"timestamp"`
	Source       string         `json:"source"`
	Summary      string         `json:"summary"`
	FieldChanged string         `json:"field_changed,omitempty"`
	OldValue     string         `json:"old_value,omitempty"`
	NewValue     string         `json:"new_value,omitempty"`
	Details      map[string]any `json:"details,omitempty"`
	CreatedBy    string         `json:"created_by"`
}

// GET /dogs?status=available&rescue=...&include_inactive=true
// La lista siempre viene personalizada para el usuario del request:
// scores con overrides aplicados y flags de favorito/oculto.
func listDogsHandler(svc *dal.DAL) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _ := middleware.GetUserID(r.Context())

		q := r.URL.Query()
		includeInactive := q.Get("include_inactive") == "true"

		var (
			list []dogs.Dog
			err  error
		)
		switch {
		case q.Get("status") != "":
			list, err = svc.ListDogsByStatus(r.Context(), dogs.ParseStatus(q.Get("status")))
		case q.Get("rescue") != "":
			list, err = svc.ListDogsByRescue(r.Context(), q.Get("rescue"), includeInactive)
		default:
			list, err = svc.ListDogs(r.Context(), includeInactive)
		}
		if err != nil {
			http.Error(w, "storage error", http.StatusInternalServerError)
			return
		}

		scored, err := svc.ApplyUserOverrides(r.Context(), list, userID)
		if err != nil {
			http.Error(w, "storage error", http.StatusInternalServerError)
			return
		}

		out := make([]dogResponse, 0, len(scored))
		for _, sd := range scored {
			out = append(out, toDogResponse(sd.Dog, sd.FitScore, sd.Favorite, sd.Hidden))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func getDogHandler(svc *dal.DAL) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _ := middleware.GetUserID(r.Context())
		dogID := chi.URLParam(r, "dogID")

		d, err := svc.GetDog(r.Context(), dogID)
		if errors.Is(err, dogs.ErrNotFound) {
			http.Error(w, "dog not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, "storage error", http.StatusInternalServerError)
			return
		}

		st, err := svc.GetUserDogState(r.Context(), userID, dogID)
		if err != nil {
			http.Error(w, "storage error", http.StatusInternalServerError)
			return
		}
		prefs, err := svc.GetUserPreferences(r.Context(), userID)
		if err != nil {
			http.Error(w, "storage error", http.StatusInternalServerError)
			return
		}

		score := svc.ComputeFitScore(d, &st.Overrides, &prefs.Scoring)
		writeJSON(w, http.StatusOK, toDogResponse(d, score, st.Favorite, st.Hidden))
	}
}

// GET /dogs/{dogID}/events — timeline cronológico, el más viejo primero.
func dogEventsHandler(svc *dal.DAL) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dogID := chi.URLParam(r, "dogID")

		// 404 para perros que nunca existieron; timeline vacío es un 200
		if _, err := svc.GetDog(r.Context(), dogID); err != nil {
			if errors.Is(err, dogs.ErrNotFound) {
				http.Error(w, "dog not found", http.StatusNotFound)
				return
			}
			http.Error(w, "storage error", http.StatusInternalServerError)
			return
		}

		evs, err := svc.GetDogEvents(r.Context(), dogID)
		if err != nil {
			http.Error(w, "storage error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, toEventResponses(evs))
	}
}

func recentEventsHandler(svc *dal.DAL) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 0
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 {
				http.Error(w, "limit must be a non-negative integer", http.StatusBadRequest)
				return
			}
			limit = n
		}

		evs, err := svc.GetRecentEvents(r.Context(), limit)
		if err != nil {
			http.Error(w, "storage error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, toEventResponses(evs))
	}
}

type appendEventRequest struct {
	Type string `json:"event_type"`

	// image_added
	ImageURL    string `json:"image_url,omitempty"`
	ImageSource string `json:"image_source,omitempty"`

	// admin_edit
	AdminUser string `json:"admin_user,omitempty"`
	Field     string `json:"field,omitempty"`
	OldValue  string `json:"old_value,omitempty"`
	NewValue  string `json:"new_value,omitempty"`
	Reason    string `json:"reason,omitempty"`

	// fb_post
	PostURL     string `json:"post_url,omitempty"`
	PostDate    string `json:"post_date,omitempty"`
	PostSummary string `json:"post_summary,omitempty"`
}

// POST /dogs/{dogID}/events — eventos manuales (posts de Facebook, ediciones
// de admin, fotos nuevas). Los eventos generados por el save pipeline no
// pasan por acá.
func appendEventHandler(svc *dal.DAL) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dogID := chi.URLParam(r, "dogID")

		d, err := svc.GetDog(r.Context(), dogID)
		if errors.Is(err, dogs.ErrNotFound) {
			http.Error(w, "dog not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, "storage error", http.StatusInternalServerError)
			return
		}

		var req appendEventRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		now := time.Now()
		var ev events.DogEvent
		switch events.EventType(strings.TrimSpace(req.Type)) {
		case events.EventTypeImageAdded:
			if req.ImageURL == "" {
				http.Error(w, "image_url is required", http.StatusBadRequest)
				return
			}
			ev = events.NewImageAdded(d.Ref(), req.ImageURL, req.ImageSource, now)
		case events.EventTypeAdminEdit:
			if req.Field == "" {
				http.Error(w, "field is required", http.StatusBadRequest)
				return
			}
			ev = events.NewAdminEdit(d.Ref(), req.AdminUser, req.Field, req.OldValue, req.NewValue, req.Reason, now)
		case events.EventTypeFBPost:
			if req.PostURL == "" && req.PostSummary == "" {
				http.Error(w, "post_url or post_summary is required", http.StatusBadRequest)
				return
			}
			ev = events.NewFBPost(d.Ref(), req.PostURL, req.PostDate, req.PostSummary, now)
		default:
			http.Error(w, "event_type must be image_added, admin_edit or fb_post", http.StatusBadRequest)
			return
		}

		if err := svc.AppendDogEvent(r.Context(), ev); err != nil {
			http.Error(w, "storage error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, toEventResponse(ev))
	}
}

type putStateRequest struct {
	Overrides       *scoring.Overrides `json:"overrides"`
	Favorite        *bool              `json:"favorite"`
	Hidden          *bool              `json:"hidden"`
	Applied         *bool              `json:"applied"`
	ContactedRescue *bool              `json:"contacted_rescue"`
	Notes           *string            `json:"notes"`
}

// PUT /dogs/{dogID}/state — merge sobre el estado actual: los campos que no
// vienen no se tocan.
func putStateHandler(svc *dal.DAL) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.GetUserID(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		dogID := chi.URLParam(r, "dogID")

		d, err := svc.GetDog(r.Context(), dogID)
		if errors.Is(err, dogs.ErrNotFound) {
			http.Error(w, "dog not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, "storage error", http.StatusInternalServerError)
			return
		}

		var req putStateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		st, err := svc.GetUserDogState(r.Context(), userID, dogID)
		if err != nil {
			http.Error(w, "storage error", http.StatusInternalServerError)
			return
		}
		st.UserID = userID
		st.DogID = dogID

		if req.Overrides != nil {
			st.Overrides = *req.Overrides
		}
		if req.Favorite != nil {
			st.Favorite = *req.Favorite
		}
		if req.Hidden != nil {
			st.Hidden = *req.Hidden
		}
		if req.Applied != nil {
			st.Applied = *req.Applied
		}
		if req.ContactedRescue != nil {
			st.ContactedRescue = *req.ContactedRescue
		}
		if req.Notes != nil {
			st.Notes = *req.Notes
		}

		prefs, err := svc.GetUserPreferences(r.Context(), userID)
		if err != nil {
			http.Error(w, "storage error", http.StatusInternalServerError)
			return
		}
		score := svc.ComputeFitScore(d, &st.Overrides, &prefs.Scoring)
		st.ComputedFitScore = &score

		if err := svc.SaveUserDogState(r.Context(), st); err != nil {
			http.Error(w, "storage error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, st)
	}
}

func getPreferencesHandler(svc *dal.DAL) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.GetUserID(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		prefs, err := svc.GetUserPreferences(r.Context(), userID)
		if err != nil {
			http.Error(w, "storage error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, prefs)
	}
}

// PUT /preferences — merge sobre las preferencias vigentes: el body puede
// traer un subset de los factores de scoring y los que no vienen conservan
// su valor actual (o el default), nunca quedan en cero.
func putPreferencesHandler(svc *dal.DAL) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.GetUserID(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		prefs, err := svc.GetUserPreferences(r.Context(), userID)
		if err != nil {
			http.Error(w, "storage error", http.StatusInternalServerError)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&prefs); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		prefs.UserID = userID

		if err := svc.SaveUserPreferences(r.Context(), prefs); err != nil {
			http.Error(w, "storage error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, prefs)
	}
}

func toDogResponse(d dogs.Dog, fitScore int, favorite, hidden bool) dogResponse {
	return dogResponse{
		DogID:                d.DogID,
		DogName:              d.DogName,
		RescueName:           d.RescueName,
		SourceURL:            d.SourceURL,
		Platform:             d.Platform,
		Status:               string(d.Status),
		IsActive:             d.IsActive,
		WeightLbs:            d.WeightLbs,
		AgeYears:             d.AgeYears,
		AgeDisplay:           d.AgeDisplay,
		Sex:                  d.Sex,
		Breed:                d.Breed,
		Location:             d.Location,
		GoodWithDogs:         d.GoodWithDogs,
		GoodWithCats:         d.GoodWithCats,
		GoodWithKids:         d.GoodWithKids,
		Shedding:             d.Shedding,
		EnergyLevel:          d.EnergyLevel,
		SpecialNeeds:         d.SpecialNeeds,
		SpecialNeedsNotes:    d.SpecialNeedsNotes,
		AdoptionFee:          d.AdoptionFee,
		AdoptionRadiusMiles:  d.AdoptionRadiusMiles,
		AdoptionRequirements: d.AdoptionRequirements,
		PrimaryImageURL:      d.PrimaryImage(),
		Images:               d.Images,
		RescueMeta:           d.RescueMeta,
		FitScore:             fitScore,
		Favorite:             favorite,
		Hidden:               hidden,
		CreatedAt:            d.CreatedAt,
		UpdatedAt:            d.UpdatedAt,
		StatusChangedAt:      d.StatusChangedAt,
		LastScrapedAt:        d.LastScrapedAt,
	}
}

func toEventResponse(e events.DogEvent) eventResponse {
	return eventResponse{
		EventID:      e.EventID,
		DogID:        e.DogID,
		Type:         string(e.Type),
		Timestamp:    e.Timestamp,
		Source:       string(e.Source),
		Summary:      e.Summary,
		FieldChanged: e.FieldChanged,
		OldValue:     e.OldValue,
		NewValue:     e.NewValue,
		Details:      e.Details,
		CreatedBy:    e.CreatedBy,
	}
}

func toEventResponses(evs []events.DogEvent) []eventResponse {
	out := make([]eventResponse, 0, len(evs))
	for _, e := range evs {
		out = append(out, toEventResponse(e))
	}
	return out
}

// writeJSON está duplicado a propósito: cada paquete con handlers tiene el
// suyo para no compartir helpers triviales entre módulos.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
