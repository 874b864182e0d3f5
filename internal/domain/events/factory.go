package events

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DogRef es la identidad mínima que la factory necesita de un perro.
type DogRef struct {
	DogID      string
	DogName    string
	RescueName string
}

// NewFirstSeen arma el evento de primera aparición de un perro en el sistema.
func NewFirstSeen(ref DogRef, status string, fitScore *int, now time.Time) DogEvent {
	summary := "First seen: " + status
	if fitScore != nil {
		summary += fmt.Sprintf(" (Fit Score: %d)", *fitScore)
	}

	details := map[string]any{
		"dog_name":       ref.DogName,
		"rescue_name":    ref.RescueName,
		"initial_status": status,
	}
	if fitScore != nil {
		details["initial_fit_score"] = *fitScore
	}

	return DogEvent{
		EventID:   uuid.NewString(),
		DogID:     ref.DogID,
		Type:      EventTypeFirstSeen,
		Timestamp: now,
		Source:    SourceFromRescueName(ref.RescueName),
		Summary:   summary,
		Details:   details,
		CreatedBy: "system",
	}
}

// NewStatusChange arma el evento de cambio de status.
// El summary es descriptivo según la transición.
func NewStatusChange(ref DogRef, oldStatus, newStatus string, now time.Time) DogEvent {
	var summary string
	switch {
	case strings.EqualFold(newStatus, "Pending"):
		summary = "Application submitted - now pending"
	case strings.EqualFold(newStatus, "Available") && strings.EqualFold(oldStatus, "Pending"):
		summary = "Became available again (adoption fell through?)"
	case strings.EqualFold(newStatus, "Adopted"):
		summary = "Adopted"
	default:
		summary = fmt.Sprintf("Status: %s -> %s", oldStatus, newStatus)
	}

	return DogEvent{
		EventID:      uuid.NewString(),
		DogID:        ref.DogID,
		Type:         EventTypeStatusChange,
		Timestamp:    now,
		Source:       SourceFromRescueName(ref.RescueName),
		Summary:      summary,
		FieldChanged: FieldStatus,
		OldValue:     oldStatus,
		NewValue:     newStatus,
		Details: map[string]any{
			"dog_name":    ref.DogName,
			"from_status": oldStatus,
			"to_status":   newStatus,
		},
		CreatedBy: "system",
	}
}

// NewWebsiteUpdate colapsa varios cambios no-status en un solo evento.
// Así un scrape que actualiza peso + shedding + edad genera un evento, no tres.
func NewWebsiteUpdate(ref DogRef, changes []Change, now time.Time) DogEvent {
	summaries := make([]string, 0, len(changes))
	detailChanges := make(map[string]any, len(changes))

	for _, c := range changes {
		switch c.Field {
		case FieldWeight:
			summaries = append(summaries, fmt.Sprintf("Weight: %s -> %s lbs", orUnknown(c.Old), c.New))
		case FieldGoodWithDogs:
			summaries = append(summaries, "Good with dogs: "+c.New)
		case FieldGoodWithKids:
			summaries = append(summaries, "Good with kids: "+c.New)
		case FieldGoodWithCats:
			summaries = append(summaries, "Good with cats: "+c.New)
		default:
			summaries = append(summaries, fmt.Sprintf("%s: %s -> %s", c.Field, orUnknown(c.Old), c.New))
		}
		detailChanges[c.Field] = map[string]any{"old": c.Old, "new": c.New}
	}

	// Máximo 3 cambios en el summary para que no explote en el timeline
	summary := strings.Join(summaries[:min(3, len(summaries))], "; ")
	if len(summaries) > 3 {
		summary += fmt.Sprintf(" (+%d more)", len(summaries)-3)
	}

	return DogEvent{
		EventID:   uuid.NewString(),
		DogID:     ref.DogID,
		Type:      EventTypeWebsiteUpdate,
		Timestamp: now,
		Source:    SourceFromRescueName(ref.RescueName),
		Summary:   summary,
		Details: map[string]any{
			"dog_name": ref.DogName,
			"changes":  detailChanges,
		},
		CreatedBy: "system",
	}
}

// NewImageAdded arma el evento de foto nueva.
func NewImageAdded(ref DogRef, imageURL, imageSource string, now time.Time) DogEvent {
	if strings.TrimSpace(imageSource) == "" {
		imageSource = "rescue_website"
	}
	return DogEvent{
		EventID:   uuid.NewString(),
		DogID:     ref.DogID,
		Type:      EventTypeImageAdded,
		Timestamp: now,
		Source:    SourceFromRescueName(ref.RescueName),
		Summary:   "New image added from " + imageSource,
		Details: map[string]any{
			"image_url":    imageURL,
			"image_source": imageSource,
		},
		CreatedBy: "system",
	}
}

// NewAdminEdit arma el evento de corrección manual.
func NewAdminEdit(ref DogRef, adminUser, field, oldValue, newValue, reason string, now time.Time) DogEvent {
	summary := "Admin corrected " + field
	if strings.TrimSpace(reason) != "" {
		summary += ": " + reason
	}
	return DogEvent{
		EventID:      uuid.NewString(),
		DogID:        ref.DogID,
		Type:         EventTypeAdminEdit,
		Timestamp:    now,
		Source:       SourceAdmin,
		Summary:      summary,
		FieldChanged: field,
		OldValue:     oldValue,
		NewValue:     newValue,
		Details:      map[string]any{"reason": reason},
		CreatedBy:    adminUser,
	}
}

// NewFBPost arma el evento de post de Facebook sobre el perro.
func NewFBPost(ref DogRef, postURL, postDate, postSummary string, now time.Time) DogEvent {
	summary := strings.TrimSpace(postSummary)
	if summary == "" {
		summary = "Featured in Facebook post"
	}
	return DogEvent{
		EventID:   uuid.NewString(),
		DogID:     ref.DogID,
		Type:      EventTypeFBPost,
		Timestamp: now,
		Source:    SourceFacebook,
		Summary:   summary,
		Details: map[string]any{
			"post_url":    postURL,
			"post_date":   postDate,
			"rescue_name": ref.RescueName,
		},
		CreatedBy: "system",
	}
}

// FromChanges traduce la salida del detector de cambios a eventos tipados.
//
// Reglas:
//   - marcador first_seen => exactamente un evento first_seen y nada más
//   - cambio de status    => siempre su propio evento status_change
//   - el resto de cambios significativos => UN solo website_update
func FromChanges(ref DogRef, status string, fitScore *int, changes []Change, now time.Time) []DogEvent {
	if len(changes) == 0 {
		return nil
	}

	for _, c := range changes {
		if c.Field == FieldFirstSeen {
			return []DogEvent{NewFirstSeen(ref, status, fitScore, now)}
		}
	}

	var out []DogEvent
	rest := make([]Change, 0, len(changes))

	for _, c := range changes {
		if c.Field == FieldStatus {
			out = append(out, NewStatusChange(ref, c.Old, c.New, now))
			continue
		}
		rest = append(rest, c)
	}

	if len(rest) > 0 {
		out = append(out, NewWebsiteUpdate(ref, rest, now))
	}

	return out
}

func orUnknown(s string) string {
	if s == "" {
		return "?"
	}
	return s
}
