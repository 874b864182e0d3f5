package events

import "strings"

// EventType clasifica qué le pasó al perro.
type EventType string

const (
	EventTypeFirstSeen     EventType = "first_seen"
	EventTypeStatusChange  EventType = "status_change"
	EventTypeWebsiteUpdate EventType = "website_update"
	EventTypeFBPost        EventType = "fb_post"
	EventTypeAdminEdit     EventType = "admin_edit"
	EventTypeImageAdded    EventType = "image_added"
)

// Source indica de dónde salió el evento.
type Source string

const (
	SourceDoodleRockSite  Source = "doodle_rock_site"
	SourceDoodleDandySite Source = "doodle_dandy_site"
	SourcePoodlePatchSite Source = "poodle_patch_site"
	SourceFacebook        Source = "facebook"
	SourceAdmin           Source = "admin"
	SourceSystem          Source = "system"
)

// SourceFromRescueName mapea el nombre del rescue a su source.
func SourceFromRescueName(rescueName string) Source {
	switch strings.ToLower(strings.TrimSpace(rescueName)) {
	case "doodle rock rescue":
		return SourceDoodleRockSite
	case "doodle dandy rescue":
		return SourceDoodleDandySite
	case "poodle patch rescue":
		return SourcePoodlePatchSite
	default:
		return SourceSystem
	}
}
