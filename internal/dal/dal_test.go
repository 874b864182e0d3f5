package dal_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"rescue-dog-tracker/internal/dal"
	"rescue-dog-tracker/internal/domain/dogs"
	"rescue-dog-tracker/internal/domain/events"
	"rescue-dog-tracker/internal/domain/scoring"
	"rescue-dog-tracker/internal/domain/users"
	"rescue-dog-tracker/internal/platform/logger"
)

type clock struct {
	t time.Time
}

func (c *clock) now() time.Time { return c.t }

func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestDAL() (*dal.DAL, *clock) {
	c := &clock{t: time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)}
	svc := dal.NewInMemory(logger.New(logger.Options{Level: logger.Error})).WithClock(c.now)
	return svc, c
}

func biscuit() dogs.Dog {
	w := 45
	return dogs.Dog{
		DogID:        "doodle-rock-rescue-biscuit",
		DogName:      "Biscuit",
		RescueName:   "Doodle Rock Rescue",
		Status:       dogs.StatusAvailable,
		IsActive:     true,
		WeightLbs:    &w,
		AgeDisplay:   "2 yrs",
		Breed:        "Goldendoodle",
		Shedding:     dogs.SheddingNone,
		EnergyLevel:  dogs.EnergyMedium,
		GoodWithDogs: dogs.CompatYes,
	}
}

func TestSaveDog_FirstSeenExactlyOnce(t *testing.T) {
	svc, c := newTestDAL()
	ctx := context.Background()

	saved, evs, err := svc.SaveDog(ctx, biscuit())
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	if len(evs) != 1 || evs[0].Type != events.EventTypeFirstSeen {
		t.Fatalf("expected exactly one first_seen, got %v", evs)
	}
	if !saved.CreatedAt.Equal(c.t) || !saved.UpdatedAt.Equal(c.t) {
		t.Fatalf("first write must stamp CreatedAt==UpdatedAt==now: %+v", saved)
	}
	if !saved.StatusChangedAt.Equal(c.t) {
		t.Fatalf("first write must stamp StatusChangedAt: %v", saved.StatusChangedAt)
	}

	timeline, err := svc.GetDogEvents(ctx, saved.DogID)
	if err != nil {
		t.Fatalf("timeline: %v", err)
	}
	if len(timeline) != 1 || timeline[0].Type != events.EventTypeFirstSeen {
		t.Fatalf("timeline should hold the single first_seen, got %v", timeline)
	}
}

func TestSaveDog_IdenticalResaveIsSilent(t *testing.T) {
	svc, c := newTestDAL()
	ctx := context.Background()

	first, _, err := svc.SaveDog(ctx, biscuit())
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	c.advance(24 * time.Hour)

	second, evs, err := svc.SaveDog(ctx, biscuit())
	if err != nil {
		t.Fatalf("re-save: %v", err)
	}
	if len(evs) != 0 {
		t.Fatalf("identical re-save must produce zero events, got %v", evs)
	}
	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Fatalf("CreatedAt is immutable: %v vs %v", second.CreatedAt, first.CreatedAt)
	}
	if !second.UpdatedAt.Equal(c.t) {
		t.Fatalf("UpdatedAt must bump on every write: %v", second.UpdatedAt)
	}
	if !second.StatusChangedAt.Equal(first.StatusChangedAt) {
		t.Fatalf("StatusChangedAt must not move without a status change")
	}

	timeline, _ := svc.GetDogEvents(ctx, first.DogID)
	if len(timeline) != 1 {
		t.Fatalf("first_seen must happen exactly once per dog, got %d events", len(timeline))
	}
}

func TestSaveDog_StatusChange(t *testing.T) {
	svc, c := newTestDAL()
	ctx := context.Background()

	if _, _, err := svc.SaveDog(ctx, biscuit()); err != nil {
		t.Fatalf("save: %v", err)
	}

	c.advance(24 * time.Hour)

	pending := biscuit()
	pending.Status = dogs.StatusPending

	saved, evs, err := svc.SaveDog(ctx, pending)
	if err != nil {
		t.Fatalf("re-save: %v", err)
	}
	if len(evs) != 1 || evs[0].Type != events.EventTypeStatusChange {
		t.Fatalf("expected a lone status_change, got %v", evs)
	}
	if evs[0].OldValue != "Available" || evs[0].NewValue != "Pending" {
		t.Fatalf("wrong transition: %+v", evs[0])
	}
	if !saved.StatusChangedAt.Equal(c.t) {
		t.Fatalf("StatusChangedAt must bump on status change: %v", saved.StatusChangedAt)
	}
}

func TestSaveDog_NonStatusChangesCollapse(t *testing.T) {
	svc, c := newTestDAL()
	ctx := context.Background()

	if _, _, err := svc.SaveDog(ctx, biscuit()); err != nil {
		t.Fatalf("save: %v", err)
	}

	c.advance(time.Hour)

	updated := biscuit()
	w := 52
	updated.WeightLbs = &w
	updated.AgeDisplay = "3 yrs"

	_, evs, err := svc.SaveDog(ctx, updated)
	if err != nil {
		t.Fatalf("re-save: %v", err)
	}
	if len(evs) != 1 || evs[0].Type != events.EventTypeWebsiteUpdate {
		t.Fatalf("two non-status changes must collapse to one website_update, got %v", evs)
	}
}

func TestSaveDog_StatusPlusFields(t *testing.T) {
	svc, c := newTestDAL()
	ctx := context.Background()

	if _, _, err := svc.SaveDog(ctx, biscuit()); err != nil {
		t.Fatalf("save: %v", err)
	}

	c.advance(time.Hour)

	updated := biscuit()
	updated.Status = dogs.StatusPending
	w := 52
	updated.WeightLbs = &w

	_, evs, err := svc.SaveDog(ctx, updated)
	if err != nil {
		t.Fatalf("re-save: %v", err)
	}
	if len(evs) != 2 {
		t.Fatalf("expected status_change + website_update, got %d", len(evs))
	}
	if evs[0].Type != events.EventTypeStatusChange || evs[1].Type != events.EventTypeWebsiteUpdate {
		t.Fatalf("wrong event split: %v, %v", evs[0].Type, evs[1].Type)
	}
}

func TestSaveDog_Invalid(t *testing.T) {
	svc, _ := newTestDAL()
	ctx := context.Background()

	if _, _, err := svc.SaveDog(ctx, dogs.Dog{DogName: "NoID"}); !errors.Is(err, dal.ErrInvalidDog) {
		t.Fatalf("expected ErrInvalidDog, got %v", err)
	}
	if _, _, err := svc.SaveDog(ctx, dogs.Dog{DogID: "no-name"}); !errors.Is(err, dal.ErrInvalidDog) {
		t.Fatalf("expected ErrInvalidDog, got %v", err)
	}

	// nada quedó escrito
	if _, err := svc.GetDog(ctx, "no-name"); !errors.Is(err, dogs.ErrNotFound) {
		t.Fatalf("invalid save must not persist, got %v", err)
	}
}

func TestGetDog_NotFound(t *testing.T) {
	svc, _ := newTestDAL()
	if _, err := svc.GetDog(context.Background(), "ghost"); !errors.Is(err, dogs.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMarkDogsInactive(t *testing.T) {
	svc, c := newTestDAL()
	ctx := context.Background()

	if _, _, err := svc.SaveDog(ctx, biscuit()); err != nil {
		t.Fatalf("save: %v", err)
	}

	other := biscuit()
	other.DogID = "doodle-rock-rescue-waffles"
	other.DogName = "Waffles"
	if _, _, err := svc.SaveDog(ctx, other); err != nil {
		t.Fatalf("save: %v", err)
	}

	c.advance(24 * time.Hour)

	// el scrape de hoy solo vio a Waffles
	evs, err := svc.MarkDogsInactive(ctx, "Doodle Rock Rescue", []string{other.DogID})
	if err != nil {
		t.Fatalf("mark inactive: %v", err)
	}
	if len(evs) != 1 || evs[0].DogID != "doodle-rock-rescue-biscuit" {
		t.Fatalf("expected one status_change for Biscuit, got %v", evs)
	}

	gone, err := svc.GetDog(ctx, "doodle-rock-rescue-biscuit")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if gone.Status != dogs.StatusAdopted || gone.IsActive {
		t.Fatalf("disappeared dog must be Adopted+inactive: %+v", gone)
	}

	kept, _ := svc.GetDog(ctx, other.DogID)
	if kept.Status != dogs.StatusAvailable || !kept.IsActive {
		t.Fatalf("seen dog must stay untouched: %+v", kept)
	}

	// listado activo ya no lo incluye
	active, err := svc.ListDogs(ctx, false)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(active) != 1 || active[0].DogID != other.DogID {
		t.Fatalf("active listing wrong: %v", active)
	}
}

func TestTimeline_ChronologicalOrder(t *testing.T) {
	svc, c := newTestDAL()
	ctx := context.Background()

	d := biscuit()
	if _, _, err := svc.SaveDog(ctx, d); err != nil {
		t.Fatalf("save: %v", err)
	}

	for i, status := range []dogs.DogStatus{dogs.StatusPending, dogs.StatusAvailable, dogs.StatusAdopted} {
		c.advance(time.Duration(i+1) * time.Hour)
		d.Status = status
		if _, _, err := svc.SaveDog(ctx, d); err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}

	timeline, err := svc.GetDogEvents(ctx, d.DogID)
	if err != nil {
		t.Fatalf("timeline: %v", err)
	}
	if len(timeline) != 4 {
		t.Fatalf("expected 4 events, got %d", len(timeline))
	}
	for i := 1; i < len(timeline); i++ {
		if timeline[i].Timestamp.Before(timeline[i-1].Timestamp) {
			t.Fatalf("timeline not chronological at %d: %v < %v",
				i, timeline[i].Timestamp, timeline[i-1].Timestamp)
		}
	}
}

func TestGetRecentEvents_NewestFirst(t *testing.T) {
	svc, c := newTestDAL()
	ctx := context.Background()

	d := biscuit()
	if _, _, err := svc.SaveDog(ctx, d); err != nil {
		t.Fatalf("save: %v", err)
	}
	c.advance(time.Hour)
	d.Status = dogs.StatusPending
	if _, _, err := svc.SaveDog(ctx, d); err != nil {
		t.Fatalf("save: %v", err)
	}

	recent, err := svc.GetRecentEvents(ctx, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 events, got %d", len(recent))
	}
	if recent[0].Type != events.EventTypeStatusChange {
		t.Fatalf("newest first: expected status_change on top, got %q", recent[0].Type)
	}

	limited, _ := svc.GetRecentEvents(ctx, 1)
	if len(limited) != 1 {
		t.Fatalf("limit not honored: got %d", len(limited))
	}
}

func TestAppendDogEvent_Manual(t *testing.T) {
	svc, c := newTestDAL()
	ctx := context.Background()

	saved, _, err := svc.SaveDog(ctx, biscuit())
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	ev := events.NewFBPost(saved.Ref(), "https://facebook.com/post/1", "2026-03-14", "Biscuit at the adoption fair!", c.t)
	if err := svc.AppendDogEvent(ctx, ev); err != nil {
		t.Fatalf("append: %v", err)
	}

	timeline, _ := svc.GetDogEvents(ctx, saved.DogID)
	if len(timeline) != 2 {
		t.Fatalf("expected first_seen + fb_post, got %d", len(timeline))
	}
}

func TestUserDogState_DefaultAndSave(t *testing.T) {
	svc, c := newTestDAL()
	ctx := context.Background()

	// sin estado guardado devuelve el default vacío, nunca error
	st, err := svc.GetUserDogState(ctx, "u1", "some-dog")
	if err != nil {
		t.Fatalf("get default state: %v", err)
	}
	if st.Favorite || st.Hidden || st.Overrides.HasAny() {
		t.Fatalf("default state must be empty: %+v", st)
	}

	st.UserID = "u1"
	st.DogID = "some-dog"
	st.Favorite = true
	st.Notes = "met him at the fair"

	if err := svc.SaveUserDogState(ctx, st); err != nil {
		t.Fatalf("save state: %v", err)
	}

	got, err := svc.GetUserDogState(ctx, "u1", "some-dog")
	if err != nil {
		t.Fatalf("get state: %v", err)
	}
	if !got.Favorite || got.Notes != "met him at the fair" {
		t.Fatalf("state not persisted: %+v", got)
	}
	if !got.CreatedAt.Equal(c.t) || !got.FavoritedAt.Equal(c.t) {
		t.Fatalf("timestamps not stamped: %+v", got)
	}
}

func TestUserPreferences_DefaultAndSave(t *testing.T) {
	svc, _ := newTestDAL()
	ctx := context.Background()

	prefs, err := svc.GetUserPreferences(ctx, "u1")
	if err != nil {
		t.Fatalf("get default prefs: %v", err)
	}
	if prefs.UserID != "u1" || prefs.DefaultFilter != "available" {
		t.Fatalf("unexpected defaults: %+v", prefs)
	}
	if prefs.Scoring != scoring.DefaultConfig() {
		t.Fatalf("default prefs must carry the default scoring table")
	}

	prefs.Scoring.GoodWithCats = 3
	if err := svc.SaveUserPreferences(ctx, prefs); err != nil {
		t.Fatalf("save prefs: %v", err)
	}

	got, _ := svc.GetUserPreferences(ctx, "u1")
	if got.Scoring.GoodWithCats != 3 {
		t.Fatalf("prefs not persisted: %+v", got.Scoring)
	}
}

func TestApplyUserOverrides(t *testing.T) {
	svc, _ := newTestDAL()
	ctx := context.Background()

	saved, _, err := svc.SaveDog(ctx, biscuit())
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	base := svc.ComputeFitScore(saved, nil, nil)

	st := users.UserDogState{
		UserID:    "u1",
		DogID:     saved.DogID,
		Favorite:  true,
		Overrides: scoring.Overrides{ManualScoreAdjustment: 3},
	}
	if err := svc.SaveUserDogState(ctx, st); err != nil {
		t.Fatalf("save state: %v", err)
	}

	scored, err := svc.ApplyUserOverrides(ctx, []dogs.Dog{saved}, "u1")
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if len(scored) != 1 {
		t.Fatalf("expected one scored dog, got %d", len(scored))
	}
	if scored[0].FitScore != base+3 {
		t.Fatalf("manual adjustment not applied: base %d, got %d", base, scored[0].FitScore)
	}
	if !scored[0].Favorite {
		t.Fatal("favorite flag lost")
	}

	// otro usuario ve el score sin ajustes
	plain, err := svc.ApplyUserOverrides(ctx, []dogs.Dog{saved}, "u2")
	if err != nil {
		t.Fatalf("apply u2: %v", err)
	}
	if plain[0].FitScore != base {
		t.Fatalf("overrides leaked across users: %d vs %d", plain[0].FitScore, base)
	}
}
