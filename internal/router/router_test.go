package router_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"rescue-dog-tracker/internal/dal"
	"rescue-dog-tracker/internal/domain/dogs"
	"rescue-dog-tracker/internal/domain/events"
	"rescue-dog-tracker/internal/domain/scoring"
	"rescue-dog-tracker/internal/platform/logger"
	"rescue-dog-tracker/internal/router"
)

// seededServer arma un server y un DAL que comparten storage, para poder
// sembrar perros sin pasar por HTTP.
func seededServer(t *testing.T) (*httptest.Server, *dal.DAL) {
	t.Helper()

	log := logger.New(logger.Options{Level: logger.Error})
	svc := dal.NewInMemory(log)

	h := router.NewRouterWithDAL(svc, "default_user")
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)

	return ts, svc
}

func seedBiscuit(t *testing.T, svc *dal.DAL) dogs.Dog {
	t.Helper()

	w := 45
	d := dogs.Dog{
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
	saved, _, err := svc.SaveDog(t.Context(), d)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return saved
}

func doReq(t *testing.T, baseURL, method, path, userID string, body any) (int, []byte) {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rdr = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, baseURL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, raw
}

func TestHTTP_Health(t *testing.T) {
	ts, _ := seededServer(t)
	st, body := doReq(t, ts.URL, "GET", "/health", "", nil)
	if st != http.StatusOK || string(body) != "ok" {
		t.Fatalf("health: %d %q", st, string(body))
	}
}

func TestHTTP_GetDog(t *testing.T) {
	ts, svc := seededServer(t)
	seedBiscuit(t, svc)

	st, body := doReq(t, ts.URL, "GET", "/dogs/doodle-rock-rescue-biscuit", "", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", st, string(body))
	}

	var got map[string]any
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got["dog_name"] != "Biscuit" || got["status"] != "Available" {
		t.Fatalf("unexpected body: %v", got)
	}
	if _, ok := got["fit_score"]; !ok {
		t.Fatal("response must carry the personalized fit_score")
	}

	st, _ = doReq(t, ts.URL, "GET", "/dogs/ghost", "", nil)
	if st != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown dog, got %d", st)
	}
}

func TestHTTP_ListDogs(t *testing.T) {
	ts, svc := seededServer(t)
	seedBiscuit(t, svc)

	inactive := dogs.Dog{
		DogID: "drr-gone", DogName: "Gone", RescueName: "Doodle Rock Rescue",
		Status: dogs.StatusAdopted, IsActive: false,
	}
	if _, _, err := svc.SaveDog(t.Context(), inactive); err != nil {
		t.Fatalf("seed inactive: %v", err)
	}

	st, body := doReq(t, ts.URL, "GET", "/dogs", "", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200, got %d", st)
	}
	var list []map[string]any
	if err := json.Unmarshal(body, &list); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("default listing must exclude inactive dogs, got %d", len(list))
	}

	st, body = doReq(t, ts.URL, "GET", "/dogs?include_inactive=true", "", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200, got %d", st)
	}
	if err := json.Unmarshal(body, &list); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("include_inactive should return both, got %d", len(list))
	}

	st, body = doReq(t, ts.URL, "GET", "/dogs?status=available", "", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200, got %d", st)
	}
	if err := json.Unmarshal(body, &list); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(list) != 1 || list[0]["dog_id"] != "doodle-rock-rescue-biscuit" {
		t.Fatalf("status filter wrong: %v", list)
	}
}

func TestHTTP_Timeline(t *testing.T) {
	ts, svc := seededServer(t)
	d := seedBiscuit(t, svc)

	d.Status = dogs.StatusPending
	if _, _, err := svc.SaveDog(t.Context(), d); err != nil {
		t.Fatalf("update: %v", err)
	}

	st, body := doReq(t, ts.URL, "GET", "/dogs/"+d.DogID+"/events", "", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", st, string(body))
	}
	var evs []map[string]any
	if err := json.Unmarshal(body, &evs); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(evs) != 2 {
		t.Fatalf("expected first_seen + status_change, got %d", len(evs))
	}
	if evs[0]["event_type"] != string(events.EventTypeFirstSeen) {
		t.Fatalf("timeline must be oldest first: %v", evs[0])
	}

	st, _ = doReq(t, ts.URL, "GET", "/dogs/ghost/events", "", nil)
	if st != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown dog, got %d", st)
	}
}

func TestHTTP_RecentEvents(t *testing.T) {
	ts, svc := seededServer(t)
	d := seedBiscuit(t, svc)

	d.Status = dogs.StatusPending
	if _, _, err := svc.SaveDog(t.Context(), d); err != nil {
		t.Fatalf("update: %v", err)
	}

	st, body := doReq(t, ts.URL, "GET", "/events/recent?limit=1", "", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200, got %d", st)
	}
	var evs []map[string]any
	if err := json.Unmarshal(body, &evs); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(evs) != 1 || evs[0]["event_type"] != string(events.EventTypeStatusChange) {
		t.Fatalf("recent must be newest first and honor limit: %v", evs)
	}

	st, _ = doReq(t, ts.URL, "GET", "/events/recent?limit=abc", "", nil)
	if st != http.StatusBadRequest {
		t.Fatalf("expected 400 for a bad limit, got %d", st)
	}
}

func TestHTTP_AppendManualEvent(t *testing.T) {
	ts, svc := seededServer(t)
	d := seedBiscuit(t, svc)

	st, body := doReq(t, ts.URL, "POST", "/dogs/"+d.DogID+"/events", "", map[string]any{
		"event_type":   "fb_post",
		"post_url":     "https://facebook.com/post/1",
		"post_summary": "Biscuit at the adoption fair!",
	})
	if st != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", st, string(body))
	}

	st, _ = doReq(t, ts.URL, "POST", "/dogs/"+d.DogID+"/events", "", map[string]any{
		"event_type": "status_change",
	})
	if st != http.StatusBadRequest {
		t.Fatalf("pipeline event types must be rejected, got %d", st)
	}

	evs, err := svc.GetDogEvents(t.Context(), d.DogID)
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	if len(evs) != 2 {
		t.Fatalf("expected first_seen + fb_post, got %d", len(evs))
	}
}

// Un PUT de preferencias con un subset de la tabla de scoring solo pisa
// los factores enviados; el resto conserva su valor vigente.
func TestHTTP_PartialScoringPrefsKeepDefaults(t *testing.T) {
	ts, svc := seededServer(t)
	d := seedBiscuit(t, svc)

	fetchScore := func() int {
		t.Helper()
		st, body := doReq(t, ts.URL, "GET", "/dogs/"+d.DogID, "maria", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200, got %d body=%s", st, string(body))
		}
		var dog map[string]any
		if err := json.Unmarshal(body, &dog); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		raw, ok := dog["fit_score"].(float64)
		if !ok {
			t.Fatalf("missing fit_score: %v", dog)
		}
		return int(raw)
	}

	before := fetchScore()

	// subir un solo factor
	st, body := doReq(t, ts.URL, "PUT", "/preferences", "maria", map[string]any{
		"scoring": map[string]any{"good_with_dogs": 5},
	})
	if st != http.StatusOK {
		t.Fatalf("expected 200 saving prefs, got %d body=%s", st, string(body))
	}

	// good_with_dogs pasó de +2 a +5; todo lo demás sigue sumando igual
	if got := fetchScore(); got != before+3 {
		t.Fatalf("expected %d after bumping good_with_dogs, got %d (before=%d)", before+3, got, before)
	}

	st, body = doReq(t, ts.URL, "GET", "/preferences", "maria", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200, got %d", st)
	}
	var prefs struct {
		Scoring       scoring.Config `json:"scoring"`
		DefaultFilter string         `json:"default_filter"`
	}
	if err := json.Unmarshal(body, &prefs); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if prefs.Scoring.GoodWithDogs != 5 {
		t.Fatalf("good_with_dogs not updated: %+v", prefs.Scoring)
	}
	def := scoring.DefaultConfig()
	if prefs.Scoring.Weight40Plus != def.Weight40Plus || prefs.Scoring.SheddingNone != def.SheddingNone {
		t.Fatalf("untouched scoring factors lost their defaults: %+v", prefs.Scoring)
	}
	if prefs.DefaultFilter != "available" {
		t.Fatalf("untouched prefs fields lost their defaults: %q", prefs.DefaultFilter)
	}
}

func TestHTTP_UserStateAndPreferences(t *testing.T) {
	ts, svc := seededServer(t)
	d := seedBiscuit(t, svc)

	// marcar favorito con un ajuste manual
	st, body := doReq(t, ts.URL, "PUT", "/dogs/"+d.DogID+"/state", "maria", map[string]any{
		"favorite":  true,
		"notes":     "met him at the fair",
		"overrides": map[string]any{"manual_score_adjustment": 2},
	})
	if st != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", st, string(body))
	}

	var state map[string]any
	if err := json.Unmarshal(body, &state); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if state["favorite"] != true {
		t.Fatalf("favorite not set: %v", state)
	}
	if _, ok := state["computed_fit_score"]; !ok {
		t.Fatal("state must carry the recomputed score")
	}

	// otro usuario no ve nada de eso
	st, body = doReq(t, ts.URL, "GET", "/dogs/"+d.DogID, "pedro", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200, got %d", st)
	}
	var dog map[string]any
	if err := json.Unmarshal(body, &dog); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if dog["favorite"] == true {
		t.Fatal("favorite leaked across users")
	}

	// preferencias: default y update
	st, body = doReq(t, ts.URL, "GET", "/preferences", "maria", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200, got %d", st)
	}
	var prefs map[string]any
	if err := json.Unmarshal(body, &prefs); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if prefs["default_filter"] != "available" {
		t.Fatalf("unexpected default prefs: %v", prefs)
	}

	prefs["default_sort"] = "name-asc"
	st, _ = doReq(t, ts.URL, "PUT", "/preferences", "maria", prefs)
	if st != http.StatusOK {
		t.Fatalf("expected 200 saving prefs, got %d", st)
	}

	st, body = doReq(t, ts.URL, "GET", "/preferences", "maria", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200, got %d", st)
	}
	if err := json.Unmarshal(body, &prefs); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if prefs["default_sort"] != "name-asc" {
		t.Fatalf("prefs not persisted: %v", prefs)
	}
}
