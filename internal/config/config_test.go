package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":8080" || cfg.DBPath != "dogs.db" || cfg.DefaultUserID != "default_user" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Notifications.MinFitScore != 5 {
		t.Fatalf("notification defaults missing: %+v", cfg.Notifications)
	}
}

func TestLoad_YAMLFile(t *testing.T) {
	raw := `
addr: ":9090"
db_path: /tmp/test-dogs.db
watch_list:
  - Drizzle
  - Kru
rescues:
  doodle_rock:
    name: Doodle Rock Rescue
    location: Dallas, TX
    urls:
      available: https://doodlerockrescue.org/adopt/available-dogs/
notifications:
  enabled: true
  min_fit_score: 7
`
	path := filepath.Join(t.TempDir(), "tracker.yaml")
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":9090" || cfg.DBPath != "/tmp/test-dogs.db" {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	r, ok := cfg.Rescues["doodle_rock"]
	if !ok || r.Name != "Doodle Rock Rescue" {
		t.Fatalf("rescues not parsed: %+v", cfg.Rescues)
	}
	if r.URLs["available"] == "" {
		t.Fatalf("rescue urls not parsed: %+v", r.URLs)
	}
	if !cfg.Notifications.Enabled || cfg.Notifications.MinFitScore != 7 {
		t.Fatalf("notifications not parsed: %+v", cfg.Notifications)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("TRACKER_ADDR", ":7070")
	t.Setenv("TRACKER_DB_PATH", "/tmp/env-dogs.db")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":7070" || cfg.DBPath != "/tmp/env-dogs.db" {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestLoad_RescueWithoutName(t *testing.T) {
	raw := "rescues:\n  bad: {location: nowhere}\n"
	path := filepath.Join(t.TempDir(), "tracker.yaml")
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error for unnamed rescue")
	}
}

func TestOnWatchList(t *testing.T) {
	cfg := Default()
	cfg.WatchList = []string{"Drizzle", "Freddy Faz"}

	if !cfg.OnWatchList("drizzle") {
		t.Fatal("match should be case-insensitive")
	}
	if !cfg.OnWatchList("  Freddy Faz  ") {
		t.Fatal("match should trim whitespace")
	}
	if cfg.OnWatchList("Biscuit") {
		t.Fatal("unlisted name matched")
	}
}
