// Package config carga la configuración del tracker desde un archivo
// YAML con overrides por variables de entorno.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Rescue describe una organización de rescate rastreada.
type Rescue struct {
	Name     string `yaml:"name"`
	Location string `yaml:"location"`

	// URLs por sección del sitio; las claves dependen del rescate
	// (available, pending, upcoming, alumni, animals).
	URLs map[string]string `yaml:"urls"`
}

// Notifications son los umbrales de alerta por email. El tracker no envía
// mails; expone esta config al notifier externo.
type Notifications struct {
	Enabled               bool   `yaml:"enabled"`
	SMTPServer            string `yaml:"smtp_server"`
	SMTPPort              int    `yaml:"smtp_port"`
	SenderEmail           string `yaml:"sender_email"`
	RecipientEmail        string `yaml:"recipient_email"`
	NotifyOnNewDogs       bool   `yaml:"notify_on_new_dogs"`
	NotifyOnStatusChanges bool   `yaml:"notify_on_status_changes"`
	GoodFitOnly           bool   `yaml:"good_fit_only"`
	MinFitScore           int    `yaml:"min_fit_score"`
}

type Config struct {
	// Addr es la dirección del servidor HTTP, p.ej. ":8080".
	Addr string `yaml:"addr"`

	// DBPath es la ruta del archivo SQLite. Vacío = adapters en memoria.
	DBPath string `yaml:"db_path"`

	DefaultUserID string `yaml:"default_user_id"`

	Rescues map[string]Rescue `yaml:"rescues"`

	// Nombres de perros a seguir de cerca (variantes de tipeo incluidas).
	WatchList []string `yaml:"watch_list"`

	Notifications Notifications `yaml:"notifications"`
}

func Default() Config {
	return Config{
		Addr:          ":8080",
		DBPath:        "dogs.db",
		DefaultUserID: "default_user",
		Notifications: Notifications{
			SMTPServer:            "smtp.gmail.com",
			SMTPPort:              587,
			NotifyOnNewDogs:       true,
			NotifyOnStatusChanges: true,
			GoodFitOnly:           true,
			MinFitScore:           5,
		},
	}
}

// Load lee el archivo YAML (si path no es vacío) sobre los defaults y
// después aplica los overrides de entorno.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Addr = getenv("TRACKER_ADDR", c.Addr)
	c.DBPath = getenv("TRACKER_DB_PATH", c.DBPath)
	c.DefaultUserID = getenv("TRACKER_DEFAULT_USER", c.DefaultUserID)
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("config: addr is required")
	}
	if strings.TrimSpace(c.DefaultUserID) == "" {
		return fmt.Errorf("config: default_user_id is required")
	}
	for key, r := range c.Rescues {
		if strings.TrimSpace(r.Name) == "" {
			return fmt.Errorf("config: rescue %q has no name", key)
		}
	}
	return nil
}

// OnWatchList compara por nombre, sin case.
func (c *Config) OnWatchList(dogName string) bool {
	for _, w := range c.WatchList {
		if strings.EqualFold(strings.TrimSpace(w), strings.TrimSpace(dogName)) {
			return true
		}
	}
	return false
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
