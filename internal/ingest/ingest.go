// Package ingest consume lotes de perros scrapeados (dicts legacy en JSON)
// y los reconcilia contra la base a través del DAL.
package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"rescue-dog-tracker/internal/config"
	"rescue-dog-tracker/internal/dal"
	"rescue-dog-tracker/internal/domain/dogs"
	"rescue-dog-tracker/internal/domain/events"
	"rescue-dog-tracker/internal/platform/logger"
)

// Batch es la salida de un scraper para un rescate: el nombre del rescate
// y sus perros como dicts legacy (claves con alias viejos incluidas).
type Batch struct {
	RescueName string           `json:"rescue_name"`
	Dogs       []map[string]any `json:"dogs"`
}

// Summary acumula el resultado de una corrida.
type Summary struct {
	Total   int `json:"total"`
	New     int `json:"new"`
	Changed int `json:"changed"`
	Removed int `json:"removed"`
	Errors  int `json:"errors"`
}

type Runner struct {
	dal *dal.DAL
	cfg config.Config
	log logger.Logger
	now func() time.Time
}

func NewRunner(d *dal.DAL, cfg config.Config, log logger.Logger) *Runner {
	return &Runner{
		dal: d,
		cfg: cfg,
		log: log.With(map[string]any{"component": "ingest"}),
		now: time.Now,
	}
}

// RunFile procesa un archivo de scrape. Acepta un Batch suelto o una
// lista de Batches.
func (r *Runner) RunFile(ctx context.Context, path string) (Summary, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Summary{}, fmt.Errorf("read scrape file: %w", err)
	}

	batches, err := decodeBatches(raw)
	if err != nil {
		return Summary{}, fmt.Errorf("decode scrape file %s: %w", path, err)
	}

	return r.Run(ctx, batches)
}

// Run reconcilia cada batch: guarda cada perro de forma aislada (un perro
// malo no frena el lote) y marca inactivos los que desaparecieron del sitio.
func (r *Runner) Run(ctx context.Context, batches []Batch) (Summary, error) {
	var sum Summary

	for _, batch := range batches {
		if batch.RescueName == "" {
			r.log.Warn("batch without rescue name, skipping", nil)
			sum.Errors++
			continue
		}

		seen := make([]string, 0, len(batch.Dogs))

		for _, raw := range batch.Dogs {
			sum.Total++

			d := dogs.FromLegacy(raw)
			if d.RescueName == "" {
				d.RescueName = batch.RescueName
			}
			d.IsActive = true
			d.LastScrapedAt = r.now()

			score := r.dal.ComputeFitScore(d, nil, nil)
			d.BaseFitScore = &score

			saved, evs, err := r.dal.SaveDog(ctx, d)
			if err != nil {
				r.log.Error("save failed", map[string]any{
					"dog_id": d.DogID,
					"dog":    d.DogName,
					"err":    err.Error(),
				})
				sum.Errors++
				continue
			}

			seen = append(seen, saved.DogID)

			if r.cfg.OnWatchList(saved.DogName) {
				r.log.Warn("watch list dog seen", map[string]any{
					"dog":    saved.DogName,
					"status": string(saved.Status),
				})
			}

			switch classify(evs) {
			case events.EventTypeFirstSeen:
				sum.New++
			case events.EventTypeStatusChange, events.EventTypeWebsiteUpdate:
				sum.Changed++
			}
		}

		removed, err := r.dal.MarkDogsInactive(ctx, batch.RescueName, seen)
		sum.Removed += len(removed)
		if err != nil {
			r.log.Error("mark inactive had failures", map[string]any{
				"rescue": batch.RescueName,
				"err":    err.Error(),
			})
			sum.Errors++
		}
	}

	r.log.Info("ingest finished", map[string]any{
		"total":   sum.Total,
		"new":     sum.New,
		"changed": sum.Changed,
		"removed": sum.Removed,
		"errors":  sum.Errors,
	})

	return sum, nil
}

func classify(evs []events.DogEvent) events.EventType {
	for _, e := range evs {
		if e.Type == events.EventTypeFirstSeen {
			return events.EventTypeFirstSeen
		}
	}
	if len(evs) > 0 {
		return evs[0].Type
	}
	return ""
}

func decodeBatches(raw []byte) ([]Batch, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var batches []Batch
		if err := json.Unmarshal(trimmed, &batches); err != nil {
			return nil, err
		}
		return batches, nil
	}

	var single Batch
	if err := json.Unmarshal(trimmed, &single); err != nil {
		return nil, err
	}
	return []Batch{single}, nil
}
