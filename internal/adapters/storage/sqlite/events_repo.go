package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"rescue-dog-tracker/internal/domain/events"
)

type EventsRepo struct {
	db *sql.DB
}

func NewEventsRepo(db *sql.DB) *EventsRepo {
	return &EventsRepo{db: db}
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// insertEvent es compartido con DogsRepo.Save, que inserta eventos
// dentro de su propia transacción.
func insertEvent(ctx context.Context, ex execer, e events.DogEvent) error {
	var detailsJSON any
	if len(e.Details) > 0 {
		b, err := json.Marshal(e.Details)
		if err != nil {
			return fmt.Errorf("marshal details: %w", err)
		}
		detailsJSON = string(b)
	}

	_, err := ex.ExecContext(ctx, `
		INSERT INTO dog_events (
			event_id, dog_id, event_type, timestamp, source,
			summary, field_changed, old_value, new_value,
			details_json, created_by
		) VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		e.EventID, e.DogID, string(e.Type), fmtTime(e.Timestamp), string(e.Source),
		e.Summary, e.FieldChanged, e.OldValue, e.NewValue,
		detailsJSON, e.CreatedBy,
	)
	return err
}

func (r *EventsRepo) Append(ctx context.Context, e events.DogEvent) error {
	if err := insertEvent(ctx, r.db, e); err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	return nil
}

const eventColumns = `
	seq, event_id, dog_id, event_type, timestamp, source,
	summary, field_changed, old_value, new_value,
	details_json, created_by
`

func (r *EventsRepo) ListByDog(ctx context.Context, dogID string) ([]events.DogEvent, error) {
	return r.queryEvents(ctx, `
		SELECT `+eventColumns+` FROM dog_events
		WHERE dog_id = ?
		ORDER BY timestamp ASC, seq ASC`, dogID)
}

func (r *EventsRepo) Recent(ctx context.Context, limit int) ([]events.DogEvent, error) {
	return r.queryEvents(ctx, `
		SELECT `+eventColumns+` FROM dog_events
		ORDER BY timestamp DESC, seq DESC
		LIMIT ?`, limit)
}

func (r *EventsRepo) queryEvents(ctx context.Context, query string, args ...any) ([]events.DogEvent, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	out := make([]events.DogEvent, 0)
	for rows.Next() {
		var e events.DogEvent
		var eventType, source, ts string
		var detailsJSON sql.NullString

		err := rows.Scan(
			&e.Seq, &e.EventID, &e.DogID, &eventType, &ts, &source,
			&e.Summary, &e.FieldChanged, &e.OldValue, &e.NewValue,
			&detailsJSON, &e.CreatedBy,
		)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}

		e.Type = events.EventType(eventType)
		e.Source = events.Source(source)
		e.Timestamp = parseTime(ts)

		if detailsJSON.Valid && detailsJSON.String != "" {
			if err := json.Unmarshal([]byte(detailsJSON.String), &e.Details); err != nil {
				return nil, fmt.Errorf("unmarshal event details: %w", err)
			}
		}

		out = append(out, e)
	}
	return out, rows.Err()
}
