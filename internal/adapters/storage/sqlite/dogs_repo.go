package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"rescue-dog-tracker/internal/domain/dogs"
	"rescue-dog-tracker/internal/domain/events"
)

type DogsRepo struct {
	db *sql.DB
}

func NewDogsRepo(db *sql.DB) *DogsRepo {
	return &DogsRepo{db: db}
}

const dogColumns = `
	dog_id, dog_name, rescue_name, source_url, platform,
	status, is_active,
	weight, age_years, age_range, sex, breed, location,
	good_with_dogs, good_with_cats, good_with_kids,
	shedding, energy_level, special_needs, special_needs_notes,
	adoption_fee, adoption_radius_miles, adoption_requirements_json,
	primary_image_url, images_json, rescue_meta_json,
	fit_score,
	date_first_seen, date_last_updated, date_status_changed, date_last_scraped
`

func (r *DogsRepo) GetByID(ctx context.Context, dogID string) (dogs.Dog, error) {
	dogID = strings.TrimSpace(dogID)
	if dogID == "" {
		return dogs.Dog{}, dogs.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx,
		`SELECT `+dogColumns+` FROM dogs WHERE dog_id = ?`, dogID)

	d, err := scanDog(row)
	if err == sql.ErrNoRows {
		return dogs.Dog{}, dogs.ErrNotFound
	}
	if err != nil {
		return dogs.Dog{}, fmt.Errorf("get dog: %w", err)
	}
	return d, nil
}

func (r *DogsRepo) List(ctx context.Context, includeInactive bool) ([]dogs.Dog, error) {
	q := `SELECT ` + dogColumns + ` FROM dogs`
	if !includeInactive {
		q += ` WHERE is_active = 1`
	}
	q += ` ORDER BY fit_score DESC, dog_name ASC`

	return r.queryDogs(ctx, q)
}

func (r *DogsRepo) ListByRescue(ctx context.Context, rescueName string, includeInactive bool) ([]dogs.Dog, error) {
	q := `SELECT ` + dogColumns + ` FROM dogs WHERE rescue_name = ?`
	if !includeInactive {
		q += ` AND is_active = 1`
	}
	q += ` ORDER BY fit_score DESC, dog_name ASC`

	return r.queryDogs(ctx, q, rescueName)
}

func (r *DogsRepo) ListByStatus(ctx context.Context, status dogs.DogStatus) ([]dogs.Dog, error) {
	q := `SELECT ` + dogColumns + ` FROM dogs
		WHERE status = ? AND is_active = 1
		ORDER BY fit_score DESC, dog_name ASC`

	return r.queryDogs(ctx, q, string(status))
}

// Save upsertea el perro e inserta sus eventos en UNA transacción.
// Si algo falla, ni el perro ni los eventos quedan visibles.
func (r *DogsRepo) Save(ctx context.Context, d dogs.Dog, evs []events.DogEvent) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	imagesJSON, err := marshalOrNil(d.Images, len(d.Images) > 0)
	if err != nil {
		return fmt.Errorf("marshal images: %w", err)
	}
	metaJSON, err := marshalOrNil(d.RescueMeta, true)
	if err != nil {
		return fmt.Errorf("marshal rescue meta: %w", err)
	}
	reqsJSON, err := marshalOrNil(d.AdoptionRequirements, len(d.AdoptionRequirements) > 0)
	if err != nil {
		return fmt.Errorf("marshal adoption requirements: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO dogs (`+dogColumns+`)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
		ON CONFLICT(dog_id) DO UPDATE SET
			dog_name = excluded.dog_name,
			rescue_name = excluded.rescue_name,
			source_url = excluded.source_url,
			platform = excluded.platform,
			status = excluded.status,
			is_active = excluded.is_active,
			weight = excluded.weight,
			age_years = excluded.age_years,
			age_range = excluded.age_range,
			sex = excluded.sex,
			breed = excluded.breed,
			location = excluded.location,
			good_with_dogs = excluded.good_with_dogs,
			good_with_cats = excluded.good_with_cats,
			good_with_kids = excluded.good_with_kids,
			shedding = excluded.shedding,
			energy_level = excluded.energy_level,
			special_needs = excluded.special_needs,
			special_needs_notes = excluded.special_needs_notes,
			adoption_fee = excluded.adoption_fee,
			adoption_radius_miles = excluded.adoption_radius_miles,
			adoption_requirements_json = excluded.adoption_requirements_json,
			primary_image_url = excluded.primary_image_url,
			images_json = excluded.images_json,
			rescue_meta_json = excluded.rescue_meta_json,
			fit_score = excluded.fit_score,
			date_last_updated = excluded.date_last_updated,
			date_status_changed = excluded.date_status_changed,
			date_last_scraped = excluded.date_last_scraped
	`,
		d.DogID, d.DogName, d.RescueName, d.SourceURL, d.Platform,
		string(d.Status), boolToInt(d.IsActive),
		nullableInt(d.WeightLbs), nullableFloat(d.AgeYears), d.AgeDisplay, d.Sex, d.Breed, d.Location,
		d.GoodWithDogs, d.GoodWithCats, d.GoodWithKids,
		d.Shedding, d.EnergyLevel, boolToInt(d.SpecialNeeds), d.SpecialNeedsNotes,
		d.AdoptionFee, nullableInt(d.AdoptionRadiusMiles), reqsJSON,
		d.PrimaryImageURL, imagesJSON, metaJSON,
		nullableInt(d.BaseFitScore),
		fmtTime(d.CreatedAt), fmtTime(d.UpdatedAt), fmtTime(d.StatusChangedAt), fmtTime(d.LastScrapedAt),
	)
	if err != nil {
		return fmt.Errorf("upsert dog %s: %w", d.DogID, err)
	}

	for _, e := range evs {
		if err := insertEvent(ctx, tx, e); err != nil {
			return fmt.Errorf("insert event %s: %w", e.EventID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save tx: %w", err)
	}
	return nil
}

func (r *DogsRepo) queryDogs(ctx context.Context, query string, args ...any) ([]dogs.Dog, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query dogs: %w", err)
	}
	defer rows.Close()

	out := make([]dogs.Dog, 0)
	for rows.Next() {
		d, err := scanDog(rows)
		if err != nil {
			return nil, fmt.Errorf("scan dog: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDog(row rowScanner) (dogs.Dog, error) {
	var d dogs.Dog
	var (
		status                                      string
		isActive, specialNeeds                      int
		weight, radiusMiles, fitScore               sql.NullInt64
		ageYears                                    sql.NullFloat64
		reqsJSON, imagesJSON, metaJSON              sql.NullString
		firstSeen, lastUpdated, statChanged, lastScraped sql.NullString
	)

	err := row.Scan(
		&d.DogID, &d.DogName, &d.RescueName, &d.SourceURL, &d.Platform,
		&status, &isActive,
		&weight, &ageYears, &d.AgeDisplay, &d.Sex, &d.Breed, &d.Location,
		&d.GoodWithDogs, &d.GoodWithCats, &d.GoodWithKids,
		&d.Shedding, &d.EnergyLevel, &specialNeeds, &d.SpecialNeedsNotes,
		&d.AdoptionFee, &radiusMiles, &reqsJSON,
		&d.PrimaryImageURL, &imagesJSON, &metaJSON,
		&fitScore,
		&firstSeen, &lastUpdated, &statChanged, &lastScraped,
	)
	if err != nil {
		return dogs.Dog{}, err
	}

	d.Status = dogs.DogStatus(status)
	d.IsActive = isActive != 0
	d.SpecialNeeds = specialNeeds != 0

	if weight.Valid {
		v := int(weight.Int64)
		d.WeightLbs = &v
	}
	if ageYears.Valid {
		v := ageYears.Float64
		d.AgeYears = &v
	}
	if radiusMiles.Valid {
		v := int(radiusMiles.Int64)
		d.AdoptionRadiusMiles = &v
	}
	if fitScore.Valid {
		v := int(fitScore.Int64)
		d.BaseFitScore = &v
	}

	if reqsJSON.Valid && reqsJSON.String != "" {
		if err := json.Unmarshal([]byte(reqsJSON.String), &d.AdoptionRequirements); err != nil {
			return dogs.Dog{}, fmt.Errorf("unmarshal adoption requirements: %w", err)
		}
	}
	if imagesJSON.Valid && imagesJSON.String != "" {
		if err := json.Unmarshal([]byte(imagesJSON.String), &d.Images); err != nil {
			return dogs.Dog{}, fmt.Errorf("unmarshal images: %w", err)
		}
	}
	if metaJSON.Valid && metaJSON.String != "" {
		if err := json.Unmarshal([]byte(metaJSON.String), &d.RescueMeta); err != nil {
			return dogs.Dog{}, fmt.Errorf("unmarshal rescue meta: %w", err)
		}
	}

	d.CreatedAt = parseTime(firstSeen.String)
	d.UpdatedAt = parseTime(lastUpdated.String)
	d.StatusChangedAt = parseTime(statChanged.String)
	d.LastScrapedAt = parseTime(lastScraped.String)

	return d, nil
}

func marshalOrNil(v any, present bool) (any, error) {
	if !present {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullableInt(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullableFloat(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}
