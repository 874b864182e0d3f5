package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"rescue-dog-tracker/internal/domain/scoring"
	"rescue-dog-tracker/internal/domain/users"
)

type UserStateRepo struct {
	db *sql.DB
}

func NewUserStateRepo(db *sql.DB) *UserStateRepo {
	return &UserStateRepo{db: db}
}

const stateColumns = `
	user_id, dog_id, overrides_json,
	favorite, hidden, applied, contacted_rescue,
	notes, computed_fit_score,
	created_at, updated_at, favorited_at
`

func (r *UserStateRepo) Get(ctx context.Context, userID, dogID string) (users.UserDogState, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+stateColumns+` FROM user_dog_state WHERE user_id = ? AND dog_id = ?`,
		userID, dogID)

	st, err := scanState(row)
	if err == sql.ErrNoRows {
		return users.UserDogState{}, users.ErrNotFound
	}
	if err != nil {
		return users.UserDogState{}, fmt.Errorf("get user dog state: %w", err)
	}
	return st, nil
}

func (r *UserStateRepo) Upsert(ctx context.Context, st users.UserDogState) error {
	var overridesJSON any
	if st.Overrides.HasAny() {
		b, err := json.Marshal(st.Overrides)
		if err != nil {
			return fmt.Errorf("marshal overrides: %w", err)
		}
		overridesJSON = string(b)
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO user_dog_state (`+stateColumns+`)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?)
		ON CONFLICT(user_id, dog_id) DO UPDATE SET
			overrides_json = excluded.overrides_json,
			favorite = excluded.favorite,
			hidden = excluded.hidden,
			applied = excluded.applied,
			contacted_rescue = excluded.contacted_rescue,
			notes = excluded.notes,
			computed_fit_score = excluded.computed_fit_score,
			updated_at = excluded.updated_at,
			favorited_at = excluded.favorited_at
	`,
		st.UserID, st.DogID, overridesJSON,
		boolToInt(st.Favorite), boolToInt(st.Hidden),
		boolToInt(st.Applied), boolToInt(st.ContactedRescue),
		st.Notes, nullableInt(st.ComputedFitScore),
		fmtTime(st.CreatedAt), fmtTime(st.UpdatedAt), fmtTime(st.FavoritedAt),
	)
	if err != nil {
		return fmt.Errorf("upsert user dog state: %w", err)
	}
	return nil
}

func (r *UserStateRepo) ListByUser(ctx context.Context, userID string) ([]users.UserDogState, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+stateColumns+` FROM user_dog_state WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("list user dog states: %w", err)
	}
	defer rows.Close()

	out := make([]users.UserDogState, 0)
	for rows.Next() {
		st, err := scanState(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user dog state: %w", err)
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

func scanState(row rowScanner) (users.UserDogState, error) {
	var st users.UserDogState
	var (
		overridesJSON, notes               sql.NullString
		favorite, hidden, applied, contact int
		fitScore                           sql.NullInt64
		createdAt, updatedAt, favoritedAt  sql.NullString
	)

	err := row.Scan(
		&st.UserID, &st.DogID, &overridesJSON,
		&favorite, &hidden, &applied, &contact,
		&notes, &fitScore,
		&createdAt, &updatedAt, &favoritedAt,
	)
	if err != nil {
		return users.UserDogState{}, err
	}

	if overridesJSON.Valid && overridesJSON.String != "" {
		var ov scoring.Overrides
		if err := json.Unmarshal([]byte(overridesJSON.String), &ov); err != nil {
			return users.UserDogState{}, fmt.Errorf("unmarshal overrides: %w", err)
		}
		st.Overrides = ov
	}

	st.Favorite = favorite != 0
	st.Hidden = hidden != 0
	st.Applied = applied != 0
	st.ContactedRescue = contact != 0
	st.Notes = notes.String

	if fitScore.Valid {
		v := int(fitScore.Int64)
		st.ComputedFitScore = &v
	}

	st.CreatedAt = parseTime(createdAt.String)
	st.UpdatedAt = parseTime(updatedAt.String)
	st.FavoritedAt = parseTime(favoritedAt.String)

	return st, nil
}

type UserPrefsRepo struct {
	db *sql.DB
}

func NewUserPrefsRepo(db *sql.DB) *UserPrefsRepo {
	return &UserPrefsRepo{db: db}
}

func (r *UserPrefsRepo) Get(ctx context.Context, userID string) (users.UserPreferences, error) {
	var blob string
	err := r.db.QueryRowContext(ctx,
		`SELECT prefs_json FROM user_preferences WHERE user_id = ?`, userID).Scan(&blob)
	if err == sql.ErrNoRows {
		return users.UserPreferences{}, users.ErrNotFound
	}
	if err != nil {
		return users.UserPreferences{}, fmt.Errorf("get user preferences: %w", err)
	}

	var prefs users.UserPreferences
	if err := json.Unmarshal([]byte(blob), &prefs); err != nil {
		return users.UserPreferences{}, fmt.Errorf("unmarshal user preferences: %w", err)
	}
	prefs.UserID = userID
	return prefs, nil
}

func (r *UserPrefsRepo) Upsert(ctx context.Context, prefs users.UserPreferences) error {
	b, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("marshal user preferences: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO user_preferences (user_id, prefs_json) VALUES (?, ?)
		ON CONFLICT(user_id) DO UPDATE SET prefs_json = excluded.prefs_json`,
		prefs.UserID, string(b))
	if err != nil {
		return fmt.Errorf("upsert user preferences: %w", err)
	}
	return nil
}
