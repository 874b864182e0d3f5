package dal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"rescue-dog-tracker/internal/adapters/storage/memory"
	"rescue-dog-tracker/internal/domain/dogs"
	"rescue-dog-tracker/internal/domain/events"
	"rescue-dog-tracker/internal/domain/scoring"
	"rescue-dog-tracker/internal/domain/users"
	"rescue-dog-tracker/internal/platform/logger"
)

var (
	// ErrInvalidDog: el perro no tiene dog_id o dog_name. No se escribe nada.
	ErrInvalidDog = errors.New("invalid dog: dog_id and dog_name are required")
)

// DAL es la única puerta de entrada a los datos. Todo lo que lee o escribe
// perros, eventos o estado de usuario pasa por acá; nadie toca los
// repositorios por afuera.
//
// Responsabilidades:
//   - CRUD de perros, con detección de cambios y eventos como efecto del save
//   - Timeline de eventos (append-only)
//   - Estado y preferencias por usuario
//   - Cómputo de fit scores
type DAL struct {
	dogRepo   dogs.Repository
	eventRepo events.Repository
	stateRepo users.StateRepository
	prefRepo  users.PreferencesRepository

	log logger.Logger
	now func() time.Time
}

func New(
	dogRepo dogs.Repository,
	eventRepo events.Repository,
	stateRepo users.StateRepository,
	prefRepo users.PreferencesRepository,
	log logger.Logger,
) *DAL {
	return &DAL{
		dogRepo:   dogRepo,
		eventRepo: eventRepo,
		stateRepo: stateRepo,
		prefRepo:  prefRepo,
		log:       log,
		now:       time.Now,
	}
}

// NewInMemory arma un DAL sobre los adapters en memoria. Para dev y tests.
func NewInMemory(log logger.Logger) *DAL {
	eventRepo := memory.NewEventsRepo()
	return New(
		memory.NewDogsRepo(eventRepo),
		eventRepo,
		memory.NewUserStateRepo(),
		memory.NewUserPrefsRepo(),
		log,
	)
}

// WithClock reemplaza el reloj. Para tests.
func (s *DAL) WithClock(now func() time.Time) *DAL {
	s.now = now
	return s
}

// GetDog busca un perro por ID exacto. dogs.ErrNotFound si no existe.
func (s *DAL) GetDog(ctx context.Context, dogID string) (dogs.Dog, error) {
	dogID = strings.TrimSpace(dogID)
	if dogID == "" {
		return dogs.Dog{}, dogs.ErrNotFound
	}
	return s.dogRepo.GetByID(ctx, dogID)
}

// ListDogs devuelve los perros activos; con includeInactive también los que
// ya no aparecen en los sitios.
func (s *DAL) ListDogs(ctx context.Context, includeInactive bool) ([]dogs.Dog, error) {
	return s.dogRepo.List(ctx, includeInactive)
}

func (s *DAL) ListDogsByRescue(ctx context.Context, rescueName string, includeInactive bool) ([]dogs.Dog, error) {
	return s.dogRepo.ListByRescue(ctx, rescueName, includeInactive)
}

func (s *DAL) ListDogsByStatus(ctx context.Context, status dogs.DogStatus) ([]dogs.Dog, error) {
	return s.dogRepo.ListByStatus(ctx, status)
}

// SaveDog es el pipeline de reconciliación completo:
//
//  1. valida (ErrInvalidDog, sin escritura parcial)
//  2. carga el registro anterior; un error de storage aborta — seguir con un
//     falso "not found" sintetizaría un first_seen espurio
//  3. estampa timestamps (CreatedAt solo en la primera escritura,
//     StatusChangedAt solo si cambió el status)
//  4. detecta cambios y los convierte en eventos tipados
//  5. persiste perro + eventos como una sola transacción
//
// Primera vez de un dog_id: exactamente un evento first_seen.
// Re-save con datos idénticos: cero eventos nuevos.
func (s *DAL) SaveDog(ctx context.Context, d dogs.Dog) (dogs.Dog, []events.DogEvent, error) {
	if strings.TrimSpace(d.DogID) == "" || strings.TrimSpace(d.DogName) == "" {
		return dogs.Dog{}, nil, ErrInvalidDog
	}

	now := s.now()

	var prev *dogs.Dog
	existing, err := s.dogRepo.GetByID(ctx, d.DogID)
	switch {
	case err == nil:
		prev = &existing
	case errors.Is(err, dogs.ErrNotFound):
		// primera aparición
	default:
		return dogs.Dog{}, nil, fmt.Errorf("load previous dog %s: %w", d.DogID, err)
	}

	if prev == nil {
		d.CreatedAt = now
		d.StatusChangedAt = now
	} else {
		d.CreatedAt = prev.CreatedAt // inmutable
		d.StatusChangedAt = prev.StatusChangedAt
		if d.StatusChangedAt.IsZero() {
			d.StatusChangedAt = prev.CreatedAt
		}
	}
	d.UpdatedAt = now

	changes := dogs.DetectChanges(prev, d)
	for _, c := range changes {
		if c.Field == events.FieldStatus {
			d.StatusChangedAt = now
		}
	}

	evs := events.FromChanges(d.Ref(), string(d.Status), d.BaseFitScore, changes, now)

	if err := s.dogRepo.Save(ctx, d, evs); err != nil {
		return dogs.Dog{}, nil, fmt.Errorf("save dog %s: %w", d.DogID, err)
	}

	if len(evs) > 0 {
		s.log.Info("dog saved", map[string]any{
			"dog_id": d.DogID,
			"dog":    d.DogName,
			"events": len(evs),
		})
	}

	return d, evs, nil
}

// MarkDogsInactive marca como adoptados los perros de un rescue que ya no
// aparecen en el scrape actual. Cada perro se escribe en su propia
// transacción: el fallo de uno no frena a los demás.
func (s *DAL) MarkDogsInactive(ctx context.Context, rescueName string, seenDogIDs []string) ([]events.DogEvent, error) {
	active, err := s.dogRepo.ListByRescue(ctx, rescueName, false)
	if err != nil {
		return nil, fmt.Errorf("list active dogs for %s: %w", rescueName, err)
	}

	seen := make(map[string]struct{}, len(seenDogIDs))
	for _, id := range seenDogIDs {
		seen[id] = struct{}{}
	}

	var out []events.DogEvent
	var errs []error

	for _, d := range active {
		if _, ok := seen[d.DogID]; ok {
			continue
		}

		now := s.now()
		ev := events.NewStatusChange(d.Ref(), string(d.Status), string(dogs.StatusAdopted), now)

		d.Status = dogs.StatusAdopted
		d.IsActive = false
		d.StatusChangedAt = now
		d.UpdatedAt = now

		if err := s.dogRepo.Save(ctx, d, []events.DogEvent{ev}); err != nil {
			s.log.Error("mark inactive failed", map[string]any{"dog_id": d.DogID, "err": err.Error()})
			errs = append(errs, fmt.Errorf("mark %s inactive: %w", d.DogID, err))
			continue
		}

		s.log.Info("likely adopted", map[string]any{"dog_id": d.DogID, "dog": d.DogName})
		out = append(out, ev)
	}

	return out, errors.Join(errs...)
}

// GetDogEvents devuelve el timeline de un perro, cronológico (el más viejo primero).
func (s *DAL) GetDogEvents(ctx context.Context, dogID string) ([]events.DogEvent, error) {
	return s.eventRepo.ListByDog(ctx, dogID)
}

// GetRecentEvents devuelve los últimos eventos de todos los perros (el más nuevo primero).
func (s *DAL) GetRecentEvents(ctx context.Context, limit int) ([]events.DogEvent, error) {
	if limit <= 0 {
		limit = 100
	}
	return s.eventRepo.Recent(ctx, limit)
}

// AppendDogEvent agrega un evento de origen externo (fb_post, admin_edit,
// image_added) al timeline. Los eventos que nacen de un save NO pasan por acá.
func (s *DAL) AppendDogEvent(ctx context.Context, e events.DogEvent) error {
	if strings.TrimSpace(e.DogID) == "" || e.Type == "" {
		return errors.New("event requires dog_id and type")
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = s.now()
	}
	return s.eventRepo.Append(ctx, e)
}

// GetUserDogState devuelve el estado del usuario para un perro. Si no hay
// nada guardado devuelve un estado default vacío; nunca not-found.
func (s *DAL) GetUserDogState(ctx context.Context, userID, dogID string) (users.UserDogState, error) {
	st, err := s.stateRepo.Get(ctx, userID, dogID)
	if errors.Is(err, users.ErrNotFound) {
		return users.UserDogState{UserID: userID, DogID: dogID}, nil
	}
	if err != nil {
		return users.UserDogState{}, fmt.Errorf("get user dog state: %w", err)
	}
	return st, nil
}

// SaveUserDogState upsertea por (user, dog).
func (s *DAL) SaveUserDogState(ctx context.Context, st users.UserDogState) error {
	if strings.TrimSpace(st.UserID) == "" || strings.TrimSpace(st.DogID) == "" {
		return errors.New("user dog state requires user_id and dog_id")
	}

	now := s.now()
	if st.CreatedAt.IsZero() {
		st.CreatedAt = now
	}
	st.UpdatedAt = now
	if st.Favorite && st.FavoritedAt.IsZero() {
		st.FavoritedAt = now
	}

	return s.stateRepo.Upsert(ctx, st)
}

// GetUserPreferences devuelve las preferencias del usuario, con defaults si
// nunca guardó nada.
func (s *DAL) GetUserPreferences(ctx context.Context, userID string) (users.UserPreferences, error) {
	prefs, err := s.prefRepo.Get(ctx, userID)
	if errors.Is(err, users.ErrNotFound) {
		return users.DefaultPreferences(userID), nil
	}
	if err != nil {
		return users.UserPreferences{}, fmt.Errorf("get user preferences: %w", err)
	}
	return prefs, nil
}

func (s *DAL) SaveUserPreferences(ctx context.Context, prefs users.UserPreferences) error {
	if strings.TrimSpace(prefs.UserID) == "" {
		return errors.New("preferences require user_id")
	}
	return s.prefRepo.Upsert(ctx, prefs)
}

// ComputeFitScore delega en el motor de scoring. No persiste nada.
func (s *DAL) ComputeFitScore(d dogs.Dog, ov *scoring.Overrides, cfg *scoring.Config) int {
	return scoring.ComputeFitScore(d, ov, cfg)
}

// ScoredDog es un perro personalizado para un usuario: score con overrides
// aplicados más los flags de favorito/oculto. El Dog guardado no se toca.
type ScoredDog struct {
	dogs.Dog

	FitScore int
	Favorite bool
	Hidden   bool
}

// ApplyUserOverrides personaliza una lista de perros para un usuario,
// recalculando cada score con sus overrides y su config de scoring.
// Trae todo el estado del usuario de una vez; perros sin estado usan
// el default vacío.
func (s *DAL) ApplyUserOverrides(ctx context.Context, list []dogs.Dog, userID string) ([]ScoredDog, error) {
	prefs, err := s.GetUserPreferences(ctx, userID)
	if err != nil {
		return nil, err
	}

	states, err := s.stateRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list user state: %w", err)
	}
	byDog := make(map[string]users.UserDogState, len(states))
	for _, st := range states {
		byDog[st.DogID] = st
	}

	out := make([]ScoredDog, 0, len(list))
	for _, d := range list {
		st := byDog[d.DogID]

		out = append(out, ScoredDog{
			Dog:      d,
			FitScore: scoring.ComputeFitScore(d, &st.Overrides, &prefs.Scoring),
			Favorite: st.Favorite,
			Hidden:   st.Hidden,
		})
	}

	return out, nil
}
