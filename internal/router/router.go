package router

import (
	"database/sql"
	"net/http"
	"time"

	mem "rescue-dog-tracker/internal/adapters/storage/memory"
	sqlitedb "rescue-dog-tracker/internal/adapters/storage/sqlite"
	"rescue-dog-tracker/internal/dal"
	"rescue-dog-tracker/internal/domain/dogs"
	"rescue-dog-tracker/internal/domain/events"
	"rescue-dog-tracker/internal/domain/users"
	"rescue-dog-tracker/internal/middleware"
	"rescue-dog-tracker/internal/platform/logger"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

type Options struct {
	// Opcional: si viene, usa SQLite. Si no, in-memory.
	DB *sql.DB

	// Usuario para requests sin header X-User-ID.
	DefaultUserID string

	Log logger.Logger

	// Reloj inyectable para tests. nil = time.Now.
	Now func() time.Time
}

func NewRouter(opts Options) http.Handler {
	var (
		dogRepo   dogs.Repository
		eventRepo events.Repository
		stateRepo users.StateRepository
		prefRepo  users.PreferencesRepository
	)

	if opts.DB != nil {
		dogRepo = sqlitedb.NewDogsRepo(opts.DB)
		eventRepo = sqlitedb.NewEventsRepo(opts.DB)
		stateRepo = sqlitedb.NewUserStateRepo(opts.DB)
		prefRepo = sqlitedb.NewUserPrefsRepo(opts.DB)
	} else {
		eventRepo = mem.NewEventsRepo()
		dogRepo = mem.NewDogsRepo(eventRepo)
		stateRepo = mem.NewUserStateRepo()
		prefRepo = mem.NewUserPrefsRepo()
	}

	log := opts.Log
	if log == nil {
		log = logger.NewFromEnv()
	}

	svc := dal.New(dogRepo, eventRepo, stateRepo, prefRepo, log)
	if opts.Now != nil {
		svc = svc.WithClock(opts.Now)
	}

	return NewRouterWithDAL(svc, opts.DefaultUserID)
}

// NewRouterWithDAL monta las rutas sobre un DAL ya armado. Lo usan los tests
// y cualquier caller que comparta el DAL con otros componentes (p.ej. ingest).
func NewRouterWithDAL(svc *dal.DAL, defaultUserID string) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	if defaultUserID == "" {
		defaultUserID = users.DefaultUserID
	}
	r.Use(middleware.UserContext(defaultUserID))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	registerRoutes(r, svc)

	return r
}
