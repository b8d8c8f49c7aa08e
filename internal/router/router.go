package router

import (
	"context"
	"database/sql"
	"net/http"
	"os"

	mem "family-med-calendar/internal/adapters/storage/memory"
	mongostore "family-med-calendar/internal/adapters/storage/mongo"
	pg "family-med-calendar/internal/adapters/storage/postgres"
	"family-med-calendar/internal/domain/dayrecords"
	"family-med-calendar/internal/domain/medications"
	"family-med-calendar/internal/domain/profiles"
	"family-med-calendar/internal/domain/share"
	"family-med-calendar/internal/middleware"
	"family-med-calendar/internal/platform/logger"
	"family-med-calendar/internal/ports/identity"

	_ "family-med-calendar/docs"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.mongodb.org/mongo-driver/mongo"
)

type Options struct {
	IdentityProvider identity.Provider // puede ser nil (modo dev: X-Device-ID)

	// Backend del store de documentos, por prioridad:
	// MongoDB > DB (Postgres) > in-memory.
	MongoDB *mongo.Database
	DB      *sql.DB

	PublicURL string
	Log       logger.Logger
}

func NewRouter(opts Options) http.Handler {
	log := opts.Log
	if log == nil {
		log = logger.NewFromEnv()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Use(middleware.DeviceContext(opts.IdentityProvider))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Mount("/swagger", httpSwagger.WrapHandler)

	var (
		medsRepo medications.Repository
		daysRepo dayrecords.Repository
		profRepo profiles.Repository
	)

	// Si no pasan DB explícita, intenta por env (dev/handoff).
	db := opts.DB
	if opts.MongoDB == nil && db == nil {
		if dsn := os.Getenv("DB_DSN"); dsn != "" {
			if opened, err := pg.Open(dsn); err == nil {
				db = opened
			}
		}
	}

	switch {
	case opts.MongoDB != nil:
		medsRepo = mongostore.NewMedicationsRepo(opts.MongoDB)
		daysRepo = mongostore.NewDayRecordsRepo(opts.MongoDB)
		profRepo = mongostore.NewProfilesRepo(opts.MongoDB)
	case db != nil:
		medsRepo = pg.NewMedicationsRepo(db)
		daysRepo = pg.NewDayRecordsRepo(db)
		profRepo = pg.NewProfilesRepo(db)
	default:
		medsRepo = mem.NewMedicationsRepo()
		daysRepo = mem.NewDayRecordsRepo()
		profRepo = mem.NewProfilesRepo()
	}

	// Services por módulo
	medsSvc := medications.NewService(medsRepo)
	daysSvc := dayrecords.NewService(daysRepo, log)
	profSvc := profiles.NewService(profRepo)

	// Primer arranque: si el documento de definiciones está vacío se
	// siembra el set default. No fatal: sin seed el listado arranca vacío.
	if err := medsSvc.EnsureSeed(context.Background()); err != nil {
		log.Warn("medication seed failed", map[string]any{"err": err.Error()})
	}

	// Rutas por módulo
	medications.RegisterRoutes(r, medsSvc)
	dayrecords.RegisterRoutes(r, daysSvc, profSvc)
	profiles.RegisterRoutes(r, profSvc)
	share.RegisterRoutes(r, opts.PublicURL)

	return r
}
