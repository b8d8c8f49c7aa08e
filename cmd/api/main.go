package main

import (
	"net/http"
	"os"
	"time"

	"family-med-calendar/internal/adapters/identity/anonid"
	mongostore "family-med-calendar/internal/adapters/storage/mongo"
	pg "family-med-calendar/internal/adapters/storage/postgres"
	"family-med-calendar/internal/config"
	"family-med-calendar/internal/platform/logger"
	"family-med-calendar/internal/router"
)

func main() {
	log := logger.NewFromEnv()
	cfg := config.Load(log)

	opts := router.Options{
		PublicURL: cfg.PublicURL,
		Log:       log,
	}

	// Identity provider anónimo; sin configurar queda el modo dev
	// (header X-Device-ID).
	if cfg.IdentityBaseURL != "" {
		client, err := anonid.NewClient(anonid.Config{
			BaseURL: cfg.IdentityBaseURL,
			APIKey:  cfg.IdentityAPIKey,
		})
		if err != nil {
			log.Error("anonid client init failed", map[string]any{"err": err.Error()})
			os.Exit(1)
		}
		opts.IdentityProvider = anonid.NewProvider(client)
	}

	switch {
	case cfg.MongoURI != "":
		db, err := mongostore.Connect(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			log.Error("mongo connect failed", map[string]any{"err": err.Error()})
			os.Exit(1)
		}
		opts.MongoDB = db
	case cfg.PostgresDSN != "":
		db, err := pg.Open(cfg.PostgresDSN)
		if err != nil {
			log.Error("postgres open failed", map[string]any{"err": err.Error()})
			os.Exit(1)
		}
		opts.DB = db
	}

	r := router.NewRouter(opts)

	srv := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     r,
		ReadTimeout: 5 * time.Second,
		// Sin WriteTimeout: /days/{date}/watch es un stream SSE de vida
		// larga y un timeout global lo cortaría.
		IdleTimeout: 60 * time.Second,
	}

	log.Info("starting server", map[string]any{"addr": srv.Addr})
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", map[string]any{"err": err.Error()})
		os.Exit(1)
	}
}
