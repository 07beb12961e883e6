package main

import (
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spencer-p/sunsetdash/pkg/config"
	"github.com/spencer-p/sunsetdash/pkg/data"
	"github.com/spencer-p/sunsetdash/pkg/handlers"
	"github.com/spencer-p/sunsetdash/pkg/locations"
	"github.com/spencer-p/sunsetdash/pkg/logging"
	"github.com/spencer-p/sunsetdash/pkg/metrics"
	"github.com/spencer-p/sunsetdash/pkg/places"
)

func main() {
	env, err := config.Load()
	if err != nil {
		// The logger is not configured yet.
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
	if err := logging.Init(env.Debug); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
	defer logging.Sync()
	log := logging.L()

	engine, err := env.Engine(metrics.InstrumentOracle)
	if err != nil {
		log.Fatalw("failed to build engine", "error", err)
	}
	engine.OnSearch = metrics.ObserveSearch

	var store locations.Store = data.NewMemory()
	if env.DatabaseURL != "" {
		db, err := data.OpenPostgres(env.DatabaseURL)
		if err != nil {
			log.Fatalw("failed to open location store", "error", err)
		}
		store = db
	}

	api := handlers.New(handlers.Options{
		Engine:   engine,
		Places:   places.Default(),
		Store:    store,
		Sessions: handlers.NewSessionStore(env.SessionKey, env.EncryptionKey, !env.Debug),
		Default:  env.DefaultLocation(),
		Upcoming: env.UpcomingCount,
		CacheTTL: env.CacheTTL,
	})

	r := mux.NewRouter().StrictSlash(true)
	r.Handle("/metrics", promhttp.Handler())
	s := r.PathPrefix(env.Prefix).Subrouter()
	api.Register(s)
	r.Use(mux.MiddlewareFunc(metrics.LatencyHandler))

	srv := &http.Server{
		Handler:      r,
		Addr:         "0.0.0.0:" + env.Port,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}
	log.Infow("Listening and serving",
		"addr", srv.Addr,
		"prefix", env.Prefix,
		"oracle", env.Oracle,
		"default", env.DefaultLocation().String())
	if err := srv.ListenAndServe(); err != nil {
		log.Fatalw("server stopped", "error", err)
	}
}
