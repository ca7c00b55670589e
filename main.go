package main

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	zero "github.com/rs/zerolog/log"

	"github.com/lacertae/aster/internal/actors"
	"github.com/lacertae/aster/internal/client"
	"github.com/lacertae/aster/internal/config"
	dbimpl "github.com/lacertae/aster/internal/db/impl"
	"github.com/lacertae/aster/internal/delivery"
	"github.com/lacertae/aster/internal/ingest"
	"github.com/lacertae/aster/internal/initialization"
	"github.com/lacertae/aster/internal/kernel"
	"github.com/lacertae/aster/internal/lock"
	"github.com/lacertae/aster/internal/state"
	"github.com/lacertae/aster/internal/web"
	"github.com/lacertae/aster/internal/wellknown"

	_ "github.com/mattn/go-sqlite3"
)

func main() {
	zero.Logger = zero.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	cfg, err := config.ReadConfig()
	if err != nil {
		zero.Fatal().Err(err).Msg("failed to read configuration")
	}
	if cfg.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	d, err := initialization.OpenDB(cfg.DbUrl)
	if err != nil {
		zero.Fatal().Err(err).Send()
	}
	zero.Info().Msg("database connection established")

	if err := initialization.SetupDB(&cfg, d, cfg.MigrationsFolder, cfg.DbUrl); err != nil {
		zero.Fatal().Err(err).Send()
	}

	q, err := initialization.InitQueue(&cfg)
	if err != nil {
		zero.Fatal().Err(err).Msg("unable to connect with queue database")
	}

	key, err := initialization.InstancePrivateKey(context.Background(), d, &cfg)
	if err != nil {
		zero.Fatal().Err(err).Msg("failed to load instance signing key")
	}

	fragment, _ := url.Parse("#main-key")
	keyId := cfg.Url.ResolveReference(fragment)
	httpClient, err := client.New(&http.Client{}, key, keyId)
	if err != nil {
		zero.Fatal().Err(err).Send()
	}

	store := dbimpl.New(cfg, d)
	locks := lock.New()

	planner := delivery.NewPlanner(store, q, cfg.Domain)
	queues := delivery.NewQueues(q, httpClient, store, planner, cfg.Url.String())

	actorService := actors.New(store, httpClient, queues)
	queues.Start(context.Background(), actorService)

	ingester := ingest.New(store, locks, actorService, httpClient, queues, cfg.Domain)
	core := kernel.New(store, ingester, actorService, locks, httpClient, planner, cfg.Url.String())

	st := state.State{
		DB:     store,
		Config: cfg,
	}

	router := chi.NewRouter()
	web.New(core, actorService).Mount(router)
	wellknown.Mount(&st, router)

	s := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: router,
	}

	zero.Info().Uint16("port", cfg.Port).Msg("started server")
	if err := s.ListenAndServe(); err != nil {
		zero.Fatal().Err(err).Send()
	}
}
