package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/nightcaplab/cocktail-courier/internal/config"
	"github.com/nightcaplab/cocktail-courier/internal/httpx"
	"github.com/nightcaplab/cocktail-courier/internal/hub"
	kafkax "github.com/nightcaplab/cocktail-courier/internal/kafka"
	"github.com/nightcaplab/cocktail-courier/internal/orders"
	"github.com/nightcaplab/cocktail-courier/internal/postgres"
	"github.com/nightcaplab/cocktail-courier/internal/redisx"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := zerolog.New(os.Stdout).With().Timestamp().Str("service", cfg.ServiceName).Logger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Store backend is swappable; memory is the default so the API runs
	// without any infrastructure.
	var store orders.Store
	switch cfg.StoreBackend {
	case "postgres":
		db, err := postgres.Connect(ctx, cfg.PostgresDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("db connect")
		}
		defer db.Close()
		store = &orders.PgStore{DB: db}
	default:
		store = orders.NewMemStore()
	}

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	prodCreated := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderCreated, 1024)
	prodCreated.Start()
	prodStatus := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderStatusChanged, 1024)
	prodStatus.Start()

	trackingHub := hub.New(store, log)

	lc := orders.NewLifecycle(store, log)
	lc.Notifier = trackingHub
	lc.Producer = prodStatus
	lc.Service = cfg.ServiceName

	router := httpx.NewRouter()
	oh := &httpx.OrdersHandler{
		Store:     store,
		Lifecycle: lc,
		Hub:       trackingHub,
		Producer:  prodCreated,
		Redis:     rdb,
		Service:   cfg.ServiceName,
		Log:       log,
	}
	oh.Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("HTTP listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("listen")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info().Msg("shutting down")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)

	// close inboxes -> flush & close writers, then drain
	prodCreated.Close()
	prodStatus.Close()
	prodCreated.WaitClosed()
	prodStatus.WaitClosed()
}
