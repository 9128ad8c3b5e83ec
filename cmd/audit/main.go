package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/nightcaplab/cocktail-courier/internal/audit"
	"github.com/nightcaplab/cocktail-courier/internal/config"
	kafkax "github.com/nightcaplab/cocktail-courier/internal/kafka"
	"github.com/nightcaplab/cocktail-courier/internal/orders"
	"github.com/nightcaplab/cocktail-courier/internal/postgres"
	"github.com/nightcaplab/cocktail-courier/internal/redisx"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	name := cfg.ServiceName + "-audit"
	log := zerolog.New(os.Stdout).With().Timestamp().Str("service", name).Logger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect")
	}
	defer db.Close()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	svc := &audit.Service{
		Repo:        &audit.Repo{DB: db},
		Redis:       rdb,
		ServiceName: name,
		Log:         log,
	}

	group := getenv("AUDIT_GROUP", "order-audit")
	workers := mustAtoi(os.Getenv("AUDIT_WORKERS"), "4")

	// one consumer per topic, same handler
	for _, topic := range []string{orders.TopicOrderCreated, orders.TopicOrderStatusChanged} {
		topic := topic
		cons := kafkax.NewConsumer(cfg.KafkaBrokers, group, topic, workers)
		go func() {
			log.Info().Str("group", group).Str("topic", topic).Int("workers", workers).
				Msg("audit consumer started")
			if err := cons.Start(ctx, svc.HandleOrderEvent); err != nil {
				log.Error().Err(err).Str("topic", topic).Msg("consumer exit")
				cancel()
			}
		}()
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}
	log.Info().Msg("shutting down consumers")
	cancel()
	time.Sleep(500 * time.Millisecond)
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func mustAtoi(s, def string) int {
	if s == "" {
		s = def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 1
	}
	return i
}
