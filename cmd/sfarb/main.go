package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"sfarb/internal/application/port"
	"sfarb/internal/application/service"
	"sfarb/internal/application/usecase/watch"
	"sfarb/internal/infrastructure/config"
	"sfarb/internal/infrastructure/exchange"
	"sfarb/internal/infrastructure/exchange/mexc"
	"sfarb/internal/infrastructure/logger"
	"sfarb/internal/infrastructure/storage/postgres"
	redisstore "sfarb/internal/infrastructure/storage/redis"
	"sfarb/internal/infrastructure/storage/sqlite"
	"sfarb/internal/interfaces/console"
)

func main() {
	configPath := flag.String("config", "configs/config.toml", "path to config.toml")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Setup(false)
		log.Fatal().Err(err).Str("config", *configPath).Msg("load config failed")
	}
	logger.Setup(cfg.App.Debug)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// storage (application port; empty driver runs without persistence)
	repo := openRepo(cfg)
	defer repo.Close()

	// crossing fan-out (optional)
	var pub port.CrossingPublisher
	if cfg.Redis.Enabled {
		rdb := goredis.NewClient(&goredis.Options{Addr: cfg.Redis.Addr})
		defer rdb.Close()
		pub = redisstore.NewPublisher(rdb, cfg.Redis.Prefix, "", "")
	}

	// symbol discovery + 24h volume refresh
	rest := mexc.NewRestClient(cfg.Mexc.SpotRestURL, cfg.Mexc.FuturesRestURL)
	discovery := service.NewDiscovery(rest, exchange.NewBlocklist())
	universe := discovery.Discover(ctx)

	volumes := service.NewVolumeCache(rest, time.Minute)
	volumes.Start(ctx)

	feeds := []port.Feed{
		mexc.NewSpotFeed(cfg.Mexc.SpotWsURL),
		mexc.NewFuturesFeed(cfg.Mexc.FuturesWsURL),
	}

	writer := service.NewOpportunityWriter(repo, pub)

	svc := watch.NewService(watch.ServiceDeps{
		Feeds:      feeds,
		Symbols:    universe.Working,
		Volumes:    volumes,
		Writer:     writer,
		Sink:       console.NewSink(),
		Blacklist:  cfg.Spread.Blacklist,
		MinVolume:  cfg.Spread.MinVolume24h,
		FlushEvery: cfg.FlushInterval(),
		SnapEvery:  cfg.SnapInterval(),
	})

	log.Info().
		Str("config", *configPath).
		Int("symbols", len(universe.Working)).
		Str("storage", storageName(cfg)).
		Float64("min_volume_24h", cfg.Spread.MinVolume24h).
		Msg("sfarb started")

	if err := svc.Run(ctx); err != nil {
		log.Error().Err(err).Msg("watch service exited")
	}
}

func openRepo(cfg *config.Config) port.Repository {
	switch cfg.Storage.Driver {
	case "postgres":
		repo, err := postgres.New(cfg.Storage.PostgresDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("open postgres failed")
		}
		return repo
	case "sqlite":
		repo, err := sqlite.New(cfg.Storage.SqlitePath)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.Storage.SqlitePath).Msg("open sqlite failed")
		}
		return repo
	default:
		log.Warn().Msg("no storage driver configured, running dry")
		return watch.NewNoopRepo()
	}
}

func storageName(cfg *config.Config) string {
	if cfg.Storage.Driver == "" {
		return "none"
	}
	return cfg.Storage.Driver
}
