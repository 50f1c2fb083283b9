package main

import (
	"LeagueStatsApi/internal/cache"
	"LeagueStatsApi/internal/data"
	"LeagueStatsApi/internal/stats"
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

type config struct {
	file     string
	dsn      string
	redisURL string
	migrate  bool
	dryRun   bool
}

func main() {
	_ = godotenv.Load()

	var cfg config
	flag.StringVar(&cfg.file, "file", "", "TOML stat catalog to load")
	flag.StringVar(&cfg.dsn, "db-dsn", os.Getenv("LEAGUESTATS_DB_DSN"), "DB connection string")
	flag.StringVar(&cfg.redisURL, "redis-url", os.Getenv("REDIS_URL"),
		"Redis URL of the catalog cache to invalidate (optional)")
	flag.BoolVar(&cfg.migrate, "db-migrate", true, "Apply pending migrations first")
	flag.BoolVar(&cfg.dryRun, "dry-run", false, "Validate the file and print its evaluation order")
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		With().
		Timestamp().
		Logger()

	if err := run(cfg, logger); err != nil {
		logger.Fatal().Err(err).Str("file", cfg.file).Msg("catalog load failed")
	}
}

func run(cfg config, logger zerolog.Logger) error {
	if cfg.file == "" {
		return errors.New("-file is required")
	}

	f, err := os.Open(cfg.file)
	if err != nil {
		return err
	}
	defer f.Close()

	catalogFile, err := stats.DecodeCatalogFile(f)
	if err != nil {
		return err
	}

	if cfg.dryRun {
		cat, err := catalogFile.Catalog()
		if err != nil {
			return err
		}
		for _, a := range cat.Anomalies() {
			logger.Warn().Str("stat", a.Abbreviation).Str("reason", a.Reason).
				Msg("composite will be skipped")
		}
		fmt.Printf("%s: %d stat types, evaluation order %v\n", catalogFile.Sport.Name,
			cat.Len(), cat.Order())
		return nil
	}

	db, err := sql.Open("postgres", cfg.dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return err
	}

	if cfg.migrate {
		if err := data.Migrate(db, logger); err != nil {
			return err
		}
	}

	models := data.NewModels(db)
	sportID, err := models.StatTypes.ReplaceCatalog(ctx, catalogFile)
	if err != nil {
		return err
	}

	logger.Info().
		Int64("sport_id", sportID).
		Str("sport", catalogFile.Sport.Name).
		Int("stat_types", len(catalogFile.Stats)).
		Msg("catalog loaded")

	if cfg.redisURL == "" {
		return nil
	}

	opts, err := redis.ParseURL(cfg.redisURL)
	if err != nil {
		return fmt.Errorf("parsing redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	defer rdb.Close()

	catalogs := cache.NewCatalogCache(rdb, &models.StatTypes, 0, logger)
	if err := catalogs.Evict(ctx, sportID); err != nil {
		// A stale entry still expires after its TTL.
		logger.Warn().Err(err).Int64("sport_id", sportID).Msg("failed to evict cached catalog")
	}

	return nil
}
