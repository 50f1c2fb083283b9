package main

import (
	"LeagueStatsApi/internal/cache"
	"LeagueStatsApi/internal/data"
	"LeagueStatsApi/internal/service"
	"LeagueStatsApi/internal/stats"
	"context"
	"database/sql"
	"errors"
	"expvar"
	"flag"
	"fmt"
	"os"
	"runtime"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

type config struct {
	version  string
	port     int
	env      string
	logLevel string
	db       struct {
		dsn          string
		maxOpenConns int
		maxIdleConns int
		maxIdleTime  string
		migrate      bool
	}
	limiter struct {
		rps     float64
		burst   int
		enabled bool
	}
	cors struct {
		trustedOrigins []string
	}
	redis struct {
		url        string
		catalogTTL time.Duration
	}
}

type eventLister interface {
	GetAll(ctx context.Context, f data.PlayerStatsFilter) ([]*data.PlayerStat, data.Metadata,
		error)
}

type recordReader interface {
	Record(ctx context.Context, teamID int64) (*data.Record, error)
}

type sportReader interface {
	Get(ctx context.Context, id int64) (*data.Sport, error)
}

type catalogReader interface {
	Catalog(ctx context.Context, sportID int64) (*stats.Catalog, error)
}

type application struct {
	logger   zerolog.Logger
	config   config
	services service.Services
	events   eventLister
	teams    recordReader
	sports   sportReader
	catalogs catalogReader
}

func main() {
	// A missing .env file is fine, the flags and the environment still apply.
	_ = godotenv.Load()

	var cfg config

	// Server Config
	cfg.version = "1.0.0"
	flag.IntVar(&cfg.port, "port", envInt("PORT", 8008), "http server port")
	flag.StringVar(&cfg.env, "env", envString("APP_ENV", "development"),
		"Environment (development|staging|production)")
	flag.StringVar(&cfg.logLevel, "log-level", envString("LOG_LEVEL", "info"),
		"Log level (debug|info|warn|error)")

	// Database Config
	flag.StringVar(&cfg.db.dsn, "db-dsn", os.Getenv("LEAGUESTATS_DB_DSN"), "DB connection string")
	flag.IntVar(&cfg.db.maxOpenConns, "db-max-open-conns", 25, "PostgreSQL max open connections")
	flag.IntVar(&cfg.db.maxIdleConns, "db-max-idle-conns", 25, "PostgreSQL max idle connections")
	flag.StringVar(&cfg.db.maxIdleTime, "db-max-idle-time", "15m",
		"PostgreSQL max connection idle time")
	flag.BoolVar(&cfg.db.migrate, "db-migrate", true, "Apply pending migrations on start")

	// Limiter Config
	flag.Float64Var(&cfg.limiter.rps, "limiter-rps", 2, "Rate limiter maximum requests per second")
	flag.IntVar(&cfg.limiter.burst, "limiter-burst", 4, "Rate limiter maximum burst")
	flag.BoolVar(&cfg.limiter.enabled, "limiter-enabled", true, "Enable rate limiter")

	// CORS Config
	flag.Func("cors-trusted-origins", "Trusted CORS origins (space separated)", func(val string) error {
		origins := strings.Fields(val)
		if i := slices.Index(origins, "*"); i != -1 {
			return errors.New("cannot set CORS trusted origin to \"*\" with credentials in" +
				" cross-origin requests")
		}
		cfg.cors.trustedOrigins = origins
		return nil
	})

	// Redis Config
	flag.StringVar(&cfg.redis.url, "redis-url", os.Getenv("REDIS_URL"),
		"Redis URL for the stat catalog cache (empty disables caching)")
	flag.DurationVar(&cfg.redis.catalogTTL, "redis-catalog-ttl", cache.DefaultCatalogTTL,
		"Stat catalog cache TTL")

	// Version
	displayVersion := flag.Bool("version", false, "Show API version and immediately exit")

	flag.Parse()

	if *displayVersion {
		fmt.Printf("Version: %s\n", cfg.version)
		os.Exit(0)
	}

	logger := newLogger(cfg.logLevel)

	db, err := openDB(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()
	logger.Info().Msg("database connection pool established")

	if cfg.db.migrate {
		if err := data.Migrate(db, logger); err != nil {
			logger.Fatal().Err(err).Msg("failed to migrate database")
		}
	}

	rdb, err := openRedis(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to redis")
	}
	if rdb != nil {
		defer rdb.Close()
		logger.Info().Msg("connected to redis")
	}

	expvar.NewString("version").Set(cfg.version)
	expvar.Publish("goroutines", expvar.Func(func() any {
		return runtime.NumGoroutine()
	}))
	expvar.Publish("database", expvar.Func(func() any {
		return db.Stats()
	}))
	expvar.Publish("timestamp", expvar.Func(func() any {
		return time.Now().Unix()
	}))

	models := data.NewModels(db)
	catalogs := cache.NewCatalogCache(rdb, &models.StatTypes, cfg.redis.catalogTTL, logger)

	app := &application{
		logger: logger,
		config: cfg,
		services: service.New(service.Deps{
			Games:    &models.Games,
			Rosters:  &models.Players,
			Teams:    &models.Teams,
			Events:   &models.PlayerStats,
			Catalogs: catalogs,
			Logger:   logger,
		}),
		events:   &models.PlayerStats,
		teams:    &models.Teams,
		sports:   &models.Sports,
		catalogs: catalogs,
	}

	err = app.serve()
	if err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	zerolog.TimeFieldFormat = time.RFC3339
	return zerolog.New(os.Stdout).
		Level(lvl).
		With().
		Timestamp().
		Logger()
}

func openDB(cfg config) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.db.dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.db.maxOpenConns)
	db.SetMaxIdleConns(cfg.db.maxIdleConns)
	duration, err := time.ParseDuration(cfg.db.maxIdleTime)
	if err != nil {
		return nil, err
	}
	db.SetConnMaxIdleTime(duration)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = db.PingContext(ctx)
	if err != nil {
		return nil, err
	}

	return db, nil
}

// openRedis returns a nil client when no URL is configured.
func openRedis(cfg config) (*redis.Client, error) {
	if cfg.redis.url == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.redis.url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	return client, nil
}

func envString(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func envInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return v
}
