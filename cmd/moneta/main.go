package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fortuna/moneta/internal/api/rest"
	"github.com/fortuna/moneta/internal/api/websocket"
	"github.com/fortuna/moneta/internal/cache"
	"github.com/fortuna/moneta/internal/config"
	"github.com/fortuna/moneta/internal/efficiency"
	"github.com/fortuna/moneta/internal/ingest/spotrac"
	"github.com/fortuna/moneta/internal/logging"
	"github.com/fortuna/moneta/internal/publisher"
	"github.com/fortuna/moneta/internal/runs"
	"github.com/fortuna/moneta/internal/scheduler"
	"github.com/fortuna/moneta/internal/service"
	"github.com/fortuna/moneta/internal/store"
	"github.com/fortuna/moneta/internal/store/repository"
	"github.com/fortuna/moneta/internal/valuation"
)

const (
	serviceName    = "moneta"
	serviceVersion = "1.0.0"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	log := logging.Component(logger, "main")
	log.Infof("Starting %s v%s - Player Valuation Service", serviceName, serviceVersion)

	// Initialize database connection
	db, err := store.NewDatabase(cfg.AtlasDSN, logging.Component(logger, "store"))
	if err != nil {
		log.Fatalf("Failed to connect to Atlas database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := db.RunMigrations(ctx); err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}
	log.Info("✓ Database migrations applied")

	// Non-fatal: the table may already be seeded
	if err := db.SeedTeams(ctx); err != nil {
		log.Warnf("⚠️  Team seed warning: %v (continuing anyway)", err)
	} else {
		log.Info("✓ Teams seeded")
	}

	redisCache := connectRedis(cfg, log)
	defer redisCache.Close()

	// Valuation pipeline
	engine := valuation.NewEngine(
		valuation.NewScorer(valuation.DefaultModel()),
		valuation.WithWorkers(cfg.ScoringWorkers),
		valuation.WithLogger(logger.WithField("season", cfg.Season)),
	)

	opts := []service.Option{service.WithCache(redisCache)}
	if window, ok, _ := cfg.SeasonWindow(); ok {
		opts = append(opts, service.WithSeasonWindow(cfg.Season, window))
	}

	valuationService := service.NewValuationService(
		repository.NewStatsRepository(db),
		repository.NewSalaryRepository(db),
		repository.NewValueRepository(db),
		repository.NewFeatureRepository(db),
		engine,
		efficiency.NewAggregator(logging.Component(logger, "efficiency")),
		logging.Component(logger, "service"),
		opts...,
	)

	// Run queue with its listeners
	wsServer := websocket.NewServer(logging.Component(logger, "websocket"))
	runService := runs.NewService(repository.NewRunRepository(db), valuationService, logging.Component(logger, "runs"))
	runService.AddListener(publisher.NewRedisStreamPublisher(redisCache.Client(), logging.Component(logger, "publisher")))
	runService.AddListener(wsServer)
	runService.Start()

	log.Info("✓ Run service started")

	// Scheduler, optionally refreshing salaries before each daily run
	var salaryRefresher scheduler.SalaryRefresher
	if cfg.RefreshSalary {
		client := spotrac.NewClient(logging.Component(logger, "spotrac"))
		defer client.Close()
		salaryRefresher = spotrac.NewIngester(client, repository.NewSalaryRepository(db), logging.Component(logger, "ingest"))
	}

	sched := scheduler.NewOrchestrator(runService, salaryRefresher, &scheduler.Config{
		DailyRunHour:    cfg.DailyRunHour,
		Season:          cfg.Season,
		SalaryYear:      cfg.SpotracYear,
		EnableDailyRun:  cfg.EnableSchedule,
		RefreshSalaries: cfg.RefreshSalary,
		MaxRetries:      3,
		RetryDelay:      30 * time.Second,
	}, logging.Component(logger, "scheduler"))
	go sched.Start(ctx)

	log.Info("✓ Scheduler started")

	// REST API
	handler := rest.NewHandler(valuationService, repository.NewTeamRepository(db), healthChecks{db, redisCache}, sched)
	restServer := rest.NewServer(cfg.RESTPort, handler, rest.NewRunHandler(runService, cfg.Season), logging.Component(logger, "rest"))
	go func() {
		log.Infof("Starting REST API server on port %s", cfg.RESTPort)
		if err := restServer.Start(); err != nil {
			log.Errorf("REST server error: %v", err)
		}
	}()

	log.Infof("✓ REST API server listening on :%s", cfg.RESTPort)

	// WebSocket push
	go func() {
		if err := wsServer.Start(cfg.WSPort); err != nil {
			log.Errorf("WebSocket server error: %v", err)
		}
	}()

	log.Infof("✓ WebSocket server listening on :%s", cfg.WSPort)
	log.WithFields(logrus.Fields{
		"rest":      "http://0.0.0.0:" + cfg.RESTPort,
		"websocket": "ws://0.0.0.0:" + cfg.WSPort + "/ws/runs",
		"season":    cfg.Season,
	}).Infof("✓ Moneta v%s started successfully", serviceVersion)

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info("Shutting down Moneta gracefully...")

	cancel()
	sched.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := restServer.Shutdown(shutdownCtx); err != nil {
		log.Errorf("REST API server shutdown error: %v", err)
	}
	if err := wsServer.Shutdown(shutdownCtx); err != nil {
		log.Errorf("WebSocket server shutdown error: %v", err)
	}
	if err := runService.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Run service shutdown error: %v", err)
	}

	log.Info("Moneta stopped")
}

// connectRedis retries until Redis answers; the service cannot run without it.
func connectRedis(cfg *config.Config, log *logrus.Entry) *cache.RedisCache {
	const maxRetries = 30
	retryDelay := 2 * time.Second

	log.Info("Connecting to Redis...")
	for i := 0; ; i++ {
		redisCache, err := cache.NewRedisCache(cfg.RedisURL, cfg.CacheTTL)
		if err == nil {
			log.Info("✓ Connected to Redis")
			return redisCache
		}
		if i == maxRetries-1 {
			log.Fatalf("Failed to connect to Redis after %d attempts: %v", maxRetries, err)
		}
		log.Warnf("Redis connection attempt %d/%d failed: %v (retrying in %v)", i+1, maxRetries, err, retryDelay)
		time.Sleep(retryDelay)
	}
}

// healthChecks fails on the first unhealthy dependency.
type healthChecks []rest.HealthChecker

func (h healthChecks) HealthCheck(ctx context.Context) error {
	for _, c := range h {
		if err := c.HealthCheck(ctx); err != nil {
			return err
		}
	}
	return nil
}
