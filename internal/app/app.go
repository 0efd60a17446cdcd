package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/korozcolt/archive-master-app-sub004/internal/config"
	"github.com/korozcolt/archive-master-app-sub004/internal/database"
	"github.com/korozcolt/archive-master-app-sub004/internal/middleware"
	"github.com/korozcolt/archive-master-app-sub004/internal/modules/ai"
	jwtpkg "github.com/korozcolt/archive-master-app-sub004/internal/pkg/jwt"
	pkgredis "github.com/korozcolt/archive-master-app-sub004/internal/pkg/redis"
	"github.com/korozcolt/archive-master-app-sub004/internal/pkg/secret"
	"github.com/korozcolt/archive-master-app-sub004/internal/pkg/taskqueue"
)

// App holds all application dependencies.
type App struct {
	cfg    *config.AppConfig
	router *gin.Engine
	db     *gorm.DB
	worker *taskqueue.Worker
	logger *zap.Logger
	cancel context.CancelFunc
}

// New initializes the application: config → DB → Redis → pipeline → routes.
func New(logger *zap.Logger, cfg *config.AppConfig) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	if s := strings.TrimSpace(cfg.JWTSecret); s != "" {
		jwtpkg.SetSecret(s)
	} else {
		logger.Warn("jwt_secret is empty, using built-in default secret")
	}

	box, err := secret.New(cfg.SecretKey)
	if err != nil {
		return nil, fmt.Errorf("secret key: %w", err)
	}

	db, err := database.Connect(cfg, true)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}

	rc, err := pkgredis.Connect(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}

	if cfg.IsDev() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))

	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}
	if len(cfg.AllowedOrigins) > 0 && !cfg.IsDev() {
		patterns := cfg.AllowedOrigins
		corsConfig.AllowOriginFunc = func(origin string) bool {
			host := extractOriginHost(origin)
			for _, pattern := range patterns {
				if matchOriginPattern(pattern, host) {
					return true
				}
			}
			return false
		}
	} else {
		corsConfig.AllowOriginFunc = func(origin string) bool { return true }
	}
	router.Use(cors.New(corsConfig))

	// Run pipeline: stores, breaker, admission, gateways, queue, executor.
	runStore := ai.NewRunStore(db)
	outputStore := ai.NewOutputStore(db)
	documentStore := ai.NewDocumentStore(db)
	settings := ai.NewSettingsResolver(ai.NewSettingsStore(db))
	breaker := ai.NewCircuitBreaker(
		ai.NewRedisBreakerStore(rc),
		cfg.AI.BreakerFailureThreshold,
		cfg.AI.BreakerCooldown(),
	)
	admission := ai.NewAdmissionController(runStore, breaker)
	gateways := ai.NewGatewayFactory(cfg.AI, box)
	queue := taskqueue.New(rc)
	executor := ai.NewExecutor(runStore, outputStore, documentStore, settings, admission, breaker, gateways, cfg.AI, logger)
	worker := taskqueue.NewWorker(queue, executor.Execute, cfg.AI.QueueWorkers, logger)

	ctx, cancel := context.WithCancel(context.Background())
	go worker.Run(ctx)

	app := &App{cfg: cfg, router: router, db: db, worker: worker, logger: logger, cancel: cancel}
	app.registerRoutes(rc, box, runStore, outputStore, settings, gateways, queue)

	return app, nil
}

// Addr returns the listen address.
func (a *App) Addr() string { return fmt.Sprintf(":%d", a.cfg.Port) }

// Router returns the HTTP handler.
func (a *App) Router() http.Handler { return a.router }

// Shutdown stops the worker pool.
func (a *App) Shutdown() { a.cancel() }
