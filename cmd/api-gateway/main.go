package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable-api/internal/handler"
	"github.com/noah-isme/sma-timetable-api/internal/repository"
	"github.com/noah-isme/sma-timetable-api/internal/scheduler"
	"github.com/noah-isme/sma-timetable-api/internal/service"
	"github.com/noah-isme/sma-timetable-api/pkg/cache"
	"github.com/noah-isme/sma-timetable-api/pkg/config"
	"github.com/noah-isme/sma-timetable-api/pkg/database"
	"github.com/noah-isme/sma-timetable-api/pkg/jobs"
	"github.com/noah-isme/sma-timetable-api/pkg/logger"
	"github.com/noah-isme/sma-timetable-api/pkg/storage"
)

// @title SMA Timetable API
// @version 1.0.0
// @description Timetable editor: rosters, editable weekly grids, automatic placement and exports.
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer db.Close()

	if err := database.EnsureSchema(ctx, db); err != nil {
		logr.Fatal("failed to apply schema", zap.Error(err))
	}

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, workspace cache disabled", zap.Error(err))
	} else {
		defer redisClient.Close()
	}

	app, err := buildApp(cfg, db, redisClient, logr)
	if err != nil {
		logr.Fatal("failed to build application", zap.Error(err))
	}
	app.start()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           newRouter(cfg, app, logr),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Error("server failed", zap.Error(err))
		}
	case <-ctx.Done():
		logr.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("could not stop server gracefully", zap.Error(err))
		_ = srv.Close()
	}
	app.stop()
	logr.Info("server stopped")
}

// application holds the wired services and handlers.
type application struct {
	cfg    *config.Config
	logger *zap.Logger

	metrics    *service.MetricsService
	tokens     *service.TokenService
	workspaces *service.WorkspaceService
	exports    *service.ExportService
	syncQueue  *jobs.Queue

	tutors     *handler.TutorHandler
	courses    *handler.CourseHandler
	sessions   *handler.SessionHandler
	blocked    *handler.BlockedHandler
	workspace  *handler.WorkspaceHandler
	templates  *handler.TemplateHandler
	export     *handler.ExportHandler
	monitoring *handler.MetricsHandler

	cleanupStop chan struct{}
}

func buildApp(cfg *config.Config, db *sqlx.DB, redisClient *redis.Client, logr *zap.Logger) (*application, error) {
	metrics := service.NewMetricsService()
	validate := service.NewValidator()

	var cacheRepo service.CacheRepository
	if redisClient != nil {
		cacheRepo = repository.NewCacheRepository(redisClient, logr)
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Editor.WorkspaceTTL, logr, cacheRepo != nil)

	tutorRepo := repository.NewTutorRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	blockedRepo := repository.NewBlockedRepository(db)
	templateRepo := repository.NewTemplateRepository(db)
	workspaceRepo := repository.NewWorkspaceRepository(db)

	roster := service.NewRosterLoader(tutorRepo, courseRepo, sessionRepo, blockedRepo, cacheSvc, cfg.Editor.RosterCacheTTL, logr)

	workspaces := service.NewWorkspaceService(workspaceRepo, templateRepo, roster, cacheSvc, metrics, service.WorkspaceConfig{
		DefaultColumns:   cfg.Editor.DefaultColumns,
		DefaultDuration:  cfg.Editor.SlotDuration,
		StartTime:        cfg.Editor.StartMinutes(),
		CacheTTL:         cfg.Editor.WorkspaceTTL,
		MaxWorkspaces:    cfg.Editor.MaxWorkspaces,
		SchedulerEnabled: cfg.Scheduler.Enabled,
		Seed:             cfg.Scheduler.Seed,
		Scheduler: scheduler.Config{
			DefaultMaxPeriodsPerDay: cfg.Scheduler.DefaultMaxPeriodsPerDay,
			TrialMultiplier:         cfg.Scheduler.TrialMultiplier,
		},
	}, validate, logr)

	app := &application{
		cfg:         cfg,
		logger:      logr,
		metrics:     metrics,
		tokens:      service.NewTokenService(service.TokenConfig{Secret: cfg.JWT.Secret, Issuer: cfg.JWT.Issuer}),
		workspaces:  workspaces,
		cleanupStop: make(chan struct{}),
	}

	if cfg.Sync.Enabled {
		worker := service.NewSyncWorker(workspaces, workspaceRepo, metrics, logr)
		app.syncQueue = jobs.NewQueue("workspace-sync", worker.Handle, jobs.QueueConfig{
			Workers:    cfg.Sync.Workers,
			BufferSize: cfg.Sync.QueueSize,
			MaxRetries: cfg.Sync.Retries,
			RetryDelay: cfg.Sync.RetryDelay,
			Logger:     logr,
			OnComplete: worker.OnComplete,
		})
	}

	files, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		return nil, fmt.Errorf("init export storage: %w", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
	app.exports = service.NewExportService(workspaces, files, signer, service.ExportConfig{
		APIPrefix: cfg.APIPrefix,
		DayLabels: cfg.Editor.DayLabels,
		ResultTTL: cfg.Exports.SignedURLTTL,
	}, validate, logr)

	app.tutors = handler.NewTutorHandler(service.NewTutorService(tutorRepo, roster, validate, logr))
	app.courses = handler.NewCourseHandler(service.NewCourseService(courseRepo, tutorRepo, roster, validate, logr))
	app.sessions = handler.NewSessionHandler(service.NewSessionService(sessionRepo, roster, validate, logr))
	app.blocked = handler.NewBlockedHandler(service.NewBlockedService(blockedRepo, roster, validate, logr))
	app.workspace = handler.NewWorkspaceHandler(workspaces)
	app.templates = handler.NewTemplateHandler(service.NewTemplateService(templateRepo, workspaces, validate, logr))
	app.export = handler.NewExportHandler(app.exports)

	checks := map[string]handler.Pinger{"postgres": db.PingContext}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}
	app.monitoring = handler.NewMetricsHandler(metrics, checks)

	return app, nil
}

// start launches the sync workers outside the signal context so queued
// writes drain through stop after the server has shut down.
func (a *application) start() {
	if a.syncQueue != nil {
		a.syncQueue.Start(context.Background())
		a.workspaces.AttachSync(a.syncQueue)
	}
	go a.cleanupExports()
}

func (a *application) stop() {
	close(a.cleanupStop)
	if a.syncQueue != nil {
		a.syncQueue.Stop()
	}
}

func (a *application) cleanupExports() {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-a.cleanupStop:
			return
		case <-ticker.C:
			removed, err := a.exports.Cleanup(0)
			if err != nil {
				a.logger.Warn("export cleanup failed", zap.Error(err))
				continue
			}
			if len(removed) > 0 {
				a.logger.Info("expired exports removed", zap.Int("count", len(removed)))
			}
		}
	}
}
