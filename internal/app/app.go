package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mx-space/landing/internal/config"
	"github.com/mx-space/landing/internal/database"
	"github.com/mx-space/landing/internal/modules/auth"
	"github.com/mx-space/landing/internal/modules/backup"
	"github.com/mx-space/landing/internal/modules/content/section"
	"github.com/mx-space/landing/internal/modules/processing/chart"
	"github.com/mx-space/landing/internal/modules/processing/render"
	"github.com/mx-space/landing/internal/pkg/cache"
	pkgcron "github.com/mx-space/landing/internal/pkg/cron"
	"github.com/mx-space/landing/internal/pkg/kv"
	"github.com/mx-space/landing/internal/pkg/kv/gormkv"
	"github.com/mx-space/landing/internal/pkg/kv/rediskv"
	pkgredis "github.com/mx-space/landing/internal/pkg/redis"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App holds all application dependencies.
type App struct {
	cfg    *config.AppConfig
	router *gin.Engine
	db     *gorm.DB
	redis  *pkgredis.Client
	logger *zap.Logger
	cancel context.CancelFunc
	sched  *pkgcron.Scheduler
	charts *cache.Cache[[][]string]
}

// components are the services the router mounts.
type components struct {
	store    *section.Store
	factory  *section.Factory
	dispatch *render.Dispatcher
	fetcher  *chart.Fetcher
	auth     *auth.Service
	backups  *backup.Service
	sched    *pkgcron.Scheduler
	db       *gorm.DB
	redis    *pkgredis.Client
}

// New initializes the application: config → DB → Redis → store → routes.
func New(logger *zap.Logger, cfg *config.AppConfig) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := applyRuntimeSettings(cfg, logger); err != nil {
		return nil, err
	}

	db, err := database.Connect(cfg, true)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}

	a := &App{cfg: cfg, db: db, logger: logger}
	if cfg.Redis.Enable {
		rc, err := pkgredis.Connect(context.Background(), cfg.RedisURL)
		if err != nil {
			_ = database.Close(db)
			return nil, fmt.Errorf("redis: %w", err)
		}
		a.redis = rc
	}

	storeOpts := []section.StoreOption{
		section.WithKey(cfg.Storage.Key),
		section.WithLogger(logger),
	}
	if cfg.Page.FixedSections != nil {
		storeOpts = append(storeOpts, section.WithFixedSections(fixedSections(cfg.Page.FixedSections)))
	}
	store := section.NewStore(a.kvStore(), storeOpts...)
	if err := store.Load(context.Background()); err != nil {
		a.close()
		return nil, fmt.Errorf("load sections: %w", err)
	}

	fetcherOpts := []chart.FetcherOption{
		chart.WithHTTPClient(chart.NewHTTPClient(cfg.Charts.FetchTimeout)),
		chart.WithLogger(logger),
	}
	if cfg.Charts.CacheMaxBytes > 0 {
		rows, err := cache.New[[][]string](cfg.Charts.CacheMaxBytes)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("chart cache: %w", err)
		}
		a.charts = rows
		fetcherOpts = append(fetcherOpts, chart.WithCache(rows, cfg.Charts.CacheTTL))
	}

	authSvc := auth.NewService(auth.NewGormRepository(db), auth.WithLogger(logger))

	backupOpts := []backup.Option{
		backup.WithDir(cfg.Paths.Backups),
		backup.WithKeep(cfg.Backup.Keep),
		backup.WithLogger(logger),
	}
	if s3cfg := cfg.Backup.S3; s3cfg.Enable {
		uploader, err := backup.NewS3Uploader(backup.S3Options{
			Bucket:          s3cfg.Bucket,
			Region:          s3cfg.Region,
			Endpoint:        s3cfg.Endpoint,
			AccessKeyID:     s3cfg.AccessKeyID,
			SecretAccessKey: s3cfg.SecretAccessKey,
			PathStyle:       s3cfg.PathStyle,
		})
		if err != nil {
			a.close()
			return nil, fmt.Errorf("backup s3: %w", err)
		}
		backupOpts = append(backupOpts, backup.WithUploader(uploader, s3cfg.Path))
	}
	backups := backup.NewService(store, backupOpts...)

	a.sched = pkgcron.New(pkgcron.WithLogger(logger))
	registerCronJobs(a.sched, cfg, backups, authSvc, logger)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	a.router = newRouter(cfg, logger, components{
		store:    store,
		factory:  section.NewFactory(),
		dispatch: render.NewDispatcher(logger),
		fetcher:  chart.NewFetcher(fetcherOpts...),
		auth:     authSvc,
		backups:  backups,
		sched:    a.sched,
		db:       db,
		redis:    a.redis,
	})

	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	a.sched.Start(ctx)
	return a, nil
}

func (a *App) kvStore() kv.Store {
	switch a.cfg.Storage.Driver {
	case config.StorageRedis:
		return rediskv.New(a.redis.Raw())
	case config.StorageMemory:
		a.logger.Warn("storage.driver is memory, sections are lost on restart")
		return kv.NewMemory()
	default:
		return gormkv.New(a.db)
	}
}

// Addr returns the listen address.
func (a *App) Addr() string { return fmt.Sprintf(":%d", a.cfg.Port) }

// Router returns the HTTP handler.
func (a *App) Router() http.Handler { return a.router }

// Shutdown stops background jobs and releases connections.
func (a *App) Shutdown() {
	if a.cancel != nil {
		a.cancel()
	}
	if a.sched != nil {
		a.sched.Wait()
	}
	a.close()
}

func (a *App) close() {
	if a.charts != nil {
		a.charts.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("close redis", zap.Error(err))
		}
	}
	if err := database.Close(a.db); err != nil {
		a.logger.Warn("close database", zap.Error(err))
	}
}

var processStart = time.Now()
