package main

import (
	"context"
	"fmt"

	"github.com/mx-space/landing/internal/config"
	"github.com/mx-space/landing/internal/database"
	"github.com/mx-space/landing/internal/modules/content/section"
	"github.com/mx-space/landing/internal/pkg/kv"
	"github.com/mx-space/landing/internal/pkg/kv/gormkv"
	"github.com/mx-space/landing/internal/pkg/kv/rediskv"
	pkgredis "github.com/mx-space/landing/internal/pkg/redis"
	"gorm.io/gorm"
)

// openKV opens the storage backend named by cfg. Tests replace it.
var openKV = func(ctx context.Context, cfg *config.AppConfig) (kv.Store, func(), error) {
	switch cfg.Storage.Driver {
	case config.StorageRedis:
		rc, err := pkgredis.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return rediskv.New(rc.Raw()), func() { _ = rc.Close() }, nil
	case config.StorageMemory:
		return nil, nil, fmt.Errorf("storage.driver memory keeps no data outside the server process")
	default:
		db, err := openDB(cfg)
		if err != nil {
			return nil, nil, err
		}
		return gormkv.New(db), func() { _ = database.Close(db) }, nil
	}
}

// openDB connects and migrates. Tests replace it.
var openDB = func(cfg *config.AppConfig) (*gorm.DB, error) {
	return database.Connect(cfg, true)
}

func loadConfig() (*config.AppConfig, error) {
	return config.Load(configPath)
}

func openStore(ctx context.Context) (*section.Store, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	store, closeFn, err := openKV(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s storage: %w", cfg.Storage.Driver, err)
	}
	s := section.NewStore(store, section.WithKey(cfg.Storage.Key), section.WithLogger(logger))
	if err := s.Load(ctx); err != nil {
		closeFn()
		return nil, nil, err
	}
	return s, closeFn, nil
}
