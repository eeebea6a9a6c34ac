package config

import "time"

const (
	// DefaultConfigPath is used when --config is not provided.
	DefaultConfigPath = "config.yml"
	defaultPort       = 2333
	defaultEnv        = "development"
	defaultDBHost     = "127.0.0.1"
	defaultDBPort     = 3306
	defaultDBUser     = "root"
	defaultDBPassword = "password"
	defaultDBName     = "landing"
	defaultDBCharset  = "utf8mb4"
	defaultDBLoc      = "Local"
	defaultRedisHost  = "localhost"
	defaultRedisPort  = 6379
	defaultRedisDB    = 0

	StorageMemory = "memory"
	StorageMySQL  = "mysql"
	StorageRedis  = "redis"

	defaultStorageKey    = "landing.sections"
	defaultPageTitle     = "Landing"
	defaultFetchTimeout  = 10 * time.Second
	defaultCacheTTL      = 5 * time.Minute
	defaultCacheMaxBytes = 32 << 20
	defaultBackupKeep    = 30
)
