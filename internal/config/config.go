package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// AppConfig holds runtime startup configuration loaded from YAML.
type AppConfig struct {
	Port           int
	Env            string
	Database       DatabaseRuntimeConfig
	Redis          RedisRuntimeConfig
	Storage        StorageConfig
	Paths          RuntimePathsConfig
	AllowedOrigins []string
	JWTSecret      string
	Timezone       string
	Page           PageConfig
	Charts         ChartsConfig
	Backup         BackupConfig

	DSN      string
	RedisURL string
}

type DatabaseRuntimeConfig struct {
	DSN       string
	Host      string
	Port      int
	User      string
	Password  string
	Name      string
	Charset   string
	ParseTime bool
	Loc       string
	Params    map[string]string
}

type RedisRuntimeConfig struct {
	// Enable connects redis even when sections are not stored there; it turns
	// on rate limiting and idempotence keys.
	Enable   bool
	URL      string
	Host     string
	Port     int
	Username string
	Password string
	DB       int
	TLS      bool
	Params   map[string]string
}

// StorageConfig selects where the section collection blob lives.
type StorageConfig struct {
	Driver string
	Key    string
}

type RuntimePathsConfig struct {
	Logs    string
	Backups string
}

type FixedSectionConfig struct {
	ID     string `yaml:"id"`
	Name   string `yaml:"name"`
	Anchor string `yaml:"anchor"`
}

type PageConfig struct {
	Title         string
	// FixedSections replaces the stock fixed blocks when non-nil. An empty
	// list renders only dynamic sections.
	FixedSections []FixedSectionConfig
}

type ChartsConfig struct {
	FetchTimeout  time.Duration
	CacheTTL      time.Duration
	CacheMaxBytes int64
}

type BackupConfig struct {
	// Interval of zero disables scheduled snapshots.
	Interval time.Duration
	Keep     int
	S3       S3Config
}

type S3Config struct {
	Enable          bool
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	PathStyle       bool
	Path            string
}

type rawAppConfig struct {
	Port           int               `yaml:"port"`
	Env            string            `yaml:"env"`
	DSN            string            `yaml:"dsn"`
	RedisURL       string            `yaml:"redis_url"`
	Database       rawDatabaseConfig `yaml:"database"`
	Redis          rawRedisConfig    `yaml:"redis"`
	Storage        rawStorageConfig  `yaml:"storage"`
	Paths          rawPathsConfig    `yaml:"paths"`
	AllowedOrigins []string          `yaml:"allowed_origins"`
	JWTSecret      string            `yaml:"jwt_secret"`
	Timezone       string            `yaml:"timezone"`
	Page           rawPageConfig     `yaml:"page"`
	Charts         rawChartsConfig   `yaml:"charts"`
	Backup         rawBackupConfig   `yaml:"backup"`
}

type rawDatabaseConfig struct {
	DSN       string            `yaml:"dsn"`
	Host      string            `yaml:"host"`
	Port      int               `yaml:"port"`
	User      string            `yaml:"user"`
	Password  string            `yaml:"password"`
	Name      string            `yaml:"name"`
	Charset   string            `yaml:"charset"`
	ParseTime *bool             `yaml:"parse_time"`
	Loc       string            `yaml:"loc"`
	Params    map[string]string `yaml:"params"`
}

type rawRedisConfig struct {
	Enable   *bool             `yaml:"enable"`
	URL      string            `yaml:"url"`
	Host     string            `yaml:"host"`
	Port     int               `yaml:"port"`
	Username string            `yaml:"username"`
	Password string            `yaml:"password"`
	DB       *int              `yaml:"db"`
	TLS      *bool             `yaml:"tls"`
	Params   map[string]string `yaml:"params"`
}

type rawStorageConfig struct {
	Driver string `yaml:"driver"`
	Key    string `yaml:"key"`
}

type rawPathsConfig struct {
	Logs    string `yaml:"logs"`
	Backups string `yaml:"backups"`
}

type rawPageConfig struct {
	Title         string                `yaml:"title"`
	FixedSections *[]FixedSectionConfig `yaml:"fixed_sections"`
}

type rawChartsConfig struct {
	FetchTimeout  time.Duration `yaml:"fetch_timeout"`
	CacheTTL      time.Duration `yaml:"cache_ttl"`
	CacheMaxBytes int64         `yaml:"cache_max_bytes"`
}

type rawBackupConfig struct {
	Interval time.Duration `yaml:"interval"`
	Keep     *int          `yaml:"keep"`
	S3       rawS3Config   `yaml:"s3"`
}

type rawS3Config struct {
	Enable          *bool  `yaml:"enable"`
	Bucket          string `yaml:"bucket"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	PathStyle       bool   `yaml:"path_style"`
	Path            string `yaml:"path"`
}

// Load reads configPath. A missing default config file yields the defaults;
// a missing explicit path is an error.
func Load(configPath string) (*AppConfig, error) {
	path := strings.TrimSpace(configPath)
	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if !explicit && os.IsNotExist(err) {
			cfg := defaultAppConfig()
			return &cfg, nil
		}
		return nil, fmt.Errorf("read config file %q: %w", path, err)
	}
	cfg, err := Parse(content)
	if err != nil {
		return nil, fmt.Errorf("config %q: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML content onto the defaults and validates the result.
func Parse(content []byte) (*AppConfig, error) {
	cfg := defaultAppConfig()
	raw := rawAppConfig{}
	decoder := yaml.NewDecoder(bytes.NewReader(content))
	decoder.KnownFields(true)
	if err := decoder.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse: %w", err)
	}

	applyRawAppConfig(&cfg, raw)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports the first out-of-range or unknown setting.
func (c *AppConfig) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d, expected 1-65535", c.Port)
	}
	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("invalid database.port %d, expected 1-65535", c.Database.Port)
	}
	if c.Redis.Port < 1 || c.Redis.Port > 65535 {
		return fmt.Errorf("invalid redis.port %d, expected 1-65535", c.Redis.Port)
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("invalid redis.db %d, expected >= 0", c.Redis.DB)
	}
	switch c.Storage.Driver {
	case StorageMemory, StorageMySQL, StorageRedis:
	default:
		return fmt.Errorf("invalid storage.driver %q, expected memory, mysql or redis", c.Storage.Driver)
	}
	for i, f := range c.Page.FixedSections {
		if f.ID == "" || f.Name == "" {
			return fmt.Errorf("page.fixed_sections[%d] needs id and name", i)
		}
	}
	if c.Charts.FetchTimeout < 0 || c.Charts.CacheTTL < 0 || c.Charts.CacheMaxBytes < 0 {
		return fmt.Errorf("charts settings must not be negative")
	}
	if c.Backup.Interval < 0 || c.Backup.Keep < 0 {
		return fmt.Errorf("backup.interval and backup.keep must not be negative")
	}
	if s3 := c.Backup.S3; s3.Enable && (s3.Bucket == "" || s3.Region == "" || s3.AccessKeyID == "" || s3.SecretAccessKey == "") {
		return fmt.Errorf("backup.s3 requires bucket, region, access_key_id and secret_access_key")
	}
	if c.Timezone != "" {
		if _, err := ParseTimezone(c.Timezone); err != nil {
			return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
		}
	}
	return nil
}

// IsProduction reports whether env is production.
func (c *AppConfig) IsProduction() bool { return c.Env == "production" }

func defaultAppConfig() AppConfig {
	cfg := AppConfig{
		Port: defaultPort,
		Env:  defaultEnv,
		Database: DatabaseRuntimeConfig{
			Host:      defaultDBHost,
			Port:      defaultDBPort,
			User:      defaultDBUser,
			Password:  defaultDBPassword,
			Name:      defaultDBName,
			Charset:   defaultDBCharset,
			ParseTime: true,
			Loc:       defaultDBLoc,
		},
		Redis: RedisRuntimeConfig{
			Host: defaultRedisHost,
			Port: defaultRedisPort,
			DB:   defaultRedisDB,
		},
		Storage: StorageConfig{Driver: StorageMySQL, Key: defaultStorageKey},
		Page:    PageConfig{Title: defaultPageTitle},
		Charts: ChartsConfig{
			FetchTimeout:  defaultFetchTimeout,
			CacheTTL:      defaultCacheTTL,
			CacheMaxBytes: defaultCacheMaxBytes,
		},
		Backup: BackupConfig{Keep: defaultBackupKeep},
	}
	cfg.Paths = normalizeRuntimePaths(cfg.Paths)
	cfg.DSN = cfg.Database.DSNValue()
	cfg.RedisURL = cfg.Redis.URLValue()
	return cfg
}

func applyRawAppConfig(cfg *AppConfig, raw rawAppConfig) {
	if raw.Port != 0 {
		cfg.Port = raw.Port
	}
	if v := strings.TrimSpace(raw.Env); v != "" {
		cfg.Env = v
	}
	cfg.Database = applyRawDatabaseConfig(cfg.Database, raw)
	cfg.Redis = applyRawRedisConfig(cfg.Redis, raw)

	if v := strings.ToLower(strings.TrimSpace(raw.Storage.Driver)); v != "" {
		cfg.Storage.Driver = v
	}
	if v := strings.TrimSpace(raw.Storage.Key); v != "" {
		cfg.Storage.Key = v
	}
	if cfg.Storage.Driver == StorageRedis {
		cfg.Redis.Enable = true
	}

	if v := strings.TrimSpace(raw.Paths.Logs); v != "" {
		cfg.Paths.Logs = v
	}
	if v := strings.TrimSpace(raw.Paths.Backups); v != "" {
		cfg.Paths.Backups = v
	}
	if raw.AllowedOrigins != nil {
		cfg.AllowedOrigins = normalizeOrigins(raw.AllowedOrigins)
	}
	if v := strings.TrimSpace(raw.JWTSecret); v != "" {
		cfg.JWTSecret = v
	}
	if v := strings.TrimSpace(raw.Timezone); v != "" {
		cfg.Timezone = v
	}

	if v := strings.TrimSpace(raw.Page.Title); v != "" {
		cfg.Page.Title = v
	}
	if raw.Page.FixedSections != nil {
		cfg.Page.FixedSections = normalizeFixedSections(*raw.Page.FixedSections)
	}

	if raw.Charts.FetchTimeout != 0 {
		cfg.Charts.FetchTimeout = raw.Charts.FetchTimeout
	}
	if raw.Charts.CacheTTL != 0 {
		cfg.Charts.CacheTTL = raw.Charts.CacheTTL
	}
	if raw.Charts.CacheMaxBytes != 0 {
		cfg.Charts.CacheMaxBytes = raw.Charts.CacheMaxBytes
	}

	cfg.Backup.Interval = raw.Backup.Interval
	if raw.Backup.Keep != nil {
		cfg.Backup.Keep = *raw.Backup.Keep
	}
	cfg.Backup.S3 = applyRawS3Config(raw.Backup.S3)

	cfg.DSN = cfg.Database.DSNValue()
	cfg.RedisURL = cfg.Redis.URLValue()
	cfg.Paths = normalizeRuntimePaths(cfg.Paths)
	cfg.Env = normalizeEnv(cfg.Env)
}

func applyRawDatabaseConfig(current DatabaseRuntimeConfig, raw rawAppConfig) DatabaseRuntimeConfig {
	cfg := current
	if v := strings.TrimSpace(raw.Database.DSN); v != "" {
		cfg.DSN = v
	}
	if v := strings.TrimSpace(raw.DSN); v != "" {
		cfg.DSN = v
	}
	if v := strings.TrimSpace(raw.Database.Host); v != "" {
		cfg.Host = v
	}
	if raw.Database.Port != 0 {
		cfg.Port = raw.Database.Port
	}
	if v := strings.TrimSpace(raw.Database.User); v != "" {
		cfg.User = v
	}
	if v := strings.TrimSpace(raw.Database.Password); v != "" {
		cfg.Password = v
	}
	if v := strings.TrimSpace(raw.Database.Name); v != "" {
		cfg.Name = v
	}
	if v := strings.TrimSpace(raw.Database.Charset); v != "" {
		cfg.Charset = v
	}
	if raw.Database.ParseTime != nil {
		cfg.ParseTime = *raw.Database.ParseTime
	}
	if v := strings.TrimSpace(raw.Database.Loc); v != "" {
		cfg.Loc = v
	}
	if raw.Database.Params != nil {
		cfg.Params = copyStringMap(raw.Database.Params)
	}
	return cfg
}

func applyRawRedisConfig(current RedisRuntimeConfig, raw rawAppConfig) RedisRuntimeConfig {
	cfg := current
	if raw.Redis.Enable != nil {
		cfg.Enable = *raw.Redis.Enable
	}
	if v := strings.TrimSpace(raw.Redis.URL); v != "" {
		cfg.URL = normalizeRedisRawURL(v)
	}
	if v := strings.TrimSpace(raw.RedisURL); v != "" {
		cfg.URL = normalizeRedisRawURL(v)
	}
	if v := strings.TrimSpace(raw.Redis.Host); v != "" {
		cfg.Host = v
	}
	if raw.Redis.Port != 0 {
		cfg.Port = raw.Redis.Port
	}
	if v := strings.TrimSpace(raw.Redis.Username); v != "" {
		cfg.Username = v
	}
	if v := strings.TrimSpace(raw.Redis.Password); v != "" {
		cfg.Password = v
	}
	if raw.Redis.DB != nil {
		cfg.DB = *raw.Redis.DB
	}
	if raw.Redis.TLS != nil {
		cfg.TLS = *raw.Redis.TLS
	}
	if raw.Redis.Params != nil {
		cfg.Params = copyStringMap(raw.Redis.Params)
	}
	return cfg
}

func applyRawS3Config(raw rawS3Config) S3Config {
	cfg := S3Config{
		Bucket:          strings.TrimSpace(raw.Bucket),
		Region:          strings.TrimSpace(raw.Region),
		Endpoint:        strings.TrimSpace(raw.Endpoint),
		AccessKeyID:     strings.TrimSpace(raw.AccessKeyID),
		SecretAccessKey: strings.TrimSpace(raw.SecretAccessKey),
		PathStyle:       raw.PathStyle,
		Path:            strings.TrimSpace(raw.Path),
	}
	if raw.Enable != nil {
		cfg.Enable = *raw.Enable
	} else {
		cfg.Enable = cfg.Bucket != ""
	}
	return cfg
}
