// Package config loads the nutriplan YAML configuration and applies
// NUTRIPLAN_* environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"nutriplan/internal/blob"
	"nutriplan/internal/persistence"
)

// Config holds all nutriplan configuration.
type Config struct {
	Storage    StorageConfig `yaml:"storage"`
	Logging    LoggingConfig `yaml:"logging"`
	Export     ExportConfig  `yaml:"export"`
	Watch      WatchConfig   `yaml:"watch"`
	SampleData bool          `yaml:"sample_data"`
}

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	Driver         string     `yaml:"driver"` // memory, sqlite, postgres, blob
	SQLitePath     string     `yaml:"sqlite_path"`
	PostgresDSN    string     `yaml:"postgres_dsn"`
	Blob           BlobConfig `yaml:"blob"`
	PersistTimeout string     `yaml:"persist_timeout"`
}

// BlobConfig configures the blob store used by the blob persistence driver
// and by exports.
type BlobConfig struct {
	Driver string   `yaml:"driver"` // fs, s3, memory
	FSRoot string   `yaml:"fs_root"`
	Prefix string   `yaml:"prefix"`
	S3     S3Config `yaml:"s3"`
}

// S3Config configures an S3 or MinIO bucket.
type S3Config struct {
	Bucket          string `yaml:"bucket"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	PathStyle       bool   `yaml:"path_style"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// ExportConfig configures published exports.
type ExportConfig struct {
	Prefix        string `yaml:"prefix"`
	PresignExpiry string `yaml:"presign_expiry"`
}

// WatchConfig configures the recipe import watcher.
type WatchConfig struct {
	Dir      string `yaml:"dir"`
	Debounce string `yaml:"debounce"`
}

// LogLevels lists the accepted logging levels.
var LogLevels = []string{"debug", "info", "warn", "error"}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	dir := defaultDataDir()
	return &Config{
		Storage: StorageConfig{
			Driver:     string(persistence.DriverSQLite),
			SQLitePath: filepath.Join(dir, "nutriplan.db"),
			Blob: BlobConfig{
				Driver: string(blob.DriverFilesystem),
				FSRoot: filepath.Join(dir, "blobs"),
				Prefix: "state/",
				S3:     S3Config{Region: "us-east-1"},
			},
			PersistTimeout: "10s",
		},
		Logging: LoggingConfig{Level: "info"},
		Export:  ExportConfig{Prefix: "exports/", PresignExpiry: "15m"},
		Watch:   WatchConfig{Dir: filepath.Join(dir, "inbox"), Debounce: "250ms"},
		// Empty stores start with the bundled sample data unless disabled.
		SampleData: true,
	}
}

func defaultDataDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "nutriplan"
	}
	return filepath.Join(dir, "nutriplan")
}

// DefaultPath returns the config file location under the user config dir.
func DefaultPath() string {
	return filepath.Join(defaultDataDir(), "config.yaml")
}

// Load reads path over the defaults. A missing file yields the defaults.
// Environment overrides are applied in both cases.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration as YAML, creating the directory.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() error {
	strs := map[string]*string{
		"NUTRIPLAN_STORAGE_DRIVER":   &c.Storage.Driver,
		"NUTRIPLAN_SQLITE_PATH":      &c.Storage.SQLitePath,
		"NUTRIPLAN_POSTGRES_DSN":     &c.Storage.PostgresDSN,
		"NUTRIPLAN_PERSIST_TIMEOUT":  &c.Storage.PersistTimeout,
		"NUTRIPLAN_BLOB_DRIVER":      &c.Storage.Blob.Driver,
		"NUTRIPLAN_BLOB_FS_ROOT":     &c.Storage.Blob.FSRoot,
		"NUTRIPLAN_BLOB_PREFIX":      &c.Storage.Blob.Prefix,
		"NUTRIPLAN_BLOB_S3_BUCKET":   &c.Storage.Blob.S3.Bucket,
		"NUTRIPLAN_BLOB_S3_REGION":   &c.Storage.Blob.S3.Region,
		"NUTRIPLAN_BLOB_S3_ENDPOINT": &c.Storage.Blob.S3.Endpoint,
		"NUTRIPLAN_LOG_LEVEL":        &c.Logging.Level,
		"NUTRIPLAN_WATCH_DIR":        &c.Watch.Dir,
	}
	for env, dst := range strs {
		if v := os.Getenv(env); v != "" {
			*dst = v
		}
	}
	// The AWS SDK reads these too, but config files may set them per bucket.
	if v := os.Getenv("AWS_ACCESS_KEY_ID"); v != "" && c.Storage.Blob.S3.AccessKeyID == "" {
		c.Storage.Blob.S3.AccessKeyID = v
		c.Storage.Blob.S3.SecretAccessKey = os.Getenv("AWS_SECRET_ACCESS_KEY")
	}

	bools := map[string]*bool{
		"NUTRIPLAN_BLOB_S3_PATH_STYLE": &c.Storage.Blob.S3.PathStyle,
		"NUTRIPLAN_SAMPLE_DATA":        &c.SampleData,
	}
	for env, dst := range bools {
		v := os.Getenv(env)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", env, err)
		}
		*dst = b
	}
	return nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if !slices.Contains(persistence.Drivers, persistence.Driver(c.Storage.Driver)) {
		return fmt.Errorf("invalid storage driver: %q (valid: %v)", c.Storage.Driver, persistence.Drivers)
	}
	switch persistence.Driver(c.Storage.Driver) {
	case persistence.DriverPostgres:
		if c.Storage.PostgresDSN == "" {
			return fmt.Errorf("postgres driver requires storage.postgres_dsn (or NUTRIPLAN_POSTGRES_DSN)")
		}
	case persistence.DriverSQLite:
		if c.Storage.SQLitePath == "" {
			return fmt.Errorf("sqlite driver requires storage.sqlite_path")
		}
	}
	switch blob.Driver(c.Storage.Blob.Driver) {
	case blob.DriverFilesystem, blob.DriverMemory:
	case blob.DriverS3:
		if c.Storage.Blob.S3.Bucket == "" {
			return fmt.Errorf("s3 blob driver requires storage.blob.s3.bucket")
		}
	default:
		return fmt.Errorf("invalid blob driver: %q", c.Storage.Blob.Driver)
	}
	if !slices.Contains(LogLevels, c.Logging.Level) {
		return fmt.Errorf("invalid log level: %q (valid: %v)", c.Logging.Level, LogLevels)
	}
	for name, v := range map[string]string{
		"storage.persist_timeout": c.Storage.PersistTimeout,
		"export.presign_expiry":   c.Export.PresignExpiry,
		"watch.debounce":          c.Watch.Debounce,
	} {
		if _, err := parseDuration(v); err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
	}
	return nil
}

// Persistence converts the storage section into a persistence.Config.
func (c *Config) Persistence() persistence.Config {
	return persistence.Config{
		Driver:      persistence.Driver(c.Storage.Driver),
		SQLitePath:  c.Storage.SQLitePath,
		PostgresDSN: c.Storage.PostgresDSN,
		Blob:        c.BlobStore(),
		BlobPrefix:  c.Storage.Blob.Prefix,
	}
}

// BlobStore converts the blob section into a blob.Config.
func (c *Config) BlobStore() blob.Config {
	s3 := c.Storage.Blob.S3
	return blob.Config{
		Driver: blob.Driver(c.Storage.Blob.Driver),
		FSRoot: c.Storage.Blob.FSRoot,
		S3: blob.S3Config{
			Region:          s3.Region,
			Bucket:          s3.Bucket,
			Endpoint:        s3.Endpoint,
			AccessKeyID:     s3.AccessKeyID,
			SecretAccessKey: s3.SecretAccessKey,
			PathStyle:       s3.PathStyle,
		},
	}
}

// PersistTimeout returns the per-write snapshot timeout.
func (c *Config) PersistTimeout() time.Duration { return mustDuration(c.Storage.PersistTimeout) }

// PresignExpiry returns the lifetime of presigned export URLs.
func (c *Config) PresignExpiry() time.Duration { return mustDuration(c.Export.PresignExpiry) }

// WatchDebounce returns the quiet period before a changed file is imported.
func (c *Config) WatchDebounce() time.Duration { return mustDuration(c.Watch.Debounce) }

func parseDuration(v string) (time.Duration, error) {
	if v == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %s", v)
	}
	return d, nil
}

// mustDuration returns 0 for unparsable values; Validate reports them.
func mustDuration(v string) time.Duration {
	d, _ := parseDuration(v)
	return d
}
