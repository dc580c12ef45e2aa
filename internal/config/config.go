package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Supported database drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverDynamo   = "dynamo"
	DriverMemory   = "memory"
)

// maxPresignTTL is the longest lifetime S3 accepts for a presigned link
const maxPresignTTL = 7 * 24 * time.Hour

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig   `yaml:"server"`
	Database  DatabaseConfig `yaml:"database"`
	AWS       AWSConfig      `yaml:"aws"`
	JWT       JWTConfig      `yaml:"jwt"`
	Log       LogConfig      `yaml:"log"`
	Feed      RetryConfig    `yaml:"feed"`
	Decisions RetryConfig    `yaml:"decisions"`
	Photos    PhotosConfig   `yaml:"photos"`
	APNS      APNSConfig     `yaml:"apns"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            int           `yaml:"port"`
	Host            string        `yaml:"host"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
	// Path is the sqlite database file
	Path string `yaml:"path"`
	// Table is the DynamoDB table
	Table string `yaml:"table"`
}

// AWSConfig holds AWS configuration shared by S3 and DynamoDB
type AWSConfig struct {
	Region         string `yaml:"region"`
	S3Bucket       string `yaml:"s3_bucket"`
	AccessKey      string `yaml:"access_key"`
	SecretKey      string `yaml:"secret_key"`
	Endpoint       string `yaml:"endpoint"`
	PublicBaseURL  string `yaml:"public_base_url"`
	UsePathStyle   bool   `yaml:"use_path_style"`
	DynamoEndpoint string `yaml:"dynamo_endpoint"`
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret string        `yaml:"secret"`
	TTL    time.Duration `yaml:"ttl"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// RetryConfig bounds the retries around store calls
type RetryConfig struct {
	RetryAttempts uint64        `yaml:"retry_attempts"`
	RetryBase     time.Duration `yaml:"retry_base"`
	RetryMax      time.Duration `yaml:"retry_max"`
}

// PhotosConfig holds upload limits and how photo links are handed out
type PhotosConfig struct {
	MaxBytes int64 `yaml:"max_bytes"`
	// PresignTTL, when set, serves photos through presigned GET links of this lifetime.
	PresignTTL time.Duration `yaml:"presign_ttl"`
}

// APNSConfig enables Apple push when KeyFile is set
type APNSConfig struct {
	KeyFile    string `yaml:"key_file"`
	KeyID      string `yaml:"key_id"`
	TeamID     string `yaml:"team_id"`
	Topic      string `yaml:"topic"`
	Production bool   `yaml:"production"`
}

// Enabled reports whether push is configured
func (c APNSConfig) Enabled() bool {
	return c.KeyFile != ""
}

// Load reads configuration from a YAML file, applies APP_* overrides and defaults
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes YAML configuration
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := map[string]*string{
		"APP_DATABASE_DRIVER":   &c.Database.Driver,
		"APP_DATABASE_HOST":     &c.Database.Host,
		"APP_DATABASE_PASSWORD": &c.Database.Password,
		"APP_DATABASE_PATH":     &c.Database.Path,
		"APP_JWT_SECRET":        &c.JWT.Secret,
		"APP_AWS_ACCESS_KEY":    &c.AWS.AccessKey,
		"APP_AWS_SECRET_KEY":    &c.AWS.SecretKey,
		"APP_LOG_LEVEL":         &c.Log.Level,
	}
	for name, dst := range str {
		if v, ok := lookup(name); ok {
			*dst = v
		}
	}

	if v, ok := lookup("APP_SERVER_PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid APP_SERVER_PORT %q: %w", v, err)
		}
		c.Server.Port = port
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 15 * time.Second
	}
	if len(c.Server.AllowedOrigins) == 0 {
		c.Server.AllowedOrigins = []string{"*"}
	}
	if c.Database.Driver == "" {
		c.Database.Driver = DriverPostgres
	}
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Database.Path == "" {
		c.Database.Path = "swipematch.db"
	}
	if c.JWT.TTL == 0 {
		c.JWT.TTL = 365 * 24 * time.Hour
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	c.Feed.applyDefaults()
	c.Decisions.applyDefaults()
	if c.Photos.MaxBytes == 0 {
		c.Photos.MaxBytes = 10 << 20
	}
}

func (r *RetryConfig) applyDefaults() {
	if r.RetryAttempts == 0 {
		r.RetryAttempts = 3
	}
	if r.RetryBase == 0 {
		r.RetryBase = 50 * time.Millisecond
	}
	if r.RetryMax == 0 {
		r.RetryMax = time.Second
	}
}

// Validate rejects configurations the server cannot start with
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d is out of range", c.Server.Port))
	}
	if strings.TrimSpace(c.JWT.Secret) == "" {
		errs = append(errs, errors.New("jwt.secret is required"))
	}

	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite, DriverMemory:
	case DriverDynamo:
		if c.Database.Table == "" {
			errs = append(errs, errors.New("database.table is required for the dynamo driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown database.driver %q", c.Database.Driver))
	}

	if c.Photos.PresignTTL < 0 || c.Photos.PresignTTL > maxPresignTTL {
		errs = append(errs, fmt.Errorf("photos.presign_ttl %s must be between 0 and %s", c.Photos.PresignTTL, maxPresignTTL))
	}

	if c.APNS.Enabled() && (c.APNS.KeyID == "" || c.APNS.TeamID == "" || c.APNS.Topic == "") {
		errs = append(errs, errors.New("apns.key_id, apns.team_id and apns.topic are required with apns.key_file"))
	}

	return errors.Join(errs...)
}

// DSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}
