package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/tesseract-hub/onboarding-service/internal/storage"
)

// Config holds the application configuration
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Auth          AuthConfig          `mapstructure:"auth"`
	Storage       StorageConfig       `mapstructure:"storage"`
	Notifications NotificationsConfig `mapstructure:"notifications"`
	Verification  VerificationConfig  `mapstructure:"verification"`
	Mobile        MobileConfig        `mapstructure:"mobile"`
	NATS          NATSConfig          `mapstructure:"nats"`
	Cache         CacheConfig         `mapstructure:"cache"`
	Logging       LoggingConfig       `mapstructure:"logging"`
	CORS          CORSConfig          `mapstructure:"cors"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port         string `mapstructure:"port"`
	Host         string `mapstructure:"host"`
	Mode         string `mapstructure:"mode"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
	IdleTimeout  int    `mapstructure:"idle_timeout"`
	AdminURL     string `mapstructure:"admin_url"`
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Host         string `mapstructure:"host"`
	Port         string `mapstructure:"port"`
	Name         string `mapstructure:"name"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	SSLMode      string `mapstructure:"ssl_mode"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	MaxLifetime  int    `mapstructure:"max_lifetime"`
}

// AuthConfig holds token validation settings
type AuthConfig struct {
	JWTSecret  string   `mapstructure:"jwt_secret"`
	StaffRoles []string `mapstructure:"staff_roles"`
}

// StorageConfig holds file storage configuration
type StorageConfig struct {
	Provider      string `mapstructure:"provider"`
	Bucket        string `mapstructure:"bucket"`
	PublicBaseURL string `mapstructure:"public_base_url"`
	LocalPath     string `mapstructure:"local_path"`

	AWS   AWSConfig   `mapstructure:"aws"`
	GCP   GCPConfig   `mapstructure:"gcp"`
	Azure AzureConfig `mapstructure:"azure"`
}

// AWSConfig is shared by S3, SES and SNS
type AWSConfig struct {
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	Endpoint        string `mapstructure:"endpoint"`
	ForcePathStyle  bool   `mapstructure:"force_path_style"`
}

// GCPConfig holds Google Cloud Storage settings
type GCPConfig struct {
	ProjectID   string `mapstructure:"project_id"`
	KeyFilename string `mapstructure:"key_filename"`
	Endpoint    string `mapstructure:"endpoint"`
}

// AzureConfig holds Azure Blob settings
type AzureConfig struct {
	AccountName      string `mapstructure:"account_name"`
	AccountKey       string `mapstructure:"account_key"`
	ConnectionString string `mapstructure:"connection_string"`
	Endpoint         string `mapstructure:"endpoint"`
}

// NotificationsConfig selects email and SMS providers
type NotificationsConfig struct {
	EmailProvider   string   `mapstructure:"email_provider"`
	SMSProvider     string   `mapstructure:"sms_provider"`
	FromEmail       string   `mapstructure:"from_email"`
	FromName        string   `mapstructure:"from_name"`
	SMSSenderID     string   `mapstructure:"sms_sender_id"`
	AdminRecipients []string `mapstructure:"admin_recipients"`
	Async           bool     `mapstructure:"async"`
}

// VerificationConfig selects the identity document verifier
type VerificationConfig struct {
	Provider string `mapstructure:"provider"`
	Endpoint string `mapstructure:"endpoint"`
	APIKey   string `mapstructure:"api_key"`
	Timeout  int    `mapstructure:"timeout"`

	// Circuit breaker around the http provider
	BreakerFailures    uint32 `mapstructure:"breaker_failures"`
	BreakerOpenSeconds int    `mapstructure:"breaker_open_seconds"`
}

// MobileConfig holds mobile code settings
type MobileConfig struct {
	CodeTTL         int `mapstructure:"code_ttl"`
	MaxSendsPerHour int `mapstructure:"max_sends_per_hour"`
	// SweepSchedule is a cron expression; empty disables the sweep
	SweepSchedule string `mapstructure:"sweep_schedule"`
}

// NATSConfig holds NATS settings
type NATSConfig struct {
	URL                 string `mapstructure:"url"`
	EventsStream        string `mapstructure:"events_stream"`
	NotificationsStream string `mapstructure:"notifications_stream"`
}

// CacheConfig holds cache configuration
type CacheConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Host      string `mapstructure:"host"`
	Port      string `mapstructure:"port"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	PoolSize  int    `mapstructure:"pool_size"`
	StatusTTL int    `mapstructure:"status_ttl"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CORSConfig holds allowed browser origins
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Load reads config.yaml (optional), ONBOARDING_* variables and the
// platform-wide variable names, in increasing precedence.
func Load() (*Config, error) {
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/onboarding-service")
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("ONBOARDING")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	if err := bindEnvVars(v); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.read_timeout", 30)
	v.SetDefault("server.write_timeout", 30)
	v.SetDefault("server.idle_timeout", 60)
	v.SetDefault("server.admin_url", "http://localhost:3000/admin")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.name", "onboarding")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_lifetime", 300)

	v.SetDefault("auth.staff_roles", []string{"admin", "staff", "super_admin"})

	v.SetDefault("storage.provider", storage.ProviderLocal)
	v.SetDefault("storage.local_path", "./uploads")
	v.SetDefault("storage.public_base_url", "http://localhost:8080/uploads")
	v.SetDefault("storage.aws.region", "us-east-1")

	v.SetDefault("notifications.email_provider", "log")
	v.SetDefault("notifications.sms_provider", "log")
	v.SetDefault("notifications.from_email", "noreply@eygar.com")
	v.SetDefault("notifications.from_name", "Eygar")
	v.SetDefault("notifications.sms_sender_id", "Eygar")
	v.SetDefault("notifications.async", true)

	v.SetDefault("verification.provider", "mock")
	v.SetDefault("verification.timeout", 30)
	v.SetDefault("verification.breaker_failures", 5)
	v.SetDefault("verification.breaker_open_seconds", 60)

	v.SetDefault("mobile.code_ttl", 600)
	v.SetDefault("mobile.max_sends_per_hour", 5)
	v.SetDefault("mobile.sweep_schedule", "*/15 * * * *")

	v.SetDefault("nats.events_stream", "ONBOARDING_EVENTS")
	v.SetDefault("nats.notifications_stream", "ONBOARDING_NOTIFICATIONS")

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.host", "localhost")
	v.SetDefault("cache.port", "6379")
	v.SetDefault("cache.db", 0)
	v.SetDefault("cache.pool_size", 10)
	v.SetDefault("cache.status_ttl", 300)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("cors.allowed_origins", []string{"http://localhost:3000"})
}

// bindEnvVars maps the platform-wide names shared with the other services.
// Each key keeps its ONBOARDING_ form as the first choice.
func bindEnvVars(v *viper.Viper) error {
	bindings := map[string]string{
		"server.port":                     "PORT",
		"server.mode":                     "GIN_MODE",
		"database.host":                   "DB_HOST",
		"database.port":                   "DB_PORT",
		"database.name":                   "DB_NAME",
		"database.user":                   "DB_USER",
		"database.password":               "DB_PASSWORD",
		"database.ssl_mode":               "DB_SSLMODE",
		"auth.jwt_secret":                 "JWT_SECRET",
		"storage.aws.region":              "AWS_REGION",
		"storage.aws.access_key_id":       "AWS_ACCESS_KEY_ID",
		"storage.aws.secret_access_key":   "AWS_SECRET_ACCESS_KEY",
		"storage.gcp.project_id":          "GOOGLE_CLOUD_PROJECT",
		"storage.gcp.key_filename":        "GOOGLE_APPLICATION_CREDENTIALS",
		"storage.azure.connection_string": "AZURE_STORAGE_CONNECTION_STRING",
		"nats.url":                        "NATS_URL",
		"cache.host":                      "REDIS_HOST",
		"cache.port":                      "REDIS_PORT",
		"cache.password":                  "REDIS_PASSWORD",
		"logging.level":                   "LOG_LEVEL",
	}
	for key, env := range bindings {
		prefixed := "ONBOARDING_" + strings.ToUpper(strings.NewReplacer(".", "_").Replace(key))
		if err := v.BindEnv(key, prefixed, env); err != nil {
			return fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	// Keys without a default are invisible to AutomaticEnv during Unmarshal.
	for _, key := range []string{
		"storage.bucket",
		"storage.aws.endpoint",
		"storage.aws.force_path_style",
		"storage.gcp.endpoint",
		"storage.azure.account_name",
		"storage.azure.account_key",
		"storage.azure.endpoint",
		"verification.endpoint",
		"verification.api_key",
		"notifications.admin_recipients",
	} {
		if err := v.BindEnv(key); err != nil {
			return fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}
	return nil
}

// Validate rejects configurations the service cannot start with
func (c *Config) Validate() error {
	if c.Server.Mode == "release" && c.Auth.JWTSecret == "" {
		return errors.New("JWT secret is required in release mode")
	}

	switch strings.ToLower(c.Storage.Provider) {
	case storage.ProviderLocal:
		if c.Storage.LocalPath == "" {
			return errors.New("storage path is required when using local provider")
		}
	case storage.ProviderS3:
		if c.Storage.Bucket == "" {
			return errors.New("bucket is required when using s3 provider")
		}
	case storage.ProviderGCS:
		if c.Storage.Bucket == "" {
			return errors.New("bucket is required when using gcs provider")
		}
	case storage.ProviderAzure:
		if c.Storage.Bucket == "" {
			return errors.New("container is required when using azure provider")
		}
		if c.Storage.Azure.ConnectionString == "" && c.Storage.Azure.AccountName == "" {
			return errors.New("azure account name or connection string is required")
		}
	default:
		return fmt.Errorf("unsupported storage provider: %s", c.Storage.Provider)
	}

	switch c.Verification.Provider {
	case "mock":
	case "http":
		if c.Verification.Endpoint == "" {
			return errors.New("verification endpoint is required when using http provider")
		}
	default:
		return fmt.Errorf("unsupported verification provider: %s", c.Verification.Provider)
	}

	if c.Mobile.CodeTTL <= 0 {
		return errors.New("mobile code TTL must be positive")
	}
	if c.Mobile.MaxSendsPerHour <= 0 {
		return errors.New("mobile max sends per hour must be positive")
	}
	return nil
}

// GetDSN returns the database connection string
func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetAddr returns the server address
func (c *Config) GetAddr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}

// StorageSettings converts the storage section for storage.New
func (c *Config) StorageSettings() storage.Config {
	s := c.Storage
	return storage.Config{
		Provider:              s.Provider,
		Bucket:                s.Bucket,
		PublicBaseURL:         s.PublicBaseURL,
		LocalBasePath:         s.LocalPath,
		AWSRegion:             s.AWS.Region,
		AWSAccessKeyID:        s.AWS.AccessKeyID,
		AWSSecretAccessKey:    s.AWS.SecretAccessKey,
		AWSEndpoint:           s.AWS.Endpoint,
		AWSForcePathStyle:     s.AWS.ForcePathStyle,
		GCPProjectID:          s.GCP.ProjectID,
		GCPKeyFilename:        s.GCP.KeyFilename,
		GCPEndpoint:           s.GCP.Endpoint,
		AzureAccountName:      s.Azure.AccountName,
		AzureAccountKey:       s.Azure.AccountKey,
		AzureConnectionString: s.Azure.ConnectionString,
		AzureEndpoint:         s.Azure.Endpoint,
	}
}

// CodeTTL is the lifetime of a mobile verification code
func (c *Config) CodeTTL() time.Duration {
	return time.Duration(c.Mobile.CodeTTL) * time.Second
}

// StatusTTL is how long status snapshots stay cached
func (c *Config) StatusTTL() time.Duration {
	return time.Duration(c.Cache.StatusTTL) * time.Second
}

// VerificationTimeout bounds one call to the verification provider
func (c *Config) VerificationTimeout() time.Duration {
	return time.Duration(c.Verification.Timeout) * time.Second
}
