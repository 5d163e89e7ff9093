package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	API      APIConfig      `mapstructure:"api"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Provider ProviderConfig `mapstructure:"provider"`
	Mail     MailConfig     `mapstructure:"mail"`
	Schedule ScheduleConfig `mapstructure:"schedule"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// APIConfig holds REST API server configuration.
type APIConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// APIKeyHash is the bcrypt hash of the bearer key. Empty disables auth.
	APIKeyHash string `mapstructure:"api_key_hash"`
}

// DatabaseConfig holds PostgreSQL connection configuration.
// An empty URL disables the database-backed recipient source.
type DatabaseConfig struct {
	URL            string        `mapstructure:"url"`
	PoolMin        int32         `mapstructure:"pool_min"`
	PoolMax        int32         `mapstructure:"pool_max"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

// RedisConfig holds the step checkpoint store connection.
// An empty Addr selects the in-memory store.
type RedisConfig struct {
	Addr          string        `mapstructure:"addr"`
	Password      string        `mapstructure:"password"`
	DB            int           `mapstructure:"db"`
	CheckpointTTL time.Duration `mapstructure:"checkpoint_ttl"`
}

// ProviderConfig selects and configures the outbound mail transport.
type ProviderConfig struct {
	Type            string        `mapstructure:"type"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	TLSMode         string        `mapstructure:"tls_mode"`
	Endpoint        string        `mapstructure:"endpoint"`
	Region          string        `mapstructure:"region"`
	AccessKeyID     string        `mapstructure:"access_key_id"`
	SecretAccessKey string        `mapstructure:"secret_access_key"`
	Timeout         time.Duration `mapstructure:"timeout"`
}

// MailConfig holds sender identities and template rendering options.
type MailConfig struct {
	NewsFrom    string `mapstructure:"news_from"`
	WelcomeFrom string `mapstructure:"welcome_from"`
	BrandName   string `mapstructure:"brand_name"`
	RenderMode  string `mapstructure:"render_mode"`
}

// ScheduleConfig controls the daily news summary job.
type ScheduleConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Spec       string `mapstructure:"spec"`
	Timezone   string `mapstructure:"timezone"`
	DateLayout string `mapstructure:"date_layout"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level     string `mapstructure:"level"`
	Output    string `mapstructure:"output"`
	FilePath  string `mapstructure:"file_path"`
	MaxSizeMB int    `mapstructure:"max_size_mb"`
	MaxFiles  int    `mapstructure:"max_files"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.read_timeout", 10*time.Second)
	v.SetDefault("api.write_timeout", 60*time.Second)
	v.SetDefault("api.api_key_hash", "")

	v.SetDefault("database.url", "")
	v.SetDefault("database.pool_min", 1)
	v.SetDefault("database.pool_max", 5)
	v.SetDefault("database.connect_timeout", 5*time.Second)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.checkpoint_ttl", 72*time.Hour)

	v.SetDefault("provider.type", "stdout")
	v.SetDefault("provider.host", "")
	v.SetDefault("provider.port", 587)
	v.SetDefault("provider.username", "")
	v.SetDefault("provider.password", "")
	v.SetDefault("provider.tls_mode", "starttls")
	v.SetDefault("provider.endpoint", "")
	v.SetDefault("provider.region", "")
	v.SetDefault("provider.access_key_id", "")
	v.SetDefault("provider.secret_access_key", "")
	v.SetDefault("provider.timeout", 30*time.Second)

	v.SetDefault("mail.news_from", `"Signalist News" <news@signalist.app>`)
	v.SetDefault("mail.welcome_from", `"Signalist" <hello@signalist.app>`)
	v.SetDefault("mail.brand_name", "Signalist")
	v.SetDefault("mail.render_mode", "literal")

	v.SetDefault("schedule.enabled", true)
	v.SetDefault("schedule.spec", "0 12 * * *")
	v.SetDefault("schedule.timezone", "UTC")
	v.SetDefault("schedule.date_layout", "Monday, January 2, 2006")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.output", "stdout")
	v.SetDefault("logging.file_path", "")
	v.SetDefault("logging.max_size_mb", 100)
	v.SetDefault("logging.max_files", 5)
}

// Load reads configuration from the given config directory path.
// It looks for a file named "config.yaml" in that directory; a missing file
// is not an error, defaults and environment variables still apply.
// Environment variables with prefix NEWSMAIL_ override file values.
// For example, NEWSMAIL_PROVIDER_TYPE overrides provider.type.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)

	v.SetEnvPrefix("NEWSMAIL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks cross-field constraints that defaults cannot guarantee.
func (c *Config) Validate() error {
	if c.Provider.Type == "" {
		return errors.New("config: provider.type is required")
	}
	switch c.Mail.RenderMode {
	case "literal", "liquid":
	default:
		return fmt.Errorf("config: unknown mail.render_mode %q", c.Mail.RenderMode)
	}
	if c.API.Port <= 0 {
		return fmt.Errorf("config: api.port must be positive, got %d", c.API.Port)
	}
	if c.Schedule.Enabled && c.Schedule.Spec == "" {
		return errors.New("config: schedule.spec is required when the schedule is enabled")
	}
	return nil
}
