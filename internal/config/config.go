package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Notion NotionConfig `yaml:"notion" mapstructure:"notion"`
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Policy PolicyConfig `yaml:"policy" mapstructure:"policy"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// NotionConfig holds Notion API credentials, database IDs, and client
// tuning. Zero tuning values keep the client defaults.
type NotionConfig struct {
	Token     string `yaml:"token" mapstructure:"token"`
	VendorsDB string `yaml:"vendors_db" mapstructure:"vendors_db"`
	PartsDB   string `yaml:"parts_db" mapstructure:"parts_db"`
	ScoresDB  string `yaml:"scores_db" mapstructure:"scores_db"`

	RateLimitRPS      float64 `yaml:"rate_limit_rps" mapstructure:"rate_limit_rps"`
	RetryMaxAttempts  int     `yaml:"retry_max_attempts" mapstructure:"retry_max_attempts"`
	RetryBackoffMs    int     `yaml:"retry_backoff_ms" mapstructure:"retry_backoff_ms"`
	RetryMaxBackoffMs int     `yaml:"retry_max_backoff_ms" mapstructure:"retry_max_backoff_ms"`
}

// StoreConfig configures the local snapshot archive backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`             // sqlite or postgres
	Path        string `yaml:"path" mapstructure:"path"`                 // sqlite file path
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"` // postgres DSN
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`       // postgres pool sizing, 0 = default
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// ServerConfig configures the JSON API server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// PolicyConfig points at the scoring policy file (weights and risk
// thresholds). A missing file falls back to built-in defaults.
type PolicyConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Validate checks that the fields required for the given mode are set.
// Modes correspond to command groups: "catalog" needs Notion access,
// "serve" additionally needs a listen port, "seed" needs all three
// databases, "archive" needs a usable store backend.
func (c *Config) Validate(mode string) error {
	var errs []string

	needNotion := func() {
		if c.Notion.Token == "" {
			errs = append(errs, "notion.token is required")
		}
		if c.Notion.VendorsDB == "" {
			errs = append(errs, "notion.vendors_db is required")
		}
		if c.Notion.PartsDB == "" {
			errs = append(errs, "notion.parts_db is required")
		}
	}
	needArchive := func() {
		switch c.Store.Driver {
		case "sqlite":
			if c.Store.Path == "" {
				errs = append(errs, "store.path is required for sqlite")
			}
		case "postgres":
			if c.Store.DatabaseURL == "" {
				errs = append(errs, "store.database_url is required for postgres")
			}
		default:
			errs = append(errs, "store.driver must be sqlite or postgres")
		}
	}

	switch mode {
	case "catalog":
		needNotion()
	case "serve":
		needNotion()
		needArchive()
		if c.Server.Port <= 0 {
			errs = append(errs, "server.port must be > 0")
		}
	case "seed":
		needNotion()
		if c.Notion.ScoresDB == "" {
			errs = append(errs, "notion.scores_db is required")
		}
	case "snapshot":
		needNotion()
		needArchive()
	case "archive":
		needArchive()
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("VENDOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "vendor-tracking.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("policy.path", "policy.yaml")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
