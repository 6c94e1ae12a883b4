package config

import (
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Source formats understood by the importer.
const (
	FormatCSV    = "csv"
	FormatXLSX   = "xlsx"
	FormatSQLite = "sqlite"
)

// Config holds the full application configuration.
type Config struct {
	Data   DataConfig   `yaml:"data" mapstructure:"data"`
	Fetch  FetchConfig  `yaml:"fetch" mapstructure:"fetch"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// DataConfig locates the two reference datasets.
type DataConfig struct {
	Dir       string       `yaml:"dir" mapstructure:"dir"`
	Political SourceConfig `yaml:"political" mapstructure:"political"`
	Postal    SourceConfig `yaml:"postal" mapstructure:"postal"`
}

// SourceConfig describes where one dataset is read from.
type SourceConfig struct {
	Format     string `yaml:"format" mapstructure:"format"`           // csv, xlsx or sqlite
	Path       string `yaml:"path" mapstructure:"path"`               // relative to data.dir unless absolute
	Entry      string `yaml:"entry" mapstructure:"entry"`             // file inside Path when Path is a ZIP archive
	URL        string `yaml:"url" mapstructure:"url"`                 // remote location used by fetch
	Sheet      string `yaml:"sheet" mapstructure:"sheet"`             // xlsx only; empty means first sheet
	Table      string `yaml:"table" mapstructure:"table"`             // sqlite only
	Encoding   string `yaml:"encoding" mapstructure:"encoding"`       // csv only
	Delimiter  string `yaml:"delimiter" mapstructure:"delimiter"`     // csv only
	Comment    string `yaml:"comment" mapstructure:"comment"`         // csv only; lines starting with it are skipped
	LazyQuotes bool   `yaml:"lazy_quotes" mapstructure:"lazy_quotes"` // csv only
}

// FetchConfig configures source downloads.
type FetchConfig struct {
	UserAgent   string  `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries  int     `yaml:"max_retries" mapstructure:"max_retries"`
	RatePerSec  float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
}

// ServerConfig configures the query API server.
type ServerConfig struct {
	Port        int      `yaml:"port" mapstructure:"port"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// ResolvePath returns the source path, joined onto dir when relative.
func (s SourceConfig) ResolvePath(dir string) string {
	if s.Path == "" || filepath.IsAbs(s.Path) {
		return s.Path
	}
	return filepath.Join(dir, s.Path)
}

// Load reads configuration from .env, config.yaml and the environment.
func Load() (*Config, error) {
	// .env is optional and never overrides variables already set.
	_ = godotenv.Load()

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("SWISSGEO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("data.dir", "data")
	setSourceDefaults(v, "data.political", "GDE_from_be-b-00.04-agv-01.xlsx.csv", "political_communities")
	setSourceDefaults(v, "data.postal", "PLZ6_from_do-t-09.02-gwr-37.xlsx.csv", "postal_communities")
	v.SetDefault("fetch.user_agent", "swissgeo/1.0")
	v.SetDefault("fetch.timeout_secs", 60)
	v.SetDefault("fetch.max_retries", 3)
	v.SetDefault("fetch.rate_per_sec", 2.0)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{"*"})
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

// Every key needs a default so AutomaticEnv can bind it during Unmarshal.
func setSourceDefaults(v *viper.Viper, prefix, path, table string) {
	v.SetDefault(prefix+".format", FormatCSV)
	v.SetDefault(prefix+".path", path)
	v.SetDefault(prefix+".entry", "")
	v.SetDefault(prefix+".url", "")
	v.SetDefault(prefix+".sheet", "")
	v.SetDefault(prefix+".table", table)
	v.SetDefault(prefix+".encoding", "")
	v.SetDefault(prefix+".delimiter", ",")
	v.SetDefault(prefix+".comment", "")
	v.SetDefault(prefix+".lazy_quotes", false)
}

// Validate checks the settings a command mode depends on: "query" needs
// readable sources, "fetch" needs at least one URL, "serve" needs sources
// and a port.
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "query":
		errs = c.validateSources(errs)
	case "fetch":
		if c.Data.Political.URL == "" && c.Data.Postal.URL == "" {
			errs = append(errs, "data.political.url or data.postal.url is required")
		}
		if c.Data.Dir == "" {
			errs = append(errs, "data.dir is required")
		}
	case "serve":
		errs = c.validateSources(errs)
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, "server.port must be > 0 and <= 65535")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

func (c *Config) validateSources(errs []string) []string {
	for _, named := range []struct {
		name string
		src  SourceConfig
	}{
		{"data.political", c.Data.Political},
		{"data.postal", c.Data.Postal},
	} {
		name, src := named.name, named.src
		if src.Path == "" {
			errs = append(errs, name+".path is required")
		}
		switch src.Format {
		case FormatCSV:
			if src.Delimiter != "" && utf8.RuneCountInString(src.Delimiter) != 1 {
				errs = append(errs, name+".delimiter must be a single character")
			}
			if src.Comment != "" && utf8.RuneCountInString(src.Comment) != 1 {
				errs = append(errs, name+".comment must be a single character")
			}
			if src.Comment != "" && src.Comment == src.Delimiter {
				errs = append(errs, name+".comment must differ from the delimiter")
			}
		case FormatXLSX:
		case FormatSQLite:
			if src.Table == "" {
				errs = append(errs, name+".table is required for sqlite sources")
			}
		default:
			errs = append(errs, name+".format must be one of csv, xlsx, sqlite")
		}
	}
	return errs
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
