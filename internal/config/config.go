package config

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"

	"elecprice/internal/fetcher"
	"elecprice/internal/ree"
	"elecprice/internal/tarifaluz"
	"elecprice/internal/timezone"
)

// DefaultRegions is the catalogue of Spanish cities a refresh may be requested for.
var DefaultRegions = []string{
	"Madrid",
	"Barcelona",
	"Valencia",
	"Sevilla",
	"Zaragoza",
	"Málaga",
	"Murcia",
	"Palma de Mallorca",
	"Las Palmas de Gran Canaria",
	"Bilbao",
	"Alicante",
	"Córdoba",
	"Valladolid",
	"Vigo",
	"Gijón",
	"Granada",
	"A Coruña",
	"Sanlúcar de Barrameda",
}

// Config holds all configuration for the price service.
type Config struct {
	// Region requested when none is given, and the accepted catalogue
	Region  string   `mapstructure:"region"`
	Regions []string `mapstructure:"regions"`

	// Timezone defines the local calendar day prices belong to
	Timezone string `mapstructure:"timezone"`

	// Base URLs for the price sources (configurable for testing)
	TarifaluzBaseURL string `mapstructure:"tarifaluz_base_url"`
	REEBaseURL       string `mapstructure:"ree_base_url"`
	UserAgent        string `mapstructure:"user_agent"`

	// Per-source time budget and HTTP retries
	StageTimeout time.Duration `mapstructure:"stage_timeout"`
	RetryCount   int           `mapstructure:"retry_count"`

	// Service settings
	RefreshSchedule string `mapstructure:"refresh_schedule"`
	ListenAddr      string `mapstructure:"listen_addr"`
	JournalPath     string `mapstructure:"journal_path"`
	LogLevel        string `mapstructure:"log_level"`
}

// Load reads configuration from environment variables and an optional config file.
// Environment variables take precedence over config file values. When configFile
// is empty, config.yaml is looked up in the working directory and $HOME/.elecprice.
//
// Environment variables:
//   - ELECPRICE_REGION, ELECPRICE_REGIONS (comma separated)
//   - ELECPRICE_TIMEZONE
//   - TARIFALUZ_BASE_URL, REE_BASE_URL (optional, default to production)
//   - ELECPRICE_USER_AGENT
//   - ELECPRICE_STAGE_TIMEOUT, ELECPRICE_RETRY_COUNT
//   - ELECPRICE_REFRESH_SCHEDULE, ELECPRICE_LISTEN_ADDR
//   - ELECPRICE_JOURNAL_PATH (empty disables the journal)
//   - ELECPRICE_LOG_LEVEL
func Load(configFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("region", "Madrid")
	v.SetDefault("regions", DefaultRegions)
	v.SetDefault("timezone", timezone.Default)
	v.SetDefault("tarifaluz_base_url", tarifaluz.DefaultBaseURL)
	v.SetDefault("ree_base_url", ree.DefaultBaseURL)
	v.SetDefault("user_agent", tarifaluz.DefaultUserAgent)
	v.SetDefault("stage_timeout", "20s")
	v.SetDefault("retry_count", 2)
	v.SetDefault("refresh_schedule", "0 1 * * * *")
	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("journal_path", "")
	v.SetDefault("log_level", "info")

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.elecprice")

		// Read config file (ignore if not found)
		_ = v.ReadInConfig()
	}

	v.BindEnv("region", "ELECPRICE_REGION")
	v.BindEnv("regions", "ELECPRICE_REGIONS")
	v.BindEnv("timezone", "ELECPRICE_TIMEZONE")
	v.BindEnv("tarifaluz_base_url", "TARIFALUZ_BASE_URL")
	v.BindEnv("ree_base_url", "REE_BASE_URL")
	v.BindEnv("user_agent", "ELECPRICE_USER_AGENT")
	v.BindEnv("stage_timeout", "ELECPRICE_STAGE_TIMEOUT")
	v.BindEnv("retry_count", "ELECPRICE_RETRY_COUNT")
	v.BindEnv("refresh_schedule", "ELECPRICE_REFRESH_SCHEDULE")
	v.BindEnv("listen_addr", "ELECPRICE_LISTEN_ADDR")
	v.BindEnv("journal_path", "ELECPRICE_JOURNAL_PATH")
	v.BindEnv("log_level", "ELECPRICE_LOG_LEVEL")

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	config.Regions = cleanRegions(config.Regions)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var problems []string
	if len(c.Regions) == 0 {
		problems = append(problems, "regions: catalogue is empty")
	} else if !slices.Contains(c.Regions, c.Region) {
		problems = append(problems, fmt.Sprintf("region: %q is not in the catalogue", c.Region))
	}
	if _, err := timezone.Load(c.Timezone); err != nil {
		problems = append(problems, fmt.Sprintf("timezone: %v", err))
	}
	if c.StageTimeout <= 0 {
		problems = append(problems, "stage_timeout: must be positive")
	}
	if c.RetryCount < 0 {
		problems = append(problems, "retry_count: must not be negative")
	}
	if strings.TrimSpace(c.RefreshSchedule) == "" {
		problems = append(problems, "refresh_schedule: must not be empty")
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		problems = append(problems, fmt.Sprintf("log_level: %v", err))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Location returns the configured market time zone.
func (c *Config) Location() (*time.Location, error) {
	return timezone.Load(c.Timezone)
}

// ClientOptions returns the HTTP settings shared by the price sources.
func (c *Config) ClientOptions() fetcher.ClientOptions {
	opts := fetcher.DefaultClientOptions()
	opts.RetryCount = c.RetryCount
	opts.UserAgent = c.UserAgent
	return opts
}

// ParseLogLevel maps a level name to its slog level.
func ParseLogLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(name))); err != nil {
		return slog.LevelInfo, err
	}
	return level, nil
}

func cleanRegions(regions []string) []string {
	out := make([]string, 0, len(regions))
	for _, r := range regions {
		if r = strings.TrimSpace(r); r != "" && !slices.Contains(out, r) {
			out = append(out, r)
		}
	}
	return out
}
