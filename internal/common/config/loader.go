// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func Load() (*Config, error) {
	loadEnvFile()

	// Base config
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../../configs")
	viper.AddConfigPath(".")

	// Enable ENV override like GITEA_TOKEN
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	// Environment-specific overlay, ignored if not found
	envConfigFile := fmt.Sprintf("config.%s", env)
	viper.SetConfigName(envConfigFile)
	_ = viper.MergeInConfig()

	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile loads .env from the working directory or the project root.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// expandEnvVars expands ${VAR} placeholders in string config values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		val := v.Get(key)

		if strVal, ok := val.(string); ok {
			if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
				expanded := os.ExpandEnv(strVal)
				if expanded != strVal && expanded != "" {
					v.Set(key, expanded)
				}
			}
		}
	}
}

// Direct override if config values are still empty after expansion
func overrideEmptyConfig(cfg *Config) {
	if cfg.Gitea.Token == "" {
		if val := os.Getenv("GITEA_TOKEN"); val != "" {
			cfg.Gitea.Token = val
		}
	}

	if cfg.Database.Postgres.User == "" {
		if val := os.Getenv("DB_USER"); val != "" {
			cfg.Database.Postgres.User = val
		}
	}
	if cfg.Database.Postgres.Password == "" {
		if val := os.Getenv("DB_PASSWORD"); val != "" {
			cfg.Database.Postgres.Password = val
		}
	}
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "merchant-triage"
	}
	if cfg.App.MetricsAddr == "" {
		cfg.App.MetricsAddr = ":9090"
	}

	// Issue tracker defaults
	if cfg.Gitea.BaseURL == "" {
		cfg.Gitea.BaseURL = "https://gitea.btcmap.org"
	}
	if cfg.Gitea.Repo == "" {
		cfg.Gitea.Repo = "teambtcmap/btcmap-data"
	}
	if cfg.Gitea.Timeout == 0 {
		cfg.Gitea.Timeout = 30000
	}

	// Mapping service defaults
	if cfg.OSM.BaseURL == "" {
		cfg.OSM.BaseURL = "https://www.openstreetmap.org"
	}
	if cfg.OSM.OverpassURL == "" {
		cfg.OSM.OverpassURL = "https://overpass-api.de/api/interpreter"
	}
	if cfg.OSM.APIURL == "" {
		cfg.OSM.APIURL = "https://api.openstreetmap.org/api/0.6"
	}
	if cfg.OSM.SearchRadiusM == 0 {
		cfg.OSM.SearchRadiusM = 50
	}
	if cfg.OSM.Timeout == 0 {
		cfg.OSM.Timeout = 25000
	}

	// Verification defaults mirror the published scoring scheme
	if cfg.Verification.Weights == (CheckWeights{}) {
		cfg.Verification.Weights = CheckWeights{
			OSM:             20,
			Website:         30,
			Social:          20,
			CrossReference:  20,
			DataConsistency: 10,
		}
	}
	if cfg.Verification.Phase2Weights == (Phase2Weights{}) {
		cfg.Verification.Phase2Weights = Phase2Weights{
			EmailConfirmation:    20,
			SocialDMConfirmation: 15,
		}
	}
	if cfg.Verification.Thresholds == (Thresholds{}) {
		cfg.Verification.Thresholds = Thresholds{High: 90, Medium: 70, Low: 50}
	}
	if cfg.Verification.Phase1Threshold == 0 {
		cfg.Verification.Phase1Threshold = 70
	}

	// Outreach defaults
	if cfg.Outreach.WaitHours == 0 {
		cfg.Outreach.WaitHours = 24
	}
	if cfg.Outreach.Email.SubjectTemplate == "" {
		cfg.Outreach.Email.SubjectTemplate = "Verification Request: {merchant_name}"
	}
	if cfg.Outreach.Social.TwitterDMTemplate == "" {
		cfg.Outreach.Social.TwitterDMTemplate = "Hi {merchant_name}! We received a report that you accept Bitcoin. Could you confirm? Thanks!"
	}
	if cfg.Outreach.Social.InstagramDMTemplate == "" {
		cfg.Outreach.Social.InstagramDMTemplate = "Hi {merchant_name}! We received a report that you accept Bitcoin. Could you confirm? Thanks!"
	}

	// Batch defaults
	if cfg.Batch.DefaultSize == 0 {
		cfg.Batch.DefaultSize = 10
	}
	if cfg.Batch.IssueState == "" {
		cfg.Batch.IssueState = "open"
	}

	// Rate limiting defaults
	if cfg.RateLimiting.GiteaRequestsPerMinute == 0 {
		cfg.RateLimiting.GiteaRequestsPerMinute = 30
	}
	if cfg.RateLimiting.WebScrapeDelayMs == 0 {
		cfg.RateLimiting.WebScrapeDelayMs = 1000
	}

	// Database defaults
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 25
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 5
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}
	if cfg.Database.Elasticsearch.URL == "" && len(cfg.Database.Elasticsearch.Addresses) > 0 {
		cfg.Database.Elasticsearch.URL = cfg.Database.Elasticsearch.Addresses[0]
	}
	if cfg.Database.Elasticsearch.Index == "" {
		cfg.Database.Elasticsearch.Index = "triage-results"
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}
}

// Validate enforces the configuration invariants. A violation here is a
// configuration error and fatal to the run; nothing is processed after it.
func Validate(cfg *Config) error {
	w := cfg.Verification.Weights
	if w.OSM < 0 || w.Website < 0 || w.Social < 0 || w.CrossReference < 0 || w.DataConsistency < 0 {
		return fmt.Errorf("verification.weights must be non-negative")
	}
	if w.Sum() > 100 {
		return fmt.Errorf("verification.weights sum to %d, must not exceed 100", w.Sum())
	}

	p2 := cfg.Verification.Phase2Weights
	if p2.EmailConfirmation < 0 || p2.SocialDMConfirmation < 0 {
		return fmt.Errorf("verification.phase2_weights must be non-negative")
	}

	t := cfg.Verification.Thresholds
	if !(t.High > t.Medium && t.Medium > t.Low) {
		return fmt.Errorf("verification.thresholds must be strictly decreasing: high=%d medium=%d low=%d",
			t.High, t.Medium, t.Low)
	}
	if t.Low < 0 || t.High > 100 {
		return fmt.Errorf("verification.thresholds must lie within [0,100]")
	}

	if cfg.Verification.Phase1Threshold <= 0 || cfg.Verification.Phase1Threshold > 100 {
		return fmt.Errorf("verification.phase1_threshold must be in (0,100], got %d", cfg.Verification.Phase1Threshold)
	}

	if cfg.Gitea.BaseURL == "" {
		return fmt.Errorf("gitea.base_url is required")
	}
	if cfg.Gitea.Repo == "" {
		return fmt.Errorf("gitea.repo is required")
	}

	if cfg.Database.Postgres.Enabled {
		if cfg.Database.Postgres.Host == "" {
			return fmt.Errorf("database.postgres.host is required when postgres is enabled")
		}
		if cfg.Database.Postgres.Database == "" {
			return fmt.Errorf("database.postgres.database is required when postgres is enabled")
		}
		if cfg.Database.Postgres.User == "" {
			return fmt.Errorf("database.postgres.user is required when postgres is enabled")
		}
	}
	if cfg.Database.Redis.Enabled && cfg.Database.Redis.Address == "" {
		return fmt.Errorf("database.redis.address is required when redis is enabled")
	}
	if cfg.Database.Elasticsearch.Enabled &&
		len(cfg.Database.Elasticsearch.Addresses) == 0 && cfg.Database.Elasticsearch.URL == "" {
		return fmt.Errorf("database.elasticsearch.addresses or url is required when elasticsearch is enabled")
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

// GiteaRequestDelay returns the pause between issue-tracker calls derived
// from the per-minute budget.
func (r RateLimitConfig) GiteaRequestDelay() time.Duration {
	if r.GiteaRequestsPerMinute <= 0 {
		return 0
	}
	return time.Minute / time.Duration(r.GiteaRequestsPerMinute)
}
