// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct. It is loaded once at
// startup, validated, and treated as read-only by every component.
type Config struct {
	App          AppConfig          `mapstructure:"app"`
	Gitea        GiteaConfig        `mapstructure:"gitea"`
	OSM          OSMConfig          `mapstructure:"osm"`
	Verification VerificationConfig `mapstructure:"verification"`
	Outreach     OutreachConfig     `mapstructure:"outreach"`
	Batch        BatchConfig        `mapstructure:"batch"`
	RateLimiting RateLimitConfig    `mapstructure:"rate_limiting"`
	Output       OutputConfig       `mapstructure:"output"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Integrations IntegrationConfig  `mapstructure:"integrations"`
	Logging      LoggingConfig      `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	MetricsAddr string `mapstructure:"metrics_addr"`
}

// GiteaConfig holds the issue-tracker API settings.
type GiteaConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Token   string `mapstructure:"token"`
	Repo    string `mapstructure:"repo"`
	Timeout int    `mapstructure:"timeout"` // milliseconds
}

// OSMConfig holds the mapping-service settings.
type OSMConfig struct {
	BaseURL       string  `mapstructure:"base_url"`
	OverpassURL   string  `mapstructure:"overpass_url"`
	APIURL        string  `mapstructure:"api_url"`
	SearchRadiusM float64 `mapstructure:"search_radius_m"`
	Timeout       int     `mapstructure:"timeout"` // milliseconds
}

// VerificationConfig holds the check weights, phase-2 bonuses and the
// confidence thresholds. Weights and thresholds are validated at load time.
type VerificationConfig struct {
	Weights         CheckWeights  `mapstructure:"weights"`
	Phase2Weights   Phase2Weights `mapstructure:"phase2_weights"`
	Thresholds      Thresholds    `mapstructure:"thresholds"`
	Phase1Threshold int           `mapstructure:"phase1_threshold"`
}

// CheckWeights is the per-check maximum score table for Phase 1.
type CheckWeights struct {
	OSM             int `mapstructure:"osm"`
	Website         int `mapstructure:"website"`
	Social          int `mapstructure:"social"`
	CrossReference  int `mapstructure:"cross_reference"`
	DataConsistency int `mapstructure:"data_consistency"`
}

// Sum returns the total of all Phase 1 weights.
func (w CheckWeights) Sum() int {
	return w.OSM + w.Website + w.Social + w.CrossReference + w.DataConsistency
}

// Phase2Weights holds the per-channel confirmation bonuses.
type Phase2Weights struct {
	EmailConfirmation    int `mapstructure:"email_confirmation"`
	SocialDMConfirmation int `mapstructure:"social_dm_confirmation"`
}

// Thresholds are the recommendation tier boundaries, strictly decreasing.
type Thresholds struct {
	High   int `mapstructure:"high"`
	Medium int `mapstructure:"medium"`
	Low    int `mapstructure:"low"`
}

// OutreachConfig holds settings for the Phase 2 outreach coordinator.
type OutreachConfig struct {
	AutoSend  bool `mapstructure:"auto_send"`
	WaitHours int  `mapstructure:"wait_hours"`

	Email struct {
		SubjectTemplate string `mapstructure:"subject_template"`
		FromAddress     string `mapstructure:"from_address"`
		ReplyTo         string `mapstructure:"reply_to"`
	} `mapstructure:"email"`

	Social struct {
		TwitterDMTemplate   string `mapstructure:"twitter_dm_template"`
		InstagramDMTemplate string `mapstructure:"instagram_dm_template"`
	} `mapstructure:"social"`
}

// BatchConfig controls issue fetching for a run.
type BatchConfig struct {
	DefaultSize  int      `mapstructure:"default_size"`
	IssueLabels  []string `mapstructure:"issue_labels"`
	IssueState   string   `mapstructure:"issue_state"`
	SkipAssigned bool     `mapstructure:"skip_assigned"`
}

// RateLimitConfig holds the inter-request delays.
type RateLimitConfig struct {
	GiteaRequestsPerMinute int `mapstructure:"gitea_requests_per_minute"`
	WebScrapeDelayMs       int `mapstructure:"web_scrape_delay_ms"`
}

// OutputConfig controls report posting behaviour.
type OutputConfig struct {
	PostPhase1Immediately bool `mapstructure:"post_phase1_immediately"`
	UpdatePhase1Comment   bool `mapstructure:"update_phase1_comment"`
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
}

type PostgresConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type ElasticsearchConfig struct {
	Enabled   bool     `mapstructure:"enabled"`
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	Index     string   `mapstructure:"index"`
	URL       string   `mapstructure:"url"` // Single URL for backwards compatibility
}

// GetURL returns the first address or the URL field
func (e ElasticsearchConfig) GetURL() string {
	if e.URL != "" {
		return e.URL
	}
	if len(e.Addresses) > 0 {
		return e.Addresses[0]
	}
	return ""
}

// IntegrationConfig holds settings for AWS delivery services.
type IntegrationConfig struct {
	AWS struct {
		Region string `mapstructure:"region"`
		SES    struct {
			Enabled   bool   `mapstructure:"enabled"`
			FromEmail string `mapstructure:"from_email"`
		} `mapstructure:"ses"`
		SNS struct {
			Enabled         bool   `mapstructure:"enabled"`
			SummaryTopicARN string `mapstructure:"summary_topic_arn"`
		} `mapstructure:"sns"`
	} `mapstructure:"aws"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
