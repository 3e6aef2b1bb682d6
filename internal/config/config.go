// Package config loads and validates the dispatchmon YAML configuration.
package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	derrors "git.home.luguber.info/inful/dispatchmon/internal/errors"
)

// Config is the root configuration document.
type Config struct {
	Logging       LoggingConfig       `yaml:"logging"`
	Monitor       MonitorConfig       `yaml:"monitor"`
	HTTP          HTTPConfig          `yaml:"http"`
	TagDB         TagDBConfig         `yaml:"tagdb"`
	EventStore    EventStoreConfig    `yaml:"eventstore"`
	Notifications NotificationsConfig `yaml:"notifications"`
	Reader        ReaderConfig        `yaml:"reader"`
	Audit         AuditConfig         `yaml:"audit"`
}

// MonitorConfig holds the decision-loop timing parameters.
type MonitorConfig struct {
	LeadTime       time.Duration `yaml:"lead_time"`
	TimerPeriod    time.Duration `yaml:"timer_period"`
	DecisionPeriod time.Duration `yaml:"decision_period"`
	QueueSize      int           `yaml:"queue_size"`
}

// HTTPConfig holds listen ports for the API and admin servers.
type HTTPConfig struct {
	APIPort   int `yaml:"api_port"`
	AdminPort int `yaml:"admin_port"`
}

// TagDBConfig locates the tag database.
type TagDBConfig struct {
	Path string `yaml:"path"`
}

// EventStoreConfig locates the cycle event log and its retention policy.
type EventStoreConfig struct {
	Path        string        `yaml:"path"`
	Retention   time.Duration `yaml:"retention"`
	HistorySize int           `yaml:"history_size"`
}

// NotificationsConfig configures the outbound notification channel.
type NotificationsConfig struct {
	Enabled       bool   `yaml:"enabled"`
	NATSURL       string `yaml:"nats_url"`
	SubjectPrefix string `yaml:"subject_prefix"`
	Stream        string `yaml:"stream"`
}

// ReaderScriptedRead mirrors reader.ScriptedRead for YAML loading.
type ReaderScriptedRead struct {
	After  time.Duration `yaml:"after"`
	TagIDs []string      `yaml:"tag_ids"`
}

// ReaderConfig configures the simulated reader driver.
type ReaderConfig struct {
	Script []ReaderScriptedRead `yaml:"script"`
}

// AuditConfig configures the periodic status audit job.
type AuditConfig struct {
	Interval time.Duration `yaml:"interval"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Monitor: MonitorConfig{
			LeadTime:       120 * time.Second,
			TimerPeriod:    time.Second,
			DecisionPeriod: time.Second,
			QueueSize:      256,
		},
		HTTP:  HTTPConfig{APIPort: 8080, AdminPort: 9090},
		TagDB: TagDBConfig{Path: "./dispatch-tags.db"},
		EventStore: EventStoreConfig{
			Path:        "./dispatch-events.db",
			Retention:   30 * 24 * time.Hour,
			HistorySize: 100,
		},
		Notifications: NotificationsConfig{
			Enabled:       false,
			SubjectPrefix: "dispatch.notify",
			Stream:        "DISPATCH_NOTIFY",
		},
		Audit: AuditConfig{Interval: time.Minute},
	}
}

// Load reads the YAML file at path, applies defaults, and validates. The
// optional .env file is loaded first so values like NATS_URL are available.
func Load(path string) (*Config, error) {
	loadEnvFile()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, derrors.WrapError(err, derrors.CategoryConfig, "read configuration file").
			WithContext("path", path).
			Build()
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, derrors.WrapError(err, derrors.CategoryConfig, "parse configuration file").
			WithContext("path", path).
			Build()
	}

	cfg.applyEnvOverrides()
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides maps selected environment variables over the file values.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("DISPATCHMON_NATS_URL"); v != "" {
		c.Notifications.NATSURL = v
	}
	if v := os.Getenv("DISPATCHMON_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// normalize fills in zero values that unmarshalling may have cleared.
func (c *Config) normalize() {
	def := Default()
	if c.Monitor.LeadTime <= 0 {
		c.Monitor.LeadTime = def.Monitor.LeadTime
	}
	if c.Monitor.TimerPeriod <= 0 {
		c.Monitor.TimerPeriod = def.Monitor.TimerPeriod
	}
	if c.Monitor.DecisionPeriod <= 0 {
		c.Monitor.DecisionPeriod = def.Monitor.DecisionPeriod
	}
	if c.Monitor.QueueSize <= 0 {
		c.Monitor.QueueSize = def.Monitor.QueueSize
	}
	if c.EventStore.HistorySize <= 0 {
		c.EventStore.HistorySize = def.EventStore.HistorySize
	}
	if c.EventStore.Retention <= 0 {
		c.EventStore.Retention = def.EventStore.Retention
	}
	if c.Audit.Interval <= 0 {
		c.Audit.Interval = def.Audit.Interval
	}
	c.Logging.Level = string(NormalizeLogLevel(c.Logging.Level))
	c.Logging.Format = string(NormalizeLogFormat(c.Logging.Format))
}

// Validate rejects configurations the daemon cannot run with.
func (c *Config) Validate() error {
	if c.HTTP.APIPort <= 0 || c.HTTP.APIPort > 65535 {
		return derrors.ConfigError("http.api_port", "must be a valid TCP port")
	}
	if c.HTTP.AdminPort <= 0 || c.HTTP.AdminPort > 65535 {
		return derrors.ConfigError("http.admin_port", "must be a valid TCP port")
	}
	if c.HTTP.APIPort == c.HTTP.AdminPort {
		return derrors.ConfigError("http.admin_port", "must differ from http.api_port")
	}
	if c.TagDB.Path == "" {
		return derrors.ConfigError("tagdb.path", "required")
	}
	if c.EventStore.Path == "" {
		return derrors.ConfigError("eventstore.path", "required")
	}
	if c.Notifications.Enabled && c.Notifications.NATSURL == "" {
		return derrors.ConfigError("notifications.nats_url", "required when notifications are enabled")
	}
	if c.Monitor.LeadTime < c.Monitor.TimerPeriod {
		return derrors.ConfigError("monitor.lead_time", "must be at least one timer period")
	}
	return nil
}
