package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or console
}

type AgentConfig struct {
	DeviceID        string `mapstructure:"device_id"`
	IntervalSeconds int    `mapstructure:"interval_seconds"`
}

type SensorsConfig struct {
	GpsdAddr               string `mapstructure:"gpsd_addr"`
	BatteryPath            string `mapstructure:"battery_path"`
	PositionTimeoutSeconds int    `mapstructure:"position_timeout_seconds"`
}

type SignalConfig struct {
	Interface              string `mapstructure:"interface"`
	FallbackTimeoutSeconds int    `mapstructure:"fallback_timeout_seconds"`
}

type ProbeConfig struct {
	PingHost           string `mapstructure:"ping_host"` // empty disables the reachability ping
	PingTimeoutSeconds int    `mapstructure:"ping_timeout_seconds"`
}

type RemoteConfig struct {
	Kind               string   `mapstructure:"kind"` // http or kafka
	URL                string   `mapstructure:"url"`
	AuthTokenEnv       string   `mapstructure:"auth_token_env"` // e.g. WAYPOINT_BACKEND_TOKEN
	TimeoutSeconds     int      `mapstructure:"timeout_seconds"`
	InsecureSkipVerify bool     `mapstructure:"insecure_skip_verify"`
	KafkaBrokers       []string `mapstructure:"kafka_brokers"`
	KafkaTopic         string   `mapstructure:"kafka_topic"`
}

type BacklogConfig struct {
	Store string `mapstructure:"store"` // file or sqlite
	Path  string `mapstructure:"path"`
}

type HealthConfig struct {
	Port string `mapstructure:"port"`
}

type Config struct {
	Agent   AgentConfig   `mapstructure:"agent"`
	Sensors SensorsConfig `mapstructure:"sensors"`
	Signal  SignalConfig  `mapstructure:"signal"`
	Probe   ProbeConfig   `mapstructure:"probe"`
	Remote  RemoteConfig  `mapstructure:"remote"`
	Backlog BacklogConfig `mapstructure:"backlog"`
	Health  HealthConfig  `mapstructure:"health"`
	Logging LoggingConfig `mapstructure:"logging"`
}

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// env overrides: WAYPOINT_AGENT_DEVICE_ID etc. (optional)
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("agent.interval_seconds", 60)
	v.SetDefault("sensors.gpsd_addr", "localhost:2947")
	v.SetDefault("sensors.battery_path", "/sys/class/power_supply/BAT0/capacity")
	v.SetDefault("sensors.position_timeout_seconds", 10)
	v.SetDefault("signal.fallback_timeout_seconds", 2)
	v.SetDefault("probe.ping_timeout_seconds", 3)
	v.SetDefault("remote.kind", "http")
	v.SetDefault("remote.timeout_seconds", 15)
	v.SetDefault("remote.insecure_skip_verify", false)
	v.SetDefault("remote.kafka_topic", "waypoint.records")
	v.SetDefault("backlog.store", "file")
	v.SetDefault("backlog.path", "./data/backlog.jsonl")
	v.SetDefault("health.port", "8086")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// quick sanity checks
	if cfg.Agent.IntervalSeconds < 1 {
		cfg.Agent.IntervalSeconds = 60
	}
	if cfg.Remote.TimeoutSeconds < 1 {
		cfg.Remote.TimeoutSeconds = 15
	}
	if cfg.Sensors.PositionTimeoutSeconds < 1 {
		cfg.Sensors.PositionTimeoutSeconds = 10
	}

	switch cfg.Remote.Kind {
	case "http":
		if cfg.Remote.URL == "" {
			return nil, fmt.Errorf("remote.url is required for remote.kind http")
		}
	case "kafka":
		if len(cfg.Remote.KafkaBrokers) == 0 {
			return nil, fmt.Errorf("remote.kafka_brokers is required for remote.kind kafka")
		}
	default:
		return nil, fmt.Errorf("remote.kind must be http or kafka, got %q", cfg.Remote.Kind)
	}

	return &cfg, nil
}
