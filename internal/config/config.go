package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"k8s.io/apimachinery/pkg/util/sets"
)

// Ordering modes for applying overlapping responses
const (
	OrderingLastResponse = "last-response"
	OrderingDiscardStale = "discard-stale"
)

// Config holds the application configuration
type Config struct {
	// Robot webserver
	RobotURL       string
	RequestTimeout time.Duration

	// Dashboard behaviour
	PollInterval   time.Duration
	CommandDisplay time.Duration
	ButtonFlash    time.Duration
	Commands       []string
	Ordering       string

	// Observability
	LogLevel    string
	LogFile     string
	MetricsPort int
	HealthPort  int
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		RobotURL:    getEnvOrDefault("ROBOT_URL", "http://10.21.6.2:5800"),
		Commands:    parseList(getEnvOrDefault("COMMANDS", "start,stop")),
		Ordering:    getEnvOrDefault("ORDERING", OrderingLastResponse),
		LogLevel:    getEnvOrDefault("LOG_LEVEL", "info"),
		LogFile:     getEnvOrDefault("LOG_FILE", "robot-dashboard.log"),
		MetricsPort: parsePort(os.Getenv("METRICS_PORT"), 9090),
		HealthPort:  parsePort(os.Getenv("HEALTH_PORT"), 8080),
	}

	// A typo in a timing value is an error rather than a silent default.
	durations := []struct {
		key          string
		defaultValue time.Duration
		dst          *time.Duration
	}{
		{"REQUEST_TIMEOUT", 10 * time.Second, &cfg.RequestTimeout},
		{"POLL_INTERVAL", 100 * time.Millisecond, &cfg.PollInterval},
		{"COMMAND_DISPLAY", time.Second, &cfg.CommandDisplay},
		{"BUTTON_FLASH", 200 * time.Millisecond, &cfg.ButtonFlash},
	}
	for _, d := range durations {
		value, err := parseDuration(os.Getenv(d.key), d.defaultValue)
		if err != nil {
			return nil, fmt.Errorf("%s is invalid: %w", d.key, err)
		}
		*d.dst = value
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the configuration for consistency. It is called by
// LoadFromEnv and again after CLI flag overrides are applied.
func (c *Config) Validate() error {
	u, err := url.Parse(c.RobotURL)
	if err != nil {
		return fmt.Errorf("ROBOT_URL is invalid: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("ROBOT_URL must be an http(s) URL with a host, got: %s", c.RobotURL)
	}

	for name, d := range map[string]time.Duration{
		"POLL_INTERVAL":   c.PollInterval,
		"COMMAND_DISPLAY": c.CommandDisplay,
		"BUTTON_FLASH":    c.ButtonFlash,
		"REQUEST_TIMEOUT": c.RequestTimeout,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be positive, got: %s", name, d)
		}
	}

	if err := ValidateCommands(c.Commands); err != nil {
		return err
	}

	if c.Ordering != OrderingLastResponse && c.Ordering != OrderingDiscardStale {
		return fmt.Errorf("ORDERING must be either '%s' or '%s', got: %s",
			OrderingLastResponse, OrderingDiscardStale, c.Ordering)
	}

	return nil
}

// ValidateCommands rejects empty and duplicate command ids
func ValidateCommands(ids []string) error {
	seen := sets.New[string]()
	for _, id := range ids {
		if id == "" {
			return fmt.Errorf("command id must not be empty")
		}
		if seen.Has(id) {
			return fmt.Errorf("duplicate command id: %s", id)
		}
		seen.Insert(id)
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parseList splits a comma-separated list, trimming blanks around entries.
// Empty entries are kept so validation can report them.
func parseList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.TrimSpace(p))
	}
	return out
}

// parsePort differs from the usual int parsing in that an explicit 0 is kept
// (it disables the server).
func parsePort(value string, defaultValue int) int {
	if value == "" {
		return defaultValue
	}
	var result int
	if _, err := fmt.Sscanf(value, "%d", &result); err != nil || result < 0 {
		return defaultValue
	}
	return result
}

func parseDuration(value string, defaultValue time.Duration) (time.Duration, error) {
	if value == "" {
		return defaultValue, nil
	}
	return time.ParseDuration(value)
}
