package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Browser connection modes
const (
	BrowserModeManaged = "managed" // remote rod manager, one browser per session
	BrowserModeLocal   = "local"   // launch a browser next to the process
)

// Config holds process-wide settings. It is built once by Load and passed by
// value; nothing mutates it afterwards.
type Config struct {
	// Credentials
	Username string
	Password string

	// Target page
	TargetGateway     string
	TargetGatewayPort string

	// Loop
	ResetInterval time.Duration

	// Browser
	BrowserMode         string
	BrowserURL          string
	ChromeBin           string
	ImplicitWait        time.Duration
	CommandTimeout      time.Duration
	SessionCheckTimeout time.Duration
	LoginCheckTimeout   time.Duration

	// Logging
	LogLevel  string
	LogFormat string

	// Optional integrations
	MySQLDSN     string
	StatusAddr   string
	TemporalHost string
	TaskQueue    string
}

// Load reads the configuration from the environment.
func Load() (Config, error) {
	cfg := Config{
		Username:          getEnvOrDefault("USERNAME", "admin"),
		Password:          getEnvOrDefault("PASSWORD", "password"),
		TargetGateway:     getEnvOrDefault("TARGET_GATEWAY", "http://host.docker.internal"),
		TargetGatewayPort: getEnvOrDefault("TARGET_GATEWAY_PORT", "8088"),
		BrowserMode:       strings.ToLower(getEnvOrDefault("BROWSER_MODE", BrowserModeManaged)),
		BrowserURL:        getEnvOrDefault("BROWSER_URL", "ws://host.docker.internal:7317"),
		ChromeBin:         os.Getenv("CHROME_BIN"),
		LogLevel:          getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:         getEnvOrDefault("LOG_FORMAT", "console"),
		MySQLDSN:          os.Getenv("MYSQL_DSN"),
		StatusAddr:        os.Getenv("STATUS_ADDR"),
		TemporalHost:      getEnvOrDefault("TEMPORAL_HOST", "localhost:7233"),
		TaskQueue:         getEnvOrDefault("TASK_QUEUE", "trial-resetter"),
	}

	var err error
	if cfg.ResetInterval, err = getSeconds("RESETINTERVAL", 5); err != nil {
		return Config{}, err
	}
	if cfg.ImplicitWait, err = getSeconds("IMPLICIT_WAIT_SECONDS", 1); err != nil {
		return Config{}, err
	}
	if cfg.CommandTimeout, err = getSeconds("COMMAND_TIMEOUT_SECONDS", 30); err != nil {
		return Config{}, err
	}
	if cfg.SessionCheckTimeout, err = getSeconds("SESSION_CHECK_TIMEOUT_SECONDS", 1); err != nil {
		return Config{}, err
	}
	if cfg.LoginCheckTimeout, err = getSeconds("LOGIN_CHECK_TIMEOUT_SECONDS", 5); err != nil {
		return Config{}, err
	}

	switch cfg.BrowserMode {
	case BrowserModeManaged:
		if cfg.BrowserURL == "" {
			return Config{}, fmt.Errorf("BROWSER_URL is required in %s mode", cfg.BrowserMode)
		}
	case BrowserModeLocal:
	default:
		return Config{}, fmt.Errorf("unknown BROWSER_MODE %q", cfg.BrowserMode)
	}

	return cfg, nil
}

// TargetURL is the gateway URL as seen from the browser.
func (c Config) TargetURL() string {
	return c.TargetGateway + ":" + c.TargetGatewayPort
}

// Redacted returns a copy safe to log.
func (c Config) Redacted() Config {
	if c.Password != "" {
		c.Password = "****"
	}
	if c.MySQLDSN != "" {
		c.MySQLDSN = redactDSN(c.MySQLDSN)
	}
	return c
}

func redactDSN(dsn string) string {
	at := strings.LastIndex(dsn, "@")
	if at < 0 {
		return dsn
	}
	creds := dsn[:at]
	if colon := strings.Index(creds, ":"); colon >= 0 {
		return creds[:colon] + ":****" + dsn[at:]
	}
	return dsn
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getSeconds(key string, defaultVal int) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return time.Duration(defaultVal) * time.Second, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be positive", key, raw)
	}
	return time.Duration(n) * time.Second, nil
}
