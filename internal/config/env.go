package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Environment variables that override the config file.
const (
	EnvHost        = "WORDLEBOT_HOST"
	EnvPort        = "WORDLEBOT_PORT"
	EnvTLS         = "WORDLEBOT_TLS"
	EnvUsername    = "WORDLEBOT_USERNAME"
	EnvWordsFile   = "WORDLEBOT_WORDS_FILE"
	EnvStrategy    = "WORDLEBOT_STRATEGY"
	EnvReadTimeout = "WORDLEBOT_READ_TIMEOUT_SEC"
	EnvLogLevel    = "WORDLEBOT_LOG_LEVEL"
	EnvLogDir      = "WORDLEBOT_LOG_DIR"
	EnvHistory     = "WORDLEBOT_HISTORY_PATH"
	EnvAPIAddr     = "WORDLEBOT_API_ADDR"
	EnvMQTTBroker  = "WORDLEBOT_MQTT_BROKER"
)

// LoadDotEnv loads variables from .env files into the process environment
// without overriding variables that are already set. Missing files are
// ignored.
func LoadDotEnv(files ...string) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			log.Warn().Err(err).Str("file", f).Msg("failed to load env file")
			continue
		}
		log.Debug().Str("file", f).Msg("loaded env file")
	}
}

// ApplyEnv overlays environment variables onto the configuration.
func (c *Config) ApplyEnv() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	g := &c.GameData
	app := &c.ApplicationData

	if v, ok := lookup(EnvHost); ok {
		g.Host = v
	}
	if v, ok := lookup(EnvPort); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvPort, v, err)
		}
		g.Port = port
	}
	if v, ok := lookup(EnvTLS); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvTLS, v, err)
		}
		g.TLS = b
	}
	if v, ok := lookup(EnvUsername); ok {
		g.Username = v
	}
	if v, ok := lookup(EnvWordsFile); ok {
		g.WordsFile = v
	}
	if v, ok := lookup(EnvStrategy); ok {
		g.Strategy = v
	}
	if v, ok := lookup(EnvReadTimeout); ok {
		sec, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvReadTimeout, v, err)
		}
		g.ReadTimeoutSec = sec
	}
	if v, ok := lookup(EnvLogLevel); ok {
		app.Logging.Level = v
	}
	if v, ok := lookup(EnvLogDir); ok {
		app.Logging.Directory = v
	}
	if v, ok := lookup(EnvHistory); ok {
		app.History.Path = v
	}
	if v, ok := lookup(EnvAPIAddr); ok {
		app.API.Addr = v
	}
	if v, ok := lookup(EnvMQTTBroker); ok {
		app.MQTT.BrokerURL = v
		app.MQTT.Enabled = true
	}

	return nil
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}
