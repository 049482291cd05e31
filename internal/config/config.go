// Package config handles configuration loading, validation, and persistence
// for wordlebot. Values come from a JSON file, then environment variables
// (optionally from a .env file), then command-line flags.
package config

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/rs/zerolog/log"
)

// AppVersion is reported by the CLI and the API.
const AppVersion = "1.0.0"

const (
	DefaultConfigDir   = "config"
	DefaultConfigFile  = "config.json"
	DefaultPlainPort   = 27993
	DefaultTLSPort     = 27994
	DefaultAPIAddr     = ":8080"
	DefaultHistoryPath = "data/history.db"
	DefaultDialTimeout = 10
)

// Config is the root configuration structure for wordlebot.
type Config struct {
	mu   sync.RWMutex
	path string

	GameData        GameData        `json:"game_data"`
	ApplicationData ApplicationData `json:"application_data"`
}

// GameData describes the server to play against and how to play.
type GameData struct {
	Host     string `json:"host"`
	Port     int    `json:"port"` // 0 selects the default for the TLS setting
	TLS      bool   `json:"tls"`
	Username string `json:"username"`

	WordsFile  string `json:"words_file"` // empty uses the embedded list
	WordLength int    `json:"word_length"`
	Strategy   string `json:"strategy"`

	DialTimeoutSec int `json:"dial_timeout_sec"`
	ReadTimeoutSec int `json:"read_timeout_sec"` // 0 waits forever
}

// ApplicationData contains settings for the supporting services.
type ApplicationData struct {
	Logging LoggingConfig `json:"logging"`
	History HistoryConfig `json:"history"`
	API     APIConfig     `json:"api"`
	MQTT    MQTTConfig    `json:"mqtt"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `json:"level"`
	Directory  string `json:"directory"` // empty disables the log file
	MaxBackups int    `json:"max_backups"`
}

// HistoryConfig controls the local game history database.
type HistoryConfig struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// APIConfig holds settings for the read-only history API.
type APIConfig struct {
	Addr           string   `json:"addr"`
	AllowedOrigins []string `json:"allowed_origins"`
}

// MQTTConfig holds MQTT telemetry settings.
type MQTTConfig struct {
	Enabled     bool   `json:"enabled"`
	BrokerURL   string `json:"broker_url"`
	Port        int    `json:"port"`
	UseTLS      bool   `json:"use_tls"`
	CertFile    string `json:"cert_file"`
	KeyFile     string `json:"key_file"`
	ClientID    string `json:"client_id"`
	TopicPrefix string `json:"topic_prefix"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		GameData: GameData{
			WordLength:     5,
			Strategy:       "first",
			DialTimeoutSec: DefaultDialTimeout,
		},
		ApplicationData: ApplicationData{
			Logging: LoggingConfig{
				Level:      "info",
				MaxBackups: 5,
			},
			History: HistoryConfig{
				Enabled: true,
				Path:    DefaultHistoryPath,
			},
			API: APIConfig{
				Addr: DefaultAPIAddr,
			},
			MQTT: MQTTConfig{
				Enabled:     false,
				Port:        8883,
				UseTLS:      true,
				TopicPrefix: "wordlebot",
			},
		},
	}
}

// DefaultPath returns the config file path used when none is given.
func DefaultPath() string {
	return filepath.Join(DefaultConfigDir, DefaultConfigFile)
}

// Load reads configuration from a JSON file. A missing file is not an
// error: the defaults are returned and nothing is written to disk.
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = DefaultPath()
	}

	cfg := DefaultConfig()
	cfg.path = configPath

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Debug().Str("path", configPath).Msg("config file not found, using defaults")
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
	}

	log.Debug().Str("path", configPath).Msg("configuration loaded")
	return cfg, nil
}

// Save writes the current configuration to disk.
func (c *Config) Save() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(c.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	log.Debug().Str("path", c.path).Msg("configuration saved")
	return nil
}

// GetGameData returns a copy of the game configuration.
func (c *Config) GetGameData() GameData {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.GameData
}

// SetGameData updates the game configuration.
func (c *Config) SetGameData(data GameData) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.GameData = data
}

// GetApplicationData returns a copy of the application data configuration.
func (c *Config) GetApplicationData() ApplicationData {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ApplicationData
}

// SetApplicationData updates the application data configuration.
func (c *Config) SetApplicationData(data ApplicationData) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ApplicationData = data
}

// Path returns the config file path.
func (c *Config) Path() string {
	return c.path
}

// EffectivePort returns the configured port, or the well-known port for
// the TLS setting when none is configured.
func (g GameData) EffectivePort() int {
	if g.Port != 0 {
		return g.Port
	}
	if g.TLS {
		return DefaultTLSPort
	}
	return DefaultPlainPort
}

// Addr returns host:port for the game server.
func (g GameData) Addr() string {
	return net.JoinHostPort(g.Host, strconv.Itoa(g.EffectivePort()))
}
