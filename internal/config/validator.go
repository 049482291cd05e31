package config

import (
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/wordlebot/wordlebot/internal/solver"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("config validation error [%s]: %s", e.Field, e.Message)
}

// ValidationResult holds the results of configuration validation.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationError
}

// IsValid returns true if there are no validation errors.
func (r *ValidationResult) IsValid() bool {
	return len(r.Errors) == 0
}

// AddError adds a validation error.
func (r *ValidationResult) AddError(field, message string) {
	r.Errors = append(r.Errors, ValidationError{Field: field, Message: message})
}

// AddWarning adds a validation warning.
func (r *ValidationResult) AddWarning(field, message string) {
	r.Warnings = append(r.Warnings, ValidationError{Field: field, Message: message})
}

// Err returns the first validation error, or nil.
func (r *ValidationResult) Err() error {
	if len(r.Errors) == 0 {
		return nil
	}
	return r.Errors[0]
}

// Validate checks everything needed to play a game.
func Validate(cfg *Config) *ValidationResult {
	result := &ValidationResult{}

	game := cfg.GetGameData()
	app := cfg.GetApplicationData()

	validateGameData(&game, result)
	validateApplicationData(&app, result)

	return result
}

// ValidateServices checks only the settings used by the history commands
// and the API server, which never contact the game server.
func ValidateServices(cfg *Config) *ValidationResult {
	result := &ValidationResult{}
	app := cfg.GetApplicationData()
	validateApplicationData(&app, result)
	return result
}

func validateGameData(data *GameData, result *ValidationResult) {
	if strings.TrimSpace(data.Host) == "" {
		result.AddError("game_data.host", "server hostname is required")
	}
	if strings.TrimSpace(data.Username) == "" {
		result.AddError("game_data.username", "username is required")
	}

	if data.Port != 0 {
		validatePort(data.Port, "game_data.port", result)
	}
	if data.TLS && data.Port == DefaultPlainPort {
		result.AddWarning("game_data.port",
			fmt.Sprintf("port %d is the plain-text port but TLS is enabled", data.Port))
	}

	if data.WordsFile != "" {
		if _, err := os.Stat(data.WordsFile); err != nil {
			result.AddError("game_data.words_file", fmt.Sprintf("cannot read words file: %v", err))
		}
	}
	if data.WordLength < 1 {
		result.AddError("game_data.word_length", "word length must be at least 1")
	}

	if _, err := solver.NewSelector(data.Strategy); err != nil {
		result.AddError("game_data.strategy", err.Error())
	}

	if data.DialTimeoutSec < 0 {
		result.AddError("game_data.dial_timeout_sec", "dial timeout cannot be negative")
	}
	if data.ReadTimeoutSec < 0 {
		result.AddError("game_data.read_timeout_sec", "read timeout cannot be negative")
	}
}

func validateApplicationData(data *ApplicationData, result *ValidationResult) {
	if data.History.Enabled && strings.TrimSpace(data.History.Path) == "" {
		result.AddError("application_data.history.path", "history path is required when history is enabled")
	}

	if data.API.Addr != "" {
		if _, _, err := net.SplitHostPort(data.API.Addr); err != nil {
			result.AddError("application_data.api.addr", fmt.Sprintf("invalid listen address: %v", err))
		}
	}

	if data.MQTT.Enabled {
		if strings.TrimSpace(data.MQTT.BrokerURL) == "" {
			result.AddError("application_data.mqtt.broker_url", "MQTT broker URL is required when enabled")
		}
		if data.MQTT.Port < 1 || data.MQTT.Port > 65535 {
			result.AddError("application_data.mqtt.port", "invalid MQTT port")
		}
		if (data.MQTT.CertFile == "") != (data.MQTT.KeyFile == "") {
			result.AddWarning("application_data.mqtt.cert_file",
				"both cert_file and key_file are needed for a client certificate; ignoring")
		}
	}
}

func validatePort(port int, field string, result *ValidationResult) {
	if port < 1 || port > 65535 {
		result.AddError(field, fmt.Sprintf("invalid port number: %d (must be 1-65535)", port))
	}
}
