package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Environment keys for the push gateway. The legacy names are honoured when
// the current ones are unset.
const (
	EnvPushAddress  = "PUSH_GATEWAY_ADDRESS"
	EnvPushUsername = "PUSH_GATEWAY_BASIC_AUTH_USERNAME"
	EnvPushPassword = "PUSH_GATEWAY_BASIC_AUTH_PASSWORD"

	LegacyEnvPushAddress  = "PROMETHEUS_PUSHGATEWAY_ADDRESS"
	LegacyEnvPushUsername = "PROMETHEUS_PUSHGATEWAY_BASIC_AUTH_USERNAME"
	LegacyEnvPushPassword = "PROMETHEUS_PUSHGATEWAY_BASIC_AUTH_PASSWORD"
)

var envFiles = []string{".env", ".env.local"}

// loadEnvFiles loads the first existing .env file. Variables already set in
// the process environment win.
func loadEnvFiles() error {
	for _, path := range envFiles {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		return nil
	}
	return nil
}

// applyEnv overlays the push gateway settings from the environment.
func applyEnv(cfg *Config, lookup func(string) (string, bool)) {
	if v, ok := firstEnv(lookup, EnvPushAddress, LegacyEnvPushAddress); ok {
		cfg.Push.Address = v
	}
	if v, ok := firstEnv(lookup, EnvPushUsername, LegacyEnvPushUsername); ok {
		cfg.Push.Username = v
	}
	if v, ok := firstEnv(lookup, EnvPushPassword, LegacyEnvPushPassword); ok {
		cfg.Push.Password = v
	}
}

func firstEnv(lookup func(string) (string, bool), keys ...string) (string, bool) {
	for _, k := range keys {
		if v, ok := lookup(k); ok && v != "" {
			return v, true
		}
	}
	return "", false
}
