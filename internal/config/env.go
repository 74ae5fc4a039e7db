package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const (
	EnvServiceURL     = "VOXLATE_SERVICE_URL"
	EnvTargetLanguage = "VOXLATE_TARGET_LANGUAGE"
)

// applyEnv overlays VOXLATE_* values; the process environment wins over dotenvPath.
func applyEnv(cfg *Config, dotenvPath string) ([]Warning, error) {
	values := map[string]string{}
	var warnings []Warning

	if dotenvPath != "" {
		fileValues, err := godotenv.Read(dotenvPath)
		switch {
		case err == nil:
			values = fileValues
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("read env file %q: %w", dotenvPath, err)
		}
	}

	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return strings.TrimSpace(v), true
		}
		v, ok := values[key]
		return strings.TrimSpace(v), ok
	}

	if v, ok := lookup(EnvServiceURL); ok {
		if v == "" {
			warnings = append(warnings, Warning{Message: EnvServiceURL + " is set but empty; ignoring"})
		} else {
			cfg.Service.URL = v
		}
	}
	if v, ok := lookup(EnvTargetLanguage); ok {
		cfg.TargetLanguage = v
	}
	return warnings, nil
}
