package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateDefaults(t *testing.T) {
	warnings, err := Validate(Default())
	require.NoError(t, err)
	require.Empty(t, warnings)
}

func TestValidateRejectsInvalidFields(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "empty url", mutate: func(c *Config) { c.Service.URL = "" }, wantErr: "service.url must not be empty"},
		{name: "relative url", mutate: func(c *Config) { c.Service.URL = "localhost" }, wantErr: "service.url must be an absolute URL"},
		{name: "non http scheme", mutate: func(c *Config) { c.Service.URL = "ftp://example.com" }, wantErr: "http or https"},
		{name: "short timeout", mutate: func(c *Config) { c.Service.TimeoutMS = 10 }, wantErr: "service.timeout_ms must be >= 1000"},
		{name: "bad health path", mutate: func(c *Config) { c.Service.HealthPath = "docs" }, wantErr: "service.health_path must start"},
		{name: "bad grpc target", mutate: func(c *Config) { c.Service.GRPCHealth = "no-port" }, wantErr: "service.grpc_health must be host:port"},
		{name: "desktop without app name", mutate: func(c *Config) {
			c.Notify.Desktop = true
			c.Notify.AppName = ""
		}, wantErr: "notify.app_name"},
		{name: "bad log level", mutate: func(c *Config) { c.Log.Level = "trace" }, wantErr: "log.level"},
		{name: "clipboard raw without argv", mutate: func(c *Config) {
			c.Clipboard = CommandConfig{Raw: "mycmd"}
		}, wantErr: "clipboard_cmd"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)

			_, err := Validate(cfg)
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestValidateWarnings(t *testing.T) {
	cfg := Default()
	cfg.Service.URL = "http://localhost:8000/api"
	cfg.Export.Dir = "exports"

	warnings, err := Validate(cfg)
	require.NoError(t, err)
	require.Len(t, warnings, 2)
	require.Contains(t, warnings[0].Message, "prefixed")
	require.Contains(t, warnings[1].Message, "relative")
}
