package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envVars = []string{
	"EXPLORER_CONFIG",
	"EXPLORER_SERVER_PORT", "EXPLORER_SERVER_READ_TIMEOUT",
	"EXPLORER_DATA_SOURCE", "EXPLORER_DATA_GENERIC", "EXPLORER_DATA_MAX_RETRIES",
	"EXPLORER_EXPORT_DIR",
	"EXPLORER_LOGGING_LEVEL", "EXPLORER_LOGGING_FORMAT", "EXPLORER_LOGGING_OUTPUT",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envVars {
		key := key
		if val, ok := os.LookupEnv(key); ok {
			t.Cleanup(func() { os.Setenv(key, val) })
		} else {
			t.Cleanup(func() { os.Unsetenv(key) })
		}
		os.Unsetenv(key)
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "explorer.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		file        string
		wantErr     bool
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "defaults",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, Default(), cfg)
				assert.Equal(t, ":8080", cfg.Server.Addr())
			},
		},
		{
			name: "environment overrides",
			env: map[string]string{
				"EXPLORER_SERVER_PORT":    "9090",
				"EXPLORER_DATA_SOURCE":    "https://example.com/heart.csv",
				"EXPLORER_DATA_GENERIC":   "true",
				"EXPLORER_LOGGING_FORMAT": "TEXT",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9090, cfg.Server.Port)
				assert.Equal(t, "https://example.com/heart.csv", cfg.Data.Source)
				assert.True(t, cfg.Data.Generic)
				assert.Equal(t, "text", cfg.Logging.Format)
			},
		},
		{
			name: "file values apply where env is unset",
			env:  map[string]string{"EXPLORER_SERVER_PORT": "7070"},
			file: "server:\n  port: 6060\n  read_timeout: 5s\ndata:\n  source: heart.xlsx\nexport:\n  dir: exports\n",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 7070, cfg.Server.Port, "env wins over file")
				assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, "heart.xlsx", cfg.Data.Source)
				assert.Equal(t, "exports", cfg.Export.Dir)
				assert.Equal(t, "info", cfg.Logging.Level)
			},
		},
		{
			name:    "invalid port",
			env:     map[string]string{"EXPLORER_SERVER_PORT": "70000"},
			wantErr: true,
		},
		{
			name:    "invalid logging output",
			env:     map[string]string{"EXPLORER_LOGGING_OUTPUT": "syslog"},
			wantErr: true,
		},
		{
			name:    "negative retries",
			env:     map[string]string{"EXPLORER_DATA_MAX_RETRIES": "-1"},
			wantErr: true,
		},
		{
			name:    "malformed file",
			file:    "server: [port",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				os.Setenv(k, v)
			}
			if tt.file != "" {
				os.Setenv("EXPLORER_CONFIG", writeConfig(t, tt.file))
			}

			cfg, err := Load()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.validateCfg != nil {
				tt.validateCfg(t, cfg)
			}
		})
	}
}
