package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const validConfig = `app:
  name: "Sitecraft"
  environment: "test"
  port: 8080
database:
  driver: "sqlite"
  filename: "data/sitecraft.db"
themes:
  default_palette: "pastel"
  cache_ttl: "45s"
`

func TestParse_Valid(t *testing.T) {
	cfg, err := Parse([]byte(validConfig))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.App.Name != "Sitecraft" || cfg.App.Port != 8080 {
		t.Fatalf("unexpected app config: %+v", cfg.App)
	}
	if cfg.Themes.DefaultPalette != "pastel" {
		t.Fatalf("default palette = %q, want pastel", cfg.Themes.DefaultPalette)
	}
	if got := cfg.Themes.CacheTTLDuration(); got != 45*time.Second {
		t.Fatalf("CacheTTLDuration() = %v, want 45s", got)
	}
	if cfg.Themes.HeartbeatCron != defaultHeartbeatCron {
		t.Fatalf("heartbeat cron = %q, want default", cfg.Themes.HeartbeatCron)
	}
}

func TestParse_EnvOverrides(t *testing.T) {
	t.Setenv("DEFAULT_PALETTE", "molten-core")
	t.Setenv("DATABASE_FILENAME", "/tmp/override.db")

	cfg, err := Parse([]byte(validConfig))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.Themes.DefaultPalette != "molten-core" {
		t.Fatalf("default palette = %q, want molten-core", cfg.Themes.DefaultPalette)
	}
	if cfg.Database.Filename != "/tmp/override.db" {
		t.Fatalf("database filename = %q, want override", cfg.Database.Filename)
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name:    "missing_name",
			body:    "app:\n  port: 1\ndatabase:\n  driver: sqlite\n  filename: a.db\n",
			wantErr: "app name is required",
		},
		{
			name:    "missing_port",
			body:    "app:\n  name: x\ndatabase:\n  driver: sqlite\n  filename: a.db\n",
			wantErr: "app port is required",
		},
		{
			name:    "bad_driver",
			body:    "app:\n  name: x\n  port: 1\ndatabase:\n  driver: postgres\n",
			wantErr: "unsupported database driver",
		},
		{
			name:    "missing_filename",
			body:    "app:\n  name: x\n  port: 1\ndatabase:\n  driver: sqlite\n",
			wantErr: "database filename is required",
		},
		{
			name:    "bad_ttl",
			body:    "app:\n  name: x\n  port: 1\ndatabase:\n  driver: sqlite\n  filename: a.db\nthemes:\n  cache_ttl: soon\n",
			wantErr: "cache_ttl",
		},
		{
			name:    "bad_heartbeat_cron",
			body:    "app:\n  name: x\n  port: 1\ndatabase:\n  driver: sqlite\n  filename: a.db\nthemes:\n  heartbeat_cron: every minute\n",
			wantErr: "heartbeat_cron",
		},
		{
			name:    "bad_sweep_cron",
			body:    "app:\n  name: x\n  port: 1\ndatabase:\n  driver: sqlite\n  filename: a.db\nthemes:\n  cache_sweep_cron: \"61 * * * *\"\n",
			wantErr: "cache_sweep_cron",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := Parse([]byte(test.body))
			if err == nil || !strings.Contains(err.Error(), test.wantErr) {
				t.Fatalf("Parse() error = %v, want %q", err, test.wantErr)
			}
		})
	}
}

func TestLoad_ReadsDotEnvNextToConfig(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(validConfig), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("DEFAULT_PALETTE=futuristic\n"), 0644); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("DEFAULT_PALETTE") })

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Themes.DefaultPalette != "futuristic" {
		t.Fatalf("default palette = %q, want futuristic", cfg.Themes.DefaultPalette)
	}
}
