package config

import (
	"os"
	"testing"
	"time"
)

// clearEnv unsets variables that would otherwise leak in from the host.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "STORE_BACKEND", "DB_PORT", "DATASET_URL", "DATASET_TIMEOUT",
		"PAGINATION_MAX_PER_PAGE", "SCHEDULER_ENABLED", "SCHEDULER_TIMES", "SCHEDULER_WORKERS",
		"TLS_ENABLED", "TLS_CERT_PATH", "TLS_KEY_PATH", "AMQP_URL", "ALLOWED_HOSTS",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Server.Port != "5050" {
		t.Errorf("Server.Port = %q, want %q", cfg.Server.Port, "5050")
	}
	if cfg.Database.Port != 5432 {
		t.Errorf("Database.Port = %d, want %d", cfg.Database.Port, 5432)
	}
	if cfg.Store.Backend != BackendPostgres {
		t.Errorf("Store.Backend = %q, want %q", cfg.Store.Backend, BackendPostgres)
	}
	if !cfg.Store.AutoMigrate {
		t.Error("Store.AutoMigrate should default to true")
	}
	if cfg.Pagination.MaxPerPage != 100 {
		t.Errorf("Pagination.MaxPerPage = %d, want 100", cfg.Pagination.MaxPerPage)
	}
	if cfg.Dataset.Timeout != 30*time.Second {
		t.Errorf("Dataset.Timeout = %v, want 30s", cfg.Dataset.Timeout)
	}
	if cfg.Scheduler.Enabled {
		t.Error("Scheduler.Enabled should default to false")
	}
	if cfg.AMQP.URL != "" {
		t.Errorf("AMQP.URL = %q, want empty", cfg.AMQP.URL)
	}
	if cfg.Server.AllowedHosts != nil {
		t.Errorf("AllowedHosts = %v, want nil", cfg.Server.AllowedHosts)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"db port", map[string]string{"DB_PORT": "not-a-number"}},
		{"dataset timeout", map[string]string{"DATASET_TIMEOUT": "soon"}},
		{"backend", map[string]string{"STORE_BACKEND": "mongo"}},
		{"max per page zero", map[string]string{"PAGINATION_MAX_PER_PAGE": "0"}},
		{"max per page text", map[string]string{"PAGINATION_MAX_PER_PAGE": "many"}},
		{"scheduler workers", map[string]string{"SCHEDULER_WORKERS": "0"}},
		{"tls without cert", map[string]string{"TLS_ENABLED": "true", "TLS_KEY_PATH": "/path/to/key"}},
		{"tls without key", map[string]string{"TLS_ENABLED": "true", "TLS_CERT_PATH": "/path/to/cert"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			if _, err := Load(); err == nil {
				t.Errorf("Load() expected error for %v, got nil", tt.env)
			}
		})
	}
}

func TestLoad_SQLiteBackend(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_BACKEND", "SQLite")
	t.Setenv("SQLITE_DB_PATH", "/tmp/dash.db")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Store.Backend != BackendSQLite {
		t.Errorf("Store.Backend = %q, want %q", cfg.Store.Backend, BackendSQLite)
	}
	if cfg.Store.SQLitePath != "/tmp/dash.db" {
		t.Errorf("Store.SQLitePath = %q", cfg.Store.SQLitePath)
	}
}

func TestLoad_AllowedHosts(t *testing.T) {
	clearEnv(t)
	t.Setenv("ALLOWED_HOSTS", "example.com, api.example.com,, localhost:3000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if len(cfg.Server.AllowedHosts) != 3 {
		t.Errorf("AllowedHosts = %v, want 3 entries", cfg.Server.AllowedHosts)
	}
}

func TestLoad_SchedulerConfig(t *testing.T) {
	clearEnv(t)
	t.Setenv("SCHEDULER_ENABLED", "yes")
	t.Setenv("SCHEDULER_TIMES", "03:00, 15:30")
	t.Setenv("SCHEDULER_WORKERS", "2")
	t.Setenv("SCHEDULER_RUN_ON_STARTUP", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if !cfg.Scheduler.Enabled {
		t.Error("Scheduler.Enabled should be true")
	}
	if len(cfg.Scheduler.ScheduleTimes) != 2 || cfg.Scheduler.ScheduleTimes[1] != "15:30" {
		t.Errorf("Scheduler.ScheduleTimes = %v", cfg.Scheduler.ScheduleTimes)
	}
	if cfg.Scheduler.WorkerCount != 2 {
		t.Errorf("Scheduler.WorkerCount = %d, want 2", cfg.Scheduler.WorkerCount)
	}
	if !cfg.Scheduler.RunOnStartup {
		t.Error("Scheduler.RunOnStartup should be true")
	}
}

func TestGetBoolEnv(t *testing.T) {
	tests := []struct {
		value    string
		defVal   bool
		expected bool
	}{
		{"true", false, true},
		{"TRUE", false, true},
		{"1", false, true},
		{"yes", false, true},
		{"false", true, false},
		{"0", true, false},
		{"no", true, false},
		{"invalid", true, true},
		{"invalid", false, false},
		{"", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			key := "TEST_BOOL_ENV"
			if tt.value == "" {
				os.Unsetenv(key)
			} else {
				t.Setenv(key, tt.value)
			}

			got := getBoolEnv(key, tt.defVal)
			if got != tt.expected {
				t.Errorf("getBoolEnv(%q, %v) = %v, want %v", tt.value, tt.defVal, got, tt.expected)
			}
		})
	}
}

func TestDatabaseConfig_ConnectionString(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "testuser",
		Password: "testpass",
		DBName:   "saledash",
		SSLMode:  "disable",
	}

	expected := "host=localhost port=5432 user=testuser password=testpass dbname=saledash sslmode=disable"
	if got := cfg.ConnectionString(); got != expected {
		t.Errorf("ConnectionString() = %q, want %q", got, expected)
	}
}
