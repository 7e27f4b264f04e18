// internal/config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFromDefaults(t *testing.T) {
	cfg, err := LoadFrom(t.TempDir())
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.Database.Driver != "sqlite3" {
		t.Errorf("Database.Driver = %q, want sqlite3", cfg.Database.Driver)
	}
	if cfg.Printer.SettleDelay != 120*time.Millisecond {
		t.Errorf("Printer.SettleDelay = %v, want 120ms", cfg.Printer.SettleDelay)
	}
	if cfg.Printer.RetryDelay != 80*time.Millisecond {
		t.Errorf("Printer.RetryDelay = %v, want 80ms", cfg.Printer.RetryDelay)
	}
	if cfg.Printer.TicketTearOffset != -60 || cfg.Printer.HelloTearOffset != -50 {
		t.Errorf("tear offsets = %v/%v", cfg.Printer.HelloTearOffset, cfg.Printer.TicketTearOffset)
	}
	if cfg.Bluetooth.RFCOMMChannel != 1 {
		t.Errorf("Bluetooth.RFCOMMChannel = %d, want 1", cfg.Bluetooth.RFCOMMChannel)
	}
}

func TestLoadFromFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte("logging:\n  level: debug\nbluetooth:\n  transport: tty\n")
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("METER_PRINT_PRINTER_RETRY_DELAY", "150ms")

	cfg, err := LoadFrom(dir)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.Bluetooth.Transport != "tty" {
		t.Errorf("Bluetooth.Transport = %q, want tty", cfg.Bluetooth.Transport)
	}
	if cfg.Printer.RetryDelay != 150*time.Millisecond {
		t.Errorf("Printer.RetryDelay = %v, want 150ms", cfg.Printer.RetryDelay)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"unknown driver", func(c *Config) { c.Database.Driver = "mysql" }, true},
		{"sqlite without path", func(c *Config) { c.Database.Path = "" }, true},
		{"bad transport", func(c *Config) { c.Bluetooth.Transport = "usb" }, true},
		{"channel out of range", func(c *Config) { c.Bluetooth.RFCOMMChannel = 31 }, true},
		{"negative delay", func(c *Config) { c.Printer.RetryDelay = -time.Millisecond }, true},
		{"bad level", func(c *Config) { c.Logging.Level = "trace" }, true},
		{"bad environment", func(c *Config) { c.App.Environment = "qa" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadFrom(t.TempDir())
			if err != nil {
				t.Fatalf("LoadFrom() error = %v", err)
			}
			tt.mutate(cfg)
			if err := validate(cfg); (err != nil) != tt.wantErr {
				t.Errorf("validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGetDatabaseDSN(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{Driver: "sqlite3", Path: "/tmp/p.db"}}
	if got := cfg.GetDatabaseDSN(); got != "file:/tmp/p.db?_busy_timeout=5000&_journal_mode=WAL" {
		t.Errorf("GetDatabaseDSN() = %q", got)
	}

	cfg.Database = DatabaseConfig{Driver: "postgres", Host: "db", Port: 5432, User: "u", Password: "p", DBName: "n", SSLMode: "disable"}
	if got := cfg.GetDatabaseDSN(); got != "host=db port=5432 user=u password=p dbname=n sslmode=disable" {
		t.Errorf("GetDatabaseDSN() = %q", got)
	}
}
