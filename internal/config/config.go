// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Bluetooth BluetoothConfig `mapstructure:"bluetooth"`
	Printer   PrinterConfig   `mapstructure:"printer"`
	Security  SecurityConfig  `mapstructure:"security"`
	App       AppConfig       `mapstructure:"app"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host" validate:"required"`
	Port         string        `mapstructure:"port" validate:"required"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	TLS          TLSConfig     `mapstructure:"tls"`
}

// TLSConfig represents TLS configuration
type TLSConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	CertFile string `mapstructure:"cert_file"`
	KeyFile  string `mapstructure:"key_file"`
}

// DatabaseConfig holds the preference store connection.
// Driver "sqlite3" uses Path; "postgres" uses the host fields.
type DatabaseConfig struct {
	Driver       string        `mapstructure:"driver" validate:"required"`
	Path         string        `mapstructure:"path"`
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	User         string        `mapstructure:"user"`
	Password     string        `mapstructure:"password"`
	DBName       string        `mapstructure:"dbname"`
	SSLMode      string        `mapstructure:"sslmode"`
	MaxOpenConns int           `mapstructure:"max_open_conns"`
	MaxIdleConns int           `mapstructure:"max_idle_conns"`
	MaxLifetime  time.Duration `mapstructure:"max_lifetime"`
	AutoMigrate  bool          `mapstructure:"auto_migrate"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level" validate:"required"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

// BluetoothConfig represents the platform Bluetooth stack settings
type BluetoothConfig struct {
	Adapter            string        `mapstructure:"adapter"`
	Transport          string        `mapstructure:"transport"`
	RFCOMMChannel      int           `mapstructure:"rfcomm_channel"`
	TTYPort            string        `mapstructure:"tty_port"`
	BaudRate           int           `mapstructure:"baud_rate"`
	ConnectTimeout     time.Duration `mapstructure:"connect_timeout"`
	WriteTimeout       time.Duration `mapstructure:"write_timeout"`
	RuntimePermissions bool          `mapstructure:"runtime_permissions"`
}

// PrinterConfig holds label and transmission tuning
type PrinterConfig struct {
	SettleDelay      time.Duration `mapstructure:"settle_delay"`
	RetryDelay       time.Duration `mapstructure:"retry_delay"`
	HelloTearOffset  float64       `mapstructure:"hello_tear_offset"`
	BarTearOffset    float64       `mapstructure:"bar_tear_offset"`
	TicketTearOffset float64       `mapstructure:"ticket_tear_offset"`
	BarHeight        float64       `mapstructure:"bar_height"`
	OperationTimeout time.Duration `mapstructure:"operation_timeout"`
}

// SecurityConfig represents security configuration
type SecurityConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// AppConfig represents application metadata
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Version     string `mapstructure:"version" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required"`
	Debug       bool   `mapstructure:"debug"`
}

// Load loads configuration from file and environment variables
func Load() (*Config, error) {
	return LoadFrom("./config", "./internal/config", "../../internal/config")
}

// LoadFrom reads config.yaml from the first matching path. A missing file
// leaves defaults and environment overrides in effect.
func LoadFrom(paths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	// Environment variable support
	v.SetEnvPrefix("METER_PRINT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", "8086")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.tls.enabled", false)

	// Database defaults
	v.SetDefault("database.driver", "sqlite3")
	v.SetDefault("database.path", "./data/printer.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.dbname", "meter_print")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 5)
	v.SetDefault("database.max_idle_conns", 2)
	v.SetDefault("database.max_lifetime", "5m")
	v.SetDefault("database.auto_migrate", true)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
	v.SetDefault("logging.max_size", 20)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.max_age", 28)
	v.SetDefault("logging.compress", true)

	// Bluetooth defaults
	v.SetDefault("bluetooth.adapter", "hci0")
	v.SetDefault("bluetooth.transport", "rfcomm")
	v.SetDefault("bluetooth.rfcomm_channel", 1)
	v.SetDefault("bluetooth.tty_port", "/dev/rfcomm0")
	v.SetDefault("bluetooth.baud_rate", 115200)
	v.SetDefault("bluetooth.connect_timeout", "20s")
	v.SetDefault("bluetooth.write_timeout", "10s")
	v.SetDefault("bluetooth.runtime_permissions", false)

	// Printer defaults
	v.SetDefault("printer.settle_delay", "120ms")
	v.SetDefault("printer.retry_delay", "80ms")
	v.SetDefault("printer.hello_tear_offset", -50)
	v.SetDefault("printer.bar_tear_offset", 0)
	v.SetDefault("printer.ticket_tear_offset", -60)
	v.SetDefault("printer.bar_height", 48)
	v.SetDefault("printer.operation_timeout", "45s")

	// App defaults
	v.SetDefault("app.name", "meter-print-service")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.debug", false)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Server.Host == "" {
		return fmt.Errorf("server.host is required")
	}
	if config.Server.Port == "" {
		return fmt.Errorf("server.port is required")
	}

	switch config.Database.Driver {
	case "sqlite3":
		if config.Database.Path == "" {
			return fmt.Errorf("database.path is required for sqlite3")
		}
	case "postgres":
		if config.Database.Host == "" {
			return fmt.Errorf("database.host is required for postgres")
		}
	default:
		return fmt.Errorf("database.driver must be one of: [sqlite3 postgres]")
	}

	switch config.Bluetooth.Transport {
	case "rfcomm":
	case "tty":
		if config.Bluetooth.TTYPort == "" {
			return fmt.Errorf("bluetooth.tty_port is required for tty transport")
		}
	default:
		return fmt.Errorf("bluetooth.transport must be one of: [rfcomm tty]")
	}
	if config.Bluetooth.RFCOMMChannel < 1 || config.Bluetooth.RFCOMMChannel > 30 {
		return fmt.Errorf("bluetooth.rfcomm_channel must be between 1 and 30")
	}

	if config.Printer.SettleDelay < 0 || config.Printer.RetryDelay < 0 {
		return fmt.Errorf("printer delays must not be negative")
	}

	// Validate environment
	validEnvs := []string{"development", "staging", "production", "test"}
	isValidEnv := false
	for _, env := range validEnvs {
		if config.App.Environment == env {
			isValidEnv = true
			break
		}
	}
	if !isValidEnv {
		return fmt.Errorf("app.environment must be one of: %v", validEnvs)
	}

	// Validate logging level
	validLevels := []string{"debug", "info", "warn", "error", "fatal"}
	isValidLevel := false
	for _, level := range validLevels {
		if config.Logging.Level == level {
			isValidLevel = true
			break
		}
	}
	if !isValidLevel {
		return fmt.Errorf("logging.level must be one of: %v", validLevels)
	}

	return nil
}

// GetDatabaseDSN returns the connection string for the configured driver
func (c *Config) GetDatabaseDSN() string {
	if c.Database.Driver == "postgres" {
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			c.Database.Host, c.Database.Port, c.Database.User,
			c.Database.Password, c.Database.DBName, c.Database.SSLMode)
	}
	return fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", c.Database.Path)
}

// GetServerAddr returns the server address
func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}

// IsProduction checks if the environment is production
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// IsDevelopment checks if the environment is development
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsDebugEnabled checks if debug mode is enabled
func (c *Config) IsDebugEnabled() bool {
	return c.App.Debug || c.IsDevelopment()
}
