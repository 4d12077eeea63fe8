package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/m04kA/FitKits-SlotService/internal/domain"
)

const (
	AuthModeJWT    = "jwt"
	AuthModeRemote = "remote"

	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

// ErrInvalidConfig возвращается, когда конфигурация не проходит проверку
var ErrInvalidConfig = errors.New("invalid config")

// Config конфигурация сервиса
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Storage  StorageConfig  `toml:"storage"`
	Logs     LogsConfig     `toml:"logs"`
	Metrics  MetricsConfig  `toml:"metrics"`
	Auth     AuthConfig     `toml:"auth"`
	Slots    SlotsConfig    `toml:"slots"`
	Blocking BlockingConfig `toml:"blocking"`
	Cache    CacheConfig    `toml:"cache"`
	CORS     CORSConfig     `toml:"cors"`
	Realtime RealtimeConfig `toml:"realtime"`
}

type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`  // секунды
	WriteTimeout    int `toml:"write_timeout"` // секунды
	IdleTimeout     int `toml:"idle_timeout"`  // секунды
	ShutdownTimeout int `toml:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"` // секунды
}

// DSN строка подключения для lib/pq
func (d DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     d.DBName,
		RawQuery: url.Values{"sslmode": {d.SSLMode}}.Encode(),
	}
	return u.String()
}

// StorageConfig выбор хранилища. memory - для локального запуска без Postgres.
type StorageConfig struct {
	Driver   string `toml:"driver"`
	SeedFile string `toml:"seed_file"` // JSON с площадками и бронированиями для memory
}

type LogsConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

type AuthConfig struct {
	Mode    string `toml:"mode"` // jwt | remote
	Secret  string `toml:"secret"`
	Issuer  string `toml:"issuer"`
	URL     string `toml:"url"`
	Timeout int    `toml:"timeout"` // секунды
}

type SlotsConfig struct {
	DefaultGranularityMinutes int `toml:"default_granularity_minutes"`
}

type BlockingConfig struct {
	// RejectWhenFullyBooked запрещает блокировать слот, все корты которого заняты
	RejectWhenFullyBooked bool `toml:"reject_when_fully_booked"`
}

type CacheConfig struct {
	Enabled       bool   `toml:"enabled"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	TTLSeconds    int    `toml:"ttl_seconds"`
	Prefix        string `toml:"prefix"`
}

type CORSConfig struct {
	AllowedOrigins []string `toml:"allowed_origins"`
}

type RealtimeConfig struct {
	Enabled      bool `toml:"enabled"`
	SendBuffer   int  `toml:"send_buffer"`
	WriteTimeout int  `toml:"write_timeout"` // секунды
	PingInterval int  `toml:"ping_interval"` // секунды
}

// Load читает конфигурацию из TOML файла, заполняет значения по умолчанию и проверяет её
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	setDefault(&c.Server.HTTPPort, 8080)
	setDefault(&c.Server.ReadTimeout, 10)
	setDefault(&c.Server.WriteTimeout, 10)
	setDefault(&c.Server.IdleTimeout, 60)
	setDefault(&c.Server.ShutdownTimeout, 10)

	setDefault(&c.Database.Port, 5432)
	setDefault(&c.Database.MaxOpenConns, 25)
	setDefault(&c.Database.MaxIdleConns, 5)
	setDefault(&c.Database.ConnMaxLifetime, 300)
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}

	if c.Storage.Driver == "" {
		c.Storage.Driver = StorageDriverPostgres
	}

	if c.Logs.Level == "" {
		c.Logs.Level = "info"
	}

	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Metrics.ServiceName == "" {
		c.Metrics.ServiceName = "slot_service"
	}

	if c.Auth.Mode == "" {
		c.Auth.Mode = AuthModeJWT
	}
	setDefault(&c.Auth.Timeout, 5)

	setDefault(&c.Slots.DefaultGranularityMinutes, domain.DefaultSlotGranularityMinutes)

	setDefault(&c.Cache.TTLSeconds, 300)
	if c.Cache.Prefix == "" {
		c.Cache.Prefix = "fitkits:month-summary"
	}

	setDefault(&c.Realtime.SendBuffer, 16)
	setDefault(&c.Realtime.WriteTimeout, 5)
	setDefault(&c.Realtime.PingInterval, 30)
}

// Validate проверяет конфигурацию после заполнения значений по умолчанию
func (c *Config) Validate() error {
	var problems []string

	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		problems = append(problems, fmt.Sprintf("server.http_port out of range: %d", c.Server.HTTPPort))
	}

	switch c.Storage.Driver {
	case StorageDriverPostgres:
		if c.Database.Host == "" || c.Database.DBName == "" {
			problems = append(problems, "database.host and database.dbname are required for postgres storage")
		}
	case StorageDriverMemory:
	default:
		problems = append(problems, fmt.Sprintf("storage.driver must be %q or %q, got %q",
			StorageDriverPostgres, StorageDriverMemory, c.Storage.Driver))
	}

	switch c.Auth.Mode {
	case AuthModeJWT:
		if c.Auth.Secret == "" {
			problems = append(problems, "auth.secret is required for jwt mode")
		}
	case AuthModeRemote:
		if c.Auth.URL == "" {
			problems = append(problems, "auth.url is required for remote mode")
		}
	default:
		problems = append(problems, fmt.Sprintf("auth.mode must be %q or %q, got %q", AuthModeJWT, AuthModeRemote, c.Auth.Mode))
	}

	if err := domain.ValidateGranularity(c.Slots.DefaultGranularityMinutes); err != nil {
		problems = append(problems, fmt.Sprintf("slots.default_granularity_minutes: %v", err))
	}

	if c.Cache.Enabled && c.Cache.RedisAddr == "" {
		problems = append(problems, "cache.redis_addr is required when cache is enabled")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

func setDefault(v *int, def int) {
	if *v == 0 {
		*v = def
	}
}
