package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App   AppConfig
	DB    DBConfig
	Redis RedisConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"RAKTARHUB_APP_ENV" required:"true"`
	Port         string `envconfig:"RAKTARHUB_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"RAKTARHUB_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"RAKTARHUB_LOG_WARN_STACK" default:"false"`
	AutoMigrate  bool   `envconfig:"RAKTARHUB_AUTO_MIGRATE" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"RAKTARHUB_DB_DSN"`

	Host     string `envconfig:"RAKTARHUB_DB_HOST"`
	Port     int    `envconfig:"RAKTARHUB_DB_PORT" default:"5432"`
	User     string `envconfig:"RAKTARHUB_DB_USER"`
	Password string `envconfig:"RAKTARHUB_DB_PASSWORD"`
	Name     string `envconfig:"RAKTARHUB_DB_NAME"`
	SSLMode  string `envconfig:"RAKTARHUB_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"RAKTARHUB_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"RAKTARHUB_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"RAKTARHUB_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"RAKTARHUB_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// ensureDSN assembles a postgres DSN from the discrete fields when none is set.
func (d *DBConfig) ensureDSN() error {
	if d.DSN != "" {
		return nil
	}
	if d.Host == "" || d.User == "" || d.Name == "" {
		return fmt.Errorf("either RAKTARHUB_DB_DSN or host/user/name settings are required")
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.Name,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	d.DSN = u.String()
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"RAKTARHUB_REDIS_URL"`
	Address      string        `envconfig:"RAKTARHUB_REDIS_ADDR"`
	Password     string        `envconfig:"RAKTARHUB_REDIS_PASSWORD"`
	DB           int           `envconfig:"RAKTARHUB_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"RAKTARHUB_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"RAKTARHUB_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"RAKTARHUB_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"RAKTARHUB_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"RAKTARHUB_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a redis endpoint was configured at all. The cache
// invalidator degrades to a no-op when it is absent.
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}
