// Package config loads hiretrack settings from defaults, an optional
// hiretrack.yaml, a .env file and the environment.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/juju/errors"
	"github.com/spf13/viper"

	"github.com/eleven-am/hiretrack/internal/migrator"
)

// EnvPrefix namespaces every environment override, e.g.
// HIRETRACK_DATABASE_URL.
const EnvPrefix = "HIRETRACK"

type DatabaseConfig struct {
	URL              string        `mapstructure:"url"`
	Host             string        `mapstructure:"host"`
	Port             string        `mapstructure:"port"`
	User             string        `mapstructure:"user"`
	Password         string        `mapstructure:"password"`
	Name             string        `mapstructure:"name"`
	SSLMode          string        `mapstructure:"sslmode"`
	MaxOpenConns     int           `mapstructure:"max_open_conns"`
	MaxIdleConns     int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime  time.Duration `mapstructure:"conn_max_lifetime"`
	StatementTimeout time.Duration `mapstructure:"statement_timeout"`
}

// DBConfig converts the section into connection settings.
func (d DatabaseConfig) DBConfig() *migrator.DBConfig {
	cfg := migrator.NewDBConfig(d.URL)
	if d.MaxOpenConns > 0 {
		cfg.MaxOpenConns = d.MaxOpenConns
	}
	if d.MaxIdleConns > 0 {
		cfg.MaxIdleConns = d.MaxIdleConns
	}
	if d.ConnMaxLifetime > 0 {
		cfg.ConnMaxLifetime = d.ConnMaxLifetime
	}
	if d.StatementTimeout > 0 {
		cfg.StatementTimeout = d.StatementTimeout
	}
	return cfg
}

type HTTPConfig struct {
	Addr         string        `mapstructure:"addr"`
	BasePath     string        `mapstructure:"base_path"`
	CORSOrigin   string        `mapstructure:"cors_origin"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type AuthConfig struct {
	JWTSecret     string        `mapstructure:"jwt_secret"`
	RefreshSecret string        `mapstructure:"refresh_secret"`
	AccessTTL     time.Duration `mapstructure:"access_ttl"`
	RefreshTTL    time.Duration `mapstructure:"refresh_ttl"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
	TLS      string `mapstructure:"tls"`
}

type StorageConfig struct {
	CVDir     string `mapstructure:"cv_dir"`
	URLPrefix string `mapstructure:"url_prefix"`
}

type SweeperConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Interval        time.Duration `mapstructure:"interval"`
	Concurrency     int           `mapstructure:"concurrency"`
	SummaryInterval time.Duration `mapstructure:"summary_interval"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type Config struct {
	Database    DatabaseConfig `mapstructure:"database"`
	HTTP        HTTPConfig     `mapstructure:"http"`
	Auth        AuthConfig     `mapstructure:"auth"`
	SMTP        SMTPConfig     `mapstructure:"smtp"`
	FrontendURL string         `mapstructure:"frontend_url"`
	Storage     StorageConfig  `mapstructure:"storage"`
	Sweeper     SweeperConfig  `mapstructure:"sweeper"`
	Log         LogConfig      `mapstructure:"log"`
}

var defaults = map[string]interface{}{
	"database.url":               "",
	"database.host":              "",
	"database.port":              "5432",
	"database.user":              "postgres",
	"database.password":          "",
	"database.name":              "hiretrack",
	"database.sslmode":           "disable",
	"database.max_open_conns":    10,
	"database.max_idle_conns":    5,
	"database.conn_max_lifetime": "10m",
	"database.statement_timeout": "30s",
	"http.addr":                  ":3001",
	"http.base_path":             "/api",
	"http.cors_origin":           "http://localhost:3000",
	"http.read_timeout":          "30s",
	"http.write_timeout":         "60s",
	"auth.jwt_secret":            "",
	"auth.refresh_secret":        "",
	"auth.access_ttl":            "168h",
	"auth.refresh_ttl":           "720h",
	"smtp.host":                  "",
	"smtp.port":                  587,
	"smtp.username":              "",
	"smtp.password":              "",
	"smtp.from":                  "noreply@jobtracker.com",
	"smtp.tls":                   "opportunistic",
	"frontend_url":               "http://localhost:3000",
	"storage.cv_dir":             "./uploads/cvs",
	"storage.url_prefix":         "/uploads/cvs",
	"sweeper.enabled":            true,
	"sweeper.interval":           "5m",
	"sweeper.concurrency":        1,
	"sweeper.summary_interval":   "0s",
	"log.level":                  "info",
	"log.format":                 "text",
}

// legacyEnv maps keys to the unprefixed variables older deployments use.
var legacyEnv = map[string]string{
	"database.url":        "DATABASE_URL",
	"auth.jwt_secret":     "JWT_SECRET",
	"auth.refresh_secret": "REFRESH_TOKEN_SECRET",
	"http.cors_origin":    "CORS_ORIGIN",
	"smtp.host":           "SMTP_HOST",
	"smtp.port":           "SMTP_PORT",
	"smtp.username":       "SMTP_USER",
	"smtp.password":       "SMTP_PASS",
	"smtp.from":           "EMAIL_FROM",
	"frontend_url":        "FRONTEND_URL",
}

// Load reads configuration. An explicit path must exist; without one,
// hiretrack.yaml is looked up in the working directory and
// $HOME/.hiretrack and is optional.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, errors.Annotate(err, "loading .env")
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, legacy := range legacyEnv {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, legacy); err != nil {
			return nil, errors.Trace(err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("hiretrack")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.hiretrack")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, errors.Annotate(err, "reading config file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Annotate(err, "decoding config")
	}
	cfg.resolveDatabaseURL()
	return &cfg, nil
}

func (c *Config) resolveDatabaseURL() {
	d := &c.Database
	if d.URL == "" && d.Host != "" {
		d.URL = migrator.GetDatabaseURL(d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
	}
}

// ValidateDatabase reports whether a database can be reached in principle.
func (c *Config) ValidateDatabase() error {
	if c.Database.URL == "" {
		return errors.NotValidf("empty database url (set database.url or HIRETRACK_DATABASE_URL)")
	}
	return nil
}

// Validate checks everything serve needs.
func (c *Config) Validate() error {
	if err := c.ValidateDatabase(); err != nil {
		return err
	}
	if c.Auth.JWTSecret == "" {
		return errors.NotValidf("empty auth.jwt_secret")
	}
	if c.Sweeper.Concurrency < 0 {
		return errors.NotValidf("negative sweeper.concurrency")
	}
	if c.Sweeper.Enabled && c.Sweeper.Interval <= 0 {
		return errors.NotValidf("sweeper.interval %s", c.Sweeper.Interval)
	}
	return nil
}
