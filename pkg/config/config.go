package config

import (
	"github.com/ilyakaznacheev/cleanenv"
)

type Logging struct {
	JSONFormat bool   `yaml:"json_format"`
	Level      string `yaml:"level"`
}

type Prometheus struct {
	Enabled bool `yaml:"enabled"`
}

type API struct {
	Port                int    `yaml:"port" env:"FRAMEFOLIO_API_PORT" env-default:"3000"`
	HealthCheckFailFile string `yaml:"healthcheck_fail_file"`
}

// Share configures the gallery share-link subsystem: the secret the grant
// codec signs with, how long a link stays valid, and how the handle store
// sweeps expired entries.
type Share struct {
	SigningSecret        string `yaml:"signing_secret" env:"FRAMEFOLIO_SHARE_SIGNING_SECRET"`
	LifetimeSeconds      int    `yaml:"lifetime_seconds" env-default:"3600"`
	HandleLength         int    `yaml:"handle_length" env-default:"8"`
	SweepIntervalSeconds int    `yaml:"sweep_interval_seconds" env-default:"3600"`
	BaseURL              string `yaml:"base_url" env:"FRAMEFOLIO_BASE_URL" env-default:"http://localhost:3000"`
}

// Failure policies for the access gate when the session check itself fails
// (upstream error or timeout). fail_closed is the default; fail_open_dev
// exists so local development does not loop on the login redirect and must
// never be enabled in production.
const (
	FailClosed             = "fail_closed"
	FailOpenForDevelopment = "fail_open_dev"
)

type Auth struct {
	IssuerBaseURL string `yaml:"issuer_base_url" env:"FRAMEFOLIO_AUTH_ISSUER_BASE_URL"`
	ClientID      string `yaml:"client_id" env:"FRAMEFOLIO_AUTH_CLIENT_ID"`
	ClientSecret  string `yaml:"client_secret" env:"FRAMEFOLIO_AUTH_CLIENT_SECRET"`
	Scope         string `yaml:"scope" env-default:"openid profile email"`

	SessionSecret         string `yaml:"session_secret" env:"FRAMEFOLIO_AUTH_SESSION_SECRET"`
	SessionLifetimeHours  int    `yaml:"session_lifetime_hours" env-default:"24"`
	SessionTimeoutSeconds int    `yaml:"session_timeout_seconds" env-default:"5"`

	FailurePolicy string `yaml:"failure_policy" env-default:"fail_closed"`
}

type Database struct {
	Type string `yaml:"type" env-default:"sqlite"`
	DSN  string `yaml:"dsn" env-default:"file::memory:?cache=shared"`
}

// Gallery seeds the content store when running from static configuration,
// the same way a config-file-only deployment seeds its destinations.
type Gallery struct {
	Title       string   `yaml:"title"`
	Slug        string   `yaml:"slug"`
	Description string   `yaml:"description"`
	CoverURL    string   `yaml:"cover_url"`
	Photos      []string `yaml:"photos"`
}

type FramefolioConfig struct {
	Logging    Logging    `yaml:"logging"`
	API        API        `yaml:"api"`
	Share      Share      `yaml:"share"`
	Auth       Auth       `yaml:"auth"`
	Database   Database   `yaml:"database"`
	Galleries  []Gallery  `yaml:"galleries"`
	Prometheus Prometheus `yaml:"prometheus"`
}

func Load(filePath string) (FramefolioConfig, error) {
	var conf FramefolioConfig
	if err := cleanenv.ReadConfig(filePath, &conf); err != nil {
		return conf, err
	}
	return conf, nil
}
