package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// App holds core runtime configuration shared across services.
//
// The quiz backend location and the UI-facing paths used to be ambient
// lookups in the hosting shell; they are explicit fields here with their
// fallback defaults documented on the env tags.
type App struct {
	Name                    string        `env:"APP_NAME" envDefault:"quizdeck"`
	Env                     string        `env:"APP_ENV" envDefault:"development"`
	HTTPAddr                string        `env:"HTTP_ADDR" envDefault:"0.0.0.0:8080"`
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_SECONDS" envDefault:"20s"`

	Site     Site
	Upstream Upstream
	Redis    Redis
	Attempt  Attempt
}

// Site captures presentation settings handed to the browser UI.
type Site struct {
	Title     string `env:"SITE_TITLE" envDefault:"Quiz App"`
	AdminPath string `env:"ADMIN_PATH" envDefault:"/admin"`
}

// Upstream points at the external quiz REST API that owns all durable state.
type Upstream struct {
	APIBaseURL  string        `env:"QUIZ_API_URL" envDefault:"http://localhost:4000/api"`
	HTTPTimeout time.Duration `env:"QUIZ_API_TIMEOUT" envDefault:"10s"`
}

// Redis holds the optional result-store backend. When Addr is empty the
// service falls back to the in-memory store.
type Redis struct {
	Addr     string `env:"REDIS_ADDR"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
	PoolSize int    `env:"REDIS_POOL_SIZE" envDefault:"20"`
}

// Attempt groups quiz-taking defaults.
type Attempt struct {
	ResultTTL  time.Duration `env:"RESULT_TTL" envDefault:"30m"`
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"2h"`
}

// Load parses environment variables into App config.
func Load(ctx context.Context) (*App, error) {
	cfg := &App{}
	if err := env.ParseWithOptions(cfg, env.Options{RequiredIfNoDef: true}); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.Upstream.APIBaseURL = strings.TrimRight(cfg.Upstream.APIBaseURL, "/")
	return cfg, nil
}
