package config

import (
	"context"
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// App holds runtime configuration for the API service.
type App struct {
	Name                    string        `env:"APP_NAME" envDefault:"sdk-quiz"`
	Env                     string        `env:"APP_ENV" envDefault:"development"`
	LogLevel                string        `env:"LOG_LEVEL" envDefault:"info"`
	HTTPAddr                string        `env:"HTTP_ADDR" envDefault:"0.0.0.0:8080"`
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_SECONDS" envDefault:"20s"`

	Postgres    Postgres
	Redis       Redis
	Security    Security
	Quiz        Quiz
	Leaderboard Leaderboard
	CORS        CORS
}

// Postgres captures connection info for the results database.
type Postgres struct {
	Host     string `env:"PG_HOST,notEmpty"`
	Port     int    `env:"PG_PORT" envDefault:"5432"`
	User     string `env:"PG_USER,notEmpty"`
	Password string `env:"PG_PASSWORD,notEmpty"`
	Database string `env:"PG_DATABASE,notEmpty"`
	SSLMode  string `env:"PG_SSL_MODE" envDefault:"disable"`
	MaxConns int    `env:"PG_MAX_CONNS" envDefault:"10"`
}

// ConnString renders a keyword/value connection string for a single connection.
func (p Postgres) ConnString() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode)
}

// DSN is ConnString plus the pgxpool sizing parameter.
func (p Postgres) DSN() string {
	return fmt.Sprintf("%s pool_max_conns=%d", p.ConnString(), p.MaxConns)
}

// Redis holds session and leaderboard storage configuration.
type Redis struct {
	Addr     string `env:"REDIS_ADDR,notEmpty"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
	PoolSize int    `env:"REDIS_POOL_SIZE" envDefault:"20"`
}

// Security stores secrets for session tokens.
type Security struct {
	JWTSecret string        `env:"JWT_SECRET,notEmpty"`
	TokenTTL  time.Duration `env:"SESSION_TOKEN_TTL" envDefault:"2h"`
}

// Quiz groups gameplay defaults.
type Quiz struct {
	SessionTTL   time.Duration `env:"QUIZ_SESSION_TTL" envDefault:"2h"`
	LockTTL      time.Duration `env:"QUIZ_LOCK_TTL" envDefault:"10s"`
	DefaultCount int           `env:"QUIZ_DEFAULT_COUNT" envDefault:"0"`
	Weighting    string        `env:"QUIZ_WEIGHTING" envDefault:"flat"`
	Seed         int64         `env:"QUIZ_SEED" envDefault:"0"`
}

// Leaderboard governs ranking and snapshot behavior.
type Leaderboard struct {
	TopN             int           `env:"LEADERBOARD_TOP" envDefault:"50"`
	SnapshotInterval time.Duration `env:"LEADERBOARD_SNAPSHOT_INTERVAL" envDefault:"5m"`
	SnapshotTopN     int           `env:"LEADERBOARD_SNAPSHOT_TOP" envDefault:"50"`
}

// CORS holds Cross-Origin Resource Sharing configuration.
type CORS struct {
	AllowedOrigins   []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000,http://127.0.0.1:3000"`
	AllowedMethods   []string `env:"CORS_ALLOWED_METHODS" envSeparator:"," envDefault:"GET,POST,OPTIONS"`
	AllowedHeaders   []string `env:"CORS_ALLOWED_HEADERS" envSeparator:"," envDefault:"Content-Type,Authorization"`
	AllowCredentials bool     `env:"CORS_ALLOW_CREDENTIALS" envDefault:"true"`
	MaxAge           int      `env:"CORS_MAX_AGE" envDefault:"3600"`
}

// CLI is the configuration of the interactive terminal quiz. Everything has a default
// so the binary runs with an empty environment.
type CLI struct {
	Env         string `env:"APP_ENV" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"warn"`
	Bank        string `env:"QUIZ_BANK" envDefault:""`
	Player      string `env:"QUIZ_PLAYER" envDefault:"local"`
	Seed        int64  `env:"QUIZ_SEED" envDefault:"0"`
	Weighting   string `env:"QUIZ_WEIGHTING" envDefault:"flat"`
	HistoryPath string `env:"QUIZ_HISTORY_PATH" envDefault:""`
}

// Load parses environment variables into App config.
func Load(ctx context.Context) (*App, error) {
	cfg := &App{}
	if err := env.ParseWithOptions(cfg, env.Options{RequiredIfNoDef: true}); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Quiz.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadCLI parses environment variables into CLI config.
func LoadCLI(ctx context.Context) (*CLI, error) {
	cfg := &CLI{}
	if err := env.ParseWithOptions(cfg, env.Options{RequiredIfNoDef: true}); err != nil {
		return nil, fmt.Errorf("parse cli config: %w", err)
	}
	if err := validWeighting(cfg.Weighting); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (q Quiz) validate() error {
	if q.SessionTTL <= 0 {
		return fmt.Errorf("QUIZ_SESSION_TTL must be positive")
	}
	if q.DefaultCount < 0 {
		return fmt.Errorf("QUIZ_DEFAULT_COUNT must not be negative")
	}
	return validWeighting(q.Weighting)
}

func validWeighting(w string) error {
	switch w {
	case "flat", "tiered":
		return nil
	}
	return fmt.Errorf("QUIZ_WEIGHTING must be flat or tiered, got %q", w)
}

// LoadPostgres parses only the Postgres settings, for tools that need nothing else.
func LoadPostgres() (*Postgres, error) {
	cfg := &Postgres{}
	if err := env.ParseWithOptions(cfg, env.Options{RequiredIfNoDef: true}); err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}
	return cfg, nil
}
