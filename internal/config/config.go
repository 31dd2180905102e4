package config

import (
	"context"
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// App holds core runtime configuration shared across services.
type App struct {
	Name                    string        `env:"APP_NAME" envDefault:"quiz-engine"`
	Env                     string        `env:"APP_ENV" envDefault:"development"`
	HTTPAddr                string        `env:"HTTP_ADDR" envDefault:"0.0.0.0:8080"`
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_SECONDS" envDefault:"20s"`

	Postgres Postgres
	Redis    Redis
	Security Security
	Quiz     Quiz
	Progress Progress
	SMTP     SMTP
}

// Postgres captures connection info for the SQL database.
type Postgres struct {
	Host     string `env:"PG_HOST,notEmpty"`
	Port     int    `env:"PG_PORT" envDefault:"5432"`
	User     string `env:"PG_USER,notEmpty"`
	Password string `env:"PG_PASSWORD,notEmpty"`
	Database string `env:"PG_DATABASE,notEmpty"`
	SSLMode  string `env:"PG_SSL_MODE" envDefault:"disable"`
	MaxConns int    `env:"PG_MAX_CONNS" envDefault:"10"`
}

// DSN renders a keyword/value DSN accepted by any pgx connection.
func (p Postgres) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode)
}

// ConnString is DSN plus pgxpool sizing.
func (p Postgres) ConnString() string {
	return fmt.Sprintf("%s pool_max_conns=%d", p.DSN(), p.MaxConns)
}

// Redis holds cache + pub/sub configuration.
type Redis struct {
	Addr     string `env:"REDIS_ADDR,notEmpty"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
	PoolSize int    `env:"REDIS_POOL_SIZE" envDefault:"20"`
}

// Security stores the shared secret used to verify identity provider tokens.
type Security struct {
	JWTSecret string `env:"JWT_SECRET,notEmpty"`
	JWTIssuer string `env:"JWT_ISSUER" envDefault:"aprendeexcel-identity"`
}

// Quiz governs session lifecycle and persistence timing.
type Quiz struct {
	BankPath                string        `env:"QUIZ_BANK_PATH" envDefault:""`
	IntermediateSaveTimeout time.Duration `env:"QUIZ_INTERMEDIATE_SAVE_TIMEOUT" envDefault:"3s"`
	FinalSaveTimeout        time.Duration `env:"QUIZ_FINAL_SAVE_TIMEOUT" envDefault:"5s"`
	SessionTTL              time.Duration `env:"QUIZ_SESSION_TTL" envDefault:"2h"`
	SweepInterval           time.Duration `env:"QUIZ_SESSION_SWEEP_INTERVAL" envDefault:"5m"`
}

// Progress configures snapshot caching and update fan-out.
type Progress struct {
	CacheTTL      time.Duration `env:"PROGRESS_CACHE_TTL" envDefault:"5m"`
	PubSubChannel string        `env:"PROGRESS_PUBSUB_CHANNEL" envDefault:"progress:updates"`
}

// SMTP holds email server configuration for admin notices.
type SMTP struct {
	Host       string `env:"SMTP_HOST" envDefault:""`
	Port       int    `env:"SMTP_PORT" envDefault:"587"`
	Username   string `env:"SMTP_USERNAME" envDefault:""`
	Password   string `env:"SMTP_PASSWORD" envDefault:""`
	FromEmail  string `env:"SMTP_FROM_EMAIL" envDefault:""`
	AdminEmail string `env:"SMTP_ADMIN_EMAIL" envDefault:""`
}

// Enabled reports whether enough SMTP settings are present to send mail.
func (s SMTP) Enabled() bool {
	return s.Host != "" && s.Port != 0 && s.FromEmail != "" && s.AdminEmail != ""
}

// Load parses environment variables into App config.
func Load(ctx context.Context) (*App, error) {
	cfg := &App{}
	if err := env.ParseWithOptions(cfg, env.Options{RequiredIfNoDef: true}); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
