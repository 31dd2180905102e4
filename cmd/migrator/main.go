package main

import (
	"context"
	"database/sql"
	"flag"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v10"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/aprendeexcel/quiz-engine/internal/config"
)

func main() {
	var (
		command = flag.String("command", "up", "Migration command: up, down, redo, status or version")
		dir     = flag.String("dir", "db/migrations", "Directory containing migration files")
		envFile = flag.String("env-file", "configs/.env", "Optional .env file loaded before reading the environment")
	)
	flag.Parse()

	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Str("app", "migrator").Logger()

	if err := godotenv.Load(*envFile); err != nil {
		log.Debug().Err(err).Str("file", *envFile).Msg("env file not loaded")
	}

	var pg config.Postgres
	if err := env.ParseWithOptions(&pg, env.Options{RequiredIfNoDef: true}); err != nil {
		log.Fatal().Err(err).Msg("invalid database configuration")
	}

	migrationDir, err := filepath.Abs(*dir)
	if err != nil {
		log.Fatal().Err(err).Str("dir", *dir).Msg("failed to resolve migration directory")
	}
	if _, err := os.Stat(migrationDir); os.IsNotExist(err) {
		log.Fatal().Str("dir", migrationDir).Msg("migration directory does not exist")
	}

	// goose drives database/sql; pgx registers itself as the "pgx" driver.
	db, err := sql.Open("pgx", pg.DSN())
	if err != nil {
		log.Fatal().Err(err).Str("host", pg.Host).Int("port", pg.Port).Msg("failed to open database connection")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ping database")
	}

	log.Info().
		Str("host", pg.Host).
		Int("port", pg.Port).
		Str("database", pg.Database).
		Str("migration_dir", migrationDir).
		Msg("connected to database")

	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatal().Err(err).Msg("failed to set goose dialect")
	}
	goose.SetTableName("goose_db_version")

	switch *command {
	case "up", "down", "redo", "status", "version":
		if err := goose.RunContext(ctx, *command, db, migrationDir); err != nil {
			log.Fatal().Err(err).Str("command", *command).Msg("migration command failed")
		}
		log.Info().Str("command", *command).Msg("migration command finished")
	default:
		log.Fatal().Str("command", *command).Msg("unknown command. Use: up, down, redo, status or version")
	}
}
