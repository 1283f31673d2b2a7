// README: Postgres connection pool initialization; runs migrations on startup.
package infra

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"

	"chowline/internal/logger"
)

func NewDB(ctx context.Context, dsn string, log logger.ILogger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		log.Error("parse postgres config", logger.Error(err))
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		log.Error("connect postgres", logger.Error(err))
		return nil, err
	}

	cwd, _ := os.Getwd()
	mPath := filepath.Join(cwd, "migrations")

	m, err := migrate.New("file://"+mPath, dsn)
	if err != nil {
		log.Warn("migration init failed; continuing without migrations", logger.Error(err))
	} else if err = m.Up(); err != nil {
		if strings.Contains(err.Error(), "no change") {
			log.Info("no migrations to apply")
		} else {
			log.Error("migration up", logger.Error(err))
			pool.Close()
			return nil, err
		}
	}

	log.Info("postgres connected")
	return pool, nil
}
