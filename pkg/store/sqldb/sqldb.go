// Package sqldb opens the relational lead database and applies its migrations.
package sqldb

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

type Settings struct {
	Dialect Dialect
	// DSN is a file path for sqlite or a connection URL for postgres.
	DSN string
}

func (d Dialect) driver() (string, error) {
	switch d {
	case DialectSQLite:
		return "sqlite", nil
	case DialectPostgres:
		return "pgx", nil
	default:
		return "", fmt.Errorf("unsupported sql dialect %q", d)
	}
}

func (d Dialect) goose() goose.Dialect {
	if d == DialectPostgres {
		return goose.DialectPostgres
	}
	return goose.DialectSQLite3
}

// Rebind rewrites ? placeholders into the dialect's form.
func (d Dialect) Rebind(query string) string {
	if d != DialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Open connects and pings the database, then runs pending migrations.
func Open(ctx context.Context, settings Settings) (*sql.DB, error) {
	driver, err := settings.Dialect.driver()
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(driver, settings.DSN)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", settings.Dialect, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s database: %w", settings.Dialect, err)
	}
	if err := Migrate(ctx, db, settings.Dialect); err != nil {
		db.Close()
		return nil, err
	}
	if settings.Dialect == DialectSQLite {
		// a single writer avoids SQLITE_BUSY under concurrent requests
		db.SetMaxOpenConns(1)
	}
	return db, nil
}

func Migrate(ctx context.Context, db *sql.DB, dialect Dialect) error {
	logger := zerolog.Ctx(ctx)

	fsys, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}
	provider, err := goose.NewProvider(dialect.goose(), db, fsys)
	if err != nil {
		return fmt.Errorf("create migration provider: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	for _, r := range results {
		logger.Info().Int64("version", r.Source.Version).Dur("duration", r.Duration).Msg("applied migration")
	}
	return nil
}
