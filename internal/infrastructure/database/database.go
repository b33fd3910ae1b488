package database

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/studyplan/internal/infrastructure/config"
)

const sqliteDriverName = "sqlite3_studyplan"

var registerSQLite sync.Once

// DB wraps a database/sql handle together with the driver it was opened with.
type DB struct {
	*sql.DB
	Driver string
}

// Rebind rewrites '?' placeholders into the driver's native form.
func (db *DB) Rebind(query string) string {
	if db.Driver != config.DriverPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// NewDB opens and pings the configured database.
func NewDB(cfg *config.Config, logger *logrus.Logger) (*DB, func(), error) {
	driver, err := cfg.DatabaseDriver()
	if err != nil {
		return nil, nil, fmt.Errorf("determine database driver: %w", err)
	}

	dsn, err := cfg.DatabaseURL()
	if err != nil {
		return nil, nil, fmt.Errorf("determine database dsn: %w", err)
	}

	switch driver {
	case config.DriverPostgres:
		return newPostgresDB(cfg, logger, dsn)
	case config.DriverSQLite:
		return OpenSQLite(dsn)
	default:
		return nil, nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

func newPostgresDB(cfg *config.Config, logger *logrus.Logger, dsn string) (*DB, func(), error) {
	connCfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("parse postgres config: %w", err)
	}
	if cfg.Database.LogSQL && logger != nil {
		connCfg.Tracer = &tracelog.TraceLog{
			Logger: tracelog.LoggerFunc(func(_ context.Context, lvl tracelog.LogLevel, msg string, data map[string]any) {
				logger.WithFields(logrus.Fields(data)).WithField("pgx_level", lvl.String()).Debug(msg)
			}),
			LogLevel: tracelog.LogLevelTrace,
		}
	}

	rawDB := stdlib.OpenDB(*connCfg)
	rawDB.SetMaxOpenConns(10)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rawDB.PingContext(ctx); err != nil {
		rawDB.Close()
		return nil, nil, fmt.Errorf("ping postgres db: %w", err)
	}

	db := &DB{DB: rawDB, Driver: config.DriverPostgres}
	return db, func() { _ = rawDB.Close() }, nil
}

// OpenSQLite opens a SQLite database with foreign keys enforced on every
// connection.
func OpenSQLite(dsn string) (*DB, func(), error) {
	registerSQLite.Do(func() {
		sql.Register(sqliteDriverName, &sqlite3.SQLiteDriver{
			ConnectHook: func(conn *sqlite3.SQLiteConn) error {
				_, err := conn.Exec("PRAGMA foreign_keys = ON;", nil)
				return err
			},
		})
	})

	rawDB, err := sql.Open(sqliteDriverName, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open sqlite db: %w", err)
	}
	rawDB.SetMaxOpenConns(1)
	rawDB.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rawDB.PingContext(ctx); err != nil {
		rawDB.Close()
		return nil, nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	db := &DB{DB: rawDB, Driver: config.DriverSQLite}
	return db, func() { _ = rawDB.Close() }, nil
}
