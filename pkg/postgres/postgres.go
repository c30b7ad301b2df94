package postgres

import (
	"context"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // registers the "sqlite" database/sql driver
)

const (
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite"
)

type DB struct {
	Driver   string `yaml:"driver" envconfig:"DB_DRIVER" default:"pgx"`
	Host     string `yaml:"host" envconfig:"DB_HOST" default:"localhost"`
	Port     string `yaml:"port" envconfig:"DB_PORT" default:"5432"`
	Username string `yaml:"user" envconfig:"DB_USER" default:"postgres"`
	Password string `yaml:"password" envconfig:"DB_PASSWORD"`
	NameDB   string `yaml:"dbname" envconfig:"DB_NAME" default:"lending"`
	SSLMode  string `yaml:"sslmode" envconfig:"DB_SSLMODE" default:"disable"`
	// Path is the sqlite database file, ":memory:" for a throwaway database.
	Path     string        `yaml:"path" envconfig:"DB_PATH" default:"lending.db"`
	MaxConns int           `yaml:"maxConns" envconfig:"DB_MAX_CONNS" default:"10"`
	Timeout  time.Duration `yaml:"timeout" envconfig:"DB_CONNECT_TIMEOUT" default:"5s"`
}

func (cfg *DB) dsn() (string, error) {
	switch cfg.Driver {
	case DriverPostgres:
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(cfg.Username, cfg.Password),
			Host:     net.JoinHostPort(cfg.Host, cfg.Port),
			Path:     cfg.NameDB,
			RawQuery: "sslmode=" + cfg.SSLMode,
		}
		return u.String(), nil
	case DriverSQLite:
		return cfg.Path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", nil
	default:
		return "", fmt.Errorf("unknown db driver %q", cfg.Driver)
	}
}

func (cfg *DB) dialect() string {
	if cfg.Driver == DriverSQLite {
		return "sqlite3"
	}
	return "postgres"
}

// MigrationDir is the directory inside the migrations fs holding the dialect's scripts.
func (cfg *DB) MigrationDir() string {
	if cfg.Driver == DriverSQLite {
		return "sqlite"
	}
	return "postgres"
}

// NewPostgresDB opens the configured database, checks the connection and applies
// the embedded migrations. Despite the name it also serves sqlite for local runs.
func NewPostgresDB(ctx context.Context, cfg *DB, migrations fs.FS) (*sqlx.DB, error) {
	dsn, err := cfg.dsn()
	if err != nil {
		return nil, err
	}
	db, err := sqlx.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "sqlx.Open")
	}
	if cfg.Driver == DriverSQLite {
		// a single connection serializes writers and keeps ":memory:" databases shared
		db.SetMaxOpenConns(1)
	} else if cfg.MaxConns > 0 {
		db.SetMaxOpenConns(cfg.MaxConns)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	if err = db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "db.Ping")
	}

	if migrations != nil {
		if err = Migrate(cfg, db, migrations); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return db, nil
}

// goose keeps its fs and dialect in package globals.
var gooseMu sync.Mutex

func Migrate(cfg *DB, db *sqlx.DB, migrations fs.FS) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect(cfg.dialect()); err != nil {
		return errors.Wrap(err, "goose.SetDialect")
	}
	if err := goose.Up(db.DB, cfg.MigrationDir()); err != nil {
		return errors.Wrap(err, "goose.Up")
	}
	return nil
}
