package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	sqlite3driver "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	sqldblogger "github.com/simukti/sqldb-logger"
	"github.com/simukti/sqldb-logger/logadapter/zerologadapter"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"go.opentelemetry.io/otel"

	schema "todoapi/db"
)

type DB struct {
	*sql.DB
	QueryBuilder *squirrel.StatementBuilderType
}

type Options struct {
	Path   string
	SQLLog bool
}

// Open migrates the database at opts.Path and returns a traced pool. Foreign
// keys are enabled on every connection through the DSN.
func Open(opts Options) (*DB, error) {
	dsn := DSN(opts.Path)

	migrationDB, err := sql.Open("sqlite3", dsn)

	if err != nil {
		return nil, err
	}

	if err := RunMigrations(migrationDB); err != nil {
		migrationDB.Close()
		return nil, err
	}

	migrationDB.Close()

	sqlDB, err := otelsql.Open("sqlite3", dsn,
		otelsql.WithDBSystem("sqlite"),
		otelsql.WithDBName("todoapi"),
		otelsql.WithTracerProvider(otel.GetTracerProvider()),
	)

	if err != nil {
		return nil, err
	}

	if opts.SQLLog {
		sqlDB = withSQLLog(dsn, sqlDB, os.Stdout)
	}

	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, err
	}

	return NewDB(sqlDB), nil
}

// withSQLLog reopens dsn through a query logger stacked on the traced
// driver. The traced pool is closed, only its driver is kept.
func withSQLLog(dsn string, traced *sql.DB, out io.Writer) *sql.DB {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	logger := zerolog.New(out).With().Timestamp().Logger()

	// Arguments are not logged, they include password hashes.
	logged := sqldblogger.OpenDriver(dsn, traced.Driver(), zerologadapter.New(logger),
		sqldblogger.WithLogArguments(false),
	)

	traced.Close()

	return logged
}

// NewDB wraps an already migrated connection.
func NewDB(sqlDB *sql.DB) *DB {
	queryBuilder := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

	return &DB{
		DB:           sqlDB,
		QueryBuilder: &queryBuilder,
	}
}

func DSN(path string) string {
	params := "_foreign_keys=on&_busy_timeout=5000"

	if strings.Contains(path, "?") {
		return path + "&" + params
	}

	return path + "?" + params
}

// RunMigrations applies every pending migration. The migrate instance is not
// closed because that would close db as well.
func RunMigrations(db *sql.DB) error {
	source, err := iofs.New(schema.Migrations, "migrations/sqlite")

	if err != nil {
		return fmt.Errorf("failed to open migrations: %w", err)
	}

	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})

	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)

	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

func IsUniqueViolation(err error) bool {
	var sqliteErr sqlite3driver.Error

	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3driver.ErrConstraintUnique
	}

	return false
}
