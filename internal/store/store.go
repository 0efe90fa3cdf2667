package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	// Postgres driver registered as "pgx".
	_ "github.com/jackc/pgx/v5/stdlib"
	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Store owns the database handle and hands out repositories bound to the
// pool or to a transaction.
type Store struct {
	db      *sql.DB
	dialect string
}

// Open connects to the database named by dsn and runs auto-migration.
// DSNs starting with postgres:// or postgresql:// use Postgres; anything
// else is treated as a SQLite path or URI.
func Open(dsn string) (*Store, error) {
	return OpenContext(context.Background(), dsn)
}

// OpenContext is Open with a context for the migration.
func OpenContext(ctx context.Context, dsn string) (*Store, error) {
	driverName, name, dsn := backend(dsn)

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := migrate(ctx, entsql.OpenDB(name, db)); err != nil {
		db.Close()
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}

	if name == dialect.SQLite {
		// SQLite allows a single writer; serializing on one connection
		// avoids SQLITE_BUSY between concurrent transactions.
		db.SetMaxOpenConns(1)
	}

	return &Store{db: db, dialect: name}, nil
}

// backend picks the database/sql driver and ent dialect for dsn.
func backend(dsn string) (driverName, dialectName, out string) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return "pgx", dialect.Postgres, dsn
	}
	return "sqlite", dialect.SQLite, sqliteDSN(strings.TrimPrefix(dsn, "sqlite://"))
}

// sqlitePragmas are applied to every pooled connection through the DSN.
var sqlitePragmas = []string{
	"_pragma=foreign_keys(1)",
	"_pragma=busy_timeout(5000)",
	"_pragma=journal_mode(WAL)",
	"_pragma=synchronous(NORMAL)",
	"_time_format=sqlite",
}

func sqliteDSN(dsn string) string {
	var add []string
	for _, p := range sqlitePragmas {
		key, _, _ := strings.Cut(p, "(")
		if !strings.Contains(dsn, key) {
			add = append(add, p)
		}
	}
	if len(add) == 0 {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + strings.Join(add, "&")
}

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Dialect returns the ent dialect name of the backend.
func (s *Store) Dialect() string {
	return s.dialect
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Repos returns repositories bound to the connection pool.
func (s *Store) Repos() Repos {
	return newRepos(s.conn(s.db))
}

// WithTx runs fn inside one transaction. The transaction commits if fn
// returns nil and rolls back otherwise.
func (s *Store) WithTx(ctx context.Context, fn func(r Repos) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(newRepos(s.conn(tx))); err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			return fmt.Errorf("%w (rollback: %v)", err, rerr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// conn pairs a querier with the dialect's statement builder.
type conn struct {
	q       querier
	b       *entsql.DialectBuilder
	dialect string
}

func (s *Store) conn(q querier) conn {
	return conn{q: q, b: entsql.Dialect(s.dialect), dialect: s.dialect}
}

func (c conn) postgres() bool {
	return c.dialect == dialect.Postgres
}

// DefaultDBPath resolves the database file path in priority order:
// 1. MARCOS_DB environment variable
// 2. $XDG_DATA_HOME/marcos/marcos.db
// 3. ~/.local/share/marcos/marcos.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("MARCOS_DB"); p != "" {
		if strings.Contains(p, "://") {
			return p, nil
		}
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "marcos", "marcos.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
// URLs such as postgres:// are left alone.
func EnsureDir(path string) error {
	if strings.Contains(path, "://") {
		return nil
	}
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}

// MemoryDSN returns a DSN for a private, named in-memory SQLite database.
// Connections opened with the same name share the database.
func MemoryDSN(name string) string {
	clean := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			return r
		default:
			return '_'
		}
	}, name)
	return "file:" + clean + "?mode=memory&cache=shared"
}
