package employees

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/raysh454/employeesapp/internal/logging"
)

//go:embed schema.sql
var schemaSQL string

// DefaultDSN is a private in-memory database. It lives as long as the
// repository's single connection does.
const DefaultDSN = ":memory:"

type StoreConfig struct {
	// DSN is passed to the sqlite driver. Empty means DefaultDSN.
	DSN string

	// Seed inserts SeedEmployees when the table is empty.
	Seed bool
}

func DefaultStoreConfig() StoreConfig {
	return StoreConfig{DSN: DefaultDSN, Seed: true}
}

// SQLiteRepository implements Repository on modernc.org/sqlite.
type SQLiteRepository struct {
	db     *sql.DB
	logger logging.Logger
	now    func() time.Time
}

func NewSQLiteRepository(ctx context.Context, cfg StoreConfig, logger logging.Logger) (*SQLiteRepository, error) {
	if logger == nil {
		return nil, errors.New("employees: nil logger provided")
	}
	dsn := cfg.DSN
	if dsn == "" {
		dsn = DefaultDSN
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection: every new connection to an in-memory DSN is a new,
	// empty database.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := applySchema(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	r := &SQLiteRepository{
		db:     db,
		logger: logger.With(logging.Field{Key: "component", Value: "employees"}),
		now:    time.Now,
	}

	if cfg.Seed {
		if err := r.seed(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to seed employees: %w", err)
		}
	}

	r.logger.Info("employee store ready", logging.Field{Key: "dsn", Value: dsn})
	return r, nil
}

func applySchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		return fmt.Errorf("failed to set pragma: %w", err)
	}
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) seed(ctx context.Context) error {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM employees`).Scan(&n); err != nil {
		return fmt.Errorf("count employees: %w", err)
	}
	if n > 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, e := range SeedEmployees() {
		if _, err := r.insert(ctx, tx, e); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	r.logger.Debug("seeded employees", logging.Field{Key: "count", Value: len(SeedEmployees())})
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (r *SQLiteRepository) insert(ctx context.Context, ex execer, e Employee) (Employee, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	_, err := ex.ExecContext(ctx,
		`INSERT INTO employees (id, name, age, account_number, created_at) VALUES (?, ?, ?, ?, ?)`,
		e.ID, e.Name, e.Age, e.AccountNumber, r.now().UnixNano())
	if err != nil {
		return Employee{}, fmt.Errorf("insert employee: %w", err)
	}
	return e, nil
}

// Create stores e, assigning a uuid when e.ID is empty. Callers validate first.
func (r *SQLiteRepository) Create(ctx context.Context, e Employee) (Employee, error) {
	created, err := r.insert(ctx, r.db, e)
	if err != nil {
		return Employee{}, err
	}
	r.logger.Info("employee created", logging.Field{Key: "id", Value: created.ID})
	return created, nil
}

// List returns employees in insertion order.
func (r *SQLiteRepository) List(ctx context.Context) ([]Employee, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, age, account_number FROM employees ORDER BY created_at, rowid`)
	if err != nil {
		return nil, fmt.Errorf("query employees: %w", err)
	}
	defer rows.Close()

	var out []Employee
	for rows.Next() {
		var e Employee
		if err := rows.Scan(&e.ID, &e.Name, &e.Age, &e.AccountNumber); err != nil {
			return nil, fmt.Errorf("scan employee: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate employees: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) Get(ctx context.Context, id string) (Employee, error) {
	var e Employee
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, age, account_number FROM employees WHERE id = ?`, id).
		Scan(&e.ID, &e.Name, &e.Age, &e.AccountNumber)
	if errors.Is(err, sql.ErrNoRows) {
		return Employee{}, ErrNotFound
	}
	if err != nil {
		return Employee{}, fmt.Errorf("query employee %s: %w", id, err)
	}
	return e, nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}
