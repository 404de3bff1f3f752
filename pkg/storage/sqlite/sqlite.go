package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/rexliu/taintd/pkg/core"
)

// Store persists rendered model verification errors between runs, keyed by
// the model file that produced them.
type Store struct {
	db   *sql.DB
	path string
}

// Path returns the underlying SQLite file path.
func (s *Store) Path() string {
	return s.path
}

// Open initializes a SQLite database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	return &Store{db: db, path: path}, nil
}

// Close releases database resources.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Init ensures pragmas and schema are configured.
func (s *Store) Init(ctx context.Context) error {
	if s == nil || s.db == nil {
		return errors.New("nil store")
	}
	pragmas := []string{
		"PRAGMA foreign_keys = ON;",
		"PRAGMA journal_mode = DELETE;",
		"PRAGMA synchronous = FULL;",
		"PRAGMA busy_timeout = 5000;",
	}
	for _, stmt := range pragmas {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply pragma %q: %w", stmt, err)
		}
	}
	return s.applySchema(ctx)
}

func (s *Store) applySchema(ctx context.Context) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`INSERT OR IGNORE INTO meta(key,value) VALUES ('schemaVersion','1');`,
		`CREATE TABLE IF NOT EXISTS model_errors (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			path TEXT NOT NULL,
			line INTEGER NOT NULL,
			model_name TEXT NOT NULL,
			kind TEXT NOT NULL,
			message TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_model_errors_path ON model_errors(path, line);`,
	}
	for _, stmt := range ddl {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

// StoredError is one persisted diagnostic. Message is the final rendered line.
type StoredError struct {
	Path      string `json:"path"`
	Line      int    `json:"line"`
	ModelName string `json:"modelName"`
	Kind      string `json:"kind"`
	Message   string `json:"message"`
}

// ReplaceErrors swaps the stored diagnostics for path with errs atomically.
func (s *Store) ReplaceErrors(ctx context.Context, path string, errs []core.Error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM model_errors WHERE path = ?`, path); err != nil {
		tx.Rollback()
		return err
	}
	for _, verr := range errs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO model_errors(path, line, model_name, kind, message) VALUES(?,?,?,?,?)`,
			path, verr.Location.Start.Line, core.ModelName(verr.Kind), kindName(verr.Kind), core.Display(verr),
		); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// ErrorsFor returns diagnostics for the given paths, ordered by path and line.
// An empty path list returns everything.
func (s *Store) ErrorsFor(ctx context.Context, paths []string) ([]StoredError, error) {
	query := `SELECT path, line, model_name, kind, message FROM model_errors`
	args := make([]any, 0, len(paths))
	if len(paths) > 0 {
		query += ` WHERE path IN (?` + repeatPlaceholder(len(paths)-1) + `)`
		for _, path := range paths {
			args = append(args, path)
		}
	}
	query += ` ORDER BY path, line, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []StoredError
	for rows.Next() {
		var stored StoredError
		if err := rows.Scan(&stored.Path, &stored.Line, &stored.ModelName, &stored.Kind, &stored.Message); err != nil {
			return nil, err
		}
		result = append(result, stored)
	}
	return result, rows.Err()
}

// Paths lists every model file with stored diagnostics.
func (s *Store) Paths(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT path FROM model_errors ORDER BY path`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, rows.Err()
}

// kindName gives each error kind a stable tag for filtering. Dispatch is
// exhaustive over the closed taxonomy.
func kindName(kind core.Kind) string {
	switch kind.(type) {
	case core.InvalidDefaultValue:
		return "invalid_default_value"
	case core.IncompatibleModelError:
		return "incompatible_model"
	case core.ImportedFunctionModel:
		return "imported_function_model"
	case core.MissingAttribute:
		return "missing_attribute"
	case core.NotInEnvironment:
		return "not_in_environment"
	case core.UnclassifiedError:
		return "unclassified"
	default:
		return "unknown"
	}
}

func repeatPlaceholder(n int) string {
	out := ""
	for i := 0; i < n; i++ {
		out += ",?"
	}
	return out
}
