package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ruflab/simple-shapes-dataset/pkg/tensor"
	_ "modernc.org/sqlite" // register pure-Go SQLite driver
)

// ErrMatrixNotFound is returned by Get for unknown names.
var ErrMatrixNotFound = errors.New("matrix not found")

const schema = `
CREATE TABLE IF NOT EXISTS matrices (
    name TEXT PRIMARY KEY,
    rows INTEGER NOT NULL,
    cols INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS matrix_rows (
    name TEXT NOT NULL,
    row  INTEGER NOT NULL,
    data BLOB,
    PRIMARY KEY(name, row)
);
`

// Open opens a SQLite database. For in-memory databases pass ":memory:"; the
// pool is then limited to one connection so every query sees the same data.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if dsn == ":memory:" {
		db.SetMaxOpenConns(1)
	}
	return db, nil
}

// MatrixStore persists named matrices.
type MatrixStore struct {
	db *sql.DB
}

// NewMatrixStore creates a store over db, creating the schema if needed.
func NewMatrixStore(db *sql.DB) (*MatrixStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlite: db is nil")
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("sqlite: creating schema: %w", err)
	}
	return &MatrixStore{db: db}, nil
}

// Put stores m under name, replacing any previous matrix of that name.
func (s *MatrixStore) Put(ctx context.Context, name string, m *tensor.Matrix) error {
	if name == "" {
		return fmt.Errorf("sqlite: Put called with empty name")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM matrix_rows WHERE name = ?`, name); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO matrices(name, rows, cols) VALUES(?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET rows = excluded.rows, cols = excluded.cols`,
		name, m.Rows(), m.Cols()); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO matrix_rows(name, row, data) VALUES(?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i := 0; i < m.Rows(); i++ {
		if _, err := stmt.ExecContext(ctx, name, i, tensor.EncodeRow(m.Row(i))); err != nil {
			return fmt.Errorf("sqlite: inserting row %d: %w", i, err)
		}
	}
	return tx.Commit()
}

// Get loads the matrix stored under name.
func (s *MatrixStore) Get(ctx context.Context, name string) (*tensor.Matrix, error) {
	var rows, cols int
	err := s.db.QueryRowContext(ctx, `SELECT rows, cols FROM matrices WHERE name = ?`, name).Scan(&rows, &cols)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %q", ErrMatrixNotFound, name)
	}
	if err != nil {
		return nil, err
	}

	q, err := s.db.QueryContext(ctx, `SELECT row, data FROM matrix_rows WHERE name = ? ORDER BY row`, name)
	if err != nil {
		return nil, err
	}
	defer q.Close()

	data := make([]float32, 0, rows*cols)
	next := 0
	for q.Next() {
		var (
			idx  int
			blob []byte
		)
		if err := q.Scan(&idx, &blob); err != nil {
			return nil, err
		}
		if idx != next {
			return nil, fmt.Errorf("sqlite: matrix %q is missing row %d", name, next)
		}
		vec, err := tensor.DecodeRow(blob)
		if err != nil {
			return nil, err
		}
		if len(vec) != cols {
			return nil, fmt.Errorf("sqlite: matrix %q row %d has %d values, want %d", name, idx, len(vec), cols)
		}
		data = append(data, vec...)
		next++
	}
	if err := q.Err(); err != nil {
		return nil, err
	}
	if next != rows {
		return nil, fmt.Errorf("sqlite: matrix %q has %d rows, want %d", name, next, rows)
	}
	return tensor.New(rows, cols, data)
}

// List returns the stored matrix names in order.
func (s *MatrixStore) List(ctx context.Context) ([]string, error) {
	q, err := s.db.QueryContext(ctx, `SELECT name FROM matrices ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer q.Close()

	var names []string
	for q.Next() {
		var name string
		if err := q.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, q.Err()
}

// Delete removes the matrix stored under name.
func (s *MatrixStore) Delete(ctx context.Context, name string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM matrix_rows WHERE name = ?`, name); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM matrices WHERE name = ?`, name); err != nil {
		return err
	}
	return tx.Commit()
}

// MatrixName returns the name under which a database file stores its table:
// the file name without extension.
func MatrixName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// LoadMatrix opens the database at path and loads the matrix named after the
// file (see MatrixName).
func LoadMatrix(ctx context.Context, path string) (*tensor.Matrix, error) {
	db, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	store, err := NewMatrixStore(db)
	if err != nil {
		return nil, err
	}
	return store.Get(ctx, MatrixName(path))
}

// IsDatabase reports whether path names a SQLite matrix file.
func IsDatabase(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".sqlite", ".sqlite3", ".db":
		return true
	}
	return false
}
