package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

// SQLite keeps every bucket in one embedded database file. Replacing a
// bucket is transactional.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (and migrates) dashboard.db under dataDir.
func OpenSQLite(dataDir string) (*SQLite, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, errors.Wrap(err, "create data dir")
	}

	dbPath := filepath.Join(dataDir, "dashboard.db")
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, errors.Wrap(err, "open db")
	}

	s := &SQLite{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "migrate")
	}
	return s, nil
}

func (s *SQLite) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS kv (
			bucket TEXT NOT NULL,
			key TEXT NOT NULL,
			value TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (bucket, key)
		)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return errors.Wrap(err, "exec migration")
		}
	}
	return nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Bucket returns the store for one mapping.
func (s *SQLite) Bucket(name string) *Bucket {
	return &Bucket{db: s.db, name: name}
}

// Bucket is one mapping inside the SQLite database.
type Bucket struct {
	db   *sql.DB
	name string
}

func (b *Bucket) Load(ctx context.Context) (map[string]string, error) {
	rows, err := b.db.QueryContext(ctx, "SELECT key, value FROM kv WHERE bucket = ?", b.name)
	if err != nil {
		return nil, errors.Wrapf(err, "query %s", b.name)
	}
	defer rows.Close()

	m := map[string]string{}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, errors.Wrapf(err, "scan %s", b.name)
		}
		m[k] = v
	}
	return m, rows.Err()
}

func (b *Bucket) Replace(ctx context.Context, m map[string]string) error {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM kv WHERE bucket = ?", b.name); err != nil {
		return errors.Wrapf(err, "clear %s", b.name)
	}
	for k, v := range m {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO kv (bucket, key, value) VALUES (?, ?, ?)", b.name, k, v,
		); err != nil {
			return errors.Wrapf(err, "insert %s/%s", b.name, k)
		}
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "commit")
	}
	return nil
}
