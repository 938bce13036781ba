package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/marcboeker/go-duckdb"
)

type DB struct {
	conn *sql.DB
}

func New(dbPath string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	conn, err := sql.Open("duckdb", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.initSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	return db, nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}

// (namespace, name) is unique per index but carries no constraint: DuckDB
// rejects deleting and reinserting a unique key in one transaction.
func (db *DB) initSchema() error {
	queries := []string{
		`CREATE SEQUENCE IF NOT EXISTS seq_class_id START 1;`,
		`CREATE SEQUENCE IF NOT EXISTS seq_member_id START 1;`,

		`CREATE TABLE IF NOT EXISTS classes (
			id INTEGER PRIMARY KEY,
			namespace TEXT NOT NULL,
			name TEXT NOT NULL,
			kind TEXT NOT NULL,
			deprecated BOOLEAN NOT NULL DEFAULT false,
			content_hash TEXT NOT NULL,
			notes TEXT,
			indexed_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_classes_name ON classes (namespace, name)`,

		`CREATE TABLE IF NOT EXISTS members (
			id INTEGER PRIMARY KEY,
			class_id INTEGER NOT NULL,
			kind TEXT NOT NULL,
			name TEXT NOT NULL,
			signature TEXT NOT NULL,
			notes TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_members_class ON members (class_id)`,
	}

	for _, q := range queries {
		if _, err := db.conn.Exec(q); err != nil {
			return fmt.Errorf("executing %q: %w", q, err)
		}
	}
	return nil
}

// --- Class operations ---

type Class struct {
	ID          int
	Namespace   string
	Name        string
	Kind        string
	Deprecated  bool
	ContentHash string
	Notes       string
	IndexedAt   time.Time
}

func (c *Class) QualifiedName() string {
	return c.Namespace + "." + c.Name
}

type Member struct {
	ID        int
	ClassID   int
	Kind      string
	Name      string
	Signature string
	Notes     string
}

// ClassRecord is one class row plus the member rows that belong to it.
type ClassRecord struct {
	Class   Class
	Members []Member
}

// ReplaceAll swaps the whole index for records in a single transaction.
func (db *DB) ReplaceAll(ctx context.Context, records []ClassRecord) (err error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	for _, q := range []string{`DELETE FROM members`, `DELETE FROM classes`} {
		if _, err := tx.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("clearing index: %w", err)
		}
	}

	for _, rec := range records {
		c := rec.Class
		var classID int
		err := tx.QueryRowContext(ctx,
			`INSERT INTO classes (id, namespace, name, kind, deprecated, content_hash, notes)
			 VALUES (nextval('seq_class_id'), ?, ?, ?, ?, ?, ?) RETURNING id`,
			c.Namespace, c.Name, c.Kind, c.Deprecated, c.ContentHash, c.Notes,
		).Scan(&classID)
		if err != nil {
			return fmt.Errorf("inserting class %s: %w", c.QualifiedName(), err)
		}

		for _, m := range rec.Members {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO members (id, class_id, kind, name, signature, notes)
				 VALUES (nextval('seq_member_id'), ?, ?, ?, ?, ?)`,
				classID, m.Kind, m.Name, m.Signature, m.Notes,
			)
			if err != nil {
				return fmt.Errorf("inserting member %s.%s: %w", c.QualifiedName(), m.Name, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing index: %w", err)
	}
	return nil
}

const classColumns = `id, namespace, name, kind, deprecated, content_hash, COALESCE(notes, ''), indexed_at`

func scanClass(row interface{ Scan(...any) error }) (*Class, error) {
	var c Class
	if err := row.Scan(&c.ID, &c.Namespace, &c.Name, &c.Kind, &c.Deprecated, &c.ContentHash, &c.Notes, &c.IndexedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// GetClass returns nil, nil when the class is not indexed.
func (db *DB) GetClass(namespace, name string) (*Class, error) {
	c, err := scanClass(db.conn.QueryRow(
		`SELECT `+classColumns+` FROM classes WHERE namespace = ? AND name = ?`, namespace, name,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting class %s.%s: %w", namespace, name, err)
	}
	return c, nil
}

// FindClasses looks classes up by simple name across every namespace.
func (db *DB) FindClasses(name string) ([]Class, error) {
	rows, err := db.conn.Query(
		`SELECT `+classColumns+` FROM classes WHERE name = ? ORDER BY namespace`, name,
	)
	if err != nil {
		return nil, fmt.Errorf("finding class %s: %w", name, err)
	}
	defer rows.Close()

	var out []Class
	for rows.Next() {
		c, err := scanClass(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

type NamespaceSummary struct {
	Name    string
	Classes int
}

func (db *DB) ListNamespaces() ([]NamespaceSummary, error) {
	rows, err := db.conn.Query(
		`SELECT namespace, count(*) FROM classes GROUP BY namespace ORDER BY namespace`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing namespaces: %w", err)
	}
	defer rows.Close()

	var out []NamespaceSummary
	for rows.Next() {
		var ns NamespaceSummary
		if err := rows.Scan(&ns.Name, &ns.Classes); err != nil {
			return nil, err
		}
		out = append(out, ns)
	}
	return out, rows.Err()
}

func (db *DB) ListClasses(namespace string) ([]Class, error) {
	rows, err := db.conn.Query(
		`SELECT `+classColumns+` FROM classes WHERE namespace = ? ORDER BY name`, namespace,
	)
	if err != nil {
		return nil, fmt.Errorf("listing classes in %s: %w", namespace, err)
	}
	defer rows.Close()

	var out []Class
	for rows.Next() {
		c, err := scanClass(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (db *DB) CountClasses() (int, error) {
	var n int
	err := db.conn.QueryRow(`SELECT count(*) FROM classes`).Scan(&n)
	return n, err
}

// --- Search ---

// Filter narrows a name search. Zero values match everything.
type Filter struct {
	Kind      string
	Namespace string
}

// Hit is a class or member whose name matched a search.
type Hit struct {
	Kind      string
	Namespace string
	Class     string
	Name      string
	Signature string
	Notes     string
}

// SearchNames returns every class and member whose name contains query,
// case-insensitively. Classes come back with Kind "class" and their own name
// in both Class and Name. limit <= 0 means no limit.
func (db *DB) SearchNames(query string, filter Filter, limit int) ([]Hit, error) {
	var (
		where []string
		args  []any
	)
	where = append(where, `contains(lower(name), lower(?))`)
	args = append(args, query)
	if filter.Kind != "" {
		where = append(where, `kind = ?`)
		args = append(args, filter.Kind)
	}
	if filter.Namespace != "" {
		where = append(where, `namespace = ?`)
		args = append(args, filter.Namespace)
	}

	q := `SELECT kind, namespace, class_name, name, signature, notes FROM (
			SELECT 'class' AS kind, c.namespace, c.name AS class_name, c.name,
				c.kind || ' ' || c.name AS signature, COALESCE(c.notes, '') AS notes
			FROM classes c
			UNION ALL
			SELECT m.kind, c.namespace, c.name AS class_name, m.name, m.signature, COALESCE(m.notes, '') AS notes
			FROM members m JOIN classes c ON c.id = m.class_id
		) WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY namespace, class_name, name, signature`
	if limit > 0 {
		q += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := db.conn.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("searching names: %w", err)
	}
	defer rows.Close()

	var out []Hit
	for rows.Next() {
		var h Hit
		if err := rows.Scan(&h.Kind, &h.Namespace, &h.Class, &h.Name, &h.Signature, &h.Notes); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}
