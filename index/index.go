// Package index maintains a sqlite catalog of parsed class metadata. It is
// purely descriptive: no linking or loading happens across catalogued
// classes.
package index

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"cafebabe/classfile"
)

// ErrNotFound indicates the requested class is not in the catalog.
var ErrNotFound = errors.New("class not found in catalog")

// Record is one catalog row.
type Record struct {
	Path      string
	Name      string
	Super     string
	Major     uint16
	Minor     uint16
	Methods   int
	IndexedAt time.Time
}

// Catalog is a sqlite-backed store of class-file metadata, keyed by class
// name.
type Catalog struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the catalog database at path.
func Open(path string) (*Catalog, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating catalog directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening catalog database: %w", err)
	}

	// Set busy timeout for concurrent access
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS classes (
		name TEXT PRIMARY KEY,
		path TEXT NOT NULL,
		super TEXT NOT NULL,
		major INTEGER NOT NULL,
		minor INTEGER NOT NULL,
		methods INTEGER NOT NULL,
		indexed_at TIMESTAMP NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating classes table: %w", err)
	}

	return &Catalog{db: db, path: path}, nil
}

// Record upserts the metadata of a parsed class file.
func (c *Catalog) Record(path string, cf *classfile.ClassFile) error {
	name, err := cf.ThisClassName()
	if err != nil {
		return fmt.Errorf("resolving class name: %w", err)
	}
	super, err := cf.SuperClassName()
	if err != nil {
		return fmt.Errorf("resolving super class name: %w", err)
	}

	_, err = c.db.Exec(`INSERT INTO classes (name, path, super, major, minor, methods, indexed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			path = excluded.path,
			super = excluded.super,
			major = excluded.major,
			minor = excluded.minor,
			methods = excluded.methods,
			indexed_at = excluded.indexed_at`,
		name, path, super, cf.MajorVersion, cf.MinorVersion, len(cf.Methods), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("recording class %s: %w", name, err)
	}
	return nil
}

// Lookup returns the catalog record for a class name.
func (c *Catalog) Lookup(name string) (*Record, error) {
	row := c.db.QueryRow(`SELECT name, path, super, major, minor, methods, indexed_at
		FROM classes WHERE name = ?`, name)

	var r Record
	err := row.Scan(&r.Name, &r.Path, &r.Super, &r.Major, &r.Minor, &r.Methods, &r.IndexedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("looking up class %s: %w", name, err)
	}
	return &r, nil
}

// List returns all catalog records ordered by class name.
func (c *Catalog) List() ([]Record, error) {
	rows, err := c.db.Query(`SELECT name, path, super, major, minor, methods, indexed_at
		FROM classes ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing classes: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.Name, &r.Path, &r.Super, &r.Major, &r.Minor, &r.Methods, &r.IndexedAt); err != nil {
			return nil, fmt.Errorf("scanning class row: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Close closes the underlying database.
func (c *Catalog) Close() error {
	return c.db.Close()
}
