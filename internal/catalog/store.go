// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/rarity-engine/pkg/types"
)

const (
	dbFile     = "catalog.db"
	defaultDir = "catalog"
)

// Store manages the catalog SQLite database. It holds asset snapshots
// only; scores are never written to it.
type Store struct {
	db  *sql.DB
	dir string
}

// NewStore opens or creates the catalog database at cfg.Dir/catalog.db and
// creates the schema if it does not exist.
func NewStore(cfg types.CatalogConfig) (*Store, error) {
	dir := cfg.Dir
	if dir == "" {
		dir = defaultDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating catalog directory: %w", err)
	}

	dbPath := filepath.Join(dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, dir: dir}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS collections (
			slug TEXT PRIMARY KEY,
			name TEXT,
			source TEXT,
			imported_at TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS assets (
			collection TEXT NOT NULL REFERENCES collections(slug) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			id TEXT NOT NULL,
			name TEXT,
			has_traits INTEGER NOT NULL,
			PRIMARY KEY (collection, position)
		)`,
		`CREATE TABLE IF NOT EXISTS traits (
			collection TEXT NOT NULL,
			asset_pos INTEGER NOT NULL,
			position INTEGER NOT NULL,
			trait_type TEXT NOT NULL,
			value TEXT,
			trait_count INTEGER,
			FOREIGN KEY (collection, asset_pos) REFERENCES assets(collection, position) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS factors (
			collection TEXT NOT NULL,
			asset_pos INTEGER NOT NULL,
			position INTEGER NOT NULL,
			name TEXT NOT NULL,
			score REAL NOT NULL,
			FOREIGN KEY (collection, asset_pos) REFERENCES assets(collection, position) ON DELETE CASCADE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_assets_id ON assets(collection, id)`,
		`CREATE INDEX IF NOT EXISTS idx_traits_asset ON traits(collection, asset_pos)`,
		`CREATE INDEX IF NOT EXISTS idx_factors_asset ON factors(collection, asset_pos)`,
		`CREATE TABLE IF NOT EXISTS import_status (
			source TEXT PRIMARY KEY,
			collection TEXT NOT NULL,
			file_mod_time TEXT
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// ImportSummary holds counts from a catalog import run.
type ImportSummary struct {
	Imported int
	Updated  int
	Skipped  int
	Failed   int
}

// Total returns the number of source files processed.
func (s ImportSummary) Total() int {
	return s.Imported + s.Updated + s.Skipped + s.Failed
}

func (s *ImportSummary) add(o ImportSummary) {
	s.Imported += o.Imported
	s.Updated += o.Updated
	s.Skipped += o.Skipped
	s.Failed += o.Failed
}

// Import loads one snapshot file into the catalog. A file whose
// modification time matches the last import is skipped; otherwise the
// collection's rows are replaced in a single transaction.
func (s *Store) Import(ctx context.Context, path string, w io.Writer) (ImportSummary, error) {
	source, err := filepath.Abs(path)
	if err != nil {
		return ImportSummary{}, fmt.Errorf("resolving %s: %w", path, err)
	}
	info, err := os.Stat(source)
	if err != nil {
		return ImportSummary{}, fmt.Errorf("reading %s: %w", path, err)
	}
	modTime := info.ModTime().UTC().Format(time.RFC3339Nano)

	var storedModTime string
	err = s.db.QueryRowContext(ctx,
		`SELECT file_mod_time FROM import_status WHERE source = ?`, source,
	).Scan(&storedModTime)
	if err == nil && storedModTime == modTime {
		fmt.Fprintf(w, "skipped %s\n", filepath.Base(path))
		return ImportSummary{Skipped: 1}, nil
	}
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return ImportSummary{}, fmt.Errorf("checking import status: %w", err)
	}
	isUpdate := err == nil

	col, err := LoadFile(path)
	if err != nil {
		return ImportSummary{}, err
	}
	if err := s.importCollection(ctx, source, modTime, col); err != nil {
		return ImportSummary{}, fmt.Errorf("importing %s: %w", col.Info.Slug, err)
	}

	if isUpdate {
		fmt.Fprintf(w, "updated %s (%d assets)\n", col.Info.Slug, len(col.Assets))
		return ImportSummary{Updated: 1}, nil
	}
	fmt.Fprintf(w, "imported %s (%d assets)\n", col.Info.Slug, len(col.Assets))
	return ImportSummary{Imported: 1}, nil
}

// ImportDir imports every supported file in dir, continuing past
// individual failures.
func (s *Store) ImportDir(ctx context.Context, dir string, w io.Writer) (ImportSummary, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ImportSummary{}, fmt.Errorf("reading directory %s: %w", dir, err)
	}

	var summary ImportSummary
	for _, entry := range entries {
		if entry.IsDir() || !Supported(entry.Name()) {
			continue
		}

		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		one, err := s.Import(ctx, filepath.Join(dir, entry.Name()), w)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", entry.Name(), err)
			summary.Failed++
			continue
		}
		summary.add(one)
	}

	fmt.Fprintf(w, "\nimported: %d, updated: %d, skipped: %d, failed: %d\n",
		summary.Imported, summary.Updated, summary.Skipped, summary.Failed)
	return summary, nil
}

func (s *Store) importCollection(ctx context.Context, source, modTime string, col types.Collection) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	slug := col.Info.Slug
	if _, err := tx.ExecContext(ctx, `DELETE FROM collections WHERE slug = ?`, slug); err != nil {
		return fmt.Errorf("deleting old collection: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO collections (slug, name, source, imported_at) VALUES (?, ?, ?, ?)`,
		slug, col.Info.Name, source, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting collection: %w", err)
	}

	assetStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO assets (collection, position, id, name, has_traits) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing asset insert: %w", err)
	}
	defer assetStmt.Close()

	traitStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO traits (collection, asset_pos, position, trait_type, value, trait_count) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing trait insert: %w", err)
	}
	defer traitStmt.Close()

	factorStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO factors (collection, asset_pos, position, name, score) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing factor insert: %w", err)
	}
	defer factorStmt.Close()

	for pos, a := range col.Assets {
		if _, err := assetStmt.ExecContext(ctx, slug, pos, string(a.ID), a.Name, a.HasTraits()); err != nil {
			return fmt.Errorf("inserting asset %s: %w", a.ID, err)
		}
		for i, t := range a.Traits {
			if _, err := traitStmt.ExecContext(ctx, slug, pos, i, t.TraitType, t.Value, t.TraitCount); err != nil {
				return fmt.Errorf("inserting trait %s of asset %s: %w", t.TraitType, a.ID, err)
			}
		}
		for i, f := range a.Factors {
			if _, err := factorStmt.ExecContext(ctx, slug, pos, i, f.Name, f.Score); err != nil {
				return fmt.Errorf("inserting factor %s of asset %s: %w", f.Name, a.ID, err)
			}
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO import_status (source, collection, file_mod_time) VALUES (?, ?, ?)
		 ON CONFLICT(source) DO UPDATE SET collection=excluded.collection, file_mod_time=excluded.file_mod_time`,
		source, slug, modTime,
	)
	if err != nil {
		return fmt.Errorf("updating import status: %w", err)
	}

	return tx.Commit()
}

// CollectionSummary describes one imported collection.
type CollectionSummary struct {
	Slug       string `json:"slug" yaml:"slug"`
	Name       string `json:"name,omitempty" yaml:"name,omitempty"`
	Assets     int    `json:"assets" yaml:"assets"`
	Source     string `json:"source" yaml:"source"`
	ImportedAt string `json:"imported_at" yaml:"imported_at"`
}

// Collections lists imported collections ordered by slug.
func (s *Store) Collections(ctx context.Context) ([]CollectionSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT c.slug, COALESCE(c.name, ''), COALESCE(c.source, ''), COALESCE(c.imported_at, ''),
		        (SELECT count(*) FROM assets a WHERE a.collection = c.slug)
		 FROM collections c ORDER BY c.slug`)
	if err != nil {
		return nil, fmt.Errorf("listing collections: %w", err)
	}
	defer rows.Close()

	var out []CollectionSummary
	for rows.Next() {
		var c CollectionSummary
		if err := rows.Scan(&c.Slug, &c.Name, &c.Source, &c.ImportedAt, &c.Assets); err != nil {
			return nil, fmt.Errorf("scanning collection row: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Load rebuilds the assets of a collection in their original order.
func (s *Store) Load(ctx context.Context, slug string) (types.Collection, error) {
	col := types.Collection{Info: types.CollectionInfo{Slug: slug}}
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(name, '') FROM collections WHERE slug = ?`, slug,
	).Scan(&col.Info.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return col, fmt.Errorf("collection %q not found in catalog", slug)
	}
	if err != nil {
		return col, fmt.Errorf("loading collection %s: %w", slug, err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, COALESCE(name, ''), has_traits FROM assets WHERE collection = ? ORDER BY position`, slug)
	if err != nil {
		return col, fmt.Errorf("querying assets: %w", err)
	}
	for rows.Next() {
		var a types.Asset
		var hasTraits bool
		if err := rows.Scan(&a.ID, &a.Name, &hasTraits); err != nil {
			rows.Close()
			return col, fmt.Errorf("scanning asset row: %w", err)
		}
		a.Collection = slug
		if hasTraits {
			a.Traits = []types.Trait{}
		}
		col.Assets = append(col.Assets, a)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return col, fmt.Errorf("reading asset rows: %w", err)
	}

	if err := s.loadTraits(ctx, slug, col.Assets); err != nil {
		return col, err
	}
	if err := s.loadFactors(ctx, slug, col.Assets); err != nil {
		return col, err
	}
	return col, nil
}

func (s *Store) loadTraits(ctx context.Context, slug string, assets []types.Asset) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT asset_pos, trait_type, COALESCE(value, ''), COALESCE(trait_count, 0)
		 FROM traits WHERE collection = ? ORDER BY asset_pos, position`, slug)
	if err != nil {
		return fmt.Errorf("querying traits: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var pos int
		var t types.Trait
		if err := rows.Scan(&pos, &t.TraitType, &t.Value, &t.TraitCount); err != nil {
			return fmt.Errorf("scanning trait row: %w", err)
		}
		if pos < 0 || pos >= len(assets) {
			continue
		}
		assets[pos].Traits = append(assets[pos].Traits, t)
	}
	return rows.Err()
}

func (s *Store) loadFactors(ctx context.Context, slug string, assets []types.Asset) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT asset_pos, name, score FROM factors WHERE collection = ? ORDER BY asset_pos, position`, slug)
	if err != nil {
		return fmt.Errorf("querying factors: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var pos int
		var f types.Factor
		if err := rows.Scan(&pos, &f.Name, &f.Score); err != nil {
			return fmt.Errorf("scanning factor row: %w", err)
		}
		if pos >= 0 && pos < len(assets) {
			assets[pos].Factors = append(assets[pos].Factors, f)
		}
	}
	return rows.Err()
}

// Delete removes a collection and its import records.
func (s *Store) Delete(ctx context.Context, slug string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM collections WHERE slug = ?`, slug)
	if err != nil {
		return fmt.Errorf("deleting collection: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("collection %q not found in catalog", slug)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM import_status WHERE collection = ?`, slug); err != nil {
		return fmt.Errorf("deleting import status: %w", err)
	}
	return tx.Commit()
}

// Slugs returns the imported collection slugs in sorted order.
func (s *Store) Slugs(ctx context.Context) ([]string, error) {
	cols, err := s.Collections(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.Slug
	}
	sort.Strings(out)
	return out, nil
}
