package export

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "modernc.org/sqlite"

	"github.com/vanderheijden86/catalogview/pkg/debug"
	"github.com/vanderheijden86/catalogview/pkg/model"
	"github.com/vanderheijden86/catalogview/pkg/render"
	"github.com/vanderheijden86/catalogview/pkg/version"
)

// SQLiteExportConfig tunes the SQLite export.
type SQLiteExportConfig struct {
	Title string
	// SkipFTS leaves out the full-text index.
	SkipFTS bool
}

// SQLiteExporter writes the catalog to a SQLite database.
type SQLiteExporter struct {
	Catalog *model.Catalog
	Config  SQLiteExportConfig
	fts     bool
	now     func() time.Time
}

// NewSQLiteExporter returns an exporter for cat.
func NewSQLiteExporter(cat *model.Catalog) *SQLiteExporter {
	return &SQLiteExporter{Catalog: cat, now: time.Now}
}

// FTSEnabled reports whether the last Export created the full-text index.
func (e *SQLiteExporter) FTSEnabled() bool { return e.fts }

// Export writes SQLiteFileName into outputDir, replacing any previous file,
// and returns its path.
func (e *SQLiteExporter) Export(ctx context.Context, outputDir string) (string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	dbPath := filepath.Join(outputDir, SQLiteFileName)
	if err := os.Remove(dbPath); err != nil && !os.IsNotExist(err) {
		return "", fmt.Errorf("remove existing database: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return "", fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := CreateSchema(ctx, db); err != nil {
		return "", err
	}
	if err := e.insertCatalog(ctx, db); err != nil {
		return "", fmt.Errorf("insert catalog: %w", err)
	}

	e.fts = false
	if !e.Config.SkipFTS {
		if err := CreateFTSIndex(ctx, db); err != nil {
			debug.Log("export: FTS5 not available: %v", err)
		} else {
			e.fts = true
		}
	}

	if err := e.insertMeta(ctx, db); err != nil {
		return "", fmt.Errorf("insert meta: %w", err)
	}
	if err := OptimizeDatabase(ctx, db); err != nil {
		return "", err
	}
	if err := db.Close(); err != nil {
		return "", fmt.Errorf("close database: %w", err)
	}
	return dbPath, nil
}

func (e *SQLiteExporter) insertCatalog(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	insInd, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO indicators (id, position, name, category, source, description) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer insInd.Close()
	insDS, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO datasets (indicator_id, id, position, name, description, source, citation, license, url, link) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer insDS.Close()
	insLink, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO indicator_tags (indicator_id, tag_id) VALUES (?, ?)`)
	if err != nil {
		return err
	}
	defer insLink.Close()
	insTag, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO tags (id, position, label, description, area, impact) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer insTag.Close()

	cat := e.Catalog
	if cat == nil {
		cat = model.NewCatalog(nil, nil, time.Time{})
	}
	for i, ind := range cat.Indicators {
		if _, err := insInd.ExecContext(ctx, ind.ID, i, ind.Name, ind.Category, ind.Source, ind.Description); err != nil {
			return fmt.Errorf("indicator %s: %w", ind.ID, err)
		}
		for j := range ind.Datasets {
			ds := &ind.Datasets[j]
			if _, err := insDS.ExecContext(ctx, ind.ID, ds.ID, j, ds.Name, ds.Description, ds.Source, ds.Citation, ds.License, ds.URL, render.PickDatasetURL(ds)); err != nil {
				return fmt.Errorf("dataset %s/%s: %w", ind.ID, ds.ID, err)
			}
		}
		for _, tag := range ind.TagIDs {
			if _, err := insLink.ExecContext(ctx, ind.ID, tag); err != nil {
				return fmt.Errorf("indicator tag %s/%s: %w", ind.ID, tag, err)
			}
		}
	}
	for i := range cat.Tags {
		t := &cat.Tags[i]
		if _, err := insTag.ExecContext(ctx, t.ID, i, render.TagLabel(t), t.Description, t.Area, t.Impact); err != nil {
			return fmt.Errorf("tag %s: %w", t.ID, err)
		}
	}
	return tx.Commit()
}

func (e *SQLiteExporter) insertMeta(ctx context.Context, db *sql.DB) error {
	cat := e.Catalog
	meta := map[string]string{
		"version":        version.Version,
		"schema_version": strconv.Itoa(SchemaVersion),
		"exported_at":    e.now().UTC().Format(time.RFC3339),
		"fts":            strconv.FormatBool(e.fts),
	}
	if cat != nil {
		meta["indicator_count"] = strconv.Itoa(cat.Len())
		meta["dataset_count"] = strconv.Itoa(cat.DatasetCount())
		meta["tag_count"] = strconv.Itoa(len(cat.Tags))
		if !cat.GeneratedAt.IsZero() {
			meta["generated_at"] = cat.GeneratedAt.UTC().Format(time.RFC3339)
		}
	}
	if e.Config.Title != "" {
		meta["title"] = e.Config.Title
	}
	for k, v := range meta {
		if err := InsertMetaValue(ctx, db, k, v); err != nil {
			return fmt.Errorf("meta %s: %w", k, err)
		}
	}
	return nil
}
