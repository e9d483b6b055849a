package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Writer streams rows into a new archive. It tracks the current row count and
// exposes an explicit Finalize; an archive that is closed without Finalize
// stays marked incomplete and is rejected by readers.
type Writer struct {
	db        *sql.DB
	path      string
	spec      Spec
	rowCount  int
	finalized bool
	closed    bool
}

// Create opens a fresh archive at path, replacing any previous file, and
// declares its datasets from spec.
func Create(ctx context.Context, path string, spec Spec) (*Writer, error) {
	if err := spec.validate(); err != nil {
		return nil, err
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create archive directory: %w", err)
		}
	}
	// Extraction always rebuilds from scratch; a stale archive at the target
	// path is replaced, as are WAL leftovers from an aborted run.
	for _, stale := range []string{path, path + "-wal", path + "-shm"} {
		if err := os.Remove(stale); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("remove stale archive %s: %w", stale, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open archive db: %w", err)
	}
	if err := applyPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := createSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	specJSON, err := json.Marshal(spec)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("marshal archive spec: %w", err)
	}
	_, err = db.ExecContext(ctx,
		"INSERT INTO archive_meta (id, spec_json, row_count, finalized, created_at) VALUES (1, ?, 0, 0, ?)",
		string(specJSON), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("record archive spec: %w", err)
	}

	return &Writer{db: db, path: path, spec: spec}, nil
}

// Spec returns the dataset declaration the writer was created with.
func (w *Writer) Spec() Spec { return w.spec }

// Len returns the number of rows appended so far.
func (w *Writer) Len() int { return w.rowCount }

// Path returns the archive file location.
func (w *Writer) Path() string { return w.path }

// Append validates the row against the spec and writes it at the next index.
func (w *Writer) Append(ctx context.Context, row Row) error {
	if w.finalized || w.closed {
		return ErrFinalized
	}
	if err := row.validate(w.spec); err != nil {
		return err
	}

	var weakBlob, strongBlob any
	if w.spec.HasWeak {
		weakBlob = encodeBools(row.WeakTarget)
	}
	if w.spec.HasStrong {
		strongBlob = encodeBools(row.StrongTarget)
	}

	_, err := w.db.ExecContext(ctx,
		`INSERT INTO items (idx, audio_name, video_name, feature, video_feature, weak_target, strong_target)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		w.rowCount,
		row.AudioName,
		row.VideoName,
		encodeFloat32(row.Feature),
		encodeFloat32(row.VideoFeature),
		weakBlob,
		strongBlob,
	)
	if err != nil {
		return fmt.Errorf("append row %d (%s): %w", w.rowCount, row.AudioName, err)
	}

	w.rowCount++
	return nil
}

// Finalize stamps the archive complete and closes it. Only finalized archives
// are readable.
func (w *Writer) Finalize(ctx context.Context) error {
	if w.closed {
		return ErrFinalized
	}
	_, err := w.db.ExecContext(ctx,
		"UPDATE archive_meta SET finalized = 1, row_count = ? WHERE id = 1", w.rowCount)
	if err != nil {
		return fmt.Errorf("finalize archive: %w", err)
	}
	w.finalized = true
	return w.Close()
}

// Close releases the database handle. Safe to call after Finalize, so callers
// can defer it unconditionally.
func (w *Writer) Close() error {
	if w == nil || w.closed {
		return nil
	}
	w.closed = true
	return w.db.Close()
}
