package archive

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// ScalarRecord holds per-element mean and standard deviation for the two
// feature datasets of one archive. Audio slices have one entry per
// (frame, mel bin); video slices one per (y, x, frame, channel).
type ScalarRecord struct {
	AudioMean []float32
	AudioStd  []float32
	VideoMean []float32
	VideoStd  []float32
}

func (r *ScalarRecord) validate() error {
	if len(r.AudioMean) == 0 || len(r.AudioMean) != len(r.AudioStd) {
		return fmt.Errorf("scalar record: audio mean/std lengths %d/%d", len(r.AudioMean), len(r.AudioStd))
	}
	if len(r.VideoMean) == 0 || len(r.VideoMean) != len(r.VideoStd) {
		return fmt.Errorf("scalar record: video mean/std lengths %d/%d", len(r.VideoMean), len(r.VideoStd))
	}
	return nil
}

// WriteScalars writes rec to path, replacing any previous record.
func WriteScalars(ctx context.Context, path string, rec ScalarRecord) error {
	if err := rec.validate(); err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create scalars directory: %w", err)
		}
	}
	for _, stale := range []string{path, path + "-wal", path + "-shm"} {
		if err := os.Remove(stale); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove stale scalar record %s: %w", stale, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open scalar db: %w", err)
	}
	defer db.Close()
	if err := applyPragmas(db); err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin scalar tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
        CREATE TABLE schema_version (version INTEGER NOT NULL);
        CREATE TABLE scalars (
            modality TEXT PRIMARY KEY,
            length INTEGER NOT NULL,
            mean BLOB NOT NULL,
            std BLOB NOT NULL,
            created_at TEXT NOT NULL
        );`)
	if err != nil {
		return fmt.Errorf("create scalar schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record scalar schema version: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	groups := []struct {
		modality  string
		mean, std []float32
	}{
		{"audio", rec.AudioMean, rec.AudioStd},
		{"video", rec.VideoMean, rec.VideoStd},
	}
	for _, g := range groups {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO scalars (modality, length, mean, std, created_at) VALUES (?, ?, ?, ?, ?)",
			g.modality, len(g.mean), encodeFloat32(g.mean), encodeFloat32(g.std), now)
		if err != nil {
			return fmt.Errorf("write %s scalars: %w", g.modality, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit scalar record: %w", err)
	}
	return nil
}

// ReadScalars loads a scalar record written by WriteScalars.
func ReadScalars(ctx context.Context, path string) (ScalarRecord, error) {
	var rec ScalarRecord
	if _, err := os.Stat(path); err != nil {
		return rec, fmt.Errorf("stat scalar record: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return rec, fmt.Errorf("open scalar db: %w", err)
	}
	defer db.Close()
	if err := applyPragmas(db); err != nil {
		return rec, err
	}
	if err := checkSchema(ctx, db); err != nil {
		return rec, err
	}

	for _, modality := range []string{"audio", "video"} {
		var length int
		var meanBlob, stdBlob []byte
		err := db.QueryRowContext(ctx,
			"SELECT length, mean, std FROM scalars WHERE modality = ?", modality).
			Scan(&length, &meanBlob, &stdBlob)
		if err != nil {
			return rec, fmt.Errorf("read %s scalars: %w", modality, err)
		}
		mean, err := decodeFloat32(meanBlob, length)
		if err != nil {
			return rec, fmt.Errorf("%s mean: %w", modality, err)
		}
		std, err := decodeFloat32(stdBlob, length)
		if err != nil {
			return rec, fmt.Errorf("%s std: %w", modality, err)
		}
		switch modality {
		case "audio":
			rec.AudioMean, rec.AudioStd = mean, std
		case "video":
			rec.VideoMean, rec.VideoStd = mean, std
		}
	}
	return rec, nil
}
