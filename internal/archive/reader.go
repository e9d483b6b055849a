package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"

	_ "modernc.org/sqlite"
)

// Reader provides indexed access to a finalized archive.
type Reader struct {
	db       *sql.DB
	path     string
	spec     Spec
	rowCount int
}

// OpenReader opens a finalized archive for reading. Archives whose extraction
// run never reached Finalize are rejected with ErrNotFinalized.
func OpenReader(ctx context.Context, path string) (*Reader, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("stat archive: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open archive db: %w", err)
	}
	if err := applyPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := checkSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	var specJSON string
	var rowCount, finalized int
	err = db.QueryRowContext(ctx,
		"SELECT spec_json, row_count, finalized FROM archive_meta WHERE id = 1").
		Scan(&specJSON, &rowCount, &finalized)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("read archive meta: %w", err)
	}
	if finalized == 0 {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", path, ErrNotFinalized)
	}

	var spec Spec
	if err := json.Unmarshal([]byte(specJSON), &spec); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("decode archive spec: %w", err)
	}

	return &Reader{db: db, path: path, spec: spec, rowCount: rowCount}, nil
}

// Spec returns the dataset declaration the archive was written with.
func (r *Reader) Spec() Spec { return r.spec }

// Len returns the number of rows in the archive.
func (r *Reader) Len() int { return r.rowCount }

// Path returns the archive file location.
func (r *Reader) Path() string { return r.path }

// Close releases the database handle.
func (r *Reader) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	db := r.db
	r.db = nil
	return db.Close()
}

// AudioNames returns the audio names of every row in index order.
func (r *Reader) AudioNames(ctx context.Context) ([]string, error) {
	return r.names(ctx, "audio_name")
}

// VideoNames returns the video names of every row in index order.
func (r *Reader) VideoNames(ctx context.Context) ([]string, error) {
	return r.names(ctx, "video_name")
}

func (r *Reader) names(ctx context.Context, column string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		fmt.Sprintf("SELECT %s FROM items ORDER BY idx", column))
	if err != nil {
		return nil, fmt.Errorf("read %s column: %w", column, err)
	}
	defer rows.Close()

	names := make([]string, 0, r.rowCount)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan %s: %w", column, err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s column: %w", column, err)
	}
	return names, nil
}

// Row reads the item stored at idx, decoding every dataset the spec declares.
func (r *Reader) Row(ctx context.Context, idx int) (Row, error) {
	if idx < 0 || idx >= r.rowCount {
		return Row{}, fmt.Errorf("archive row index %d out of range [0,%d)", idx, r.rowCount)
	}

	var row Row
	var feature, videoFeature []byte
	var weak, strong []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT audio_name, video_name, feature, video_feature, weak_target, strong_target
         FROM items WHERE idx = ?`, idx).
		Scan(&row.AudioName, &row.VideoName, &feature, &videoFeature, &weak, &strong)
	if err != nil {
		return Row{}, fmt.Errorf("read row %d: %w", idx, err)
	}

	if row.Feature, err = decodeFloat32(feature, r.spec.FeatureLen()); err != nil {
		return Row{}, fmt.Errorf("row %d: %w", idx, err)
	}
	if row.VideoFeature, err = decodeFloat32(videoFeature, r.spec.VideoFeatureLen()); err != nil {
		return Row{}, fmt.Errorf("row %d: %w", idx, err)
	}
	if r.spec.HasWeak {
		if row.WeakTarget, err = decodeBools(weak, r.spec.ClassesNum); err != nil {
			return Row{}, fmt.Errorf("row %d weak target: %w", idx, err)
		}
	}
	if r.spec.HasStrong {
		if row.StrongTarget, err = decodeBools(strong, r.spec.StrongTargetLen()); err != nil {
			return Row{}, fmt.Errorf("row %d strong target: %w", idx, err)
		}
	}
	return row, nil
}

// Features streams every audio feature row in index order, invoking fn for
// each. The slice passed to fn is owned by the callee.
func (r *Reader) Features(ctx context.Context, fn func(idx int, feature []float32) error) error {
	return r.featureColumn(ctx, "feature", r.spec.FeatureLen(), fn)
}

// VideoFeatures streams every video feature row in index order.
func (r *Reader) VideoFeatures(ctx context.Context, fn func(idx int, feature []float32) error) error {
	return r.featureColumn(ctx, "video_feature", r.spec.VideoFeatureLen(), fn)
}

func (r *Reader) featureColumn(ctx context.Context, column string, want int, fn func(int, []float32) error) error {
	rows, err := r.db.QueryContext(ctx,
		fmt.Sprintf("SELECT idx, %s FROM items ORDER BY idx", column))
	if err != nil {
		return fmt.Errorf("read %s column: %w", column, err)
	}
	defer rows.Close()

	for rows.Next() {
		var idx int
		var blob []byte
		if err := rows.Scan(&idx, &blob); err != nil {
			return fmt.Errorf("scan %s: %w", column, err)
		}
		values, err := decodeFloat32(blob, want)
		if err != nil {
			return fmt.Errorf("row %d: %w", idx, err)
		}
		if err := fn(idx, values); err != nil {
			return err
		}
	}
	return rows.Err()
}
