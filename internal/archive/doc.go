// Package archive persists extracted features as a single random-access
// container with co-indexed datasets.
//
// One SQLite file holds one split: every item is one row carrying the audio
// and video names, the compressed feature blobs, and optional target blobs.
// Row index equals insertion order, so the append sequence defines the
// on-disk identity of the archive. A Writer streams rows and must be
// finalized once the corpus pass completes; readers refuse archives that were
// never finalized, which is how aborted runs are invalidated.
package archive
