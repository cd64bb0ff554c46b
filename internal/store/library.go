package store

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"clipfinder/internal/apperr"
	"clipfinder/models"
)

// Library is the SQLite-backed index of video records and their derived
// clips. Media bytes and transcripts live on the filesystem; the database
// only carries metadata.
type Library struct {
	db *sql.DB
}

// OpenLibrary opens (creating if needed) the library database at dbPath.
func OpenLibrary(dbPath string) (*Library, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	l := &Library{db: db}
	if err := l.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return l, nil
}

func (l *Library) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS videos (
		filename         TEXT PRIMARY KEY,
		display_name     TEXT NOT NULL,
		source_type      TEXT NOT NULL,
		source_ref       TEXT NOT NULL,
		duration_seconds REAL NOT NULL,
		created_at       TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS clips (
		clip_filename   TEXT PRIMARY KEY,
		source_filename TEXT NOT NULL,
		window_start    REAL NOT NULL,
		window_end      REAL NOT NULL,
		clip_path       TEXT NOT NULL,
		summary         TEXT NOT NULL,
		created_at      TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_clips_source ON clips(source_filename);
	`
	_, err := l.db.Exec(schema)
	return err
}

// Close closes the underlying database.
func (l *Library) Close() error { return l.db.Close() }

// Insert registers a new video record.
func (l *Library) Insert(rec models.VideoRecord) error {
	_, err := l.db.Exec(
		`INSERT INTO videos (filename, display_name, source_type, source_ref, duration_seconds, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.Filename, rec.DisplayName, rec.SourceType, rec.SourceRef, rec.DurationSeconds, rec.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert video %s: %w", rec.Filename, err)
	}
	return nil
}

// Get fetches one video record by filename, or NotFound.
func (l *Library) Get(filename string) (*models.VideoRecord, error) {
	row := l.db.QueryRow(
		`SELECT filename, display_name, source_type, source_ref, duration_seconds, created_at
		 FROM videos WHERE filename = ?`, filename,
	)
	var rec models.VideoRecord
	err := row.Scan(&rec.Filename, &rec.DisplayName, &rec.SourceType, &rec.SourceRef, &rec.DurationSeconds, &rec.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.New(apperr.NotFound, "video %q not found", filename)
	}
	if err != nil {
		return nil, fmt.Errorf("get video %s: %w", filename, err)
	}
	return &rec, nil
}

// List returns all video records ordered most recent first. Filenames
// break timestamp ties so the ordering is total and stable.
func (l *Library) List() ([]models.VideoRecord, error) {
	rows, err := l.db.Query(
		`SELECT filename, display_name, source_type, source_ref, duration_seconds, created_at
		 FROM videos ORDER BY created_at DESC, filename ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	defer rows.Close()

	var recs []models.VideoRecord
	for rows.Next() {
		var rec models.VideoRecord
		if err := rows.Scan(&rec.Filename, &rec.DisplayName, &rec.SourceType, &rec.SourceRef, &rec.DurationSeconds, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan video row: %w", err)
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// Delete removes a video row. NotFound when no row matched.
func (l *Library) Delete(filename string) error {
	res, err := l.db.Exec(`DELETE FROM videos WHERE filename = ?`, filename)
	if err != nil {
		return fmt.Errorf("delete video %s: %w", filename, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.New(apperr.NotFound, "video %q not found", filename)
	}
	return nil
}

// AddClip registers a derived clip against its source video.
func (l *Library) AddClip(clip models.ClipRecord) error {
	_, err := l.db.Exec(
		`INSERT INTO clips (clip_filename, source_filename, window_start, window_end, clip_path, summary, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		clip.ClipFilename, clip.SourceFilename, clip.WindowStart, clip.WindowEnd, clip.ClipPath, clip.Summary, clip.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert clip %s: %w", clip.ClipFilename, err)
	}
	return nil
}

// ClipsFor lists the clips derived from a source video.
func (l *Library) ClipsFor(sourceFilename string) ([]models.ClipRecord, error) {
	rows, err := l.db.Query(
		`SELECT clip_filename, source_filename, window_start, window_end, clip_path, summary, created_at
		 FROM clips WHERE source_filename = ? ORDER BY created_at ASC`, sourceFilename,
	)
	if err != nil {
		return nil, fmt.Errorf("list clips for %s: %w", sourceFilename, err)
	}
	defer rows.Close()

	var clips []models.ClipRecord
	for rows.Next() {
		var c models.ClipRecord
		if err := rows.Scan(&c.ClipFilename, &c.SourceFilename, &c.WindowStart, &c.WindowEnd, &c.ClipPath, &c.Summary, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan clip row: %w", err)
		}
		clips = append(clips, c)
	}
	return clips, rows.Err()
}

// DeleteClipsFor removes all clip rows referencing a source video.
func (l *Library) DeleteClipsFor(sourceFilename string) error {
	_, err := l.db.Exec(`DELETE FROM clips WHERE source_filename = ?`, sourceFilename)
	if err != nil {
		return fmt.Errorf("delete clips for %s: %w", sourceFilename, err)
	}
	return nil
}
