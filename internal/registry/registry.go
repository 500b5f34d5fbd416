// Package registry is the cross-run SQLite cache of resolved tracks, keyed
// by ISRC and by source-catalog IDs. A registry is optional: callers pass
// nil to the resolver to run without one.
package registry

import (
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"musixport/internal/models"
)

//go:embed schema.sql
var schema string

type Registry struct {
	db *sql.DB
}

// Open creates or opens the registry database. WAL keeps lookups from
// blocking behind writes while a batch is streaming progress.
func Open(path string) (*Registry, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("registry dir: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_synchronous=NORMAL")
	if err != nil {
		return nil, fmt.Errorf("open registry: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL; PRAGMA cache_size=-2000;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("registry pragmas: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("registry schema: %w", err)
	}

	return &Registry{db: db}, nil
}

func (r *Registry) Close() error {
	return r.db.Close()
}

func sourceColumn(source string) string {
	switch source {
	case "deezer":
		return "deezer_id"
	case "spotify":
		return "spotify_id"
	case "youtube":
		return "youtube_id"
	default:
		return ""
	}
}

// Lookup returns a previously resolved track for this ISRC or source ID,
// or (nil, nil) when the registry has nothing.
func (r *Registry) Lookup(source, sourceID, isrc string) (*models.ResolvedTrack, error) {
	var payload string
	var err error

	switch {
	case isrc != "":
		err = r.db.QueryRow("SELECT payload FROM track_registry WHERE isrc = ?", isrc).Scan(&payload)
	case sourceID != "":
		col := sourceColumn(source)
		if col == "" {
			return nil, fmt.Errorf("unsupported source type: %s", source)
		}
		err = r.db.QueryRow("SELECT payload FROM track_registry WHERE "+col+" = ?", sourceID).Scan(&payload)
	default:
		return nil, nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var match models.ResolvedTrack
	if err := json.Unmarshal([]byte(payload), &match); err != nil {
		return nil, fmt.Errorf("registry payload: %w", err)
	}
	return &match, nil
}

// Store upserts a resolved track. COALESCE keeps IDs learned from other
// source catalogs intact when the same track arrives via a new one.
func (r *Registry) Store(source, sourceID, isrc string, match *models.ResolvedTrack) error {
	if match == nil {
		return nil
	}

	payload, err := json.Marshal(match)
	if err != nil {
		return fmt.Errorf("registry payload: %w", err)
	}

	var deezerID, spotifyID, youtubeID string
	switch source {
	case "deezer":
		deezerID = sourceID
	case "spotify":
		spotifyID = sourceID
	case "youtube":
		youtubeID = sourceID
	}

	query := `
	INSERT INTO track_registry (tidal_id, isrc, deezer_id, spotify_id, youtube_id, payload, last_updated)
	VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	ON CONFLICT(tidal_id) DO UPDATE SET
		isrc = COALESCE(NULLIF(excluded.isrc, ''), track_registry.isrc),
		deezer_id = COALESCE(NULLIF(excluded.deezer_id, ''), track_registry.deezer_id),
		spotify_id = COALESCE(NULLIF(excluded.spotify_id, ''), track_registry.spotify_id),
		youtube_id = COALESCE(NULLIF(excluded.youtube_id, ''), track_registry.youtube_id),
		payload = excluded.payload,
		last_updated = CURRENT_TIMESTAMP;`

	_, err = r.db.Exec(query, match.ID, isrc, deezerID, spotifyID, youtubeID, string(payload))
	return err
}
