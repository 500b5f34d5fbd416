// Package monochrome serializes a converted library into the Monochrome
// import-file schema.
package monochrome

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"musixport/internal/models"
)

// Timestamps arrive with ambiguous units: Deezer hands out epoch seconds,
// other exports epoch milliseconds. Values above this threshold are assumed
// to already be milliseconds. Known failure mode: a seconds timestamp past
// year 2286, or a milliseconds timestamp before April 1970, scales the
// wrong way by 1000x.
const msThreshold = 10_000_000_000

// Export is the top-level Monochrome import document.
type Export struct {
	FavoriteTracks    []Track         `json:"favorites_tracks"`
	FavoriteAlbums    []Album         `json:"favorites_albums"`
	FavoriteArtists   []models.Artist `json:"favorites_artists"`
	FavoritePlaylists []Playlist      `json:"favorites_playlists"`
	UserPlaylists     []Playlist      `json:"user_playlists"`
}

type Track struct {
	ID              int64           `json:"id"`
	AddedAt         int64           `json:"addedAt"`
	Title           string          `json:"title"`
	Duration        int             `json:"duration"`
	Explicit        bool            `json:"explicit"`
	Version         string          `json:"version"`
	StreamStartDate string          `json:"streamStartDate"`
	Artists         []models.Artist `json:"artists"`
	Album           AlbumRef        `json:"album"`
}

type AlbumRef struct {
	ID    int64  `json:"id"`
	Cover string `json:"cover"`
}

type Album struct {
	ID             int64         `json:"id"`
	AddedAt        int64         `json:"addedAt"`
	Title          string        `json:"title"`
	Cover          string        `json:"cover"`
	ReleaseDate    string        `json:"releaseDate"`
	Explicit       bool          `json:"explicit"`
	Artist         models.Artist `json:"artist"`
	Type           string        `json:"type"`
	NumberOfTracks int           `json:"numberOfTracks"`
}

type Playlist struct {
	Cover     string  `json:"cover"`
	CreatedAt int64   `json:"createdAt"`
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Tracks    []Track `json:"tracks"`
}

// Build maps a converted library onto the import schema. Entries that
// resolved to a zero ID are placeholders and are skipped.
func Build(lib models.ConvertedLibrary) Export {
	out := Export{
		FavoriteTracks:    []Track{},
		FavoriteAlbums:    []Album{},
		FavoriteArtists:   lib.Artists,
		FavoritePlaylists: []Playlist{},
		UserPlaylists:     []Playlist{},
	}
	if out.FavoriteArtists == nil {
		out.FavoriteArtists = []models.Artist{}
	}

	for _, t := range lib.Tracks {
		if t.ID == 0 {
			continue
		}
		out.FavoriteTracks = append(out.FavoriteTracks, formatTrack(t))
	}

	for _, a := range lib.Albums {
		if a.ID == 0 {
			continue
		}
		out.FavoriteAlbums = append(out.FavoriteAlbums, Album{
			ID:             a.ID,
			AddedAt:        toMillis(a.DateAdd),
			Title:          a.Title,
			Cover:          NormalizeCover(a.Cover),
			ReleaseDate:    a.ReleaseDate,
			Explicit:       false,
			Artist:         a.Artist,
			Type:           "ALBUM",
			NumberOfTracks: a.TrackCount,
		})
	}

	for _, pl := range lib.Playlists {
		tracks := []Track{}
		for _, t := range pl.Tracks {
			if t.ID == 0 {
				continue
			}
			tracks = append(tracks, formatTrack(t))
		}
		out.UserPlaylists = append(out.UserPlaylists, Playlist{
			Cover:     "",
			CreatedAt: toMillis(pl.CreationDate),
			ID:        pl.ID,
			Name:      pl.Title,
			Tracks:    tracks,
		})
	}

	return out
}

// Write serializes the converted library to path.
func Write(path string, lib models.ConvertedLibrary) error {
	data, err := json.MarshalIndent(Build(lib), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal export: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func formatTrack(t models.ResolvedTrack) Track {
	return Track{
		ID:              t.ID,
		AddedAt:         toMillis(t.DateAdd),
		Title:           t.Title,
		Duration:        t.Duration,
		Explicit:        t.Explicit,
		Version:         t.Version,
		StreamStartDate: formatDate(t.DateAdd),
		Artists:         []models.Artist{t.Artist},
		Album: AlbumRef{
			ID:    t.Album.ID,
			Cover: NormalizeCover(t.Album.Cover),
		},
	}
}

// toMillis scales an epoch timestamp to milliseconds, leaving values that
// already look like milliseconds alone.
func toMillis(ts int64) int64 {
	if ts > msThreshold {
		return ts
	}
	return ts * 1000
}

// formatDate renders an epoch timestamp (seconds or milliseconds) as
// RFC 3339. Zero means "now": an unknown added-at date should not sort to
// 1970 in the importing application.
func formatDate(ts int64) string {
	if ts == 0 {
		return time.Now().Format(time.RFC3339)
	}
	if ts > msThreshold {
		ts = ts / 1000
	}
	return time.Unix(ts, 0).Format(time.RFC3339)
}

// NormalizeCover reduces a cover reference to its compact identifier:
//
//	https://resources.tidal.com/images/bddf1064/b2fb/4c6f/a2d5/fd54685b1b42/640x640.jpg
//	-> bddf1064-b2fb-4c6f-a2d5-fd54685b1b42
//
// Inputs already in compact or path form are converted likewise; anything
// unrecognized passes through untouched.
func NormalizeCover(cover string) string {
	if cover == "" {
		return cover
	}

	if strings.HasPrefix(cover, "http") {
		u, err := url.Parse(cover)
		if err != nil {
			return cover
		}
		idx := strings.Index(u.Path, "/images/")
		if idx == -1 {
			return cover
		}
		if joined := joinSegments(u.Path[idx+len("/images/"):]); joined != "" {
			return joined
		}
		return cover
	}

	if strings.Contains(cover, "/") {
		if joined := joinSegments(cover); joined != "" {
			return joined
		}
	}
	return cover
}

func joinSegments(path string) string {
	var parts []string
	for _, p := range strings.Split(path, "/") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	// Drop the trailing size/filename segment.
	if len(parts) > 0 && strings.Contains(parts[len(parts)-1], ".") {
		parts = parts[:len(parts)-1]
	}
	return strings.Join(parts, "-")
}
