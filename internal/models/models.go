package models

import "encoding/json"

// Artist identifies a performer in either catalog. Source catalogs that use
// non-numeric artist IDs leave ID at zero and carry their native ID on the
// owning entity instead.
type Artist struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// AlbumRef is the album sub-object attached to a track.
type AlbumRef struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Cover string `json:"cover"`
}

// SourceTrack is one track as fetched from the source catalog. Upstream
// schemas differ: some carry a single Artist object, others an Artists list,
// and most fields may be absent. Zero values mean "unknown".
type SourceTrack struct {
	ID       int64     `json:"id"`
	SourceID string    `json:"source_id,omitempty"`
	Source   string    `json:"source,omitempty"`
	ISRC     string    `json:"isrc,omitempty"`
	Title    string    `json:"title"`
	Duration int       `json:"duration"`
	Explicit bool      `json:"explicit"`
	Version  string    `json:"version"`
	DateAdd  int64     `json:"date_add"`
	Artist   *Artist   `json:"artist,omitempty"`
	Artists  []Artist  `json:"artists,omitempty"`
	Album    *AlbumRef `json:"album,omitempty"`
}

// PrimaryArtist returns the track's main artist, degrading to the sentinel
// ("Unknown", 0) for malformed records instead of failing.
func (t SourceTrack) PrimaryArtist() (string, int64) {
	return SafeArtist(t.Artist, t.Artists)
}

// SourceAlbum is one favorited album from the source catalog.
type SourceAlbum struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	DateAdd     int64    `json:"date_add"`
	ReleaseDate string   `json:"release_date"`
	Cover       string   `json:"cover"`
	Artist      *Artist  `json:"artist,omitempty"`
	Artists     []Artist `json:"artists,omitempty"`
	TrackCount  int      `json:"nb_tracks"`
}

func (a SourceAlbum) PrimaryArtist() (string, int64) {
	return SafeArtist(a.Artist, a.Artists)
}

// SafeArtist resolves the two artist shapes seen across catalogs: a single
// artist object wins, else the first entry of the artist list, else the
// sentinel. Never panics on missing fields.
func SafeArtist(single *Artist, list []Artist) (string, int64) {
	if single != nil {
		name := single.Name
		if name == "" {
			name = "Unknown"
		}
		return name, single.ID
	}
	if len(list) > 0 {
		name := list[0].Name
		if name == "" {
			name = "Unknown"
		}
		return name, list[0].ID
	}
	return "Unknown", 0
}

// Playlist is a user playlist in the source catalog.
type Playlist struct {
	ID           string        `json:"id"`
	Title        string        `json:"title"`
	CreationDate int64         `json:"creation_date"`
	Cover        string        `json:"cover"`
	Tracks       []SourceTrack `json:"tracks"`
}

// Library is everything fetched from one source catalog in one run.
type Library struct {
	Name      string        `json:"name,omitempty"`
	Tracks    []SourceTrack `json:"tracks"`
	Albums    []SourceAlbum `json:"albums"`
	Artists   []Artist      `json:"artists"`
	Playlists []Playlist    `json:"user_playlists"`
}

// ResolvedTrack is a target-catalog track accepted by the resolver. DateAdd
// is provenance carried over from the source entity, not target data.
type ResolvedTrack struct {
	ID       int64    `json:"id"`
	Title    string   `json:"title"`
	Duration int      `json:"duration"`
	Explicit bool     `json:"explicit"`
	Version  string   `json:"version"`
	DateAdd  int64    `json:"date_add"`
	Artist   Artist   `json:"artist"`
	Album    AlbumRef `json:"album"`
}

// ResolvedAlbum is a target-catalog album accepted by the resolver.
type ResolvedAlbum struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	DateAdd     int64  `json:"date_add"`
	ReleaseDate string `json:"release_date"`
	Cover       string `json:"cover"`
	Artist      Artist `json:"artist"`
	TrackCount  int    `json:"nb_tracks"`
	Type        string `json:"type"`
}

// ResolvedPlaylist mirrors a source playlist with its tracks resolved. A
// playlist whose tracks all missed still appears, with an empty track list.
type ResolvedPlaylist struct {
	ID           string          `json:"id"`
	Title        string          `json:"title"`
	CreationDate int64           `json:"creation_date"`
	Cover        string          `json:"cover"`
	Tracks       []ResolvedTrack `json:"tracks"`
}

// ConvertedLibrary is the batch output: every source entity either resolved
// here or recorded as a miss alongside.
type ConvertedLibrary struct {
	Tracks    []ResolvedTrack    `json:"tracks"`
	Albums    []ResolvedAlbum    `json:"albums"`
	Artists   []Artist           `json:"artists"`
	Playlists []ResolvedPlaylist `json:"user_playlists"`
}

// MissContext tags where in the batch a miss happened.
type MissContext string

const (
	MissTrack         MissContext = "track"
	MissAlbum         MissContext = "album"
	MissPlaylistTrack MissContext = "playlist-track"
)

// Miss records one source entity that produced no confident match. Original
// holds the full source record so the item can be replayed offline without
// re-fetching the source catalog.
type Miss struct {
	Context       MissContext     `json:"context"`
	Index         int             `json:"index"`
	PlaylistID    string          `json:"playlist_id,omitempty"`
	PlaylistTitle string          `json:"playlist_title,omitempty"`
	Title         string          `json:"title"`
	Artist        string          `json:"artist"`
	Reason        string          `json:"reason,omitempty"`
	Original      json.RawMessage `json:"original,omitempty"`
}
