package source

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/zmb3/spotify/v2"

	"musixport/internal/models"
)

// Spotify fetches a public playlist, album, or single track by URL through
// the official Web API. Spotify IDs are strings, so the numeric ID stays
// zero and SourceID carries the native ID.
type Spotify struct {
	client *spotify.Client
	url    string
}

func NewSpotify(client *spotify.Client, rawURL string) *Spotify {
	return &Spotify{client: client, url: rawURL}
}

func (s *Spotify) Name() string { return "spotify" }

func (s *Spotify) Fetch(ctx context.Context) (models.Library, error) {
	id, mediaType, err := parseSpotifyURL(s.url)
	if err != nil {
		return models.Library{}, err
	}

	switch mediaType {
	case "playlist":
		return s.fetchPlaylist(ctx, id)
	case "album":
		return s.fetchAlbum(ctx, id)
	case "track":
		return s.fetchTrack(ctx, id)
	default:
		return models.Library{}, fmt.Errorf("spotify: unsupported media type %q", mediaType)
	}
}

func (s *Spotify) fetchPlaylist(ctx context.Context, id spotify.ID) (models.Library, error) {
	res, err := s.client.GetPlaylist(ctx, id)
	if err != nil {
		return models.Library{}, fmt.Errorf("spotify: get playlist: %w", err)
	}

	pl := models.Playlist{
		ID:     string(res.ID),
		Title:  res.Name,
		Tracks: []models.SourceTrack{},
	}

	page := res.Tracks
	for {
		for _, item := range page.Tracks {
			if item.Track.ID == "" || item.IsLocal {
				continue
			}
			track := transformSpotifyTrack(item.Track)
			track.DateAdd = parseSpotifyTimestamp(item.AddedAt)
			pl.Tracks = append(pl.Tracks, track)
		}

		err = s.client.NextPage(ctx, &page)
		if err == spotify.ErrNoMorePages {
			break
		}
		if err != nil {
			return models.Library{}, fmt.Errorf("spotify: playlist pagination: %w", err)
		}
	}

	return models.Library{
		Name:      res.Name,
		Tracks:    []models.SourceTrack{},
		Albums:    []models.SourceAlbum{},
		Artists:   []models.Artist{},
		Playlists: []models.Playlist{pl},
	}, nil
}

func (s *Spotify) fetchAlbum(ctx context.Context, id spotify.ID) (models.Library, error) {
	res, err := s.client.GetAlbum(ctx, id)
	if err != nil {
		return models.Library{}, fmt.Errorf("spotify: get album: %w", err)
	}

	var ids []spotify.ID
	for _, t := range res.Tracks.Tracks {
		ids = append(ids, t.ID)
	}

	lib := models.Library{
		Name:      res.Name,
		Tracks:    []models.SourceTrack{},
		Albums:    []models.SourceAlbum{},
		Artists:   []models.Artist{},
		Playlists: []models.Playlist{},
	}

	// GetTracks caps at 50 IDs per call.
	for i := 0; i < len(ids); i += 50 {
		end := i + 50
		if end > len(ids) {
			end = len(ids)
		}
		full, err := s.client.GetTracks(ctx, ids[i:end])
		if err != nil {
			return models.Library{}, fmt.Errorf("spotify: get album tracks: %w", err)
		}
		for _, ft := range full {
			if ft == nil {
				continue
			}
			lib.Tracks = append(lib.Tracks, transformSpotifyTrack(*ft))
		}
	}

	return lib, nil
}

func (s *Spotify) fetchTrack(ctx context.Context, id spotify.ID) (models.Library, error) {
	res, err := s.client.GetTrack(ctx, id)
	if err != nil {
		return models.Library{}, fmt.Errorf("spotify: get track: %w", err)
	}
	return models.Library{
		Name:      res.Name,
		Tracks:    []models.SourceTrack{transformSpotifyTrack(*res)},
		Albums:    []models.SourceAlbum{},
		Artists:   []models.Artist{},
		Playlists: []models.Playlist{},
	}, nil
}

func transformSpotifyTrack(st spotify.FullTrack) models.SourceTrack {
	artists := make([]models.Artist, 0, len(st.Artists))
	for _, a := range st.Artists {
		artists = append(artists, models.Artist{Name: a.Name})
	}

	track := models.SourceTrack{
		SourceID: string(st.ID),
		Source:   "spotify",
		ISRC:     st.ExternalIDs["isrc"],
		Title:    st.Name,
		Duration: int(st.TimeDuration() / time.Second),
		Explicit: st.Explicit,
		Artists:  artists,
	}
	if st.Album.Name != "" {
		track.Album = &models.AlbumRef{Title: st.Album.Name}
	}
	return track
}

func parseSpotifyURL(rawURL string) (spotify.ID, string, error) {
	for _, mediaType := range []string{"playlist", "album", "track"} {
		marker := "/" + mediaType + "/"
		if idx := strings.Index(rawURL, marker); idx != -1 {
			rest := rawURL[idx+len(marker):]
			if q := strings.IndexAny(rest, "?/"); q != -1 {
				rest = rest[:q]
			}
			if rest == "" {
				return "", "", fmt.Errorf("spotify: empty %s id in %q", mediaType, rawURL)
			}
			return spotify.ID(rest), mediaType, nil
		}
	}
	return "", "", fmt.Errorf("spotify: could not identify media type from %q", rawURL)
}

func parseSpotifyTimestamp(s string) int64 {
	if s == "" {
		return 0
	}
	t, err := time.Parse(spotify.TimestampLayout, s)
	if err != nil {
		return 0
	}
	return t.Unix()
}
