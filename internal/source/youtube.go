package source

import (
	"context"
	"fmt"
	"time"

	"github.com/kkdai/youtube/v2"

	"musixport/internal/models"
)

// YouTube fetches a public playlist (or a single video) and derives
// artist/title pairs from video titles. No ISRC is available this way, so
// everything goes through the fuzzy path.
type YouTube struct {
	url string
}

func NewYouTube(rawURL string) *YouTube {
	return &YouTube{url: rawURL}
}

func (y *YouTube) Name() string { return "youtube" }

func (y *YouTube) Fetch(ctx context.Context) (models.Library, error) {
	client := youtube.Client{}

	lib := models.Library{
		Tracks:    []models.SourceTrack{},
		Albums:    []models.SourceAlbum{},
		Artists:   []models.Artist{},
		Playlists: []models.Playlist{},
	}

	playlist, err := client.GetPlaylistContext(ctx, y.url)
	if err == nil {
		pl := models.Playlist{
			ID:     playlist.ID,
			Title:  playlist.Title,
			Tracks: []models.SourceTrack{},
		}
		for _, entry := range playlist.Videos {
			pl.Tracks = append(pl.Tracks, youtubeTrack(entry.ID, entry.Title, entry.Author, entry.Duration))
		}
		lib.Name = playlist.Title
		lib.Playlists = append(lib.Playlists, pl)
		return lib, nil
	}

	// Not a playlist URL; fall back to a single video.
	video, err := client.GetVideoContext(ctx, y.url)
	if err != nil {
		return models.Library{}, fmt.Errorf("youtube: parse %q: %w", y.url, err)
	}

	lib.Name = video.Title
	lib.Tracks = append(lib.Tracks, youtubeTrack(video.ID, video.Title, video.Author, video.Duration))
	return lib, nil
}

func youtubeTrack(id, rawTitle, uploader string, duration time.Duration) models.SourceTrack {
	artist, title := SplitVideoTitle(rawTitle, uploader)
	track := models.SourceTrack{
		SourceID: id,
		Source:   "youtube",
		Title:    title,
		Duration: int(duration / time.Second),
	}
	if artist != "" {
		track.Artist = &models.Artist{Name: artist}
	}
	return track
}
