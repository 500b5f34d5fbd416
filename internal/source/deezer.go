package source

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"musixport/internal/models"
)

const deezerAPIBase = "https://api.deezer.com"

// Deezer allows 50 requests in any rolling 5-second window. A token bucket
// refills too evenly to model that quota, so hits are tracked explicitly
// and trimmed against the window, behind a mutex so concurrent callers
// queue instead of bursting.
type windowLimiter struct {
	mu     sync.Mutex
	window time.Duration
	limit  int
	hits   []time.Time
}

func newWindowLimiter(limit int, window time.Duration) *windowLimiter {
	return &windowLimiter{window: window, limit: limit}
}

func (l *windowLimiter) Wait() {
	for {
		l.mu.Lock()
		now := time.Now()
		kept := l.hits[:0]
		for _, h := range l.hits {
			if now.Sub(h) < l.window {
				kept = append(kept, h)
			}
		}
		l.hits = kept

		if len(l.hits) < l.limit {
			l.hits = append(l.hits, now)
			l.mu.Unlock()
			return
		}

		sleep := l.window - now.Sub(l.hits[0]) + 50*time.Millisecond
		l.mu.Unlock()
		time.Sleep(sleep)
	}
}

// Deezer fetches public library data; no authentication, only a public
// user ID or playlist ID.
type Deezer struct {
	httpClient *http.Client
	limiter    *windowLimiter
	userID     string
	playlistID string
}

func NewDeezer(userID, playlistID string) *Deezer {
	return &Deezer{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		limiter:    newWindowLimiter(50, 5*time.Second),
		userID:     userID,
		playlistID: playlistID,
	}
}

func (d *Deezer) Name() string { return "deezer" }

// Wire shapes. ISRC only appears on track detail responses, not listings.
type deezerTrack struct {
	ID       int64          `json:"id"`
	Title    string         `json:"title"`
	ISRC     string         `json:"isrc"`
	Duration int            `json:"duration"`
	Explicit bool           `json:"explicit_lyrics"`
	TimeAdd  int64          `json:"time_add"`
	Artist   *models.Artist `json:"artist"`
	Album    *deezerAlbum   `json:"album"`
}

type deezerAlbum struct {
	ID          int64          `json:"id"`
	Title       string         `json:"title"`
	Cover       string         `json:"cover"`
	ReleaseDate string         `json:"release_date"`
	TimeAdd     int64          `json:"time_add"`
	TrackCount  int            `json:"nb_tracks"`
	Artist      *models.Artist `json:"artist"`
}

type deezerPlaylist struct {
	ID           int64  `json:"id"`
	Title        string `json:"title"`
	CreationDate int64  `json:"time_add"`
	Picture      string `json:"picture"`
}

func (d *Deezer) Fetch(ctx context.Context) (models.Library, error) {
	if d.playlistID != "" {
		pl, err := d.fetchPlaylist(ctx, d.playlistID)
		if err != nil {
			return models.Library{}, err
		}
		return models.Library{
			Name:      pl.Title,
			Tracks:    []models.SourceTrack{},
			Albums:    []models.SourceAlbum{},
			Artists:   []models.Artist{},
			Playlists: []models.Playlist{pl},
		}, nil
	}

	if d.userID == "" {
		return models.Library{}, fmt.Errorf("deezer: user id or playlist id required")
	}

	// Validate the user up front; a bad ID should fail the run, not
	// degrade into an empty library.
	var user struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}
	if err := d.get(ctx, fmt.Sprintf("%s/user/%s", deezerAPIBase, d.userID), &user); err != nil {
		return models.Library{}, fmt.Errorf("deezer: invalid user %s: %w", d.userID, err)
	}

	lib := models.Library{
		Name:      user.Name,
		Tracks:    []models.SourceTrack{},
		Albums:    []models.SourceAlbum{},
		Artists:   []models.Artist{},
		Playlists: []models.Playlist{},
	}

	// Per-section failures degrade to an empty section; the rest of the
	// library still exports.
	var tracks []deezerTrack
	if err := d.getPaged(ctx, fmt.Sprintf("%s/user/%s/tracks", deezerAPIBase, d.userID), &tracks); err != nil {
		log.Printf("deezer: favorite tracks: %v", err)
	}
	for _, t := range tracks {
		lib.Tracks = append(lib.Tracks, d.normalizeTrack(t))
	}

	var albums []deezerAlbum
	if err := d.getPaged(ctx, fmt.Sprintf("%s/user/%s/albums", deezerAPIBase, d.userID), &albums); err != nil {
		log.Printf("deezer: favorite albums: %v", err)
	}
	for _, a := range albums {
		lib.Albums = append(lib.Albums, models.SourceAlbum{
			ID:          a.ID,
			Title:       a.Title,
			DateAdd:     a.TimeAdd,
			ReleaseDate: a.ReleaseDate,
			Cover:       a.Cover,
			Artist:      a.Artist,
			TrackCount:  a.TrackCount,
		})
	}

	var artists []models.Artist
	if err := d.getPaged(ctx, fmt.Sprintf("%s/user/%s/artists", deezerAPIBase, d.userID), &artists); err != nil {
		log.Printf("deezer: favorite artists: %v", err)
	}
	lib.Artists = append(lib.Artists, artists...)

	var playlists []deezerPlaylist
	if err := d.getPaged(ctx, fmt.Sprintf("%s/user/%s/playlists", deezerAPIBase, d.userID), &playlists); err != nil {
		log.Printf("deezer: playlists: %v", err)
	}
	for _, p := range playlists {
		pl, err := d.fetchPlaylist(ctx, strconv.FormatInt(p.ID, 10))
		if err != nil {
			log.Printf("deezer: playlist %d: %v", p.ID, err)
			continue
		}
		lib.Playlists = append(lib.Playlists, pl)
	}

	return lib, nil
}

func (d *Deezer) fetchPlaylist(ctx context.Context, id string) (models.Playlist, error) {
	var raw struct {
		deezerPlaylist
		CreationDate string `json:"creation_date"`
	}
	if err := d.get(ctx, fmt.Sprintf("%s/playlist/%s", deezerAPIBase, id), &raw); err != nil {
		return models.Playlist{}, err
	}

	var tracks []deezerTrack
	if err := d.getPaged(ctx, fmt.Sprintf("%s/playlist/%s/tracks", deezerAPIBase, id), &tracks); err != nil {
		log.Printf("deezer: playlist %s tracks: %v", id, err)
	}

	pl := models.Playlist{
		ID:           id,
		Title:        raw.Title,
		CreationDate: parsePlaylistDate(raw.CreationDate),
		Cover:        raw.Picture,
		Tracks:       []models.SourceTrack{},
	}
	for _, t := range tracks {
		pl.Tracks = append(pl.Tracks, d.normalizeTrack(t))
	}
	return pl, nil
}

func (d *Deezer) normalizeTrack(t deezerTrack) models.SourceTrack {
	track := models.SourceTrack{
		ID:       t.ID,
		SourceID: strconv.FormatInt(t.ID, 10),
		Source:   "deezer",
		ISRC:     t.ISRC,
		Title:    t.Title,
		Duration: t.Duration,
		Explicit: t.Explicit,
		DateAdd:  t.TimeAdd,
		Artist:   t.Artist,
	}
	if t.Album != nil {
		track.Album = &models.AlbumRef{ID: t.Album.ID, Title: t.Album.Title, Cover: t.Album.Cover}
	}
	return track
}

// get performs one rate-limited API call. Deezer reports errors inside a
// 200 body, so the error envelope is checked too.
func (d *Deezer) get(ctx context.Context, rawURL string, out any) error {
	d.limiter.Wait()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	resp, err := d.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("deezer: status %d", resp.StatusCode)
	}

	var envelope struct {
		Error *struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"error"`
	}
	var buf json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&buf); err != nil {
		return err
	}
	if err := json.Unmarshal(buf, &envelope); err == nil && envelope.Error != nil {
		return fmt.Errorf("deezer: %s: %s", envelope.Error.Type, envelope.Error.Message)
	}
	return json.Unmarshal(buf, out)
}

// getPaged follows the "next" links of a list endpoint, appending every
// page's data into out (a pointer to a slice).
func (d *Deezer) getPaged(ctx context.Context, rawURL string, out any) error {
	collected := []json.RawMessage{}
	next := rawURL

	for next != "" {
		var page struct {
			Data []json.RawMessage `json:"data"`
			Next string            `json:"next"`
		}
		if err := d.get(ctx, next, &page); err != nil {
			return err
		}
		collected = append(collected, page.Data...)
		next = page.Next
	}

	joined, err := json.Marshal(collected)
	if err != nil {
		return err
	}
	return json.Unmarshal(joined, out)
}

// Playlist creation dates arrive as "2006-01-02 15:04:05" strings while
// everything else uses epoch seconds.
func parsePlaylistDate(s string) int64 {
	if s == "" {
		return 0
	}
	t, err := time.Parse("2006-01-02 15:04:05", s)
	if err != nil {
		return 0
	}
	return t.Unix()
}
