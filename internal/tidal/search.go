package tidal

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"musixport/internal/models"
)

// Kind selects the search index queried on the target catalog.
type Kind string

const (
	KindTrack Kind = "track"
	KindAlbum Kind = "album"
)

// Candidate is one raw search result, not yet accepted as a match. The
// artist field arrives in two shapes depending on endpoint: a single object
// or a list. Both are decoded; PrimaryArtist hides the difference.
type Candidate struct {
	ID       int64           `json:"id"`
	Title    string          `json:"title"`
	Duration int             `json:"duration"`
	ISRC     string          `json:"isrc"`
	Explicit bool            `json:"explicit"`
	Version  string          `json:"version"`
	Artist   *models.Artist  `json:"artist"`
	Artists  []models.Artist `json:"artists"`
	Album    *CandidateAlbum `json:"album"`

	// Album-search results only.
	Cover          string `json:"cover"`
	ReleaseDate    string `json:"releaseDate"`
	NumberOfTracks int    `json:"numberOfTracks"`
}

// CandidateAlbum is the album sub-object on track candidates. Cover is the
// opaque path-segment identifier, not a URL.
type CandidateAlbum struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Cover string `json:"cover"`
}

func (c Candidate) PrimaryArtist() (string, int64) {
	return models.SafeArtist(c.Artist, c.Artists)
}

// Search queries the target catalog's search index. Transport failures and
// non-200 responses come back as errors; the resolver degrades them to
// "no results" on its side of the boundary.
func (c *Client) Search(ctx context.Context, query string, kind Kind, limit int) ([]Candidate, error) {
	endpoint := fmt.Sprintf("%s/search/%ss?query=%s&limit=%d&countryCode=%s",
		APIBase, kind, url.QueryEscape(query), limit, c.countryCode)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tidal search: status %d", resp.StatusCode)
	}

	var payload struct {
		Items []Candidate `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("tidal search decode: %w", err)
	}
	return payload.Items, nil
}

// CoverURL expands a compact cover identifier ("uuid-with-dashes") into the
// public 640x640 artwork URL. Empty in, empty out.
func CoverURL(cover string) string {
	if cover == "" {
		return ""
	}
	return imageBase + strings.ReplaceAll(cover, "-", "/") + "/640x640.jpg"
}
