// Package resolver maps source-catalog tracks and albums to their target
// catalog equivalents: exact industry-code lookup first, then fuzzy
// text+duration scoring, with per-run caching and miss accounting.
package resolver

import (
	"context"
	"log"
	"strings"
	"sync"

	"musixport/internal/models"
	"musixport/internal/textnorm"
	"musixport/internal/tidal"
)

const searchLimit = 5

// SearchClient is the target-catalog search boundary. Implementations
// return errors for transport failures; the resolver treats those as
// "no results" rather than aborting anything.
type SearchClient interface {
	Search(ctx context.Context, query string, kind tidal.Kind, limit int) ([]tidal.Candidate, error)
}

// Registry is an optional cross-run cache of already-resolved tracks.
type Registry interface {
	Lookup(source, sourceID, isrc string) (*models.ResolvedTrack, error)
	Store(source, sourceID, isrc string, match *models.ResolvedTrack) error
}

type searchKey struct {
	query string
	kind  tidal.Kind
	limit int
}

type trackKey struct {
	title    string
	artist   string
	duration int
}

// Resolver holds one run's worth of state: the search cache, the per-track
// resolution cache, and the normalizer memo. State is scoped here rather
// than package-wide so parallel runs and tests do not leak into each other.
type Resolver struct {
	client   SearchClient
	registry Registry // nil disables the cross-run cache
	norm     *textnorm.Normalizer

	mu          sync.Mutex
	searchCache map[searchKey][]tidal.Candidate
	trackCache  map[trackKey]*models.ResolvedTrack
}

func New(client SearchClient, registry Registry) *Resolver {
	return &Resolver{
		client:      client,
		registry:    registry,
		norm:        textnorm.New(),
		searchCache: make(map[searchKey][]tidal.Candidate),
		trackCache:  make(map[trackKey]*models.ResolvedTrack),
	}
}

// search memoizes (query, kind, limit) -> candidates for the run. Errors
// degrade to an empty result and are not cached, so a transient failure
// does not poison the key.
func (r *Resolver) search(ctx context.Context, query string, kind tidal.Kind, limit int) []tidal.Candidate {
	key := searchKey{query, kind, limit}

	r.mu.Lock()
	cached, ok := r.searchCache[key]
	r.mu.Unlock()
	if ok {
		return cached
	}

	items, err := r.client.Search(ctx, query, kind, limit)
	if err != nil {
		log.Printf("search %q (%s): %v", query, kind, err)
		return nil
	}

	r.mu.Lock()
	r.searchCache[key] = items
	r.mu.Unlock()
	return items
}

// ResolveTrack finds the single best target-catalog candidate for one
// source track, or nil for a miss. Outcomes, including misses, are cached
// per (title, artist, duration) for the run.
func (r *Resolver) ResolveTrack(ctx context.Context, t models.SourceTrack) (*models.ResolvedTrack, error) {
	artistName, _ := t.PrimaryArtist()
	key := trackKey{t.Title, artistName, t.Duration}

	r.mu.Lock()
	cached, ok := r.trackCache[key]
	r.mu.Unlock()
	if ok {
		return withProvenance(cached, t), nil
	}

	match := r.registryLookup(t)
	fromRegistry := match != nil
	if match == nil {
		match = r.trackByCode(ctx, t)
	}
	if match == nil {
		match = r.fuzzyTrack(ctx, t)
	}

	r.mu.Lock()
	r.trackCache[key] = match
	r.mu.Unlock()

	if match != nil && !fromRegistry {
		r.registryStore(t, match)
	}
	return withProvenance(match, t), nil
}

// withProvenance stamps the source's date_add onto a copy of the cached
// match, so entries shared through the cache keep per-item provenance.
func withProvenance(m *models.ResolvedTrack, t models.SourceTrack) *models.ResolvedTrack {
	if m == nil {
		return nil
	}
	out := *m
	out.DateAdd = t.DateAdd
	return &out
}

func (r *Resolver) registryLookup(t models.SourceTrack) *models.ResolvedTrack {
	if r.registry == nil {
		return nil
	}
	match, err := r.registry.Lookup(t.Source, t.SourceID, t.ISRC)
	if err != nil {
		return nil
	}
	return match
}

func (r *Resolver) registryStore(t models.SourceTrack, match *models.ResolvedTrack) {
	if r.registry == nil {
		return
	}
	if err := r.registry.Store(t.Source, t.SourceID, t.ISRC, match); err != nil {
		log.Printf("registry store %q: %v", t.Title, err)
	}
}

// trackByCode is the exact-code path: industry codes are globally unique,
// so a case-insensitive code match is accepted without any scoring.
func (r *Resolver) trackByCode(ctx context.Context, t models.SourceTrack) *models.ResolvedTrack {
	if t.ISRC == "" {
		return nil
	}
	for _, cand := range r.search(ctx, t.ISRC, tidal.KindTrack, searchLimit) {
		if cand.ISRC != "" && strings.EqualFold(cand.ISRC, t.ISRC) {
			match := mapCandidate(cand, t)
			return &match
		}
	}
	return nil
}

// fuzzyTrack runs the ordered query list against the search index, scoring
// every candidate and keeping the best. Stops early once a strong match
// appears to bound network round-trips.
func (r *Resolver) fuzzyTrack(ctx context.Context, t models.SourceTrack) *models.ResolvedTrack {
	if t.Title == "" {
		return nil
	}

	cleanTitle := r.norm.Normalize(t.Title)
	artistName, _ := t.PrimaryArtist()
	cleanArtist := r.norm.Normalize(artistName)

	var best tidal.Candidate
	bestScore := 0.0
	found := false

	for _, query := range r.buildQueries(t, cleanTitle, cleanArtist) {
		for _, cand := range r.search(ctx, query, tidal.KindTrack, searchLimit) {
			candTitle := r.norm.Normalize(cand.Title)
			if !passesPrefilter(cleanTitle, candTitle) {
				continue
			}

			candArtistName, _ := cand.PrimaryArtist()
			score := composite(
				similarity(cleanTitle, candTitle),
				similarity(cleanArtist, r.norm.Normalize(candArtistName)),
				t.Duration, cand.Duration,
			)
			if score > bestScore {
				bestScore, best, found = score, cand, true
			}
		}
		if bestScore >= strongThreshold {
			break
		}
	}

	if found && accepted(bestScore) {
		match := mapCandidate(best, t)
		return &match
	}
	return nil
}

// buildQueries orders the fuzzy query strings broadest-last: raw title,
// normalized title, normalized title + artist, then + album when known.
// Duplicates and empties are dropped; at most five queries run.
func (r *Resolver) buildQueries(t models.SourceTrack, cleanTitle, cleanArtist string) []string {
	raw := []string{
		t.Title,
		cleanTitle,
		strings.TrimSpace(cleanArtist + " " + cleanTitle),
	}
	if t.Album != nil && t.Album.Title != "" {
		raw = append(raw, strings.TrimSpace(cleanTitle+" "+r.norm.Normalize(t.Album.Title)))
	}

	seen := make(map[string]struct{}, len(raw))
	queries := raw[:0]
	for _, q := range raw {
		if q == "" {
			continue
		}
		if _, dup := seen[q]; dup {
			continue
		}
		seen[q] = struct{}{}
		queries = append(queries, q)
	}
	if len(queries) > 5 {
		queries = queries[:5]
	}
	return queries
}

// ResolveAlbum is single-shot: one artist+title query, limit 1, top result
// accepted unconditionally. Album search is precise enough that scoring
// does not pay for itself at album volume.
func (r *Resolver) ResolveAlbum(ctx context.Context, a models.SourceAlbum) (*models.ResolvedAlbum, error) {
	artistName, _ := a.PrimaryArtist()
	query := strings.TrimSpace(artistName + " " + a.Title)
	if query == "" {
		return nil, nil
	}

	items := r.search(ctx, query, tidal.KindAlbum, 1)
	if len(items) == 0 {
		return nil, nil
	}

	top := items[0]
	name, id := top.PrimaryArtist()
	return &models.ResolvedAlbum{
		ID:          top.ID,
		Title:       top.Title,
		DateAdd:     a.DateAdd,
		ReleaseDate: top.ReleaseDate,
		Cover:       tidal.CoverURL(top.Cover),
		Artist:      models.Artist{ID: id, Name: name},
		TrackCount:  top.NumberOfTracks,
		Type:        "ALBUM",
	}, nil
}

// mapCandidate builds the accepted match. Only candidates that survived
// the exact-code check or the acceptance threshold ever reach this.
func mapCandidate(c tidal.Candidate, src models.SourceTrack) models.ResolvedTrack {
	name, id := c.PrimaryArtist()

	album := models.AlbumRef{Title: "Unknown"}
	if c.Album != nil {
		album = models.AlbumRef{
			ID:    c.Album.ID,
			Title: c.Album.Title,
			Cover: tidal.CoverURL(c.Album.Cover),
		}
	}

	return models.ResolvedTrack{
		ID:       c.ID,
		Title:    c.Title,
		Duration: c.Duration,
		Explicit: c.Explicit,
		Version:  c.Version,
		DateAdd:  src.DateAdd,
		Artist:   models.Artist{ID: id, Name: name},
		Album:    album,
	}
}
