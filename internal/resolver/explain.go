package resolver

import (
	"context"

	"musixport/internal/models"
	"musixport/internal/tidal"
)

// QueryDiag is the candidate breakdown for one fuzzy query, used by the
// replay tooling to show why a track missed.
type QueryDiag struct {
	Query      string
	Candidates []CandidateScore
}

// CandidateScore is one scored candidate. Filtered marks candidates the
// pre-filters would have rejected before scoring.
type CandidateScore struct {
	ID       int64
	Title    string
	Artist   string
	Duration int
	Score    float64
	Filtered bool
}

// Explain runs the full fuzzy query list for a track without early
// stopping and without the acceptance decision, reporting every
// candidate's composite score. Searches still go through the run cache.
func (r *Resolver) Explain(ctx context.Context, t models.SourceTrack) []QueryDiag {
	cleanTitle := r.norm.Normalize(t.Title)
	artistName, _ := t.PrimaryArtist()
	cleanArtist := r.norm.Normalize(artistName)

	var diags []QueryDiag
	for _, query := range r.buildQueries(t, cleanTitle, cleanArtist) {
		diag := QueryDiag{Query: query}
		for _, cand := range r.search(ctx, query, tidal.KindTrack, searchLimit) {
			candTitle := r.norm.Normalize(cand.Title)
			candArtistName, _ := cand.PrimaryArtist()
			diag.Candidates = append(diag.Candidates, CandidateScore{
				ID:       cand.ID,
				Title:    cand.Title,
				Artist:   candArtistName,
				Duration: cand.Duration,
				Score: composite(
					similarity(cleanTitle, candTitle),
					similarity(cleanArtist, r.norm.Normalize(candArtistName)),
					t.Duration, cand.Duration,
				),
				Filtered: !passesPrefilter(cleanTitle, candTitle),
			})
		}
		diags = append(diags, diag)
	}
	return diags
}
