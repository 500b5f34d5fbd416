package resolver

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"musixport/internal/models"
	"musixport/internal/tidal"
)

func TestConvertLibraryAllMisses(t *testing.T) {
	lib := models.Library{
		Tracks: []models.SourceTrack{
			{Title: "One", Artist: &models.Artist{Name: "A"}},
			{Title: "Two", Artist: &models.Artist{Name: "B"}},
			{Title: "Three", Artist: &models.Artist{Name: "C"}},
		},
	}
	r := New(&mockSearch{}, nil)

	converted, misses := r.ConvertLibrary(context.Background(), lib, nil)

	if len(converted.Tracks) != 0 {
		t.Fatalf("expected 0 matches, got %d", len(converted.Tracks))
	}
	if len(misses) != 3 {
		t.Fatalf("expected 3 misses, got %d", len(misses))
	}
	for i, m := range misses {
		if m.Context != models.MissTrack {
			t.Fatalf("miss %d context = %q", i, m.Context)
		}
		if m.Index != i+1 {
			t.Fatalf("miss %d index = %d", i, m.Index)
		}
		if len(m.Original) == 0 {
			t.Fatalf("miss %d lost its original record", i)
		}
	}
}

func TestConvertLibraryTransportErrorsDoNotAbort(t *testing.T) {
	lib := models.Library{
		Tracks: []models.SourceTrack{
			{Title: "One", Artist: &models.Artist{Name: "A"}},
			{Title: "Two", Artist: &models.Artist{Name: "B"}},
		},
	}
	r := New(&mockSearch{err: errors.New("gateway timeout")}, nil)

	converted, misses := r.ConvertLibrary(context.Background(), lib, nil)
	if len(converted.Tracks) != 0 || len(misses) != 2 {
		t.Fatalf("batch should finish with 2 misses, got %d matches / %d misses",
			len(converted.Tracks), len(misses))
	}
}

func TestConvertLibraryEmptyPlaylistPassesThrough(t *testing.T) {
	lib := models.Library{
		Playlists: []models.Playlist{
			{ID: "p1", Title: "Empty", Tracks: []models.SourceTrack{}},
		},
	}
	r := New(&mockSearch{}, nil)

	converted, misses := r.ConvertLibrary(context.Background(), lib, nil)
	if len(misses) != 0 {
		t.Fatalf("empty playlist is not a miss: %+v", misses)
	}
	if len(converted.Playlists) != 1 {
		t.Fatalf("playlist dropped: %+v", converted.Playlists)
	}
	pl := converted.Playlists[0]
	if pl.ID != "p1" || pl.Tracks == nil || len(pl.Tracks) != 0 {
		t.Fatalf("expected empty resolved track list, got %+v", pl)
	}
}

func TestConvertLibraryPlaylistMissContext(t *testing.T) {
	lib := models.Library{
		Playlists: []models.Playlist{
			{
				ID:    "p9",
				Title: "Road Trip",
				Tracks: []models.SourceTrack{
					{Title: "Unknown Song", Artist: &models.Artist{Name: "Nobody"}},
				},
			},
		},
	}
	r := New(&mockSearch{}, nil)

	_, misses := r.ConvertLibrary(context.Background(), lib, nil)
	if len(misses) != 1 {
		t.Fatalf("expected 1 miss, got %d", len(misses))
	}
	m := misses[0]
	if m.Context != models.MissPlaylistTrack {
		t.Fatalf("context = %q", m.Context)
	}
	if m.PlaylistID != "p9" || m.PlaylistTitle != "Road Trip" || m.Index != 1 {
		t.Fatalf("playlist provenance missing: %+v", m)
	}

	var original models.SourceTrack
	if err := json.Unmarshal(m.Original, &original); err != nil {
		t.Fatalf("original not replayable: %v", err)
	}
	if original.Title != "Unknown Song" {
		t.Fatalf("original mismatch: %+v", original)
	}
}

func TestConvertLibraryMixedOutcomes(t *testing.T) {
	lib := models.Library{
		Tracks: []models.SourceTrack{
			{Title: "Hello", Duration: 295, Artist: &models.Artist{Name: "Adele"}},
			{Title: "Ghost Song", Artist: &models.Artist{Name: "Nobody"}},
		},
		Albums: []models.SourceAlbum{
			{Title: "25", Artist: &models.Artist{Name: "Adele"}},
		},
	}
	search := &mockSearch{results: map[string][]tidal.Candidate{
		"Hello":    {helloCandidate()},
		"Adele 25": {{ID: 77, Title: "25", Artists: []models.Artist{{ID: 7, Name: "Adele"}}}},
	}}
	r := New(search, nil)

	converted, misses := r.ConvertLibrary(context.Background(), lib, nil)
	if len(converted.Tracks) != 1 || converted.Tracks[0].ID != 42 {
		t.Fatalf("track outcomes wrong: %+v", converted.Tracks)
	}
	if len(converted.Albums) != 1 || converted.Albums[0].ID != 77 {
		t.Fatalf("album outcomes wrong: %+v", converted.Albums)
	}
	if len(misses) != 1 || misses[0].Title != "Ghost Song" {
		t.Fatalf("miss accounting wrong: %+v", misses)
	}
}

func TestConvertLibraryProgressReported(t *testing.T) {
	lib := models.Library{
		Tracks: []models.SourceTrack{
			{Title: "One", Artist: &models.Artist{Name: "A"}},
			{Title: "Two", Artist: &models.Artist{Name: "B"}},
		},
	}
	r := New(&mockSearch{}, nil)

	var stages []string
	var lastDone int
	r.ConvertLibrary(context.Background(), lib, func(stage string, done, total, matched int) {
		stages = append(stages, stage)
		lastDone = done
		if total != 2 {
			t.Fatalf("total = %d", total)
		}
	})

	if len(stages) != 2 || lastDone != 2 {
		t.Fatalf("expected 2 track progress calls, got %v (last done %d)", stages, lastDone)
	}
}
