package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"musixport/internal/models"
)

func TestSummarizeDeduplicates(t *testing.T) {
	misses := []models.Miss{
		{Context: models.MissTrack, Title: "Hello", Artist: "Adele", Index: 1},
		{Context: models.MissTrack, Title: "Hello", Artist: "Adele", Index: 5},
		{Context: models.MissPlaylistTrack, Title: "Hello", Artist: "Adele", Index: 2},
		{Context: models.MissTrack, Title: "Other", Artist: "Someone", Index: 3},
	}

	s := Summarize(misses)
	if s.Total != 4 {
		t.Fatalf("total = %d", s.Total)
	}
	// Same title+artist in a different context stays distinct.
	if s.Unique != 3 {
		t.Fatalf("unique = %d", s.Unique)
	}
	if len(s.Preview) != 3 || s.More != 0 {
		t.Fatalf("preview = %d, more = %d", len(s.Preview), s.More)
	}
	// First occurrence wins, in order.
	if s.Preview[0].Index != 1 || s.Preview[1].Index != 2 || s.Preview[2].Index != 3 {
		t.Fatalf("preview order wrong: %+v", s.Preview)
	}
}

func TestSummarizePreviewCap(t *testing.T) {
	var misses []models.Miss
	for i := 0; i < PreviewLimit+5; i++ {
		misses = append(misses, models.Miss{
			Context: models.MissTrack,
			Title:   fmt.Sprintf("Song %d", i),
			Artist:  "Various",
		})
	}

	s := Summarize(misses)
	if len(s.Preview) != PreviewLimit {
		t.Fatalf("preview = %d, want %d", len(s.Preview), PreviewLimit)
	}
	if s.More != 5 {
		t.Fatalf("more = %d, want 5", s.More)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	if s.Total != 0 || s.Unique != 0 || len(s.Preview) != 0 {
		t.Fatalf("empty summary wrong: %+v", s)
	}
}

func TestWriteDetailKeepsDuplicates(t *testing.T) {
	misses := []models.Miss{
		{Context: models.MissTrack, Title: "Hello", Artist: "Adele", Index: 1},
		{Context: models.MissTrack, Title: "Hello", Artist: "Adele", Index: 2},
	}

	path := filepath.Join(t.TempDir(), "missed.json")
	if err := WriteDetail(path, misses); err != nil {
		t.Fatalf("write: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	var persisted []models.Miss
	if err := json.Unmarshal(data, &persisted); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(persisted) != 2 {
		t.Fatalf("detail file must keep duplicates, got %d entries", len(persisted))
	}
}

func TestReadDetailRoundTrip(t *testing.T) {
	original, _ := json.Marshal(models.SourceTrack{Title: "Hello", Duration: 295})
	misses := []models.Miss{
		{Context: models.MissTrack, Title: "Hello", Artist: "Adele", Index: 1, Original: original},
	}

	path := filepath.Join(t.TempDir(), "missed.json")
	if err := WriteDetail(path, misses); err != nil {
		t.Fatalf("write: %v", err)
	}

	loaded, err := ReadDetail(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(loaded) != 1 {
		t.Fatalf("got %d misses", len(loaded))
	}
	var track models.SourceTrack
	if err := json.Unmarshal(loaded[0].Original, &track); err != nil {
		t.Fatalf("original not replayable: %v", err)
	}
	if track.Title != "Hello" || track.Duration != 295 {
		t.Fatalf("original mismatch: %+v", track)
	}
}

func TestSummaryLines(t *testing.T) {
	s := Summarize([]models.Miss{
		{Context: models.MissPlaylistTrack, PlaylistTitle: "Road Trip", Title: "Hello", Artist: "Adele"},
	})
	lines := s.Lines()
	if len(lines) != 2 {
		t.Fatalf("lines = %v", lines)
	}
	if lines[1] != " - playlist-track (Road Trip): Hello — Adele" {
		t.Fatalf("unexpected line: %q", lines[1])
	}
}
