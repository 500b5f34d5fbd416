// Package report aggregates unresolved items into something a human can
// act on: a deduplicated capped preview for interactive output, and a full
// detail file for offline replay.
package report

import (
	"encoding/json"
	"fmt"
	"os"

	"musixport/internal/models"
)

// PreviewLimit caps the interactive preview; the detail file always holds
// everything.
const PreviewLimit = 20

// Summary is the human-facing digest of a run's misses.
type Summary struct {
	Total   int           `json:"total"`
	Unique  int           `json:"unique"`
	Preview []models.Miss `json:"preview"`
	More    int           `json:"more"`
}

type missKey struct {
	title   string
	artist  string
	context models.MissContext
}

// Summarize deduplicates by (title, artist, context) for display, keeping
// first-occurrence order. The input list itself is never modified: misses
// are append-only until the final report.
func Summarize(misses []models.Miss) Summary {
	seen := make(map[missKey]struct{}, len(misses))
	var unique []models.Miss
	for _, m := range misses {
		key := missKey{m.Title, m.Artist, m.Context}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, m)
	}

	summary := Summary{Total: len(misses), Unique: len(unique)}
	if len(unique) > PreviewLimit {
		summary.Preview = unique[:PreviewLimit]
		summary.More = len(unique) - PreviewLimit
	} else {
		summary.Preview = unique
	}
	return summary
}

// Lines renders the summary the way it appears in logs and SSE output.
func (s Summary) Lines() []string {
	lines := make([]string, 0, len(s.Preview)+2)
	lines = append(lines, fmt.Sprintf("%d items not matched (%d unique)", s.Total, s.Unique))
	for _, m := range s.Preview {
		entry := fmt.Sprintf(" - %s: %s — %s", m.Context, m.Title, m.Artist)
		if m.PlaylistTitle != "" {
			entry = fmt.Sprintf(" - %s (%s): %s — %s", m.Context, m.PlaylistTitle, m.Title, m.Artist)
		}
		lines = append(lines, entry)
	}
	if s.More > 0 {
		lines = append(lines, fmt.Sprintf(" ... and %d more unique items", s.More))
	}
	return lines
}

// WriteDetail persists every miss, duplicates included, with the full
// original source record so items can be replayed through the resolver
// without re-fetching the source catalog.
func WriteDetail(path string, misses []models.Miss) error {
	data, err := json.MarshalIndent(misses, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal misses: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// ReadDetail loads a previously written detail file.
func ReadDetail(path string) ([]models.Miss, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var misses []models.Miss
	if err := json.Unmarshal(data, &misses); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return misses, nil
}
