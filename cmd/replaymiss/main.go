// replaymiss re-runs missed items from a detail file (or a single ad-hoc
// track) through the resolver and prints every candidate the search index
// returned, with scores, so threshold failures can be inspected offline.
//
// Usage:
//
//	replaymiss -title "S.A.T.O." -artist "Ozzy Osbourne"
//	replaymiss -missed out/missed_tidal-20260828T101500.json
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/joho/godotenv"

	"musixport/internal/config"
	"musixport/internal/models"
	"musixport/internal/report"
	"musixport/internal/resolver"
	"musixport/internal/tidal"
)

func main() {
	missedPath := flag.String("missed", "", "path to a missed detail file to replay")
	title := flag.String("title", "", "track title")
	artist := flag.String("artist", "", "artist name")
	isrc := flag.String("isrc", "", "ISRC code")
	duration := flag.Int("duration", 0, "duration in seconds")
	country := flag.String("country", "", "country code override")
	flag.Parse()

	_ = godotenv.Load()

	cfgPath := os.Getenv("MUSIXPORT_CONFIG")
	if cfgPath == "" {
		cfgPath = "musixport.toml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if *country != "" {
		cfg.CountryCode = *country
	}

	client, err := tidal.NewClient(context.Background(), cfg.Tidal.ClientID, cfg.Tidal.ClientSecret, cfg.CountryCode)
	if err != nil {
		log.Fatalf("tidal auth: %v", err)
	}

	// No registry here: replay should show what the live index returns,
	// not what a previous run cached.
	res := resolver.New(client, nil)

	if *missedPath != "" {
		misses, err := report.ReadDetail(*missedPath)
		if err != nil {
			log.Fatalf("load missed file: %v", err)
		}
		for _, m := range misses {
			var track models.SourceTrack
			if len(m.Original) == 0 || json.Unmarshal(m.Original, &track) != nil {
				fmt.Printf("skipping %s - %s: no replayable original record\n", m.Title, m.Artist)
				continue
			}
			replayOne(res, track)
		}
		return
	}

	if *title == "" {
		flag.Usage()
		os.Exit(2)
	}

	track := models.SourceTrack{
		Title:    *title,
		ISRC:     *isrc,
		Duration: *duration,
	}
	if *artist != "" {
		track.Artist = &models.Artist{Name: *artist}
	}
	replayOne(res, track)
}

func replayOne(res *resolver.Resolver, track models.SourceTrack) {
	ctx := context.Background()
	artistName, _ := track.PrimaryArtist()
	fmt.Printf("\n=== %s — %s ===\n", track.Title, artistName)

	match, err := res.ResolveTrack(ctx, track)
	switch {
	case err != nil:
		fmt.Println("resolve error:", err)
	case match != nil:
		fmt.Printf("resolved: id=%d %q — %s\n", match.ID, match.Title, match.Artist.Name)
	default:
		fmt.Println("still a miss")
	}

	for _, d := range res.Explain(ctx, track) {
		fmt.Printf("\nquery: %q\n", d.Query)
		if len(d.Candidates) == 0 {
			fmt.Println("  no results")
			continue
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"#", "ID", "Title", "Artist", "Dur", "Score", "Prefiltered"})
		for i, c := range d.Candidates {
			t.AppendRow(table.Row{i + 1, c.ID, c.Title, c.Artist, c.Duration, fmt.Sprintf("%.2f", c.Score), c.Filtered})
		}
		t.Render()
	}
}
