package tidal

import (
	"encoding/json"
	"testing"
)

func TestCandidateDecodeSingleArtist(t *testing.T) {
	raw := `{
		"id": 251380837,
		"title": "Hello",
		"duration": 295,
		"isrc": "GBARL1100223",
		"explicit": false,
		"artist": {"id": 3521920, "name": "Adele"},
		"album": {"id": 251380836, "title": "25", "cover": "aa-bb-cc"}
	}`

	var c Candidate
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	name, id := c.PrimaryArtist()
	if name != "Adele" || id != 3521920 {
		t.Errorf("PrimaryArtist = %q/%d, want Adele/3521920", name, id)
	}
	if c.ISRC != "GBARL1100223" {
		t.Errorf("ISRC = %q", c.ISRC)
	}
	if c.Album == nil || c.Album.Cover != "aa-bb-cc" {
		t.Errorf("album not decoded: %+v", c.Album)
	}
}

func TestCandidateDecodeArtistList(t *testing.T) {
	raw := `{
		"id": 77646169,
		"title": "Lean On",
		"duration": 176,
		"artists": [
			{"id": 4944120, "name": "Major Lazer"},
			{"id": 4578500, "name": "DJ Snake"}
		]
	}`

	var c Candidate
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	name, id := c.PrimaryArtist()
	if name != "Major Lazer" || id != 4944120 {
		t.Errorf("PrimaryArtist = %q/%d, want first of list", name, id)
	}
}

func TestCandidateDecodeNoArtist(t *testing.T) {
	var c Candidate
	if err := json.Unmarshal([]byte(`{"id": 1, "title": "Untagged"}`), &c); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	name, id := c.PrimaryArtist()
	if name != "Unknown" || id != 0 {
		t.Errorf("PrimaryArtist = %q/%d, want Unknown/0", name, id)
	}
}

func TestCoverURL(t *testing.T) {
	got := CoverURL("aa12-bb34-cc56")
	want := "https://resources.tidal.com/images/aa12/bb34/cc56/640x640.jpg"
	if got != want {
		t.Errorf("CoverURL = %q, want %q", got, want)
	}

	if CoverURL("") != "" {
		t.Errorf("CoverURL(\"\") = %q, want empty", CoverURL(""))
	}
}
