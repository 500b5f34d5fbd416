package resolver

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"musixport/internal/models"
)

// Progress receives incremental batch status. Called inline between items;
// implementations should return quickly.
type Progress func(stage string, done, total, matched int)

// NopProgress discards progress updates.
func NopProgress(string, int, int, int) {}

// ConvertLibrary drives resolution across the whole library: favorite
// tracks, favorite albums, then each playlist's tracks. Input order is
// preserved in the outputs, misses carry their original positional index,
// and no single item's failure ever aborts the batch.
func (r *Resolver) ConvertLibrary(ctx context.Context, lib models.Library, progress Progress) (models.ConvertedLibrary, []models.Miss) {
	if progress == nil {
		progress = NopProgress
	}

	out := models.ConvertedLibrary{
		Tracks:    []models.ResolvedTrack{},
		Albums:    []models.ResolvedAlbum{},
		Artists:   lib.Artists,
		Playlists: []models.ResolvedPlaylist{},
	}
	var misses []models.Miss

	matched := 0
	for i, t := range lib.Tracks {
		match, err := r.resolveTrackSafe(ctx, t)
		if err != nil {
			log.Printf("track %d %q: %v", i+1, t.Title, err)
		}
		if match != nil {
			out.Tracks = append(out.Tracks, *match)
			matched++
		} else {
			misses = append(misses, trackMiss(models.MissTrack, i+1, t, err))
		}
		progress("tracks", i+1, len(lib.Tracks), matched)
	}

	albumsMatched := 0
	for i, a := range lib.Albums {
		match, err := r.resolveAlbumSafe(ctx, a)
		if err != nil {
			log.Printf("album %d %q: %v", i+1, a.Title, err)
		}
		if match != nil {
			out.Albums = append(out.Albums, *match)
			albumsMatched++
		} else {
			misses = append(misses, albumMiss(i+1, a, err))
		}
		progress("albums", i+1, len(lib.Albums), albumsMatched)
	}

	for pi, pl := range lib.Playlists {
		resolved := models.ResolvedPlaylist{
			ID:           pl.ID,
			Title:        pl.Title,
			CreationDate: pl.CreationDate,
			Cover:        pl.Cover,
			Tracks:       []models.ResolvedTrack{},
		}

		for ti, t := range pl.Tracks {
			match, err := r.resolveTrackSafe(ctx, t)
			if match != nil {
				resolved.Tracks = append(resolved.Tracks, *match)
			} else {
				miss := trackMiss(models.MissPlaylistTrack, ti+1, t, err)
				miss.PlaylistID = pl.ID
				miss.PlaylistTitle = pl.Title
				misses = append(misses, miss)
			}
		}

		out.Playlists = append(out.Playlists, resolved)
		progress("playlists", pi+1, len(lib.Playlists), len(resolved.Tracks))
	}

	return out, misses
}

// resolveTrackSafe guards one item: a panic inside resolution becomes an
// error and a miss, never the end of the batch.
func (r *Resolver) resolveTrackSafe(ctx context.Context, t models.SourceTrack) (match *models.ResolvedTrack, err error) {
	defer func() {
		if p := recover(); p != nil {
			match = nil
			err = fmt.Errorf("resolve panic: %v", p)
		}
	}()
	return r.ResolveTrack(ctx, t)
}

func (r *Resolver) resolveAlbumSafe(ctx context.Context, a models.SourceAlbum) (match *models.ResolvedAlbum, err error) {
	defer func() {
		if p := recover(); p != nil {
			match = nil
			err = fmt.Errorf("resolve panic: %v", p)
		}
	}()
	return r.ResolveAlbum(ctx, a)
}

func trackMiss(context models.MissContext, index int, t models.SourceTrack, err error) models.Miss {
	artist, _ := t.PrimaryArtist()
	miss := models.Miss{
		Context:  context,
		Index:    index,
		Title:    t.Title,
		Artist:   artist,
		Original: marshalOriginal(t),
	}
	if err != nil {
		miss.Reason = err.Error()
	}
	return miss
}

func albumMiss(index int, a models.SourceAlbum, err error) models.Miss {
	artist, _ := a.PrimaryArtist()
	miss := models.Miss{
		Context:  models.MissAlbum,
		Index:    index,
		Title:    a.Title,
		Artist:   artist,
		Original: marshalOriginal(a),
	}
	if err != nil {
		miss.Reason = err.Error()
	}
	return miss
}

func marshalOriginal(v any) json.RawMessage {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return raw
}
