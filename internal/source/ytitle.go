package source

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	ytNoise = regexp.MustCompile(`(?i)[\(\[](official (video|audio)|audio|video|lyrics?|visualizer|HD|4K|remaster(ed)?( \d{4})?)[\)\]]`)
	ytFeat  = regexp.MustCompile(`(?i)\bfeat\.?\b`)
	ytSpace = regexp.MustCompile(`\s{2,}`)
	ytSplit = regexp.MustCompile(`\s+[-–—|:]\s+`)
)

// SplitVideoTitle derives (artist, title) from a YouTube video title.
// Uploader titles mostly follow "Artist - Title"; when no separator is
// present the uploader channel name stands in for the artist.
func SplitVideoTitle(rawTitle, uploader string) (string, string) {
	t := ytNoise.ReplaceAllString(rawTitle, "")
	t = ytFeat.ReplaceAllString(t, "ft.")
	t = ytSpace.ReplaceAllString(t, " ")
	t = strings.TrimSpace(t)

	parts := ytSplit.Split(t, 2)
	if len(parts) == 2 {
		left, right := parts[0], parts[1]
		if looksLikeArtist(left) {
			return titleCase(left), titleCase(right)
		}
		return titleCase(right), titleCase(left)
	}

	if uploader != "" {
		return titleCase(uploader), titleCase(t)
	}
	return "", titleCase(t)
}

// looksLikeArtist: comma lists and feat credits read as artists, as does
// any short left side. Only a long left side flips the convention around.
func looksLikeArtist(left string) bool {
	lower := strings.ToLower(left)
	if strings.Contains(left, ",") || strings.Contains(lower, "ft.") || strings.Contains(lower, "feat.") {
		return true
	}
	return len(strings.Fields(left)) <= 4
}

// titleCase capitalizes each word but leaves short all-caps tokens (DJ,
// AC/DC-style acronyms) alone.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		if w == strings.ToUpper(w) && len(w) <= 4 {
			continue
		}
		runes := []rune(strings.ToLower(w))
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
