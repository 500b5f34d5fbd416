// Package textnorm canonicalizes free-text titles and artist names so that
// fuzzy comparison across catalogs is meaningful.
package textnorm

import (
	"regexp"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	bracketed = regexp.MustCompile(`\s*[\(\[][^\)\]]*[\)\]]`)
	nonAlnum  = regexp.MustCompile(`[^a-zA-Z0-9 ]`)
)

// Normalize canonicalizes a string for comparison: parenthetical and
// bracketed segments are dropped (feat credits, remaster tags and the like
// rarely agree between catalogs), accented characters decompose to their
// base letters, everything outside [a-zA-Z0-9 ] is removed, and the result
// is lower-cased and trimmed. Pure and deterministic.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	s = bracketed.ReplaceAllString(s, "")
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	if out, _, err := transform.String(t, s); err == nil {
		s = out
	}
	s = nonAlnum.ReplaceAllString(s, "")
	return strings.TrimSpace(strings.ToLower(s))
}

// Normalizer memoizes Normalize per raw input. The same titles come back
// over and over during multi-query fuzzy search, so one run-scoped cache
// saves a lot of repeated decomposition work. Unbounded within a run.
type Normalizer struct {
	mu   sync.Mutex
	memo map[string]string
}

func New() *Normalizer {
	return &Normalizer{memo: make(map[string]string)}
}

func (n *Normalizer) Normalize(s string) string {
	if s == "" {
		return ""
	}
	n.mu.Lock()
	if v, ok := n.memo[s]; ok {
		n.mu.Unlock()
		return v
	}
	n.mu.Unlock()

	v := Normalize(s)

	n.mu.Lock()
	n.memo[s] = v
	n.mu.Unlock()
	return v
}
