package resolver

import (
	"github.com/adrg/strutil"
)

const (
	titleWeight  = 0.8
	artistWeight = 0.2

	// Duration agreement within 3s earns a bonus; a gap beyond 10s, when
	// both durations are known, costs a small penalty.
	durationTolerance = 3
	durationMismatch  = 10
	durationBonus     = 0.10
	durationPenalty   = 0.05

	// acceptThreshold is deliberately conservative: a false match silently
	// corrupts an exported library, which is worse than a reported miss.
	acceptThreshold = 0.80
	strongThreshold = 0.90

	// Cheap pre-filters applied before scoring a candidate.
	lengthFilter = 10
)

// lcsRatio scores two strings as 2*LCS(a,b)/(len(a)+len(b)), a longest
// common subsequence ratio in [0,1]. It satisfies strutil.StringMetric, so
// scoring goes through strutil.Similarity like the rest of our matching.
type lcsRatio struct{}

func (lcsRatio) Compare(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 && len(rb) == 0 {
		return 1
	}
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for i := 1; i <= len(ra); i++ {
		for j := 1; j <= len(rb); j++ {
			if ra[i-1] == rb[j-1] {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}

	return 2 * float64(prev[len(rb)]) / float64(len(ra)+len(rb))
}

func similarity(a, b string) float64 {
	return strutil.Similarity(a, b, lcsRatio{})
}

// composite combines title and artist similarity with duration agreement.
// Title dominates: artist-name shape varies far more across catalogs than
// title identity does.
func composite(titleScore, artistScore float64, srcDuration, candDuration int) float64 {
	score := titleWeight*titleScore + artistWeight*artistScore
	if srcDuration > 0 && candDuration > 0 {
		diff := candDuration - srcDuration
		if diff < 0 {
			diff = -diff
		}
		switch {
		case diff <= durationTolerance:
			score += durationBonus
		case diff > durationMismatch:
			score -= durationPenalty
		}
	}
	return score
}

func accepted(score float64) bool {
	return score >= acceptThreshold
}

// passesPrefilter rejects candidates that cannot plausibly score well:
// normalized titles whose lengths differ by more than 10 characters, or
// whose first characters differ. Heuristic, not correctness-critical.
func passesPrefilter(srcTitle, candTitle string) bool {
	diff := len(candTitle) - len(srcTitle)
	if diff < 0 {
		diff = -diff
	}
	if diff > lengthFilter {
		return false
	}
	return firstChar(srcTitle) == firstChar(candTitle)
}

func firstChar(s string) byte {
	if s == "" {
		return 0
	}
	return s[0]
}
