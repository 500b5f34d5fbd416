package resolver

import "testing"

func TestLCSRatio(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want float64
	}{
		{name: "identical", a: "hello", b: "hello", want: 1.0},
		{name: "both empty", a: "", b: "", want: 1.0},
		{name: "one empty", a: "hello", b: "", want: 0.0},
		{name: "disjoint", a: "abc", b: "xyz", want: 0.0},
		{name: "substitution", a: "abcd", b: "abed", want: 0.75},
		{name: "subsequence", a: "abcdef", b: "ace", want: 2.0 / 3.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := similarity(tt.a, tt.b)
			if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Fatalf("similarity(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestLCSRatioSymmetric(t *testing.T) {
	pairs := [][2]string{
		{"hello", "hallo"},
		{"a longer title here", "a title here"},
		{"", "x"},
	}
	for _, p := range pairs {
		if similarity(p[0], p[1]) != similarity(p[1], p[0]) {
			t.Fatalf("similarity not symmetric for %q / %q", p[0], p[1])
		}
	}
}

func TestCompositeDuration(t *testing.T) {
	base := composite(0.9, 0.9, 0, 0)

	tests := []struct {
		name     string
		src      int
		cand     int
		wantDiff float64
	}{
		{name: "both unknown no bonus", src: 0, cand: 0, wantDiff: 0},
		{name: "candidate unknown no bonus", src: 200, cand: 0, wantDiff: 0},
		{name: "within tolerance", src: 200, cand: 202, wantDiff: durationBonus},
		{name: "exact", src: 200, cand: 200, wantDiff: durationBonus},
		{name: "moderate gap neutral", src: 200, cand: 207, wantDiff: 0},
		{name: "large gap penalized", src: 200, cand: 215, wantDiff: -durationPenalty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := composite(0.9, 0.9, tt.src, tt.cand)
			want := base + tt.wantDiff
			if diff := got - want; diff > 1e-9 || diff < -1e-9 {
				t.Fatalf("composite = %v, want %v", got, want)
			}
		})
	}
}

func TestCompositeMonotonic(t *testing.T) {
	// Non-decreasing in title score with artist fixed, and vice versa.
	prev := -1.0
	for _, titleScore := range []float64{0, 0.25, 0.5, 0.75, 1.0} {
		got := composite(titleScore, 0.5, 0, 0)
		if got < prev {
			t.Fatalf("composite decreased as title score rose: %v < %v", got, prev)
		}
		prev = got
	}

	prev = -1.0
	for _, artistScore := range []float64{0, 0.25, 0.5, 0.75, 1.0} {
		got := composite(0.5, artistScore, 0, 0)
		if got < prev {
			t.Fatalf("composite decreased as artist score rose: %v < %v", got, prev)
		}
		prev = got
	}
}

func TestAcceptanceBoundary(t *testing.T) {
	if accepted(0.79) {
		t.Fatal("0.79 must be rejected")
	}
	if !accepted(0.80) {
		t.Fatal("0.80 must be accepted")
	}
	// Identical title, unrelated artist, unknown durations lands exactly
	// on the weighted title share.
	score := composite(1.0, 0.0, 0, 0)
	if !accepted(score) {
		t.Fatalf("composite %v with perfect title should pass", score)
	}
}

func TestPassesPrefilter(t *testing.T) {
	tests := []struct {
		name string
		src  string
		cand string
		want bool
	}{
		{name: "identical", src: "hello", cand: "hello", want: true},
		{name: "close length", src: "hello", cand: "hello world", want: true},
		{name: "length gap too wide", src: "hi", cand: "a very long unrelated title", want: false},
		{name: "first char differs", src: "hello", cand: "jello", want: false},
		{name: "both empty", src: "", cand: "", want: true},
		{name: "empty vs short", src: "", cand: "x", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := passesPrefilter(tt.src, tt.cand); got != tt.want {
				t.Fatalf("passesPrefilter(%q, %q) = %v, want %v", tt.src, tt.cand, got, tt.want)
			}
		})
	}
}
