package textnorm

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "feat suffix dropped",
			in:   "Song (feat. Artist)",
			want: "song",
		},
		{
			name: "bracketed remaster dropped",
			in:   "Money [Remastered 2011]",
			want: "money",
		},
		{
			name: "diacritics decompose",
			in:   "Beyoncé",
			want: "beyonce",
		},
		{
			name: "punctuation removed",
			in:   "S.A.T.O.",
			want: "sato",
		},
		{
			name: "case and whitespace",
			in:   "  Hello World  ",
			want: "hello world",
		},
		{
			name: "empty",
			in:   "",
			want: "",
		},
		{
			name: "mixed",
			in:   "Désolé (Radio Edit) [Live]",
			want: "desole",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Fatalf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"Song (feat. Artist)",
		"Beyoncé — Déjà Vu",
		"plain text",
		"",
		"123 Numbers!",
	}
	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Fatalf("Normalize not idempotent for %q: %q -> %q", in, once, twice)
		}
	}
}

func TestNormalizeEquivalence(t *testing.T) {
	if Normalize("Song (feat. Artist)") != Normalize("Song") {
		t.Fatal("feat credit should not affect the normalized form")
	}
}

func TestNormalizerMemo(t *testing.T) {
	n := New()
	first := n.Normalize("Hello (Remix)")
	second := n.Normalize("Hello (Remix)")
	if first != second || first != "hello" {
		t.Fatalf("memoized result mismatch: %q vs %q", first, second)
	}
}
