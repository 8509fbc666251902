package text

import (
	"reflect"
	"testing"
)

func TestNormalize(t *testing.T) {
	got := Normalize("Waited 3 WEEKS for a call-back!")
	want := "waited 3 weeks for a call back "
	if got != want {
		t.Errorf("Normalize() = %q, want %q", got, want)
	}
}

func TestTokensFiltersStopwordsAndShortTokens(t *testing.T) {
	got := Tokens("I waited 3 weeks for the plumber")
	want := []string{"waited", "weeks", "plumber"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokens() = %v, want %v", got, want)
	}
}

func TestJaccard(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "plumber waited weeks", "plumber waited weeks", 1.0},
		{"disjoint", "plumber waited weeks", "pizza tastes wonderful", 0.0},
		{"empty left", "", "plumber", 0.0},
		{"both empty", "", "", 0.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Jaccard(TokenSet(tt.a), TokenSet(tt.b))
			if got != tt.want {
				t.Errorf("Jaccard(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestJaccardPartialOverlap(t *testing.T) {
	a := TokenSet("waited weeks plumber appointment")
	b := TokenSet("waited weeks plumber scheduling")
	// 3 shared, 5 total
	got := Jaccard(a, b)
	if got < 0.59 || got > 0.61 {
		t.Errorf("Jaccard() = %v, want 0.6", got)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in     string
		maxLen int
		want   string
	}{
		{"short", 10, "short"},
		{"exactly ten", 11, "exactly ten"},
		{"this is a longer string", 10, "this is..."},
	}
	for _, tt := range tests {
		if got := Truncate(tt.in, tt.maxLen); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.maxLen, got, tt.want)
		}
	}
}

func TestFirstSentence(t *testing.T) {
	got := FirstSentence("Waited three weeks. Would not recommend.")
	if got != "Waited three weeks" {
		t.Errorf("FirstSentence() = %q", got)
	}
	if got := FirstSentence("no terminator here"); got != "no terminator here" {
		t.Errorf("FirstSentence() = %q", got)
	}
}

func TestContainsAnyFold(t *testing.T) {
	if !ContainsAnyFold("They DOUBLED our response time", []string{"doubled"}) {
		t.Error("expected case-insensitive match")
	}
	if ContainsAnyFold("nothing here", []string{"doubled", "saved"}) {
		t.Error("unexpected match")
	}
}
