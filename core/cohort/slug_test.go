package cohort

import (
	"strings"
	"testing"
)

func TestMakeSlug(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "simple", in: "Discover", want: "discover"},
		{name: "spaces", in: "Spring 2026 Cohort A", want: "spring-2026-cohort-a"},
		{name: "leading/trailing space", in: "  Fall Cohort  ", want: "fall-cohort"},
		{name: "punctuation stripped", in: "Refine & Respond!", want: "refine-respond"},
		{name: "accents stripped", in: "Colegio Internacional — Medellín", want: "colegio-internacional-medelln"},
		{name: "whitespace runs collapse", in: "a \t b\n\nc", want: "a-b-c"},
		{name: "hyphen runs collapse", in: "pre--existing---hyphens", want: "pre-existing-hyphens"},
		{name: "mixed runs collapse", in: "a - b", want: "a-b"},
		{name: "all punctuation is empty", in: "!!!", want: ""},
		{name: "empty", in: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MakeSlug(tt.in); got != tt.want {
				t.Errorf("MakeSlug(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func Test_slugBase(t *testing.T) {
	if got := slugBase("Spring 2026 Cohort A"); got != "spring-2026-cohort-a" {
		t.Errorf("slugBase() = %q", got)
	}

	// a name that normalizes to nothing still yields a usable base
	got := slugBase("!!!")
	if !strings.HasPrefix(got, "cohort-") {
		t.Errorf("slugBase() = %q, want cohort- prefix", got)
	}
	if len(got) != len("cohort-")+8 {
		t.Errorf("slugBase() = %q, want 8 random chars", got)
	}
	if again := slugBase("!!!"); again == got {
		t.Errorf("slugBase() returned the same fallback twice: %q", got)
	}
}

func Test_slugCandidate(t *testing.T) {
	tests := []struct {
		counter int
		want    string
	}{
		{counter: 1, want: "base"},
		{counter: 2, want: "base-2"},
		{counter: 3, want: "base-3"},
		{counter: 10, want: "base-10"},
	}
	for _, tt := range tests {
		if got := slugCandidate("base", tt.counter); got != tt.want {
			t.Errorf("slugCandidate(base, %d) = %q, want %q", tt.counter, got, tt.want)
		}
	}
}
