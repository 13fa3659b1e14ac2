package normalize

import "testing"

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain", "Hello World", "Hello World"},
		{"tab and newlines", "Hello\tWorld\n\n", "Hello World"},
		{"leading trailing space", "  spaced out  ", "spaced out"},
		{"collapses runs", "a \r\n\t  b", "a b"},
		{"keeps allowed punctuation", `Wait... really?! (yes; "no")`, `Wait... really?! (yes; "no")`},
		{"strips symbols", "cost: 5€ or ~5$", "cost: 5 or 5"},
		{"symbol runs collapse to one space", "a***b", "a b"},
		{"only noise", "\n\t ©®", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Clean(tt.in)
			if got != tt.want {
				t.Errorf("Clean(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCleanIdempotent(t *testing.T) {
	inputs := []string{
		"Hello\tWorld\n\n",
		"a***b © c",
		"  x  y  z  ",
		"already clean text.",
	}
	for _, in := range inputs {
		once := Clean(in)
		twice := Clean(once)
		if once != twice {
			t.Errorf("Clean not idempotent for %q: first %q, second %q", in, once, twice)
		}
	}
}

func TestCleanNoControlCharacters(t *testing.T) {
	got := Clean("line1\nline2\tcol\r\n")
	for _, r := range got {
		if r == '\n' || r == '\t' || r == '\r' {
			t.Fatalf("Clean output contains control character: %q", got)
		}
	}
}

func TestQualityScore(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want float64
	}{
		{"empty", "", 0},
		{"all alphanumeric", "abc123", 100},
		{"half noise", "ab!?", 50},
		{"no alphanumeric", "!?.,", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := QualityScore(tt.in)
			if got != tt.want {
				t.Errorf("QualityScore(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
