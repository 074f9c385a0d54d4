package utils

import "testing"

func TestLookupTicker(t *testing.T) {
	tests := []struct {
		input  string
		want   string
		wantOK bool
	}{
		{"Apple", "AAPL", true},
		{"apple", "AAPL", true},
		{"  TESLA ", "TSLA", true},
		{"@elonmusk", "TSLA", true},
		{"@ElonMusk", "TSLA", true},
		{"Alphabet", "GOOGL", true},
		{"jio", "RELIANCE.NS", true},
		{"Infosys", "INFY.NS", true},
		{"Deloitte", "", false},
		{"pwc", "", false},
		{"randomstartupxyz", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := LookupTicker(tt.input)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("LookupTicker(%q) = %q,%v want %q,%v", tt.input, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestIsHandle(t *testing.T) {
	if !IsHandle("@tesla") || !IsHandle("  @x") {
		t.Error("expected handle")
	}
	if IsHandle("tesla") || IsHandle("") {
		t.Error("expected non-handle")
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"hello", 10, "hello"},
		{"hello", 5, "hello"},
		{"hello", 3, "hel"},
		{"héllo", 2, "hé"},
		{"hello", 0, ""},
		{"", 4, ""},
	}
	for _, tt := range tests {
		if got := Truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}

func TestEllipsize(t *testing.T) {
	if got := Ellipsize("short", 10); got != "short" {
		t.Errorf("got %q", got)
	}
	if got := Ellipsize("a longer title", 8); got != "a longer..." {
		t.Errorf("got %q", got)
	}
}
