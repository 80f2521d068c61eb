package wordcount

import (
	"testing"
)

func TestCount(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"", 0},
		{"   \n\t ", 0},
		{"hello", 1},
		{"Dear diary,\ntoday was  long.", 5},
		{"one\ttwo\nthree\r\nfour", 4},
	}

	for _, tt := range tests {
		if got := Count(tt.input); got != tt.want {
			t.Errorf("Count(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestParse(t *testing.T) {
	if n, err := Parse(" 42\n"); err != nil || n != 42 {
		t.Errorf("Parse = %d, %v; want 42", n, err)
	}
	for _, bad := range []string{"", "abc", "-3", "4 2"} {
		if _, err := Parse(bad); err == nil {
			t.Errorf("Parse(%q) succeeded, want error", bad)
		}
	}
	if n, _ := Parse(Format(7)); n != 7 {
		t.Errorf("round trip = %d, want 7", n)
	}
}
