package dice

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Type
	}{
		{"d4", D4},
		{"D6", D6},
		{"8", D8},
		{" d10 ", D10},
		{"d12", D12},
		{"d20", D20},
		{"d100", D100},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseUnsupported(t *testing.T) {
	for _, in := range []string{"", "d7", "coin", "d-6"} {
		if _, err := Parse(in); !errors.Is(err, ErrUnsupportedType) {
			t.Errorf("Parse(%q) error = %v, want ErrUnsupportedType", in, err)
		}
	}
}

func TestTypeString(t *testing.T) {
	if D20.String() != "d20" {
		t.Errorf("D20.String() = %q", D20.String())
	}
	if Type(0).Valid() {
		t.Error("zero Type should be invalid")
	}
	if Type(0).Sides() != 0 {
		t.Error("invalid Type should have zero sides")
	}
}

func TestTextRoundTrip(t *testing.T) {
	var got Type
	if err := got.UnmarshalText([]byte("d12")); err != nil {
		t.Fatal(err)
	}
	if got != D12 {
		t.Errorf("got %v, want d12", got)
	}
	if _, err := Type(42).MarshalText(); err == nil {
		t.Error("expected error marshaling invalid type")
	}
}

func TestContains(t *testing.T) {
	if !D20.Contains(20) || D20.Contains(0) || D20.Contains(21) {
		t.Error("d20 range wrong")
	}
	if !D100.Contains(0) || !D100.Contains(90) || D100.Contains(55) || D100.Contains(100) {
		t.Error("d100 should show tens 00..90")
	}
}
