package domain

import (
	"errors"
	"testing"
)

func TestParseModelVariant(t *testing.T) {
	tests := []struct {
		in      string
		want    ModelVariant
		wantErr bool
	}{
		{"dreamshaper", ModelDreamshaper, false},
		{"  Proteus ", ModelProteus, false},
		{"PLAYGROUND", ModelPlayground, false},
		{"sdxl", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseModelVariant(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrUnknownModel) {
				t.Errorf("ParseModelVariant(%q) error = %v, want ErrUnknownModel", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseModelVariant(%q) unexpected error: %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseModelVariant(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStepRangesAreTotal(t *testing.T) {
	variants := ModelVariants()
	if len(variants) != 3 {
		t.Fatalf("expected 3 variants, got %d", len(variants))
	}
	for _, m := range variants {
		r := m.Steps()
		if r.Low > r.High {
			t.Errorf("%s: low %d above high %d", m, r.Low, r.High)
		}
	}
}
