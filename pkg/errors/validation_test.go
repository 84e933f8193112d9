package errors

import (
	"math"
	"testing"
)

func TestValidatePositive(t *testing.T) {
	tests := []struct {
		name    string
		value   float64
		wantErr bool
	}{
		{"positive", 1.5, false},
		{"zero", 0, true},
		{"negative", -2, true},
		{"nan", math.NaN(), true},
		{"inf", math.Inf(1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePositive("radius", tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePositive(%v) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidConfiguration) {
				t.Errorf("expected INVALID_CONFIGURATION, got %v", GetCode(err))
			}
		})
	}
}

func TestValidateVertexCount(t *testing.T) {
	for n, wantErr := range map[int]bool{-1: true, 0: true, 2: true, 3: false, 20: false, 64: false} {
		if err := ValidateVertexCount(n); (err != nil) != wantErr {
			t.Errorf("ValidateVertexCount(%d) error = %v, wantErr %v", n, err, wantErr)
		}
	}
}

func TestValidateDimensions(t *testing.T) {
	tests := []struct {
		w, h    int
		wantErr bool
	}{
		{1080, 1080, false},
		{1, 1, false},
		{0, 100, true},
		{100, -1, true},
		{20000, 100, true},
	}

	for _, tt := range tests {
		if err := ValidateDimensions(tt.w, tt.h); (err != nil) != tt.wantErr {
			t.Errorf("ValidateDimensions(%d, %d) error = %v, wantErr %v", tt.w, tt.h, err, tt.wantErr)
		}
	}
}

func TestValidateOutputDir(t *testing.T) {
	tests := []struct {
		path    string
		wantErr bool
	}{
		{"out", false},
		{"/tmp/chaos", false},
		{"./renders/run1", false},
		{"", true},
		{"../escape", true},
		{"out/../../etc", true},
		{"out\x00", true},
		{"my..dir", false},
	}

	for _, tt := range tests {
		if err := ValidateOutputDir(tt.path); (err != nil) != tt.wantErr {
			t.Errorf("ValidateOutputDir(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
		}
	}
}
