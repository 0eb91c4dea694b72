package errors

import (
	"math"
	"strings"
	"testing"
)

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "Alice", false},
		{"with spaces", "Support Team 2", false},
		{"unicode", "Zoë Ångström", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", MaxNameLength+1), true},
		{"null byte", "foo\x00bar", true},
		{"control char", "foo\x01bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidRecord) {
				t.Errorf("ValidateName(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidRecord)
			}
		})
	}
}

func TestValidateViewport(t *testing.T) {
	tests := []struct {
		name      string
		width     float64
		barHeight float64
		padding   float64
		wantErr   bool
	}{
		{"defaults", 960, 32, 0.2, false},
		{"no padding", 300, 10, 0, false},

		{"zero width", 0, 32, 0.2, true},
		{"negative width", -10, 32, 0.2, true},
		{"nan width", math.NaN(), 32, 0.2, true},
		{"inf width", math.Inf(1), 32, 0.2, true},
		{"zero bar height", 960, 0, 0.2, true},
		{"padding one", 960, 32, 1, true},
		{"negative padding", 960, 32, -0.1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateViewport(tt.width, tt.barHeight, tt.padding)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateViewport() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidViewport) {
				t.Errorf("ValidateViewport() code = %v, want %v", GetCode(err), ErrCodeInvalidViewport)
			}
		})
	}
}

func TestValidateChartID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"uuid", "8f14e45f-ceea-467f-a0e4-3b4a0b1a8c5d", false},
		{"empty", "", true},
		{"path traversal", "../etc/passwd", true},
		{"cache key injection", "chart:*", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateChartID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateChartID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
