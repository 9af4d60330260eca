package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundGrade(t *testing.T) {
	tests := []struct {
		name  string
		input float64
		want  float64
	}{
		{"exact value unchanged", 86.0, 86.0},
		{"two decimals unchanged", 86.42, 86.42},
		{"half rounds up", 86.425, 86.43},
		{"below half rounds down", 86.424, 86.42},
		{"weighted mean artifact", 86.666666, 86.67},
		{"zero", 0, 0},
		{"full grade", 100, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, RoundGrade(tt.input), 1e-9)
		})
	}
}
