package operation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/marches/internal/operation"
)

func TestOf(t *testing.T) {
	tests := []struct {
		contract string
		want     string
	}{
		{"2024_17_1", "2024_17"},
		{"2024_1_3", "2024_1"},
		{"2024_17_12", "2024_17"},
		{"2025_12", "2025_12"},
		{"2023_17", "2023_17"},
		{"2020_14G3P", "2020_14G3P"},
		{"2024-17-1", "2024-17"},
		{"2024_17-2", "2024_17"},
		{"2024_17_123", "2024_17_123"},
		{"2024_17_G3", "2024_17_G3"},
		{"2024_17_1A", "2024_17_1A"},
		{"2024_17_", "2024_17_"},
		{"2024", "2024"},
		{"  2024_17_1  ", "2024_17"},
		{"", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.contract, func(t *testing.T) {
			assert.Equal(t, tt.want, operation.Of(tt.contract))
		})
	}
}

func TestExercise(t *testing.T) {
	tests := []struct {
		po   string
		want string
	}{
		{"24001", "2024"},
		{" 19-552 ", "2019"},
		{"2", operation.UnknownExercise},
		{"", operation.UnknownExercise},
		{"BC24", operation.UnknownExercise},
		{"2A001", operation.UnknownExercise},
	}

	for _, tt := range tests {
		t.Run(tt.po, func(t *testing.T) {
			assert.Equal(t, tt.want, operation.Exercise(tt.po))
		})
	}
}
