package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGradeForBands(t *testing.T) {
	cases := []struct {
		score  float64
		letter string
		points float64
	}{
		{100, "A+", 4.0},
		{90, "A+", 4.0},
		{89.99, "A", 4.0},
		{85, "A", 4.0},
		{80, "A-", 3.7},
		{77, "B+", 3.3},
		{73, "B", 3.0},
		{70, "B-", 2.7},
		{67, "C+", 2.3},
		{63, "C", 2.0},
		{60, "C-", 1.7},
		{57, "D+", 1.3},
		{53, "D", 1.0},
		{50, "D-", 0.7},
		{49.99, "F", 0.0},
		{0, "F", 0.0},
	}
	for _, tc := range cases {
		letter, points, ok := GradeFor(tc.score)
		assert.True(t, ok, "score %v", tc.score)
		assert.Equal(t, tc.letter, letter, "score %v", tc.score)
		assert.Equal(t, tc.points, points, "score %v", tc.score)
	}
}

func TestGradeForRejectsOutOfRange(t *testing.T) {
	for _, score := range []float64{-0.01, -5, 100.01, 150} {
		_, _, ok := GradeFor(score)
		assert.False(t, ok, "score %v", score)
	}
}
