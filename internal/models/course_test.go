package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeCourses(t *testing.T) {
	cases := []struct {
		name   string
		legacy string
		want   []string
	}{
		{"comma separated", "matematica, robotica", []string{"MATEMATICA", "ROBOTICA"}},
		{"semicolons and spacing", " ajedrez ;PYTHON ", []string{"AJEDREZ", "PYTHON"}},
		{"unknown values dropped", "matematica, cocina", []string{"MATEMATICA"}},
		{"duplicates collapsed", "python, Python, PYTHON", []string{"PYTHON"}},
		{"empty input", "   ", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NormalizeCourses(tc.legacy))
		})
	}
}

func TestValidCourse(t *testing.T) {
	assert.True(t, ValidCourse("MATEMATICA"))
	assert.False(t, ValidCourse("matematica"))
	assert.False(t, ValidCourse("COCINA"))
}
