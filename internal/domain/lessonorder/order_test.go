package lessonorder

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aulaops/aula-api/internal/domain"
)

func lessonsWithTitles(titles ...string) []domain.Lesson {
	courseID := uuid.New()
	lessons := make([]domain.Lesson, 0, len(titles))
	for _, title := range titles {
		lessons = append(lessons, domain.Lesson{
			ID:       uuid.New(),
			CourseID: courseID,
			Title:    title,
		})
	}
	return lessons
}

func titlesOf(lessons []domain.Lesson) []string {
	titles := make([]string, 0, len(lessons))
	for _, l := range lessons {
		titles = append(titles, l.Title)
	}
	return titles
}

func TestSort(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{
			name:     "natural order beats lexicographic",
			input:    []string{"Clase 2", "Clase 10", "Clase 1"},
			expected: []string{"Clase 1", "Clase 2", "Clase 10"},
		},
		{
			name:     "prefixed titles use first integer token",
			input:    []string{"Módulo 2 - Clase 3", "Módulo 10 - Clase 1", "Módulo 1 - Clase 2"},
			expected: []string{"Módulo 1 - Clase 2", "Módulo 2 - Clase 3", "Módulo 10 - Clase 1"},
		},
		{
			name:     "titles without numbers sort after numbered ones",
			input:    []string{"Cierre del curso", "Clase 2", "Clase 1"},
			expected: []string{"Clase 1", "Clase 2", "Cierre del curso"},
		},
		{
			name:     "tie on integer falls back to title comparison",
			input:    []string{"Clase 1 - Teoría", "Clase 1 - Práctica"},
			expected: []string{"Clase 1 - Práctica", "Clase 1 - Teoría"},
		},
		{
			name:     "no numbers at all is case-insensitive lexicographic",
			input:    []string{"cierre", "Bienvenida", "Examen"},
			expected: []string{"Bienvenida", "cierre", "Examen"},
		},
		{
			name:     "empty input",
			input:    nil,
			expected: []string{},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ordered := Sort(lessonsWithTitles(tt.input...))
			assert.Equal(t, tt.expected, titlesOf(ordered))
		})
	}
}

func TestSortDoesNotModifyInput(t *testing.T) {
	t.Parallel()

	input := lessonsWithTitles("Clase 2", "Clase 1")
	original := titlesOf(input)

	_ = Sort(input)

	assert.Equal(t, original, titlesOf(input))
}

func TestSortIsStable(t *testing.T) {
	t.Parallel()

	// Two lessons with identical titles keep their relative order.
	input := lessonsWithTitles("Clase 1", "Clase 1")
	ordered := Sort(input)

	require.Len(t, ordered, 2)
	assert.Equal(t, input[0].ID, ordered[0].ID)
	assert.Equal(t, input[1].ID, ordered[1].ID)
}

func TestIsWelcome(t *testing.T) {
	t.Parallel()

	tests := []struct {
		title    string
		expected bool
	}{
		{"Bienvenida", true},
		{"BIENVENIDA al curso", true},
		{"Clase 1", true},
		{"clase 1 - introducción", true},
		{"Clase 10", false},
		{"Clase 2", false},
		{"Cierre", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, IsWelcome(tt.title), "title %q", tt.title)
	}
}
