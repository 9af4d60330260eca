// Package lessonorder provides the deterministic natural-order sequencing
// of a course's lessons from their titles. Titles like "Clase 2" must sort
// before "Clase 10", which a plain lexicographic sort gets wrong.
//
// The functions here are pure so the same ordering can be applied at
// enrollment time and whenever progress needs re-validation.
package lessonorder

import (
	"sort"
	"strings"

	"github.com/aulaops/aula-api/internal/domain"
)

// Welcome-lesson title markers, matched case-insensitively. A lesson whose
// title contains one of these starts unlocked regardless of its position.
// "clase 1" must not match "clase 10", so numbered markers require a
// non-digit boundary after the number.
var welcomeMarkers = []string{"bienvenida", "clase 1"}

// Sort returns the lessons in natural order: primarily by the first integer
// token found in the title (ascending), falling back to a case-insensitive
// comparison of the full title when no integer is present or integers tie.
// Lessons without a numeric token sort after numbered ones. The sort is
// stable and the input slice is not modified.
func Sort(lessons []domain.Lesson) []domain.Lesson {
	ordered := make([]domain.Lesson, len(lessons))
	copy(ordered, lessons)

	sort.SliceStable(ordered, func(i, j int) bool {
		return Less(ordered[i].Title, ordered[j].Title)
	})

	return ordered
}

// Less reports whether the lesson titled a naturally precedes the lesson
// titled b.
func Less(a, b string) bool {
	na, okA := firstInteger(a)
	nb, okB := firstInteger(b)

	switch {
	case okA && okB:
		if na != nb {
			return na < nb
		}
	case okA:
		return true
	case okB:
		return false
	}

	return strings.ToLower(a) < strings.ToLower(b)
}

// IsWelcome reports whether the title marks a welcome lesson
// ("bienvenida" or "clase 1", case-insensitive).
func IsWelcome(title string) bool {
	lower := strings.ToLower(title)
	for _, marker := range welcomeMarkers {
		if containsMarker(lower, marker) {
			return true
		}
	}
	return false
}

// containsMarker reports whether s contains marker without the match
// continuing into further digits ("clase 1" inside "clase 10" is not a
// match; "clase 1 - intro" is).
func containsMarker(s, marker string) bool {
	for from := 0; ; {
		idx := strings.Index(s[from:], marker)
		if idx < 0 {
			return false
		}
		end := from + idx + len(marker)
		if end >= len(s) || s[end] < '0' || s[end] > '9' {
			return true
		}
		from = end
	}
}

// firstInteger extracts the first run of digits from the title.
// Returns false when the title contains no digits.
func firstInteger(title string) (int, bool) {
	start := -1
	for i, r := range title {
		if r >= '0' && r <= '9' {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			return parseDigits(title[start:i]), true
		}
	}
	if start >= 0 {
		return parseDigits(title[start:]), true
	}
	return 0, false
}

// parseDigits converts a non-empty ASCII digit run to an int. Overflow is
// not a concern for lesson numbering.
func parseDigits(s string) int {
	n := 0
	for _, r := range s {
		n = n*10 + int(r-'0')
	}
	return n
}
