package models

import "strings"

// Course is one entry of the fixed course catalog.
type Course string

const (
	CourseMatematica   Course = "MATEMATICA"
	CourseComunicacion Course = "COMUNICACION"
	CourseCiencias     Course = "CIENCIAS"
	CourseIngles       Course = "INGLES"
	CoursePython       Course = "PYTHON"
	CourseRobotica     Course = "ROBOTICA"
	CourseAjedrez      Course = "AJEDREZ"
)

// CourseCatalog lists every valid course in presentation order.
var CourseCatalog = []Course{
	CourseMatematica,
	CourseComunicacion,
	CourseCiencias,
	CourseIngles,
	CoursePython,
	CourseRobotica,
	CourseAjedrez,
}

// ValidCourse reports whether the value belongs to the catalog.
func ValidCourse(value string) bool {
	for _, c := range CourseCatalog {
		if string(c) == value {
			return true
		}
	}
	return false
}

// NormalizeCourses maps a legacy free-text course field onto catalog
// values. Older records stored courses as a single comma or semicolon
// separated string in arbitrary casing; this adapter runs once at the
// read/write boundary so nothing downstream branches on the field type.
// Unrecognized fragments are dropped, duplicates collapse.
func NormalizeCourses(legacy string) []string {
	if strings.TrimSpace(legacy) == "" {
		return nil
	}

	fields := strings.FieldsFunc(legacy, func(r rune) bool {
		return r == ',' || r == ';'
	})

	seen := make(map[string]struct{}, len(fields))
	out := make([]string, 0, len(fields))
	for _, field := range fields {
		candidate := strings.ToUpper(strings.TrimSpace(field))
		if candidate == "" || !ValidCourse(candidate) {
			continue
		}
		if _, dup := seen[candidate]; dup {
			continue
		}
		seen[candidate] = struct{}{}
		out = append(out, candidate)
	}
	return out
}
