package util

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
)

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// CourseNameKey folds a course name for tolerant matching: hyphens count as
// spaces and case is ignored.
func CourseNameKey(name string) string {
	// Caser 非并发安全，每次新建
	return cases.Fold().String(strings.TrimSpace(strings.ReplaceAll(name, "-", " ")))
}

// Slugify turns a course name into the path segment used by course links.
func Slugify(name string) string {
	return strings.Trim(nonSlugChars.ReplaceAllString(strings.ToLower(name), "-"), "-")
}
