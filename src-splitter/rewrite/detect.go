// The `rewrite` package decides which course a calendar event belongs to
// and rewrites its summary/description from the course's rule set.
package rewrite

import "regexp"

// Course code patterns, tried in order of specificity to keep false
// positives out:
//   - KTH-style, two uppercase letters + four digits (IS1200, DD1351)
//   - parenthesized, two or more letters and at least one digit; rejects
//     "(2024)" and "(PDF)" but admits "(CS101)" and "(IS1200HT)"
//   - /course/<code>/ fragment in a description URL
var (
	reCourseKTH    = regexp.MustCompile(`\b([A-Z]{2}[0-9]{4})\b`)
	reCourseParens = regexp.MustCompile(`\(([A-Z]{2,}[A-Z0-9]*[0-9][A-Z0-9]*)\)`)
	reCourseURL    = regexp.MustCompile(`/course/([A-Z0-9\-]{4,})/`)
)

// DetectCourse extracts a course code from the event summary or, failing
// that, from a URL in the description. Returns "" when nothing matches.
func DetectCourse(summary, description string) string {
	if m := reCourseKTH.FindStringSubmatch(summary); m != nil {
		return m[1]
	}
	if m := reCourseParens.FindStringSubmatch(summary); m != nil {
		return m[1]
	}
	if m := reCourseURL.FindStringSubmatch(description); m != nil {
		return m[1]
	}
	return ""
}
