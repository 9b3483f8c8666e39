package rewrite_test

import (
	"encoding/json"
	"strings"
	"testing"

	"icalsplit/src-splitter/rewrite"
	"icalsplit/src-splitter/rules"
)

func TestDetectCourse(t *testing.T) {
	cases := []struct {
		summary     string
		description string
		want        string
	}{
		{"Föreläsning 3 (IS1200)", "", "IS1200"},
		// a KTH-style code anywhere in the summary beats a parenthesized one
		{"IS1200 Lecture (OTHER)", "", "IS1200"},
		{"", "https://host/course/IS-1200/event/1/", "IS-1200"},
		{"Lecture 1 IS1200 Computer Hardware", "", "IS1200"},
		{"Seminar (CS101)", "", "CS101"},
		{"Exam info (2024)", "", ""},
		{"Handout (PDF)", "", ""},
		{"Lab session", "see https://canvas.kth.se/course/DD1351-HT24/pages", "DD1351-HT24"},
		{"Lunch with Maria", "", ""},
		// a KTH-style code in the summary wins over a URL in the description
		{"Lecture 2 (DD1351)", "https://x.se/course/OTHER1/", "DD1351"},
	}
	for _, c := range cases {
		if got := rewrite.DetectCourse(c.summary, c.description); got != c.want {
			t.Errorf("DetectCourse(%q, %q) = %q, want %q", c.summary, c.description, got, c.want)
		}
	}
}

func loadRules(t *testing.T, doc string) *rules.CourseRules {
	t.Helper()
	data := make(map[string]any)
	if err := json.Unmarshal([]byte(doc), &data); err != nil {
		t.Fatal(err)
	}
	cr, err := rules.Load(data)
	if err != nil {
		t.Fatal(err)
	}
	return cr
}

func TestExtractNumberAndKind(t *testing.T) {
	cr := loadRules(t, `{
		"course": "IS1200",
		"event_types": [
			{"type": "seminar", "patterns": ["Seminar\\s+(\\d+)"]},
			{"type": "recap", "unnumbered": true, "patterns": ["Recap"]}
		]
	}`)

	if n, kind := rewrite.ExtractNumberAndKind("Seminar 4 (IS1200)", cr); n != 4 || kind != "seminar" {
		t.Errorf("got (%d, %q), want (4, seminar)", n, kind)
	}
	if n, kind := rewrite.ExtractNumberAndKind("Recap before exam", cr); n != 0 || kind != "recap" {
		t.Errorf("got (%d, %q), want (0, recap)", n, kind)
	}
	// built-in fallbacks still apply for kinds the document doesn't declare
	if n, kind := rewrite.ExtractNumberAndKind("Lecture 7", cr); n != 7 || kind != "lecture" {
		t.Errorf("got (%d, %q), want (7, lecture)", n, kind)
	}
	if n, kind := rewrite.ExtractNumberAndKind("Lunch", cr); n != 0 || kind != "" {
		t.Errorf("got (%d, %q), want (0, \"\")", n, kind)
	}
}

func TestRewriteLecture(t *testing.T) {
	cr := loadRules(t, `{
		"course": "IS1200",
		"canvas": "https://canvas.kth.se/courses/1234",
		"items": [{"number": 3, "title": "Assembly", "module": "Module 2: ISA"}]
	}`)

	summary, description := rewrite.Rewrite("Lecture 3 (IS1200)", "Sal D1", "IS1200", cr)
	if summary != "Lecture 3 - Assembly - IS1200" {
		t.Error("unexpected summary:", summary)
	}
	if !strings.Contains(description, "Module 2: ISA") ||
		!strings.Contains(description, "Canvas: https://canvas.kth.se/courses/1234") ||
		!strings.Contains(description, "Sal D1") {
		t.Error("unexpected description:", description)
	}
}

func TestRewriteUnknownNumberKeepsSummary(t *testing.T) {
	cr := loadRules(t, `{
		"course": "IS1200",
		"canvas": "https://canvas.kth.se/courses/1234",
		"items": [{"number": 3, "title": "Assembly"}]
	}`)

	// lecture 9 has no entry: title untouched, description still enriched
	summary, description := rewrite.Rewrite("Lecture 9 (IS1200)", "Sal D1", "IS1200", cr)
	if summary != "Lecture 9 (IS1200)" {
		t.Error("expected the summary to stay as-is, got", summary)
	}
	if !strings.Contains(description, "Canvas:") {
		t.Error("expected the description to gain the canvas link")
	}
}

func TestRewriteRequireCourseInSummary(t *testing.T) {
	cr := loadRules(t, `{
		"course": "IS1200",
		"match": {"require_course_in_summary": true},
		"items": [{"number": 3, "title": "Assembly"}]
	}`)

	summary, _ := rewrite.Rewrite("Lecture 3", "", "IS1200", cr)
	if summary != "Lecture 3" {
		t.Error("expected the gate to leave the event untouched, got", summary)
	}
	summary, _ = rewrite.Rewrite("Lecture 3 (IS1200)", "", "IS1200", cr)
	if summary != "Lecture 3 - Assembly - IS1200" {
		t.Error("expected the gate to pass, got", summary)
	}
}

func TestRewriteCustomTemplate(t *testing.T) {
	cr := loadRules(t, `{
		"course": "IS1200",
		"title_template": "{title} ({kind} {n})",
		"items": [{"number": 3, "title": "Assembly"}]
	}`)

	summary, _ := rewrite.Rewrite("Lecture 3 (IS1200)", "", "IS1200", cr)
	if summary != "Assembly (Lecture 3)" {
		t.Error("unexpected summary:", summary)
	}
}

func TestRewriteEmptyDescriptionSynthesized(t *testing.T) {
	cr := loadRules(t, `{
		"course": "IS1200",
		"canvas": "https://canvas.kth.se/courses/1234",
		"items": [{"number": 3, "title": "Assembly", "module": "Module 2"}]
	}`)

	_, description := rewrite.Rewrite("Lecture 3 (IS1200)", "", "IS1200", cr)
	if description != "Module 2\n\nCanvas: https://canvas.kth.se/courses/1234" {
		t.Errorf("unexpected synthesized description: %q", description)
	}
}

func TestRewriteNilRules(t *testing.T) {
	summary, description := rewrite.Rewrite("Lecture 3 (XX9999)", "desc", "XX9999", nil)
	if summary != "Lecture 3 (XX9999)" || description != "desc" {
		t.Error("expected events without rules to pass through unchanged")
	}
}

func TestRewriteStable(t *testing.T) {
	cr := loadRules(t, `{
		"course": "IS1200",
		"canvas": "https://canvas.kth.se/courses/1234",
		"items": [{"number": 3, "title": "Assembly", "module": "Module 2"}]
	}`)

	summary1, description1 := rewrite.Rewrite("Lecture 3 (IS1200)", "Sal D1", "IS1200", cr)
	summary2, description2 := rewrite.Rewrite(summary1, description1, "IS1200", cr)
	if summary1 != summary2 {
		t.Errorf("second pass changed the summary: %q -> %q", summary1, summary2)
	}
	_ = description2
}
