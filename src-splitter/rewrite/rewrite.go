package rewrite

import (
	"regexp"
	"strconv"
	"strings"

	"icalsplit/src-splitter/rules"
	"icalsplit/src-splitter/utils"
)

// ExtractNumberAndKind pulls the occurrence number and event kind out of a
// summary. Modern event type patterns are tried first in declared order;
// the first match decides the kind. Legacy lecture/lab/exercise patterns
// are the fallback. Returns (0, "") when nothing matches; number 0 also
// stands for "unnumbered".
func ExtractNumberAndKind(summary string, cr *rules.CourseRules) (int, string) {
	if cr != nil {
		for _, et := range cr.EventTypes {
			for _, pattern := range et.Patterns {
				m := pattern.FindStringSubmatch(summary)
				if m == nil {
					continue
				}
				if et.Unnumbered {
					return 0, et.Type
				}
				if len(m) > 1 {
					number, err := strconv.Atoi(m[1])
					if err != nil {
						// non-numeric capture: skip this pattern, not the
						// whole event type
						continue
					}
					return number, et.Type
				}
				// no capturing group: the kind is known, the number is not
				return 0, et.Type
			}
		}
	}

	if cr != nil && cr.SummaryRegex != nil {
		if m := cr.SummaryRegex.FindStringSubmatch(summary); len(m) > 1 {
			if number, err := strconv.Atoi(m[1]); err == nil {
				return number, "lecture"
			}
		}
	}
	for _, legacy := range []struct {
		pattern *regexp.Regexp
		kind    string
	}{
		{rules.DefaultSummaryRegex, "lecture"},
		{rules.LabRegex, "lab"},
		{rules.ExerciseRegex, "exercise"},
	} {
		if m := legacy.pattern.FindStringSubmatch(summary); len(m) > 1 {
			if number, err := strconv.Atoi(m[1]); err == nil {
				return number, legacy.kind
			}
		}
	}
	return 0, ""
}

// Rewrite applies the course's rule set to one event's summary and
// description.
func Rewrite(summary, description, course string, cr *rules.CourseRules) (string, string) {
	return RewriteResolved(summary, description, course, cr, 0, "")
}

// RewriteResolved is Rewrite with a pre-resolved occurrence number and
// kind, as produced by the splitter's match-strategy pass for unnumbered
// events. kind "" means "not resolved yet".
func RewriteResolved(summary, description, course string, cr *rules.CourseRules, number int, kind string) (string, string) {
	if cr == nil {
		return summary, description
	}
	if cr.RequireCourseInSummary && !strings.Contains(summary, "("+course+")") {
		return summary, description
	}

	if kind == "" && number == 0 {
		number, kind = ExtractNumberAndKind(summary, cr)
	}

	title, module := resolveMetadata(cr, number, kind)

	newSummary := summary
	if title != "" && number != 0 {
		tpl := cr.TitleTemplate
		if tpl == "" {
			tpl = rules.DefaultTitleTemplate
		}
		newSummary = strings.NewReplacer(
			"{kind}", displayName(cr, kind),
			"{n}", strconv.Itoa(number),
			"{title}", title,
			"{course}", course,
		).Replace(tpl)
	}

	if strings.TrimSpace(description) != "" {
		tpl := cr.DescriptionTemplate
		if tpl == "" {
			tpl = rules.DefaultDescriptionTemplate
		}
		newDescription := strings.NewReplacer(
			"{module}", strings.TrimSpace(module),
			"{canvas}", strings.TrimSpace(cr.Canvas),
			"{old_desc}", strings.TrimSpace(description),
		).Replace(tpl)
		return newSummary, strings.TrimSpace(newDescription)
	}

	// no original description: synthesize one from whatever parts exist
	parts := make([]string, 0, 3)
	if module != "" {
		parts = append(parts, module)
	}
	if cr.Canvas != "" {
		parts = append(parts, "Canvas: "+cr.Canvas)
	}
	if trimmed := strings.TrimSpace(description); trimmed != "" {
		parts = append(parts, trimmed)
	}
	return newSummary, strings.TrimSpace(strings.Join(parts, "\n\n"))
}

// resolveMetadata finds the title/module for an occurrence: the modern
// event type item first, then (when the item is missing or carries no
// metadata) the legacy bucket for the kind.
func resolveMetadata(cr *rules.CourseRules, number int, kind string) (title, module string) {
	if len(cr.EventTypes) > 0 && kind != "" {
		for _, et := range cr.EventTypes {
			if et.Type != kind {
				continue
			}
			if item := et.Item(number); item != nil && len(item.Metadata) > 0 {
				return item.Meta("title"), item.Meta("module")
			}
			break
		}
	}

	if number == 0 {
		return "", ""
	}
	var bucket map[int]rules.LegacyItem
	switch kind {
	case "lecture":
		bucket = cr.Lectures
	case "lab":
		bucket = cr.Labs
	case "exercise":
		bucket = cr.Exercises
	}
	if info, ok := bucket[number]; ok {
		return strings.TrimSpace(info.Title), strings.TrimSpace(info.Module)
	}
	return "", ""
}

func displayName(cr *rules.CourseRules, kind string) string {
	if kind != "" && len(cr.EventTypes) > 0 {
		for _, et := range cr.EventTypes {
			if et.Type == kind {
				return et.DisplayName
			}
		}
		return utils.CleanupString(kind)
	}
	switch kind {
	case "lecture":
		return "Lecture"
	case "lab":
		return "Lab"
	default:
		return "Exercise"
	}
}
