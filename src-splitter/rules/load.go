package rules

import (
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"icalsplit/src-splitter/match"
	"icalsplit/src-splitter/utils"
)

const (
	schemaA = "A"
	schemaB = "B"
)

// detectSchema decides which legacy document shape a rule document uses.
// An explicit schema_version wins; otherwise the shape is inferred from
// which course identifier field is present.
func detectSchema(data map[string]any) (string, error) {
	if raw, ok := data["schema_version"]; ok {
		version, _ := raw.(string)
		switch version {
		case "A", "a", "1":
			return schemaA, nil
		case "B", "b", "2":
			return schemaB, nil
		default:
			slog.Warn("unknown schema_version, attempting auto-detect", "schema_version", raw)
		}
	}

	_, hasCourse := data["course"]
	_, hasCourseCode := data["course_code"]
	switch {
	case hasCourse && !hasCourseCode:
		return schemaA, nil
	case hasCourseCode && !hasCourse:
		return schemaB, nil
	case hasCourse && hasCourseCode:
		slog.Warn("found both 'course' and 'course_code', treating as schema A")
		return schemaA, nil
	default:
		return "", NewSchemaError("cannot determine schema: missing 'course' or 'course_code'", map[string]any{
			"schema_version": data["schema_version"],
		})
	}
}

// Load normalizes one decoded rule document into a CourseRules.
func Load(data map[string]any) (*CourseRules, error) {
	schema, err := detectSchema(data)
	if err != nil {
		return nil, err
	}

	cr := &CourseRules{
		TitleTemplate:       DefaultTitleTemplate,
		DescriptionTemplate: DefaultDescriptionTemplate,
		Lectures:            make(map[int]LegacyItem),
		Labs:                make(map[int]LegacyItem),
		Exercises:           make(map[int]LegacyItem),
	}

	switch schema {
	case schemaA:
		cr.Course = strings.TrimSpace(coerceString(data["course"]))
		cr.Canvas = strings.TrimSpace(coerceString(data["canvas"]))
	case schemaB:
		cr.Course = strings.TrimSpace(coerceString(data["course_code"]))
		if cr.Course == "" {
			return nil, NewSchemaError("missing course_code", map[string]any{
				"schema": schemaB,
			})
		}
		cr.Canvas = strings.TrimSpace(coerceString(data["canvas_url"]))
	}

	parseMatchSection(cr, data)
	parseTemplates(cr, data)

	switch schema {
	case schemaA:
		ingestLegacyBucket(cr.Course, "items", data["items"], cr.Lectures)
	case schemaB:
		ingestLegacyBucket(cr.Course, "lectures", data["lectures"], cr.Lectures)
		ingestLegacyBucket(cr.Course, "labs", data["labs"], cr.Labs)
		ingestLegacyBucket(cr.Course, "exercises", data["exercises"], cr.Exercises)
	}

	parseEventTypes(cr, data["event_types"])
	if len(cr.EventTypes) == 0 {
		synthesizeLegacyEventTypes(cr)
	}
	return cr, nil
}

func parseMatchSection(cr *CourseRules, data map[string]any) {
	section, _ := data["match"].(map[string]any)
	if section == nil {
		return
	}
	if required, ok := section["require_course_in_summary"].(bool); ok {
		cr.RequireCourseInSummary = required
	}
	if pattern, _ := section["summary_regex"].(string); pattern != "" {
		re, err := regexp.Compile("(?i)" + pattern)
		if err != nil {
			slog.Warn("invalid summary_regex, using default",
				"course", cr.Course, "pattern", pattern)
			re = DefaultSummaryRegex
		}
		cr.SummaryRegex = re
	}
}

func parseTemplates(cr *CourseRules, data map[string]any) {
	if raw, ok := data["title_template"]; ok {
		tpl := coerceString(raw)
		if badVar, ok := validateTemplate(tpl, titleTemplateVars); !ok {
			slog.Warn("title_template uses unknown variable, keeping default",
				"course", cr.Course, "variable", badVar)
		} else {
			cr.TitleTemplate = tpl
		}
	}
	if raw, ok := data["description_template"]; ok {
		tpl := coerceString(raw)
		if badVar, ok := validateTemplate(tpl, descriptionTemplateVars); !ok {
			slog.Warn("description_template uses unknown variable, keeping default",
				"course", cr.Course, "variable", badVar)
		} else {
			cr.DescriptionTemplate = tpl
		}
	}
}

// ingestLegacyBucket validates one legacy numbered array: entries must be
// objects with a strictly positive integer number. Invalid entries are
// skipped, duplicates overwrite (last wins), both with a warning.
func ingestLegacyBucket(course, field string, raw any, dest map[int]LegacyItem) {
	arr, ok := raw.([]any)
	if !ok {
		return
	}
	for idx, entry := range arr {
		item, ok := entry.(map[string]any)
		if !ok {
			slog.Warn("legacy item is not an object, skipping",
				"course", course, "field", field, "index", idx)
			continue
		}
		number, ok := coerceNumber(item["number"])
		if !ok {
			slog.Warn("legacy item has invalid 'number', skipping",
				"course", course, "field", field, "index", idx, "number", item["number"])
			continue
		}
		if number <= 0 {
			slog.Warn("legacy item has non-positive number, skipping",
				"course", course, "field", field, "index", idx, "number", number)
			continue
		}
		if _, exists := dest[number]; exists {
			slog.Warn("duplicate number, overwriting",
				"course", course, "field", field, "number", number)
		}
		dest[number] = LegacyItem{
			Title:  strings.TrimSpace(coerceString(item["title"])),
			Module: strings.TrimSpace(coerceString(item["module"])),
		}
	}
}

func parseEventTypes(cr *CourseRules, raw any) {
	arr, ok := raw.([]any)
	if !ok {
		return
	}
	for idx, entry := range arr {
		spec, ok := entry.(map[string]any)
		if !ok {
			slog.Warn("event_types entry is not an object, skipping",
				"course", cr.Course, "index", idx)
			continue
		}
		kind, _ := spec["type"].(string)
		if kind == "" {
			slog.Warn("event_types entry has no type, skipping",
				"course", cr.Course, "index", idx)
			continue
		}

		et := &EventType{
			Type:        kind,
			DisplayName: utils.CleanupString(kind),
		}
		if displayName, _ := spec["display_name"].(string); displayName != "" {
			et.DisplayName = displayName
		}
		if unnumbered, ok := spec["unnumbered"].(bool); ok {
			et.Unnumbered = unnumbered
		}

		if patterns, ok := spec["patterns"].([]any); ok {
			for _, rawPattern := range patterns {
				pattern, _ := rawPattern.(string)
				re, err := regexp.Compile("(?i)" + pattern)
				if err != nil {
					slog.Warn("invalid event type pattern, dropping",
						"course", cr.Course, "type", kind, "pattern", pattern)
					continue
				}
				et.Patterns = append(et.Patterns, re)
			}
		}

		if items, ok := spec["items"].([]any); ok {
			for itemIdx, rawItem := range items {
				item, ok := parseEventItem(cr.Course, kind, itemIdx, rawItem)
				if !ok {
					continue
				}
				if existing := et.Item(item.Number); existing != nil {
					slog.Warn("duplicate item number, overwriting",
						"course", cr.Course, "type", kind, "number", item.Number)
					*existing = *item
					continue
				}
				et.Items = append(et.Items, item)
			}
		}

		cr.EventTypes = append(cr.EventTypes, et)
	}
}

// Item fields named number/match/match_priority/timeslot/group configure
// occurrence identity and matching; everything else is metadata.
var reservedItemFields = map[string]struct{}{
	"number":         {},
	"match":          {},
	"match_priority": {},
	"timeslot":       {},
	"group":          {},
}

func parseEventItem(course, kind string, idx int, raw any) (*EventItem, bool) {
	spec, ok := raw.(map[string]any)
	if !ok {
		slog.Warn("event item is not an object, skipping",
			"course", course, "type", kind, "index", idx)
		return nil, false
	}

	item := &EventItem{}
	if rawNumber, ok := spec["number"]; ok {
		number, ok := coerceNumber(rawNumber)
		if !ok || number <= 0 {
			slog.Warn("event item has invalid 'number', skipping",
				"course", course, "type", kind, "index", idx, "number", rawNumber)
			return nil, false
		}
		item.Number = number
	}

	item.Strategies = parseStrategies(spec)
	sort.SliceStable(item.Strategies, func(i, j int) bool {
		return item.Strategies[i].Priority() < item.Strategies[j].Priority()
	})

	keys := make([]string, 0, len(spec))
	for key := range spec {
		if _, reserved := reservedItemFields[key]; reserved {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		value, ok := coerceValue(spec[key])
		if !ok {
			slog.Warn("event item metadata value is not a scalar, skipping",
				"course", course, "type", kind, "index", idx, "key", key)
			continue
		}
		item.Metadata = append(item.Metadata, Field{Key: key, Value: value})
	}

	return item, true
}

// parseStrategies extracts match strategies from an item spec, first field
// wins: "match" as an array of specs, "match" as a single spec, a legacy
// "timeslot" shorthand, a "group" text shorthand.
func parseStrategies(spec map[string]any) []match.Strategy {
	defaultPriority := match.DefaultPriority
	if rawPriority, ok := spec["match_priority"]; ok {
		if priority, ok := coerceNumber(rawPriority); ok {
			defaultPriority = priority
		}
	}

	if rawMatch, ok := spec["match"]; ok {
		switch m := rawMatch.(type) {
		case []any:
			strategies := make([]match.Strategy, 0, len(m))
			for _, rawStrategy := range m {
				strategySpec, ok := rawStrategy.(map[string]any)
				if !ok {
					slog.Warn("match entry is not an object, skipping")
					continue
				}
				strategies = append(strategies, match.Decode(withDefaultPriority(strategySpec, defaultPriority)))
			}
			return strategies
		case map[string]any:
			return []match.Strategy{match.Decode(withDefaultPriority(m, defaultPriority))}
		}
		return nil
	}

	if timeslot, ok := spec["timeslot"]; ok {
		return []match.Strategy{match.Decode(map[string]any{
			"strategy": "time",
			"timeslot": timeslot,
			"priority": float64(defaultPriority),
		})}
	}

	if group, _ := spec["group"].(string); group != "" {
		return []match.Strategy{match.Decode(map[string]any{
			"strategy": "description",
			"pattern":  group,
			"priority": float64(defaultPriority),
		})}
	}

	return nil
}

func withDefaultPriority(spec map[string]any, priority int) map[string]any {
	if _, ok := spec["priority"]; ok || priority == match.DefaultPriority {
		return spec
	}
	out := make(map[string]any, len(spec)+1)
	for key, value := range spec {
		out[key] = value
	}
	out["priority"] = float64(priority)
	return out
}

// synthesizeLegacyEventTypes migrates the legacy lecture/lab/exercise
// buckets into event types so the rest of the pipeline only deals with the
// unified shape. Only used when the document declares no event_types.
func synthesizeLegacyEventTypes(cr *CourseRules) {
	for _, legacy := range []struct {
		kind    string
		bucket  map[int]LegacyItem
		pattern *regexp.Regexp
	}{
		{"lecture", cr.Lectures, DefaultSummaryRegex},
		{"lab", cr.Labs, LabRegex},
		{"exercise", cr.Exercises, ExerciseRegex},
	} {
		if len(legacy.bucket) == 0 {
			continue
		}
		et := &EventType{
			Type:        legacy.kind,
			DisplayName: utils.CleanupString(legacy.kind),
			Patterns:    []*regexp.Regexp{legacy.pattern},
		}
		numbers := make([]int, 0, len(legacy.bucket))
		for number := range legacy.bucket {
			numbers = append(numbers, number)
		}
		sort.Ints(numbers)
		for _, number := range numbers {
			entry := legacy.bucket[number]
			et.Items = append(et.Items, &EventItem{
				Number: number,
				Metadata: []Field{
					{Key: "module", Value: Value{Kind: StringValue, Str: entry.Module}},
					{Key: "title", Value: Value{Kind: StringValue, Str: entry.Title}},
				},
			})
		}
		cr.EventTypes = append(cr.EventTypes, et)
	}
}

func coerceString(raw any) string {
	switch v := raw.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

// coerceNumber accepts JSON numbers (truncated) and integer strings.
func coerceNumber(raw any) (int, bool) {
	switch v := raw.(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

func coerceValue(raw any) (Value, bool) {
	switch v := raw.(type) {
	case string:
		return Value{Kind: StringValue, Str: v}, true
	case float64:
		return Value{Kind: NumberValue, Num: v}, true
	case bool:
		return Value{Kind: BoolValue, Bool: v}, true
	default:
		return Value{}, false
	}
}
