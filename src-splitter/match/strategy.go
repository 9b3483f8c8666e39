// The `match` package evaluates the boolean match strategies a course rule
// document can attach to an event item. A strategy spec is decoded once at
// load time into a concrete Strategy value; evaluation is pure and never
// returns an error. Anything malformed (bad regex, missing parameter,
// unknown kind) evaluates to false rather than failing the run.
package match

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

const DefaultPriority = 99

// Strategy is a predicate over the observable attributes of one calendar
// event. Implementations must be side-effect free.
type Strategy interface {
	// Lower priority value = tried first.
	Priority() int
	Matches(summary, description, location string, start *time.Time) bool
}

// Decode turns one strategy spec (a decoded JSON object with a "strategy"
// tag, an optional "priority" and kind-specific parameters) into a Strategy.
// Unknown or malformed specs decode to a strategy that never matches.
func Decode(spec map[string]any) Strategy {
	priority := intField(spec, "priority", DefaultPriority)

	kind, _ := spec["strategy"].(string)
	switch kind {
	case "time":
		return decodeTime(spec["timeslot"], priority)
	case "description":
		pattern, _ := spec["pattern"].(string)
		return &TextStrategy{priority: priority, re: compilePattern(pattern), includeSummary: true}
	case "url":
		pattern, _ := spec["pattern"].(string)
		return &TextStrategy{priority: priority, re: compilePattern(pattern)}
	case "location":
		location, _ := spec["location"].(string)
		return &LocationStrategy{priority: priority, needle: location}
	case "all":
		return &AllStrategy{priority: priority, children: decodeChildren(spec["strategies"])}
	case "any":
		return &AnyStrategy{priority: priority, children: decodeChildren(spec["strategies"])}
	default:
		return &NeverStrategy{priority: priority}
	}
}

func decodeChildren(raw any) []Strategy {
	specs, ok := raw.([]any)
	if !ok {
		return nil
	}
	children := make([]Strategy, 0, len(specs))
	for _, childSpec := range specs {
		childMap, ok := childSpec.(map[string]any)
		if !ok {
			children = append(children, &NeverStrategy{priority: DefaultPriority})
			continue
		}
		children = append(children, Decode(childMap))
	}
	return children
}

// case-insensitive; nil on compile failure, which the text strategies treat
// as "never matches"
func compilePattern(pattern string) *regexp.Regexp {
	if pattern == "" {
		return nil
	}
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return nil
	}
	return re
}

func intField(spec map[string]any, key string, fallback int) int {
	switch v := spec[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return fallback
}
