package rules

import "regexp"

// Templates may only reference the allow-listed variables; anything else
// falls back to the built-in default at load time.
var (
	titleTemplateVars = map[string]struct{}{
		"kind":   {},
		"n":      {},
		"title":  {},
		"course": {},
	}
	descriptionTemplateVars = map[string]struct{}{
		"module":   {},
		"canvas":   {},
		"old_desc": {},
	}

	templatePlaceholder = regexp.MustCompile(`\{([^{}]*)\}`)
)

// validateTemplate returns the first unknown placeholder, if any.
func validateTemplate(tpl string, allowed map[string]struct{}) (string, bool) {
	for _, m := range templatePlaceholder.FindAllStringSubmatch(tpl, -1) {
		if _, ok := allowed[m[1]]; !ok {
			return m[1], false
		}
	}
	return "", true
}
