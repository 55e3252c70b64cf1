package assemble

import "regexp"

var placeholderRe = regexp.MustCompile(`@([A-Za-z_][A-Za-z0-9_]*)@`)

// ExpandVars rewrites @VAR@ placeholders in s using vars. Placeholders with
// no matching variable expand to the empty string, matching configure-time
// substitution semantics.
func ExpandVars(s string, vars map[string]string) string {
	return placeholderRe.ReplaceAllStringFunc(s, func(m string) string {
		name := m[1 : len(m)-1]
		return vars[name]
	})
}

// expandArgv expands placeholders in each argument and drops arguments that
// expand to nothing, so an unset optional placeholder does not leave an empty
// argv element behind.
func expandArgv(argv []string, vars map[string]string) []string {
	out := make([]string, 0, len(argv))
	for _, arg := range argv {
		expanded := ExpandVars(arg, vars)
		if expanded == "" && arg != "" {
			continue
		}
		out = append(out, expanded)
	}
	return out
}
