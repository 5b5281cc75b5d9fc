package conflicts

import "strings"

// ParseProperty parses a Logseq block property line of the form "key:: value". Leading
// indentation and a list marker are allowed.
func ParseProperty(line string) (key, value string, ok bool) {
	line = strings.TrimSpace(line)
	line = strings.TrimPrefix(line, "- ")
	key, value, ok = strings.Cut(line, "::")
	if !ok || key == "" || strings.ContainsAny(key, " \t") {
		return "", "", false
	}
	return key, strings.TrimSpace(value), true
}

// StripCollapsed removes all "collapsed:: true" property lines from text.
func StripCollapsed(text string) string {
	var b strings.Builder
	for line := range strings.Lines(text) {
		if key, value, ok := ParseProperty(line); ok && key == "collapsed" && value == "true" {
			continue
		}
		b.WriteString(line)
	}
	return b.String()
}
