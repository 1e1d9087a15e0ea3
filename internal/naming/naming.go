// Package naming holds the string conventions shared by forward target
// derivation and reverse inversion.
package naming

import (
	"fmt"
	"strings"
)

// projectEscape replaces dots in project names inside sample sheet descriptions
const projectEscape = "__"

// RReplace replaces the last n occurrences of old in s with new, scanning from the right.
// A negative n replaces every occurrence.
func RReplace(s, old, new string, n int) string {
	if old == "" || n == 0 {
		return s
	}
	var tail string
	for n != 0 {
		i := strings.LastIndex(s, old)
		if i < 0 {
			break
		}
		tail = new + s[i+len(old):] + tail
		s = s[:i]
		n--
	}
	return s + tail
}

// RunName is the base name of a sample run: <sample>_<index>_L00<lane>
func RunName(sample, index, lane string) string {
	return fmt.Sprintf("%s_%s_L00%s", sample, index, lane)
}

// EscapeProject encodes a project id for the Description column
func EscapeProject(project string) string {
	return strings.ReplaceAll(project, ".", projectEscape)
}

// UnescapeProject reverses EscapeProject
func UnescapeProject(project string) string {
	return strings.ReplaceAll(project, projectEscape, ".")
}
