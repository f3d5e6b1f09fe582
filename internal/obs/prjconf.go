// prjconf.go merges required lines into the project configuration.
// The prjconf is free-form line-oriented text owned by the user as much
// as by this tool, so merging is additive only: missing lines are
// appended, existing content is never rewritten or reordered.
package obs

import "strings"

// MergePrjconf ensures every required line is present in the project
// configuration, appending the missing ones at the end. It returns the
// merged text and whether anything changed.
func MergePrjconf(existing string, required []string) (string, bool) {
	present := make(map[string]bool)
	for _, line := range strings.Split(existing, "\n") {
		present[strings.TrimSpace(line)] = true
	}

	var missing []string
	for _, line := range required {
		if !present[strings.TrimSpace(line)] {
			missing = append(missing, line)
		}
	}
	if len(missing) == 0 {
		return existing, false
	}

	merged := existing
	if merged != "" && !strings.HasSuffix(merged, "\n") {
		merged += "\n"
	}
	merged += strings.Join(missing, "\n") + "\n"
	return merged, true
}
