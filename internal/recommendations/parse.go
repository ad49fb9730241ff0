package recommendations

import "strings"

// ParseWorkoutNames extracts workout titles from a numbered-list reply such
// as "1. Full Body Strength\n2. Cardio Blast". Only lines that start with a
// digit and contain a dot count, everything through the first dot is the
// numbering and gets dropped.
func ParseWorkoutNames(reply string) []string {
	names := make([]string, 0)
	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || line[0] < '0' || line[0] > '9' {
			continue
		}
		dotIndex := strings.Index(line, ".")
		if dotIndex < 0 {
			continue
		}
		name := strings.TrimSpace(line[dotIndex+1:])
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}
