package shellfmt

import "strings"

// WrapWithEcho prefixes a script line with a green terminal echo of the
// line itself, so the job's output shows each command before it runs.
func WrapWithEcho(line string) string {
	return `echo -e "\e[1;32m` + line + `\e[0m"`
}

// CombineLines interleaves every script line with a preceding green echo
// of that line, joined into a single `;`-separated shell script.
func CombineLines(lines []string) string {
	parts := make([]string, 0, len(lines)*2)
	for _, line := range lines {
		parts = append(parts, WrapWithEcho(line), line)
	}
	return strings.Join(parts, ";")
}
