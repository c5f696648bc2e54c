package shellfmt

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/christophgockel/fake-ci/internal/ciyaml"
)

// Interpolate expands `${VAR}` references in value using vars, by
// delegating to a real shell: `export K="V"; ...; echo "<value>"`. This
// matches GitLab's own behavior on POSIX shells exactly, including nested
// expansion and shell quoting, and is a deliberate correctness choice, not
// an incidental implementation detail.
func Interpolate(ctx context.Context, value string, vars ciyaml.OrderedVariables) (string, error) {
	script := ExportPrefix(vars) + fmt.Sprintf("echo \"%s\"", value)

	cmd := exec.CommandContext(ctx, "sh", "-c", script)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("interpolating %q: %w: %s", value, err, stderr.String())
	}

	return strings.TrimSuffix(stdout.String(), "\n"), nil
}

// ExportPrefix renders vars as a sequence of shell `export K="V";`
// statements, used both to seed interpolation and to prefix a job's
// script with its own variables before execution.
func ExportPrefix(vars ciyaml.OrderedVariables) string {
	var b strings.Builder
	for _, v := range vars {
		b.WriteString(fmt.Sprintf("export %s=%q;", v.Key, v.Value))
	}
	return b.String()
}

