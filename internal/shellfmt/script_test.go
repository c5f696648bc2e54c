package shellfmt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapWithEchoProducesGreenEscapeSequence(t *testing.T) {
	assert.Equal(t, `echo -e "\e[1;32mcat file.txt\e[0m"`, WrapWithEcho("cat file.txt"))
}

func TestCombineLinesPairsEachLineWithItsEcho(t *testing.T) {
	combined := CombineLines([]string{"cat file.txt"})

	assert.Equal(t, 2, strings.Count(combined, "cat file.txt"))
	assert.Equal(t, 1, strings.Count(combined, ";cat file.txt"))
}

func TestCombineLinesJoinsMultipleLinesWithSemicolons(t *testing.T) {
	combined := CombineLines([]string{"echo one", "echo two"})

	// Three joining semicolons, plus the one inside each echo's `\e[1;32m`.
	parts := strings.Split(combined, ";")
	assert.Len(t, parts, 6)
}
