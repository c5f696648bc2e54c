package prompt

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStdPromptConfirmDefaultsToYesOnEmptyInput(t *testing.T) {
	p := NewStdPrompt(strings.NewReader("\n"), &bytes.Buffer{})
	assert.Equal(t, Yes, p.Confirm("prune everything?"))
}

func TestStdPromptConfirmHonoursNo(t *testing.T) {
	p := NewStdPrompt(strings.NewReader("n\n"), &bytes.Buffer{})
	assert.Equal(t, No, p.Confirm("prune everything?"))
}

func TestFakePromptRecordsConfirmation(t *testing.T) {
	f := AlwaysConfirming()
	assert.Equal(t, Yes, f.Confirm("prune?"))
	assert.True(t, f.HasBeenAsked)
}

func TestFakePromptCountsInfoCalls(t *testing.T) {
	f := AlwaysDenying()
	f.Info("a")
	f.Info("b")
	assert.Equal(t, 2, f.InfoCallCount)
}
