package prompt

// Fake is a scripted Prompter for tests, grounded on the source's
// FakePrompt/SpyPrompt: it records whether it was asked to confirm and
// the info messages it printed, without touching stdin/stdout.
type Fake struct {
	Response      Response
	HasBeenAsked  bool
	InfoCallCount int
	InfoMessages  []string
}

func AlwaysConfirming() *Fake { return &Fake{Response: Yes} }
func AlwaysDenying() *Fake    { return &Fake{Response: No} }

func (f *Fake) Confirm(question string) Response {
	f.HasBeenAsked = true
	return f.Response
}

func (f *Fake) Info(message string) {
	f.InfoCallCount++
	f.InfoMessages = append(f.InfoMessages, message)
}
