package cmd

import (
	"os"

	"github.com/charmbracelet/huh/spinner"
)

// withSpinner runs action behind a spinner on interactive terminals and plainly
// otherwise, so piped output stays clean.
func withSpinner(title string, action func()) {
	if !isTerminal(os.Stderr) {
		action()
		return
	}
	_ = spinner.New().
		Title(title).
		Action(action).
		Run()
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
