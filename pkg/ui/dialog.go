// Package ui provides the interactive boundary of datadeps.
// The resolution core never talks to a terminal directly; it asks a
// Dialog, which may be a real console, a scripted sequence in tests, or
// a non-interactive stub that fails fast in CI.
package ui

import (
	"os"

	"github.com/mattn/go-isatty"
)

// Option is one entry of a multi-way choice: a short key the user
// types, a label shown next to it, and the action invoked when chosen.
type Option struct {
	Key    string
	Label  string
	Action func() (interface{}, error)
}

// Dialog is the interactive-choice boundary used by the terms gate,
// checksum verifier and repair loop.
type Dialog interface {
	// Say displays a message without asking anything
	Say(message string)

	// Confirm asks a yes/no question. There is no default answer;
	// the user must pick one.
	Confirm(prompt string) (bool, error)

	// Choose presents the options in order and invokes the chosen
	// option's action, returning its result.
	Choose(title string, options []Option) (interface{}, error)
}

// Default returns the dialog appropriate for the current process: a
// console dialog when stdin is a terminal, otherwise a non-interactive
// dialog that fails any prompt fast instead of hanging a pipeline.
func Default() Dialog {
	if isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		return NewConsoleDialog()
	}
	return NewNonInteractiveDialog()
}
