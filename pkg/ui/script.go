package ui

import (
	"github.com/arthur-debert/datadeps/pkg/errors"
)

// ScriptDialog is a Dialog driven by a pre-written sequence of answers.
// Tests use it to walk the retry state machines without a terminal.
type ScriptDialog struct {
	// ConfirmAnswers are consumed in order by Confirm calls
	ConfirmAnswers []bool

	// ChoiceKeys are consumed in order by Choose calls; each must match
	// an option key offered at that point
	ChoiceKeys []string

	// Recorded interactions
	Messages      []string
	ConfirmCount  int
	ChooseCount   int
	OfferedTitles []string
}

func (d *ScriptDialog) Say(message string) {
	d.Messages = append(d.Messages, message)
}

func (d *ScriptDialog) Confirm(prompt string) (bool, error) {
	if d.ConfirmCount >= len(d.ConfirmAnswers) {
		return false, errors.Newf(errors.ErrNonInteractive,
			"scripted dialog has no answer for confirm %d: %s", d.ConfirmCount, prompt)
	}
	answer := d.ConfirmAnswers[d.ConfirmCount]
	d.ConfirmCount++
	return answer, nil
}

func (d *ScriptDialog) Choose(title string, options []Option) (interface{}, error) {
	d.OfferedTitles = append(d.OfferedTitles, title)
	if d.ChooseCount >= len(d.ChoiceKeys) {
		return nil, errors.Newf(errors.ErrNonInteractive,
			"scripted dialog has no answer for choice %d: %s", d.ChooseCount, title)
	}
	key := d.ChoiceKeys[d.ChooseCount]
	d.ChooseCount++
	for _, opt := range options {
		if opt.Key == key {
			return opt.Action()
		}
	}
	return nil, errors.Newf(errors.ErrNonInteractive,
		"scripted answer %q matches no offered option for: %s", key, title)
}

// Interactions returns the total number of prompts shown
func (d *ScriptDialog) Interactions() int {
	return d.ConfirmCount + d.ChooseCount
}
