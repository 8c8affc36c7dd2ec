package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pterm/pterm"

	"github.com/arthur-debert/datadeps/pkg/errors"
)

// ConsoleDialog implements Dialog over a terminal
type ConsoleDialog struct {
	in  *bufio.Reader
	out io.Writer
}

// NewConsoleDialog creates a console dialog on stdin/stdout
func NewConsoleDialog() *ConsoleDialog {
	return NewConsoleDialogWith(os.Stdin, os.Stdout)
}

// NewConsoleDialogWith creates a console dialog on the given streams
func NewConsoleDialogWith(in io.Reader, out io.Writer) *ConsoleDialog {
	return &ConsoleDialog{in: bufio.NewReader(in), out: out}
}

func (d *ConsoleDialog) Say(message string) {
	fmt.Fprintln(d.out, message)
}

// Confirm asks until the user answers yes or no. An empty line is not a
// default, it re-asks; downloads should never happen on a stray enter.
func (d *ConsoleDialog) Confirm(prompt string) (bool, error) {
	for {
		fmt.Fprintf(d.out, "%s [y/n]: ", prompt)
		answer, err := d.readLine()
		if err != nil {
			return false, err
		}
		switch strings.ToLower(answer) {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
	}
}

func (d *ConsoleDialog) Choose(title string, options []Option) (interface{}, error) {
	if len(options) == 0 {
		return nil, errors.New(errors.ErrInvalidInput, "choose requires at least one option")
	}

	fmt.Fprintln(d.out, pterm.Bold.Sprint(title))
	keys := make([]string, 0, len(options))
	for _, opt := range options {
		fmt.Fprintf(d.out, "  [%s] %s\n", opt.Key, opt.Label)
		keys = append(keys, opt.Key)
	}

	for {
		fmt.Fprintf(d.out, "Choice [%s]: ", strings.Join(keys, "/"))
		answer, err := d.readLine()
		if err != nil {
			return nil, err
		}
		answer = strings.ToLower(answer)
		for _, opt := range options {
			if answer == strings.ToLower(opt.Key) || answer == strings.ToLower(opt.Label) {
				return opt.Action()
			}
		}
	}
}

func (d *ConsoleDialog) readLine() (string, error) {
	line, err := d.in.ReadString('\n')
	if err != nil && line == "" {
		return "", errors.Wrap(err, errors.ErrNonInteractive, "failed to read user input")
	}
	return strings.TrimSpace(line), nil
}

// NonInteractiveDialog fails every prompt. It is the default when no
// terminal is attached, so unattended runs surface a clear error
// instead of blocking on input that will never come.
type NonInteractiveDialog struct{}

// NewNonInteractiveDialog creates a dialog that rejects all prompts
func NewNonInteractiveDialog() *NonInteractiveDialog {
	return &NonInteractiveDialog{}
}

func (d *NonInteractiveDialog) Say(message string) {}

func (d *NonInteractiveDialog) Confirm(prompt string) (bool, error) {
	return false, errors.Newf(errors.ErrNonInteractive,
		"confirmation required but no terminal is attached: %s", prompt)
}

func (d *NonInteractiveDialog) Choose(title string, options []Option) (interface{}, error) {
	return nil, errors.Newf(errors.ErrNonInteractive,
		"interactive choice required but no terminal is attached: %s", title)
}
