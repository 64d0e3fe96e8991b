// Package prompt asks the operator for decisions during a setup run.
package prompt

import (
	"errors"
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// ErrAborted is returned when the operator interrupts a prompt
var ErrAborted = errors.New("aborted by operator")

// Prompter gathers operator choices
type Prompter interface {
	// Select returns the index of the chosen item
	Select(message string, choices []string) (int, error)

	// Confirm asks a yes/no question
	Confirm(message string, def bool) (bool, error)

	// Input asks for free text; validate may be nil
	Input(message, def string, validate func(string) error) (string, error)
}

// Defaults answers every prompt with its default, for unattended runs
type Defaults struct{}

// Select picks the first choice
func (Defaults) Select(_ string, choices []string) (int, error) {
	if len(choices) == 0 {
		return 0, fmt.Errorf("nothing to select from")
	}
	return 0, nil
}

// Confirm returns def
func (Defaults) Confirm(_ string, def bool) (bool, error) {
	return def, nil
}

// Input returns def once it validates
func (Defaults) Input(message, def string, validate func(string) error) (string, error) {
	if validate != nil {
		if err := validate(def); err != nil {
			return "", fmt.Errorf("%s: default %q rejected: %w", message, def, err)
		}
	}
	return def, nil
}

// Terminal prompts interactively on the controlling terminal
type Terminal struct{}

// Select shows a selection menu
func (Terminal) Select(message string, choices []string) (int, error) {
	var idx int
	err := survey.AskOne(&survey.Select{Message: message, Options: choices}, &idx)
	return idx, wrap(err)
}

// Confirm asks a yes/no question
func (Terminal) Confirm(message string, def bool) (bool, error) {
	var ok bool
	err := survey.AskOne(&survey.Confirm{Message: message, Default: def}, &ok)
	return ok, wrap(err)
}

// Input reads a line of text, re-asking until validate accepts it
func (Terminal) Input(message, def string, validate func(string) error) (string, error) {
	var answer string
	var opts []survey.AskOpt
	if validate != nil {
		opts = append(opts, survey.WithValidator(func(ans interface{}) error {
			s, ok := ans.(string)
			if !ok {
				return fmt.Errorf("expected text")
			}
			return validate(s)
		}))
	}
	err := survey.AskOne(&survey.Input{Message: message, Default: def}, &answer, opts...)
	return answer, wrap(err)
}

func wrap(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return ErrAborted
	}
	return err
}
