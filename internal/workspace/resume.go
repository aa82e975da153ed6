package workspace

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
)

// Mode decides what happens to existing checkpoints.
type Mode int

const (
	// ModeAsk prompts when possible and keeps the data otherwise.
	ModeAsk Mode = iota
	ModeKeep
	ModeFresh
)

// ModeFromFlags maps the --keep and --fresh flags to a Mode.
func ModeFromFlags(keep, fresh bool) (Mode, error) {
	switch {
	case keep && fresh:
		return ModeAsk, errors.New("--keep and --fresh are mutually exclusive")
	case keep:
		return ModeKeep, nil
	case fresh:
		return ModeFresh, nil
	default:
		return ModeAsk, nil
	}
}

// Prompter asks whether existing data should be discarded.
type Prompter func(dir string) (fresh bool, err error)

// HuhPrompter asks on the terminal.
func HuhPrompter(dir string) (bool, error) {
	choice := "keep"
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title(fmt.Sprintf("Existing data found in %s", dir)).
				Options(
					huh.NewOption("Keep existing data and fill what is missing", "keep"),
					huh.NewOption("Delete existing data and start fresh", "fresh"),
				).
				Value(&choice),
		),
	)
	if err := form.Run(); err != nil {
		return false, fmt.Errorf("resume prompt: %w", err)
	}
	return choice == "fresh", nil
}

// Prepare applies mode to the workspace and reports whether data was reset.
// With ModeAsk the prompter is consulted only when data exists; a nil
// prompter keeps the data.
func (w *Workspace) Prepare(mode Mode, prompt Prompter) (bool, error) {
	exists, err := w.HasData()
	if err != nil || !exists {
		return false, err
	}

	fresh := mode == ModeFresh
	if mode == ModeAsk && prompt != nil {
		fresh, err = prompt(w.dir)
		if err != nil {
			return false, err
		}
	}
	if !fresh {
		return false, nil
	}
	return true, w.Reset()
}
