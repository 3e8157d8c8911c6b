// Package prompt renders the system and per-step user prompts sent to the
// oracle.
package prompt

import (
	"errors"
	"fmt"
	"strings"
	"text/template"

	"github.com/felixgeelhaar/maker-go/domain/hanoi"
)

// ErrInvalidTemplate indicates a prompt template failed to parse or execute.
var ErrInvalidTemplate = errors.New("invalid prompt template")

// Set holds the system prompt and the two per-parity step templates. The
// templates may reference {{.PreviousMove}} and {{.CurrentState}}.
type Set struct {
	System string `json:"system" yaml:"system"`
	Odd    string `json:"odd" yaml:"odd"`
	Even   string `json:"even" yaml:"even"`
}

// Data is the value the step templates are executed against.
type Data struct {
	PreviousMove string
	CurrentState string
	DiskCount    int
}

// Default returns the built-in prompt set.
func Default() Set {
	return Set{
		System: defaultSystem,
		Odd:    defaultOdd,
		Even:   defaultEven,
	}
}

// Merge fills any empty field of s from other.
func (s Set) Merge(other Set) Set {
	if s.System == "" {
		s.System = other.System
	}
	if s.Odd == "" {
		s.Odd = other.Odd
	}
	if s.Even == "" {
		s.Even = other.Even
	}
	return s
}

// Check parses both step templates.
func (s Set) Check() error {
	_, err := s.Compile()
	return err
}

// Templates is a Set with its step templates parsed once.
type Templates struct {
	system string
	odd    *template.Template
	even   *template.Template
}

// Compile parses the odd and even step templates.
func (s Set) Compile() (*Templates, error) {
	odd, err := parse("odd", s.Odd)
	if err != nil {
		return nil, err
	}
	even, err := parse("even", s.Even)
	if err != nil {
		return nil, err
	}
	return &Templates{system: s.System, odd: odd, even: even}, nil
}

func parse(name, text string) (*template.Template, error) {
	tmpl, err := template.New(name).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidTemplate, name, err)
	}
	return tmpl, nil
}

// Render returns the system prompt and the user prompt for one step. Odd disk
// counts use the odd template, even counts the even one.
func (t *Templates) Render(diskCount int, previous *hanoi.Action, current hanoi.Configuration) (string, string, error) {
	tmpl := t.even
	if diskCount%2 == 1 {
		tmpl = t.odd
	}

	var b strings.Builder
	err := tmpl.Execute(&b, Data{
		PreviousMove: FormatPrevious(previous),
		CurrentState: current.String(),
		DiskCount:    diskCount,
	})
	if err != nil {
		return "", "", fmt.Errorf("%w: %s: %v", ErrInvalidTemplate, tmpl.Name(), err)
	}
	return t.system, b.String(), nil
}

// FormatPrevious describes the previous move for the step prompt. A nil or
// all-zero action means no move has been made yet.
func FormatPrevious(previous *hanoi.Action) string {
	if previous == nil || *previous == (hanoi.Action{}) {
		return "None (this is the first move)"
	}
	if previous.Disk == 1 {
		return fmt.Sprintf("%s (disk 1 was moved)", previous)
	}
	return fmt.Sprintf("%s (disk %d was moved, NOT disk 1)", previous, previous.Disk)
}
