package builder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// ErrAborted is returned when the user interrupts a prompt.
var ErrAborted = errors.New("mapping aborted")

// Question is a single-choice prompt.
type Question struct {
	Message string
	Help    string
	Options []string
	// Default preselects an option; empty selects the first.
	Default string
}

// Prompter asks the user questions.
type Prompter interface {
	Select(ctx context.Context, q Question) (string, error)
	Info(message string)
}

// SurveyPrompter prompts on a terminal.
type SurveyPrompter struct {
	out      io.Writer
	pageSize int
	opts     []survey.AskOpt
}

// NewSurveyPrompter returns a terminal prompter. Extra options are passed to
// every survey call.
func NewSurveyPrompter(opts ...survey.AskOpt) *SurveyPrompter {
	return &SurveyPrompter{out: os.Stderr, pageSize: 15, opts: opts}
}

// Select implements Prompter.
func (p *SurveyPrompter) Select(ctx context.Context, q Question) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	prompt := &survey.Select{
		Message: q.Message,
		Options: q.Options,
		Help:    q.Help,
	}
	if q.Default != "" {
		prompt.Default = q.Default
	}

	opts := append([]survey.AskOpt{survey.WithPageSize(p.pageSize)}, p.opts...)

	var answer string
	if err := survey.AskOne(prompt, &answer, opts...); err != nil {
		if errors.Is(err, terminal.InterruptErr) {
			return "", ErrAborted
		}

		return "", fmt.Errorf("prompt %q: %w", q.Message, err)
	}

	return answer, nil
}

// Info implements Prompter.
func (p *SurveyPrompter) Info(message string) {
	fmt.Fprintln(p.out, message)
}
