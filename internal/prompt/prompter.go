package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

const (
	confirmationSuffixConstant      = " [y/N]: "
	defaultValueSuffixTemplate      = " [%s]: "
	plainSuffixConstant             = ": "
	affirmativeShortAnswerConstant  = "y"
	affirmativeLongAnswerConstant   = "yes"
	lineDelimiterConstant           = '\n'
	promptAccentColorConstant       = "cyan"
	promptHintColorConstant         = "241"
	scriptExhaustedMessageConstant  = "scripted prompter has no remaining responses"
	scriptExhaustedTemplateConstant = "%w: %q"
)

// ErrScriptExhausted indicates a ScriptedPrompter was asked more questions than it has answers for.
var ErrScriptExhausted = errors.New(scriptExhaustedMessageConstant)

// Prompter presents yes/no confirmations and free-text prompts.
type Prompter interface {
	Confirm(prompt string) (bool, error)
	PromptText(prompt string, defaultValue string) (string, error)
}

// IOPrompter reads responses line by line from an io.Reader and renders styled prompts to an io.Writer.
type IOPrompter struct {
	reader      *bufio.Reader
	writer      io.Writer
	promptStyle lipgloss.Style
	hintStyle   lipgloss.Style
}

// NewIOPrompter constructs a prompter from the provided reader and writer.
func NewIOPrompter(input io.Reader, output io.Writer) *IOPrompter {
	writer := newFlushingWriter(output)
	renderer := lipgloss.NewRenderer(writer)
	return &IOPrompter{
		reader:      bufio.NewReader(input),
		writer:      writer,
		promptStyle: renderer.NewStyle().Foreground(lipgloss.Color(promptAccentColorConstant)).Bold(true),
		hintStyle:   renderer.NewStyle().Foreground(lipgloss.Color(promptHintColorConstant)),
	}
}

// Confirm writes the prompt and interprets affirmative responses (y/yes). Anything else, including end of input, declines.
func (prompter *IOPrompter) Confirm(prompt string) (bool, error) {
	response, readError := prompter.ask(prompt, confirmationSuffixConstant)
	if readError != nil {
		return false, readError
	}
	return isAffirmative(response), nil
}

// PromptText writes the prompt and returns the trimmed response, or defaultValue when the response is empty.
func (prompter *IOPrompter) PromptText(prompt string, defaultValue string) (string, error) {
	suffix := plainSuffixConstant
	if len(defaultValue) > 0 {
		suffix = fmt.Sprintf(defaultValueSuffixTemplate, defaultValue)
	}
	response, readError := prompter.ask(prompt, suffix)
	if readError != nil {
		return "", readError
	}
	if len(response) == 0 {
		return defaultValue, nil
	}
	return response, nil
}

func (prompter *IOPrompter) ask(prompt string, suffix string) (string, error) {
	renderedPrompt := prompter.promptStyle.Render(prompt) + prompter.hintStyle.Render(suffix)
	if _, writeError := io.WriteString(prompter.writer, renderedPrompt); writeError != nil {
		return "", writeError
	}

	response, readError := prompter.reader.ReadString(lineDelimiterConstant)
	if readError != nil && !errors.Is(readError, io.EOF) {
		return "", readError
	}
	return strings.TrimSpace(response), nil
}

// ScriptedPrompter answers prompts from a predetermined list of responses, in order.
// An empty scripted response selects the default, matching what pressing enter does interactively.
type ScriptedPrompter struct {
	responses []string
	prompts   []string
}

// NewScriptedPrompter constructs a prompter that replays the responses.
func NewScriptedPrompter(responses ...string) *ScriptedPrompter {
	return &ScriptedPrompter{responses: append([]string{}, responses...)}
}

// Confirm consumes the next response and interprets it like IOPrompter does.
func (prompter *ScriptedPrompter) Confirm(prompt string) (bool, error) {
	response, nextError := prompter.next(prompt)
	if nextError != nil {
		return false, nextError
	}
	return isAffirmative(response), nil
}

// PromptText consumes the next response, falling back to defaultValue when it is empty.
func (prompter *ScriptedPrompter) PromptText(prompt string, defaultValue string) (string, error) {
	response, nextError := prompter.next(prompt)
	if nextError != nil {
		return "", nextError
	}
	if len(strings.TrimSpace(response)) == 0 {
		return defaultValue, nil
	}
	return strings.TrimSpace(response), nil
}

// Prompts returns every prompt presented so far.
func (prompter *ScriptedPrompter) Prompts() []string {
	return append([]string{}, prompter.prompts...)
}

func (prompter *ScriptedPrompter) next(prompt string) (string, error) {
	prompter.prompts = append(prompter.prompts, prompt)
	if len(prompter.responses) == 0 {
		return "", fmt.Errorf(scriptExhaustedTemplateConstant, ErrScriptExhausted, prompt)
	}
	response := prompter.responses[0]
	prompter.responses = prompter.responses[1:]
	return response, nil
}

// DefaultsPrompter declines every confirmation and answers every text prompt with its default.
type DefaultsPrompter struct{}

// Confirm always declines.
func (DefaultsPrompter) Confirm(prompt string) (bool, error) {
	return false, nil
}

// PromptText always returns defaultValue.
func (DefaultsPrompter) PromptText(prompt string, defaultValue string) (string, error) {
	return defaultValue, nil
}

// AssumeYesPrompter accepts every confirmation and answers every text prompt with its default.
type AssumeYesPrompter struct{}

// Confirm always accepts.
func (AssumeYesPrompter) Confirm(prompt string) (bool, error) {
	return true, nil
}

// PromptText always returns defaultValue.
func (AssumeYesPrompter) PromptText(prompt string, defaultValue string) (string, error) {
	return defaultValue, nil
}

// SelectionOptions describe how the operator intends to answer prompts.
type SelectionOptions struct {
	AssumeYes      bool
	NonInteractive bool
	Input          io.Reader
	Output         io.Writer
}

// Select chooses the prompter matching the options. Input that is not a terminal is treated as non-interactive.
func Select(options SelectionOptions) Prompter {
	switch {
	case options.AssumeYes:
		return AssumeYesPrompter{}
	case options.NonInteractive || !IsTerminal(options.Input):
		return DefaultsPrompter{}
	default:
		return NewIOPrompter(options.Input, options.Output)
	}
}

// IsTerminal reports whether the reader is a file attached to a terminal.
func IsTerminal(input io.Reader) bool {
	file, isFile := input.(*os.File)
	if !isFile || file == nil {
		return false
	}
	return isatty.IsTerminal(file.Fd()) || isatty.IsCygwinTerminal(file.Fd())
}

func isAffirmative(response string) bool {
	switch strings.ToLower(strings.TrimSpace(response)) {
	case affirmativeShortAnswerConstant, affirmativeLongAnswerConstant:
		return true
	default:
		return false
	}
}
