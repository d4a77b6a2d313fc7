// Package output renders command results in the operator's chosen format:
// styled text for terminals, markdown for pipes and docs, JSON for tooling.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Mode selects the output format.
type Mode string

// OutputMode is kept as a second name for Mode; test helpers and older
// call sites use it.
type OutputMode = Mode

const (
	ModeAuto     Mode = "auto"
	ModeText     Mode = "text"
	ModeJSON     Mode = "json"
	ModeMarkdown Mode = "markdown"
)

// ValidModes lists the accepted format names for flag completion and errors.
var ValidModes = []string{"auto", "text", "markdown", "json"}

// Renderer writes command output in a single mode. Commands render through
// it instead of printing directly so every surface honors --output.
type Renderer struct {
	stdout io.Writer
	stderr io.Writer
	mode   Mode
	isTTY  bool
	styles Styles
}

// NewRenderer builds a renderer, detecting whether stdout is a terminal.
// An empty or unknown mode behaves as auto.
func NewRenderer(stdout, stderr io.Writer, mode Mode) *Renderer {
	isTTY := false
	if f, ok := stdout.(*os.File); ok {
		isTTY = term.IsTerminal(int(f.Fd()))
	}
	return NewRendererWithTTY(stdout, stderr, isTTY, mode)
}

// NewRendererWithTTY builds a renderer with the terminal state supplied,
// for tests and callers that already know it.
func NewRendererWithTTY(stdout, stderr io.Writer, isTTY bool, mode Mode) *Renderer {
	switch mode {
	case ModeText, ModeJSON, ModeMarkdown:
	default:
		mode = ModeAuto
	}
	return &Renderer{
		stdout: stdout,
		stderr: stderr,
		mode:   mode,
		isTTY:  isTTY,
		styles: DefaultStyles(),
	}
}

// EffectiveMode resolves auto: text on a terminal, markdown otherwise.
func (r *Renderer) EffectiveMode() Mode {
	if r.mode != ModeAuto {
		return r.mode
	}
	if r.isTTY {
		return ModeText
	}
	return ModeMarkdown
}

// Styles returns the style set for text-mode rendering.
func (r *Renderer) Styles() Styles { return r.styles }

// Writer returns the destination for primary output.
func (r *Renderer) Writer() io.Writer { return r.stdout }

// ErrWriter returns the destination for diagnostics.
func (r *Renderer) ErrWriter() io.Writer { return r.stderr }

// Println writes a line of primary output.
func (r *Renderer) Println(a ...any) {
	fmt.Fprintln(r.stdout, a...)
}

// Printf writes formatted primary output.
func (r *Renderer) Printf(format string, a ...any) {
	fmt.Fprintf(r.stdout, format, a...)
}

// Success writes a check-marked line, styled in text mode.
func (r *Renderer) Success(msg string) {
	if r.EffectiveMode() == ModeText {
		fmt.Fprintf(r.stdout, "%s %s\n", r.styles.StatusSuccess.String(), msg)
		return
	}
	fmt.Fprintf(r.stdout, "OK: %s\n", msg)
}

// Warning writes a warning line.
func (r *Renderer) Warning(msg string) {
	if r.EffectiveMode() == ModeText {
		fmt.Fprintln(r.stdout, r.styles.Warning.Render("! "+msg))
		return
	}
	fmt.Fprintf(r.stdout, "WARNING: %s\n", msg)
}

// Error writes an error line to the diagnostic stream.
func (r *Renderer) Error(msg string) {
	if r.EffectiveMode() == ModeText {
		fmt.Fprintln(r.stderr, r.styles.Error.Render("✗ "+msg))
		return
	}
	fmt.Fprintf(r.stderr, "ERROR: %s\n", msg)
}

// JSON writes v as indented JSON, regardless of mode.
func (r *Renderer) JSON(v any) error {
	enc := json.NewEncoder(r.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// FormatHeader renders a markdown heading.
func FormatHeader(level int, text string) string {
	if level < 1 {
		level = 1
	}
	if level > 6 {
		level = 6
	}
	return strings.Repeat("#", level) + " " + text
}

// FormatKeyValue renders a markdown definition bullet.
func FormatKeyValue(key, value string) string {
	return fmt.Sprintf("- **%s**: %s", key, value)
}

// FormatCodeBlock renders a fenced markdown code block.
func FormatCodeBlock(lang, code string) string {
	return "```" + lang + "\n" + strings.TrimRight(code, "\n") + "\n```"
}
