// Package output owns terminal rendering for the CLI: output modes,
// styled text when stdout is a terminal, and plain text when it is not.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Mode selects how command results are rendered.
type Mode string

const (
	// ModeAuto resolves to text; it exists so config defaults can say
	// "let the renderer decide".
	ModeAuto Mode = "auto"
	// ModeText renders human-readable text.
	ModeText Mode = "text"
	// ModeJSON renders machine-readable JSON on stdout and keeps all
	// decoration on stderr.
	ModeJSON Mode = "json"
)

// ParseMode validates a user-supplied output mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeAuto:
		return ModeAuto, nil
	case ModeText:
		return ModeText, nil
	case ModeJSON:
		return ModeJSON, nil
	default:
		return "", fmt.Errorf("unsupported format %q (supported: text, json)", s)
	}
}

// Renderer writes command output. Results go to out, diagnostics and
// decoration go to errOut. Styling is enabled only when out is a color
// terminal.
type Renderer struct {
	out    io.Writer
	errOut io.Writer
	mode   Mode
	styles Styles
}

// NewRenderer builds a renderer for the given writers and mode.
func NewRenderer(out, errOut io.Writer, mode Mode) *Renderer {
	if mode == "" || mode == ModeAuto {
		mode = ModeText
	}
	return &Renderer{
		out:    out,
		errOut: errOut,
		mode:   mode,
		styles: newStyles(colorEnabled(out)),
	}
}

func colorEnabled(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	if !term.IsTerminal(int(f.Fd())) {
		return false
	}
	return termenv.EnvColorProfile() != termenv.Ascii
}

// Out returns the result writer.
func (r *Renderer) Out() io.Writer { return r.out }

// Err returns the diagnostic writer.
func (r *Renderer) Err() io.Writer { return r.errOut }

// EffectiveMode returns the resolved output mode.
func (r *Renderer) EffectiveMode() Mode { return r.mode }

// Styles returns the style set matching the terminal's capabilities.
func (r *Renderer) Styles() Styles { return r.styles }

// Println writes a line of result output.
func (r *Renderer) Println(a ...any) {
	fmt.Fprintln(r.out, a...)
}

// Printf writes formatted result output.
func (r *Renderer) Printf(format string, a ...any) {
	fmt.Fprintf(r.out, format, a...)
}

// Success writes a styled success line to the result writer.
func (r *Renderer) Success(format string, a ...any) {
	fmt.Fprintln(r.out, r.styles.Success.Render(fmt.Sprintf(format, a...)))
}

// Warning writes a styled warning line to the diagnostic writer, so it
// never pollutes machine-readable stdout.
func (r *Renderer) Warning(format string, a ...any) {
	fmt.Fprintln(r.errOut, r.styles.Warning.Render(fmt.Sprintf(format, a...)))
}

// JSON writes v to the result writer as indented JSON.
func (r *Renderer) JSON(v any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
