package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"
)

// IO bundles the streams a command reads from and writes to.
type IO struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer
}

// NewIO creates a new IO instance. in may be nil when the command has no input.
func NewIO(in io.Reader, out, errOut io.Writer) *IO {
	return &IO{in: in, out: out, errOut: errOut}
}

// Write writes p to stdout, so renderers can target IO directly.
func (o *IO) Write(p []byte) (int, error) {
	return o.out.Write(p)
}

// Println writes to stdout.
func (o *IO) Println(a ...any) {
	_, _ = fmt.Fprintln(o.out, a...)
}

// Printf writes formatted output to stdout.
func (o *IO) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(o.out, format, a...)
}

// ErrPrintln writes to stderr.
func (o *IO) ErrPrintln(a ...any) {
	_, _ = fmt.Fprintln(o.errOut, a...)
}

// Prompt asks for a single line of input and returns it trimmed.
//
// When stdin and stdout are both the process terminal it uses a line
// editor. Otherwise the input is consumed one line at a time with the prompt
// written to stderr, so redirected output never contains the prompt. An
// empty answer, EOF or an aborted prompt yield [ErrInputRequired].
func (o *IO) Prompt(prompt string) (string, error) {
	if o.in == nil {
		return "", ErrInputRequired
	}

	var (
		line string
		err  error
	)

	if o.useLineEditor() {
		line, err = promptTerminal(prompt)
	} else {
		line, err = o.promptReader(prompt)
	}

	if err != nil {
		return "", err
	}

	line = strings.TrimSpace(line)
	if line == "" {
		return "", ErrInputRequired
	}

	return line, nil
}

// useLineEditor reports whether the prompt can be drawn by liner, which
// reads the process stdin and draws on the process stdout.
func (o *IO) useLineEditor() bool {
	in, ok := o.in.(*os.File)
	if !ok || in != os.Stdin {
		return false
	}

	out, ok := o.out.(*os.File)
	if !ok || out != os.Stdout {
		return false
	}

	return isTerminal(in) && isTerminal(out)
}

func promptTerminal(prompt string) (string, error) {
	state := liner.NewLiner()
	defer func() { _ = state.Close() }()

	state.SetCtrlCAborts(true)

	line, err := state.Prompt(prompt)
	if err != nil {
		if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
			return "", ErrInputRequired
		}

		return "", fmt.Errorf("reading input: %w", err)
	}

	return line, nil
}

func (o *IO) promptReader(prompt string) (string, error) {
	_, _ = fmt.Fprint(o.errOut, prompt)

	line, err := bufio.NewReader(o.in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading input: %w", err)
	}

	return line, nil
}
