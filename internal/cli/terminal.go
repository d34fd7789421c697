package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"
)

var (
	headerColor  = color.New(color.FgCyan)
	promptColor  = color.New(color.FgGreen)
	successColor = color.New(color.FgGreen)
	errorColor   = color.New(color.FgRed)
	noticeColor  = color.New(color.FgYellow)
)

const headerWidth = 50

// Terminal reads operator input line by line. Password echo suppression,
// screen clearing and pauses only apply when the input is a TTY.
type Terminal struct {
	in  *bufio.Reader
	out io.Writer
	fd  int
	tty bool
}

// NewTerminal wraps in and out. Scripted input (pipes, buffers) is read
// without any terminal control.
func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	t := &Terminal{in: bufio.NewReader(in), out: out, fd: -1}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		t.fd = int(f.Fd())
		t.tty = true
	}
	return t
}

// ReadLine prints prompt and returns the next line without its terminator.
// It returns io.EOF once the input is exhausted.
func (t *Terminal) ReadLine(prompt string) (string, error) {
	promptColor.Fprint(t.out, prompt)
	line, err := t.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimRight(line, "\r\n"), nil
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// ReadPassword reads a line without echo when attached to a terminal.
func (t *Terminal) ReadPassword(prompt string) (string, error) {
	if !t.tty {
		return t.ReadLine(prompt)
	}
	promptColor.Fprint(t.out, prompt)
	b, err := term.ReadPassword(t.fd)
	fmt.Fprintln(t.out)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(b), nil
}

// Header clears the screen and prints a centred title.
func (t *Terminal) Header(title string) {
	if t.tty {
		fmt.Fprint(t.out, "\033[H\033[2J")
	}
	rule := strings.Repeat("=", headerWidth)
	pad := max(0, (headerWidth-len(title))/2)
	headerColor.Fprintf(t.out, "%s\n%s%s\n%s\n\n", rule, strings.Repeat(" ", pad), title, rule)
}

// Pause waits for Enter on a terminal and is a no-op otherwise.
func (t *Terminal) Pause() error {
	if !t.tty {
		return nil
	}
	_, err := t.ReadLine("\nPress Enter to continue...")
	return err
}

func (t *Terminal) Println(a ...any) {
	fmt.Fprintln(t.out, a...)
}

func (t *Terminal) Success(msg string) {
	successColor.Fprintf(t.out, "\n%s\n", msg)
}

func (t *Terminal) Error(msg string) {
	errorColor.Fprintf(t.out, "\n%s\n", msg)
}

func (t *Terminal) Notice(msg string) {
	noticeColor.Fprintf(t.out, "\n%s\n", msg)
}

// Writer exposes the output for table rendering.
func (t *Terminal) Writer() io.Writer {
	return t.out
}
