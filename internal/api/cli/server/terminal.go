package server

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/dtroode/heartcare-server/internal/api/cli"
)

var _ cli.Prompter = (*Terminal)(nil)

// Terminal reads lines from the user. Passwords are read without echo when
// the input is an interactive terminal.
type Terminal struct {
	in           *bufio.Reader
	out          io.Writer
	fd           int
	isTerminal   func(fd int) bool
	readPassword func(fd int) ([]byte, error)
}

// NewTerminal reads from in, typically os.Stdin.
func NewTerminal(in *os.File, out io.Writer) *Terminal {
	t := NewTerminalWithReader(in, out)
	t.fd = int(in.Fd())
	return t
}

// NewTerminalWithReader reads from a plain stream. Passwords are echoed.
func NewTerminalWithReader(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{
		in:           bufio.NewReader(in),
		out:          out,
		fd:           -1,
		isTerminal:   term.IsTerminal,
		readPassword: term.ReadPassword,
	}
}

// ReadLine prints prompt and returns the next line without its line ending.
// io.EOF is returned once the input is exhausted.
func (t *Terminal) ReadLine(prompt string) (string, error) {
	fmt.Fprint(t.out, prompt)

	line, err := t.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}

	return strings.TrimRight(line, "\r\n"), nil
}

func (t *Terminal) ReadPassword(prompt string) (string, error) {
	if t.fd < 0 || !t.isTerminal(t.fd) {
		return t.ReadLine(prompt)
	}

	fmt.Fprint(t.out, prompt)
	b, err := t.readPassword(t.fd)
	fmt.Fprintln(t.out)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	return string(b), nil
}
