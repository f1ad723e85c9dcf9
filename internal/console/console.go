// Package console adapts the kernel's hal.Logger contract to a real Unix terminal, using raw mode
// when standard output is a TTY so the simulated serial console's "\n"-to-"\r\n" translation
// behaves the way it would on a real wired-up terminal.
package console

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// ErrNoTTY is returned by New if standard output is not a terminal. Callers running under a
// pipe or in CI should fall back to a plain hal.Logger instead of this console.
var ErrNoTTY = errors.New("console: stdout is not a TTY")

// Console writes kernel log output to the real terminal, putting it into raw mode so every
// newline emitted by the kernel becomes an actual carriage-return-linefeed on the wire rather than
// being reinterpreted by a cooked tty driver.
type Console struct {
	out   *os.File
	fd    int
	saved *term.State
}

// New puts stdout into raw mode and returns a Console that writes to it. Callers must call
// Restore when done to return the terminal to its original state.
func New() (*Console, error) {
	fd := int(os.Stdout.Fd())

	if !term.IsTerminal(fd) {
		return nil, ErrNoTTY
	}

	saved, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNoTTY, err)
	}

	cons := &Console{out: os.Stdout, fd: fd, saved: saved}

	if err := cons.setTerminalParams(1, 0); err != nil {
		_ = cons.Restore()
		return nil, err
	}

	return cons, nil
}

// setTerminalParams configures read granularity on the underlying file descriptor. The kernel
// console is output-only, but raw mode leaves VMIN/VTIME at driver defaults that can make a
// concurrent reader of the same fd block oddly; pin them explicitly the way a real serial driver
// would.
func (c *Console) setTerminalParams(vmin, vtime byte) error {
	termIO, err := unix.IoctlGetTermios(c.fd, getTermiosIoctl)
	if err != nil {
		return err
	}

	termIO.Cc[unix.VMIN] = vmin
	termIO.Cc[unix.VTIME] = vtime

	return unix.IoctlSetTermios(c.fd, setTermiosIoctl, termIO)
}

// Log implements hal.Logger. In raw mode the terminal driver does not expand "\n" to "\r\n", so
// Console does it explicitly.
func (c *Console) Log(s string) {
	buf := make([]byte, 0, len(s)+8)

	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			buf = append(buf, '\r')
		}

		buf = append(buf, s[i])
	}

	_, _ = c.out.Write(buf)
}

// Restore returns the terminal to the state it was in before New was called.
func (c *Console) Restore() error {
	return term.Restore(c.fd, c.saved)
}
