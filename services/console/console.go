package console

import (
	"context"
	"io"
	"sort"
	"strings"

	"github.com/google/shlex"

	"weatherunit-go/errcode"
)

// -----------------------------------------------------------------------------
// Serial console
//
// Line-oriented maintenance console over the debug serial port. Commands
// are registered by the composition root with narrow callbacks into the
// owning components; the console itself holds no device state.
// -----------------------------------------------------------------------------

// HandlerFunc executes one command. args excludes the command name.
type HandlerFunc func(args []string) (string, error)

type command struct {
	help string
	fn   HandlerFunc
}

type Console struct {
	out  io.Writer
	cmds map[string]command
}

func New(out io.Writer) *Console {
	c := &Console{out: out, cmds: map[string]command{}}
	c.Register("help", "list commands", c.help)
	return c
}

// Register adds a command. Later registrations replace earlier ones.
func (c *Console) Register(name, help string, fn HandlerFunc) {
	c.cmds[name] = command{help: help, fn: fn}
}

// Exec parses one input line and runs the matching command. Quoting
// follows shell rules, so arguments with spaces work: time set "..." etc.
// Output and errors go to the console writer.
func (c *Console) Exec(line string) {
	fields, err := shlex.Split(line)
	if err != nil {
		c.print("parse error: " + err.Error())
		return
	}
	if len(fields) == 0 {
		return
	}
	cmd, ok := c.cmds[fields[0]]
	if !ok {
		c.print("unknown command: " + fields[0] + " (try help)")
		return
	}
	out, err := cmd.fn(fields[1:])
	if err != nil {
		c.print("error [" + string(errcode.Of(err)) + "]: " + err.Error())
		return
	}
	if out != "" {
		c.print(out)
	}
}

// Run reads lines from the port until the context ends. Intended to run
// as its own goroutine; every command executes against live callbacks, so
// handlers must only touch state that is safe from here.
func (c *Console) Run(ctx context.Context, in io.Reader) {
	buf := make([]byte, 1)
	var line []byte
	for {
		if ctx.Err() != nil {
			return
		}
		n, err := in.Read(buf)
		if err != nil {
			return
		}
		if n == 0 {
			continue
		}
		switch buf[0] {
		case '\r':
			// ignore; terminals send CRLF
		case '\n':
			c.Exec(string(line))
			line = line[:0]
		default:
			line = append(line, buf[0])
		}
	}
}

func (c *Console) help(args []string) (string, error) {
	names := make([]string, 0, len(c.cmds))
	for name := range c.cmds {
		names = append(names, name)
	}
	sort.Strings(names)
	var b strings.Builder
	for _, name := range names {
		b.WriteString(name)
		b.WriteString("  ")
		b.WriteString(c.cmds[name].help)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (c *Console) print(s string) {
	_, _ = io.WriteString(c.out, s+"\r\n")
}
