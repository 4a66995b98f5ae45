package console

import (
	"strings"
	"testing"

	"weatherunit-go/errcode"
)

func newTestConsole() (*Console, *strings.Builder) {
	var out strings.Builder
	c := New(&out)
	return c, &out
}

func TestExecDispatches(t *testing.T) {
	c, out := newTestConsole()
	var got []string
	c.Register("wifi", "link status", func(args []string) (string, error) {
		got = args
		return "connected", nil
	})

	c.Exec("wifi")
	if out.String() != "connected\r\n" {
		t.Fatalf("output = %q", out.String())
	}
	if len(got) != 0 {
		t.Fatalf("args = %v", got)
	}
}

func TestExecQuotedArgs(t *testing.T) {
	c, _ := newTestConsole()
	var got []string
	c.Register("time", "time ops", func(args []string) (string, error) {
		got = args
		return "", nil
	})

	c.Exec(`time set "1767225600"`)
	if len(got) != 2 || got[0] != "set" || got[1] != "1767225600" {
		t.Fatalf("args = %v", got)
	}
}

func TestExecUnknownCommand(t *testing.T) {
	c, out := newTestConsole()
	c.Exec("bogus")
	if !strings.Contains(out.String(), "unknown command: bogus") {
		t.Fatalf("output = %q", out.String())
	}
}

func TestExecReportsHandlerError(t *testing.T) {
	c, out := newTestConsole()
	c.Register("probe", "scan buses", func(args []string) (string, error) {
		return "", &errcode.E{C: errcode.InvalidParams, Op: "probe", Msg: "bad bus"}
	})
	c.Exec("probe i2c9")
	if !strings.Contains(out.String(), string(errcode.InvalidParams)) {
		t.Fatalf("output = %q", out.String())
	}
}

func TestExecEmptyLine(t *testing.T) {
	c, out := newTestConsole()
	c.Exec("")
	c.Exec("   ")
	if out.String() != "" {
		t.Fatalf("output = %q", out.String())
	}
}

func TestHelpListsCommands(t *testing.T) {
	c, out := newTestConsole()
	c.Register("status", "unit status", func([]string) (string, error) { return "", nil })
	c.Register("uptime", "time since boot", func([]string) (string, error) { return "", nil })

	c.Exec("help")
	text := out.String()
	for _, want := range []string{"help", "status", "uptime"} {
		if !strings.Contains(text, want) {
			t.Errorf("help missing %q: %q", want, text)
		}
	}
}
