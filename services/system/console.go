package system

import (
	"time"

	"weatherunit-go/bus"
	"weatherunit-go/errcode"
	"weatherunit-go/services/console"
)

// Console wiring. Handlers run on the console goroutine; anything that
// reads loop-owned state goes through the retained status topics, and
// anything that mutates is queued onto the tick loop.

const consoleOpTimeout = 2 * time.Second

// RegisterConsole installs the maintenance command set.
func (l *Loop) RegisterConsole(c *console.Console) {
	c.Register("status", "unit status summary", func([]string) (string, error) {
		return "link:    " + l.retained(topicLink) +
			"\r\ntime:    " + l.retained(topicTime) +
			"\r\nsensors: " + l.retained(topicSensors) +
			"\r\nscreen:  " + l.retained(topicScreen) +
			"\r\nuptime:  " + uptimeText(time.Since(l.startedAt)), nil
	})
	c.Register("wifi", "link status", func([]string) (string, error) {
		return l.retained(topicLink), nil
	})
	c.Register("time", "show clock, or: time set <epoch>", func(args []string) (string, error) {
		if len(args) == 0 {
			return l.retained(topicTime), nil
		}
		if len(args) != 2 || args[0] != "set" {
			return "", &errcode.E{C: errcode.InvalidParams, Op: "console.time", Msg: "usage: time set <epoch>"}
		}
		epoch, err := parseEpoch(args[1])
		if err != nil {
			return "", err
		}
		if !l.enqueue(func(now time.Time) { l.opts.Sync.SetManual(epoch, now) }) {
			return "", errcode.TransientBus
		}
		return "clock set", nil
	})
	c.Register("reconnect", "drop the link and retry now", func([]string) (string, error) {
		if !l.enqueue(func(now time.Time) { l.opts.Manager.ForceReconnect(now) }) {
			return "", errcode.TransientBus
		}
		return "reconnecting", nil
	})
	c.Register("probe", "rescan the I2C buses", func([]string) (string, error) {
		if l.opts.ProbeFunc == nil {
			return "", errcode.Unsupported
		}
		resp := make(chan string, 1)
		ok := l.enqueue(func(time.Time) {
			rep := l.opts.ProbeFunc()
			resp <- reportText(rep.Found, rep.Errors)
		})
		if !ok {
			return "", errcode.TransientBus
		}
		select {
		case text := <-resp:
			return text, nil
		case <-time.After(consoleOpTimeout):
			return "", errcode.Timeout
		}
	})
	c.Register("screens", "list the configured screen cycle", func([]string) (string, error) {
		out := ""
		for _, s := range l.opts.Config.Display.Cycle {
			out += s.String() + "\r\n"
		}
		return trimCRLF(out), nil
	})
	c.Register("uptime", "time since boot", func([]string) (string, error) {
		return uptimeText(time.Since(l.startedAt)), nil
	})
}

// enqueue hands an op to the tick loop without blocking the console.
func (l *Loop) enqueue(op func(now time.Time)) bool {
	select {
	case l.ops <- op:
		return true
	default:
		return false
	}
}

// retained fetches the current value of a retained status topic.
func (l *Loop) retained(topic bus.Topic) string {
	if l.opts.Bus == nil {
		return "n/a"
	}
	conn := l.opts.Bus.NewConnection("console-read")
	defer conn.Disconnect()
	sub := conn.Subscribe(topic)
	select {
	case msg := <-sub.Channel():
		if s, ok := msg.Payload.(string); ok {
			return s
		}
		return "n/a"
	case <-time.After(100 * time.Millisecond):
		return "n/a"
	}
}
