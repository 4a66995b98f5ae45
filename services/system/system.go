package system

import (
	"context"
	"time"

	"weatherunit-go/bus"
	"weatherunit-go/services/input"
	"weatherunit-go/services/netmgr"
	"weatherunit-go/services/probe"
	"weatherunit-go/services/screen"
	"weatherunit-go/services/sensors"
	"weatherunit-go/services/timesync"
	"weatherunit-go/types"
)

// -----------------------------------------------------------------------------
// Main loop
//
// One cooperative tick drives every core component in a fixed order; no
// component blocks. Everything the components share crosses as value
// copies, and each field has exactly one writer. Out-of-band requests
// (console commands) are queued and applied at the top of the next tick.
// -----------------------------------------------------------------------------

// Renderer pushes a finished frame to the display.
type Renderer interface {
	Draw(frame types.ScreenFrame) error
}

// Status topics, retained so the console sees current state on subscribe.
var (
	topicLink    = bus.Topic{"status", "link"}
	topicTime    = bus.Topic{"status", "time"}
	topicSensors = bus.Topic{"status", "sensors"}
	topicScreen  = bus.Topic{"status", "screen"}
)

const publishEvery = time.Second

type Options struct {
	Config     types.Config
	Transport  types.TransportKind
	Manager    *netmgr.Manager
	Sync       *timesync.Synchronizer
	Buttons    *input.Handler
	ReadLevels func() [types.ButtonCount]bool
	Screen     *screen.Machine
	Sensors    *sensors.Poller
	Controller *sensors.ControllerPoller
	Renderer   Renderer
	Bus        *bus.Bus
	ProbeFunc  func() probe.Report
	// TickPeriod defaults to 20 ms.
	TickPeriod time.Duration
}

type Loop struct {
	opts      Options
	conn      *bus.Connection
	startedAt time.Time // wall clock at New, console uptime
	firstTick time.Time // loop clock at first Tick, frame uptime

	ops chan func(now time.Time)

	lastPublish time.Time
	lastFrame   types.ScreenFrame
	drawn       bool
	drawFailing bool
}

func New(opts Options) *Loop {
	if opts.TickPeriod <= 0 {
		opts.TickPeriod = 20 * time.Millisecond
	}
	l := &Loop{
		opts:      opts,
		startedAt: time.Now(),
		ops:       make(chan func(now time.Time), 4),
	}
	if opts.Bus != nil {
		l.conn = opts.Bus.NewConnection("system")
	}
	return l
}

// Run ticks until the context ends.
func (l *Loop) Run(ctx context.Context) {
	ticker := time.NewTicker(l.opts.TickPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			println("Info: main loop stopping")
			return
		case now := <-ticker.C:
			l.Tick(now)
		}
	}
}

// Tick runs one full pass. Exposed for host tests, which drive time
// explicitly instead of through Run.
func (l *Loop) Tick(now time.Time) {
	if l.firstTick.IsZero() {
		l.firstTick = now
	}

	// Queued console requests land before anything reads state.
	for {
		select {
		case op := <-l.ops:
			op(now)
			continue
		default:
		}
		break
	}

	if l.opts.ReadLevels != nil {
		for _, ev := range l.opts.Buttons.Sample(l.opts.ReadLevels()) {
			l.opts.Screen.Handle(ev)
		}
	}

	if l.opts.Manager.Step(now) == netmgr.EventConnected {
		l.opts.Sync.MarkDue()
	}
	l.opts.Sync.MaybeSync(l.opts.Manager.Status(), now)

	l.opts.Sensors.Step(now)
	if l.opts.Controller != nil {
		l.opts.Controller.Step(now)
	}

	frame := l.opts.Screen.Frame(l.inputs(now))
	l.draw(frame)

	if l.lastPublish.IsZero() || now.Sub(l.lastPublish) >= publishEvery {
		l.publishStatus(now)
		l.lastPublish = now
	}
}

func (l *Loop) inputs(now time.Time) screen.Inputs {
	snap, have := l.opts.Sensors.Snapshot()
	in := screen.Inputs{
		Sensors:     snap,
		SensorAge:   l.opts.Sensors.Age(now),
		HaveSensors: have,
		Link:        l.opts.Manager.Status(),
		Transport:   l.opts.Transport,
		Time:        l.opts.Sync.Current(now),
		Uptime:      now.Sub(l.firstTick),
	}
	if l.opts.Controller != nil {
		in.Controller, in.HaveController = l.opts.Controller.Snapshot()
	}
	return in
}

// draw pushes the frame when it changed. Failures flip the display into a
// failing state that is logged once, not every tick.
func (l *Loop) draw(frame types.ScreenFrame) {
	if l.opts.Renderer == nil {
		return
	}
	if l.drawn && frameEqual(frame, l.lastFrame) {
		return
	}
	if err := l.opts.Renderer.Draw(frame); err != nil {
		if !l.drawFailing {
			println("Error: display draw failed:", err.Error())
			l.drawFailing = true
		}
		return
	}
	if l.drawFailing {
		println("Info: display recovered")
		l.drawFailing = false
	}
	l.lastFrame = frame
	l.drawn = true
}

func frameEqual(a, b types.ScreenFrame) bool {
	if a.Screen != b.Screen || len(a.Fields) != len(b.Fields) {
		return false
	}
	for k, v := range a.Fields {
		if b.Fields[k] != v {
			return false
		}
	}
	return true
}

func (l *Loop) publishStatus(now time.Time) {
	if l.conn == nil {
		return
	}
	in := l.inputs(now)
	l.conn.Publish(l.conn.NewMessage(topicLink, linkText(in.Link, in.Transport), true))
	l.conn.Publish(l.conn.NewMessage(topicTime, timeText(in.Time), true))
	l.conn.Publish(l.conn.NewMessage(topicSensors, sensorText(in.Sensors, in.HaveSensors, in.SensorAge), true))
	l.conn.Publish(l.conn.NewMessage(topicScreen, l.opts.Screen.Current().String(), true))
}
