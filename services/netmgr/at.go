package netmgr

import (
	"strconv"
	"strings"
	"time"

	"weatherunit-go/errcode"
	"weatherunit-go/types"
)

// -----------------------------------------------------------------------------
// External serial radio module (ESP-AT command set)
//
// The module speaks line-oriented AT commands over UART. A connection is a
// short script of commands; Poll advances the script one bounded step at a
// time, so the tick loop is never held up by the module.
// -----------------------------------------------------------------------------

// Port is the minimal UART surface the engine needs. uartx.UART provides it
// on hardware; tests use an in-memory fake.
type Port interface {
	Write(p []byte) (int, error)
	TryRead(p []byte) int
}

const (
	atBufMax    = 512
	atReadChunk = 64
)

type atStep struct {
	cmd     string        // sent with CRLF appended
	expect  string        // token that completes the step
	timeout time.Duration // per-step deadline
}

type ATTransport struct {
	port Port

	script   []atStep
	stepIdx  int // -1 before the first step is sent
	deadline time.Time
	buf      []byte
	done     bool
	result   Attempt

	signalDBm int
	ip        string

	// Keep-alive query state.
	kaPending  bool
	kaDeadline time.Time
	lastAlive  bool
}

func NewATTransport(port Port) *ATTransport {
	return &ATTransport{
		port:      port,
		stepIdx:   -1,
		done:      true,
		result:    Failure(errcode.NoTransport),
		buf:       make([]byte, 0, atBufMax),
		lastAlive: true,
	}
}

func (t *ATTransport) BeginConnect(p types.NetworkProfile) {
	t.script = []atStep{
		{cmd: "ATE0", expect: "OK", timeout: 2 * time.Second},
		{cmd: "AT+CWMODE=1", expect: "OK", timeout: 2 * time.Second},
		{cmd: "AT+CWJAP=" + quote(p.SSID) + "," + quote(p.Password),
			expect: "OK", timeout: 20 * time.Second},
		{cmd: "AT+CWJAP?", expect: "OK", timeout: 3 * time.Second},
		{cmd: "AT+CIFSR", expect: "OK", timeout: 3 * time.Second},
	}
	t.stepIdx = -1
	t.done = false
	t.result = Pending()
	t.buf = t.buf[:0]
	t.signalDBm = 0
	t.ip = ""
	t.kaPending = false
	t.lastAlive = true
}

func (t *ATTransport) Poll(now time.Time) Attempt {
	if t.done {
		return t.result
	}
	if t.stepIdx < 0 {
		t.sendStep(0, now)
		return Pending()
	}

	t.drain()
	step := t.script[t.stepIdx]
	text := string(t.buf)

	switch {
	case strings.Contains(text, "ERROR") || strings.Contains(text, "FAIL"):
		t.finish(Failure(failCode(t.stepIdx)))
	case strings.Contains(text, step.expect):
		t.harvest(text)
		if t.stepIdx+1 == len(t.script) {
			t.finish(Attempt{State: PollSuccess, SignalDBm: t.signalDBm, IP: t.ip})
		} else {
			t.sendStep(t.stepIdx+1, now)
		}
	case now.After(t.deadline):
		t.finish(Failure(errcode.Timeout))
	}
	return t.result
}

// LinkUp issues an association query at most once per call cycle. The check
// resolves on a later call; until then the last known answer is returned.
func (t *ATTransport) LinkUp(now time.Time) bool {
	if !t.kaPending {
		t.buf = t.buf[:0]
		t.send("AT+CWJAP?")
		t.kaPending = true
		t.kaDeadline = now.Add(3 * time.Second)
		return t.lastAlive
	}
	t.drain()
	text := string(t.buf)
	switch {
	case strings.Contains(text, "+CWJAP:"):
		t.lastAlive = true
		t.kaPending = false
	case strings.Contains(text, "No AP") || strings.Contains(text, "ERROR"):
		t.lastAlive = false
		t.kaPending = false
	case now.After(t.kaDeadline):
		t.lastAlive = false
		t.kaPending = false
	}
	return t.lastAlive
}

func (t *ATTransport) Disconnect() {
	t.send("AT+CWQAP") // best effort, no wait
	t.done = true
	t.result = Failure(errcode.LinkLost)
	t.kaPending = false
}

// SendCommand writes a raw command line; responses arrive via the shared
// buffer on later polls. Used by the time source on the same module.
func (t *ATTransport) SendCommand(cmd string) { t.send(cmd) }

// Drain reads whatever the module has produced and returns the buffered
// text. The buffer is bounded; old bytes fall off the front.
func (t *ATTransport) Drain() string {
	t.drain()
	return string(t.buf)
}

// ClearBuffer discards buffered response text.
func (t *ATTransport) ClearBuffer() { t.buf = t.buf[:0] }

// ---- internals ----

func (t *ATTransport) sendStep(i int, now time.Time) {
	t.stepIdx = i
	t.buf = t.buf[:0]
	t.deadline = now.Add(t.script[i].timeout)
	t.send(t.script[i].cmd)
}

func (t *ATTransport) send(cmd string) {
	_, _ = t.port.Write([]byte(cmd + "\r\n"))
}

func (t *ATTransport) drain() {
	var chunk [atReadChunk]byte
	for {
		n := t.port.TryRead(chunk[:])
		if n <= 0 {
			return
		}
		t.buf = append(t.buf, chunk[:n]...)
		if len(t.buf) > atBufMax {
			t.buf = append(t.buf[:0], t.buf[len(t.buf)-atBufMax:]...)
		}
	}
}

func (t *ATTransport) finish(a Attempt) {
	t.done = true
	t.result = a
}

// harvest pulls RSSI and IP out of completed query responses.
func (t *ATTransport) harvest(text string) {
	switch t.script[t.stepIdx].cmd {
	case "AT+CWJAP?":
		if dbm, ok := ParseCWJAPSignal(text); ok {
			t.signalDBm = dbm
		}
	case "AT+CIFSR":
		if ip, ok := ParseStationIP(text); ok {
			t.ip = ip
		}
	}
}

func failCode(stepIdx int) errcode.Code {
	if stepIdx == 2 { // the join step
		return errcode.AuthFailed
	}
	return errcode.TransientBus
}

func quote(s string) string { return `"` + s + `"` }

// Handshake probes for a live module at boot: leave transparent mode, then
// expect an OK to a bare AT within the timeout. Boot-time only; the tick
// loop is not running yet, so a bounded blocking wait is acceptable here.
func Handshake(port Port, timeout time.Duration) bool {
	_, _ = port.Write([]byte("+++"))
	time.Sleep(50 * time.Millisecond)

	var chunk [atReadChunk]byte
	for port.TryRead(chunk[:]) > 0 {
	}

	_, _ = port.Write([]byte("AT\r\n"))
	deadline := time.Now().Add(timeout)
	var resp []byte
	for time.Now().Before(deadline) {
		if n := port.TryRead(chunk[:]); n > 0 {
			resp = append(resp, chunk[:n]...)
			if strings.Contains(string(resp), "OK") {
				return true
			}
			continue
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}

// ParseCWJAPSignal extracts the RSSI field from an AT+CWJAP? response line:
//
//	+CWJAP:"ssid","aa:bb:cc:dd:ee:ff",6,-52
func ParseCWJAPSignal(text string) (int, bool) {
	line, ok := findLine(text, "+CWJAP:")
	if !ok {
		return 0, false
	}
	parts := strings.Split(line, ",")
	if len(parts) < 4 {
		return 0, false
	}
	raw := strings.TrimSpace(parts[3])
	// Some firmwares append extra fields after the RSSI.
	if i := strings.IndexByte(raw, ','); i >= 0 {
		raw = raw[:i]
	}
	dbm, err := strconv.Atoi(raw)
	if err != nil || dbm >= 0 {
		// RSSI is always negative; anything else means the fields shifted
		// (e.g. a comma inside the SSID).
		return 0, false
	}
	return dbm, true
}

// ParseStationIP extracts the station address from an AT+CIFSR response:
//
//	+CIFSR:STAIP,"192.168.4.2"
func ParseStationIP(text string) (string, bool) {
	line, ok := findLine(text, "STAIP")
	if !ok {
		return "", false
	}
	i := strings.IndexByte(line, '"')
	if i < 0 {
		return "", false
	}
	j := strings.IndexByte(line[i+1:], '"')
	if j < 0 {
		return "", false
	}
	ip := line[i+1 : i+1+j]
	if ip == "" || ip == "0.0.0.0" {
		return "", false
	}
	return ip, true
}

func findLine(text, marker string) (string, bool) {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.Contains(line, marker) {
			return line, true
		}
	}
	return "", false
}
