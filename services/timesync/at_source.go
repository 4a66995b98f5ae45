package timesync

import (
	"strconv"
	"strings"
	"time"

	"weatherunit-go/errcode"
	"weatherunit-go/services/netmgr"
)

// -----------------------------------------------------------------------------
// Serial-module time source
//
// The external module runs its own SNTP client; we configure it once and
// then read the result with AT+CIPSNTPTIME?. Shares the serial port with
// the connectivity manager, so Fetch is only called from the same tick
// loop, never concurrently with a connect attempt in flight.
// -----------------------------------------------------------------------------

// ATTimeSource fetches wall time from the serial module. The module is
// configured for UTC; the synchronizer applies the display offset.
type ATTimeSource struct {
	Tr      *netmgr.ATTransport
	Server  string
	Timeout time.Duration

	configured bool
}

func (a *ATTimeSource) Fetch() (int64, error) {
	const op = "timesync.ATTimeSource.Fetch"
	timeout := a.Timeout
	if timeout == 0 {
		timeout = 3 * time.Second
	}
	if !a.configured {
		a.Tr.ClearBuffer()
		a.Tr.SendCommand("AT+CIPSNTPCFG=1,0,\"" + a.Server + "\"")
		if !a.await("OK", timeout) {
			return 0, &errcode.E{C: errcode.TimeSync, Op: op, Msg: "sntp config rejected"}
		}
		a.configured = true
	}

	a.Tr.ClearBuffer()
	a.Tr.SendCommand("AT+CIPSNTPTIME?")
	if !a.await("+CIPSNTPTIME:", timeout) {
		return 0, &errcode.E{C: errcode.Timeout, Op: op, Msg: "no time response"}
	}
	line := extractLine(a.Tr.Drain(), "+CIPSNTPTIME:")
	epoch, err := parseModuleTime(line)
	if err != nil {
		return 0, err
	}
	return epoch, nil
}

// await polls the shared buffer until token shows up or the timeout lapses.
func (a *ATTimeSource) await(token string, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if strings.Contains(a.Tr.Drain(), token) {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}

func extractLine(text, prefix string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(line, prefix))
		}
	}
	return ""
}

var months = map[string]time.Month{
	"Jan": time.January, "Feb": time.February, "Mar": time.March,
	"Apr": time.April, "May": time.May, "Jun": time.June,
	"Jul": time.July, "Aug": time.August, "Sep": time.September,
	"Oct": time.October, "Nov": time.November, "Dec": time.December,
}

// parseModuleTime converts the module's asctime-style answer, e.g.
// "Thu Aug 29 10:24:13 2024", to Unix epoch seconds. Before the module's
// own SNTP client has synced it answers with 1970; that is a failure here.
func parseModuleTime(s string) (int64, error) {
	const op = "timesync.parseModuleTime"
	fields := strings.Fields(s)
	if len(fields) != 5 {
		return 0, &errcode.E{C: errcode.BadResponse, Op: op, Msg: "malformed time: " + s}
	}
	month, ok := months[fields[1]]
	if !ok {
		return 0, &errcode.E{C: errcode.BadResponse, Op: op, Msg: "bad month: " + fields[1]}
	}
	day, err1 := strconv.Atoi(fields[2])
	year, err2 := strconv.Atoi(fields[4])
	hms := strings.Split(fields[3], ":")
	if err1 != nil || err2 != nil || len(hms) != 3 {
		return 0, &errcode.E{C: errcode.BadResponse, Op: op, Msg: "malformed time: " + s}
	}
	hour, err1 := strconv.Atoi(hms[0])
	min, err2 := strconv.Atoi(hms[1])
	sec, err3 := strconv.Atoi(hms[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return 0, &errcode.E{C: errcode.BadResponse, Op: op, Msg: "malformed time: " + s}
	}
	if year < 2020 {
		return 0, &errcode.E{C: errcode.TimeSync, Op: op, Msg: "module not yet synced"}
	}
	t := time.Date(year, month, day, hour, min, sec, 0, time.UTC)
	return t.Unix(), nil
}
