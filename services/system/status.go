package system

import (
	"time"

	"weatherunit-go/errcode"
	"weatherunit-go/types"
	"weatherunit-go/x/fmtx"
	"weatherunit-go/x/strconvx"
)

// Text renderings of component state, published retained for the console.

func linkText(link types.LinkState, kind types.TransportKind) string {
	switch link.Phase {
	case types.LinkConnecting:
		return fmtx.Sprintf("connecting %s attempt %d (%s)", link.Profile.SSID, link.Attempt, kind.String())
	case types.LinkConnected:
		s := fmtx.Sprintf("connected %s %d dBm (%s)", link.Profile.SSID, link.SignalDBm, kind.String())
		if link.IP != "" {
			s += " ip " + link.IP
		}
		return s
	case types.LinkFailed:
		return "failed " + string(link.Reason) + " (" + kind.String() + ")"
	default:
		return "disconnected (" + kind.String() + ")"
	}
}

func timeText(ts types.TimeSnapshot) string {
	if ts.Source == types.TimeUnset {
		return "unset"
	}
	t := time.Unix(ts.EpochSeconds, 0).UTC()
	return fmtx.Sprintf("%s (%s, synced %ds ago)", t.Format("2006-01-02 15:04:05"), ts.Source.String(), ts.SinceLastSync)
}

func sensorText(snap types.SensorSnapshot, have bool, age time.Duration) string {
	if !have {
		return "no readings yet"
	}
	return fmtx.Sprintf("%s C, %s %%RH, %s hPa (age %ds)",
		deciText(snap.DeciCelsius), deciText(snap.DeciRH), deciText(snap.PressureDPa/100),
		int64(age/time.Second))
}

func deciText(v int32) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return sign + strconvx.FormatInt(int64(v/10), 10) + "." + strconvx.FormatInt(int64(v%10), 10)
}

func uptimeText(d time.Duration) string {
	secs := int64(d / time.Second)
	return fmtx.Sprintf("%dh %dm %ds", secs/3600, secs%3600/60, secs%60)
}

func reportText(found map[string]bool, errs map[string]string) string {
	if len(found) == 0 {
		return "nothing to probe"
	}
	out := ""
	for name, present := range found {
		state := "missing"
		if present {
			state = "present"
		}
		out += name + ": " + state + "\r\n"
	}
	for busName, msg := range errs {
		out += busName + ": " + msg + "\r\n"
	}
	return trimCRLF(out)
}

func trimCRLF(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}

func parseEpoch(arg string) (int64, error) {
	v, err := strconvx.ParseInt(arg, 10, 64)
	if err != nil || v < 0 {
		return 0, &errcode.E{C: errcode.InvalidParams, Op: "console.time", Msg: "epoch seconds expected"}
	}
	return v, nil
}
