package screen

import (
	"time"

	"weatherunit-go/types"
	"weatherunit-go/x/fmtx"
	"weatherunit-go/x/strconvx"
)

// Field formatting. Integer deci units throughout, no floats.

// deci renders tenths as a one-decimal string: 234 -> "23.4", -5 -> "-0.5".
func deci(v int32) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return sign + strconvx.FormatInt(int64(v/10), 10) + "." + strconvx.FormatInt(int64(v%10), 10)
}

func pad2(v int) string {
	if v < 10 {
		return "0" + strconvx.Itoa(v)
	}
	return strconvx.Itoa(v)
}

func clockHM(ts types.TimeSnapshot) string {
	if ts.Source == types.TimeUnset {
		return "--:--"
	}
	t := time.Unix(ts.EpochSeconds, 0).UTC()
	return pad2(t.Hour()) + ":" + pad2(t.Minute())
}

func fillClock(fields map[string]string, ts types.TimeSnapshot) {
	fields["source"] = ts.Source.String()
	if ts.Source == types.TimeUnset {
		fields["time"] = "--:--:--"
		fields["date"] = "----------"
		return
	}
	t := time.Unix(ts.EpochSeconds, 0).UTC()
	fields["time"] = pad2(t.Hour()) + ":" + pad2(t.Minute()) + ":" + pad2(t.Second())
	fields["date"] = fmtx.Sprintf("%d-%s-%s", t.Year(), pad2(int(t.Month())), pad2(t.Day()))
	fields["synced"] = fmtx.Sprintf("%ds ago", ts.SinceLastSync)
}

func fillWifi(fields map[string]string, link types.LinkState, kind types.TransportKind) {
	fields["transport"] = kind.String()
	fields["phase"] = link.Phase.String()
	switch link.Phase {
	case types.LinkConnecting:
		fields["ssid"] = link.Profile.SSID
		fields["attempt"] = strconvx.Itoa(link.Attempt)
	case types.LinkConnected:
		fields["ssid"] = link.Profile.SSID
		fields["rssi"] = fmtx.Sprintf("%d dBm", link.SignalDBm)
		if link.IP != "" {
			fields["ip"] = link.IP
		}
	case types.LinkFailed:
		fields["reason"] = string(link.Reason)
	}
}

func fillRadio(fields map[string]string, c types.ControllerSnapshot, fitted bool) {
	if !fitted {
		fields["status"] = "not fitted"
		return
	}
	// kHz to tenths of MHz
	fields["freq"] = deci(c.FreqKHz/100) + " MHz"
	fields["muted"] = boolField(c.Muted)
	fields["power"] = boolField(c.PowerOn)
}

func fillDiagnostics(fields map[string]string, in Inputs) {
	fields["uptime"] = uptime(in.Uptime)
	fields["transport"] = in.Transport.String()
	fields["link"] = in.Link.Phase.String()
	fields["sensor_age"] = fmtx.Sprintf("%ds", int64(in.SensorAge/time.Second))
}

func boolField(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func uptime(d time.Duration) string {
	secs := int64(d / time.Second)
	return fmtx.Sprintf("%dh%sm%ss", secs/3600, pad2(int(secs%3600/60)), pad2(int(secs%60)))
}
