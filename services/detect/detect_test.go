package detect

import (
	"testing"

	"weatherunit-go/services/probe"
	"weatherunit-go/types"
)

func TestDetectPrefersNativeRadio(t *testing.T) {
	handshakes := 0
	got := Detect(probe.Report{}, Board{Name: "pico_w", NativeRadio: true}, func() bool {
		handshakes++
		return true
	})
	if got != types.TransportNativeRadio {
		t.Fatalf("got %v", got)
	}
	if handshakes != 0 {
		t.Error("handshake attempted despite native radio")
	}
}

func TestDetectProbeReportedRadio(t *testing.T) {
	rep := probe.Report{Found: map[string]bool{"radio": true}}
	if got := Detect(rep, Board{Name: "custom"}, nil); got != types.TransportNativeRadio {
		t.Fatalf("got %v", got)
	}
}

func TestDetectFallsBackToSerialModule(t *testing.T) {
	got := Detect(probe.Report{}, Board{Name: "pico"}, func() bool { return true })
	if got != types.TransportExternalSerialModule {
		t.Fatalf("got %v", got)
	}
}

func TestDetectNone(t *testing.T) {
	if got := Detect(probe.Report{}, Board{Name: "pico"}, func() bool { return false }); got != types.TransportNone {
		t.Fatalf("got %v", got)
	}
	if got := Detect(probe.Report{}, Board{Name: "pico"}, nil); got != types.TransportNone {
		t.Fatalf("got %v", got)
	}
}
