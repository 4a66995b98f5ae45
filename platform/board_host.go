//go:build !(rp2040 || rp2350)

package platform

import (
	"io"
	"net"
	"os"
	"time"

	"tinygo.org/x/drivers"

	"weatherunit-go/services/timesync"
	"weatherunit-go/types"
)

// Host build: no peripherals, text rendering to stdout, real UDP for
// SNTP. Useful for running the firmware loop on a workstation.

func Setup(cfg types.Config) (*Board, error) {
	server := cfg.Time.NTPServer
	if server == "" {
		server = "pool.ntp.org"
	}
	return &Board{
		Name:       "host",
		Buses:      map[string]drivers.I2C{},
		Renderer:   &textRenderer{out: os.Stdout},
		ReadLevels: func() [types.ButtonCount]bool { return [types.ButtonCount]bool{} },
		ConsoleIn:  os.Stdin,
		ConsoleOut: os.Stdout,
		DialUDP: func() (timesync.Conn, error) {
			return net.DialTimeout("udp", server+":123", 3*time.Second)
		},
	}, nil
}

// textRenderer prints each new frame as indented lines.
type textRenderer struct {
	out io.Writer
}

func (r *textRenderer) Draw(frame types.ScreenFrame) error {
	for i, line := range FrameLines(frame, 0) {
		prefix := "  "
		if i == 0 {
			prefix = "[screen] "
		}
		if _, err := io.WriteString(r.out, prefix+line+"\n"); err != nil {
			return err
		}
	}
	return nil
}
