//go:build rp2040 || rp2350

package platform

import (
	"image/color"
	"machine"
	"time"

	"github.com/jangala-dev/tinygo-uartx/uartx"
	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/ssd1306"

	"weatherunit-go/services/probe"
	"weatherunit-go/types"
)

// Device build: I2C0 carries the sensors and the OLED, UART1 carries the
// external serial radio module, the USB serial port carries the console.

const (
	oledAddr   = 0x3C
	oledWidth  = 128
	oledHeight = 64
)

func Setup(cfg types.Config) (*Board, error) {
	if err := machine.I2C0.Configure(machine.I2CConfig{Frequency: 400_000}); err != nil {
		return nil, err
	}
	buses := map[string]drivers.I2C{"i2c0": machine.I2C0}

	targets := []probe.Target{{Name: "ssd1306", Bus: "i2c0", Addr: oledAddr}}
	for name, addr := range cfg.Sensors.I2CAddrs {
		targets = append(targets, probe.Target{Name: name, Bus: "i2c0", Addr: uint16(addr)})
	}

	board := &Board{
		Name:         cfg.Board,
		NativeRadio:  cfg.Board == "pico_w",
		Buses:        buses,
		ProbeTargets: targets,
		Renderer:     newOLED(machine.I2C0),
		ReadLevels:   buttonReader(cfg.Buttons),
		ConsoleIn:    serialPort{},
		ConsoleOut:   serialPort{},
	}

	if !board.NativeRadio {
		if err := uartx.UART1.Configure(uartx.UARTConfig{
			BaudRate: 115200,
			TX:       uartx.UART1_TX_PIN,
			RX:       uartx.UART1_RX_PIN,
		}); err != nil {
			println("Error: uart configure failed:", err.Error())
		} else {
			board.UART = uartx.UART1
		}
	}
	// Native radio binding needs the vendor wifi stack linked in; the
	// Connector surface in services/netmgr is where it plugs in.

	return board, nil
}

// ---------- Buttons ----------

// buttonReader samples the four lines. Buttons are wired active-low with
// internal pull-ups.
func buttonReader(cfg types.ButtonConfig) func() [types.ButtonCount]bool {
	var pins [types.ButtonCount]machine.Pin
	for i := 0; i < types.ButtonCount; i++ {
		pins[i] = machine.Pin(cfg.Pins[i])
		pins[i].Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	}
	return func() [types.ButtonCount]bool {
		var levels [types.ButtonCount]bool
		for i := range pins {
			levels[i] = !pins[i].Get()
		}
		return levels
	}
}

// ---------- Console over USB serial ----------

type serialPort struct{}

func (serialPort) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	for machine.Serial.Buffered() == 0 {
		time.Sleep(5 * time.Millisecond)
	}
	b, err := machine.Serial.ReadByte()
	if err != nil {
		return 0, nil
	}
	p[0] = b
	return 1, nil
}

func (serialPort) Write(p []byte) (int, error) {
	return machine.Serial.Write(p)
}

// ---------- OLED renderer ----------

const (
	glyphWidth  = 6 // 5 columns + 1 spacing
	glyphHeight = 8 // 7 rows + 1 spacing
	oledCols    = oledWidth / glyphWidth
	oledRows    = oledHeight / glyphHeight
)

var (
	oledBlack = color.RGBA{}
	oledWhite = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

type oledRenderer struct {
	dev *ssd1306.Device
}

func newOLED(bus drivers.I2C) *oledRenderer {
	dev := ssd1306.NewI2C(bus)
	dev.Configure(ssd1306.Config{
		Address: oledAddr,
		Width:   oledWidth,
		Height:  oledHeight,
	})
	dev.ClearDisplay()
	return &oledRenderer{dev: &dev}
}

func (r *oledRenderer) Draw(frame types.ScreenFrame) error {
	r.dev.ClearBuffer()
	for row, line := range FrameLines(frame, oledCols) {
		if row >= oledRows {
			break
		}
		r.drawLine(row, line)
	}
	return r.dev.Display()
}

func (r *oledRenderer) drawLine(row int, line string) {
	y0 := int16(row * glyphHeight)
	for col := 0; col < len(line) && col < oledCols; col++ {
		g := Glyph(line[col])
		x0 := int16(col * glyphWidth)
		for cx := 0; cx < 5; cx++ {
			bits := g[cx]
			for cy := 0; cy < 7; cy++ {
				c := oledBlack
				if bits&(1<<uint(cy)) != 0 {
					c = oledWhite
				}
				r.dev.SetPixel(x0+int16(cx), y0+int16(cy), c)
			}
		}
	}
}
