package sensors

import (
	"time"

	"tinygo.org/x/drivers"

	"weatherunit-go/drivers/bmp280"
)

// BMP280 contributes pressure only; the AHT20 owns temperature.
type BMP280 struct {
	dev bmp280.Device
}

func NewBMP280(bus drivers.I2C, addr uint16) (*BMP280, error) {
	dev := bmp280.New(bus)
	if err := dev.Configure(addr); err != nil {
		return nil, err
	}
	return &BMP280{dev: dev}, nil
}

func (b *BMP280) Name() string        { return "bmp280" }
func (b *BMP280) Trigger() error      { return b.dev.Trigger() }
func (b *BMP280) Hint() time.Duration { return 50 * time.Millisecond }

func (b *BMP280) Collect() (Reading, error) {
	var s bmp280.Sample
	if err := b.dev.Collect(&s); err != nil {
		if err == bmp280.ErrNotReady {
			return Reading{}, ErrNotReady
		}
		return Reading{}, err
	}
	return Reading{
		PressureDPa: s.DeciPascal(),
		HasPressure: true,
	}, nil
}
