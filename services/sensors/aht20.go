package sensors

import (
	"time"

	"tinygo.org/x/drivers"

	"weatherunit-go/drivers/aht20"
)

// AHT20 contributes temperature and humidity.
type AHT20 struct {
	dev aht20.Device
}

func NewAHT20(bus drivers.I2C, addr uint16) *AHT20 {
	dev := aht20.New(bus)
	dev.Configure(aht20.Config{Address: addr})
	return &AHT20{dev: dev}
}

func (a *AHT20) Name() string        { return "aht20" }
func (a *AHT20) Trigger() error      { return a.dev.Trigger() }
func (a *AHT20) Hint() time.Duration { return a.dev.TriggerHint() }

func (a *AHT20) Collect() (Reading, error) {
	var s aht20.Sample
	if err := a.dev.Collect(&s); err != nil {
		if err == aht20.ErrNotReady {
			return Reading{}, ErrNotReady
		}
		return Reading{}, err
	}
	return Reading{
		DeciCelsius: s.DeciCelsius(),
		HasTemp:     true,
		DeciRH:      s.DeciRelHumidity(),
		HasRH:       true,
	}, nil
}
