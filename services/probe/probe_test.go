package probe

import (
	"errors"
	"testing"

	"tinygo.org/x/drivers"
)

// fakeI2C ACKs only the listed addresses.
type fakeI2C struct {
	present map[uint16]bool
	txs     int
}

func (f *fakeI2C) Tx(addr uint16, w, r []byte) error {
	f.txs++
	if f.present[addr] {
		return nil
	}
	return errors.New("no ack")
}

func TestScanReportsPresence(t *testing.T) {
	bus0 := &fakeI2C{present: map[uint16]bool{0x38: true}}
	bus1 := &fakeI2C{present: map[uint16]bool{0x76: true}}
	buses := map[string]drivers.I2C{"i2c0": bus0, "i2c1": bus1}

	rep := Scan(buses, []Target{
		{Name: "aht20", Bus: "i2c0", Addr: 0x38},
		{Name: "bmp280", Bus: "i2c1", Addr: 0x76},
		{Name: "ssd1306", Bus: "i2c0", Addr: 0x3c},
	})

	if !rep.Present("aht20") || !rep.Present("bmp280") {
		t.Errorf("expected aht20 and bmp280 present: %+v", rep.Found)
	}
	if rep.Present("ssd1306") {
		t.Error("ssd1306 reported present on empty address")
	}
	if bus0.txs != 2 || bus1.txs != 1 {
		t.Errorf("unexpected transaction counts: %d, %d", bus0.txs, bus1.txs)
	}
}

func TestScanUnknownBus(t *testing.T) {
	rep := Scan(nil, []Target{{Name: "aht20", Bus: "i2c9", Addr: 0x38}})
	if rep.Present("aht20") {
		t.Error("device on missing bus reported present")
	}
	if rep.Errors["i2c9"] == "" {
		t.Error("missing bus not recorded in errors")
	}
}
