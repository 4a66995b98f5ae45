package probe

import (
	"tinygo.org/x/drivers"
)

// -----------------------------------------------------------------------------
// I2C bus probe
//
// Scans the configured buses for the peripheral addresses we expect and
// reports presence per device. Runs at boot and on the console `probe`
// command; a missing device is a capability flag, never an error.
// -----------------------------------------------------------------------------

// Target is one expected peripheral.
type Target struct {
	Name string // device name, e.g. "aht20"
	Bus  string // bus name, e.g. "i2c0"
	Addr uint16 // 7-bit address
}

// Report holds one scan's results.
type Report struct {
	Found  map[string]bool   // device name -> responded
	Errors map[string]string // bus name -> error text for unusable buses
}

// Present reports whether a named device answered the last scan.
func (r Report) Present(name string) bool { return r.Found[name] }

// Scan probes every target once. A device is present iff a one-byte read
// transaction at its address is ACKed. Transactions are bounded by the bus
// implementation's own timeout.
func Scan(buses map[string]drivers.I2C, targets []Target) Report {
	rep := Report{
		Found:  make(map[string]bool, len(targets)),
		Errors: map[string]string{},
	}
	var scratch [1]byte
	for _, tg := range targets {
		bus, ok := buses[tg.Bus]
		if !ok {
			rep.Found[tg.Name] = false
			rep.Errors[tg.Bus] = "bus not configured"
			continue
		}
		err := bus.Tx(tg.Addr, nil, scratch[:])
		rep.Found[tg.Name] = err == nil
	}
	return rep
}
