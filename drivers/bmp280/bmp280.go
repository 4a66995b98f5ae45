// Package bmp280 provides a driver for the BMP280 barometric pressure
// sensor, using forced-mode one-shot conversions:
//
//	d.Trigger()              // start a conversion (fast)
//	err := d.Collect(&s)     // fetch when ready; returns ErrNotReady while busy
//
// Compensation follows the datasheet's integer arithmetic; no floats.
// Pressure helpers return deci-pascal.
package bmp280

import (
	"errors"

	"tinygo.org/x/drivers"
)

// I2C addresses. SDO low selects 0x76, high 0x77.
const (
	Address    = 0x76
	AddressAlt = 0x77
)

const (
	regCalib    = 0x88
	regID       = 0xD0
	regReset    = 0xE0
	regStatus   = 0xF3
	regCtrlMeas = 0xF4
	regConfig   = 0xF5
	regData     = 0xF7

	chipID    = 0x58
	softReset = 0xB6

	// osrs_t x2, osrs_p x16, forced mode.
	ctrlForced = 0x55

	statusMeasuring = 0x08
)

// Errors returned by the driver.
var (
	ErrNotReady     = errors.New("bmp280: not ready")
	ErrNotFound     = errors.New("bmp280: wrong chip id")
	ErrUncalibrated = errors.New("bmp280: calibration not read")
)

type calibration struct {
	t1         uint16
	t2, t3     int16
	p1         uint16
	p2, p3, p4 int16
	p5, p6, p7 int16
	p8, p9     int16
}

// Device wraps an I2C connection to a BMP280 device.
type Device struct {
	bus     drivers.I2C
	Address uint16

	cal   calibration
	ready bool
	buf   [24]byte
}

// New creates a new BMP280 connection. The I2C bus must already be
// configured. This function only creates the Device object; it does not
// touch the device.
func New(bus drivers.I2C) Device {
	return Device{bus: bus, Address: Address}
}

// Configure verifies the chip id and reads the factory calibration.
func (d *Device) Configure(addr uint16) error {
	if addr != 0 {
		d.Address = addr
	}
	id := []byte{0}
	if err := d.bus.Tx(d.Address, []byte{regID}, id); err != nil {
		return err
	}
	if id[0] != chipID {
		return ErrNotFound
	}
	cal := d.buf[:24]
	if err := d.bus.Tx(d.Address, []byte{regCalib}, cal); err != nil {
		return err
	}
	d.cal = calibration{
		t1: u16(cal[0:]), t2: s16(cal[2:]), t3: s16(cal[4:]),
		p1: u16(cal[6:]), p2: s16(cal[8:]), p3: s16(cal[10:]),
		p4: s16(cal[12:]), p5: s16(cal[14:]), p6: s16(cal[16:]),
		p7: s16(cal[18:]), p8: s16(cal[20:]), p9: s16(cal[22:]),
	}
	d.ready = true
	// IIR filter off, no standby concerns in forced mode.
	return d.bus.Tx(d.Address, []byte{regConfig, 0x00}, nil)
}

// Trigger starts one forced-mode conversion. Quick register write, no
// blocking; the chip returns to sleep when done.
func (d *Device) Trigger() error {
	if !d.ready {
		return ErrUncalibrated
	}
	return d.bus.Tx(d.Address, []byte{regCtrlMeas, ctrlForced}, nil)
}

// Collect reads one measurement. ErrNotReady while the conversion is
// still running.
func (d *Device) Collect(out *Sample) error {
	st := []byte{0}
	if err := d.bus.Tx(d.Address, []byte{regStatus}, st); err != nil {
		return err
	}
	if st[0]&statusMeasuring != 0 {
		return ErrNotReady
	}
	data := d.buf[:6]
	if err := d.bus.Tx(d.Address, []byte{regData}, data); err != nil {
		return err
	}
	adcP := int32(data[0])<<12 | int32(data[1])<<4 | int32(data[2])>>4
	adcT := int32(data[3])<<12 | int32(data[4])<<4 | int32(data[5])>>4
	if out != nil {
		out.cal = d.cal
		out.RawPressure = adcP
		out.RawTemp = adcT
	}
	return nil
}

// Sample holds raw readings plus the calibration needed to compensate them.
type Sample struct {
	RawTemp     int32
	RawPressure int32
	cal         calibration
}

// tFine computes the shared fine-temperature term (datasheet 3.11.3).
func (s Sample) tFine() int32 {
	v1 := ((s.RawTemp >> 3) - int32(s.cal.t1)<<1) * int32(s.cal.t2) >> 11
	d := (s.RawTemp >> 4) - int32(s.cal.t1)
	v2 := ((d * d) >> 12) * int32(s.cal.t3) >> 14
	return v1 + v2
}

// DeciCelsius returns tenths of °C.
func (s Sample) DeciCelsius() int32 {
	// Centi-degrees per datasheet, halved to deci.
	return ((s.tFine()*5 + 128) >> 8) / 10
}

// DeciPascal returns tenths of Pa.
func (s Sample) DeciPascal() int32 {
	v1 := int64(s.tFine()) - 128000
	v2 := v1 * v1 * int64(s.cal.p6)
	v2 += (v1 * int64(s.cal.p5)) << 17
	v2 += int64(s.cal.p4) << 35
	v1 = (v1*v1*int64(s.cal.p3))>>8 + (v1*int64(s.cal.p2))<<12
	v1 = ((int64(1)<<47 + v1) * int64(s.cal.p1)) >> 33
	if v1 == 0 {
		return 0
	}
	p := int64(1048576 - s.RawPressure)
	p = ((p<<31 - v2) * 3125) / v1
	v1 = (int64(s.cal.p9) * (p >> 13) * (p >> 13)) >> 25
	v2 = (int64(s.cal.p8) * p) >> 19
	p = ((p + v1 + v2) >> 8) + int64(s.cal.p7)<<4
	// p is Pa in Q24.8; convert to deci-pascal.
	return int32(p * 10 / 256)
}

func u16(b []byte) uint16 { return uint16(b[0]) | uint16(b[1])<<8 }
func s16(b []byte) int16  { return int16(u16(b)) }
