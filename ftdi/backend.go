package ftdi

import (
	"context"
	"sync"

	"periph.io/x/conn/v3/gpio"

	"github.com/tinyprobe/swdhost/backend"
)

// Backend drives an FTDI FT2232-family DBus in asynchronous bit-bang mode,
// implementing backend.Backend. Grounded on the synchronous-bit-bang
// dbusSyncGPIO* methods of the teacher's FT232R device, adapted to the
// whole-byte port model the SWD executor clocks against instead of periph's
// per-pin gpio.PinIO abstraction.
type Backend struct {
	h *handle

	mu    sync.Mutex
	mask  byte
	value byte
}

var _ backend.Backend = (*Backend)(nil)

// SetDirection reconfigures the DBus pins selected by mask: each selected pin
// becomes an output where value has a 1 and an input where it has a 0. Pins
// outside mask keep their current direction.
func (b *Backend) SetDirection(mask, value byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	dir := (b.mask &^ mask) | (value & mask)
	if err := b.h.SetBitMode(dir, bitModeAsyncBitbang); err != nil {
		return err
	}
	b.mask = dir
	return nil
}

// WritePort drives the port's output pins to value. Input pins in value are
// ignored by the device.
func (b *Backend) WritePort(value byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	buf := [1]byte{value}
	if _, err := b.h.Write(buf[:]); err != nil {
		return err
	}
	b.value = value
	// The trace assumes the default pin mapping (backend.DefaultPinConfig);
	// it's a debug aid, not behavior, so a non-default mapping just mislabels
	// the two bits in the log line.
	logf("ftdi: dbus out %#02x (swclk=%s swdio=%s)", value,
		gpio.Level(value&0x01 != 0), gpio.Level(value&0x02 != 0))
	return nil
}

// ReadPort samples the current state of every DBus pin, input and output
// alike.
func (b *Backend) ReadPort() (byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var buf [1]byte
	if _, err := b.h.ReadAll(context.Background(), buf[:]); err != nil {
		return 0, err
	}
	logf("ftdi: dbus in %#02x (swdio=%s)", buf[0], gpio.Level(buf[0]&0x02 != 0))
	return buf[0], nil
}

// Close releases the underlying USB handle.
func (b *Backend) Close() error {
	return b.h.Close()
}
