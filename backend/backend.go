// Package backend defines the narrow GPIO boundary the executor drives the
// SWD wire through.
//
// This is deliberately the only contact point between the protocol-level
// packages (swd, decode, executor) and whatever USB/GPIO hardware actually
// toggles the pins. The ftdi package is one concrete implementation; tests
// use Fake.
package backend

// Backend is the abstract two-wire GPIO boundary described in the ARM SWD
// wire protocol host design: set pin direction, drive a port-wide byte, read
// a port-wide byte back. It owns no protocol knowledge.
type Backend interface {
	// SetDirection reconfigures which bits of the port are outputs.
	//
	// mask selects which bits are being reconfigured; value sets, for each
	// selected bit, whether it becomes an output (1) or an input (0). Bits
	// outside mask are left as they were.
	SetDirection(mask, value byte) error

	// WritePort drives the full port to the given byte. Bits configured as
	// inputs are ignored by the hardware but still recorded.
	WritePort(value byte) error

	// ReadPort samples the full port and returns its current value.
	ReadPort() (byte, error)

	// Close releases the underlying device.
	Close() error
}

// PinConfig names which bits of the port carry SWCLK and SWDIO.
//
// The ARM SWD default for a bit-banged FT2232-family bridge is SWCLK on bit 0
// (0x01), SWDIO on bit 1 (0x02).
type PinConfig struct {
	SWCLK byte
	SWDIO byte
}

// DefaultPinConfig returns the FT2232-family defaults documented in the SWD
// host design: SWCLK = bit 0, SWDIO = bit 1.
func DefaultPinConfig() PinConfig {
	return PinConfig{SWCLK: 0x01, SWDIO: 0x02}
}
