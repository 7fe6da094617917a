package ftdi

import (
	"time"

	"periph.io/x/conn/v3/physic"
)

// DefaultFrequency is the SWCLK rate used when no half-cycle duration is
// given explicitly (spec §6): ~500Hz, a 1ms half-cycle.
const DefaultFrequency physic.Frequency = 500 * physic.Hertz

// HalfCycle converts a SWCLK frequency into the T/2 sleep duration the
// executor's clocking loop drives each clock phase with. freq <= 0 falls
// back to DefaultFrequency.
func HalfCycle(freq physic.Frequency) time.Duration {
	if freq <= 0 {
		freq = DefaultFrequency
	}
	hz := int64(freq / physic.Hertz)
	if hz <= 0 {
		hz = 1
	}
	return time.Second / time.Duration(2*hz)
}
