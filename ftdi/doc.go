// Package ftdi drives an FTDI FT2232-family (or compatible FT232H/FT232R) USB
// bridge in asynchronous bit-bang mode and exposes it as a backend.Backend.
//
// Only the two pins needed for SWD (clock and data) are addressed here; the
// rest of the chip's capabilities (SPI, I2C, UART, MPSSE, EEPROM programming)
// are outside the scope of this module.
//
// Use build tag swdhost_ftdi_debug to enable verbose wire-level debugging.
//
// # Datasheets
//
// http://www.ftdichip.com/Support/Documents/DataSheets/ICs/DS_FT232R.pdf
//
// http://www.ftdichip.com/Support/Documents/DataSheets/ICs/DS_FT232H.pdf
package ftdi
