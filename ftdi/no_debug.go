//go:build !swdhost_ftdi_debug
// +build !swdhost_ftdi_debug

package ftdi

// logf is disabled when the build tag swdhost_ftdi_debug is not specified.
func logf(fmt string, v ...interface{}) {
}

func (d *driver) resetLog() {
}
