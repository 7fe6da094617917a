// Copyright 2018 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ftdi

import (
	"fmt"
	"sync"

	"periph.io/x/d2xx"
)

// Info describes one enumerated FTDI device without opening it for bit-bang
// use.
type Info struct {
	Index int
	Type  DevType
}

// Enumerate lists the connected FTDI devices, opening and immediately
// closing each one to read back its DevType.
func Enumerate() ([]Info, error) {
	drv.mu.Lock()
	opener, numDevices := drv.d2xxOpen, drv.numDevices
	drv.mu.Unlock()

	num, err := numDevices()
	if err != nil {
		return nil, err
	}
	out := make([]Info, 0, num)
	for i := 0; i < num; i++ {
		h, err := openHandle(opener, i)
		if err != nil {
			return nil, fmt.Errorf("ftdi: enumerate device %d: %w", i, err)
		}
		out = append(out, Info{Index: i, Type: h.t})
		_ = h.Close()
	}
	return out, nil
}

// Open opens the FTDI device at the given enumeration index and puts it in
// asynchronous bit-bang mode with every DBus pin direction set by mask (1 =
// output, 0 = input).
func Open(index int, mask byte) (*Backend, error) {
	drv.mu.Lock()
	opener := drv.d2xxOpen
	drv.mu.Unlock()

	h, err := openHandle(opener, index)
	if err != nil {
		return nil, err
	}
	if err := h.Init(); err != nil {
		// The device may be left in a state Init doesn't expect by a previous
		// run; reset and retry once before giving up.
		if err := h.Reset(); err != nil {
			_ = h.Close()
			return nil, err
		}
		if err := h.Init(); err != nil {
			_ = h.Close()
			return nil, err
		}
	}
	if err := h.SetBitMode(mask, bitModeAsyncBitbang); err != nil {
		_ = h.Close()
		return nil, err
	}
	return &Backend{h: h, mask: mask}, nil
}

// OpenFirst opens the first enumerated FTDI device. It is the common case
// when exactly one debug probe is attached to the host.
func OpenFirst(mask byte) (*Backend, error) {
	return Open(0, mask)
}

// driver owns the process-wide d2xx hooks so tests can substitute a fake
// d2xx.Handle opener without touching real USB hardware.
type driver struct {
	mu         sync.Mutex
	d2xxOpen   func(i int) (d2xx.Handle, d2xx.Err)
	numDevices func() (int, error)
}

func (d *driver) reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	// d2xxOpen and numDevices are mocked in tests.
	d.d2xxOpen = d2xx.Open
	d.numDevices = numDevices
}

func init() {
	drv.reset()
	drv.resetLog()
}

var drv driver
