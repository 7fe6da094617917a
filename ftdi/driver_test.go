// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ftdi

import (
	"testing"

	"periph.io/x/d2xx"
	"periph.io/x/d2xx/d2xxtest"
)

func fakeOpener(t *testing.T, devType DevType) func(i int) (d2xx.Handle, d2xx.Err) {
	return func(i int) (d2xx.Handle, d2xx.Err) {
		if i != 0 {
			t.Fatalf("unexpected index %d", i)
		}
		d := &d2xxtest.Fake{
			DevType: uint32(devType),
			Vid:     0x0403,
			Pid:     0x6010,
			Data:    [][]byte{{}, {0}},
		}
		return d, 0
	}
}

func TestEnumerate(t *testing.T) {
	defer reset(t)
	drv.numDevices = func() (int, error) { return 1, nil }
	drv.d2xxOpen = fakeOpener(t, DevTypeFT2232H)

	got, err := Enumerate()
	if err != nil {
		t.Fatalf("Enumerate() err = %v", err)
	}
	if len(got) != 1 || got[0].Type != DevTypeFT2232H {
		t.Fatalf("Enumerate() = %+v", got)
	}
}

func TestOpen(t *testing.T) {
	defer reset(t)
	drv.numDevices = func() (int, error) { return 1, nil }
	drv.d2xxOpen = fakeOpener(t, DevTypeFT2232H)

	b, err := Open(0, 0x03)
	if err != nil {
		t.Fatalf("Open() err = %v", err)
	}
	defer b.Close()
	if err := b.WritePort(0x01); err != nil {
		t.Fatalf("WritePort() err = %v", err)
	}
}

func reset(t *testing.T) {
	drv.reset()
}

func init() {
	reset(nil)
}
