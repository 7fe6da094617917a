package executor

import (
	"testing"
	"time"

	"github.com/tinyprobe/swdhost/backend"
	"github.com/tinyprobe/swdhost/bits"
	"github.com/tinyprobe/swdhost/swd"
)

func newTestExecutor(fake *backend.Fake) *Executor {
	return New(Config{
		Backend:   fake,
		HalfCycle: time.Microsecond,
	})
}

// ackOKReads returns the 3 ReadPort bytes that make the ACK phase sample
// OK (LSb-first 1,0,0 -> integer 1).
func ackOKReads() []byte {
	return []byte{0x02, 0x00, 0x00}
}

func TestDoReadSuccess(t *testing.T) {
	fake := &backend.Fake{}
	// ACK=OK, then 33 zero data bits, then 1 discarded turnaround bit.
	reads := append(ackOKReads(), make([]byte, 34)...)
	fake.Reads = reads

	e := newTestExecutor(fake)
	e.Start()
	defer e.Stop()

	req := swd.IDR()
	data, err := e.Do(req)
	if err != nil {
		t.Fatalf("Do() err = %v", err)
	}
	if len(data) != 33 {
		t.Fatalf("Do() data length = %d, want 33", len(data))
	}
	for i, b := range data {
		if b != 0 {
			t.Fatalf("data[%d] = %d, want 0", i, b)
		}
	}
	if fake.Direction()&0x01 == 0 {
		t.Errorf("SWCLK should remain an output")
	}
}

func TestDoWriteSuccess(t *testing.T) {
	fake := &backend.Fake{}
	fake.Reads = ackOKReads()

	e := newTestExecutor(fake)
	e.Start()
	defer e.Stop()

	req, err := swd.TAR(0x1000)
	if err != nil {
		t.Fatalf("TAR() err = %v", err)
	}
	data, err := e.Do(req)
	if err != nil {
		t.Fatalf("Do() err = %v", err)
	}
	if len(data) != 0 {
		t.Fatalf("Do() data length = %d, want 0 for a write", len(data))
	}
}

func TestDoAckFault(t *testing.T) {
	fake := &backend.Fake{}
	// LSb-first 0,0,1 -> integer 4 (FAULT).
	fake.Reads = []byte{0x00, 0x00, 0x02}

	e := newTestExecutor(fake)
	e.Start()
	defer e.Stop()

	_, err := e.Do(swd.IDR())
	ackErr, ok := err.(*AckError)
	if !ok {
		t.Fatalf("Do() err = %v, want *AckError", err)
	}
	if ackErr.Kind != AckFault {
		t.Errorf("AckError.Kind = %v, want AckFault", ackErr.Kind)
	}
}

func TestDoResyncSkipsACK(t *testing.T) {
	fake := &backend.Fake{}
	e := newTestExecutor(fake)
	e.Start()
	defer e.Stop()

	data, err := e.Do(swd.Resync())
	if err != nil {
		t.Fatalf("Do() err = %v", err)
	}
	if len(data) != 0 {
		t.Fatalf("Do() data length = %d, want 0 for resync", len(data))
	}
	if len(fake.Writes) == 0 {
		t.Fatalf("resync should still drive SWCLK/SWDIO")
	}
}

func TestIdleClockKeepsToggling(t *testing.T) {
	fake := &backend.Fake{}
	e := newTestExecutor(fake)
	e.Start()
	time.Sleep(5 * time.Millisecond)
	e.Stop()

	if len(fake.Writes) < 2 {
		t.Fatalf("expected the idle loop to toggle SWCLK repeatedly, got %d writes", len(fake.Writes))
	}
}

func TestParityInvariantOnReadResponse(t *testing.T) {
	fake := &backend.Fake{}
	reads := append(ackOKReads(), make([]byte, 34)...)
	fake.Reads = reads

	e := newTestExecutor(fake)
	e.Start()
	defer e.Stop()

	data, err := e.Do(swd.IDR())
	if err != nil {
		t.Fatalf("Do() err = %v", err)
	}
	last := len(data) - 1
	if got, want := data[last], bits.Parity(data[:last]); got != want {
		t.Errorf("trailing parity = %d, want %d (Controller-side check per spec §7)", got, want)
	}
}
