package backend

import "sync"

// Fake is an in-memory Backend used by tests. It records every port write
// and lets a test script the bytes returned by ReadPort, the way
// periph.io/x/d2xx/d2xxtest.Fake scripts raw USB reads for the real driver.
type Fake struct {
	mu sync.Mutex

	direction byte
	port      byte

	// Writes records every byte passed to WritePort, in order.
	Writes []byte

	// Reads is consumed front-to-back by ReadPort. Once exhausted, ReadPort
	// keeps returning the last port value written.
	Reads []byte
	rpos  int

	Closed bool
}

func (f *Fake) SetDirection(mask, value byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.direction = (f.direction &^ mask) | (value & mask)
	return nil
}

func (f *Fake) WritePort(value byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.port = value
	f.Writes = append(f.Writes, value)
	return nil
}

func (f *Fake) ReadPort() (byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.rpos < len(f.Reads) {
		v := f.Reads[f.rpos]
		f.rpos++
		return v, nil
	}
	return f.port, nil
}

func (f *Fake) Close() error {
	f.Closed = true
	return nil
}

// Direction returns the current direction mask (1 = output), for assertions.
func (f *Fake) Direction() byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.direction
}

var _ Backend = (*Fake)(nil)
