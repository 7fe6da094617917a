// Package executor implements the L1 bit-banging Executor: the clocking
// state machine that owns the GPIO backend and serializes/deserializes SWD
// Requests one at a time.
//
// Grounded on the teacher's (periph-host) convention of a dedicated goroutine
// owning exclusive hardware access, generalized per spec §5/§9: the Executor
// runs pinned to its own OS thread with elevated scheduling priority so
// Controller-side work (logging, allocation) can never starve a clock
// half-cycle. Request/Response handoff is grounded on
// samsamfire-gocanopen/internal/fifo, generalized into internal/queue.
package executor

import (
	"runtime"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"

	"github.com/tinyprobe/swdhost/backend"
	"github.com/tinyprobe/swdhost/bits"
	"github.com/tinyprobe/swdhost/internal/queue"
	"github.com/tinyprobe/swdhost/swd"
)

// Config configures a new Executor.
type Config struct {
	Backend backend.Backend

	// SWCLK and SWDIO are the port-bit masks of the clock and data pins.
	// Defaults to backend.DefaultPinConfig() if both are zero.
	SWCLK, SWDIO byte

	// HalfCycle is the fixed T/2 sleep between clock edges. Defaults to 1ms
	// (~500Hz) per spec §6.
	HalfCycle time.Duration

	// Logger receives lifecycle and error events. Defaults to
	// logrus.StandardLogger() if nil. Never called from inside a clock cycle.
	Logger *log.Logger
}

func (c *Config) setDefaults() {
	if c.SWCLK == 0 && c.SWDIO == 0 {
		pins := backend.DefaultPinConfig()
		c.SWCLK, c.SWDIO = pins.SWCLK, pins.SWDIO
	}
	if c.HalfCycle == 0 {
		c.HalfCycle = time.Millisecond
	}
	if c.Logger == nil {
		c.Logger = log.StandardLogger()
	}
}

// Result is what the Executor places on its outbound queue for every
// Request it consumes.
type Result struct {
	// Data is the 33-bit sampled payload for a READ request, otherwise nil.
	Data bits.Seq
	// Err is non-nil if the operation failed; the Controller distinguishes
	// "no data, success" from "failure" by checking this field rather than by
	// the absence of Data (spec §7).
	Err error
}

// Executor drives one SWD wire over a backend.Backend. Create with New,
// launch its clocking loop with Start, and issue blocking operations with Do.
type Executor struct {
	cfg Config

	inbound  *queue.Queue[swd.Request]
	outbound *queue.Queue[Result]

	stop chan struct{}
	done chan struct{}

	port byte // last written port snapshot; owned by the Executor goroutine only.
}

// New constructs an Executor. Call Start to begin clocking.
func New(cfg Config) *Executor {
	cfg.setDefaults()
	return &Executor{
		cfg:      cfg,
		inbound:  queue.New[swd.Request](),
		outbound: queue.New[Result](),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the clocking goroutine. It pins itself to its own OS thread
// and, on platforms where it's permitted, raises that thread's scheduling
// priority — the concrete realization of spec §5's "distinct OS-scheduled
// units ... with elevated/pinned scheduling" requirement.
func (e *Executor) Start() {
	go e.run()
}

// Stop halts the clocking loop after the in-flight request (if any)
// completes, and blocks until the goroutine has exited.
func (e *Executor) Stop() {
	close(e.stop)
	<-e.done
}

// Do enqueues req and blocks for its Response. Only one Controller goroutine
// should call Do at a time: the 1:1 Request/Response ordering guarantee in
// spec §5 relies on a single caller serializing its own calls.
func (e *Executor) Do(req swd.Request) (bits.Seq, error) {
	e.inbound.Push(req)
	res, ok := e.outbound.Pop()
	if !ok {
		return nil, &BackendError{Op: "Do", Err: errExecutorStopped}
	}
	return res.Data, res.Err
}

func (e *Executor) run() {
	defer close(e.done)

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	if err := unix.Setpriority(unix.PRIO_PROCESS, 0, -10); err != nil {
		e.cfg.Logger.WithError(err).Debug("executor: could not raise scheduling priority, continuing at default")
	}

	if err := e.cfg.Backend.SetDirection(e.cfg.SWCLK|e.cfg.SWDIO, e.cfg.SWCLK|e.cfg.SWDIO); err != nil {
		e.cfg.Logger.WithError(err).Error("executor: initial SetDirection failed")
	}

	e.cfg.Logger.Info("executor: clocking loop started")
	for {
		select {
		case <-e.stop:
			e.outbound.Close()
			e.cfg.Logger.Info("executor: clocking loop stopped")
			return
		default:
		}

		req, ok := e.inbound.TryPop()
		if !ok {
			if err := e.idleClock(); err != nil {
				e.cfg.Logger.WithError(err).Error("executor: idle clock failed")
			}
			continue
		}

		data, err := e.execute(req)
		if err != nil {
			e.cfg.Logger.WithError(err).Warn("executor: operation failed")
		}
		e.outbound.Push(Result{Data: data, Err: err})
	}
}

// idleClock toggles SWCLK for one full cycle with no bit driven or sampled,
// so the target always sees a live clock between Requests (spec §4.2).
func (e *Executor) idleClock() error {
	return e.clockCycle(nil, nil)
}

// execute runs the per-Request state machine of spec §4.2.
func (e *Executor) execute(req swd.Request) (bits.Seq, error) {
	if err := e.cfg.Backend.SetDirection(e.cfg.SWCLK|e.cfg.SWDIO, e.cfg.SWCLK|e.cfg.SWDIO); err != nil {
		return nil, &BackendError{Op: "SetDirection", Err: err}
	}
	for _, b := range req.CMD {
		bit := b
		if err := e.clockCycle(nil, &bit); err != nil {
			return nil, err
		}
	}

	if !req.ACK() {
		return nil, nil
	}

	// TURN1: release SWDIO before the turnaround cycle so host and target
	// never drive it simultaneously.
	if err := e.cfg.Backend.SetDirection(e.cfg.SWCLK|e.cfg.SWDIO, e.cfg.SWCLK); err != nil {
		return nil, &BackendError{Op: "SetDirection", Err: err}
	}
	if err := e.clockCycle(nil, nil); err != nil {
		return nil, err
	}

	var ackBits [3]byte
	for i := range ackBits {
		if err := e.clockCycle(&ackBits[i], nil); err != nil {
			return nil, err
		}
	}
	ack := bits.ToUint(ackBits[:])
	if ack != 1 {
		return nil, &AckError{Value: byte(ack), Kind: classifyAck(byte(ack))}
	}

	var result bits.Seq
	if len(req.Data) > 0 {
		// TURN2: turnaround back to host before driving DATA.
		if err := e.clockCycle(nil, nil); err != nil {
			return nil, err
		}
		if err := e.cfg.Backend.SetDirection(e.cfg.SWCLK|e.cfg.SWDIO, e.cfg.SWCLK|e.cfg.SWDIO); err != nil {
			return nil, &BackendError{Op: "SetDirection", Err: err}
		}
		for _, b := range req.Data {
			bit := b
			if err := e.clockCycle(nil, &bit); err != nil {
				return nil, err
			}
		}
	} else if req.ReadsData() {
		sampled := make(bits.Seq, 33)
		for i := range sampled {
			if err := e.clockCycle(&sampled[i], nil); err != nil {
				return nil, err
			}
		}
		// The 34th bit is the turnaround back to host, not data (spec §9).
		var discard byte
		if err := e.clockCycle(&discard, nil); err != nil {
			return nil, err
		}
		result = sampled
	}

	if err := e.cfg.Backend.SetDirection(e.cfg.SWCLK|e.cfg.SWDIO, e.cfg.SWCLK|e.cfg.SWDIO); err != nil {
		return nil, &BackendError{Op: "SetDirection", Err: err}
	}
	zero := byte(0)
	for i := 0; i < 8; i++ {
		if err := e.clockCycle(nil, &zero); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// clockCycle drives one SWCLK high/low cycle. If sample is non-nil, SWDIO is
// read right after the rising edge. If drive is non-nil, SWDIO is set to
// *drive right at the falling edge — the two points spec §4.2 documents for
// target-driven and host-driven bits respectively.
func (e *Executor) clockCycle(sample, drive *byte) error {
	if err := e.writePort(e.port | e.cfg.SWCLK); err != nil {
		return err
	}
	time.Sleep(e.cfg.HalfCycle)

	if sample != nil {
		v, err := e.cfg.Backend.ReadPort()
		if err != nil {
			return &BackendError{Op: "ReadPort", Err: err}
		}
		if v&e.cfg.SWDIO != 0 {
			*sample = 1
		} else {
			*sample = 0
		}
	}

	next := e.port &^ e.cfg.SWCLK
	if drive != nil {
		if *drive != 0 {
			next |= e.cfg.SWDIO
		} else {
			next &^= e.cfg.SWDIO
		}
	}
	if err := e.writePort(next); err != nil {
		return err
	}
	time.Sleep(e.cfg.HalfCycle)
	return nil
}

func (e *Executor) writePort(v byte) error {
	if err := e.cfg.Backend.WritePort(v); err != nil {
		return &BackendError{Op: "WritePort", Err: err}
	}
	e.port = v
	return nil
}
