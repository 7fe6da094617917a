// Command sramread dumps a target's SRAM range via repeated TAR/DRW/RDBUFF
// reads.
//
// Grounded on original_source/src/sramread.py, reworked from a
// multiprocessing script into a flag-configured binary over the
// executor/ftdi packages.
package main

import (
	"flag"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/physic"

	"github.com/tinyprobe/swdhost/backend"
	"github.com/tinyprobe/swdhost/bits"
	"github.com/tinyprobe/swdhost/executor"
	"github.com/tinyprobe/swdhost/ftdi"
	"github.com/tinyprobe/swdhost/swd"
)

func do(ex *executor.Executor, req swd.Request) (bits.Seq, error) {
	data, err := ex.Do(req)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}
	parity, payload := data[len(data)-1], data[:len(data)-1]
	if !bits.CheckParity(parity, payload) {
		return nil, fmt.Errorf("sramread: response failed parity check")
	}
	return payload, nil
}

func main() {
	deviceIndex := flag.Int("device", 0, "FTDI device enumeration index")
	swclk := flag.Uint("swclk", uint(backend.DefaultPinConfig().SWCLK), "SWCLK pin bit mask")
	swdio := flag.Uint("swdio", uint(backend.DefaultPinConfig().SWDIO), "SWDIO pin bit mask")
	freqHz := flag.Uint64("frequency", uint64(ftdi.DefaultFrequency/physic.Hertz), "SWCLK frequency in Hz")
	start := flag.Uint64("start", 0x20000000, "first address to read (inclusive)")
	end := flag.Uint64("end", 0x40000000, "last address to read (inclusive)")
	flag.Parse()

	halfCycle := ftdi.HalfCycle(physic.Frequency(*freqHz) * physic.Hertz)

	log.SetLevel(log.InfoLevel)

	be, err := ftdi.Open(*deviceIndex, byte(*swclk)|byte(*swdio))
	if err != nil {
		fmt.Printf("could not open FTDI device %d: %v\n", *deviceIndex, err)
		os.Exit(1)
	}
	defer be.Close()

	ex := executor.New(executor.Config{
		Backend:   be,
		SWCLK:     byte(*swclk),
		SWDIO:     byte(*swdio),
		HalfCycle: halfCycle,
	})
	ex.Start()
	defer ex.Stop()

	abort, err := swd.Abort()
	if err != nil {
		log.WithError(err).Fatal("building ABORT")
	}
	setup := []swd.Request{swd.Resync(), swd.IDR(), abort}
	for _, req := range setup {
		if _, err := do(ex, req); err != nil {
			log.WithError(err).Fatal("link setup failed")
		}
	}

	for addr := *start; addr <= *end; addr += 4 {
		tar, err := swd.TAR(uint32(addr))
		if err != nil {
			log.WithError(err).Fatal("building TAR")
		}
		if _, err := do(ex, tar); err != nil {
			log.WithError(err).WithField("addr", fmt.Sprintf("%#08x", addr)).Error("TAR failed")
			continue
		}

		drw, err := swd.DRW()
		if err != nil {
			log.WithError(err).Fatal("building DRW")
		}
		if _, err := do(ex, drw); err != nil {
			log.WithError(err).WithField("addr", fmt.Sprintf("%#08x", addr)).Error("DRW failed")
			continue
		}

		payload, err := do(ex, swd.RDBUFF())
		if err != nil {
			log.WithError(err).WithField("addr", fmt.Sprintf("%#08x", addr)).Error("RDBUFF failed")
			continue
		}

		log.WithFields(log.Fields{
			"addr":  fmt.Sprintf("%#08x", addr),
			"value": fmt.Sprintf("%#08x", bits.ToUint(payload)),
		}).Info("word")
	}
}
