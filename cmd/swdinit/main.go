// Command swdinit performs a minimal SWD bring-up: line reset, a DP IDR
// read, a CTRL/STAT read, an ABORT write, SELECT into AP0 bank 0xF, and AP
// IDR / ROMTABLE BASE reads.
//
// Grounded on original_source/src/swdinit.py, reworked from a multiprocessing
// script into a flag-configured binary over the executor/ftdi packages, in
// the style of samsamfire-gocanopen/cmd/canopen's flag + logrus main.
package main

import (
	"flag"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/physic"

	"github.com/tinyprobe/swdhost/backend"
	"github.com/tinyprobe/swdhost/bits"
	"github.com/tinyprobe/swdhost/decode"
	"github.com/tinyprobe/swdhost/executor"
	"github.com/tinyprobe/swdhost/ftdi"
	"github.com/tinyprobe/swdhost/swd"
)

func main() {
	deviceIndex := flag.Int("device", 0, "FTDI device enumeration index")
	swclk := flag.Uint("swclk", uint(backend.DefaultPinConfig().SWCLK), "SWCLK pin bit mask")
	swdio := flag.Uint("swdio", uint(backend.DefaultPinConfig().SWDIO), "SWDIO pin bit mask")
	freqHz := flag.Uint64("frequency", uint64(ftdi.DefaultFrequency/physic.Hertz), "SWCLK frequency in Hz")
	debug := flag.Bool("debug", false, "enable debug logging (adds clock jitter)")
	flag.Parse()

	halfCycle := ftdi.HalfCycle(physic.Frequency(*freqHz) * physic.Hertz)

	log.SetLevel(log.InfoLevel)
	if *debug {
		log.SetLevel(log.DebugLevel)
		log.Warn("debug logging enabled: this adds clock jitter")
	}

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

	idr, err := swd.Read(0b01, 0)
	if err != nil {
		log.WithError(err).Fatal("building STAT read")
	}
	sel, err := swd.Select(0, 0b1111, 0, 0)
	if err != nil {
		log.WithError(err).Fatal("building SELECT")
	}
	apIDR, err := swd.Read(0b11, 1)
	if err != nil {
		log.WithError(err).Fatal("building AP IDR read")
	}
	romtable, err := swd.Read(0b10, 1)
	if err != nil {
		log.WithError(err).Fatal("building ROMTABLE read")
	}
	abort, err := swd.Abort()
	if err != nil {
		log.WithError(err).Fatal("building ABORT")
	}

	steps := []swd.Request{
		swd.Resync(),
		swd.IDR(),
		idr,
		abort,
		idr,
		sel,
		apIDR,
		romtable,
	}

	for i, req := range steps {
		data, err := ex.Do(req)
		if err != nil {
			log.WithError(err).WithField("step", i).Error("operation failed")
			continue
		}
		if len(data) == 0 {
			continue
		}
		parity, payload := data[len(data)-1], data[:len(data)-1]
		if !bits.CheckParity(parity, payload) {
			log.WithField("step", i).Error("response failed parity check")
			continue
		}
		log.WithFields(log.Fields{"step": i, "value": fmt.Sprintf("%#08x", bits.ToUint(payload))}).Info("response")
		if i == 1 {
			idrFields, err := decode.DecodeDPIDR(payload)
			if err != nil {
				log.WithError(err).Warn("decoding DP IDR")
				continue
			}
			log.WithFields(log.Fields{
				"designer": idrFields.Designer,
				"version":  idrFields.Version,
				"partno":   fmt.Sprintf("%#x", idrFields.PartNumber),
			}).Info("DP IDR")
		}
	}
}
