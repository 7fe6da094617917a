// Command apwalk enumerates every possible AP (APSEL 0x00-0xFF) on a
// connected SWD DAP, reading each AP's IDR and ROMTABLE BASE register.
//
// Grounded on original_source/src/apwalk.py, reworked from a multiprocessing
// script into a flag-configured binary over the executor/ftdi packages.
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

// do runs req, validates the response's trailing parity bit, and returns the
// payload with the parity bit stripped.
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
		return nil, fmt.Errorf("apwalk: response failed parity check")
	}
	return payload, nil
}

func main() {
	deviceIndex := flag.Int("device", 0, "FTDI device enumeration index")
	swclk := flag.Uint("swclk", uint(backend.DefaultPinConfig().SWCLK), "SWCLK pin bit mask")
	swdio := flag.Uint("swdio", uint(backend.DefaultPinConfig().SWDIO), "SWDIO pin bit mask")
	freqHz := flag.Uint64("frequency", uint64(ftdi.DefaultFrequency/physic.Hertz), "SWCLK frequency in Hz")
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

	stat, err := swd.Read(0b01, 0)
	if err != nil {
		log.WithError(err).Fatal("building STAT read")
	}
	abort, err := swd.Abort()
	if err != nil {
		log.WithError(err).Fatal("building ABORT")
	}
	setup := []swd.Request{swd.Resync(), swd.IDR(), abort, stat}

	for apsel := 0; apsel <= 0xff; apsel++ {
		for _, req := range setup {
			if _, err := do(ex, req); err != nil {
				log.WithError(err).Fatal("link setup failed")
			}
		}

		if apsel == 0 {
			payload, err := do(ex, swd.IDR())
			if err != nil {
				log.WithError(err).Fatal("querying DP IDR")
			}
			idr, err := decode.DecodeDPIDR(payload)
			if err != nil {
				log.WithError(err).Warn("decoding DP IDR")
			} else {
				log.WithFields(log.Fields{
					"designer": idr.Designer,
					"version":  idr.Version,
					"partno":   fmt.Sprintf("%#x", idr.PartNumber),
				}).Info("DP IDR")
			}
		}

		log.WithField("apsel", fmt.Sprintf("%#02x", apsel)).Info("querying AP IDR")
		sel, err := swd.Select(byte(apsel), 0b1111, 0, 0)
		if err != nil {
			log.WithError(err).Fatal("building SELECT")
		}
		if _, err := do(ex, sel); err != nil {
			log.WithError(err).Error("SELECT failed")
			continue
		}

		apIDRReq, err := swd.Read(0b11, 1)
		if err != nil {
			log.WithError(err).Fatal("building AP IDR read")
		}
		if _, err := do(ex, apIDRReq); err != nil {
			log.WithError(err).Error("AP IDR read failed")
			continue
		}
		apIDRPayload, err := do(ex, swd.RDBUFF())
		if err != nil {
			log.WithError(err).Error("AP IDR RDBUFF failed")
			continue
		}
		if bits.ToUint(apIDRPayload) != 0 {
			apIDR, err := decode.DecodeAPIDR(apIDRPayload)
			if err != nil {
				log.WithError(err).Warn("decoding AP IDR")
			} else {
				log.WithFields(log.Fields{
					"apsel": fmt.Sprintf("%#02x", apsel),
					"class": apIDR.Class,
					"type":  fmt.Sprintf("%#x", apIDR.Type),
				}).Info("AP IDR")
			}
		}

		romtableReq, err := swd.Read(0b10, 1)
		if err != nil {
			log.WithError(err).Fatal("building ROMTABLE read")
		}
		if _, err := do(ex, romtableReq); err != nil {
			log.WithError(err).Error("ROMTABLE read failed")
			continue
		}
		romtablePayload, err := do(ex, swd.RDBUFF())
		if err != nil {
			log.WithError(err).Error("ROMTABLE RDBUFF failed")
			continue
		}
		base, err := decode.DecodeBaseAddr(romtablePayload)
		if err != nil {
			log.WithError(err).Warn("decoding ROMTABLE BASE")
			continue
		}
		if base != 0 {
			log.WithFields(log.Fields{
				"apsel": fmt.Sprintf("%#02x", apsel),
				"base":  fmt.Sprintf("%#08x", base),
			}).Info("AP ROMTABLE")
		}
	}
}
