// Package swd builds SWD Request records: pure, side-effect-free
// constructors for every operation the DAP host side supports.
//
// Grounded on original_source/src/whatabanger/swd.py's Protocol class. Write
// to the AP DRW data register is out of scope (spec §1 Non-goals); only
// reads are implemented there.
package swd

import (
	stdbits "math/bits"

	swdbits "github.com/tinyprobe/swdhost/bits"
)

// ACK values a target can drive back during the ACK phase (spec §6).
const (
	AckOK    = 0b001
	AckWait  = 0b010
	AckFault = 0b100
)

// header packs the 8-bit SWD request header per spec §3 and returns it
// already in wire (LSb-first) order.
//
// apndp and rnw must each be 0 or 1; addr must be in [0,3].
func header(apndp, rnw, addr byte) (swdbits.Seq, error) {
	if addr > 3 {
		return nil, &InvalidArgumentError{Arg: "addr", Value: uint32(addr)}
	}
	parity := (apndp + rnw + byte(stdbits.OnesCount8(addr))) % 2

	var v byte
	v |= 1 << 0 // Start
	v |= apndp << 1
	v |= rnw << 2
	v |= (addr & 1) << 3        // A[2]
	v |= ((addr >> 1) & 1) << 4 // A[3]
	v |= parity << 5
	// Stop (bit 6) stays 0.
	v |= 1 << 7 // Park

	return swdbits.LSBFirst(uint32(v), 8), nil
}

// withParity appends the parity of data as its trailing bit, the convention
// every write/read-address builder below uses.
func withParity(data swdbits.Seq) swdbits.Seq {
	out := make(swdbits.Seq, len(data)+1)
	copy(out, data)
	out[len(data)] = swdbits.Parity(data)
	return out
}

// Read builds a read from DP/AP register `addr` (bank offset addr*4),
// apndp selecting DP (0) or AP (1).
func Read(addr, apndp byte) (Request, error) {
	cmd, err := header(apndp, 1, addr)
	if err != nil {
		return Request{}, err
	}
	return Request{Kind: KindRead, CMD: cmd}, nil
}

// IDR reads the DP IDR register (DP bank 0x0).
func IDR() Request {
	r, _ := Read(0, 0)
	return r
}

// RDBUFF reads the DP RDBUFF register (DP bank 0xC) — the "throwaway read"
// every AP access must be followed by to retrieve its real result.
func RDBUFF() Request {
	r, _ := Read(3, 0)
	return r
}

// STAT reads the DP CTRL/STAT register (DP bank 0x4).
func STAT() Request {
	r, _ := Read(1, 0)
	return r
}

// DRW reads the AP DRW data register (AP bank 0xC). Writing DRW is out of
// scope.
func DRW() (Request, error) {
	cmd, err := header(1, 1, 3)
	if err != nil {
		return Request{}, err
	}
	return Request{Kind: KindRead, CMD: cmd}, nil
}

// TAR writes the AP TAR address register (AP bank 0x4) with a 32-bit target
// address; subsequent DRW reads (or writes) operate on this address.
func TAR(addr uint32) (Request, error) {
	cmd, err := header(1, 0, 1)
	if err != nil {
		return Request{}, err
	}
	data := withParity(swdbits.LSBFirst(addr, 32))
	return Request{Kind: KindWrite, CMD: cmd, Data: data}, nil
}

// Select writes the DP (or AP, if apndp=1) SELECT register (bank 0x8),
// choosing the active AP number and the register bank within it.
func Select(apsel, apbanksel, dpbanksel, apndp byte) (Request, error) {
	cmd, err := header(apndp, 0, 2)
	if err != nil {
		return Request{}, err
	}
	msb := make(swdbits.Seq, 0, 32)
	msb = append(msb, swdbits.MSBFirst(uint32(apsel), 8)...)
	msb = append(msb, swdbits.Zeros(16)...)
	msb = append(msb, swdbits.MSBFirst(uint32(apbanksel), 4)...)
	msb = append(msb, swdbits.MSBFirst(uint32(dpbanksel), 4)...)
	data := withParity(swdbits.Reverse(msb))
	return Request{Kind: KindWrite, CMD: cmd, Data: data}, nil
}

// Abort writes the DP ABORT register (bank 0x0), clearing ORUNERRCLR,
// WDERRCLR, STKERRCLR and STKCMPCLR. DAPABORT and all reserved bits stay 0.
func Abort() (Request, error) {
	cmd, err := header(0, 0, 0)
	if err != nil {
		return Request{}, err
	}
	msb := make(swdbits.Seq, 0, 32)
	msb = append(msb, swdbits.Zeros(27)...)
	msb = append(msb, 1, 1, 1, 1) // ORUNERRCLR, WDERRCLR, STKERRCLR, STKCMPCLR
	msb = append(msb, 0)          // DAPABORT
	data := withParity(swdbits.Reverse(msb))
	return Request{Kind: KindWrite, CMD: cmd, Data: data}, nil
}

// Ctrl writes the DP CTRL/STAT register (bank 0x4), setting only the two
// power-up request bits; every other field (TRNCNT, MASKLANE, sticky flags,
// ...) stays 0.
func Ctrl(cdbgpwrupreq, csyspwrupreq byte) (Request, error) {
	cmd, err := header(0, 0, 1)
	if err != nil {
		return Request{}, err
	}
	msb := make(swdbits.Seq, 0, 32)
	msb = append(msb, 0)              // CSYSPWRUPACK
	msb = append(msb, csyspwrupreq&1) // CSYSPWRUPREQ
	msb = append(msb, 0)              // CDBGPWRUPACK
	msb = append(msb, cdbgpwrupreq&1) // CDBGPWRUPREQ
	msb = append(msb, swdbits.Zeros(28)...)
	data := withParity(swdbits.Reverse(msb))
	return Request{Kind: KindWrite, CMD: cmd, Data: data}, nil
}

// jtagToSWD is the documented JTAG-to-SWD switch sequence, transmitted
// LSb-first per byte, byte order preserved.
var jtagToSWD = append(
	append(swdbits.Seq{}, swdbits.LSBFirst(0x79, 8)...),
	swdbits.LSBFirst(0xE7, 8)...,
)

// Resync emits the SWD line-reset sequence: 50 ones, the JTAG-to-SWD switch
// code, 50 more ones, then 2 idle zeros. No ACK phase follows.
func Resync() Request {
	cmd := make(swdbits.Seq, 0, 50+16+50+2)
	cmd = append(cmd, swdbits.Ones(50)...)
	cmd = append(cmd, jtagToSWD...)
	cmd = append(cmd, swdbits.Ones(50)...)
	cmd = append(cmd, swdbits.Zeros(2)...)
	return Request{Kind: KindLineReset, CMD: cmd}
}
