package swd

import "github.com/tinyprobe/swdhost/bits"

// Kind is the operation shape of a Request. It exists so the invariants in
// the wire protocol (ACK implies no DATA+READ both, etc.) are encoded
// statically by the type rather than by convention on a loosely-typed
// record — see spec §9's Design Notes.
type Kind int

const (
	// KindLineReset carries no ACK phase and no payload: the 50-1s / switch
	// code / 50-1s / 2-0s line-reset sequence.
	KindLineReset Kind = iota
	// KindRead performs an ACK phase followed by a 33-bit read.
	KindRead
	// KindWrite performs an ACK phase followed by a 33-bit write.
	KindWrite
)

// Request is a single SWD bus transaction, built by one of the functions in
// this package and handed to an executor.
type Request struct {
	Kind Kind

	// CMD is the 8-bit request header (or, for KindLineReset, the full
	// reset sequence), already in wire (LSb-first) order.
	CMD bits.Seq

	// Data is the 33-bit (32 data + 1 parity) payload to write. Only set
	// when Kind == KindWrite.
	Data bits.Seq
}

// ACK reports whether the wire should expect a target-driven ACK phase.
func (r Request) ACK() bool {
	return r.Kind != KindLineReset
}

// ReadsData reports whether the wire should sample 33 bits back from the
// target after the ACK phase.
func (r Request) ReadsData() bool {
	return r.Kind == KindRead
}
