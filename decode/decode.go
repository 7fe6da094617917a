// Package decode interprets the 32-bit payloads read back from a DAP's DP
// IDR, AP IDR and BASE registers into human-readable fields.
//
// Grounded on original_source/src/whatabanger/helpers.py's decode_dp_idr,
// decode_ap_idr and decode_baseaddr.
package decode

import (
	"fmt"

	"github.com/tinyprobe/swdhost/bits"
)

// InvalidLengthError reports that a decoder was handed something other than
// a 32-bit payload.
type InvalidLengthError struct {
	Want, Got int
}

func (e *InvalidLengthError) Error() string {
	return fmt.Sprintf("decode: payload must be %d bits, got %d", e.Want, e.Got)
}

// jep106 maps JEDEC JEP106 designer codes to a friendly name. Unrecognized
// codes render as "Unknown (0x...)".
var jep106 = map[uint32]string{
	571: "ARM (0x23B)",
}

// DesignerName looks up a JEP106 designer code.
func DesignerName(code uint32) string {
	if name, ok := jep106[code]; ok {
		return name
	}
	return fmt.Sprintf("Unknown (0x%x)", code)
}

// DPIDR is the decoded content of the SWD-DP IDR register, per ARM IHI0031
// §2.3.5.
type DPIDR struct {
	Designer                    string
	Version                     string
	MinimalDebugPortImplemented string
	PartNumber                  uint32
	Revision                    uint32
}

// DecodeDPIDR decodes a 32-bit LSb-first DP IDR payload.
func DecodeDPIDR(data bits.Seq) (DPIDR, error) {
	if len(data) != 32 {
		return DPIDR{}, &InvalidLengthError{Want: 32, Got: len(data)}
	}

	var d DPIDR
	d.Designer = DesignerName(bits.ToUint(data[1:12]))
	d.PartNumber = bits.ToUint(data[20:28])
	d.Revision = bits.ToUint(data[28:32])

	switch bits.ToUint(data[12:16]) {
	case 0:
		d.Version = "Reserved"
	case 1:
		d.Version = "DPv1"
	case 2:
		d.Version = "DPv2"
	default:
		d.Version = "Unknown"
	}

	if data[16] == 0 {
		d.MinimalDebugPortImplemented = "Yes"
	} else {
		d.MinimalDebugPortImplemented = "No"
	}
	return d, nil
}

// APIDR is the decoded content of an AP's IDR register, per ARM IHI0031
// §6.3.1.
type APIDR struct {
	Class              string
	Type               uint32
	Variant            uint32
	JEP106Identity     uint32
	JEP106Continuation uint32
	Revision           uint32
}

// DecodeAPIDR decodes a 32-bit LSb-first AP IDR payload.
func DecodeAPIDR(data bits.Seq) (APIDR, error) {
	if len(data) != 32 {
		return APIDR{}, &InvalidLengthError{Want: 32, Got: len(data)}
	}

	var a APIDR
	if data[16] == 1 {
		a.Class = "Memory AP (MEM-AP)"
	} else {
		a.Class = fmt.Sprintf("No Defined Class (0x%x)", bits.ToUint(data[13:17]))
	}
	a.Type = bits.ToUint(data[0:4])
	a.Variant = bits.ToUint(data[4:8])
	a.JEP106Identity = bits.ToUint(data[17:24])
	a.JEP106Continuation = bits.ToUint(data[24:28])
	a.Revision = bits.ToUint(data[28:32])
	return a, nil
}

// DecodeBaseAddr decodes a 32-bit LSb-first ROM table BASE payload into a
// byte-aligned address, per ARM IHI0031 §7.6.1: the low 12 bits are always
// zero, the upper 20 bits come from the payload.
func DecodeBaseAddr(data bits.Seq) (uint32, error) {
	if len(data) != 32 {
		return 0, &InvalidLengthError{Want: 32, Got: len(data)}
	}
	addr := make(bits.Seq, 32)
	copy(addr[12:], data[12:])
	return bits.ToUint(addr), nil
}
