package bits

import (
	"reflect"
	"testing"
)

func TestMSBFirst(t *testing.T) {
	got := MSBFirst(0b10000101, 8)
	want := Seq{1, 0, 0, 0, 0, 1, 0, 1}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("MSBFirst(0x85,8) = %v, want %v", got, want)
	}
}

func TestLSBFirst(t *testing.T) {
	got := LSBFirst(0b10000101, 8)
	want := Seq{1, 0, 1, 0, 0, 0, 0, 1}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("LSBFirst(0x85,8) = %v, want %v", got, want)
	}
}

func TestToUint(t *testing.T) {
	cases := []struct {
		in   Seq
		want uint32
	}{
		{Seq{1, 0, 0, 0, 0, 0, 0, 0}, 0x1},
		{Seq{1, 1, 1, 1, 1, 1, 1, 1}, 0xFF},
		{Seq{0, 0, 0, 0, 0, 0, 0, 1}, 0x80},
	}
	for _, c := range cases {
		if got := ToUint(c.in); got != c.want {
			t.Errorf("ToUint(%v) = %#x, want %#x", c.in, got, c.want)
		}
	}
}

// TestRoundTrip exercises the identity described in spec §8: bits_to_bytes
// composed with LSBFirst is the identity on [0, 255].
func TestRoundTrip(t *testing.T) {
	for n := 0; n <= 255; n++ {
		got := ToUint(LSBFirst(uint32(n), 8))
		if got != uint32(n) {
			t.Fatalf("round trip failed for %d: got %d", n, got)
		}
	}
}

// TestMSBFirstIsBitReversed exercises the other half of spec §8: feeding the
// MSb-first form into ToUint (which always reads LSb-first) yields the
// bit-reversal of n.
func TestMSBFirstIsBitReversed(t *testing.T) {
	for n := 0; n <= 255; n++ {
		reversed := ToUint(MSBFirst(uint32(n), 8))
		// Bit-reverse n manually and compare.
		var want uint32
		for i := 0; i < 8; i++ {
			if n&(1<<uint(i)) != 0 {
				want |= 1 << uint(7-i)
			}
		}
		if reversed != want {
			t.Fatalf("MSBFirst(%d) read back as %d, want bit-reversal %d", n, reversed, want)
		}
	}
}

func TestParityAndCheck(t *testing.T) {
	if !CheckParity(0, Seq{0, 0}) {
		t.Error("parity of {0,0} should be 0")
	}
	if !CheckParity(1, Seq{0, 1}) {
		t.Error("parity of {0,1} should be 1")
	}
	if !CheckParity(0, Seq{1, 1}) {
		t.Error("parity of {1,1} should be 0")
	}
	for n := 0; n <= 255; n++ {
		data := MSBFirst(uint32(n), 8)
		if !CheckParity(Parity(data), data) {
			t.Fatalf("CheckParity(Parity(data), data) failed for n=%d", n)
		}
	}
}
