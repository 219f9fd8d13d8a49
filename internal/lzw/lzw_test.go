package lzw

import (
	"bytes"
	"io"
	"testing"

	stdlzw "compress/lzw"
)

// unpackSubBlocks strips the length-prefixed sub-block framing, returning
// the raw packed-code stream stdlib's reader expects.
func unpackSubBlocks(t *testing.T, packed []byte) []byte {
	t.Helper()
	var raw []byte
	i := 0
	for {
		if i >= len(packed) {
			t.Fatalf("sub-block stream ended without terminator")
		}
		n := int(packed[i])
		i++
		if n == 0 {
			break
		}
		raw = append(raw, packed[i:i+n]...)
		i += n
	}
	if i != len(packed) {
		t.Fatalf("trailing bytes after terminator: %d remain", len(packed)-i)
	}
	return raw
}

func roundTrip(t *testing.T, colorBits int, indices []byte) []byte {
	t.Helper()
	enc := New(colorBits)
	packed := enc.Encode(indices)
	raw := unpackSubBlocks(t, packed)

	r := stdlzw.NewReader(bytes.NewReader(raw), stdlzw.LSB, enc.MinCodeSize())
	defer r.Close()
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("stdlib lzw decode: %v", err)
	}
	return got
}

func TestRoundTripSolid(t *testing.T) {
	indices := bytes.Repeat([]byte{3}, 10000)
	got := roundTrip(t, 2, indices)
	if !bytes.Equal(got, indices) {
		t.Fatalf("round trip mismatch: got %d bytes, want %d", len(got), len(indices))
	}
}

func TestRoundTripVaried(t *testing.T) {
	indices := make([]byte, 5000)
	for i := range indices {
		indices[i] = byte((i*37 + i/17) % 256)
	}
	got := roundTrip(t, 8, indices)
	if !bytes.Equal(got, indices) {
		t.Fatalf("round trip mismatch on varied stream")
	}
}

func TestRoundTripEmpty(t *testing.T) {
	got := roundTrip(t, 2, nil)
	if len(got) != 0 {
		t.Fatalf("round trip of empty input produced %d bytes", len(got))
	}
}

func TestRoundTripForcesTableClear(t *testing.T) {
	// Long, low-entropy-but-not-trivial stream forces the code table past
	// 4096 entries at least once, exercising the mid-stream CLEAR path.
	indices := make([]byte, 20000)
	for i := range indices {
		indices[i] = byte((i % 200))
	}
	got := roundTrip(t, 8, indices)
	if !bytes.Equal(got, indices) {
		t.Fatalf("round trip mismatch after forced table clear")
	}
}

func TestMinCodeSizeFloor(t *testing.T) {
	if New(1).MinCodeSize() != 2 {
		t.Fatalf("MinCodeSize() for 1-bit palette = %d, want floor of 2", New(1).MinCodeSize())
	}
}
