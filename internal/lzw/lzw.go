// Package lzw implements the variable-code-width LZW compressor used by
// GIF89a image data (spec §4.7), packetized into 254-byte sub-blocks. It is
// grounded on the classic GIF-LZW encoder lineage (the retrieval pack's
// ManInM00N/nicogif LZWEncoder.go): a 5003-slot open hash table over
// (prefix, suffix) pairs, LSB-first bit packing, and CLEAR/EOF control
// codes. Its output is byte-identical to what Go's stdlib
// compress/lzw.NewReader(r, lzw.LSB, codeSize) can decode, which is how the
// round-trip tests in this package verify it without a second encoder.
package lzw

const (
	hsize    = 5003 // prime > 2^12, per the classic GIF-LZW hash table size
	maxbits  = 12
	maxmaxcode = 1 << maxbits
)

// Encoder compresses one image's index stream into GIF LZW sub-blocks. It is
// single-owner, single-use: construct with New, call Encode once.
type Encoder struct {
	minCodeSize int
	out         *blockWriter
}

// New creates an Encoder for a color-index stream over a palette containing
// 2^colorBits colors (colorBits in [2, 8], per spec §4.7: the minimum code
// size must be at least 2 even for 1-bit images).
func New(colorBits int) *Encoder {
	if colorBits < 2 {
		colorBits = 2
	}
	if colorBits > 8 {
		colorBits = 8
	}
	return &Encoder{minCodeSize: colorBits}
}

// MinCodeSize returns the LZW minimum code size byte that precedes the
// sub-block stream in the image data (spec §4.7 / §4.8).
func (e *Encoder) MinCodeSize() int { return e.minCodeSize }

// Encode compresses indices (one palette index per pixel, row-major) and
// returns the packed sub-blocks, each length-prefixed and terminated with a
// zero-length block per GIF89a (spec §4.7).
func (e *Encoder) Encode(indices []byte) []byte {
	bw := newBlockWriter()
	e.out = bw

	initCodeSize := e.minCodeSize + 1
	clearCode := 1 << e.minCodeSize
	eofCode := clearCode + 1

	var (
		codeSize  = initCodeSize
		nextCode  = eofCode + 1
		maxCode   = 1<<codeSize - 1
		htab      = make([]int32, hsize)
		codetab   = make([]int32, hsize)
	)
	resetHash := func() {
		for i := range htab {
			htab[i] = -1
		}
	}
	resetHash()

	bw.writeCode(clearCode, codeSize)

	if len(indices) == 0 {
		bw.writeCode(eofCode, codeSize)
		bw.flush()
		return bw.bytes()
	}

	ent := int32(indices[0])
	for _, px := range indices[1:] {
		c := int32(px)
		fcode := (c << maxbits) + ent
		hash := (int(c)<<(maxbits-8) ^ int(ent)) % hsize
		if hash < 0 {
			hash += hsize
		}

		found := false
		for htab[hash] != -1 {
			if htab[hash] == fcode {
				ent = codetab[hash]
				found = true
				break
			}
			hash++
			if hash >= hsize {
				hash -= hsize
			}
		}
		if found {
			continue
		}

		bw.writeCode(int(ent), codeSize)
		ent = c

		if nextCode < maxmaxcode {
			codetab[hash] = int32(nextCode)
			htab[hash] = fcode
			nextCode++
			// Widen once the code just assigned no longer fits, the same
			// point at which a decoder (one entry behind) widens.
			if nextCode > maxCode+1 && codeSize < maxbits {
				codeSize++
				maxCode = 1<<codeSize - 1
			}
		} else {
			bw.writeCode(clearCode, codeSize)
			resetHash()
			nextCode = eofCode + 1
			codeSize = initCodeSize
			maxCode = 1<<codeSize - 1
		}
	}

	bw.writeCode(int(ent), codeSize)
	// The decoder counts this last code too and may widen before reading EOF.
	if nextCode > maxCode && codeSize < maxbits {
		codeSize++
	}
	bw.writeCode(eofCode, codeSize)
	bw.flush()
	return bw.bytes()
}

// blockWriter packs variable-width LSB-first codes and packetizes the
// result into 254-byte sub-blocks prefixed by a length byte (spec §4.7).
type blockWriter struct {
	buf      []byte
	bitBuf   uint32
	bitCount uint
	pending  []byte
}

func newBlockWriter() *blockWriter {
	return &blockWriter{pending: make([]byte, 0, 254)}
}

func (w *blockWriter) writeCode(code, size int) {
	w.bitBuf |= uint32(code) << w.bitCount
	w.bitCount += uint(size)
	for w.bitCount >= 8 {
		w.pushByte(byte(w.bitBuf))
		w.bitBuf >>= 8
		w.bitCount -= 8
	}
}

func (w *blockWriter) pushByte(b byte) {
	w.pending = append(w.pending, b)
	if len(w.pending) == 254 {
		w.flushBlock()
	}
}

func (w *blockWriter) flushBlock() {
	if len(w.pending) == 0 {
		return
	}
	w.buf = append(w.buf, byte(len(w.pending)))
	w.buf = append(w.buf, w.pending...)
	w.pending = w.pending[:0]
}

// flush drains any partial bit buffer and closes the sub-block stream with
// the terminating zero-length block.
func (w *blockWriter) flush() {
	if w.bitCount > 0 {
		w.pushByte(byte(w.bitBuf))
		w.bitBuf = 0
		w.bitCount = 0
	}
	w.flushBlock()
	w.buf = append(w.buf, 0x00)
}

func (w *blockWriter) bytes() []byte { return w.buf }
