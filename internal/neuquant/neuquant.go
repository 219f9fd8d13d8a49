// Package neuquant implements Anthony Dekker's self-organizing-map color
// quantizer, producing a 256-color palette tuned to a specific image. The
// algorithm and its constants are specified in full in spec §4.6; this is a
// direct Go port of the classic network-training/contest/alter loop that
// every JS/AS3/Java port of the "NeuQuant" GIF quantizer (the lineage the
// retrieval pack's ManInM00N/nicogif GIFEncoder credits) implements.
package neuquant

import "errors"

// ErrTooSmall is returned by New when the pixel buffer cannot form even one
// full training sample.
var ErrTooSmall = errors.New("neuquant: pixel buffer too small to quantize")

const (
	netsize = 256
	ncycles = 100

	netbiasshift  = 4
	intbiasshift  = 16
	intbias       = 1 << intbiasshift
	gammashift    = 10
	betashift     = 10
	beta          = intbias >> betashift
	betagamma     = intbias << (gammashift - betashift)
	initradShift  = 3 // initrad = netsize >> 3
	radiusbiashft = 6
	radiusbias    = 1 << radiusbiashft
	radiusdec     = 30
	alphabiashft  = 10
	initalpha     = 1 << alphabiashft
	radbiashift   = 8
	radbias       = 1 << radbiashift
	alpharadbshft = alphabiashft + radbiashift
	alpharadbias  = 1 << alpharadbshft
)

var primes = [4]int{499, 491, 487, 503}

// sample is one network entry: r, g, b in bias-shifted space, plus the
// original (pre-sort) index, carried in the 4th lane per spec §3's
// NeuQuantNetwork description.
type sample struct {
	r, g, b float64
	idx     int
}

// NeuQuant is single-owner, single-thread training state for one image, per
// spec §5 ("NeuQuant and LZW instances are single-owner, single-thread").
// Consume it with a single New -> Quantize -> ColorMap/Lookup sequence, then
// discard it.
type NeuQuant struct {
	pixels  []byte
	sample  int // sample factor q, in [1, 30]
	network [netsize]sample
	freq    [netsize]float64
	bias    [netsize]float64
	radpow  []float64
	netidx  [256]int
}

// New creates a NeuQuant trainer over pixels (a flat R,G,B,... byte stream,
// 3 bytes per pixel) with sample factor q in [1, 30] (lower is better
// quality, slower). It returns ErrTooSmall if pixels cannot form a single
// full sample even with the fallback stride (spec §4.6).
func New(pixels []byte, q int) (*NeuQuant, error) {
	if q < 1 {
		q = 1
	}
	if q > 30 {
		q = 30
	}
	if len(pixels) < 3*primes[3] && len(pixels) < 3 {
		return nil, ErrTooSmall
	}
	nq := &NeuQuant{pixels: pixels, sample: q}
	nq.init()
	return nq, nil
}

func (nq *NeuQuant) init() {
	for i := 0; i < netsize; i++ {
		v := float64((i << (netbiasshift + 8)) / netsize)
		nq.network[i] = sample{r: v, g: v, b: v, idx: i}
		nq.freq[i] = float64(intbias) / netsize
		nq.bias[i] = 0
	}
}

// Quantize runs the train -> unbias -> build-index sequence (spec §4.6).
func (nq *NeuQuant) Quantize() error {
	if err := nq.train(); err != nil {
		return err
	}
	nq.unbias()
	nq.buildIndex()
	return nil
}

func (nq *NeuQuant) train() error {
	n := len(nq.pixels)
	if n < 3 {
		return ErrTooSmall
	}

	q := nq.sample
	step := 3
	if n >= 3*primes[3] {
		switch {
		case n%(3*primes[0]) != 0:
			step = 3 * primes[0]
		case n%(3*primes[1]) != 0:
			step = 3 * primes[1]
		case n%(3*primes[2]) != 0:
			step = 3 * primes[2]
		default:
			step = 3 * primes[3]
		}
	} else {
		q = 1
	}

	samplePixels := n / (3 * q)
	if samplePixels < 1 {
		return ErrTooSmall
	}
	delta := samplePixels / ncycles
	if delta == 0 {
		delta = 1
	}

	alpha := float64(initalpha)
	radius := float64((netsize >> initradShift) * radiusbias)
	rad := int(radius) >> radiusbiashft
	if rad <= 1 {
		rad = 0
	}
	nq.radpow = make([]float64, rad)
	nq.setRadPower(nq.radpow, rad, alpha)

	alphadec := 30 + (q-1)/3

	pix := 0
	for i := 0; i < samplePixels; i++ {
		r := float64(nq.pixels[pix]) * (1 << netbiasshift)
		g := float64(nq.pixels[pix+1]) * (1 << netbiasshift)
		b := float64(nq.pixels[pix+2]) * (1 << netbiasshift)

		j := nq.contest(r, g, b)
		nq.alterSingle(alpha, j, r, g, b)
		if rad != 0 {
			nq.alterNeigh(rad, j, r, g, b)
		}

		pix += step
		if pix >= n {
			pix -= n
		}

		if (i+1)%delta == 0 {
			alpha -= alpha / float64(alphadec)
			radius -= radius / radiusdec
			rad = int(radius) >> radiusbiashft
			if rad <= 1 {
				rad = 0
			}
			nq.radpow = make([]float64, rad)
			nq.setRadPower(nq.radpow, rad, alpha)
		}
	}
	return nil
}

func (nq *NeuQuant) setRadPower(radpow []float64, rad int, alpha float64) {
	for i := 0; i < rad; i++ {
		radpow[i] = alpha * (float64(rad*rad-i*i) * radbias / float64(rad*rad))
	}
}

// contest scans every sample, decaying each one's frequency bias (the
// "leaky learning" step), and returns the index of the bias-adjusted
// nearest sample (spec §4.6 contest()).
func (nq *NeuQuant) contest(r, g, b float64) int {
	bestd := -1.0
	bestpos := 0
	bestbiasd := -1.0
	bestbiaspos := 0

	for i := 0; i < netsize; i++ {
		s := &nq.network[i]
		dist := absf(s.r-r) + absf(s.g-g) + absf(s.b-b)
		if bestd < 0 || dist < bestd {
			bestd = dist
			bestpos = i
		}
		biasdist := dist - nq.bias[i]/(1<<(intbiasshift-netbiasshift))
		if bestbiasd < 0 || biasdist < bestbiasd {
			bestbiasd = biasdist
			bestbiaspos = i
		}
		betafreq := nq.freq[i] / (1 << betashift)
		nq.freq[i] -= betafreq
		nq.bias[i] += betafreq * (1 << gammashift)
	}
	nq.freq[bestpos] += beta
	nq.bias[bestpos] -= betagamma
	return bestbiaspos
}

func (nq *NeuQuant) alterSingle(alpha float64, i int, r, g, b float64) {
	s := &nq.network[i]
	s.r -= alpha * (s.r - r) / initalpha
	s.g -= alpha * (s.g - g) / initalpha
	s.b -= alpha * (s.b - b) / initalpha
}

func (nq *NeuQuant) alterNeigh(rad int, i int, r, g, b float64) {
	lo := i - rad
	if lo < -1 {
		lo = -1
	}
	hi := i + rad
	if hi > netsize {
		hi = netsize
	}
	j := i + 1
	k := i - 1
	m := 1
	for j < hi || k > lo {
		a := nq.radpow[m]
		m++
		if j < hi {
			s := &nq.network[j]
			s.r -= a * (s.r - r) / alpharadbias
			s.g -= a * (s.g - g) / alpharadbias
			s.b -= a * (s.b - b) / alpharadbias
			j++
		}
		if k > lo {
			s := &nq.network[k]
			s.r -= a * (s.r - r) / alpharadbias
			s.g -= a * (s.g - g) / alpharadbias
			s.b -= a * (s.b - b) / alpharadbias
			k--
		}
	}
}

func (nq *NeuQuant) unbias() {
	for i := 0; i < netsize; i++ {
		s := &nq.network[i]
		s.r = float64(int(s.r) >> netbiasshift)
		s.g = float64(int(s.g) >> netbiasshift)
		s.b = float64(int(s.b) >> netbiasshift)
		s.idx = i
	}
}

// buildIndex sorts the network ascending by green and builds netidx[g] as
// the midpoint index for each distinct green value, filling gaps so
// netidx[g] points to the first sample with green >= g (spec §4.6
// inxbuild()).
func (nq *NeuQuant) buildIndex() {
	previouscol := 0
	startpos := 0
	for i := 0; i < netsize; i++ {
		smallpos := i
		smallval := nq.network[i].g
		for j := i + 1; j < netsize; j++ {
			if nq.network[j].g < smallval {
				smallpos = j
				smallval = nq.network[j].g
			}
		}
		if i != smallpos {
			nq.network[i], nq.network[smallpos] = nq.network[smallpos], nq.network[i]
		}
		if int(smallval) != previouscol {
			nq.netidx[previouscol] = (startpos + i) >> 1
			for j := previouscol + 1; j < int(smallval); j++ {
				nq.netidx[j] = i
			}
			previouscol = int(smallval)
			startpos = i
		}
	}
	nq.netidx[previouscol] = (startpos + netsize - 1) >> 1
	for j := previouscol + 1; j < 256; j++ {
		nq.netidx[j] = netsize - 1
	}
}

// ColorMap returns a length-768 byte table (R0 G0 B0 R1 G1 B1 ...) in the
// original-index order (spec §4.6).
func (nq *NeuQuant) ColorMap() []byte {
	index := make([]int, netsize)
	for i, s := range nq.network {
		index[s.idx] = i
	}
	out := make([]byte, 0, netsize*3)
	for i := 0; i < netsize; i++ {
		s := nq.network[index[i]]
		out = append(out, byte(s.r), byte(s.g), byte(s.b))
	}
	return out
}

// Lookup returns the original index of the sample nearest (r, g, b),
// bidirectionally walking outward from netidx[g] and pruning a direction
// once |dg| reaches the best distance found so far (spec §4.6 map()).
func (nq *NeuQuant) Lookup(r, g, b uint8) int {
	bestd := 1000
	best := -1
	i := nq.netidx[g]
	j := i - 1

	for i < netsize || j >= 0 {
		if i < netsize {
			s := nq.network[i]
			dist := s.g - float64(g)
			if dist >= float64(bestd) {
				i = netsize
			} else {
				i++
				if dist < 0 {
					dist = -dist
				}
				a := absf(s.r - float64(r))
				d := int(dist + a)
				if d < bestd {
					a = absf(s.b - float64(b))
					d += int(a)
					if d < bestd {
						bestd = d
						best = s.idx
					}
				}
			}
		}
		if j >= 0 {
			s := nq.network[j]
			dist := float64(g) - s.g
			if dist >= float64(bestd) {
				j = -1
			} else {
				j--
				if dist < 0 {
					dist = -dist
				}
				a := absf(s.r - float64(r))
				d := int(dist + a)
				if d < bestd {
					a = absf(s.b - float64(b))
					d += int(a)
					if d < bestd {
						bestd = d
						best = s.idx
					}
				}
			}
		}
	}
	return best
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
