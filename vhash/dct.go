package vhash

import (
	"math"
	"sort"
)

// hashBlock is the edge length of the low-frequency DCT block retained for
// the spatial hash.
const hashBlock = 8

// cosTable[u][x] = cos(pi * (2x+1) * u / (2*HashSize)), precomputed so that
// every hash uses the exact same coefficients in the exact same order.
var cosTable [HashSize][HashSize]float64

func init() {
	for u := 0; u < HashSize; u++ {
		for x := 0; x < HashSize; x++ {
			cosTable[u][x] = math.Cos(math.Pi * float64(2*x+1) * float64(u) / float64(2*HashSize))
		}
	}
}

// dct2d computes the unscaled 2-D DCT-II of a 32x32 luma plane after
// subtracting the plane's mean. That zeroes the DC term and leaves the AC
// terms unchanged, so a uniform plane yields exactly zero coefficients
// rather than rounding noise. The transform is separable: rows first, then
// columns, with fixed loop order so results are bit-identical everywhere.
func dct2d(pix *[HashSize * HashSize]uint8) [HashSize][HashSize]float64 {
	total := 0
	for _, v := range pix {
		total += int(v)
	}
	mean := float64(total) / float64(HashSize*HashSize)

	var rows [HashSize][HashSize]float64
	for y := 0; y < HashSize; y++ {
		for u := 0; u < HashSize; u++ {
			var sum float64
			for x := 0; x < HashSize; x++ {
				sum += (float64(pix[y*HashSize+x]) - mean) * cosTable[u][x]
			}
			rows[y][u] = sum
		}
	}

	var out [HashSize][HashSize]float64
	for u := 0; u < HashSize; u++ {
		for v := 0; v < HashSize; v++ {
			var sum float64
			for y := 0; y < HashSize; y++ {
				sum += rows[y][u] * cosTable[v][y]
			}
			out[v][u] = sum
		}
	}
	return out
}

// SpatialHash reduces one frame to a 64-bit perceptual hash.
//
// The top-left 8x8 block of the frame's DCT holds its lowest frequencies.
// Excluding the DC coefficient, each of the remaining 63 coefficients
// contributes one bit: set when the coefficient exceeds their median.
// Bit 0 (the DC slot) is always zero, so identical content at different
// overall brightness hashes identically.
func SpatialHash(f *Frame) uint64 {
	dct := dct2d(&f.Pix)

	var coefs [hashBlock * hashBlock]float64
	for v := 0; v < hashBlock; v++ {
		for u := 0; u < hashBlock; u++ {
			coefs[v*hashBlock+u] = dct[v][u]
		}
	}

	ac := make([]float64, 0, len(coefs)-1)
	ac = append(ac, coefs[1:]...)
	sort.Float64s(ac)
	median := ac[len(ac)/2]

	var hash uint64
	for i := 1; i < len(coefs); i++ {
		if coefs[i] > median {
			hash |= 1 << uint(i)
		}
	}
	return hash
}
