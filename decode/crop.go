package decode

import "github.com/lepinkainen/videodup/vhash"

// DetectCrop estimates the rectangle that excludes black letterbox and
// pillarbox bars. frames are raw grayscale planes of w*h bytes; only the
// first k frames are considered. The returned rectangle is the intersection
// of the per-frame non-black windows, the most conservative region that is
// bright in every sampled frame.
//
// Returns ok=false when no crop should be applied: bars are absent, a frame
// is entirely black, or the common window covers less than half of either
// dimension (dark scenes would otherwise crop away real content).
func DetectCrop(frames [][]byte, w, h, k int, threshold uint8) (vhash.Rect, bool) {
	if k > len(frames) {
		k = len(frames)
	}
	if k == 0 {
		return vhash.Rect{}, false
	}

	left, top := 0, 0
	right, bottom := w, h
	for i := 0; i < k; i++ {
		r, ok := contentRect(frames[i], w, h, threshold)
		if !ok {
			return vhash.Rect{}, false
		}
		if r.X > left {
			left = r.X
		}
		if r.Y > top {
			top = r.Y
		}
		if r.X+r.W < right {
			right = r.X + r.W
		}
		if r.Y+r.H < bottom {
			bottom = r.Y + r.H
		}
	}

	if right-left < (w+1)/2 || bottom-top < (h+1)/2 {
		return vhash.Rect{}, false
	}
	if left == 0 && top == 0 && right == w && bottom == h {
		// Nothing to remove.
		return vhash.Rect{}, false
	}
	return vhash.Rect{X: left, Y: top, W: right - left, H: bottom - top}, true
}

// contentRect finds the largest contiguous non-black window of one frame.
// A row or column counts as black when its mean luma is at or below the
// threshold.
func contentRect(pix []byte, w, h int, threshold uint8) (vhash.Rect, bool) {
	rowSums := make([]uint64, h)
	colSums := make([]uint64, w)
	for y := 0; y < h; y++ {
		row := pix[y*w : (y+1)*w]
		for x, v := range row {
			rowSums[y] += uint64(v)
			colSums[x] += uint64(v)
		}
	}

	top, rows := longestBrightRun(rowSums, uint64(w), threshold)
	left, cols := longestBrightRun(colSums, uint64(h), threshold)
	if rows == 0 || cols == 0 {
		return vhash.Rect{}, false
	}
	return vhash.Rect{X: left, Y: top, W: cols, H: rows}, true
}

// longestBrightRun returns the start and length of the longest contiguous
// run of lines whose mean exceeds the threshold. Ties keep the earliest run.
func longestBrightRun(sums []uint64, lineLen uint64, threshold uint8) (int, int) {
	bestStart, bestLen := 0, 0
	start, length := 0, 0
	for i, sum := range sums {
		if sum > uint64(threshold)*lineLen {
			if length == 0 {
				start = i
			}
			length++
			if length > bestLen {
				bestStart, bestLen = start, length
			}
		} else {
			length = 0
		}
	}
	return bestStart, bestLen
}
