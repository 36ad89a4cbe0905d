package decode

import (
	"testing"

	"github.com/lepinkainen/videodup/vhash"
)

// synthFrame builds a w×h frame with a bright region and black bars:
// bars rows/cols are at luma `bar`, the content region at luma `content`.
func synthFrame(w, h, top, bottom, left, right int, bar, content uint8) []byte {
	pix := make([]byte, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := content
			if y < top || y >= h-bottom || x < left || x >= w-right {
				v = bar
			}
			pix[y*w+x] = v
		}
	}
	return pix
}

func TestDetectCropLetterbox(t *testing.T) {
	const w, h = 64, 64
	frames := [][]byte{
		synthFrame(w, h, 8, 8, 0, 0, 10, 200),
		synthFrame(w, h, 8, 8, 0, 0, 10, 180),
		synthFrame(w, h, 8, 8, 0, 0, 10, 220),
	}

	rect, ok := DetectCrop(frames, w, h, 3, 24)
	if !ok {
		t.Fatal("letterbox bars not detected")
	}
	want := vhash.Rect{X: 0, Y: 8, W: 64, H: 48}
	if rect != want {
		t.Errorf("rect = %+v, want %+v", rect, want)
	}
}

func TestDetectCropPillarbox(t *testing.T) {
	const w, h = 64, 64
	frames := [][]byte{
		synthFrame(w, h, 0, 0, 10, 10, 5, 150),
		synthFrame(w, h, 0, 0, 10, 10, 5, 150),
	}

	rect, ok := DetectCrop(frames, w, h, 2, 24)
	if !ok {
		t.Fatal("pillarbox bars not detected")
	}
	want := vhash.Rect{X: 10, Y: 0, W: 44, H: 64}
	if rect != want {
		t.Errorf("rect = %+v, want %+v", rect, want)
	}
}

func TestDetectCropIntersection(t *testing.T) {
	const w, h = 64, 64
	// One frame has wider bars than the other; the common window is the
	// intersection, i.e. the narrower content region.
	frames := [][]byte{
		synthFrame(w, h, 4, 4, 0, 0, 0, 200),
		synthFrame(w, h, 8, 8, 0, 0, 0, 200),
	}

	rect, ok := DetectCrop(frames, w, h, 2, 24)
	if !ok {
		t.Fatal("bars not detected")
	}
	want := vhash.Rect{X: 0, Y: 8, W: 64, H: 48}
	if rect != want {
		t.Errorf("rect = %+v, want %+v", rect, want)
	}
}

func TestDetectCropRejections(t *testing.T) {
	const w, h = 64, 64

	tests := []struct {
		name   string
		frames [][]byte
	}{
		{
			name:   "NoFrames",
			frames: nil,
		},
		{
			name:   "AllBlack",
			frames: [][]byte{synthFrame(w, h, 0, 0, 0, 0, 0, 12)},
		},
		{
			name: "NoBars",
			frames: [][]byte{
				synthFrame(w, h, 0, 0, 0, 0, 0, 200),
			},
		},
		{
			// Content band of 20 rows is under half the height; a dark
			// scene, not a letterbox.
			name: "TinyContentRegion",
			frames: [][]byte{
				synthFrame(w, h, 22, 22, 0, 0, 3, 200),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rect, ok := DetectCrop(tt.frames, w, h, 5, 24); ok {
				t.Errorf("DetectCrop() = %+v, want rejection", rect)
			}
		})
	}
}

func TestDetectCropThreshold(t *testing.T) {
	const w, h = 64, 64
	// Bars at luma 30 are above the default threshold of 24 but below a
	// raised threshold of 40.
	frames := [][]byte{synthFrame(w, h, 8, 8, 0, 0, 30, 200)}

	if _, ok := DetectCrop(frames, w, h, 1, 24); ok {
		t.Error("bars above threshold were treated as black")
	}
	if _, ok := DetectCrop(frames, w, h, 1, 40); !ok {
		t.Error("bars below raised threshold not detected")
	}
}
