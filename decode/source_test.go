package decode

import (
	"testing"

	"github.com/lepinkainen/videodup/vhash"
)

func TestDownsampleUniform(t *testing.T) {
	const w, h = 256, 256
	pix := make([]byte, w*h)
	for i := range pix {
		pix[i] = 120
	}

	out := downsample(pix, w, h, nil)
	for i, v := range out {
		if v != 120 {
			t.Fatalf("pixel %d = %d, want 120 (uniform input must stay uniform)", i, v)
		}
	}
}

func TestDownsampleAppliesCrop(t *testing.T) {
	const w, h = 256, 256
	// Letterboxed working frame: 32-row black bars, bright content between.
	pix := synthFrame(w, h, 32, 32, 0, 0, 0, 200)

	full := downsample(pix, w, h, nil)
	cropped := downsample(pix, w, h, &vhash.Rect{X: 0, Y: 32, W: 256, H: 192})

	// Without the crop the top output rows come from the black bar.
	topDark := 0
	for x := 0; x < vhash.HashSize; x++ {
		if full[x] < 50 {
			topDark++
		}
	}
	if topDark < vhash.HashSize/2 {
		t.Errorf("expected dark top rows without crop, got %d dark pixels", topDark)
	}

	// With the crop every output pixel comes from content.
	for i, v := range cropped {
		if v < 150 {
			t.Fatalf("cropped pixel %d = %d, want bright content only", i, v)
		}
	}
}

func TestDownsampleGradientKeepsOrientation(t *testing.T) {
	const w, h = 64, 64
	pix := make([]byte, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			pix[y*w+x] = uint8(y * 4) // dark top, bright bottom
		}
	}

	out := downsample(pix, w, h, nil)
	top := out[0]
	bottom := out[(vhash.HashSize-1)*vhash.HashSize]
	if top >= bottom {
		t.Errorf("vertical gradient lost: top %d, bottom %d", top, bottom)
	}
}
