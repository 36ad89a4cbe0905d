package vhash

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"lukechampine.com/blake3"
)

// CropMode selects black-bar handling before hashing.
type CropMode string

const (
	CropOff       CropMode = "off"
	CropLetterbox CropMode = "letterbox"
)

// Default hashing parameters: ten frames over the first thirty seconds.
const (
	DefaultFrameCount    = 10
	DefaultSkipMS        = 0
	DefaultWindowMS      = 30_000
	DefaultCropThreshold = 24
)

// Default comparison parameters.
const (
	DefaultSpatialWeight  = 0.7
	DefaultTemporalWeight = 0.3
)

// Params are all options that influence hash production. Two hashes are only
// comparable when they were produced with equal Params, which is why the
// cache key and every VideoHash carry the params digest.
type Params struct {
	FrameCount     int      `cbor:"n"`
	SkipMS         int64    `cbor:"skip_ms"`
	WindowMS       int64    `cbor:"window_ms"`
	CropMode       CropMode `cbor:"crop_mode"`
	CropThreshold  uint8    `cbor:"crop_threshold"`
	SpatialWeight  float64  `cbor:"w_s"`
	TemporalWeight float64  `cbor:"w_t"`
}

// DefaultParams returns the documented defaults.
func DefaultParams() Params {
	return Params{
		FrameCount:     DefaultFrameCount,
		SkipMS:         DefaultSkipMS,
		WindowMS:       DefaultWindowMS,
		CropMode:       CropOff,
		CropThreshold:  DefaultCropThreshold,
		SpatialWeight:  DefaultSpatialWeight,
		TemporalWeight: DefaultTemporalWeight,
	}
}

// Validate rejects parameter combinations the pipeline cannot honor.
func (p Params) Validate() error {
	if p.FrameCount < 2 {
		return fmt.Errorf("frame count %d too small, need at least 2", p.FrameCount)
	}
	if p.SkipMS < 0 {
		return fmt.Errorf("negative skip %dms", p.SkipMS)
	}
	if p.WindowMS <= 0 {
		return fmt.Errorf("sampling window %dms must be positive", p.WindowMS)
	}
	switch p.CropMode {
	case CropOff, CropLetterbox:
	default:
		return fmt.Errorf("unknown crop mode %q", p.CropMode)
	}
	if p.SpatialWeight < 0 || p.TemporalWeight < 0 {
		return fmt.Errorf("negative distance weight")
	}
	return nil
}

var paramsEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	paramsEncMode = em
}

// Digest returns a 16-byte blake3 digest over the canonical CBOR encoding of
// the params. It is stable across runs and platforms.
func (p Params) Digest() [16]byte {
	raw, err := paramsEncMode.Marshal(p)
	if err != nil {
		// Params is a fixed flat struct; canonical CBOR cannot fail on it.
		panic(err)
	}
	sum := blake3.Sum256(raw)

	var digest [16]byte
	copy(digest[:], sum[:16])
	return digest
}
