package vhash

import "fmt"

// Rect is a crop rectangle in working-frame coordinates. A nil rect on a
// VideoHash means the full frame was hashed.
type Rect struct {
	X int `cbor:"x"`
	Y int `cbor:"y"`
	W int `cbor:"w"`
	H int `cbor:"h"`
}

func (r Rect) String() string {
	return fmt.Sprintf("%dx%d+%d+%d", r.W, r.H, r.X, r.Y)
}

// VideoHash is the composite perceptual fingerprint of one video file:
// one spatial hash per sampled frame, a temporal hash over the sequence,
// the video duration, and the crop rectangle used (if any). It is immutable
// after construction.
type VideoHash struct {
	Path         string   `cbor:"path"`
	DurationMS   int64    `cbor:"duration_ms"`
	Spatial      []uint64 `cbor:"spatial"`
	Temporal     uint64   `cbor:"temporal"`
	Crop         *Rect    `cbor:"crop,omitempty"`
	ParamsDigest [16]byte `cbor:"params_digest"`
}

// New hashes a validated frame sequence into a VideoHash.
func New(path string, durationMS int64, seq FrameSeq, crop *Rect, params Params) (*VideoHash, error) {
	if path == "" {
		return nil, fmt.Errorf("empty source path")
	}
	if durationMS <= 0 {
		return nil, fmt.Errorf("non-positive duration %dms for %s", durationMS, path)
	}
	if err := seq.Validate(params.FrameCount); err != nil {
		return nil, fmt.Errorf("hashing %s: %w", path, err)
	}

	spatial := make([]uint64, len(seq))
	for i := range seq {
		spatial[i] = SpatialHash(&seq[i])
	}

	return &VideoHash{
		Path:         path,
		DurationMS:   durationMS,
		Spatial:      spatial,
		Temporal:     TemporalHash(spatial),
		Crop:         crop,
		ParamsDigest: params.Digest(),
	}, nil
}

// WithPath returns a copy of the hash attributed to a different source
// path. The cache shares one entry between byte-identical files, so a
// retrieved hash may carry the path of whichever copy was hashed first.
func (v *VideoHash) WithPath(path string) *VideoHash {
	if v.Path == path {
		return v
	}
	c := *v
	c.Path = path
	c.Spatial = append([]uint64(nil), v.Spatial...)
	if v.Crop != nil {
		crop := *v.Crop
		c.Crop = &crop
	}
	return &c
}

// Equal reports whether two hashes are identical in every component.
func (v *VideoHash) Equal(o *VideoHash) bool {
	if v.Path != o.Path || v.DurationMS != o.DurationMS || v.Temporal != o.Temporal {
		return false
	}
	if v.ParamsDigest != o.ParamsDigest {
		return false
	}
	if len(v.Spatial) != len(o.Spatial) {
		return false
	}
	for i := range v.Spatial {
		if v.Spatial[i] != o.Spatial[i] {
			return false
		}
	}
	if (v.Crop == nil) != (o.Crop == nil) {
		return false
	}
	if v.Crop != nil && *v.Crop != *o.Crop {
		return false
	}
	return true
}
