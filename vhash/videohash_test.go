package vhash

import (
	"testing"
)

// testSeq builds a valid frame sequence with deterministic content derived
// from seed.
func testSeq(n int, seed uint8) FrameSeq {
	seq := make(FrameSeq, n)
	for i := range seq {
		for j := range seq[i].Pix {
			seq[i].Pix[j] = uint8((j*(i+1) + int(seed)) % 251)
		}
		seq[i].TimestampMS = int64(i) * 3000
	}
	return seq
}

func TestNewValidation(t *testing.T) {
	params := DefaultParams()

	tests := []struct {
		name       string
		path       string
		durationMS int64
		seq        FrameSeq
		wantErr    bool
	}{
		{
			name:       "Valid",
			path:       "a.mp4",
			durationMS: 60_000,
			seq:        testSeq(params.FrameCount, 1),
			wantErr:    false,
		},
		{
			name:       "EmptyPath",
			path:       "",
			durationMS: 60_000,
			seq:        testSeq(params.FrameCount, 1),
			wantErr:    true,
		},
		{
			name:       "ZeroDuration",
			path:       "a.mp4",
			durationMS: 0,
			seq:        testSeq(params.FrameCount, 1),
			wantErr:    true,
		},
		{
			name:       "WrongFrameCount",
			path:       "a.mp4",
			durationMS: 60_000,
			seq:        testSeq(params.FrameCount-1, 1),
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.path, tt.durationMS, tt.seq, nil, params)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewRejectsUnorderedTimestamps(t *testing.T) {
	params := DefaultParams()
	seq := testSeq(params.FrameCount, 1)
	seq[3].TimestampMS = seq[2].TimestampMS

	if _, err := New("a.mp4", 60_000, seq, nil, params); err == nil {
		t.Error("New() accepted non-increasing timestamps")
	}
}

func TestNewDeterministic(t *testing.T) {
	params := DefaultParams()

	a, err := New("a.mp4", 60_000, testSeq(params.FrameCount, 7), nil, params)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	b, err := New("a.mp4", 60_000, testSeq(params.FrameCount, 7), nil, params)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if !a.Equal(b) {
		t.Error("identical inputs produced different hashes")
	}
}

func TestParamsDigest(t *testing.T) {
	base := DefaultParams()

	if base.Digest() != DefaultParams().Digest() {
		t.Error("equal params produced different digests")
	}

	tests := []struct {
		name   string
		modify func(*Params)
	}{
		{"FrameCount", func(p *Params) { p.FrameCount = 12 }},
		{"SkipMS", func(p *Params) { p.SkipMS = 5000 }},
		{"WindowMS", func(p *Params) { p.WindowMS = 20_000 }},
		{"CropMode", func(p *Params) { p.CropMode = CropLetterbox }},
		{"CropThreshold", func(p *Params) { p.CropThreshold = 32 }},
		{"SpatialWeight", func(p *Params) { p.SpatialWeight = 0.5 }},
		{"TemporalWeight", func(p *Params) { p.TemporalWeight = 0.5 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			changed := base
			tt.modify(&changed)
			if changed.Digest() == base.Digest() {
				t.Errorf("changing %s did not change the digest", tt.name)
			}
		})
	}
}

func TestParamsValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Params)
		wantErr bool
	}{
		{"Defaults", func(p *Params) {}, false},
		{"OneFrame", func(p *Params) { p.FrameCount = 1 }, true},
		{"NegativeSkip", func(p *Params) { p.SkipMS = -1 }, true},
		{"ZeroWindow", func(p *Params) { p.WindowMS = 0 }, true},
		{"BadCropMode", func(p *Params) { p.CropMode = "maybe" }, true},
		{"NegativeWeight", func(p *Params) { p.SpatialWeight = -0.1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.modify(&p)
			if err := p.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestWithPath(t *testing.T) {
	params := DefaultParams()
	a, err := New("a.mp4", 60_000, testSeq(params.FrameCount, 3), nil, params)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	b := a.WithPath("b.mp4")
	if b.Path != "b.mp4" {
		t.Errorf("WithPath: path = %q, want b.mp4", b.Path)
	}
	if a.Path != "a.mp4" {
		t.Error("WithPath mutated the receiver")
	}
	if b.Temporal != a.Temporal || len(b.Spatial) != len(a.Spatial) {
		t.Error("WithPath changed hash content")
	}
}
