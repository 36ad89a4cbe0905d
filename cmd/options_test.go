package cmd

import (
	"testing"

	"github.com/lepinkainen/videodup/vhash"
)

func TestEngineFlagsParams(t *testing.T) {
	flags := EngineFlags{
		SkipMS:            1000,
		WindowMS:          20_000,
		Frames:            8,
		CropMode:          "letterbox",
		CropThreshold:     30,
		SpatialWeight:     0.6,
		TemporalWeight:    0.4,
		Tau:               0.2,
		DurationTolerance: 0.1,
	}

	p := flags.params()
	if p.FrameCount != 8 || p.SkipMS != 1000 || p.WindowMS != 20_000 {
		t.Errorf("sampling params not mapped: %+v", p)
	}
	if p.CropMode != vhash.CropLetterbox || p.CropThreshold != 30 {
		t.Errorf("crop params not mapped: %+v", p)
	}
	if err := p.Validate(); err != nil {
		t.Errorf("mapped params invalid: %v", err)
	}

	opt := flags.matchOptions()
	if opt.Tau != 0.2 || opt.DurationTolerance != 0.1 {
		t.Errorf("match options not mapped: %+v", opt)
	}
	if opt.SpatialWeight != 0.6 || opt.TemporalWeight != 0.4 {
		t.Errorf("weights not mapped: %+v", opt)
	}
}

func TestEngineFlagsCacheDir(t *testing.T) {
	explicit := EngineFlags{CacheDir: "/tmp/somewhere"}
	dir, err := explicit.cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error = %v", err)
	}
	if dir != "/tmp/somewhere" {
		t.Errorf("explicit cache dir not honored: %s", dir)
	}

	defaulted := EngineFlags{}
	dir, err = defaulted.cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error = %v", err)
	}
	if dir == "" {
		t.Error("default cache dir is empty")
	}
}
