package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/lepinkainen/videodup/decode"
	"github.com/lepinkainen/videodup/match"
	"github.com/lepinkainen/videodup/pipeline"
	"github.com/lepinkainen/videodup/vhash"
)

// EngineFlags are the engine options shared by every hashing command.
type EngineFlags struct {
	SkipMS            int64   `name:"skip-ms" help:"Offset into video before sampling, in milliseconds" default:"0"`
	WindowMS          int64   `name:"window-ms" help:"Length of sampling window, in milliseconds" default:"30000"`
	Frames            int     `name:"frames" help:"Number of frames to sample" default:"10"`
	CropMode          string  `name:"crop-mode" help:"Black-bar handling" enum:"off,letterbox" default:"off"`
	CropThreshold     uint8   `name:"crop-threshold" help:"Black cutoff 0-255" default:"24"`
	Tau               float64 `name:"tau" help:"Match threshold (combined distance)" default:"0.25"`
	DurationTolerance float64 `name:"duration-tolerance" help:"Fractional duration gate" default:"0.05"`
	SpatialWeight     float64 `name:"spatial-weight" help:"Weight of the spatial distance component" default:"0.7"`
	TemporalWeight    float64 `name:"temporal-weight" help:"Weight of the temporal distance component" default:"0.3"`
	CacheDir          string  `name:"cache-dir" help:"Cache root path (defaults to the user cache dir)"`
	Workers           int     `name:"workers" help:"Decode pool size (default: CPU count - 1)" default:"0"`
	Decoder           string  `name:"decoder" help:"Frame decoder binary" default:"ffmpeg"`
}

func (f *EngineFlags) params() vhash.Params {
	return vhash.Params{
		FrameCount:     f.Frames,
		SkipMS:         f.SkipMS,
		WindowMS:       f.WindowMS,
		CropMode:       vhash.CropMode(f.CropMode),
		CropThreshold:  f.CropThreshold,
		SpatialWeight:  f.SpatialWeight,
		TemporalWeight: f.TemporalWeight,
	}
}

func (f *EngineFlags) matchOptions() match.Options {
	return match.Options{
		Tau:               f.Tau,
		SpatialWeight:     f.SpatialWeight,
		TemporalWeight:    f.TemporalWeight,
		DurationTolerance: f.DurationTolerance,
	}
}

func (f *EngineFlags) cacheDir() (string, error) {
	if f.CacheDir != "" {
		return f.CacheDir, nil
	}
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("no cache dir configured and no user cache dir available: %w", err)
	}
	return filepath.Join(base, "videodup"), nil
}

func (f *EngineFlags) pipelineConfig(progress func(pipeline.Event)) (pipeline.Config, error) {
	dir, err := f.cacheDir()
	if err != nil {
		return pipeline.Config{}, err
	}
	return pipeline.Config{
		Params:        f.params(),
		CacheDir:      dir,
		Decoder:       decode.DecoderSpec{Bin: f.Decoder},
		DecodeWorkers: f.Workers,
		Progress:      progress,
	}, nil
}
