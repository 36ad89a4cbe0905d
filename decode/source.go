package decode

import (
	"context"
	"image"
	"image/color"
	"os"
	"time"

	"github.com/nfnt/resize"

	"github.com/lepinkainen/videodup/vhash"
	"github.com/lepinkainen/videodup/video"
)

// Source produces a VideoHash for a file. The ffmpeg-backed implementation
// below is the default; tests and alternative decoder backends supply their
// own.
type Source interface {
	Hash(ctx context.Context, path string) (*vhash.VideoHash, error)
}

// FFmpegSource extracts frames through an external decoder child process and
// hashes them. One decoder process is spawned per video; it reads the file
// once, emits the sampled frames, then exits.
type FFmpegSource struct {
	Decoder DecoderSpec
	Params  vhash.Params
}

func NewFFmpegSource(dec DecoderSpec, params vhash.Params) *FFmpegSource {
	return &FFmpegSource{Decoder: dec, Params: params}
}

// Hash implements Source.
func (s *FFmpegSource) Hash(ctx context.Context, path string) (*vhash.VideoHash, error) {
	p := s.Params

	f, err := os.Open(path)
	if err != nil {
		return nil, newError(KindFileUnreadable, path, err)
	}
	_ = f.Close()

	meta, err := video.Probe(path)
	if err != nil {
		// The integrity probe reads the container errors ffprobe printed,
		// so a truncated or corrupt file is reported as such instead of a
		// bare probe failure.
		if verr := video.ValidateVideoIntegrity(path); verr != nil {
			return nil, newError(KindNotAVideo, path, verr)
		}
		return nil, newError(KindNotAVideo, path, err)
	}
	if meta.DurationMS <= 0 {
		return nil, newError(KindDurationUnknown, path, nil)
	}
	if meta.Width < vhash.HashSize || meta.Height < vhash.HashSize {
		return nil, newError(KindResolutionTooLow, path, nil)
	}
	// The full sampling window must fit; a shrunken window would produce
	// hashes that silently disagree with well-formed ones.
	if meta.DurationMS < p.SkipMS+p.WindowMS {
		return nil, newError(KindDurationTooShort, path, nil)
	}

	w, h := vhash.HashSize, vhash.HashSize
	if p.CropMode == vhash.CropLetterbox {
		w, h = vhash.CropWorkSize, vhash.CropWorkSize
	}

	offsets := sampleOffsetsMS(p.WindowMS, p.FrameCount)
	raw, err := s.Decoder.ReadFrames(ctx, path, p.SkipMS, offsets, w, h, decodeDeadline(meta.DurationMS))
	if err != nil {
		return nil, err
	}

	var crop *vhash.Rect
	seq := make(vhash.FrameSeq, len(raw))
	if p.CropMode == vhash.CropLetterbox {
		k := p.FrameCount
		if k > 5 {
			k = 5
		}
		if rect, ok := DetectCrop(raw, w, h, k, p.CropThreshold); ok {
			crop = &rect
		}
		for i, buf := range raw {
			seq[i].Pix = downsample(buf, w, h, crop)
			seq[i].TimestampMS = p.SkipMS + offsets[i]
		}
	} else {
		for i, buf := range raw {
			copy(seq[i].Pix[:], buf)
			seq[i].TimestampMS = p.SkipMS + offsets[i]
		}
	}

	return vhash.New(path, meta.DurationMS, seq, crop, p)
}

// decodeDeadline scales the frame-extraction deadline with the video
// duration, within [30s, 120s].
func decodeDeadline(durationMS int64) time.Duration {
	d := time.Duration(durationMS) * time.Millisecond / 2
	if d < 30*time.Second {
		d = 30 * time.Second
	}
	if d > 120*time.Second {
		d = 120 * time.Second
	}
	return d
}

// downsample crops a working frame to rect (when non-nil) and bilinear
// resizes it to the canonical hashing size.
func downsample(pix []byte, w, h int, rect *vhash.Rect) [vhash.HashSize * vhash.HashSize]uint8 {
	img := &image.Gray{Pix: pix, Stride: w, Rect: image.Rect(0, 0, w, h)}
	var src image.Image = img
	if rect != nil {
		src = img.SubImage(image.Rect(rect.X, rect.Y, rect.X+rect.W, rect.Y+rect.H))
	}

	small := resize.Resize(vhash.HashSize, vhash.HashSize, src, resize.Bilinear)
	bounds := small.Bounds()

	var out [vhash.HashSize * vhash.HashSize]uint8
	for y := 0; y < vhash.HashSize; y++ {
		for x := 0; x < vhash.HashSize; x++ {
			c := color.GrayModel.Convert(small.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.Gray)
			out[y*vhash.HashSize+x] = c.Y
		}
	}
	return out
}
