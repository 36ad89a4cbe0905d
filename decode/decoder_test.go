package decode

import (
	"strings"
	"testing"
	"time"
)

func TestSampleOffsetsMS(t *testing.T) {
	tests := []struct {
		name     string
		windowMS int64
		n        int
		want     []int64
	}{
		{
			name:     "TenOverThirtySeconds",
			windowMS: 30_000,
			n:        10,
			want:     []int64{0, 3333, 6666, 10_000, 13_333, 16_666, 20_000, 23_333, 26_666, 30_000},
		},
		{
			name:     "TwoFrames",
			windowMS: 10_000,
			n:        2,
			want:     []int64{0, 10_000},
		},
		{
			name:     "SingleFrame",
			windowMS: 10_000,
			n:        1,
			want:     []int64{0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sampleOffsetsMS(tt.windowMS, tt.n)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d offsets, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("offset[%d] = %d, want %d", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestSampleOffsetsSpanInclusive(t *testing.T) {
	offsets := sampleOffsetsMS(30_000, 10)
	if offsets[0] != 0 {
		t.Errorf("first offset = %d, want 0", offsets[0])
	}
	if offsets[len(offsets)-1] != 30_000 {
		t.Errorf("last offset = %d, want window end", offsets[len(offsets)-1])
	}
	for i := 1; i < len(offsets); i++ {
		if offsets[i] <= offsets[i-1] {
			t.Errorf("offsets not strictly increasing at %d: %v", i, offsets)
		}
	}
}

func TestSelectExpr(t *testing.T) {
	expr := selectExpr([]int64{0, 3333, 6666})

	if !strings.HasPrefix(expr, "isnan(prev_pts)") {
		t.Errorf("first term should match the first decoded frame: %s", expr)
	}
	if got := strings.Count(expr, "+"); got != 2 {
		t.Errorf("expression has %d terms joined, want 3: %s", got+1, expr)
	}
	if !strings.Contains(expr, "gte(pts*TB\\,3.333000)") {
		t.Errorf("expression missing second timestamp: %s", expr)
	}
	if !strings.Contains(expr, "gte(pts*TB\\,6.666000)") {
		t.Errorf("expression missing third timestamp: %s", expr)
	}
}

func TestArgv(t *testing.T) {
	dec := DefaultDecoder()
	offsets := sampleOffsetsMS(30_000, 10)

	t.Run("NoSkip", func(t *testing.T) {
		args := dec.argv("in.mp4", 0, offsets, 32, 32)
		joined := strings.Join(args, " ")

		if strings.Contains(joined, "-ss") {
			t.Errorf("unexpected seek with zero skip: %s", joined)
		}
		if !strings.Contains(joined, "scale=32:32:flags=bilinear,format=gray") {
			t.Errorf("missing scale/format filter: %s", joined)
		}
		if !strings.Contains(joined, "-frames:v 10") {
			t.Errorf("missing frame count: %s", joined)
		}
		if !strings.Contains(joined, "-f rawvideo") {
			t.Errorf("missing raw output format: %s", joined)
		}
		if args[len(args)-1] != "pipe:1" {
			t.Errorf("output is not stdout: %s", joined)
		}
	})

	t.Run("WithSkip", func(t *testing.T) {
		args := dec.argv("in.mp4", 5_000, offsets, 256, 256)
		joined := strings.Join(args, " ")

		if !strings.Contains(joined, "-ss 5.000") {
			t.Errorf("missing seek: %s", joined)
		}
		if !strings.Contains(joined, "scale=256:256") {
			t.Errorf("missing working-resolution scale: %s", joined)
		}
	})

	t.Run("ExtraArgs", func(t *testing.T) {
		custom := DecoderSpec{Bin: "ffmpeg5", ExtraArgs: []string{"-threads", "1"}}
		args := custom.argv("in.mp4", 0, offsets, 32, 32)
		joined := strings.Join(args, " ")

		if !strings.Contains(joined, "-threads 1") {
			t.Errorf("extra args not injected: %s", joined)
		}
		idxExtra := strings.Index(joined, "-threads")
		idxInput := strings.Index(joined, "-i ")
		if idxExtra > idxInput {
			t.Errorf("extra args must precede the input: %s", joined)
		}
	})
}

func TestDecodeDeadline(t *testing.T) {
	tests := []struct {
		name       string
		durationMS int64
		want       time.Duration
	}{
		{"ShortClip", 10_000, 30 * time.Second},
		{"OneMinute", 60_000, 30 * time.Second},
		{"TwoMinutes", 120_000, 60 * time.Second},
		{"FeatureLength", 5_400_000, 120 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := decodeDeadline(tt.durationMS); got != tt.want {
				t.Errorf("decodeDeadline(%d) = %v, want %v", tt.durationMS, got, tt.want)
			}
		})
	}
}
