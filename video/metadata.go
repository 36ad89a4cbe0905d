package video

import (
	"fmt"
	"math"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
)

// Metadata holds the stream properties the hashing pipeline cares about.
type Metadata struct {
	Width      int
	Height     int
	DurationMS int64
}

var resolutionRegex = regexp.MustCompile(`^(\d+)x(\d+)$`)

// GetVideoResolution extracts the video resolution using ffprobe
func GetVideoResolution(videoFile string) (int, int, error) {
	cmd := exec.Command("ffprobe", "-v", "error", "-select_streams", "v:0",
		"-show_entries", "stream=width,height", "-of", "csv=s=x:p=0", "--", videoFile)
	output, err := cmd.CombinedOutput()
	if err != nil {
		// Get the actual error message from ffprobe
		return 0, 0, fmt.Errorf("failed to get resolution: %w\nffprobe output: %s", err, string(output))
	}

	// Fix cases where command prints multiple resolutions
	outputParts := strings.SplitN(string(output), "\n", 2)
	resolution := strings.TrimSpace(outputParts[0])
	resolution = strings.TrimSuffix(resolution, "x")

	m := resolutionRegex.FindStringSubmatch(resolution)
	if m == nil {
		return 0, 0, fmt.Errorf("invalid resolution format: %s", resolution)
	}

	width, _ := strconv.Atoi(m[1])
	height, _ := strconv.Atoi(m[2])
	return width, height, nil
}

// GetVideoDurationMS extracts the video duration using ffprobe and returns
// it in milliseconds. A duration ffprobe cannot determine (e.g. "N/A") is
// reported as an error.
func GetVideoDurationMS(videoFile string) (int64, error) {
	cmd := exec.Command("ffprobe", "-v", "error", "-show_entries",
		"format=duration", "-of", "default=noprint_wrappers=1:nokey=1", "--", videoFile)
	output, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("failed to get duration: %w", err)
	}

	raw := strings.TrimSpace(string(output))
	durationSecs, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(durationSecs) {
		return 0, fmt.Errorf("failed to parse duration %q", raw)
	}

	return int64(durationSecs * 1000), nil
}

// Probe returns resolution and duration for a video file in one struct.
func Probe(videoFile string) (*Metadata, error) {
	width, height, err := GetVideoResolution(videoFile)
	if err != nil {
		return nil, fmt.Errorf("failed to get resolution: %w", err)
	}

	durationMS, err := GetVideoDurationMS(videoFile)
	if err != nil {
		return nil, fmt.Errorf("failed to get duration: %w", err)
	}

	return &Metadata{
		Width:      width,
		Height:     height,
		DurationMS: durationMS,
	}, nil
}
