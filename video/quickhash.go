package video

import (
	"fmt"
	"image"
	_ "image/jpeg"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/corona10/goimagehash"
)

// QuickHash extracts a single frame from a video and calculates a
// perception hash over it. It is a cheap prefilter: much less robust than
// the full multi-frame hash, but good enough to shortlist candidates.
func QuickHash(videoFile string) (*goimagehash.ImageHash, error) {
	// Create temporary file for extracted frame
	tempFrame := filepath.Join(os.TempDir(), fmt.Sprintf("videodup_frame_%d.jpg", os.Getpid()))
	defer func() { _ = os.Remove(tempFrame) }()

	// Extract a frame 30 seconds in; short clips fall back to 10 seconds
	cmd := exec.Command("ffmpeg", "-i", videoFile, "-ss", "00:00:30", "-vframes", "1", "-f", "image2", "-y", tempFrame)
	err := cmd.Run()
	if err != nil {
		cmd = exec.Command("ffmpeg", "-i", videoFile, "-ss", "10", "-vframes", "1", "-f", "image2", "-y", tempFrame)
		if err = cmd.Run(); err != nil {
			return nil, fmt.Errorf("failed to extract frame: %w", err)
		}
	}

	file, err := os.Open(tempFrame)
	if err != nil {
		return nil, fmt.Errorf("failed to open extracted frame: %w", err)
	}
	defer func() { _ = file.Close() }()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	hash, err := goimagehash.PerceptionHash(img)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate perceptual hash: %w", err)
	}

	return hash, nil
}
