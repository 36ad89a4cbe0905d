package video

import (
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
)

// FindVideoFiles scans a directory recursively for video files.
// Results are sorted by path so downstream work is deterministic.
func FindVideoFiles(directory string) ([]string, error) {
	var files []string
	var err error

	// Use fd if available for better performance, otherwise fall back to filepath.WalkDir
	if isFdAvailable() {
		files, err = findVideoFilesWithFd(directory)
		if err != nil {
			// If fd fails, fall back to the standard method
			files, err = findVideoFilesWithWalkDir(directory)
		}
	} else {
		files, err = findVideoFilesWithWalkDir(directory)
	}

	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// isFdAvailable checks if the 'fd' command is available in PATH
func isFdAvailable() bool {
	_, err := exec.LookPath("fd")
	return err == nil
}

// findVideoFilesWithWalkDir uses filepath.WalkDir to find video files (fallback method)
func findVideoFilesWithWalkDir(directory string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(directory, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			return nil
		}

		if IsVideoFile(path) {
			files = append(files, path)
		}

		return nil
	})

	return files, err
}

// findVideoFilesWithFd uses the 'fd' command to efficiently find video files
func findVideoFilesWithFd(directory string) ([]string, error) {
	videoExts := []string{"mp4", "webm", "mov", "flv", "mkv", "avi", "wmv", "mpg"}
	extPattern := "\\." + strings.Join(videoExts, "|\\.")

	cmd := exec.Command("fd", extPattern, "--type", "f", "--case-sensitive", "false", directory)
	output, err := cmd.Output()
	if err != nil {
		return nil, err
	}

	lines := strings.Split(strings.TrimSpace(string(output)), "\n")
	var files []string
	for _, line := range lines {
		if line != "" && IsVideoFile(line) {
			files = append(files, line)
		}
	}

	return files, nil
}
