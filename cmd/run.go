package cmd

import (
	"context"
	"fmt"
	"sort"

	"github.com/schollz/progressbar/v3"

	"github.com/lepinkainen/videodup/decode"
	"github.com/lepinkainen/videodup/pipeline"
	"github.com/lepinkainen/videodup/ui"
	"github.com/lepinkainen/videodup/video"
)

// collectFiles expands directories into a sorted, deduplicated list of
// video files.
func collectFiles(dirs []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	for _, dir := range dirs {
		found, err := video.FindVideoFiles(dir)
		if err != nil {
			return nil, fmt.Errorf("scanning %s: %w", dir, err)
		}
		for _, f := range found {
			if !seen[f] {
				seen[f] = true
				files = append(files, f)
			}
		}
	}
	sort.Strings(files)
	return files, nil
}

// hashAll runs the pipeline over files with a progress bar and prints the
// per-kind failure summary afterwards.
func hashAll(ctx context.Context, flags *EngineFlags, files []string, label string) (*pipeline.Report, error) {
	bar := progressbar.NewOptions(len(files),
		progressbar.OptionSetDescription(label),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)

	cfg, err := flags.pipelineConfig(func(ev pipeline.Event) {
		if ev.Stage == pipeline.StageDone || ev.Stage == pipeline.StageFailed {
			_ = bar.Add(1)
		}
	})
	if err != nil {
		return nil, err
	}

	report, err := pipeline.Run(ctx, files, cfg)
	_ = bar.Finish()
	if err != nil {
		return nil, err
	}

	printFailures(report)
	if report.Aborted {
		return report, fmt.Errorf("pipeline aborted: %v", report.AbortCause)
	}
	return report, nil
}

func printFailures(report *pipeline.Report) {
	if len(report.Failures) == 0 {
		return
	}

	total := 0
	for _, n := range report.Failures {
		total += n
	}
	fmt.Printf("%s\n", ui.ErrorStyle.Render(fmt.Sprintf("⚠️  %d file(s) could not be hashed:", total)))
	for kind := decode.KindUnknown; kind <= decode.KindCancelled; kind++ {
		if n := report.Failures[kind]; n > 0 {
			fmt.Printf("   %s: %d\n", kind, n)
		}
	}
	for _, res := range report.Results {
		if res.Err != nil {
			fmt.Printf("   %s\n", ui.DimStyle.Render(res.Err.Error()))
		}
	}
}
