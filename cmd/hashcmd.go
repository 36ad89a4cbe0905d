package cmd

import (
	"context"
	"fmt"

	"github.com/lepinkainen/videodup/types"
	"github.com/lepinkainen/videodup/ui"
	"github.com/lepinkainen/videodup/utils"
)

// HashCmd computes and prints the fingerprint of individual files, mainly
// as a debugging aid for threshold tuning.
type HashCmd struct {
	EngineFlags
	Files []string `arg:"" name:"files" help:"Video files to hash" type:"existingfile"`
}

func (cmd *HashCmd) Run(appCtx *types.AppContext) error {
	if err := utils.ValidateDependencies(cmd.Decoder); err != nil {
		return err
	}

	report, err := hashAll(context.Background(), &cmd.EngineFlags, cmd.Files, "hashing")
	if err != nil {
		return err
	}

	for _, h := range report.Hashes {
		fmt.Printf("%s\n", ui.ProcessingStyle.Render(h.Path))
		fmt.Printf("  duration: %.1fs\n", float64(h.DurationMS)/1000)
		if h.Crop != nil {
			fmt.Printf("  crop: %s\n", h.Crop)
		}
		fmt.Printf("  temporal: %016x\n", h.Temporal)
		fmt.Printf("  spatial:")
		for _, s := range h.Spatial {
			fmt.Printf(" %016x", s)
		}
		fmt.Println()
	}
	return nil
}
