package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/lepinkainen/videodup/match"
	"github.com/lepinkainen/videodup/types"
	"github.com/lepinkainen/videodup/ui"
	"github.com/lepinkainen/videodup/utils"
)

// ReferenceCmd searches candidate directories for duplicates of a set of
// reference videos. Candidates may match several references.
type ReferenceCmd struct {
	EngineFlags
	Refs []string `name:"refs" help:"Directories containing the reference videos" type:"existingdir" required:""`
	Dirs []string `arg:"" name:"dirs" help:"Candidate directories to search" type:"existingdir"`
	JSON bool     `help:"Print match groups as JSON"`
}

func (cmd *ReferenceCmd) Run(appCtx *types.AppContext) error {
	if !cmd.JSON {
		fmt.Println(ui.HeaderStyle.Render(fmt.Sprintf("videodup %s", appCtx.VersionString())))
	}

	if err := utils.ValidateDependencies(cmd.Decoder); err != nil {
		return err
	}

	refFiles, err := collectFiles(cmd.Refs)
	if err != nil {
		return err
	}
	candFiles, err := collectFiles(cmd.Dirs)
	if err != nil {
		return err
	}
	if len(refFiles) == 0 || len(candFiles) == 0 {
		fmt.Printf("%s\n", ui.InfoStyle.Render(
			fmt.Sprintf("Nothing to compare (%d reference(s), %d candidate(s))", len(refFiles), len(candFiles))))
		return nil
	}

	ctx := context.Background()
	refReport, err := hashAll(ctx, &cmd.EngineFlags, refFiles, "hashing references")
	if err != nil {
		return err
	}
	candReport, err := hashAll(ctx, &cmd.EngineFlags, candFiles, "hashing candidates")
	if err != nil {
		return err
	}

	groups := match.SearchWithReferences(refReport.Hashes, candReport.Hashes, cmd.matchOptions())

	if cmd.JSON {
		return match.WriteJSON(os.Stdout, groups)
	}

	if len(groups) == 0 {
		fmt.Printf("%s\n", ui.SuccessStyle.Render("✅ No candidates match any reference"))
		return nil
	}

	fmt.Printf("\n%s\n", ui.InfoStyle.Render(fmt.Sprintf("%d reference(s) have duplicates:", len(groups))))
	for _, g := range groups {
		fmt.Printf("\n🔸 %s:\n", g.Reference)
		for i, d := range g.Duplicates {
			fmt.Printf("  %s (distance %.3f)\n", d, g.Distances[i])
		}
	}
	return nil
}
