package cmd

import (
	"context"
	"fmt"

	"github.com/lepinkainen/videodup/match"
	"github.com/lepinkainen/videodup/types"
	"github.com/lepinkainen/videodup/ui"
	"github.com/lepinkainen/videodup/utils"
)

// UniqueCmd lists the videos that belong to no duplicate group.
type UniqueCmd struct {
	EngineFlags
	Dirs []string `arg:"" name:"dirs" help:"Directories to scan" type:"existingdir"`
}

func (cmd *UniqueCmd) Run(appCtx *types.AppContext) error {
	fmt.Println(ui.HeaderStyle.Render(fmt.Sprintf("videodup %s", appCtx.VersionString())))

	if err := utils.ValidateDependencies(cmd.Decoder); err != nil {
		return err
	}

	files, err := collectFiles(cmd.Dirs)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Printf("%s\n", ui.InfoStyle.Render("No video files found"))
		return nil
	}

	report, err := hashAll(context.Background(), &cmd.EngineFlags, files, "hashing")
	if err != nil {
		return err
	}

	unique := match.SearchUnique(report.Hashes, cmd.matchOptions())

	fmt.Printf("\n%s\n", ui.InfoStyle.Render(fmt.Sprintf("%d of %d video(s) have no duplicate:", len(unique), len(report.Hashes))))
	for _, h := range unique {
		fmt.Printf("  %s\n", h.Path)
	}
	return nil
}
