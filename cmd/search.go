package cmd

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lepinkainen/videodup/match"
	"github.com/lepinkainen/videodup/types"
	"github.com/lepinkainen/videodup/ui"
	"github.com/lepinkainen/videodup/utils"
)

// SearchCmd finds groups of near-duplicate videos within directories.
type SearchCmd struct {
	EngineFlags
	Dirs  []string `arg:"" name:"dirs" help:"Directories to scan" type:"existingdir"`
	JSON  bool     `help:"Print match groups as JSON"`
	NoTUI bool     `name:"no-tui" help:"Disable interactive review and just list matches"`
}

func (cmd *SearchCmd) Run(appCtx *types.AppContext) error {
	if !cmd.JSON {
		fmt.Println(ui.HeaderStyle.Render(fmt.Sprintf("videodup %s", appCtx.VersionString())))
	}

	if err := utils.ValidateDependencies(cmd.Decoder); err != nil {
		return err
	}

	files, err := collectFiles(cmd.Dirs)
	if err != nil {
		return err
	}
	if len(files) < 2 {
		fmt.Printf("%s\n", ui.InfoStyle.Render(fmt.Sprintf("Found %d video file(s), nothing to compare", len(files))))
		return nil
	}

	report, err := hashAll(context.Background(), &cmd.EngineFlags, files, "hashing")
	if err != nil {
		return err
	}

	groups := match.SearchSelf(report.Hashes, cmd.matchOptions())

	if cmd.JSON {
		return match.WriteJSON(os.Stdout, groups)
	}

	if len(groups) == 0 {
		fmt.Printf("%s\n", ui.SuccessStyle.Render("✅ No duplicates found"))
		return nil
	}

	if cmd.NoTUI {
		fmt.Printf("\n%s\n", ui.InfoStyle.Render(fmt.Sprintf("Found %d group(s) of duplicates:", len(groups))))
		for _, g := range groups {
			fmt.Printf("\n🔸 %s (%d duplicate(s)):\n", g.Reference, len(g.Duplicates))
			for i, d := range g.Duplicates {
				fmt.Printf("  %s (distance %.3f)\n", d, g.Distances[i])
			}
		}
		return nil
	}

	model := ui.NewReviewModel(groups)
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
