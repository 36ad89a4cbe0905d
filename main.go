package main

import (
	"github.com/alecthomas/kong"

	"github.com/lepinkainen/videodup/cmd"
	"github.com/lepinkainen/videodup/types"
)

var Version = "dev"

type CLI struct {
	Search    cmd.SearchCmd    `cmd:"" help:"Find groups of near-duplicate videos within directories"`
	Reference cmd.ReferenceCmd `cmd:"" help:"Find duplicates of reference videos among candidates"`
	Unique    cmd.UniqueCmd    `cmd:"" help:"List videos that have no duplicates"`
	Hash      cmd.HashCmd      `cmd:"" help:"Compute and print video fingerprints"`
	Quick     cmd.QuickCmd     `cmd:"" help:"Quick single-frame similarity prefilter"`
	Cache     cmd.CacheCmd     `cmd:"" help:"Inspect or purge the hash cache"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("videodup"),
		kong.Description("Find near-duplicate video files by perceptual hashing"),
		kong.Bind(&types.AppContext{Version: Version}),
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
