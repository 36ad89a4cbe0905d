package cmd

import (
	"fmt"

	"github.com/lepinkainen/videodup/cache"
	"github.com/lepinkainen/videodup/ui"
)

// CacheCmd inspects or purges the hash cache. Purging is the only bulk
// eviction; otherwise an entry is removed only when it fails to decode or
// when its source path is stored again under a different key.
type CacheCmd struct {
	Stats CacheStatsCmd `cmd:"" help:"Show cache entry count and size"`
	Purge CachePurgeCmd `cmd:"" help:"Remove all cached hashes"`
}

type CacheStatsCmd struct {
	CacheDir string `name:"cache-dir" help:"Cache root path (defaults to the user cache dir)"`
}

func (cmd *CacheStatsCmd) Run() error {
	flags := EngineFlags{CacheDir: cmd.CacheDir}
	dir, err := flags.cacheDir()
	if err != nil {
		return err
	}

	store, err := cache.Open(dir)
	if err != nil {
		return err
	}
	entries, bytes, err := store.Stats()
	if err != nil {
		return err
	}

	fmt.Printf("%s\n", ui.InfoStyle.Render(fmt.Sprintf("Cache %s: %d entries, %.1f MiB", dir, entries, float64(bytes)/(1<<20))))
	return nil
}

type CachePurgeCmd struct {
	CacheDir string `name:"cache-dir" help:"Cache root path (defaults to the user cache dir)"`
}

func (cmd *CachePurgeCmd) Run() error {
	flags := EngineFlags{CacheDir: cmd.CacheDir}
	dir, err := flags.cacheDir()
	if err != nil {
		return err
	}

	store, err := cache.Open(dir)
	if err != nil {
		return err
	}
	removed, err := store.Purge()
	if err != nil {
		return err
	}

	fmt.Printf("%s\n", ui.SuccessStyle.Render(fmt.Sprintf("✅ Removed %d cached hash(es) from %s", removed, dir)))
	return nil
}
