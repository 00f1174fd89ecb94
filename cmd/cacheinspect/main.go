// Package main prints what the catalog cache currently holds.
//
// Usage:
//
//	DATA_PATH=~/StorySpine/data go run ./cmd/cacheinspect
//	DATA_PATH=~/StorySpine/data go run ./cmd/cacheinspect --prefix "q:"
//
// Stop the server first: the cache directory is locked while it runs.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/storyspine/storyspine-server/internal/catalog/cache"
	"github.com/storyspine/storyspine-server/internal/logger"
)

var (
	prefix = flag.String("prefix", "", "Only list keys with this prefix")
	limit  = flag.Int("limit", 20, "Entries to print per prefix")
)

func main() {
	flag.Parse()

	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		dataPath = os.ExpandEnv("$HOME/StorySpine/data")
	}
	dir := filepath.Join(dataPath, "cache", "catalog")

	// Only Entries is used, so no upstream catalog is needed.
	c, err := cache.Open(dir, nil, 0, logger.Discard())
	if err != nil {
		log.Fatalf("Failed to open catalog cache: %v", err)
	}
	defer c.Close()

	fmt.Println("=== Catalog Cache Inspection ===")
	fmt.Printf("Path: %s\n\n", dir)

	prefixes := []string{cache.VolumePrefix, cache.SearchPrefix}
	if *prefix != "" {
		prefixes = []string{*prefix}
	}

	now := time.Now()
	for _, p := range prefixes {
		var count int
		var bytes int64
		err := c.Entries(p, func(e cache.Entry) error {
			count++
			bytes += e.Size
			if count <= *limit {
				expires := "never"
				if !e.ExpiresAt.IsZero() {
					expires = humanize.RelTime(now, e.ExpiresAt, "ago", "from now")
				}
				fmt.Printf("  %-60s %8s  expires %s\n", e.Key, humanize.Bytes(uint64(e.Size)), expires)
			}
			return nil
		})
		if err != nil {
			log.Fatalf("Failed to walk %q: %v", p, err)
		}
		if count > *limit {
			fmt.Printf("  ... and %d more\n", count-*limit)
		}
		fmt.Printf("%q: %d entries, %s\n\n", p, count, humanize.Bytes(uint64(bytes)))
	}
}
