package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sightlinehq/sightline/internal/cache"
	"github.com/sightlinehq/sightline/internal/config"
)

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the persistent result cache",
	}
	cmd.AddCommand(newCacheListCmd(), newCacheInvalidateCmd(), newCachePurgeCmd())
	return cmd
}

// openStore opens the configured sqlite cache, failing when only the
// memory layer is configured (nothing to inspect across processes).
func openStore() (*cache.Store, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if cfg.CachePath == "" {
		return nil, fmt.Errorf("no cache_path configured; the memory cache is per-process")
	}
	return cache.Open(cfg.CachePath)
}

func newCacheListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cached entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			keys, err := store.Keys()
			if err != nil {
				return err
			}
			if len(keys) == 0 {
				fmt.Println("cache is empty")
				return nil
			}
			now := time.Now()
			for _, k := range keys {
				entry, ok := store.Get(parseKey(k))
				if !ok {
					continue
				}
				state := "fresh"
				if !entry.Fresh(now) {
					state = "stale"
				}
				fmt.Printf("%-60s %s entities=%d records=%d expires=%s\n",
					k, state, len(entry.Entities), len(entry.Records),
					entry.ExpiresAt.Format(time.RFC3339))
			}
			return nil
		},
	}
}

func newCacheInvalidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "invalidate <key>",
		Short: "Remove one cache entry by its business|version|source key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			store.Invalidate(parseKey(args[0]))
			fmt.Printf("invalidated %s\n", args[0])
			return nil
		},
	}
}

func newCachePurgeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "purge",
		Short: "Delete all expired entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			n, err := store.Purge(time.Now())
			if err != nil {
				return err
			}
			fmt.Printf("purged %d expired entries\n", n)
			return nil
		},
	}
}

// parseKey splits a rendered key back into its parts.
func parseKey(s string) cache.Key {
	parts := strings.SplitN(s, "|", 3)
	key := cache.Key{}
	if len(parts) > 0 {
		key.BusinessID = parts[0]
	}
	if len(parts) > 1 {
		key.ProfileVersion = parts[1]
	}
	if len(parts) > 2 {
		key.Source = parts[2]
	}
	return key
}
