package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/orgscout/orgscout/config"
	"github.com/orgscout/orgscout/internal/cache"
)

// NewCmdCache creates the cache command with subcommands.
func NewCmdCache() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the fetched page cache",
	}

	cmd.AddCommand(newCmdCacheClear())
	cmd.AddCommand(newCmdCacheStats())

	return cmd
}

// newCmdCacheClear creates the cache clear subcommand.
func newCmdCacheClear() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear the fetched page cache",
		RunE:  runCacheClear,
	}
}

// newCmdCacheStats creates the cache stats subcommand.
func newCmdCacheStats() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show cache statistics",
		RunE:  runCacheStats,
	}
}

func openCacheStore() (*cache.Store, config.Settings, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, config.Settings{}, err
	}
	settings := cfg.GetSettings()

	path := settings.CachePath
	if path == "" {
		if path, err = cache.DefaultPath(); err != nil {
			return nil, config.Settings{}, fmt.Errorf("failed to locate cache directory: %w", err)
		}
	}
	store, err := cache.Open(path, 0)
	if err != nil {
		return nil, config.Settings{}, fmt.Errorf("failed to access cache: %w", err)
	}
	return store, settings, nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	store, _, err := openCacheStore()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if err := store.Clear(); err != nil {
		return err
	}

	fmt.Println("Cache cleared.")
	return nil
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	store, settings, err := openCacheStore()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	total, valid, err := store.Stats()
	if err != nil {
		return fmt.Errorf("failed to get cache stats: %w", err)
	}

	fmt.Printf("Cache statistics:\n")
	fmt.Printf("  Pages (TTL: %s):\n", formatTTL(settings.CacheTTL))
	fmt.Printf("    Total: %d\n", total)
	fmt.Printf("    Valid: %d\n", valid)
	fmt.Printf("    Expired: %d\n", total-valid)
	return nil
}

// formatTTL renders a TTL as whole days when it divides evenly.
func formatTTL(ttl time.Duration) string {
	const day = 24 * time.Hour
	if ttl >= day && ttl%day == 0 {
		return fmt.Sprintf("%dd", ttl/day)
	}
	return ttl.String()
}
