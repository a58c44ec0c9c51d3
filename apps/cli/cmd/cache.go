package cmd

import (
	"fmt"
	"time"

	"github.com/abdul-hamid-achik/lazyreq/packages/cache"
	"github.com/abdul-hamid-achik/lazyreq/packages/core/config"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and manage the macro cache",
	Long: `Inspect and manage the cache that stores the results of hooks with a TTL.

Examples:
  lazyreq cache path
  lazyreq cache list
  lazyreq cache prune
  lazyreq cache clear --cache-backend sqlite`,
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached macro results",
	Args:  cobra.NoArgs,
	RunE:  cacheListCommand,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every cached macro result",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCache(cmd, func(c *cache.Cache) error {
			n, err := c.Clear(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d entries\n", n)
			return nil
		})
	},
}

var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete expired macro results",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCache(cmd, func(c *cache.Cache) error {
			n, err := c.Prune(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d expired entries\n", n)
			return nil
		})
	},
}

var cachePathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the cache location",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCache(cmd, func(c *cache.Cache) error {
			fmt.Fprintln(cmd.OutOrStdout(), c.Store().Location())
			return nil
		})
	},
}

func init() {
	f := cacheCmd.PersistentFlags()
	f.StringVar(&cacheDirFlag, "cache-dir", getEnvString("LAZYREQ_CACHE_DIR", ""), "Macro cache directory (env: LAZYREQ_CACHE_DIR)")
	f.StringVar(&cacheBackendFlag, "cache-backend", getEnvString("LAZYREQ_CACHE_BACKEND", ""), "Macro cache backend: file, sqlite (env: LAZYREQ_CACHE_BACKEND)")
	f.StringVar(&configFlag, "config", getEnvString("LAZYREQ_CONFIG", ""), "Path to config file (env: LAZYREQ_CONFIG)")

	cacheCmd.AddCommand(cacheListCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cachePruneCmd)
	cacheCmd.AddCommand(cachePathCmd)
}

// withCache opens the configured store for the duration of fn.
func withCache(cmd *cobra.Command, fn func(c *cache.Cache) error) error {
	var (
		cfg *config.Config
		err error
	)
	if configFlag != "" {
		cfg, err = config.LoadConfig(configFlag)
	} else {
		cfg, err = config.FindAndLoadConfig(".")
	}
	if err != nil {
		return configError(err)
	}

	dir, backend := cfg.CacheDir, cfg.CacheBackend
	if flagSet(cmd, "cache-dir", "LAZYREQ_CACHE_DIR") {
		dir = cacheDirFlag
	}
	if flagSet(cmd, "cache-backend", "LAZYREQ_CACHE_BACKEND") {
		backend = cacheBackendFlag
	}

	store, err := openStore(dir, backend)
	if err != nil {
		return configError(err)
	}
	defer store.Close()

	return fn(cache.New(store))
}

func cacheListCommand(cmd *cobra.Command, args []string) error {
	return withCache(cmd, func(c *cache.Cache) error {
		entries, err := c.Store().List(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(entries) == 0 {
			fmt.Fprintf(out, "No cached entries in %s\n", c.Store().Location())
			return nil
		}

		now := c.Now()
		green := color.New(color.FgGreen).SprintFunc()
		yellow := color.New(color.FgYellow).SprintFunc()
		red := color.New(color.FgRed).SprintFunc()

		valid := 0
		for _, e := range entries {
			var status string
			switch {
			case e.ExpiresAt.IsZero():
				status = red("corrupt")
			case e.Expired(now):
				status = yellow("expired")
			default:
				status = green("valid, " + e.ExpiresAt.Sub(now).Truncate(time.Second).String() + " left")
				valid++
			}
			fmt.Fprintf(out, "%s  %6d bytes  %s\n", shortKey(e.Key), len(e.Value), status)
		}
		fmt.Fprintf(out, "\n%d entries, %d valid\n", len(entries), valid)
		return nil
	})
}

func shortKey(key string) string {
	if len(key) > 16 {
		return key[:16]
	}
	return key
}

