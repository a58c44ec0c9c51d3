package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "lazyreq <file.lreq> <id>",
	Short: "Run HTTP requests from plain text, with variables and cached macros.",
	Long: `lazyreq runs HTTP requests defined in .lreq files. Requests can use
variables ($host), environment values ($env.TOKEN) and hooks: macros that
execute another request and pull a field out of its JSON response
($auth.data.token), optionally caching the result for a number of seconds.

Examples:
  lazyreq api.lreq getUser
  lazyreq api.lreq upload --curl
  lazyreq list api.lreq`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 0 && len(args) != 2 {
			return usageErrorf("expected <file.lreq> <id>, got %d argument(s)", len(args))
		}
		return nil
	},
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}
		return runCommand(cmd, args)
	},
}

func Execute(v, bt string) {
	version = v
	buildTime = bt
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		printError(rootCmd, err)
		os.Exit(exitCode(err))
	}
}

// printError writes err to stderr. stdout stays reserved for results.
func printError(cmd *cobra.Command, err error) {
	fmt.Fprintf(cmd.ErrOrStderr(), "%s %v\n", color.RedString("Error:"), err)
}

func init() {
	addRunFlags(rootCmd)
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &exitError{code: ExitUsageError, err: err}
	})

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
}
