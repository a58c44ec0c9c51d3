package cmd

import (
	"fmt"

	"github.com/abdul-hamid-achik/lazyreq/packages/core/errs"
	"github.com/abdul-hamid-achik/lazyreq/packages/core/parser"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file|directory>",
	Short: "Validate .lreq files without executing them",
	Long: `Validate .lreq files without executing them. Besides syntax errors this
reports hooks that reference undefined requests.

Examples:
  lazyreq validate api.lreq
  lazyreq validate ./requests/`,
	Args: cobra.MinimumNArgs(1),
	RunE: validateCommand,
}

func validateCommand(cmd *cobra.Command, args []string) error {
	files, err := collectFiles(args)
	if err != nil {
		return err
	}

	if len(files) == 0 {
		return usageErrorf("no %s files found", FileExtension)
	}

	failures := 0
	for _, file := range files {
		f, err := parser.ParseFile(file)
		if err != nil {
			fmt.Fprintf(cmd.OutOrStderr(), "Error in %s: %v\n", file, err)
			failures++
			continue
		}

		problems := parser.Validate(f)
		for _, p := range problems {
			fmt.Fprintf(cmd.OutOrStderr(), "Error in %s: %v\n", file, p)
		}
		if len(problems) > 0 {
			failures++
			continue
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Valid: %s (%d requests, %d hooks)\n", file, len(f.Requests), len(f.Hooks))
	}

	if failures > 0 {
		return errs.New(errs.ErrInvalidDefinition, "", fmt.Errorf("%d of %d file(s) failed validation", failures, len(files)))
	}

	return nil
}
