package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/abdul-hamid-achik/lazyreq/packages/core/env"
	"github.com/abdul-hamid-achik/lazyreq/packages/core/parser"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list <file|directory>",
	Short: "List the requests and hooks in .lreq files",
	Long: `List the requests and hooks defined in .lreq files.

Examples:
  lazyreq list api.lreq
  lazyreq list ./requests/`,
	Args: cobra.MinimumNArgs(1),
	RunE: listCommand,
}

func listCommand(cmd *cobra.Command, args []string) error {
	files, err := collectFiles(args)
	if err != nil {
		return err
	}

	if len(files) == 0 {
		return usageErrorf("no %s files found", FileExtension)
	}

	out := cmd.OutOrStdout()
	bold := color.New(color.Bold).SprintFunc()
	faint := color.New(color.Faint).SprintFunc()

	var failed error
	for _, file := range files {
		f, err := parser.ParseFile(file)
		if err != nil {
			fmt.Fprintf(cmd.OutOrStderr(), "Error parsing %s: %v\n", file, err)
			failed = err
			continue
		}

		fmt.Fprintf(out, "\n%s:\n", bold(file))
		if len(f.Requests) > 0 {
			fmt.Fprintln(out, "  requests:")
		}
		for _, req := range f.Requests {
			fmt.Fprintf(out, "    %-20s %-7s %s\n", req.ID, req.Method, req.URL)
			if len(req.Multipart) > 0 {
				fmt.Fprintf(out, "    %-20s %s\n", "", faint(fmt.Sprintf("multipart: %d part(s)", len(req.Multipart))))
			}
		}
		// Hooks print as the runner sees them: sorted, later definitions winning.
		hooks := env.NewHooks(f.Hooks)
		if len(hooks) > 0 {
			fmt.Fprintln(out, "  hooks:")
		}
		for _, name := range hooks.Names() {
			hook, _ := hooks.Get(name)
			ttl := "no cache"
			if hook.Cacheable {
				ttl = "ttl " + hook.TTL.String()
			}
			fmt.Fprintf(out, "    %-20s %s %s\n", hook.Name, hook.Spec(), faint("("+ttl+")"))
		}
	}

	return failed
}

// collectFiles expands directories into the .lreq files they contain.
func collectFiles(args []string) ([]string, error) {
	var files []string

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", arg, err)
		}

		if info.IsDir() {
			err := filepath.Walk(arg, func(path string, info os.FileInfo, err error) error {
				if err != nil {
					return err
				}
				if !info.IsDir() && isLazyreqFile(path) {
					files = append(files, path)
				}
				return nil
			})
			if err != nil {
				return nil, err
			}
		} else if isLazyreqFile(arg) {
			files = append(files, arg)
		}
	}

	return files, nil
}

func isLazyreqFile(path string) bool {
	return filepath.Ext(path) == FileExtension
}
