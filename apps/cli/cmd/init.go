package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/abdul-hamid-achik/lazyreq/packages/core/config"
	"github.com/spf13/cobra"
)

var forceInit bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new lazyreq project",
	Long: `Initialize a new lazyreq project in the current directory.

This creates:
  - .lazyreq.yaml  - Configuration file
  - example.lreq   - Example request collection

Examples:
  lazyreq init
  lazyreq init --force`,
	Args: cobra.NoArgs,
	RunE: initCommand,
}

func init() {
	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Overwrite existing files")
}

const exampleContent = `# Variables are referenced as $name. $env.NAME reads the environment.
VARS
host = https://httpbin.org
user = $env.USER

# Hooks run a request and expose its JSON response as $hook.path.
# A trailing number caches the response for that many seconds.
HOOKS
login = $req.login 300

ID: login
POST $host/anything
H:Content-Type=application/json
{"user": "$user", "token": "example-token"}

ID: profile
GET $host/anything/profile
H:Authorization=Bearer $login.json.token

ID: upload
POST $host/anything/upload
M:owner=$user
M:readme=file://README.md
`

func initCommand(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}

	configFile := filepath.Join(cwd, ".lazyreq.yaml")
	exampleFile := filepath.Join(cwd, "example"+FileExtension)

	if !forceInit {
		for _, f := range []string{configFile, exampleFile} {
			if _, err := os.Stat(f); err == nil {
				return usageErrorf("file already exists: %s (use --force to overwrite)", f)
			}
		}
	}

	cfg := config.DefaultConfig()
	cfg.Headers = map[string]string{
		"User-Agent": "lazyreq/" + version,
	}
	if err := cfg.SaveConfig(configFile); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", configFile)

	if err := os.WriteFile(exampleFile, []byte(exampleContent), 0644); err != nil {
		return fmt.Errorf("failed to create example file: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", exampleFile)

	fmt.Fprintf(cmd.OutOrStdout(), "\nlazyreq project initialized!\n")
	fmt.Fprintf(cmd.OutOrStdout(), "Run 'lazyreq example.lreq profile' to execute the example request.\n")

	return nil
}
