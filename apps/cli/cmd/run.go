package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/abdul-hamid-achik/lazyreq/packages/cache"
	"github.com/abdul-hamid-achik/lazyreq/packages/core/config"
	"github.com/abdul-hamid-achik/lazyreq/packages/core/env"
	"github.com/abdul-hamid-achik/lazyreq/packages/core/parser"
	"github.com/abdul-hamid-achik/lazyreq/packages/core/runner"
	"github.com/abdul-hamid-achik/lazyreq/packages/export/curl"
	"github.com/abdul-hamid-achik/lazyreq/packages/http"
	"github.com/abdul-hamid-achik/lazyreq/packages/logger"
	"github.com/abdul-hamid-achik/lazyreq/packages/output"
	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var runCmd = &cobra.Command{
	Use:   "run <file.lreq> <id>",
	Short: "Resolve and send one request from a .lreq file",
	Long: `Resolve every variable and hook referenced by a request, executing
macro requests as needed, then send it and print the response.

Examples:
  lazyreq run api.lreq getUser
  lazyreq run api.lreq upload --curl
  lazyreq run api.lreq login -o json --fail
  lazyreq run api.lreq getUser --env-file .env.staging -vv`,
	Args: cobra.ExactArgs(2),
	RunE: runCommand,
}

const (
	// WatchDebounceDelay is the debounce delay for file watch events
	WatchDebounceDelay = 300 * time.Millisecond

	// FileExtension is the extension of request definition files
	FileExtension = ".lreq"
)

var (
	curlFlag           bool
	curlMultilineFlag  bool
	failFlag           bool
	noCacheFlag        bool
	cacheDirFlag       string
	cacheBackendFlag   string
	timeoutFlag        string
	requestTimeoutFlag string
	envFileFlag        string
	configFlag         string
	outputFlag         string
	noColorFlag        bool
	verboseFlag        int // 0=warn, 1=-v, 2=-vv
	logFormatFlag      string
	watchFlag          bool
	maxDepthFlag       int
	insecureFlag       bool
	proxyFlag          string
)

func init() {
	addRunFlags(runCmd)
}

// addRunFlags registers the run flags on c. The root command shares them so
// "lazyreq <file> <id>" behaves like "lazyreq run <file> <id>".
func addRunFlags(c *cobra.Command) {
	f := c.Flags()

	// Output flags
	f.BoolVar(&curlFlag, "curl", false, "Print the resolved request as a curl command instead of sending it")
	f.BoolVar(&curlMultilineFlag, "curl-multiline", false, "Break the curl command over several lines")
	f.StringVarP(&outputFlag, "output", "o", getEnvString("LAZYREQ_OUTPUT", output.FormatConsole), "Output format: console, json (env: LAZYREQ_OUTPUT)")
	f.BoolVar(&noColorFlag, "no-color", getEnvBool("LAZYREQ_NO_COLOR", false), "Disable colored output (env: LAZYREQ_NO_COLOR)")
	f.CountVarP(&verboseFlag, "verbose", "v", "Verbose output (-v for info logs, -vv for debug)")
	f.StringVar(&logFormatFlag, "log-format", getEnvString("LAZYREQ_LOG_FORMAT", ""), "Log format: console, json (env: LAZYREQ_LOG_FORMAT)")
	f.BoolVar(&failFlag, "fail", getEnvBool("LAZYREQ_FAIL", false), "Exit with status 1 when the response status is not 2xx (env: LAZYREQ_FAIL)")

	// Input flags
	f.StringVar(&envFileFlag, "env-file", getEnvString("LAZYREQ_ENV_FILE", ""), "Path to .env file served to $env.NAME variables (env: LAZYREQ_ENV_FILE)")
	f.StringVar(&configFlag, "config", getEnvString("LAZYREQ_CONFIG", ""), "Path to config file (env: LAZYREQ_CONFIG)")
	f.BoolVarP(&watchFlag, "watch", "w", false, "Watch the file for changes and re-run the request")

	// Cache flags
	f.BoolVar(&noCacheFlag, "no-cache", getEnvBool("LAZYREQ_NO_CACHE", false), "Ignore and do not write the macro cache (env: LAZYREQ_NO_CACHE)")
	f.StringVar(&cacheDirFlag, "cache-dir", getEnvString("LAZYREQ_CACHE_DIR", ""), "Macro cache directory (env: LAZYREQ_CACHE_DIR)")
	f.StringVar(&cacheBackendFlag, "cache-backend", getEnvString("LAZYREQ_CACHE_BACKEND", ""), "Macro cache backend: file, sqlite (env: LAZYREQ_CACHE_BACKEND)")

	// Execution flags
	f.StringVar(&timeoutFlag, "timeout", getEnvString("LAZYREQ_TIMEOUT", ""), "Deadline for the whole run including macros (e.g., 1m) (env: LAZYREQ_TIMEOUT)")
	f.StringVar(&requestTimeoutFlag, "request-timeout", getEnvString("LAZYREQ_REQUEST_TIMEOUT", ""), "Timeout for each HTTP request (e.g., 30s) (env: LAZYREQ_REQUEST_TIMEOUT)")
	f.IntVar(&maxDepthFlag, "max-depth", getEnvInt("LAZYREQ_MAX_DEPTH", 0), "Maximum macro nesting depth (env: LAZYREQ_MAX_DEPTH)")

	// Network flags
	f.StringVar(&proxyFlag, "proxy", getEnvString("LAZYREQ_PROXY", ""), "Proxy URL for HTTP requests (env: LAZYREQ_PROXY)")
	f.BoolVarP(&insecureFlag, "insecure", "k", getEnvBool("LAZYREQ_INSECURE", false), "Disable SSL certificate validation (env: LAZYREQ_INSECURE)")
}

// Environment variable helpers
func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		return val == "true" || val == "1" || val == "yes"
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

// flagSet reports whether a flag was given on the command line or through
// its LAZYREQ_* environment default.
func flagSet(cmd *cobra.Command, name, envKey string) bool {
	return cmd.Flags().Changed(name) || os.Getenv(envKey) != ""
}

func runCommand(cmd *cobra.Command, args []string) error {
	path, id := args[0], args[1]
	if filepath.Ext(path) != FileExtension {
		return usageErrorf("%s is not a %s file", path, FileExtension)
	}

	if envFileFlag != "" {
		if _, err := env.ExportDotEnv(envFileFlag); err != nil {
			return configError(fmt.Errorf("cannot load env file: %w", err))
		}
	}

	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	log := logger.New(logger.Options{
		Verbosity: verboseFlag,
		Format:    cfg.LogFormat,
		NoColor:   cfg.GetNoColor(),
	}).With(zap.String("run_id", runID))
	defer func() { _ = log.Sync() }()

	overall, err := parseDuration("timeout", timeoutFlag)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	macroCache, closeCache := openCache(cfg, log)
	defer closeCache()

	client := http.NewClient(
		http.WithTimeout(time.Duration(cfg.Timeout)*time.Millisecond),
		http.WithFollowRedirects(cfg.GetFollowRedirects()),
		http.WithMaxRedirects(cfg.MaxRedirects),
		http.WithValidateSSL(cfg.GetValidateSSL()),
		http.WithProxy(cfg.Proxy),
	)

	formatter, err := output.New(strings.ToLower(outputFlag), cmd.OutOrStdout(), verboseFlag > 0, cfg.GetNoColor())
	if err != nil {
		return usageErrorf("%v", err)
	}

	execute := func() error {
		file, err := parser.ParseFile(path)
		if err != nil {
			return err
		}

		r := runner.New(file,
			runner.WithTransport(client),
			runner.WithCache(macroCache),
			runner.WithLogger(log),
			runner.WithMaxDepth(cfg.MaxDepth),
			runner.WithDefaultHeaders(cfg.Headers),
		)

		runCtx := ctx
		if overall > 0 {
			var cancel context.CancelFunc
			runCtx, cancel = context.WithTimeout(ctx, overall)
			defer cancel()
		}

		log.Info("running request", zap.String("file", path), zap.String("request", id))

		if curlFlag {
			resolved, err := r.Resolve(runCtx, id)
			if err != nil {
				return err
			}
			exporter := curl.NewExporter(
				curl.WithMultiline(curlMultilineFlag),
				curl.WithInsecure(!cfg.GetValidateSSL()),
			)
			fmt.Fprintln(cmd.OutOrStdout(), exporter.Export(resolved))
			return nil
		}

		result, err := r.Run(runCtx, id)
		if err != nil {
			return err
		}
		formatter.FormatResult(result)

		if failFlag && !result.Response.IsSuccess() {
			return &exitError{
				code: ExitStatusFailure,
				err:  fmt.Errorf("request %s returned status %d", id, result.Response.StatusCode),
			}
		}
		return nil
	}

	err = execute()
	if !watchFlag {
		if err != nil && strings.EqualFold(outputFlag, output.FormatJSON) {
			formatter.FormatError(err)
		}
		return err
	}
	if err != nil {
		printError(cmd, err)
	}

	return watch(ctx, cmd, path, execute)
}

// loadSettings merges the config file with flags. Flags win.
func loadSettings(cmd *cobra.Command) (*config.Config, error) {
	var (
		fileConfig *config.Config
		err        error
	)
	if configFlag != "" {
		fileConfig, err = config.LoadConfig(configFlag)
	} else {
		cwd, cwdErr := os.Getwd()
		if cwdErr != nil {
			return nil, cwdErr
		}
		fileConfig, err = config.FindAndLoadConfig(cwd)
	}
	if err != nil {
		return nil, configError(err)
	}

	overrides := &config.Config{}
	if flagSet(cmd, "request-timeout", "LAZYREQ_REQUEST_TIMEOUT") {
		d, err := parseDuration("request-timeout", requestTimeoutFlag)
		if err != nil {
			return nil, err
		}
		overrides.Timeout = int(d / time.Millisecond)
	}
	if flagSet(cmd, "proxy", "LAZYREQ_PROXY") {
		overrides.Proxy = proxyFlag
	}
	if flagSet(cmd, "insecure", "LAZYREQ_INSECURE") {
		overrides.ValidateSSL = config.BoolPtr(!insecureFlag)
	}
	if flagSet(cmd, "cache-dir", "LAZYREQ_CACHE_DIR") {
		overrides.CacheDir = cacheDirFlag
	}
	if flagSet(cmd, "cache-backend", "LAZYREQ_CACHE_BACKEND") {
		overrides.CacheBackend = cacheBackendFlag
	}
	if flagSet(cmd, "no-cache", "LAZYREQ_NO_CACHE") {
		overrides.NoCache = config.BoolPtr(noCacheFlag)
	}
	if flagSet(cmd, "max-depth", "LAZYREQ_MAX_DEPTH") {
		overrides.MaxDepth = maxDepthFlag
	}
	if flagSet(cmd, "no-color", "LAZYREQ_NO_COLOR") {
		overrides.NoColor = config.BoolPtr(noColorFlag)
	}
	if flagSet(cmd, "log-format", "LAZYREQ_LOG_FORMAT") {
		overrides.LogFormat = logFormatFlag
	}

	cfg := config.DefaultConfig().Merge(fileConfig).Merge(overrides)
	if err := cfg.Validate(); err != nil {
		return nil, configError(err)
	}
	return cfg, nil
}

func parseDuration(flag, value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil || d < 0 {
		return 0, usageErrorf("invalid --%s value %q (use format like 30s, 1m, 500ms)", flag, value)
	}
	return d, nil
}

// openCache returns the macro cache configured by cfg, or nil when caching is
// off or the store cannot be opened. Cache problems never abort a run.
func openCache(cfg *config.Config, log *zap.Logger) (*cache.Cache, func()) {
	if cfg.GetNoCache() {
		return nil, func() {}
	}
	store, err := openStore(cfg.CacheDir, cfg.CacheBackend)
	if err != nil {
		log.Warn("macro cache disabled", zap.Error(err))
		return nil, func() {}
	}
	log.Debug("macro cache opened", zap.String("location", store.Location()))
	return cache.New(store, cache.WithLogger(log)), func() { _ = store.Close() }
}

func openStore(dir, backend string) (cache.Store, error) {
	if dir == "" {
		dir = cache.DefaultDir()
	}
	switch backend {
	case "", "file":
		return cache.NewFileStore(dir), nil
	case "sqlite":
		return cache.NewSQLiteStore(cache.DefaultSQLitePath(dir))
	default:
		return nil, fmt.Errorf("unknown cache backend %q (expected file or sqlite)", backend)
	}
}

// watch re-runs execute whenever path is written, until ctx is cancelled.
func watch(ctx context.Context, cmd *cobra.Command, path string, execute func() error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	// Editors often replace files on save, so watch the directory.
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "\nWatching %s for changes... (press Ctrl+C to stop)\n\n", path)

	rerun := make(chan struct{}, 1)
	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Name != abs || !(event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) {
				continue
			}
			// Debounce: reset timer on each event
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(WatchDebounceDelay, func() {
				select {
				case rerun <- struct{}{}:
				default:
				}
			})

		case <-rerun:
			fmt.Fprintf(cmd.ErrOrStderr(), "\nFile changed: %s\nRe-running...\n\n", path)
			if err := execute(); err != nil {
				printError(cmd, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "\nWatching for changes... (press Ctrl+C to stop)\n")

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			printError(cmd, fmt.Errorf("watcher error: %w", err))
		}
	}
}
