package cmd

import (
	"io"
	"os"
	"time"

	mdwlog "github.com/msto63/funlang/foundation/core/log"
	"github.com/msto63/funlang/foundation/lang"
	"github.com/msto63/funlang/foundation/lang/ast"
	"github.com/msto63/funlang/internal/history/store"
	"github.com/msto63/funlang/internal/interpreter/service"
	"github.com/msto63/funlang/pkg/core/cache"
	"github.com/msto63/funlang/pkg/core/config"
	"github.com/msto63/funlang/pkg/core/logging"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool

	appConfig *config.Config
	logger    *mdwlog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "funlang",
	Short: "funlang - a tiny integer language",
	Long: `funlang runs programs written in a small integer language with
variables, functions, loops and dynamic scoping.

Front ends:
  run      - run a program file locally or on a server
  repl     - interactive session
  serve    - gRPC and WebSocket evaluation servers
  history  - inspect recorded runs`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $FUNLANG_CONFIG or ./funlang.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log at debug level")
}

// loadConfig reads the configuration and sets up the default logger
func loadConfig(cmd *cobra.Command, args []string) error {
	var err error
	if cfgFile != "" {
		appConfig, err = config.Load(cfgFile)
	} else {
		appConfig, err = config.LoadFromEnv()
	}
	if err != nil {
		return err
	}

	lc := logging.FromAppConfig("funlang", appConfig)
	lc.Output = cmd.ErrOrStderr()
	if verbose {
		lc.Level = "debug"
	}
	logger = logging.NewLogger(lc)
	mdwlog.SetDefault(logger)

	logger.Debug("Configuration loaded", mdwlog.Fields{"source": appConfig.Source()})
	return nil
}

// newEngine creates an engine printing to stdout
func newEngine(stdout io.Writer) (*lang.Engine, error) {
	return lang.New(lang.Options{
		Logger:         logger,
		MaxCallDepth:   appConfig.Interpreter.MaxCallDepth,
		MaxSourceBytes: appConfig.Interpreter.MaxSourceBytes,
		Stdout:         stdout,
	})
}

// openHistory opens the run history, or returns nil when it is disabled
func openHistory(disabled bool) (store.Store, error) {
	if disabled || !appConfig.HistoryEnabled() {
		return nil, nil
	}
	history, err := store.Open(appConfig.History.Path)
	if err != nil {
		return nil, err
	}
	return history, nil
}

// newService wires engine and history into the interpreter service
func newService(stdout io.Writer, noHistory bool) (*service.Service, func(), error) {
	engine, err := newEngine(stdout)
	if err != nil {
		return nil, nil, err
	}
	history, err := openHistory(noHistory)
	if err != nil {
		return nil, nil, err
	}

	parsed := cache.New[*ast.File](cache.Config{
		MaxItems:        appConfig.Interpreter.ParseCacheSize,
		TTL:             10 * time.Minute,
		CleanupInterval: time.Minute,
	})
	cleanup := func() {
		parsed.Close()
		if history != nil {
			history.Close()
		}
	}

	svc, err := service.NewService(service.Config{
		Engine:     engine,
		History:    history,
		ParseCache: parsed,
		Timeout:    appConfig.Interpreter.Timeout.Duration,
		Logger:     logger,
	})
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return svc, cleanup, nil
}

// readSource reads a program from path, or from stdin for "-"
func readSource(cmd *cobra.Command, path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		return string(data), err
	}
	data, err := os.ReadFile(path)
	return string(data), err
}
