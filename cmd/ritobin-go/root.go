package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"ritobin-go/internal/config"
	"ritobin-go/internal/logging"
)

// app carries the state shared by every command of one invocation.
type app struct {
	stdout io.Writer
	stderr io.Writer

	verbosity    string
	configPath   string
	hashtableDir string

	logger *slog.Logger
	store  *config.Store
	cfg    config.AppConfig
	cfgAt  string
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:           "ritobin-go",
		Short:         "Convert and diff League property files",
		Long:          "Convert property files between the binary .bin format and the .py/.ritobin text format, and diff them in either format.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVarP(&a.verbosity, "verbosity", "L", string(logging.Info), "log level: error, warning, info, debug or trace")
	flags.StringVar(&a.configPath, "config", "", "config file path (default: config.toml next to the executable)")
	flags.StringVar(&a.hashtableDir, "hashtable-dir", "", "hashtable directory, overriding the configured one")

	root.AddCommand(
		a.convertCmd(),
		a.diffCmd(),
		a.configCmd(),
		a.downloadCmd(),
		a.verifyCmd(),
	)
	return root
}

// skipConfigLoad marks commands that work on the config file themselves
// and must run even when it cannot be parsed.
const skipConfigLoad = "skip-config-load"

// setup builds the logger and makes sure a config file exists.
func (a *app) setup(cmd *cobra.Command) error {
	v, err := logging.ParseVerbosity(a.verbosity)
	if err != nil {
		return err
	}
	a.logger = logging.New(v, a.stdout, a.stderr)

	var locator config.Locator = config.ExecutableLocator{}
	if a.configPath != "" {
		locator = config.FileLocator(a.configPath)
	}
	a.store = config.NewStore(locator)
	if _, ok := cmd.Annotations[skipConfigLoad]; ok {
		return nil
	}

	cfg, path, err := a.store.LoadOrCreate()
	if err != nil {
		return err
	}
	if a.hashtableDir != "" {
		cfg.HashtableDir = a.hashtableDir
	}
	a.cfg, a.cfgAt = cfg, path
	a.logger.Debug("loaded config", "path", path, "hashtable_dir", cfg.HashtableDir)
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// colorEnabled reports whether w should receive ANSI colors.
func colorEnabled(w io.Writer, disabled bool) bool {
	if disabled || os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isTerminal(w)
}
