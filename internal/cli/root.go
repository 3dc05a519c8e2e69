// Package cli wires the cobra commands: the interactive form (root), the
// fixed-path batch run (auto) and init-config.
package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/nconklindev/ttvfill/internal/config"
	"github.com/nconklindev/ttvfill/internal/logger"
	"github.com/nconklindev/ttvfill/internal/ui"
)

// Set from main via ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

var (
	configPath string
	logDir     string
)

func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ttvfill",
		Short: "Fill a TTV Excel template with Z values from two XYZ text files",
		Long: `ttvfill copies the Z column of two "x y z" text files into two sheets of an
Excel template and saves the result under a new name.

Run without a subcommand to open the interactive form.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),
		RunE:          runInteractive,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: ttvfill.toml next to the executable)")
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", "", "Directory for ttvfill.log (default from config)")

	rootCmd.AddCommand(NewAutoCommand())
	rootCmd.AddCommand(NewInitConfigCommand())

	return rootCmd
}

// Execute runs rootCmd and exits non-zero on failure.
func Execute(rootCmd *cobra.Command) {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func resolvedConfigPath() string {
	if configPath != "" {
		return configPath
	}
	return filepath.Join(config.AppDir(), config.DefaultFileName)
}

// setupLogging opens the log file named by the flags or cfg.
func setupLogging(cfg *config.Config) (io.Closer, error) {
	dir := logDir
	if dir == "" {
		dir = cfg.Log.Directory
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(config.AppDir(), dir)
		}
	}
	return logger.Setup(dir, cfg.Log.Level)
}

func runInteractive(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(resolvedConfigPath())
	if err != nil {
		return err
	}

	closer, err := setupLogging(cfg)
	if err != nil {
		return err
	}
	defer closer.Close()

	logger.Info("starting interactive session", "version", Version)

	p := tea.NewProgram(ui.InitialModel(cfg.Form(config.AppDir())), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		logger.Error("interactive session failed", "error", err)
		return err
	}
	return nil
}
