package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"guacamaya/internal/config"
	"guacamaya/internal/observability/logging"
)

// logOutputKey is the command annotation selecting where logs go:
// "stdout", "discard", or stderr when unset.
const logOutputKey = "log-output"

// app carries what every subcommand needs after the root pre-run.
type app struct {
	configPath string
	cfg        config.Config
	logger     *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:          "guacamaya",
		Short:        "Noticias de la comunidad: API, sincronización en tiempo real y lector de terminal",
		Version:      appVersion(),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default ./guacamaya.yaml or $HOME/.config/guacamaya/guacamaya.yaml)")

	root.AddCommand(
		newServeCmd(a),
		newBrowseCmd(a),
		newFeedCmd(a),
		newArticleCmd(a),
		newAuthCmd(a),
		newMigrateCmd(a),
		newSeedCmd(a),
		newStatusCmd(a, "publish", "published"),
		newStatusCmd(a, "unpublish", "draft"),
	)
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logging.New(logging.Options{
		Level:  cfg.App.LogLevel,
		Format: cfg.App.LogFormat,
		Output: logOutput(cmd),
	})
	slog.SetDefault(a.logger)

	for _, w := range cfg.Warnings {
		a.logger.Warn("config value replaced by default", slog.String("detail", w))
	}
	return nil
}

// logOutput walks up from cmd to the first command with a log-output annotation.
func logOutput(cmd *cobra.Command) io.Writer {
	for c := cmd; c != nil; c = c.Parent() {
		switch c.Annotations[logOutputKey] {
		case "stdout":
			return os.Stdout
		case "discard":
			return io.Discard
		}
	}
	return cmd.ErrOrStderr()
}

// appVersion returns the build version, overridable with VERSION.
func appVersion() string {
	if v := os.Getenv("VERSION"); v != "" {
		return v
	}
	return version
}
