package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/claude/fitlog/internal/config"
	"github.com/claude/fitlog/internal/library"
	"github.com/claude/fitlog/internal/storage"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// Execute runs the fitlog CLI.
func Execute(version string) {
	e := &env{version: version}
	if err := execute(newRootCmd(e), e); err != nil {
		os.Exit(1)
	}
}

// execute runs cmd and closes the store afterwards. Cobra skips
// PersistentPostRun hooks when a command fails, so this happens here.
func execute(cmd *cobra.Command, e *env) error {
	defer e.shutdown()
	return cmd.Execute()
}

// env carries what the subcommands share. The library is opened on first use
// so that commands which do not touch storage need no config file.
type env struct {
	version    string
	configPath string
	log        *slog.Logger

	lib   *library.Library
	close func()
}

func newRootCmd(e *env) *cobra.Command {
	var debug bool

	cmd := &cobra.Command{
		Use:          "fitlog",
		Short:        "Manage training routines from the command line",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			level := slog.LevelWarn
			if debug {
				level = slog.LevelDebug
			}
			// stdout belongs to command output and the MCP stdio transport.
			e.log = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
		},
	}

	cmd.PersistentFlags().StringVar(&e.configPath, "config", "config.yaml", "path to config file")
	cmd.PersistentFlags().BoolVar(&debug, "debug", false, "log debug output to stderr")

	cmd.AddCommand(
		routinesCmd(e),
		newCmd(e),
		renderCmd(e),
		importCmd(e),
		exportCmd(e),
		mcpCmd(e),
	)
	return cmd
}

func (e *env) library(ctx context.Context) (*library.Library, error) {
	if e.lib != nil {
		return e.lib, nil
	}
	cfg, err := config.Load(e.configPath)
	if err != nil {
		return nil, err
	}
	store, closeStore, err := storage.Open(ctx, cfg, e.log)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	e.lib = library.New(store, e.log)
	e.close = closeStore
	return e.lib, nil
}

func (e *env) shutdown() {
	if e.close != nil {
		e.close()
	}
	e.lib, e.close = nil, nil
}

func parseID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid routine id %q: %w", s, err)
	}
	return id, nil
}
