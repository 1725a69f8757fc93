// Package cli wires configuration, the session controller, and the TUI
// behind a cobra command tree.
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"hubchat/internal/api"
	"hubchat/internal/auth"
	"hubchat/internal/config"
	"hubchat/internal/session"
	"hubchat/internal/store"
	"hubchat/internal/tui"
	"hubchat/internal/utils"
)

var (
	flagServer  string
	flagConfig  string
	flagDataDir string
	flagVerbose bool
)

func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "hubchat",
		Short: "Chat with your document hubs from the terminal",
		Long: `hubchat is a terminal client for a document question-answering
service. Pick a hub, load it, and ask questions against its documents;
conversation history is kept locally per hub.`,
		RunE:          runTUI,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&flagServer, "server", "", "service base URL (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "data directory (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "debug logging")

	rootCmd.AddCommand(newHubsCommand())
	rootCmd.AddCommand(newStatusCommand())
	rootCmd.AddCommand(newLoginCommand())
	rootCmd.AddCommand(newLogoutCommand())

	return rootCmd
}

func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return cfg, err
	}
	if flagServer != "" {
		cfg.ServerURL = flagServer
	}
	if flagDataDir != "" {
		cfg.DataDir = flagDataDir
	}
	if flagVerbose {
		cfg.Logging.Level = "debug"
	}
	return cfg, nil
}

func newLogger(cfg config.Config) *utils.Logger {
	// Logs go to a file so they don't tear the TUI's screen.
	if err := os.MkdirAll(cfg.DataDir, 0755); err == nil {
		f, err := os.OpenFile(filepath.Join(cfg.DataDir, "hubchat.log"),
			os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err == nil {
			return utils.NewLoggerTo(f, cfg.Logging.Level)
		}
	}
	return utils.NewLogger(cfg.Logging.Level)
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	markers, err := auth.OpenMarkers(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("failed to open session markers: %w", err)
	}
	if !markers.Authenticated() {
		return fmt.Errorf("not logged in; run: hubchat login <user>")
	}
	// A fresh process start counts as a reload of the session view;
	// in-app navigation never re-runs this check.
	loggedOut, err := auth.DetectRefresh(markers, auth.EntryReload, time.Now())
	if err != nil {
		logger.Warnf("failed to update session markers: %v", err)
	}
	if loggedOut {
		return fmt.Errorf("session expired; run: hubchat login <user>")
	}

	st, err := store.NewConversationStore(cfg.DataDir)
	if err != nil {
		return err
	}
	client := api.NewClient(cfg.ServerURL, cfg.RequestTimeout.Duration())
	ctrl := session.NewController(client, st, logger)
	ctrl.SetPollIntervals(cfg.Polling.LoadedHubs.Duration(), cfg.Polling.Health.Duration())

	return tui.Run(ctrl, logger)
}
