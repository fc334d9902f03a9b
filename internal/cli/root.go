// Package cli implements the flashcards CLI commands.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/rcliao/flashcards/internal/config"
	"github.com/rcliao/flashcards/internal/generate"
	"github.com/rcliao/flashcards/internal/logging"
	"github.com/rcliao/flashcards/internal/notify"
	"github.com/rcliao/flashcards/internal/provider"
	"github.com/rcliao/flashcards/internal/render"
	"github.com/rcliao/flashcards/internal/store"
)

var (
	dbPath       string
	formatFlag   string
	logLevelFlag string

	cfgOnce sync.Once
	cfg     *config.Config
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "flashcards",
	Short: "Turn text into flash cards",
	Long:  "A small CLI that asks a generative-language API for flash cards about a piece of text and keeps them in SQLite.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if !render.ValidFormat(formatFlag) {
			return fmt.Errorf("invalid --format %q (valid: json, text)", formatFlag)
		}
		return nil
	},
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Database path (default: $FLASHCARDS_DB or ~/.flashcards/flashcards.db)")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", render.FormatJSON, "Output format: json or text")
	RootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level: debug, info, warn, error (default: $FLASHCARDS_LOG_LEVEL or warn)")
}

func loadConfig() *config.Config {
	cfgOnce.Do(func() { cfg = config.Load() })
	return cfg
}

func getDBPath() string {
	if dbPath != "" {
		return dbPath
	}
	return loadConfig().Database.Path
}

func newLogger() *slog.Logger {
	level := logLevelFlag
	if level == "" {
		level = loadConfig().LogLevel
	}
	lvl, err := logging.ParseLevel(level)
	if err != nil {
		exitErr("log level", err)
	}
	return logging.New(os.Stderr, lvl)
}

func newNotifier(logger *slog.Logger) notify.Notifier {
	return notify.NewTerminal(os.Stderr, logger)
}

func openStore() (*store.SQLiteStore, error) {
	logger := newLogger()
	return store.NewSQLiteStore(getDBPath(),
		store.WithLogger(logger),
		store.WithCountObserver(newNotifier(logger)),
	)
}

// newService wires the generation service to the configured provider.
func newService(s store.Store, logger *slog.Logger, n notify.Notifier) *generate.Service {
	c := loadConfig()
	return generate.New(s,
		func(key string) (provider.Generator, error) { return provider.New(c, key) },
		generate.WithAPIKey(configuredKey(c)),
		generate.WithProviderName(c.Provider.Name),
		generate.WithNotifier(n),
		generate.WithLogger(logger),
	)
}

func configuredKey(c *config.Config) string {
	if c.Provider.Name == "openai" {
		return c.OpenAI.APIKey
	}
	return c.Gemini.APIKey
}

// readInput joins args, or reads stdin when it is piped.
func readInput(args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	stat, _ := os.Stdin.Stat()
	if stat == nil || (stat.Mode()&os.ModeCharDevice) != 0 {
		return "", nil
	}
	b, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func printJSON(v any) {
	if err := render.JSON(os.Stdout, v); err != nil {
		exitErr("write output", err)
	}
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
