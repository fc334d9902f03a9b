package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/rcliao/flashcards/internal/notify"
	"github.com/rcliao/flashcards/internal/server"
)

// Version is reported by /health.
var Version = "dev"

func init() {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the local HTTP API",
		Long:  "Serve the local HTTP API used by the browser extension. Listens on $FLASHCARDS_LISTEN (default 127.0.0.1:8787).",
		Run:   runServe,
	}

	cmd.Flags().String("listen", "", "Listen address (overrides $FLASHCARDS_LISTEN)")

	RootCmd.AddCommand(cmd)
}

func runServe(cmd *cobra.Command, args []string) {
	c := loadConfig()
	addr, _ := cmd.Flags().GetString("listen")
	if addr == "" {
		addr = c.Server.Listen
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	gin.SetMode(gin.ReleaseMode)
	logger := newLogger()
	svc := newService(s, logger, notify.NewTerminal(os.Stderr, logger))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	h := server.Handler(server.RouterConfig{
		Store:          s,
		Generator:      svc,
		Logger:         logger,
		AllowedOrigins: c.Server.AllowedOrigins,
		Version:        Version,
	})
	if err := server.ListenAndServe(ctx, addr, h, logger); err != nil {
		exitErr("serve", err)
	}
}
