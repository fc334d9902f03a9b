package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rcliao/flashcards/internal/render"
)

func init() {
	pendingCmd := &cobra.Command{
		Use:   "pending",
		Short: "Selections waiting for a key or a retry",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List pending entries, oldest first",
		Run:   runPendingList,
	}

	retryCmd := &cobra.Command{
		Use:   "retry <id>",
		Short: "Generate cards for a pending entry",
		Args:  cobra.ExactArgs(1),
		Run:   runPendingRetry,
	}

	dismissCmd := &cobra.Command{
		Use:   "dismiss <id>",
		Short: "Drop a pending entry",
		Args:  cobra.ExactArgs(1),
		Run:   runPendingDismiss,
	}

	pendingCmd.AddCommand(listCmd, retryCmd, dismissCmd)
	RootCmd.AddCommand(pendingCmd)
}

func runPendingList(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	entries, err := s.ListPending(cmd.Context())
	if err != nil {
		exitErr("list pending", err)
	}
	printJSON(entries)
}

func runPendingRetry(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	logger := newLogger()
	cards, err := newService(s, logger, newNotifier(logger)).Retry(cmd.Context(), args[0])
	if err != nil {
		exitErr("retry", err)
	}

	if err := render.Cards(os.Stdout, cards, formatFlag); err != nil {
		exitErr("write output", err)
	}
}

func runPendingDismiss(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	if err := s.RemovePending(cmd.Context(), args[0]); err != nil {
		exitErr("dismiss", err)
	}
	fmt.Printf(`{"ok":true,"id":%q}`+"\n", args[0])
}
