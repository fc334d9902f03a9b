package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/flashcards/internal/generate"
	"github.com/rcliao/flashcards/internal/render"
)

func init() {
	cmd := &cobra.Command{
		Use:   "generate [text]",
		Short: "Create flash cards from text",
		Long: "Create flash cards from text. Text can be a positional arg or piped via stdin.\n" +
			"On failure the text is kept as a pending entry; see 'flashcards pending'.",
		Run: runGenerate,
	}

	RootCmd.AddCommand(cmd)
}

func runGenerate(cmd *cobra.Command, args []string) {
	text, err := readInput(args)
	if err != nil {
		exitErr("read stdin", err)
	}
	if strings.TrimSpace(text) == "" {
		exitErr("generate", fmt.Errorf("text is required (positional arg or stdin)"))
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	logger := newLogger()
	svc := newService(s, logger, newNotifier(logger))

	cards, err := svc.Process(cmd.Context(), text)
	if err != nil {
		var pe *generate.PendingError
		if errors.As(err, &pe) {
			fmt.Fprintf(os.Stderr, "queued as pending %s\n", pe.Pending.ID)
		}
		exitErr("generate", err)
	}

	if err := render.Cards(os.Stdout, cards, formatFlag); err != nil {
		exitErr("write output", err)
	}
}
