package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/rcliao/flashcards/internal/render"
)

func init() {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show one flash card",
		Run:   runShow,
	}

	cmd.Flags().Int64("id", 0, "Card id (required)")
	cmd.MarkFlagRequired("id")

	RootCmd.AddCommand(cmd)
}

func runShow(cmd *cobra.Command, args []string) {
	id, _ := cmd.Flags().GetInt64("id")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	c, err := s.GetCard(cmd.Context(), id)
	if err != nil {
		exitErr("show", err)
	}

	if err := render.Card(os.Stdout, *c, formatFlag); err != nil {
		exitErr("write output", err)
	}
}
