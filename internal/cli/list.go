package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/rcliao/flashcards/internal/render"
	"github.com/rcliao/flashcards/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List flash cards, newest first",
		Run:   runList,
	}

	cmd.Flags().StringP("tag", "t", "", "Filter by tag")
	cmd.Flags().IntP("limit", "l", 20, "Max results (0 for all)")

	RootCmd.AddCommand(cmd)
}

func runList(cmd *cobra.Command, args []string) {
	tag, _ := cmd.Flags().GetString("tag")
	limit, _ := cmd.Flags().GetInt("limit")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	cards, err := s.ListCards(cmd.Context(), store.ListParams{Tag: tag, Limit: limit})
	if err != nil {
		exitErr("list", err)
	}

	if err := render.Cards(os.Stdout, cards, formatFlag); err != nil {
		exitErr("write output", err)
	}
}
