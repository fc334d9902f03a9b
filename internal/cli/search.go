package cli

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/flashcards/internal/render"
	"github.com/rcliao/flashcards/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search card fronts and backs",
		Args:  cobra.MinimumNArgs(1),
		Run:   runSearch,
	}

	cmd.Flags().StringP("tag", "t", "", "Filter by tag")
	cmd.Flags().IntP("limit", "l", 20, "Max results (0 for all)")

	RootCmd.AddCommand(cmd)
}

func runSearch(cmd *cobra.Command, args []string) {
	tag, _ := cmd.Flags().GetString("tag")
	limit, _ := cmd.Flags().GetInt("limit")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	cards, err := s.ListCards(cmd.Context(), store.ListParams{
		Tag:   tag,
		Query: strings.Join(args, " "),
		Limit: limit,
	})
	if err != nil {
		exitErr("search", err)
	}

	if err := render.Cards(os.Stdout, cards, formatFlag); err != nil {
		exitErr("write output", err)
	}
}
