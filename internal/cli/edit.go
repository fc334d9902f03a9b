package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/flashcards/internal/parser"
	"github.com/rcliao/flashcards/internal/render"
)

func init() {
	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Change a card's front, back or tags",
		Run:   runEdit,
	}

	cmd.Flags().Int64("id", 0, "Card id (required)")
	cmd.Flags().String("front", "", "New front")
	cmd.Flags().String("back", "", "New back")
	cmd.Flags().StringP("tags", "t", "", "New comma-separated tags (replaces all)")
	cmd.MarkFlagRequired("id")

	RootCmd.AddCommand(cmd)
}

func runEdit(cmd *cobra.Command, args []string) {
	id, _ := cmd.Flags().GetInt64("id")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	c, err := s.GetCard(cmd.Context(), id)
	if err != nil {
		exitErr("edit", err)
	}

	if cmd.Flags().Changed("front") {
		c.Front, _ = cmd.Flags().GetString("front")
	}
	if cmd.Flags().Changed("back") {
		c.Back, _ = cmd.Flags().GetString("back")
	}
	if cmd.Flags().Changed("tags") {
		tags, _ := cmd.Flags().GetString("tags")
		c.Tags = parser.SplitTags(tags)
	}
	if strings.TrimSpace(c.Front) == "" || strings.TrimSpace(c.Back) == "" {
		exitErr("edit", fmt.Errorf("front and back must not be empty"))
	}

	if err := s.UpdateCard(cmd.Context(), *c); err != nil {
		exitErr("edit", err)
	}

	if err := render.Card(os.Stdout, *c, formatFlag); err != nil {
		exitErr("write output", err)
	}
}
