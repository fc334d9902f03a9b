package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "rm",
		Short: "Delete a flash card",
		Long:  "Delete a flash card. Deleting an id that does not exist succeeds.",
		Run:   runRm,
	}

	cmd.Flags().Int64("id", 0, "Card id (required)")
	cmd.MarkFlagRequired("id")

	RootCmd.AddCommand(cmd)
}

func runRm(cmd *cobra.Command, args []string) {
	id, _ := cmd.Flags().GetInt64("id")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	if err := s.DeleteCard(cmd.Context(), id); err != nil {
		exitErr("rm", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"id":%d}`+"\n", id)
}
