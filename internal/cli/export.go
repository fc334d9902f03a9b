package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rcliao/flashcards/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all cards as JSON",
		Long:  "Export all cards as an indented JSON array. Use --out - to write to stdout.",
		Run:   runExport,
	}

	cmd.Flags().StringP("out", "o", store.ExportFileName, "Output file, or - for stdout")

	RootCmd.AddCommand(cmd)
}

func runExport(cmd *cobra.Command, args []string) {
	out, _ := cmd.Flags().GetString("out")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	cards, err := s.ExportAll(cmd.Context())
	if err != nil {
		exitErr("export", err)
	}

	if out == "-" {
		if err := store.WriteExport(os.Stdout, cards); err != nil {
			exitErr("export", err)
		}
		return
	}

	f, err := os.Create(out)
	if err != nil {
		exitErr("export", err)
	}
	if err := store.WriteExport(f, cards); err != nil {
		f.Close()
		exitErr("export", err)
	}
	if err := f.Close(); err != nil {
		exitErr("export", err)
	}

	fmt.Printf(`{"ok":true,"exported":%d,"file":%q}`+"\n", len(cards), out)
}
