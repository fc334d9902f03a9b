package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/flashcards/internal/model"
)

func init() {
	keyCmd := &cobra.Command{
		Use:   "key",
		Short: "Manage the stored Gemini API key",
	}

	setCmd := &cobra.Command{
		Use:   "set <apiKey>",
		Short: "Store the API key used when none is configured",
		Args:  cobra.ExactArgs(1),
		Run:   runKeySet,
	}

	keyCmd.AddCommand(setCmd)
	RootCmd.AddCommand(keyCmd)
}

func runKeySet(cmd *cobra.Command, args []string) {
	key := strings.TrimSpace(args[0])
	if key == "" {
		exitErr("set key", fmt.Errorf("key must not be empty"))
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	if err := s.SetSetting(cmd.Context(), model.SettingGeminiAPIKey, key); err != nil {
		exitErr("set key", err)
	}
	fmt.Println(`{"ok":true}`)
}
