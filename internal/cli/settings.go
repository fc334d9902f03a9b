package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	settingsCmd := &cobra.Command{
		Use:   "settings",
		Short: "Read and write settings",
	}

	getCmd := &cobra.Command{
		Use:   "get <key>...",
		Short: "Print settings as a JSON object (missing keys are null)",
		Args:  cobra.MinimumNArgs(1),
		Run:   runSettingsGet,
	}

	setCmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Store a value; valid JSON is kept as is, anything else is stored as a string",
		Args:  cobra.ExactArgs(2),
		Run:   runSettingsSet,
	}

	rmCmd := &cobra.Command{
		Use:   "rm <key>",
		Short: "Delete a setting",
		Args:  cobra.ExactArgs(1),
		Run:   runSettingsRm,
	}

	settingsCmd.AddCommand(getCmd, setCmd, rmCmd)
	RootCmd.AddCommand(settingsCmd)
}

func runSettingsGet(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	values, err := s.GetSettings(cmd.Context(), args)
	if err != nil {
		exitErr("get settings", err)
	}

	out := make(map[string]json.RawMessage, len(values))
	for k, v := range values {
		if v == nil {
			v = json.RawMessage("null")
		}
		out[k] = v
	}
	printJSON(out)
}

// settingValue keeps valid JSON and quotes everything else.
func settingValue(arg string) any {
	if json.Valid([]byte(arg)) {
		return json.RawMessage(arg)
	}
	return arg
}

func runSettingsSet(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	if err := s.SetSetting(cmd.Context(), args[0], settingValue(args[1])); err != nil {
		exitErr("set setting", err)
	}
	fmt.Printf(`{"ok":true,"key":%q}`+"\n", args[0])
}

func runSettingsRm(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	if err := s.DeleteSetting(cmd.Context(), args[0]); err != nil {
		exitErr("delete setting", err)
	}
	fmt.Printf(`{"ok":true,"key":%q}`+"\n", args[0])
}
