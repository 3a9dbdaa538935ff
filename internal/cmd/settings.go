package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"devboard/internal/config"
)

// SettingsCmd manages settings
type SettingsCmd struct {
	Meta SettingsMetaCmd `cmd:"meta" help:"Show settings file location and available options" default:"1"`
}

// SettingsMetaCmd displays settings metadata
type SettingsMetaCmd struct {
	Format string `help:"Output format: table or json" enum:"table,json" default:"table"`
}

// Run executes the meta command
func (s *SettingsMetaCmd) Run(cli *CLI) error {
	settingsFile := config.GetSettingsPath()

	if s.Format == "json" {
		output := map[string]any{
			"db_path":       cli.settings.ResolveDBPath(cli.DB),
			"format":        config.GetSettingsExample(),
			"settings_file": settingsFile,
		}
		data, err := json.MarshalIndent(output, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Printf("Settings file: %s\n", settingsFile)
	fmt.Printf("Database: %s\n\n", cli.settings.ResolveDBPath(cli.DB))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KEY\tTYPE\tEXAMPLE")
	for _, field := range config.GetSettingsFields() {
		fmt.Fprintf(w, "%s\t%s\t%v\n", field.Key, field.Type, field.Example)
	}
	return w.Flush()
}
