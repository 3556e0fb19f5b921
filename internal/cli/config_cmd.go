package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"homefix/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect configuration",
}

var configPrintCmd = &cobra.Command{
	Use:   "print",
	Short: "Print the effective configuration and where each value came from",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, sources, err := config.LoadWithSources(config.Options{
			Path:         globalFlags.ConfigPath,
			Overrides:    configOverrides(nil),
			SkipValidate: true,
		})
		if err != nil {
			return withExitCode(ExitConfigInvalid, err)
		}
		return printConfig(os.Stdout, config.EffectiveFields(cfg, sources), globalFlags.JSON)
	},
}

func init() {
	configCmd.AddCommand(configPrintCmd)
}

type fieldJSON struct {
	Key    string `json:"key"`
	Value  string `json:"value"`
	Source string `json:"source"`
}

func printConfig(w io.Writer, fields []config.FieldInfo, asJSON bool) error {
	if asJSON {
		out := make([]fieldJSON, 0, len(fields))
		for _, f := range fields {
			out = append(out, fieldJSON{Key: f.Key, Value: f.Value, Source: string(f.Source)})
		}
		writeJSON(w, map[string]interface{}{"fields": out})
		return nil
	}
	b, err := config.RenderYAML(fields)
	if err != nil {
		return fmt.Errorf("render config: %w", err)
	}
	_, err = w.Write(b)
	return err
}
