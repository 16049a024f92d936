package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"nutriplan/internal/ingredient"
)

func newParseCmd(_ *cli) *cobra.Command {
	return &cobra.Command{
		Use:         "parse LINE...",
		Short:       "Parse ingredient lines and print them as JSON",
		Args:        cobra.MinimumNArgs(1),
		Annotations: map[string]string{"stores": "none"},
		RunE: func(cmd *cobra.Command, args []string) error {
			enc := json.NewEncoder(cmd.OutOrStdout())
			for _, line := range args {
				p := ingredient.ParseLine(line)
				out := struct {
					ingredient.Parsed
					Category string `json:"category,omitempty"`
				}{Parsed: p}
				if p.Name != "" {
					out.Category = ingredient.Categorize(p.Name)
				}
				if err := enc.Encode(out); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
