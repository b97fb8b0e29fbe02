package cli

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/hupe1980/filterchain/pkg/filterchain"
)

func newFiltersCommand() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "filters",
		Short: "List the available built-in filters",
		Long:  "Display the names and aliases of all filters in the default registry.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			registry := filterchain.DefaultRegistry()

			if jsonOutput {
				return printFiltersJSON(cmd, registry)
			}

			return printFiltersText(cmd, registry)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output the filter list as JSON")

	return cmd
}

func printFiltersText(cmd *cobra.Command, registry *filterchain.Registry) error {
	w := cmd.OutOrStdout()

	// Group aliases under their canonical names.
	aliasesFor := make(map[string][]string)
	for alias, canonical := range registry.Aliases() {
		aliasesFor[canonical] = append(aliasesFor[canonical], alias)
	}

	for _, name := range registry.Names() {
		aliases := aliasesFor[name]
		sort.Strings(aliases)

		if len(aliases) > 0 {
			fmt.Fprintf(w, "%s (aliases: %v)\n", name, aliases)
		} else {
			fmt.Fprintln(w, name)
		}
	}

	return nil
}

func printFiltersJSON(cmd *cobra.Command, registry *filterchain.Registry) error {
	payload := struct {
		Filters []string          `json:"filters"`
		Aliases map[string]string `json:"aliases"`
	}{
		Filters: registry.Names(),
		Aliases: registry.Aliases(),
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling filter list: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), string(data))

	return nil
}
