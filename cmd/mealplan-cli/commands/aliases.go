package commands

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(aliasesCmd)
}

var aliasesCmd = &cobra.Command{
	Use:   "aliases [name...]",
	Short: "Prints the configured aliases, or how the names given as positional arguments resolve.",
	Run: func(cmd *cobra.Command, args []string) {
		aliasTable := readConfig().AliasTable()

		t := newTable()
		if len(args) == 0 {
			t.AppendHeader(table.Row{"Raw name", "Display name"})
			for _, entry := range aliasTable.Entries() {
				t.AppendRow(table.Row{entry.Raw, entry.Display})
			}
			t.Render()
			return
		}

		t.AppendHeader(table.Row{"Name", "Resolves to", "Did you mean"})
		for _, name := range args {
			suggestion := ""
			key, score, ok := aliasTable.Suggest(name)
			if ok {
				suggestion = fmt.Sprintf("%s (%.2f)", key, score)
			}
			t.AppendRow(table.Row{name, aliasTable.Resolve(name), suggestion})
		}
		t.Render()
	},
}
