// cmd_list.go - List und Resolve Commands
// Hauptfunktionen: ListHandler, ResolveHandler
package cmd

import (
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/fastseq/fastseq/unilm"
)

// ListHandler - Listet die bekannten Kurznamen auf
func ListHandler(cmd *cobra.Command, args []string) error {
	client, err := newClient(cmd)
	if err != nil {
		return err
	}

	var data [][]string

	for _, name := range unilm.KnownNames() {
		if len(args) == 0 || strings.HasPrefix(strings.ToLower(name), strings.ToLower(args[0])) {
			url := unilm.ResolveName(name)
			cached := "-"
			if entry, ok := client.Cached(url); ok {
				cached = entry.FetchedAt.Local().Format("2006-01-02 15:04")
			}
			data = append(data, []string{name, url, cached})
		}
	}

	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.SetHeader([]string{"NAME", "URL", "CACHED"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	table.SetAutoWrapText(false)
	table.AppendBulk(data)
	table.Render()

	return nil
}

// ResolveHandler - Gibt das effektive Ziel eines Namens aus
func ResolveHandler(cmd *cobra.Command, args []string) error {
	for _, name := range args {
		fmt.Fprintln(cmd.OutOrStdout(), unilm.ResolveName(name))
	}
	return nil
}

// newListCmd - Erstellt den list Command
func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list [PREFIX]",
		Aliases: []string{"ls"},
		Short:   "List known config names",
		Args:    cobra.MaximumNArgs(1),
		RunE:    ListHandler,
	}
}

// newResolveCmd - Erstellt den resolve Command
func newResolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve NAME [NAME...]",
		Short: "Print the effective location of a config name",
		Args:  cobra.MinimumNArgs(1),
		RunE:  ResolveHandler,
	}
}
