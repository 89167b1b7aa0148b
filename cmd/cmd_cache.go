// cmd_cache.go - Cache Commands
// Hauptfunktionen: CacheListHandler, CacheRemoveHandler, CacheDirHandler
package cmd

import (
	"fmt"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/fastseq/fastseq/pretrained"
	"github.com/fastseq/fastseq/unilm"
)

// CacheListHandler - Listet alle gecachten Configs
func CacheListHandler(cmd *cobra.Command, _ []string) error {
	client, err := newClient(cmd)
	if err != nil {
		return err
	}

	entries, err := client.CacheEntries()
	if err != nil {
		return err
	}

	var data [][]string
	for _, e := range entries {
		etag := e.ETag
		if etag == "" {
			etag = "-"
		}
		data = append(data, []string{e.URL, etag, strconv.FormatInt(e.Size, 10), e.FetchedAt.Local().Format("2006-01-02 15:04")})
	}

	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.SetHeader([]string{"URL", "ETAG", "SIZE", "FETCHED"})
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

// CacheRemoveHandler - Loescht einzelne Eintraege oder ohne Argumente den ganzen Cache
func CacheRemoveHandler(cmd *cobra.Command, args []string) error {
	client, err := newClient(cmd)
	if err != nil {
		return err
	}

	if len(args) == 0 {
		if err := client.ClearCache(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", client.CacheDir())
		return nil
	}

	revision, err := cmd.Flags().GetString("revision")
	if err != nil {
		return err
	}

	for _, arg := range args {
		url := cacheURL(client, arg, revision)
		if _, ok := client.Cached(url); !ok {
			return fmt.Errorf("%s is not cached", arg)
		}
		if err := client.RemoveCached(url); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", url)
	}
	return nil
}

// cacheURL - Uebersetzt Kurznamen und Hub-IDs in die URL unter der sie gecacht sind
func cacheURL(client *pretrained.Client, arg, revision string) string {
	target := unilm.ResolveName(arg)
	if pretrained.IsURL(target) {
		return target
	}
	return client.HubURL(target, revision, pretrained.ConfigName)
}

// CacheDirHandler - Gibt das Cache-Verzeichnis aus
func CacheDirHandler(cmd *cobra.Command, _ []string) error {
	client, err := newClient(cmd)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), client.CacheDir())
	return nil
}

// newCacheCmd - Erstellt den cache Command mit Unterbefehlen
func newCacheCmd() *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the local config cache",
	}

	rmCmd := &cobra.Command{
		Use:     "rm [URL|NAME...]",
		Aliases: []string{"delete"},
		Short:   "Remove cached configs, or the whole cache without arguments",
		RunE:    CacheRemoveHandler,
	}
	rmCmd.Flags().String("revision", pretrained.DefaultRevision, "Hub revision the config was pulled with")

	cacheCmd.AddCommand(
		&cobra.Command{
			Use:     "ls",
			Aliases: []string{"list"},
			Short:   "List cached configs",
			Args:    cobra.NoArgs,
			RunE:    CacheListHandler,
		},
		rmCmd,
		&cobra.Command{
			Use:   "dir",
			Short: "Print the cache directory",
			Args:  cobra.NoArgs,
			RunE:  CacheDirHandler,
		},
	)

	return cacheCmd
}
