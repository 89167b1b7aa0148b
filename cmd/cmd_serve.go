// cmd_serve.go - Serve Command und Versionsanzeige
// Hauptfunktionen: RunServer, versionHandler
package cmd

import (
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/fastseq/fastseq/api"
	"github.com/fastseq/fastseq/envconfig"
	"github.com/fastseq/fastseq/server"
	"github.com/fastseq/fastseq/version"
)

// RunServer - Startet den Config-Server
func RunServer(_ *cobra.Command, _ []string) error {
	ln, err := net.Listen("tcp", envconfig.Host().Host)
	if err != nil {
		return err
	}

	err = server.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}

	return err
}

// versionHandler - Zeigt die Version von Client und laufendem Server an
func versionHandler(cmd *cobra.Command, _ []string) {
	client, err := api.ClientFromEnvironment()
	if err != nil {
		return
	}

	serverVersion, err := client.Version(cmd.Context())
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "Warning: could not connect to a running fastseq server")
	}

	if serverVersion != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "fastseq server version is %s\n", serverVersion)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "fastseq version is %s\n", version.Version)
}

// newServeCmd - Erstellt den serve Command
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "serve",
		Aliases: []string{"start"},
		Short:   "Start the config server",
		Args:    cobra.ExactArgs(0),
		RunE:    RunServer,
	}
}
