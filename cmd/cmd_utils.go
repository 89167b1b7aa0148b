// cmd_utils.go - Gemeinsame Hilfsfunktionen der Commands
// Hauptfunktionen: addLoaderFlags, loaderFromFlags, newClient, withSuggestion
package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fastseq/fastseq/envconfig"
	"github.com/fastseq/fastseq/pretrained"
	"github.com/fastseq/fastseq/unilm"
)

// addLoaderFlags - Registriert die Flags fuer das Laden von Configs
func addLoaderFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("force-download", false, "Download the config even if a cached copy exists")
	cmd.Flags().Bool("offline", false, "Only use cached configs")
	cmd.Flags().String("revision", pretrained.DefaultRevision, "Hub revision (branch, tag or commit)")
}

// newClient - Erstellt einen Hub-Client, --offline ueberschreibt HF_HUB_OFFLINE
func newClient(cmd *cobra.Command) (*pretrained.Client, error) {
	offline := envconfig.Offline()
	if f := cmd.Flags().Lookup("offline"); f != nil && f.Changed {
		v, err := cmd.Flags().GetBool("offline")
		if err != nil {
			return nil, err
		}
		offline = v
	}
	return pretrained.NewClient(pretrained.WithOffline(offline)), nil
}

// loaderFromFlags - Erstellt einen Loader aus den Flags von addLoaderFlags
func loaderFromFlags(cmd *cobra.Command) (*pretrained.Loader, error) {
	client, err := newClient(cmd)
	if err != nil {
		return nil, err
	}

	force, err := cmd.Flags().GetBool("force-download")
	if err != nil {
		return nil, err
	}
	revision, err := cmd.Flags().GetString("revision")
	if err != nil {
		return nil, err
	}

	return pretrained.NewLoader(
		pretrained.WithClient(client),
		pretrained.WithForceDownload(force),
		pretrained.WithRevision(revision),
	), nil
}

// withSuggestion - Haengt einen Namensvorschlag an Fehler fuer unbekannte Namen
func withSuggestion(name string, err error) error {
	if err == nil || !(pretrained.IsNotFound(err) || errors.Is(err, pretrained.ErrInvalidModelID)) {
		return err
	}
	if suggestion, ok := unilm.SuggestName(name); ok {
		return fmt.Errorf("%w\n\nDid you mean %q?", err, suggestion)
	}
	return err
}
