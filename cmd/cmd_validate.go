// cmd_validate.go - Validate Command
// Hauptfunktionen: ValidateHandler
package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/fastseq/fastseq/unilm"
)

// ValidateHandler - Laedt eine Config und prueft die Hyperparameter
func ValidateHandler(cmd *cobra.Command, args []string) error {
	loader, err := loaderFromFlags(cmd)
	if err != nil {
		return err
	}

	cfg, err := unilm.FromPretrained(cmd.Context(), args[0], unilm.WithLoader(loader))
	if err != nil {
		return withSuggestion(args[0], err)
	}

	if !unilm.KnownActivation(cfg.HiddenAct) {
		slog.Warn("unknown activation function", "hidden_act", cfg.HiddenAct)
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", args[0])
	return nil
}

// newValidateCmd - Erstellt den validate Command
func newValidateCmd() *cobra.Command {
	validateCmd := &cobra.Command{
		Use:   "validate NAME|PATH|URL",
		Short: "Check the hyperparameters of a config",
		Args:  cobra.ExactArgs(1),
		RunE:  ValidateHandler,
	}
	addLoaderFlags(validateCmd)
	return validateCmd
}
