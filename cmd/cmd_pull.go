// cmd_pull.go - Pull Command
// Hauptfunktionen: PullHandler
package cmd

import (
	"errors"
	"fmt"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/fastseq/fastseq/envconfig"
	"github.com/fastseq/fastseq/unilm"
)

// PullHandler - Laedt Configs parallel in den Cache
func PullHandler(cmd *cobra.Command, args []string) error {
	all, err := cmd.Flags().GetBool("all")
	if err != nil {
		return err
	}
	parallel, err := cmd.Flags().GetInt("parallel")
	if err != nil {
		return err
	}
	if parallel <= 0 {
		parallel = int(envconfig.PullParallel())
	}

	names := args
	if all {
		names = unilm.KnownNames()
	}
	if len(names) == 0 {
		return errors.New("no names given, use --all to pull every known config")
	}

	loader, err := loaderFromFlags(cmd)
	if err != nil {
		return err
	}

	var mu sync.Mutex
	report := func(format string, a ...any) {
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintf(cmd.OutOrStdout(), format, a...)
	}

	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(parallel)
	for _, name := range names {
		g.Go(func() error {
			path, err := loader.Resolve(ctx, unilm.ResolveName(name))
			if err != nil {
				return fmt.Errorf("pull %s: %w", name, withSuggestion(name, err))
			}
			report("pulled %s -> %s\n", name, path)
			return nil
		})
	}

	return g.Wait()
}

// newPullCmd - Erstellt den pull Command
func newPullCmd() *cobra.Command {
	pullCmd := &cobra.Command{
		Use:   "pull [NAME...]",
		Short: "Download configs into the local cache",
		RunE:  PullHandler,
	}

	pullCmd.Flags().Bool("all", false, "Pull every known config name")
	pullCmd.Flags().IntP("parallel", "p", 0, "Maximum number of parallel downloads (default FASTSEQ_PULL_PARALLEL)")
	addLoaderFlags(pullCmd)

	return pullCmd
}
