// cmd.go - Haupt-CLI Setup und Root Command
// Hauptfunktionen: NewCLI, appendEnvDocs
package cmd

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"runtime"

	"github.com/containerd/console"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/fastseq/fastseq/envconfig"
	"github.com/fastseq/fastseq/logutil"
)

// appendEnvDocs - Fuegt Umgebungsvariablen-Dokumentation zum Command hinzu
func appendEnvDocs(cmd *cobra.Command, envs []envconfig.EnvVar) {
	if len(envs) == 0 {
		return
	}

	envUsage := `
Environment Variables:
`
	for _, e := range envs {
		envUsage += fmt.Sprintf("      %-24s   %s\n", e.Name, e.Description)
	}

	cmd.SetUsageTemplate(cmd.UsageTemplate() + envUsage)
}

// NewCLI - Erstellt das Haupt-CLI mit allen Commands
func NewCLI() *cobra.Command {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	cobra.EnableCommandSorting = false

	if runtime.GOOS == "windows" && term.IsTerminal(int(os.Stdout.Fd())) {
		console.ConsoleFromFile(os.Stdin) //nolint:errcheck
	}

	rootCmd := &cobra.Command{
		Use:           "fastseq",
		Short:         "UniLM model configuration tool",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			slog.SetDefault(logutil.NewLogger(cmd.ErrOrStderr(), envconfig.LogLevel()))
		},
		Run: func(cmd *cobra.Command, args []string) {
			if version, _ := cmd.Flags().GetBool("version"); version {
				versionHandler(cmd, args)
				return
			}

			cmd.Print(cmd.UsageString())
		},
	}

	rootCmd.Flags().BoolP("version", "v", false, "Show version information")

	// Commands erstellen
	showCmd := newShowCmd()
	resolveCmd := newResolveCmd()
	listCmd := newListCmd()
	pullCmd := newPullCmd()
	validateCmd := newValidateCmd()
	cacheCmd := newCacheCmd()
	serveCmd := newServeCmd()

	// Environment-Dokumentation hinzufuegen
	envVars := envconfig.AsMap()
	hubEnvs := []envconfig.EnvVar{
		envVars["FASTSEQ_DEBUG"],
		envVars["FASTSEQ_CACHE"],
		envVars["FASTSEQ_DOWNLOAD_TIMEOUT"],
		envVars["HF_ENDPOINT"],
		envVars["HF_HOME"],
		envVars["HF_HUB_OFFLINE"],
		envVars["HF_TOKEN"],
	}

	for _, cmd := range []*cobra.Command{
		showCmd,
		listCmd,
		pullCmd,
		validateCmd,
		cacheCmd,
		serveCmd,
	} {
		switch cmd {
		case pullCmd:
			appendEnvDocs(cmd, append(hubEnvs, envVars["FASTSEQ_PULL_PARALLEL"]))
		case cacheCmd:
			appendEnvDocs(cmd, []envconfig.EnvVar{envVars["FASTSEQ_CACHE"], envVars["HF_HOME"]})
		case serveCmd:
			appendEnvDocs(cmd, append(hubEnvs, envVars["FASTSEQ_HOST"], envVars["FASTSEQ_ORIGINS"]))
		default:
			appendEnvDocs(cmd, hubEnvs)
		}
	}

	rootCmd.AddCommand(
		serveCmd,
		showCmd,
		resolveCmd,
		listCmd,
		pullCmd,
		validateCmd,
		cacheCmd,
	)

	return rootCmd
}
