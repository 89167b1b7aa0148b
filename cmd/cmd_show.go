// cmd_show.go - Show Command und Config-Anzeige
// Hauptfunktionen: ShowHandler, showInfo, formatArrayValue
package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/fastseq/fastseq/pretrained"
	"github.com/fastseq/fastseq/unilm"
)

// Ausgabeformate fuer show
const (
	FormatJSON  = "json"
	FormatYAML  = "yaml"
	FormatTable = "table"
)

// ShowHandler - Laedt eine Config und gibt sie aus
func ShowHandler(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	if format == "" {
		format = FormatJSON
		if f, ok := cmd.OutOrStdout().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			format = FormatTable
		}
	}

	loader, err := loaderFromFlags(cmd)
	if err != nil {
		return err
	}

	cfg, err := unilm.FromPretrained(cmd.Context(), args[0], unilm.WithLoader(loader))
	if err != nil {
		return withSuggestion(args[0], err)
	}

	return writeConfig(cmd.OutOrStdout(), cfg, format)
}

// writeConfig - Gibt cfg im gewuenschten Format aus
func writeConfig(w io.Writer, cfg *unilm.Config, format string) error {
	switch format {
	case FormatJSON:
		s, err := cfg.ToJSONString(true)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, s)
		return err
	case FormatYAML:
		node, err := yamlNode(pretrained.Flatten(cfg.Fields(), cfg.Extras))
		if err != nil {
			return err
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(node); err != nil {
			return err
		}
		return enc.Close()
	case FormatTable:
		return showInfo(cfg, w)
	default:
		return fmt.Errorf("unbekanntes format %q (erwartet json, yaml oder table)", format)
	}
}

// yamlNode - Baut einen YAML-Mapping-Knoten in Schluessel-Reihenfolge
func yamlNode(om *pretrained.Extras) (*yaml.Node, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for pair := om.Oldest(); pair != nil; pair = pair.Next() {
		var value yaml.Node
		if err := value.Encode(pair.Value); err != nil {
			return nil, fmt.Errorf("yaml %q: %w", pair.Key, err)
		}
		node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: pair.Key}, &value)
	}
	return node, nil
}

// showInfo - Gibt die Config als Tabellen aus
func showInfo(cfg *unilm.Config, w io.Writer) error {
	tableRender := func(header string, rows func() [][]string) {
		fmt.Fprintln(w, " ", header)
		table := tablewriter.NewWriter(w)
		table.SetAlignment(tablewriter.ALIGN_LEFT)
		table.SetBorder(false)
		table.SetNoWhiteSpace(true)
		table.SetTablePadding("    ")
		table.AppendBulk(rows())
		table.Render()
		fmt.Fprintln(w)
	}

	tableRender("Model", func() (rows [][]string) {
		rows = append(rows, []string{"", "model type", cfg.ModelType})
		if len(cfg.Architectures) > 0 {
			rows = append(rows, []string{"", "architectures", strings.Join(cfg.Architectures, ", ")})
		}
		if cfg.TransformersVersion != "" {
			rows = append(rows, []string{"", "transformers", cfg.TransformersVersion})
		}
		rows = append(rows, []string{"", "vocab size", fmt.Sprint(cfg.VocabSize)})
		rows = append(rows, []string{"", "hidden size", fmt.Sprint(cfg.HiddenSize)})
		rows = append(rows, []string{"", "layers", fmt.Sprint(cfg.NumHiddenLayers)})
		rows = append(rows, []string{"", "attention heads", fmt.Sprint(cfg.NumAttentionHeads)})
		rows = append(rows, []string{"", "intermediate size", fmt.Sprint(cfg.IntermediateSize)})
		rows = append(rows, []string{"", "activation", cfg.HiddenAct})
		rows = append(rows, []string{"", "max positions", fmt.Sprint(cfg.MaxPositionEmbeddings)})
		return
	})

	tableRender("Tokens", func() (rows [][]string) {
		for _, t := range []struct {
			name string
			id   *int
		}{
			{"bos", cfg.BosTokenID},
			{"eos", cfg.EosTokenID},
			{"pad", cfg.PadTokenID},
			{"mask", &cfg.MaskTokenID},
		} {
			v := "-"
			if t.id != nil {
				v = fmt.Sprint(*t.id)
			}
			rows = append(rows, []string{"", t.name, v})
		}
		rows = append(rows, []string{"", "source type", fmt.Sprint(cfg.SourceTypeID)})
		rows = append(rows, []string{"", "target type", fmt.Sprint(cfg.TargetTypeID)})
		return
	})

	tableRender("Parameters", func() (rows [][]string) {
		rows = append(rows, []string{"", "hidden_dropout_prob", fmt.Sprintf("%g", cfg.HiddenDropoutProb)})
		rows = append(rows, []string{"", "attention_probs_dropout_prob", fmt.Sprintf("%g", cfg.AttentionProbsDropoutProb)})
		rows = append(rows, []string{"", "type_vocab_size", fmt.Sprint(cfg.TypeVocabSize)})
		rows = append(rows, []string{"", "initializer_range", fmt.Sprintf("%g", cfg.InitializerRange)})
		rows = append(rows, []string{"", "layer_norm_eps", fmt.Sprintf("%g", cfg.LayerNormEps)})
		return
	})

	if cfg.Extras.Len() > 0 {
		tableRender("Extras", func() (rows [][]string) {
			for pair := cfg.Extras.Oldest(); pair != nil; pair = pair.Next() {
				rows = append(rows, []string{"", pair.Key, formatValue(pair.Value)})
			}
			return
		})
	}

	return nil
}

// formatValue - Formatiert einen beliebigen JSON-Wert fuer die Tabelle
func formatValue(v any) string {
	switch vData := v.(type) {
	case nil:
		return "null"
	case bool:
		return fmt.Sprintf("%t", vData)
	case string:
		return vData
	case float64:
		return fmt.Sprintf("%g", vData)
	case []any:
		return formatArrayValue(vData, 40)
	default:
		b, err := json.Marshal(vData)
		if err != nil {
			return fmt.Sprintf("%T", vData)
		}
		return string(b)
	}
}

// formatArrayValue - Formatiert Array-Werte fuer Anzeige
func formatArrayValue(vData []any, targetWidth int) string {
	var itemsToShow int
	totalWidth := 1

	for i := range vData {
		itemStr := fmt.Sprintf("%v", vData[i])
		width := runewidth.StringWidth(itemStr)

		if i > 0 {
			width += 2
		}

		if totalWidth+width > targetWidth && i > 0 {
			break
		}

		totalWidth += width
		itemsToShow++
	}

	if itemsToShow < len(vData) {
		v := fmt.Sprintf("%v", vData[:itemsToShow])
		v = strings.TrimSuffix(v, "]")
		v += fmt.Sprintf(" ...+%d more]", len(vData)-itemsToShow)
		return v
	}
	return fmt.Sprintf("%v", vData)
}

// newShowCmd - Erstellt den show Command
func newShowCmd() *cobra.Command {
	showCmd := &cobra.Command{
		Use:   "show NAME|PATH|URL",
		Short: "Show a UniLM config",
		Args:  cobra.ExactArgs(1),
		RunE:  ShowHandler,
	}

	showCmd.Flags().StringP("format", "f", "", "Output format: json, yaml or table (default table on a terminal, json otherwise)")
	addLoaderFlags(showCmd)

	return showCmd
}
