package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Elkozel/Meerkat/pkg/config"
	"github.com/Elkozel/Meerkat/pkg/suricata"
)

func keywordsCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "keywords",
		Short: "List the rule keywords known to the local Suricata",
		Long: `List the rule keywords the local Suricata reports.

The list is the same dictionary the language server uses for hover and
completion.

Examples:
  meerkat keywords
  meerkat keywords -o json
  meerkat keywords -o yaml
`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runKeywords(output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "table", "output format: table, json or yaml")

	return cmd
}

type keywordRow struct {
	Name          string `json:"name"                    yaml:"name"`
	Description   string `json:"description"             yaml:"description"`
	AppLayer      string `json:"app_layer,omitempty"     yaml:"app_layer,omitempty"`
	NoOption      bool   `json:"no_option"               yaml:"no_option"`
	Documentation string `json:"documentation,omitempty" yaml:"documentation,omitempty"`
}

func runKeywords(output string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Suricata.Timeout)
	defer cancel()

	keywords, err := suricata.ListKeywords(ctx, cfg.Suricata.Binary)
	if err != nil {
		return err
	}

	return renderKeywords(os.Stdout, output, keywordRows(keywords))
}

func renderKeywords(w io.Writer, output string, rows []keywordRow) error {
	switch output {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		return enc.Encode(rows)
	case "yaml":
		enc := yaml.NewEncoder(w)

		if err := enc.Encode(rows); err != nil {
			enc.Close()

			return err
		}

		// Close flushes; a short write surfaces here.
		return enc.Close()
	case "table":
		printKeywordTable(w, rows)

		return nil
	default:
		return fmt.Errorf("unknown output format %q", output)
	}
}

func keywordRows(keywords map[string]suricata.Keyword) []keywordRow {
	rows := make([]keywordRow, 0, len(keywords))

	for _, keyword := range keywords {
		rows = append(rows, keywordRow{
			Name:          keyword.Record.Name,
			Description:   keyword.Record.Description,
			AppLayer:      keyword.Record.AppLayer,
			NoOption:      keyword.NoOption,
			Documentation: keyword.Record.Documentation,
		})
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].Name < rows[j].Name })

	return rows
}

func printKeywordTable(w io.Writer, rows []keywordRow) {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"Name", "Description", "App Layer", "No Option"})

	for _, row := range rows {
		tbl.AppendRow(table.Row{row.Name, row.Description, row.AppLayer, row.NoOption})
	}

	tbl.AppendFooter(table.Row{fmt.Sprintf("Total: %d keywords", len(rows))})
	tbl.Render()
}
