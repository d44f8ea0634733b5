package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"

	"github.com/Elkozel/Meerkat/pkg/lsp"
)

func fmtCmd() *cobra.Command {
	var write, showDiff bool

	cmd := &cobra.Command{
		Use:   "fmt <file.rules> [...]",
		Short: "Reformat rule files to canonical text",
		Long: `Reformat every parsable rule in the given files to canonical text.

Comment lines and lines that do not parse are left untouched. Without
flags the formatted text goes to stdout.

Examples:
  meerkat fmt local.rules
  meerkat fmt -w local.rules
  meerkat fmt --diff local.rules
`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runFmt(args, write, showDiff)
		},
	}

	cmd.Flags().BoolVarP(&write, "write", "w", false, "rewrite files in place")
	cmd.Flags().BoolVar(&showDiff, "diff", false, "print a diff instead of the formatted text")

	return cmd
}

func runFmt(files []string, write, showDiff bool) error {
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}

		original := string(data)
		formatted := formatText(original)

		switch {
		case showDiff:
			if formatted != original {
				printDiff(path, original, formatted)
			}
		case write:
			if formatted == original {
				continue
			}

			info, statErr := os.Stat(path)
			if statErr != nil {
				return fmt.Errorf("stat %s: %w", path, statErr)
			}

			writeErr := os.WriteFile(path, []byte(formatted), info.Mode())
			if writeErr != nil {
				return fmt.Errorf("writing %s: %w", path, writeErr)
			}

			fmt.Fprintln(os.Stdout, path)
		default:
			fmt.Fprint(os.Stdout, formatted)
		}
	}

	return nil
}

// formatText rewrites every formattable line to its canonical rendering
// and leaves the rest of the text alone.
func formatText(text string) string {
	lines := strings.Split(text, "\n")

	for i, line := range lines {
		if formatted, changed := lsp.Formattable(line); changed {
			lines[i] = formatted
		}
	}

	return strings.Join(lines, "\n")
}

func printDiff(path, original, formatted string) {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(original, formatted, false)

	fmt.Fprintf(os.Stdout, "--- %s\n", path)

	for _, diff := range diffs {
		switch diff.Type {
		case diffmatchpatch.DiffDelete:
			color.New(color.FgRed).Fprint(os.Stdout, diff.Text)
		case diffmatchpatch.DiffInsert:
			color.New(color.FgGreen).Fprint(os.Stdout, diff.Text)
		case diffmatchpatch.DiffEqual:
			fmt.Fprint(os.Stdout, diff.Text)
		}
	}

	fmt.Fprintln(os.Stdout)
}
