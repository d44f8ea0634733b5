package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Elkozel/Meerkat/pkg/config"
	"github.com/Elkozel/Meerkat/pkg/parser"
	"github.com/Elkozel/Meerkat/pkg/suricata"
)

func checkCmd() *cobra.Command {
	var engine, nocolor bool

	cmd := &cobra.Command{
		Use:   "check <file.rules> [...]",
		Short: "Parse rule files and report problems",
		Long: `Parse every rule in the given files and report problems.

With --engine the rules are additionally loaded into the local Suricata
and its findings are reported as well.

Examples:
  meerkat check local.rules
  meerkat check --engine local.rules emerging-all.rules
`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runCheck(args, engine, nocolor)
		},
	}

	cmd.Flags().BoolVar(&engine, "engine", false, "also verify the rules with the local Suricata")
	cmd.Flags().BoolVar(&nocolor, "no-color", false, "disable colored output")

	return cmd
}

func runCheck(files []string, engine, nocolor bool) error {
	if nocolor {
		color.NoColor = true //nolint:reassign // intentional override of library global
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	totalRules := 0
	totalProblems := 0

	for _, path := range files {
		data, readErr := os.ReadFile(path)
		if readErr != nil {
			return fmt.Errorf("reading %s: %w", path, readErr)
		}

		text := string(data)

		rules, problems := checkText(os.Stdout, path, text)
		totalRules += rules
		totalProblems += problems

		if engine {
			problems, err = checkEngine(os.Stdout, cfg, path, text)
			if err != nil {
				return err
			}

			totalProblems += problems
		}
	}

	if totalProblems == 0 {
		color.New(color.FgGreen).Fprintf(os.Stdout, "OK: %s rules across %s files\n",
			humanize.Comma(int64(totalRules)), humanize.Comma(int64(len(files))))

		return nil
	}

	color.New(color.FgRed).Fprintf(os.Stdout, "%s problems found\n", humanize.Comma(int64(totalProblems)))
	os.Exit(1)

	return nil
}

// checkText parses every non-comment line of text and prints one line
// per problem. It returns the number of parsed rules and of problems.
func checkText(w io.Writer, path, text string) (rules, problems int) {
	for i, line := range strings.Split(text, "\n") {
		if parser.IsComment(line) || parser.IsBlank(line) {
			continue
		}

		parsed, diags := parser.ParseRule(line)
		if parsed != nil {
			rules++
		}

		for _, diag := range diags {
			color.New(color.FgRed).Fprintf(w, "%s:%d:%d: %s\n", path, i+1, diag.Span.Start+1, diag.Message)
			problems++
		}

		if parsed == nil && len(diags) == 0 {
			color.New(color.FgRed).Fprintf(w, "%s:%d: line does not parse as a rule\n", path, i+1)
			problems++
		}
	}

	return rules, problems
}

// checkEngine loads the file into the local Suricata and prints its
// findings.
func checkEngine(w io.Writer, cfg *config.Config, path, text string) (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Suricata.Timeout)
	defer cancel()

	findings, err := suricata.VerifyRules(ctx, cfg.Suricata.Binary, text)
	if err != nil {
		return 0, fmt.Errorf("verifying %s: %w", path, err)
	}

	for _, finding := range findings {
		message := finding.Message
		if finding.CodeName != "" {
			message = finding.CodeName + ": " + message
		}

		color.New(color.FgYellow).Fprintf(w, "%s:%d: %s\n", path, finding.Line+1, message)
	}

	return len(findings), nil
}
