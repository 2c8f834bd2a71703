package main

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nihei9/gramminer/internal/grammar"
)

func init() {
	cmd := &cobra.Command{
		Use:     "show",
		Short:   "Print a grammar document in readable format",
		Example: `  gramminer show parsing_g.json`,
		Args:    cobra.ExactArgs(1),
		RunE:    runShow,
	}
	rootCmd.AddCommand(cmd)
}

func runShow(cmd *cobra.Command, args []string) (retErr error) {
	defer func() {
		panicked := false
		v := recover()
		if v != nil {
			err, ok := v.(error)
			if !ok {
				retErr = fmt.Errorf("an unexpected error occurred: %v", v)
				fmt.Fprintf(os.Stderr, "%v:\n%v", retErr, string(debug.Stack()))
				return
			}
			retErr = err
			panicked = true
		}
		if retErr != nil && panicked {
			fmt.Fprintf(os.Stderr, "%v:\n%v", retErr, string(debug.Stack()))
		}
	}()

	doc, err := readGrammarDocument(args[0])
	if err != nil {
		return err
	}

	g := make(grammar.Grammar, len(doc.Grammar))
	for name, alts := range doc.Grammar {
		rules := make([]grammar.Rule, len(alts))
		for i, alt := range alts {
			rules[i] = splitRule(alt)
		}
		g[name] = rules
	}

	fmt.Fprintf(cmd.OutOrStdout(), "# Start\n\n%s\n\n", doc.Start)
	fmt.Fprintf(cmd.OutOrStdout(), "# Command\n\n%s\n\n", doc.Command)
	fmt.Fprintf(cmd.OutOrStdout(), "# Tested inputs\n\n%d\n\n", doc.NoTestedInputs)
	fmt.Fprintf(cmd.OutOrStdout(), "# Productions\n\n%s", g.String())
	return nil
}

// grammarDocument mirrors pipeline.GrammarDocument's on-disk shape for
// reading; kept local so this command doesn't need write-side access to
// the pipeline package's artifact writers.
type grammarDocument struct {
	Start          string              `json:"[start]"`
	Grammar        map[string][]string `json:"[grammar]"`
	Command        string              `json:"[command]"`
	NoTestedInputs int                 `json:"[no_tested_inputs]"`
}

func readGrammarDocument(path string) (*grammarDocument, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open the grammar document %s: %w", path, err)
	}
	defer f.Close()

	doc := &grammarDocument{}
	if err := json.NewDecoder(f).Decode(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// splitRule is joinRule's inverse: tokens never contain spaces, so a
// plain split is exact.
func splitRule(alt string) grammar.Rule {
	fields := strings.Fields(alt)
	return grammar.Rule(fields)
}
