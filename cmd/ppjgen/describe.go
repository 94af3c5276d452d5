package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/nihei9/ppjgen/grammar"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var describeFlags = struct {
	states *bool
	dot    *bool
}{}

func init() {
	cmd := &cobra.Command{
		Use:   "describe <grammar>",
		Short: "Print the FIRST sets and the LR(1) states of a grammar",
		Example: `  ppjgen describe minusLang.san
  ppjgen describe minusLang.san --states
  ppjgen describe minusLang.san --dot | dot -Tsvg > states.svg`,
		Args: cobra.ExactArgs(1),
		RunE: runDescribe,
	}
	describeFlags.states = cmd.Flags().Bool("states", false, "print the kernel items of every state")
	describeFlags.dot = cmd.Flags().Bool("dot", false, "print the LR(1) automaton in GraphViz format")
	rootCmd.AddCommand(cmd)
}

func runDescribe(cmd *cobra.Command, args []string) error {
	gram, err := readGrammar(args[0])
	if err != nil {
		return err
	}

	if !*describeFlags.states && !*describeFlags.dot {
		return writeFirstSets(os.Stdout, gram)
	}

	cc, err := gram.CanonicalCollection()
	if err != nil {
		return err
	}
	if *describeFlags.dot {
		return cc.Dot(os.Stdout)
	}
	pterm.DefaultTree.WithRoot(stateTree(cc)).Render()
	return nil
}

func writeFirstSets(w io.Writer, gram *grammar.Grammar) error {
	symTab := gram.SymbolTable()
	rw := &reportWriter{w: w}
	var rows [][]string
	for _, sym := range symTab.NonTerminals() {
		if sym.IsStart() {
			continue
		}
		var first []string
		for _, t := range gram.First(sym) {
			first = append(first, symTab.Name(t))
		}
		vanishing := ""
		if gram.IsVanishing(sym) {
			vanishing = "yes"
		}
		rows = append(rows, []string{symTab.Name(sym), vanishing, strings.Join(first, " ")})
	}
	rw.table([]string{"NON-TERMINAL", "VANISHING", "FIRST"}, rows)
	return nil
}

// stateTree lists the kernel items under their states.
func stateTree(cc *grammar.CanonicalCollection) pterm.TreeNode {
	list := pterm.LeveledList{}
	for _, s := range cc.States {
		list = append(list, pterm.LeveledListItem{Level: 0, Text: fmt.Sprintf("state %v", s.Num)})
		for _, text := range cc.KernelTexts(s.Num) {
			list = append(list, pterm.LeveledListItem{Level: 1, Text: text})
		}
	}
	return pterm.NewTreeFromLeveledList(list)
}
