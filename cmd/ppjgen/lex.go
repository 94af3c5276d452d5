package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/nihei9/ppjgen/driver/lexer"
	verr "github.com/nihei9/ppjgen/error"
	"github.com/nihei9/ppjgen/grammar/lexical"
	lexspec "github.com/nihei9/ppjgen/spec/lexical"
	"github.com/olekukonko/tablewriter"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var lexFlags = struct {
	interactive *bool
	dot         *int
	stats       *bool
}{}

func init() {
	cmd := &cobra.Command{
		Use:   "lex <definition> [input]",
		Short: "Tokenize a text stream according to a lexical definition",
		Long: `lex prints one line per token: the token name, the line number, and the lexeme.
Input no rule matches is reported on stderr. When no input file is given,
lex reads stdin.`,
		Example: `  ppjgen lex minusLang.lan < program.txt
  ppjgen lex minusLang.lan --interactive
  ppjgen lex minusLang.lan --dot 3 | dot -Tsvg > rule3.svg`,
		Args: cobra.RangeArgs(1, 2),
		RunE: runLex,
	}
	lexFlags.interactive = cmd.Flags().BoolP("interactive", "i", false, "tokenize the lines entered at a prompt")
	lexFlags.dot = cmd.Flags().Int("dot", -1, "print the automaton of the rule with this ID in GraphViz format")
	lexFlags.stats = cmd.Flags().Bool("stats", false, "print the size of the automaton of every rule")
	rootCmd.AddCommand(cmd)
}

func runLex(cmd *cobra.Command, args []string) error {
	tab, err := readLexerTable(args[0])
	if err != nil {
		return err
	}

	switch {
	case *lexFlags.dot >= 0:
		return tab.Dot(os.Stdout, *lexFlags.dot)
	case *lexFlags.stats:
		return writeLexerStats(os.Stdout, tab)
	case *lexFlags.interactive:
		return lexInteractively(tab)
	}

	src := io.Reader(os.Stdin)
	if len(args) > 1 {
		f, err := os.Open(args[1])
		if err != nil {
			return fmt.Errorf("cannot open the input file %s: %w", args[1], err)
		}
		defer f.Close()
		src = f
	}
	_, err = tokenize(os.Stdout, os.Stderr, tab, src)
	return err
}

func readLexerTable(path string) (*lexical.LexerTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open the lexical definition %s: %w", path, err)
	}
	defer f.Close()

	def, err := lexspec.Parse(f)
	if err != nil {
		return nil, withSource(err, path, path)
	}
	tab, err := lexical.Compile(def)
	if err != nil {
		return nil, withSource(err, path, path)
	}
	return tab, nil
}

// withSource attaches a source to the errors found in it. The lines the errors point
// at are quoted only when filePath is not empty.
func withSource(err error, filePath, sourceName string) error {
	var specErrs verr.SpecErrors
	if errors.As(err, &specErrs) {
		specErrs.SetSource(filePath, sourceName)
	}
	return err
}

// tokenize writes the tokens of src to w and the unmatched input to errW. It returns
// the lexer so that a caller can resume from its state.
func tokenize(w, errW io.Writer, tab *lexical.LexerTable, src io.Reader, opts ...lexer.LexerOption) (*lexer.Lexer, error) {
	lex, err := lexer.NewLexer(tab, src, opts...)
	if err != nil {
		return nil, err
	}
	for {
		tok, err := lex.Next()
		if err != nil {
			return lex, err
		}
		if tok.EOF {
			return lex, nil
		}
		if tok.Invalid {
			fmt.Fprintln(errW, tok)
			continue
		}
		fmt.Fprintln(w, tok)
	}
}

// lexInteractively tokenizes every line entered at a prompt. The lexer state and the
// line number carry over from one line to the next.
func lexInteractively(tab *lexical.LexerTable) error {
	rl, err := readline.New("lex> ")
	if err != nil {
		return err
	}
	defer rl.Close()

	pterm.Info.Prefix = pterm.Prefix{
		Text:  "lex",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Info.Println("Enter text to tokenize it. Quit with <ctrl>D.")

	state := tab.InitialState().Name
	row := 1
	for {
		line, err := rl.Readline()
		if err != nil { // io.EOF or readline.ErrInterrupt
			break
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		lex, err := tokenize(os.Stdout, os.Stderr, tab, strings.NewReader(line+"\n"), lexer.InitialState(state), lexer.InitialRow(row))
		if err != nil {
			pterm.Error.Println(err.Error())
			continue
		}
		state, row = lex.State(), lex.Row()
	}
	pterm.Println("Good bye!")
	return nil
}

func writeLexerStats(w io.Writer, tab *lexical.LexerTable) error {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"ID", "STATE", "PATTERN", "TOKEN", "STATES", "EDGES", "EPSILON", "OPTIMIZED"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("  ")
	var rows [][]string
	for _, s := range tab.Stats() {
		rows = append(rows, []string{
			strconv.Itoa(s.Rule.ID),
			tab.States[s.Rule.State].Name,
			s.Rule.Pattern,
			s.Rule.Token,
			strconv.Itoa(s.Stats.States),
			strconv.Itoa(s.Stats.SymbolEdges),
			strconv.Itoa(s.Stats.EpsilonEdges),
			strconv.Itoa(s.Stats.Optimized),
		})
	}
	table.AppendBulk(rows)
	table.Render()
	return nil
}
