package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/nihei9/ppjgen/grammar"
	spec "github.com/nihei9/ppjgen/spec/grammar"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var compileFlags = struct {
	output    *string
	conflicts *string
}{}

func init() {
	cmd := &cobra.Command{
		Use:   "compile [grammar]",
		Short: "Compile a grammar into a canonical LR(1) parsing table",
		Long: `compile writes the parsing table as JSON together with a report describing the
symbols, the productions, and every state. When no grammar file is given,
compile reads stdin.`,
		Example: `  ppjgen compile minusLang.san -o out/
  ppjgen compile minusLang.san --conflicts reject`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCompile,
	}
	compileFlags.output = cmd.Flags().StringP("output", "o", "", "output file or directory (default stdout)")
	compileFlags.conflicts = cmd.Flags().String("conflicts", "", "conflict policy: shift or reject (default from the configuration)")
	rootCmd.AddCommand(cmd)
}

func runCompile(cmd *cobra.Command, args []string) error {
	policy, err := conflictPolicy(*compileFlags.conflicts)
	if err != nil {
		return err
	}

	var gram *grammar.Grammar
	if len(args) > 0 {
		gram, err = readGrammar(args[0])
	} else {
		gram, err = parseGrammar(os.Stdin, "stdin", "")
	}
	if err != nil {
		return err
	}

	cgram, report, err := grammar.Compile(gram, grammar.EnableReporting(), grammar.WithConflictPolicy(policy))
	if err != nil {
		return err
	}

	err = writeCompiledGrammarAndReport(cgram, report, *compileFlags.output)
	if err != nil {
		return fmt.Errorf("cannot write the output files: %w", err)
	}

	sr, rr := report.ConflictCount()
	if sr+rr > 0 {
		pterm.Info.Println(fmt.Sprintf("%v states, %v shift/reduce conflicts, %v reduce/reduce conflicts", len(report.States), sr, rr))
	}
	return nil
}

func readGrammar(path string) (*grammar.Grammar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open the grammar file %s: %w", path, err)
	}
	defer f.Close()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return parseGrammar(f, name, path)
}

// parseGrammar reads and validates a grammar. The errors quote the offending lines
// only when path is not empty.
func parseGrammar(src io.Reader, name, path string) (*grammar.Grammar, error) {
	sourceName := path
	if sourceName == "" {
		sourceName = name
	}

	ast, err := spec.Parse(src)
	if err != nil {
		return nil, withSource(err, path, sourceName)
	}
	b := grammar.GrammarBuilder{
		AST:  ast,
		Name: name,
	}
	g, err := b.Build()
	if err != nil {
		return nil, withSource(err, path, sourceName)
	}
	return g, nil
}

// writeCompiledGrammarAndReport writes the parsing table and the report according to
// path:
//
//   - An empty path writes the parsing table to stdout and the report to
//     <name>-report.json in the working directory.
//   - A directory receives <name>.json and <name>-report.json.
//   - Any other path names the parsing table file; the report goes next to it.
func writeCompiledGrammarAndReport(cgram *spec.CompiledGrammar, report *spec.Report, path string) error {
	cgramPath, reportPath, err := makeOutputFilePaths(cgram.Name, path)
	if err != nil {
		return err
	}

	if cgramPath == "" {
		err = writeJSON(os.Stdout, cgram)
	} else {
		err = writeJSONFile(cgramPath, cgram)
	}
	if err != nil {
		return err
	}
	return writeJSONFile(reportPath, report)
}

func writeJSONFile(path string, v interface{}) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer f.Close()
	return writeJSON(f, v)
}

func writeJSON(w io.Writer, v interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%v\n", string(b))
	return err
}

func makeOutputFilePaths(gramName string, path string) (string, string, error) {
	reportFileName := gramName + "-report.json"

	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", "", err
		}
		return "", filepath.Join(wd, reportFileName), nil
	}

	fi, err := os.Stat(path)
	if err != nil && !os.IsNotExist(err) {
		return "", "", err
	}
	if os.IsNotExist(err) || !fi.IsDir() {
		dir, _ := filepath.Split(path)
		return path, filepath.Join(dir, reportFileName), nil
	}

	return filepath.Join(path, gramName+".json"), filepath.Join(path, reportFileName), nil
}
