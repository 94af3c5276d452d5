package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	spec "github.com/nihei9/ppjgen/spec/grammar"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:     "show <report>",
		Short:   "Print a report in a readable format",
		Example: `  ppjgen show minusLang-report.json`,
		Args:    cobra.ExactArgs(1),
		RunE:    runShow,
	}
	rootCmd.AddCommand(cmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	report, err := readReport(args[0])
	if err != nil {
		return err
	}
	return writeReport(os.Stdout, report)
}

func readReport(path string) (*spec.Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open the report %s: %w", path, err)
	}
	defer f.Close()

	report := &spec.Report{}
	if err := json.NewDecoder(f).Decode(report); err != nil {
		return nil, fmt.Errorf("cannot read the report %s: %w", path, err)
	}
	return report, nil
}

type reportWriter struct {
	w      io.Writer
	report *spec.Report
}

func writeReport(w io.Writer, report *spec.Report) error {
	rw := &reportWriter{
		w:      w,
		report: report,
	}

	fmt.Fprintf(w, "# Conflicts\n\n")
	sr, rr := report.ConflictCount()
	switch {
	case sr+rr == 0:
		fmt.Fprintf(w, "No conflict was detected.\n\n")
	default:
		fmt.Fprintf(w, "%v shift/reduce conflicts and %v reduce/reduce conflicts were detected.\n\n", sr, rr)
	}

	fmt.Fprintf(w, "# Terminals\n\n")
	var rows [][]string
	for _, t := range report.Terminals {
		if t == nil {
			continue
		}
		sync := ""
		if t.Sync {
			sync = "sync"
		}
		rows = append(rows, []string{strconv.Itoa(t.Number), t.Name, sync})
	}
	rw.table([]string{"NUM", "NAME", ""}, rows)

	fmt.Fprintf(w, "# Non-terminals\n\n")
	rows = nil
	for _, n := range report.NonTerminals {
		if n == nil {
			continue
		}
		vanishing := ""
		if n.Vanishing {
			vanishing = "yes"
		}
		rows = append(rows, []string{strconv.Itoa(n.Number), n.Name, vanishing, rw.terminalList(n.First)})
	}
	rw.table([]string{"NUM", "NAME", "VANISHING", "FIRST"}, rows)

	fmt.Fprintf(w, "# Productions\n\n")
	rows = nil
	for _, p := range report.Productions {
		if p == nil {
			continue
		}
		row := ""
		if p.Row > 0 {
			row = strconv.Itoa(p.Row)
		}
		rows = append(rows, []string{strconv.Itoa(p.Number), row, rw.production(p.Number, -1)})
	}
	rw.table([]string{"NUM", "LINE", "PRODUCTION"}, rows)

	fmt.Fprintf(w, "# States\n")
	for _, s := range report.States {
		rw.state(s)
	}
	return nil
}

func (rw *reportWriter) table(header []string, rows [][]string) {
	table := tablewriter.NewWriter(rw.w)
	table.SetHeader(header)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("  ")
	table.AppendBulk(rows)
	table.Render()
	fmt.Fprintln(rw.w)
}

func (rw *reportWriter) state(s *spec.State) {
	fmt.Fprintf(rw.w, "\n## State %v\n\n", s.Number)
	for _, item := range s.Kernel {
		fmt.Fprintf(rw.w, "    %v, {%v}\n", rw.production(item.Production, item.Dot), rw.terminalList(item.LookAhead))
	}
	fmt.Fprintln(rw.w)

	var rows [][]string
	if s.Accept {
		rows = append(rows, []string{rw.terminal(rw.eof()), "accept", ""})
	}
	for _, t := range s.Shift {
		rows = append(rows, []string{rw.terminal(t.Symbol), "shift", strconv.Itoa(t.State)})
	}
	for _, r := range s.Reduce {
		rows = append(rows, []string{rw.terminalList(r.LookAhead), "reduce", rw.production(r.Production, -1)})
	}
	for _, t := range s.GoTo {
		rows = append(rows, []string{rw.nonTerminal(t.Symbol), "goto", strconv.Itoa(t.State)})
	}
	if len(rows) > 0 {
		rw.table([]string{"SYMBOL", "ACTION", "TARGET"}, rows)
	}

	for _, c := range s.SRConflict {
		adopted := "reduce"
		if c.AdoptedState != nil {
			adopted = "shift"
		}
		fmt.Fprintf(rw.w, "shift/reduce conflict on %v: shift %v, reduce %v; %v adopted\n",
			rw.terminal(c.Symbol), c.State, rw.production(c.Production, -1), adopted)
	}
	for _, c := range s.RRConflict {
		fmt.Fprintf(rw.w, "reduce/reduce conflict on %v: reduce %v, reduce %v; production %v adopted\n",
			rw.terminal(c.Symbol), rw.production(c.Production1, -1), rw.production(c.Production2, -1), c.AdoptedProduction)
	}
}

func (rw *reportWriter) eof() int {
	for _, t := range rw.report.Terminals {
		if t != nil && t.Name == "<eof>" {
			return t.Number
		}
	}
	return 1
}

func (rw *reportWriter) terminal(num int) string {
	if num <= 0 || num >= len(rw.report.Terminals) || rw.report.Terminals[num] == nil {
		return fmt.Sprintf("t%v", num)
	}
	return rw.report.Terminals[num].Name
}

func (rw *reportWriter) nonTerminal(num int) string {
	if num <= 0 || num >= len(rw.report.NonTerminals) || rw.report.NonTerminals[num] == nil {
		return fmt.Sprintf("n%v", num)
	}
	return rw.report.NonTerminals[num].Name
}

func (rw *reportWriter) terminalList(nums []int) string {
	names := make([]string, len(nums))
	for i, num := range nums {
		names[i] = rw.terminal(num)
	}
	return strings.Join(names, " ")
}

// production formats a production with a dot before the dot-th symbol of its right-hand
// side. A negative dot omits the dot.
func (rw *reportWriter) production(num int, dot int) string {
	if num <= 0 || num >= len(rw.report.Productions) || rw.report.Productions[num] == nil {
		return fmt.Sprintf("#%v", num)
	}
	p := rw.report.Productions[num]
	var b strings.Builder
	fmt.Fprintf(&b, "%v ->", rw.nonTerminal(p.LHS))
	for i, sym := range p.RHS {
		if i == dot {
			fmt.Fprintf(&b, " .")
		}
		if sym < 0 {
			fmt.Fprintf(&b, " %v", rw.nonTerminal(-sym))
		} else {
			fmt.Fprintf(&b, " %v", rw.terminal(sym))
		}
	}
	if dot >= len(p.RHS) {
		fmt.Fprintf(&b, " .")
	}
	return b.String()
}
