// Package lexical loads lexical definitions written in the PPJ format:
//
//	{digit} 0|1|2|3|4|5|6|7|8|9
//	%X S_initial S_comment
//	%L NUMBER PLUS
//	<S_initial>{digit}{digit}*
//	{
//	NUMBER
//	}
//	<S_initial>\n
//	{
//	-
//	NOVI_REDAK
//	}
//
// Regular definitions and the %X (lexer states) and %L (token names) directives
// form the header. Each rule names the lexer state it is active in, a pattern, and a
// block holding the token name (or - for no token) followed by command lines.
// Patterns and commands are kept as text here; grammar/lexical compiles them.
package lexical

import (
	"bufio"
	"io"
	"strings"

	verr "github.com/nihei9/ppjgen/error"
)

const TokenNone = "-"

type Definition struct {
	Name    string
	Pattern string
	Row     int
}

type Command struct {
	Text string
	Row  int
}

type Rule struct {
	State    string
	Pattern  string
	Token    string
	Commands []*Command
	Row      int
}

// Emits reports whether the rule produces a token.
func (r *Rule) Emits() bool {
	return r.Token != TokenNone
}

type LexSpec struct {
	Definitions []*Definition
	States      []string
	Tokens      []string
	Rules       []*Rule

	StatesRow int
	TokensRow int
}

// Parse reads a lexical definition. It reports every syntax error it finds as a
// error.SpecErrors.
func Parse(src io.Reader) (*LexSpec, error) {
	lines, err := readLines(src)
	if err != nil {
		return nil, err
	}
	p := &parser{
		lines: lines,
	}
	spec := p.parse()
	if len(p.errs) > 0 {
		return nil, p.errs
	}
	return spec, nil
}

func readLines(src io.Reader) ([]string, error) {
	var lines []string
	s := bufio.NewScanner(src)
	s.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for s.Scan() {
		lines = append(lines, strings.TrimRight(s.Text(), "\r"))
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

type parser struct {
	lines []string
	pos   int
	errs  verr.SpecErrors
}

func (p *parser) parse() *LexSpec {
	spec := &LexSpec{}
	p.parseHeader(spec)
	if spec.StatesRow == 0 {
		p.errs = append(p.errs, &verr.SpecError{
			Cause: synErrNoStates,
		})
	}
	for {
		rule, ok := p.parseRule()
		if !ok {
			break
		}
		if rule != nil {
			spec.Rules = append(spec.Rules, rule)
		}
	}
	return spec
}

// next returns the next line that is not blank together with its row number.
func (p *parser) next() (string, int, bool) {
	for p.pos < len(p.lines) {
		line := p.lines[p.pos]
		p.pos++
		if strings.TrimSpace(line) == "" {
			continue
		}
		return line, p.pos, true
	}
	return "", 0, false
}

func (p *parser) peek() (string, bool) {
	pos := p.pos
	line, _, ok := p.next()
	p.pos = pos
	return line, ok
}

func (p *parser) error(row int, cause error, detail string) {
	p.errs = append(p.errs, &verr.SpecError{
		Cause:  cause,
		Detail: detail,
		Row:    row,
	})
}

func (p *parser) parseHeader(spec *LexSpec) {
	for {
		line, ok := p.peek()
		if !ok || strings.HasPrefix(line, "<") {
			return
		}
		line, row, _ := p.next()
		switch {
		case strings.HasPrefix(line, "{"):
			end := strings.Index(line, "}")
			if end < 0 || end == 1 {
				p.error(row, synErrDefNoName, "")
				continue
			}
			pattern := trimPattern(line[end+1:])
			if pattern == "" {
				p.error(row, synErrDefNoPattern, line[:end+1])
				continue
			}
			spec.Definitions = append(spec.Definitions, &Definition{
				Name:    line[1:end],
				Pattern: pattern,
				Row:     row,
			})
		case strings.HasPrefix(line, "%"):
			fields := strings.Fields(line)
			switch fields[0] {
			case "%X":
				if spec.StatesRow != 0 {
					p.error(row, synErrDuplicateStates, "")
					continue
				}
				spec.States = fields[1:]
				spec.StatesRow = row
				if len(spec.States) == 0 {
					p.error(row, synErrNoStates, "")
				}
			case "%L":
				if spec.TokensRow != 0 {
					p.error(row, synErrDuplicateTokens, "")
					continue
				}
				spec.Tokens = fields[1:]
				spec.TokensRow = row
			default:
				p.error(row, synErrUnknownDirective, fields[0])
			}
		default:
			p.error(row, synErrUnexpectedHeading, "")
		}
	}
}

// parseRule returns false when the input is exhausted. A rule with errors is returned
// as nil after skipping to the next line that can start a rule.
func (p *parser) parseRule() (*Rule, bool) {
	line, row, ok := p.next()
	if !ok {
		return nil, false
	}
	if !strings.HasPrefix(line, "<") {
		p.error(row, synErrRuleNoState, "")
		p.skipRule()
		return nil, true
	}
	end := strings.Index(line, ">")
	if end <= 1 {
		p.error(row, synErrRuleNoState, "")
		p.skipRule()
		return nil, true
	}
	rule := &Rule{
		State:   line[1:end],
		Pattern: trimPattern(line[end+1:]),
		Row:     row,
	}
	if rule.Pattern == "" {
		p.error(row, synErrRuleNoPattern, "")
		p.skipRule()
		return nil, true
	}

	line, row, ok = p.next()
	if !ok || strings.TrimSpace(line) != "{" {
		p.error(rule.Row, synErrRuleNoBlock, "")
		if ok {
			p.pos--
		}
		p.skipRule()
		return nil, true
	}

	line, row, ok = p.next()
	if !ok {
		p.error(rule.Row, synErrRuleUnclosed, "")
		return nil, false
	}
	if strings.TrimSpace(line) == "}" {
		p.error(row, synErrRuleNoToken, "")
		return nil, true
	}
	fields := strings.Fields(line)
	if len(fields) != 1 {
		p.error(row, synErrRuleInvalidToken, strings.TrimSpace(line))
		p.skipRule()
		return nil, true
	}
	rule.Token = fields[0]

	for {
		line, row, ok = p.next()
		if !ok {
			p.error(rule.Row, synErrRuleUnclosed, "")
			return nil, false
		}
		text := strings.TrimSpace(line)
		if text == "}" {
			return rule, true
		}
		if strings.HasPrefix(line, "<") {
			p.error(rule.Row, synErrRuleUnclosed, "")
			p.pos--
			return nil, true
		}
		rule.Commands = append(rule.Commands, &Command{
			Text: text,
			Row:  row,
		})
	}
}

// skipRule moves to the next line starting with <.
func (p *parser) skipRule() {
	for p.pos < len(p.lines) {
		if strings.HasPrefix(p.lines[p.pos], "<") {
			return
		}
		p.pos++
	}
}

// trimPattern removes surrounding blanks but keeps a trailing blank escaped with a
// backslash.
func trimPattern(s string) string {
	s = strings.TrimLeft(s, " \t")
	for len(s) > 0 {
		last := s[len(s)-1]
		if last != ' ' && last != '\t' {
			break
		}
		backslashes := 0
		for i := len(s) - 2; i >= 0 && s[i] == '\\'; i-- {
			backslashes++
		}
		if backslashes%2 == 1 {
			break
		}
		s = s[:len(s)-1]
	}
	return s
}
