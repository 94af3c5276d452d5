package regex

import (
	"sort"
	"strings"

	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'ppjgen.regex'.
func tracer() tracing.Trace {
	return tracing.Select("ppjgen.regex")
}

// Definitions is the table of named sub-expressions of one compilation session.
// Saving stores a deep copy and looking up returns a deep copy, so trees never share
// nodes and a reference can never form a cycle.
type Definitions struct {
	trees map[string]Node
}

func NewDefinitions() *Definitions {
	return &Definitions{
		trees: map[string]Node{},
	}
}

// Save stores tree under name, replacing an earlier definition. The name may be
// given with or without its braces.
func (d *Definitions) Save(name string, tree Node) {
	name = trimBraces(name)
	if _, ok := d.trees[name]; ok {
		tracer().Infof("regular definition {%v} redefined", name)
	}
	d.trees[name] = tree.clone()
	tracer().Debugf("saved {%v} = %v", name, tree)
}

// Define parses pattern and saves the result under name.
func (d *Definitions) Define(name string, pattern string) error {
	tree, err := Parse(d, pattern)
	if err != nil {
		return err
	}
	d.Save(name, tree)
	return nil
}

func (d *Definitions) Lookup(name string) (Node, bool) {
	tree, ok := d.trees[trimBraces(name)]
	if !ok {
		return nil, false
	}
	return tree.clone(), true
}

func (d *Definitions) Names() []string {
	names := make([]string, 0, len(d.trees))
	for name := range d.trees {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func trimBraces(name string) string {
	return strings.TrimSuffix(strings.TrimPrefix(name, "{"), "}")
}
