package main

import (
	"fmt"

	"github.com/nihei9/ppjgen/grammar"
	"github.com/npillmayer/schuko/schukonf/koanfadapter"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"
)

const appTag = "ppjgen"

// Configuration keys. Files are NestedText, e.g. ~/.config/ppjgen/config.nt:
//
//	tracelevel:
//	  root: Error
//	  ppjgen.grammar: Debug
//	ppjgen:
//	  conflicts: reject
const (
	keyTraceAdapter = "tracing.adapter"
	keyTraceLevel   = "tracelevel"
	keyConflicts    = "ppjgen.conflicts"
)

var tracedPackages = []string{
	"ppjgen.regex",
	"ppjgen.nfa",
	"ppjgen.lexical",
	"ppjgen.lexer",
	"ppjgen.grammar",
}

var conf *koanfadapter.KConf

// initConfig loads the configuration files and installs the tracers. A non-empty
// traceLevel overrides the levels of the configuration.
func initConfig(traceLevel string) error {
	conf = koanfadapter.New(nil, appTag, []string{"nt"})
	conf.InitDefaults()
	if !conf.IsSet(keyTraceAdapter) {
		conf.Set(keyTraceAdapter, "go")
	}
	if !conf.IsSet(keyTraceLevel + ".root") {
		conf.Set(keyTraceLevel+".root", "Error")
	}
	if !conf.IsSet(keyConflicts) {
		conf.Set(keyConflicts, grammar.PreferShiftAndEarliestProduction.String())
	}
	if traceLevel != "" {
		conf.Set(keyTraceLevel+".root", traceLevel)
		for _, key := range tracedPackages {
			conf.Set(keyTraceLevel+"."+key, traceLevel)
		}
	}

	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	if err := trace2go.ConfigureRoot(conf, keyTraceLevel, trace2go.ReplaceTracers(true)); err != nil {
		return fmt.Errorf("cannot configure tracing: %w", err)
	}
	tracing.SetTraceSelector(trace2go.Selector())

	return nil
}

// conflictPolicy returns the policy a flag names, or the configured one when the flag
// is empty.
func conflictPolicy(flag string) (grammar.ConflictPolicy, error) {
	if flag != "" {
		return grammar.ParseConflictPolicy(flag)
	}
	return grammar.ParseConflictPolicy(conf.GetString(keyConflicts))
}
