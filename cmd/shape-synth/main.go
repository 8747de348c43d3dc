// Package main provides the shape-synth CLI.
//
// shape-synth generates sample values of the demo shapes in package store:
//
//	shape-synth -type Order -n 3 -plan plan.yaml -format yaml
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"gopkg.in/yaml.v3"

	"shape-synth/engine"
	"shape-synth/store"
)

var errUsage = errors.New("usage")

type options struct {
	configFile string
	planFile   string
	typeName   string
	count      int
	format     string
	seed       int64
	dumpTree   bool
	parallel   bool
	list       bool
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}

		fmt.Fprintln(stderr, err)

		return 1
	}

	if opts.list {
		fmt.Fprintln(stdout, strings.Join(store.TypeNames(), "\n"))
		return 0
	}

	if err := generate(opts, stdout, stderr); err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}

	return 0
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options

	fs := flag.NewFlagSet("shape-synth", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configFile, "config", "", "engine configuration file (YAML)")
	fs.StringVar(&opts.planFile, "plan", "", "manipulation plan file (YAML)")
	fs.StringVar(&opts.typeName, "type", "Order", "shape to generate: "+strings.Join(store.TypeNames(), ", "))
	fs.IntVar(&opts.count, "n", 1, "number of samples")
	fs.StringVar(&opts.format, "format", "spew", "output format: spew or yaml")
	fs.Int64Var(&opts.seed, "seed", 0, "random seed, overrides the configuration")
	fs.BoolVar(&opts.dumpTree, "dump-tree", false, "print the manipulated tree instead of samples")
	fs.BoolVar(&opts.parallel, "parallel", false, "draw every sample from its own request, concurrently")
	fs.BoolVar(&opts.list, "list", false, "list the available shapes")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	if fs.NArg() > 0 {
		return opts, fmt.Errorf("%w: unexpected arguments %v", errUsage, fs.Args())
	}

	if opts.count < 1 {
		return opts, fmt.Errorf("%w: -n must be positive", errUsage)
	}

	if opts.format != "spew" && opts.format != "yaml" {
		return opts, fmt.Errorf("%w: -format must be spew or yaml", errUsage)
	}

	return opts, nil
}

func generate(opts options, stdout, stderr io.Writer) error {
	typ, ok := store.Types[opts.typeName]
	if !ok {
		return fmt.Errorf("unknown type %q, use -list", opts.typeName)
	}

	cfg := engine.Config{}
	if opts.configFile != "" {
		loaded, err := engine.LoadConfig(opts.configFile)
		if err != nil {
			return err
		}

		cfg = *loaded
	}

	if opts.seed != 0 {
		cfg.Seed = opts.seed
	}

	cfg.ApplyDefaults()

	var plan *engine.Plan
	if opts.planFile != "" {
		var err error

		plan, err = engine.LoadPlan(opts.planFile)
		if err != nil {
			return err
		}
	}

	e, err := engine.New(append(store.Options(), engine.WithConfig(&cfg), engine.WithLogger(cfg.Logger(stderr)))...)
	if err != nil {
		return err
	}

	configure := func(r *engine.Request) error {
		if plan == nil {
			return nil
		}

		return r.Plan(plan)
	}

	if opts.dumpTree {
		r := e.For(typ)
		if err := configure(r); err != nil {
			return err
		}

		t, err := r.Tree()
		if err != nil {
			return err
		}

		if err := t.ExpandAll(); err != nil {
			return err
		}

		return t.Dump(stdout)
	}

	var values []reflect.Value

	if opts.parallel {
		values, err = e.SampleConcurrently(context.Background(), typ, opts.count, configure)
	} else {
		r := e.For(typ)
		if err := configure(r); err != nil {
			return err
		}

		values, err = r.Samples(opts.count)
		for _, d := range r.Diagnostics().Warnings {
			fmt.Fprintln(stderr, "warning:", d)
		}
	}

	if err != nil {
		return err
	}

	return write(stdout, opts.format, values)
}

func write(w io.Writer, format string, values []reflect.Value) error {
	if format == "yaml" {
		docs := make([]any, len(values))
		for i, v := range values {
			docs[i] = v.Interface()
		}

		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)

		for _, doc := range docs {
			if err := enc.Encode(doc); err != nil {
				return fmt.Errorf("failed to encode sample: %w", err)
			}
		}

		return enc.Close()
	}

	cfg := spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, DisableCapacities: true, SortKeys: true}
	for _, v := range values {
		cfg.Fdump(w, v.Interface())
	}

	return nil
}
