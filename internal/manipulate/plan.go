package manipulate

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"shape-synth/internal/path"
	"shape-synth/internal/tree"
)

// Plan is a manipulation plan read from YAML.
type Plan struct {
	// Strict is the default resolution mode of the steps (default true).
	Strict *bool `yaml:"strict,omitempty"`

	Manipulators []Step `yaml:"manipulators"`
}

// Step is one plan entry. A step may combine size, set and null; they are
// applied in that order.
type Step struct {
	Path   string    `yaml:"path"`
	Set    yaml.Node `yaml:"set,omitempty"`
	Size   *SizeSpec `yaml:"size,omitempty"`
	Null   string    `yaml:"null,omitempty"` // always or never
	Strict *bool     `yaml:"strict,omitempty"`
}

// UnmarshalYAML decodes a step mapping. A plain null key resolves to the
// YAML null, so keys tagged !!null are read as "null".
func (s *Step) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: step must be a mapping", node.Line)
	}

	mapping := *node
	mapping.Content = slices.Clone(node.Content)

	for i := 0; i < len(mapping.Content); i += 2 {
		if key := mapping.Content[i]; key.ShortTag() == "!!null" {
			renamed := *key
			renamed.Tag, renamed.Value, renamed.Style = "!!str", "null", 0
			mapping.Content[i] = &renamed
		}
	}

	type plain Step

	return mapping.Decode((*plain)(s))
}

// SizeSpec is a container size: a scalar n for [n, n] or a [min, max] pair.
type SizeSpec struct {
	Min int
	Max int
}

// UnmarshalYAML accepts either a single integer or a two element sequence.
func (s *SizeSpec) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var n int
		if err := node.Decode(&n); err != nil {
			return err
		}

		*s = SizeSpec{Min: n, Max: n}

		return nil

	case yaml.SequenceNode:
		var pair []int
		if err := node.Decode(&pair); err != nil {
			return err
		}

		if len(pair) != 2 {
			return fmt.Errorf("size expects [min, max], got %d values", len(pair))
		}

		*s = SizeSpec{Min: pair[0], Max: pair[1]}

		return nil

	default:
		return fmt.Errorf("expected integer or [min, max], got %v", node.Kind)
	}
}

// MarshalYAML writes a scalar when min equals max.
func (s SizeSpec) MarshalYAML() (any, error) {
	if s.Min == s.Max {
		return s.Min, nil
	}

	return []int{s.Min, s.Max}, nil
}

// LoadPlan loads and parses a YAML plan file.
func LoadPlan(filename string) (*Plan, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan file %s: %w", filename, err)
	}

	return ParsePlan(data)
}

// ParsePlan parses YAML data into a Plan.
func ParsePlan(data []byte) (*Plan, error) {
	var p Plan

	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse plan YAML: %w", err)
	}

	return &p, nil
}

// AppendTo adds the plan steps to l.
func (p *Plan) AppendTo(l *Log) error {
	defaultStrict := p.Strict == nil || *p.Strict

	var errs []error

	for i, step := range p.Manipulators {
		if err := step.appendTo(l, defaultStrict); err != nil {
			errs = append(errs, fmt.Errorf("step %d (%s): %w", i+1, step.Path, err))
		}
	}

	return errors.Join(errs...)
}

func (s Step) appendTo(l *Log, defaultStrict bool) error {
	expr, err := path.Parse(s.Path)
	if err != nil {
		return err
	}

	strict := defaultStrict
	if s.Strict != nil {
		strict = *s.Strict
	}

	mode := tree.Strict
	if !strict {
		mode = tree.Lenient
	}

	var muts []Mutation

	if s.Size != nil {
		m, err := Size(s.Size.Min, s.Size.Max)
		if err != nil {
			return err
		}

		muts = append(muts, m)
	}

	if s.Set.Kind != 0 {
		set := s.Set
		muts = append(muts, FixYAML(&set))
	}

	switch s.Null {
	case "":
	case "always":
		muts = append(muts, NullAlways())
	case "never":
		muts = append(muts, NullNever())
	default:
		return fmt.Errorf("null must be always or never, got %q", s.Null)
	}

	if len(muts) == 0 {
		return errors.New("step has no set, size or null")
	}

	for _, m := range muts {
		if err := l.Append(expr, m, mode); err != nil {
			return err
		}
	}

	return nil
}
