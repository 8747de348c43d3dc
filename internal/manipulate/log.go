package manipulate

import (
	"errors"
	"fmt"

	"shape-synth/internal/diagnostic"
	"shape-synth/internal/logging"
	"shape-synth/internal/path"
	"shape-synth/internal/tree"
)

// Entry is one manipulator: a path expression and the mutation applied to
// every node it matches.
type Entry struct {
	Path     path.Expression
	Mutation Mutation
	Mode     tree.Mode
}

func (e Entry) String() string {
	return fmt.Sprintf("%s %s (%s)", e.Path, e.Mutation, e.Mode)
}

// Log is the ordered list of manipulators of one request.
type Log struct {
	entries []Entry
	logger  logging.Logger
}

// NewLog creates an empty Log.
func NewLog(logger logging.Logger) *Log {
	return &Log{logger: logging.OrNop(logger)}
}

// Append adds a manipulator. Invalid mutations, such as bounds with
// min > max, are rejected here rather than at sample time.
func (l *Log) Append(expr path.Expression, m Mutation, mode tree.Mode) error {
	if err := m.validate(); err != nil {
		var cErr *diagnostic.ConstraintError
		if errors.As(err, &cErr) {
			cErr.Path = expr.String()
		}

		return err
	}

	l.entries = append(l.entries, Entry{Path: expr, Mutation: m, Mode: mode})

	return nil
}

// Entries returns the manipulators in order.
func (l *Log) Entries() []Entry {
	return l.entries
}

// Len returns the number of manipulators.
func (l *Log) Len() int {
	return len(l.entries)
}

// Apply resolves every manipulator against t in order and mutates the
// matched nodes. Lenient manipulators matching nothing are reported as
// warnings.
func (l *Log) Apply(t *tree.Tree) (diagnostic.Diagnostics, error) {
	var diags diagnostic.Diagnostics

	for _, e := range l.entries {
		ids, err := t.Resolve(t.Root(), e.Path, e.Mode)
		if err != nil {
			return diags, fmt.Errorf("manipulator %s: %w", e, err)
		}

		if len(ids) == 0 {
			l.noMatch(t, e, &diags)
			continue
		}

		for _, id := range ids {
			if err := e.Mutation.apply(t, id); err != nil {
				return diags, fmt.Errorf("manipulator %s: %w", e, err)
			}
		}

		l.logger.Debug("manipulator applied", "path", e.Path.String(), "mutation", e.Mutation.String(), "nodes", len(ids))
	}

	return diags, nil
}

func (l *Log) noMatch(t *tree.Tree, e Entry, diags *diagnostic.Diagnostics) {
	msg := fmt.Sprintf("%s matched no node and was skipped", e.Mutation.Kind)

	// a strict resolution explains where matching stopped
	_, err := t.Resolve(t.Root(), e.Path, tree.Strict)

	var resErr *diagnostic.ResolutionError
	if errors.As(err, &resErr) {
		diags.AddSuggested("no-match", msg, "", e.Path.String(), resErr.Suggestions)
	} else {
		diags.AddWarning("no-match", msg, "", e.Path.String())
	}

	l.logger.Warn("manipulator matched no node", "path", e.Path.String(), "mutation", e.Mutation.String())
}
