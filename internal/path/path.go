package path

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"shape-synth/internal/common"
)

// AllIndex is the reserved index matching every child.
const AllIndex = -1

var (
	ErrEmptyPath   = errors.New("empty path")
	ErrInvalidPath = errors.New("invalid path")
)

// SelectorKind tags a Selector.
type SelectorKind int

const (
	ByNameKind SelectorKind = iota
	ByIndexKind
	WildcardKind
	StartOfTreeKind
)

// Selector narrows a candidate set by one tree level.
type Selector struct {
	Kind  SelectorKind
	Name  string // ByNameKind
	Index int    // ByIndexKind; AllIndex matches every child
}

// ByName selects the child named n.
func ByName(n string) Selector { return Selector{Kind: ByNameKind, Name: n} }

// ByIndex selects the child at position i.
func ByIndex(i int) Selector { return Selector{Kind: ByIndexKind, Index: i} }

// Wildcard selects every child.
func Wildcard() Selector { return Selector{Kind: WildcardKind} }

// StartOfTree resets the candidate set to the root.
func StartOfTree() Selector { return Selector{Kind: StartOfTreeKind} }

// MatchesAll reports whether s selects every child.
func (s Selector) MatchesAll() bool {
	return s.Kind == WildcardKind || (s.Kind == ByIndexKind && s.Index == AllIndex)
}

// Matches reports whether a child with the given name and position is
// selected. StartOfTree matches no child.
func (s Selector) Matches(name string, position int) bool {
	switch s.Kind {
	case WildcardKind:
		return true
	case ByNameKind:
		return s.Name == name
	case ByIndexKind:
		return s.Index == AllIndex || s.Index == position
	default:
		return false
	}
}

func (s Selector) String() string {
	switch s.Kind {
	case ByNameKind:
		return "." + s.Name
	case ByIndexKind:
		if s.Index == AllIndex {
			return "[]"
		}

		return "[" + strconv.Itoa(s.Index) + "]"
	case WildcardKind:
		return "[*]"
	case StartOfTreeKind:
		return "$"
	default:
		return "?"
	}
}

// Expression is an ordered list of selectors.
type Expression []Selector

// Join returns a new expression running e, then each of others in order.
func (e Expression) Join(others ...Expression) Expression {
	n := len(e)
	for _, o := range others {
		n += len(o)
	}

	out := make(Expression, 0, n)
	out = append(out, e...)

	for _, o := range others {
		out = append(out, o...)
	}

	return out
}

// IsEmpty returns true if the expression has no selectors.
func (e Expression) IsEmpty() bool {
	return common.IsEmpty(e)
}

// String returns the expression in the syntax accepted by Parse.
func (e Expression) String() string {
	var sb strings.Builder

	for i, s := range e {
		str := s.String()
		if i == 0 && s.Kind == ByNameKind {
			str = s.Name
		}

		sb.WriteString(str)
	}

	return sb.String()
}

// MustParse is like Parse but panics on error.
func MustParse(expr string) Expression {
	e, err := Parse(expr)
	if err != nil {
		panic(err)
	}

	return e
}

// Parse parses a path expression.
func Parse(expr string) (Expression, error) {
	if strings.TrimSpace(expr) == "" {
		return nil, ErrEmptyPath
	}

	var (
		out Expression
		pos int
	)

	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w %q at offset %d: %s", ErrInvalidPath, expr, pos, fmt.Sprintf(format, args...))
	}

	for pos < len(expr) {
		switch c := expr[pos]; {
		case c == '$':
			out = append(out, StartOfTree())
			pos++

		case c == '[':
			end := strings.IndexByte(expr[pos:], ']')
			if end < 0 {
				return nil, invalid("unterminated index")
			}

			inner := strings.TrimSpace(expr[pos+1 : pos+end])

			switch inner {
			case "":
				out = append(out, ByIndex(AllIndex))
			case "*":
				out = append(out, Wildcard())
			default:
				idx, err := strconv.Atoi(inner)
				if err != nil || idx < 0 {
					return nil, invalid("index %q is not a non-negative integer", inner)
				}

				out = append(out, ByIndex(idx))
			}

			pos += end + 1

		case c == '.' || (pos == 0 && (isIdentStart(c) || c == '*')):
			if c == '.' {
				pos++
			}

			name := scanName(expr[pos:])
			if name == "" {
				return nil, invalid("expected a name")
			}

			if name == "*" {
				out = append(out, Wildcard())
			} else {
				out = append(out, ByName(name))
			}

			pos += len(name)

		default:
			return nil, invalid("unexpected %q", c)
		}
	}

	return out, nil
}

// scanName returns the leading identifier of s, or "*".
func scanName(s string) string {
	if strings.HasPrefix(s, "*") {
		return "*"
	}

	for i := 0; i < len(s); i++ {
		c := s[i]
		if isIdentStart(c) || (i > 0 && c >= '0' && c <= '9') {
			continue
		}

		return s[:i]
	}

	return s
}

func isIdentStart(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
}
