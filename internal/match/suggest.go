package match

import (
	"sort"
)

// Defaults for Suggest.
const (
	DefaultMinScore       = 0.5
	DefaultMaxSuggestions = 3
)

// Suggestion is a known name together with its similarity to a requested one.
type Suggestion struct {
	Name  string
	Score float64 // IdentSimilarity of Name and the requested name
}

// SuggestionList is a list of suggestions ordered by descending score.
type SuggestionList []Suggestion

// Rank scores every name against target. Ties are broken by name so the
// order is deterministic.
func Rank(target string, names []string) SuggestionList {
	list := make(SuggestionList, 0, len(names))

	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if _, dup := seen[name]; dup {
			continue
		}

		seen[name] = struct{}{}
		list = append(list, Suggestion{Name: name, Score: IdentSimilarity(target, name)})
	}

	sort.Sort(list)

	return list
}

// Suggest returns up to limit names resembling target closely enough to be
// offered as a correction.
func Suggest(target string, names []string, limit int) []string {
	return Rank(target, names).AboveThreshold(DefaultMinScore).Top(limit).Names()
}

// Len implements sort.Interface.
func (l SuggestionList) Len() int { return len(l) }

// Swap implements sort.Interface.
func (l SuggestionList) Swap(i, j int) { l[i], l[j] = l[j], l[i] }

// Less implements sort.Interface (higher score first).
func (l SuggestionList) Less(i, j int) bool {
	if l[i].Score != l[j].Score {
		return l[i].Score > l[j].Score
	}

	return l[i].Name < l[j].Name
}

// Top returns at most n suggestions.
func (l SuggestionList) Top(n int) SuggestionList {
	if n < 0 || len(l) <= n {
		return l
	}

	return l[:n]
}

// AboveThreshold keeps suggestions scoring at least threshold.
func (l SuggestionList) AboveThreshold(threshold float64) SuggestionList {
	var out SuggestionList

	for _, s := range l {
		if s.Score >= threshold {
			out = append(out, s)
		}
	}

	return out
}

// Names returns the suggested names in order.
func (l SuggestionList) Names() []string {
	if len(l) == 0 {
		return nil
	}

	names := make([]string, len(l))
	for i, s := range l {
		names[i] = s.Name
	}

	return names
}
