package common

// IsEmpty reports whether s has no elements.
func IsEmpty[S ~[]E, E any](s S) bool { return len(s) == 0 }

// IsSingle reports whether s has exactly one element.
func IsSingle[S ~[]E, E any](s S) bool { return len(s) == 1 }

// IsMultiple reports whether s offers a choice between elements.
func IsMultiple[S ~[]E, E any](s S) bool { return len(s) > 1 }

// First returns s[0], or false for an empty s.
func First[S ~[]E, E any](s S) (first E, ok bool) {
	if IsEmpty(s) {
		return first, false
	}

	return s[0], true
}
