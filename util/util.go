package util

import "cmp"

// Filter returns the elements of s for which keep reports true. The result is
// never nil.
func Filter[S ~[]E, E any](s S, keep func(E) bool) S {
	out := make(S, 0, len(s))
	for _, e := range s {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}

// Map applies f to every element of s.
func Map[E, R any](s []E, f func(E) R) []R {
	out := make([]R, len(s))
	for i, e := range s {
		out[i] = f(e)
	}
	return out
}

// Unique drops repeated elements, keeping the first occurrence of each.
func Unique[S ~[]E, E comparable](s S) S {
	seen := make(map[E]bool, len(s))
	return Filter(s, func(e E) bool {
		if seen[e] {
			return false
		}
		seen[e] = true
		return true
	})
}

// Coalesce returns the first non-zero value.
func Coalesce[T comparable](values ...T) T {
	return cmp.Or(values...)
}
