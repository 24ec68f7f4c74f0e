/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package requirementlogic

// StringSet is a set of strings.
type StringSet map[string]struct{}

// InitFromSlice returns a StringSet holding the elements of data.
func InitFromSlice(data []string) StringSet {
	s := make(StringSet, len(data))

	for _, d := range data {
		s.Add(d)
	}

	return s
}

// Add adds elem to s.
func (s StringSet) Add(elem string) {
	s[elem] = struct{}{}
}

// Has returns true iff s contains elem.
func (s StringSet) Has(elem string) bool {
	_, ok := s[elem]

	return ok
}

// Len returns the number of elements in s.
func (s StringSet) Len() int {
	return len(s)
}

// MergeAll returns the union of sets.
func MergeAll(sets ...StringSet) StringSet {
	out := StringSet{}

	for _, set := range sets {
		for elem := range set {
			out.Add(elem)
		}
	}

	return out
}
