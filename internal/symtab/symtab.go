/*
Copyright © 2024 casm contributors

This program is free software: you can redistribute it and/or modify it
under the terms of the GNU Affero General Public License as published
by the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful, but
WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
Affero General Public License for more details.

You should have received a copy of the GNU Affero General Public
License along with this program. If not, see
<http://www.gnu.org/licenses/>.
*/
// Package symtab implements the assembler's symbol table (spec.md §3):
// an ordered mapping from symbol name to (value, kind), supporting
// typed lookup, bulk offset addition across a kind, and filtering by
// kind.
//
// The source this was distilled from (original_source/table.c) keeps
// a singly linked list sorted by value via insert-in-place; this repo
// keeps the same sorted-by-value invariant but as a slice, per
// spec.md §9's explicit steer away from the source's own structure.
package symtab

import "sort"

// Kind is the closed set of symbol kinds (spec.md §3).
type Kind int

const (
	Code Kind = iota
	Data
	External
	ExternalReference
	EntryKind
)

// Entry is one (name, value, kind) triple.
type Entry struct {
	Name  string
	Value int
	Kind  Kind
}

// Table is the ordered symbol table. The zero value is ready to use.
type Table struct {
	entries []Entry
}

// New returns an empty table.
func New() *Table {
	return &Table{}
}

// Define inserts a new entry of the given kind for name, maintaining
// ascending order by value. It does not check for
// duplicates — callers must consult Lookup first, since the duplicate
// rules (spec.md §3) depend on what else exists under the same name.
func (t *Table) Define(name string, value int, kind Kind) {
	t.insertSorted(Entry{Name: name, Value: value, Kind: kind})
}

func (t *Table) insertSorted(e Entry) {
	i := sort.Search(len(t.entries), func(i int) bool { return t.entries[i].Value >= e.Value })
	t.entries = append(t.entries, Entry{})
	copy(t.entries[i+1:], t.entries[i:])
	t.entries[i] = e
}

// Lookup returns the primary (CODE, DATA, or EXTERNAL) entry for name,
// if any. EXTERNAL_REFERENCE and ENTRY entries are never returned by
// Lookup — use FindByKinds for those.
func (t *Table) Lookup(name string) (Entry, bool) {
	for _, e := range t.entries {
		if e.Name == name && (e.Kind == Code || e.Kind == Data || e.Kind == External) {
			return e, true
		}
	}
	return Entry{}, false
}

// FindByKinds returns the first entry named name whose kind is one of
// kinds, mirroring original_source/table.c's find_by_types.
func (t *Table) FindByKinds(name string, kinds ...Kind) (Entry, bool) {
	for _, e := range t.entries {
		if e.Name != name {
			continue
		}
		for _, k := range kinds {
			if e.Kind == k {
				return e, true
			}
		}
	}
	return Entry{}, false
}

// AddValueToKind adds delta to the value of every entry of the given
// kind, then re-sorts to preserve the ascending-by-value invariant.
// Used once, at the end of the first pass, to rebase DATA symbols above
// the code segment (spec.md §4.2).
func (t *Table) AddValueToKind(kind Kind, delta int) {
	for i := range t.entries {
		if t.entries[i].Kind == kind {
			t.entries[i].Value += delta
		}
	}
	sort.SliceStable(t.entries, func(i, j int) bool { return t.entries[i].Value < t.entries[j].Value })
}

// FilterByKind returns every entry of the given kind, in ascending
// value order.
func (t *Table) FilterByKind(kind Kind) []Entry {
	var out []Entry
	for _, e := range t.entries {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// All returns every entry in ascending value order.
func (t *Table) All() []Entry {
	return append([]Entry(nil), t.entries...)
}
