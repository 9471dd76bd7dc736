/*
 * terms.go, part of gopsfgen
 *
 * Copyright 2025 Raul Mera Adasme <rmera_changeforat_chem-dot-helsinki-dot-fi>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License  as published by
 * the Free Software Foundation; either version 2.1 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General Public License
 * along with this program; if not, write to the Free Software
 * Foundation, Inc., 51 Franklin Street, Fifth Floor, Boston,
 * MA 02110-1301, USA.
 */

package mol

import (
	"fmt"
	"slices"
)

// TermKind is the kind of a bonded term.
type TermKind int

const (
	BondTerm TermKind = iota
	AngleTerm
	DihedralTerm
	ImproperTerm
	CMapTerm
	nTermKinds
)

// Size returns the number of atoms in a term of kind k.
func (k TermKind) Size() int {
	return [...]int{2, 3, 4, 4, 8}[k]
}

func (k TermKind) String() string {
	return [...]string{"bond", "angle", "dihedral", "improper", "cross-term"}[k]
}

// Term is a bond, angle, dihedral, improper or cross-term. Atoms are referenced
// by identity. Auto is true for angles and dihedrals derived from the bond graph.
type Term struct {
	Kind  TermKind
	Atoms []*Atom
	Auto  bool
}

func (T *Term) String() string {
	s := T.Kind.String()
	for _, a := range T.Atoms {
		if a.res != nil && a.res.seg != nil {
			s += fmt.Sprintf(" %s:%s:%s", a.res.seg.ID, a.res.ID, a.Name)
		} else {
			s += " (deleted) " + a.Name
		}
	}
	return s
}

type termKey struct {
	kind TermKind
	ids  [8]int64
}

// keyOf returns the identity of a term. Bonds and angles don't depend on the order
// of their ends, and dihedrals are the same read in both directions.
func keyOf(kind TermKind, atoms []*Atom) termKey {
	k := termKey{kind: kind}
	for i, a := range atoms {
		k.ids[i] = a.serial
	}
	n := kind.Size()
	switch kind {
	case BondTerm, AngleTerm, DihedralTerm:
		rev := k
		for i := 0; i < n; i++ {
			rev.ids[i] = k.ids[n-1-i]
		}
		if slices.Compare(rev.ids[:n], k.ids[:n]) < 0 {
			return rev
		}
	}
	return k
}

// addTerm adds a term unless an equal one exists. An explicit term replaces the
// auto flag of an equal generated one. It returns the term in the molecule.
func (M *Molecule) addTerm(kind TermKind, auto bool, atoms ...*Atom) *Term {
	k := keyOf(kind, atoms)
	if t, ok := M.seen[k]; ok {
		if !auto {
			t.Auto = false
		}
		return t
	}
	t := &Term{Kind: kind, Atoms: slices.Clone(atoms), Auto: auto}
	M.terms[kind] = append(M.terms[kind], t)
	M.seen[k] = t
	return t
}

// AddTerm adds an explicit term of the given kind. It returns false if the term
// was already there. It panics if the number of atoms is wrong for the kind.
func (M *Molecule) AddTerm(kind TermKind, atoms ...*Atom) bool {
	if len(atoms) != kind.Size() {
		panic(fmt.Sprintf("AddTerm: %s needs %d atoms, got %d", kind, kind.Size(), len(atoms)))
	}
	_, had := M.seen[keyOf(kind, atoms)]
	M.addTerm(kind, false, atoms...)
	return !had
}

// removeTerms drops the terms for which drop returns true.
func (M *Molecule) removeTerms(kind TermKind, drop func(*Term) bool) {
	M.terms[kind] = slices.DeleteFunc(M.terms[kind], func(t *Term) bool {
		if drop(t) {
			delete(M.seen, keyOf(t.Kind, t.Atoms))
			return true
		}
		return false
	})
}

// purge removes every term that references a deleted atom.
func (M *Molecule) purge() {
	for k := TermKind(0); k < nTermKinds; k++ {
		M.removeTerms(k, func(t *Term) bool {
			for _, a := range t.Atoms {
				if a.res == nil || a.res.seg == nil {
					return true
				}
			}
			return false
		})
	}
}

// Terms returns the terms of a kind, in the order they were created.
func (M *Molecule) Terms(kind TermKind) []*Term {
	return slices.Clone(M.terms[kind])
}

func (M *Molecule) Bonds() []*Term     { return M.Terms(BondTerm) }
func (M *Molecule) Angles() []*Term    { return M.Terms(AngleTerm) }
func (M *Molecule) Dihedrals() []*Term { return M.Terms(DihedralTerm) }
func (M *Molecule) Impropers() []*Term { return M.Terms(ImproperTerm) }
func (M *Molecule) CMaps() []*Term     { return M.Terms(CMapTerm) }
