/*
 * graph.go, part of gopsfgen
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

	"github.com/rmera/gopsfgen/diag"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
)

// bondGraph is the molecule seen as an undirected graph where atoms are nodes
// and bonds are edges. Node IDs are the positions of the atoms in output order.
type bondGraph struct {
	g     *simple.UndirectedGraph
	atoms []*Atom
	pos   map[*Atom]int64
}

func (M *Molecule) bondGraph() *bondGraph {
	B := &bondGraph{g: simple.NewUndirectedGraph(), atoms: M.Atoms()}
	B.pos = make(map[*Atom]int64, len(B.atoms))
	for i, a := range B.atoms {
		B.pos[a] = int64(i)
		B.g.AddNode(simple.Node(i))
	}
	for _, t := range M.terms[BondTerm] {
		i, ok1 := B.pos[t.Atoms[0]]
		j, ok2 := B.pos[t.Atoms[1]]
		if !ok1 || !ok2 || i == j {
			continue
		}
		B.g.SetEdge(B.g.NewEdge(simple.Node(i), simple.Node(j)))
	}
	return B
}

// neighbors returns the atoms bonded to a, in output order.
func (B *bondGraph) neighbors(a *Atom) []*Atom {
	nodes := graph.NodesOf(B.g.From(B.pos[a]))
	ids := make([]int64, 0, len(nodes))
	for _, n := range nodes {
		ids = append(ids, n.ID())
	}
	slices.Sort(ids)
	ret := make([]*Atom, len(ids))
	for i, id := range ids {
		ret[i] = B.atoms[id]
	}
	return ret
}

func noAngles(a *Atom) bool {
	return a.res != nil && a.res.Template != nil && a.res.Template.NoAngles
}

func noDihedrals(a *Atom) bool {
	return a.res != nil && a.res.Template != nil && a.res.Template.NoDihedrals
}

// generateAngles adds an angle a-b-c for every pair of bonds sharing the atom b,
// where any of the three atoms is selected by in. Angles already present or
// removed by a patch are left alone.
func (M *Molecule) generateAngles(in func(*Atom) bool) {
	B := M.bondGraph()
	for _, b := range B.atoms {
		if noAngles(b) {
			continue
		}
		nb := B.neighbors(b)
		for i := 0; i < len(nb); i++ {
			for j := i + 1; j < len(nb); j++ {
				if !in(b) && !in(nb[i]) && !in(nb[j]) {
					continue
				}
				if M.removed[keyOf(AngleTerm, []*Atom{nb[i], b, nb[j]})] {
					continue
				}
				M.addTerm(AngleTerm, true, nb[i], b, nb[j])
			}
		}
	}
}

// generateDihedrals adds a dihedral a-b-c-d for every bond b-c, where b comes before c
// in output order, and a, d are bonded to b and c respectively. At least one of the
// four atoms must be selected by in. Three-membered rings give no dihedrals.
func (M *Molecule) generateDihedrals(in func(*Atom) bool) {
	B := M.bondGraph()
	for _, b := range B.atoms {
		nb := B.neighbors(b)
		for _, c := range nb {
			if B.pos[c] < B.pos[b] || noDihedrals(b) || noDihedrals(c) {
				continue
			}
			nc := B.neighbors(c)
			for _, a := range nb {
				if a == c {
					continue
				}
				for _, d := range nc {
					if d == b || d == a {
						continue
					}
					if !in(a) && !in(b) && !in(c) && !in(d) {
						continue
					}
					if M.removed[keyOf(DihedralTerm, []*Atom{a, b, c, d})] {
						continue
					}
					M.addTerm(DihedralTerm, true, a, b, c, d)
				}
			}
		}
	}
}

// RegenKind selects what Regenerate rebuilds.
type RegenKind int

const (
	RegenAngles RegenKind = 1 << iota
	RegenDihedrals
	RegenResids
)

// Regenerate discards the generated angles and/or dihedrals and builds them again for
// the whole molecule, regardless of the settings of each segment. With RegenResids
// the residues of every segment are renumbered from 1.
func (M *Molecule) Regenerate(what RegenKind) error {
	if M.open != nil {
		return diag.New(diag.SegmentOpen, "segment %s is still being built", M.open.ID)
	}
	all := func(a *Atom) bool { return true }
	if what&RegenAngles != 0 {
		M.removeTerms(AngleTerm, func(t *Term) bool { return t.Auto })
		M.generateAngles(all)
	}
	if what&RegenDihedrals != 0 {
		M.removeTerms(DihedralTerm, func(t *Term) bool { return t.Auto })
		M.generateDihedrals(all)
	}
	if what&RegenResids != 0 {
		for _, s := range M.segments.Values() {
			res := s.residues.Values()
			s.residues = NewOrderedMap[string, *Residue]()
			for i, r := range res {
				r.ID = fmt.Sprint(i + 1)
				s.residues.Set(key(r.ID), r)
			}
		}
	}
	return nil
}
