/*
 * store.go, part of gopsfgen
 *
 * Copyright 2025 Raul Mera A. (rmeraaatacademicosdotutadotcl)
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package topo

import (
	"fmt"
	"strings"

	"github.com/rmera/gopsfgen/diag"
)

// Offset tells which residue, relative to the one a template is applied to,
// an atom reference points to.
type Offset int

const (
	Self Offset = iota
	Previous
	Next
)

// AtomRef is a reference to an atom in a template.
type AtomRef struct {
	Target int    //0-based index of the patch target. Always 0 in residue templates.
	Offset Offset //the target residue itself, or the one before/after it in its segment
	Name   string
}

func (A AtomRef) String() string {
	var pre string
	if A.Target > 0 {
		pre = fmt.Sprint(A.Target + 1)
	}
	switch A.Offset {
	case Previous:
		pre += "-"
	case Next:
		pre += "+"
	}
	return pre + A.Name
}

// AtomSpec is an atom declared in a template.
type AtomSpec struct {
	Ref    AtomRef
	Type   string
	Charge float64
}

// IC is an internal coordinate record. For a normal record the geometry is
// I-J-K-L with R12=|IJ|, T123=angle IJK, Phi=dihedral IJKL, T234=angle JKL
// and R34=|KL|. For an improper record (K starred in the file) R12=|IK| and
// T123=angle IKJ. Angles are in degrees.
type IC struct {
	Atoms    [4]AtomRef
	Improper bool
	R12      float64
	T123     float64
	Phi      float64
	T234     float64
	R34      float64
}

// Residue is a residue or patch template.
type Residue struct {
	Name   string
	Patch  bool
	Charge float64
	Atoms  []AtomSpec

	Bonds     [][2]AtomRef
	Angles    [][3]AtomRef
	Dihedrals [][4]AtomRef
	Impropers [][4]AtomRef
	CMaps     [][8]AtomRef
	ICs       []IC

	DeleteAtoms     []AtomRef
	DeleteBonds     [][2]AtomRef
	DeleteAngles    [][3]AtomRef
	DeleteDihedrals [][4]AtomRef
	DeleteImpropers [][4]AtomRef

	First, Last string //default terminal patches
	NoAngles    bool   //no angles are generated around atoms of this residue
	NoDihedrals bool
	Source      string //file the template was read from
}

// Atom returns the atom spec with the given name, if any.
func (R *Residue) Atom(name string) (AtomSpec, bool) {
	for _, v := range R.Atoms {
		if strings.EqualFold(v.Ref.Name, name) {
			return v, true
		}
	}
	return AtomSpec{}, false
}

// Targets returns how many residues a patch must be applied to.
// It is 1 for everything that doesn't use numbered references.
func (R *Residue) Targets() int {
	n := 0
	see := func(refs ...AtomRef) {
		for _, r := range refs {
			if r.Target > n {
				n = r.Target
			}
		}
	}
	for _, a := range R.Atoms {
		see(a.Ref)
	}
	see(R.DeleteAtoms...)
	for _, b := range R.Bonds {
		see(b[:]...)
	}
	for _, a := range R.Angles {
		see(a[:]...)
	}
	for _, d := range R.Dihedrals {
		see(d[:]...)
	}
	for _, d := range R.Impropers {
		see(d[:]...)
	}
	for _, c := range R.CMaps {
		see(c[:]...)
	}
	for _, ic := range R.ICs {
		see(ic.Atoms[:]...)
	}
	return n + 1
}

// MassType is an atom type declared with a MASS record.
type MassType struct {
	Index   int
	Name    string
	Mass    float64
	Element string
}

// Store keeps the residue and patch templates, atom types and defaults read
// from topology files. It is not safe for concurrent writers.
type Store struct {
	AllCaps bool //names are uppercased when read

	residues map[string]*Residue
	order    []string
	types    map[string]*MassType
	byIndex  map[int]*MassType
	maxIndex int

	First, Last   string //default first/last patches (DEFA)
	AutoAngles    bool
	AutoDihedrals bool

	files []string
	sink  diag.Sink
}

// NewStore returns an empty store that reports to sink. A nil sink means diag.Discard.
func NewStore(sink diag.Sink) *Store {
	if sink == nil {
		sink = diag.Discard
	}
	return &Store{
		AllCaps:       true,
		residues:      make(map[string]*Residue),
		types:         make(map[string]*MassType),
		byIndex:       make(map[int]*MassType),
		First:         "none",
		Last:          "none",
		AutoAngles:    true,
		AutoDihedrals: true,
		sink:          sink,
	}
}

// SetSink changes the message sink of the store.
func (S *Store) SetSink(sink diag.Sink) {
	if sink == nil {
		sink = diag.Discard
	}
	S.sink = sink
}

func key(name string) string { return strings.ToUpper(name) }

// Add puts r in the store. A previous template with the same name is replaced,
// but keeps its place in the definition order.
func (S *Store) Add(r *Residue) {
	k := key(r.Name)
	if _, ok := S.residues[k]; ok {
		diag.Warnf(S.sink, "duplicate residue key %s will be replaced by new definition", r.Name)
	} else {
		S.order = append(S.order, k)
	}
	S.residues[k] = r
}

// Residue returns the template with the given name, patch or not. The lookup is case-insensitive.
func (S *Store) Residue(name string) (*Residue, bool) {
	r, ok := S.residues[key(name)]
	return r, ok
}

func (S *Store) names(patch bool) []string {
	ret := make([]string, 0, len(S.order))
	for _, k := range S.order {
		r := S.residues[k]
		if r.Patch == patch {
			ret = append(ret, r.Name)
		}
	}
	return ret
}

// Residues returns the names of the residue (non-patch) templates in definition order.
func (S *Store) Residues() []string { return S.names(false) }

// Patches returns the names of the patch templates in definition order.
func (S *Store) Patches() []string { return S.names(true) }

// AddType declares an atom type. An Index below 1 means "the next free index".
func (S *Store) AddType(m MassType) {
	if m.Index < 1 {
		m.Index = S.maxIndex + 1
	}
	if m.Index > S.maxIndex {
		S.maxIndex = m.Index
	}
	t := &m
	S.types[key(m.Name)] = t
	S.byIndex[m.Index] = t
}

// Type returns the atom type with the given name.
func (S *Store) Type(name string) (*MassType, bool) {
	t, ok := S.types[key(name)]
	return t, ok
}

// TypeByIndex returns the atom type with the given MASS index.
func (S *Store) TypeByIndex(i int) (*MassType, bool) {
	t, ok := S.byIndex[i]
	return t, ok
}

// Mass returns the mass of an atom type, or 0 and false if the type is unknown.
func (S *Store) Mass(typ string) (float64, bool) {
	t, ok := S.Type(typ)
	if !ok {
		return 0, false
	}
	return t.Mass, true
}

// AddFile records name in the list of topology files read.
func (S *Store) AddFile(name string) { S.files = append(S.files, name) }

// Files returns the topology files read, in order.
func (S *Store) Files() []string {
	return append([]string(nil), S.files...)
}
