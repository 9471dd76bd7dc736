/*
 * molecule.go, part of gopsfgen
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
	"math"
	"strings"

	"github.com/rmera/gopsfgen/alias"
	"github.com/rmera/gopsfgen/diag"
	"github.com/rmera/gopsfgen/topo"
	"gonum.org/v1/gonum/spatial/r3"
)

// MaxSegidLen is the longest segment name the PSF format can hold.
const MaxSegidLen = 7

// XYZState tells where the position of an atom comes from.
type XYZState int

const (
	XYZVoid    XYZState = iota //no position
	XYZSet                     //read from a file or set by the user
	XYZGuessed                 //built from internal coordinates
)

// VoidPosition is the position of atoms whose coordinates are unknown.
var VoidPosition = r3.Vec{X: math.NaN(), Y: math.NaN(), Z: math.NaN()}

// Atom is an atom in a Molecule. Atoms are owned by exactly one Residue.
type Atom struct {
	Name   string
	Type   string
	Charge float64
	Mass   float64
	Pos    r3.Vec
	Vel    r3.Vec
	Beta   float64
	State  XYZState
	ID     int //1-based, assigned when a segment is ended or the molecule is written

	res       *Residue
	serial    int64
	massSet   bool
	chargeSet bool
}

// Residue returns the residue the atom belongs to, or nil if the atom was deleted.
func (A *Atom) Residue() *Residue { return A.res }

// HasPosition returns true if the position of the atom is known (set or guessed).
func (A *Atom) HasPosition() bool { return A.State != XYZVoid }

// SetPosition sets the position of the atom and marks it as known.
func (A *Atom) SetPosition(p r3.Vec) {
	A.Pos = p
	A.State = XYZSet
}

// patchIC is an internal coordinate contributed by a patch, with its
// references already pinned to concrete residues.
type patchIC struct {
	res   [4]*Residue
	names [4]string
	ic    topo.IC
}

// Residue is an instance of a residue template in a Segment.
type Residue struct {
	ID       string //resid
	Name     string
	Chain    string
	Template *topo.Residue //nil for residues read from a PSF file
	Patches  []string      //names of the patches applied, in order

	atoms []*Atom
	seg   *Segment
	ics   []patchIC
}

// Segment returns the segment that owns the residue, or nil if it was deleted.
func (R *Residue) Segment() *Segment { return R.seg }

// Atoms returns the atoms of the residue in order.
func (R *Residue) Atoms() []*Atom { return append([]*Atom(nil), R.atoms...) }

// Atom returns the atom called name (case-insensitive), or nil.
func (R *Residue) Atom(name string) *Atom {
	for _, a := range R.atoms {
		if strings.EqualFold(a.Name, name) {
			return a
		}
	}
	return nil
}

// AppendAtom adds a to the end of the residue. It fails with diag.DuplicateAtom
// if the residue already has an atom with that name.
func (R *Residue) AppendAtom(a *Atom) error {
	if R.Atom(a.Name) != nil {
		return diag.New(diag.DuplicateAtom, "atom %s already present in residue %s:%s", a.Name, R.Name, R.ID)
	}
	a.res = R
	if R.seg != nil && R.seg.mol != nil && a.serial == 0 {
		a.serial = R.seg.mol.nextSerial()
	}
	R.atoms = append(R.atoms, a)
	return nil
}

func (R *Residue) removeAtom(a *Atom) {
	for i, v := range R.atoms {
		if v == a {
			R.atoms = append(R.atoms[:i], R.atoms[i+1:]...)
			break
		}
	}
	a.res = nil
}

// Segment is a named, ordered set of residues.
type Segment struct {
	ID            string
	First, Last   string //terminal patches. "none" means no patch, "" the template default.
	AutoAngles    bool
	AutoDihedrals bool

	residues *OrderedMap[string, *Residue]
	closed   bool
	mol      *Molecule
}

func key(s string) string { return strings.ToUpper(strings.TrimSpace(s)) }

// Residues returns the residues of the segment in order.
func (S *Segment) Residues() []*Residue { return S.residues.Values() }

// Resids returns the resids of the segment in order.
func (S *Segment) Resids() []string {
	ret := make([]string, 0, S.residues.Len())
	for _, r := range S.residues.Values() {
		ret = append(ret, r.ID)
	}
	return ret
}

// Residue returns the residue with the given resid, or nil.
func (S *Segment) Residue(resid string) *Residue {
	r, _ := S.residues.Get(key(resid))
	return r
}

// Closed returns true once the segment has been ended.
func (S *Segment) Closed() bool { return S.closed }

// AppendResidue adds a residue without a template to the end of the segment.
// Used by readers that get the whole structure from a file.
func (S *Segment) AppendResidue(resid, resname, chain string) (*Residue, error) {
	if S.Residue(resid) != nil {
		return nil, diag.New(diag.DuplicateResidue, "residue %s already present in segment %s", resid, S.ID)
	}
	r := &Residue{ID: resid, Name: resname, Chain: chain, seg: S}
	S.residues.Set(key(resid), r)
	return r, nil
}

// neighbor returns the residue before (off<0) or after (off>0) r in its segment.
func (S *Segment) neighbor(r *Residue, off int) *Residue {
	i := S.residues.Index(key(r.ID))
	if i < 0 {
		return nil
	}
	i += off
	if i < 0 || i >= S.residues.Len() {
		return nil
	}
	return S.residues.At(i)
}

// Ident identifies a segment, a residue or an atom. Resid and Name can be empty
// to mean the whole segment or the whole residue.
type Ident struct {
	Segid string
	Resid string
	Name  string
}

// Molecule is the structure being built. It is not safe for concurrent use.
type Molecule struct {
	Store            *topo.Store
	Aliases          *alias.Table
	AllCaps          bool //segids, resids and names given to the builder are uppercased
	TerminalDefaults bool //new segments use the terminal patches of the templates instead of "none"

	sink     diag.Sink
	segments *OrderedMap[string, *Segment]
	open     *Segment
	terms    [nTermKinds][]*Term
	seen     map[termKey]*Term
	removed  map[termKey]bool
	patches  []*PatchRecord
	serial   int64
}

// New returns an empty molecule built from the templates in store.
// aliases and sink can be nil.
func New(store *topo.Store, aliases *alias.Table, sink diag.Sink) *Molecule {
	if sink == nil {
		sink = diag.Discard
	}
	if aliases == nil {
		aliases = alias.New()
	}
	return &Molecule{
		Store:    store,
		Aliases:  aliases,
		AllCaps:  true,
		sink:     sink,
		segments: NewOrderedMap[string, *Segment](),
		seen:     make(map[termKey]*Term),
		removed:  make(map[termKey]bool),
	}
}

// SetSink changes the destination of the informational messages.
func (M *Molecule) SetSink(s diag.Sink) {
	if s == nil {
		s = diag.Discard
	}
	M.sink = s
}

// Sink returns the destination of the informational messages.
func (M *Molecule) Sink() diag.Sink { return M.sink }

func (M *Molecule) nextSerial() int64 {
	M.serial++
	return M.serial
}

func (M *Molecule) caps(s string) string {
	if M.AllCaps {
		return strings.ToUpper(s)
	}
	return s
}

// Segids returns the segment names in order.
func (M *Molecule) Segids() []string {
	ret := make([]string, 0, M.segments.Len())
	for _, s := range M.segments.Values() {
		ret = append(ret, s.ID)
	}
	return ret
}

// Segments returns the segments in order.
func (M *Molecule) Segments() []*Segment { return M.segments.Values() }

// Segment returns the segment with the given name, or nil.
func (M *Molecule) Segment(segid string) *Segment {
	s, _ := M.segments.Get(key(segid))
	return s
}

// OpenSegment returns the segment being built, or nil.
func (M *Molecule) OpenSegment() *Segment { return M.open }

// CreateSegment adds an empty, already closed segment. It is meant for
// readers of complete structures. The name rules are those of BeginSegment.
func (M *Molecule) CreateSegment(segid string) (*Segment, error) {
	if len(segid) > MaxSegidLen {
		return nil, diag.New(diag.SegmentIdTooLong, "segment name %q has more than %d characters", segid, MaxSegidLen)
	}
	if segid == "" {
		return nil, diag.New(diag.UnknownTarget, "empty segment name")
	}
	if M.Segment(segid) != nil {
		return nil, diag.New(diag.DuplicateSegment, "segment %s already exists", segid)
	}
	s := &Segment{
		ID:            segid,
		First:         "none",
		Last:          "none",
		AutoAngles:    true,
		AutoDihedrals: true,
		residues:      NewOrderedMap[string, *Residue](),
		closed:        true,
		mol:           M,
	}
	if M.Store != nil {
		s.AutoAngles, s.AutoDihedrals = M.Store.AutoAngles, M.Store.AutoDihedrals
	}
	M.segments.Set(key(segid), s)
	return s, nil
}

// Atoms returns every atom of the molecule, in output order.
func (M *Molecule) Atoms() []*Atom {
	ret := make([]*Atom, 0, 64)
	for _, s := range M.segments.Values() {
		for _, r := range s.residues.Values() {
			ret = append(ret, r.atoms...)
		}
	}
	return ret
}

// NumAtoms returns the number of atoms in the molecule.
func (M *Molecule) NumAtoms() int {
	n := 0
	for _, s := range M.segments.Values() {
		for _, r := range s.residues.Values() {
			n += len(r.atoms)
		}
	}
	return n
}

// AssignIDs numbers all atoms from 1, in output order, and returns the count.
func (M *Molecule) AssignIDs() int {
	n := 0
	for _, a := range M.Atoms() {
		n++
		a.ID = n
	}
	return n
}

// find returns the residue and atom for t. Empty fields of t give nil results.
func (M *Molecule) find(t Ident) (*Segment, *Residue, *Atom, error) {
	seg := M.Segment(t.Segid)
	if seg == nil {
		return nil, nil, nil, diag.New(diag.UnknownTarget, "no segment %s", t.Segid)
	}
	if t.Resid == "" {
		if t.Name != "" {
			return nil, nil, nil, diag.New(diag.InsufficientTarget, "atom %s given without a resid", t.Name)
		}
		return seg, nil, nil, nil
	}
	res := seg.Residue(t.Resid)
	if res == nil {
		return nil, nil, nil, diag.New(diag.UnknownTarget, "no residue %s in segment %s", t.Resid, t.Segid)
	}
	if t.Name == "" {
		return seg, res, nil, nil
	}
	at := res.Atom(t.Name)
	if at == nil {
		return nil, nil, nil, diag.New(diag.UnknownTarget, "no atom %s in residue %s:%s", t.Name, t.Segid, t.Resid)
	}
	return seg, res, at, nil
}

// Find returns the atom identified by t. All fields of t are required.
func (M *Molecule) Find(t Ident) (*Atom, error) {
	if t.Resid == "" || t.Name == "" {
		return nil, diag.New(diag.InsufficientTarget, "need segid, resid and atom name")
	}
	_, _, a, err := M.find(t)
	return a, err
}
