/*
 * patch.go, part of gopsfgen
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
	"maps"
	"slices"
	"strings"

	"github.com/rmera/gopsfgen/diag"
	"github.com/rmera/gopsfgen/topo"
)

// PatchRecord remembers one application of a patch.
type PatchRecord struct {
	Name     string
	Residues []*Residue //the targets, in order
	Default  bool       //applied as a terminal patch when a segment was ended
}

// PatchUse is one (patch, target residue) pair.
type PatchUse struct {
	Patch string
	Segid string
	Resid string
}

func (M *Molecule) patchTemplate(name string) (*topo.Residue, error) {
	if M.Store == nil {
		return nil, diag.New(diag.UnknownPatch, "no topology loaded, can't find patch %s", name)
	}
	t, ok := M.Store.Residue(name)
	if !ok || !t.Patch {
		return nil, diag.New(diag.UnknownPatch, "unknown patch %s", name)
	}
	return t, nil
}

// ApplyPatch applies the patch name to the target residues, in order. Either the whole
// patch is applied or, if any reference can't be resolved, nothing is changed.
// Angles and dihedrals are not regenerated.
func (M *Molecule) ApplyPatch(name string, targets []Ident) error {
	if err := M.applyPatch(M.caps(name), targets, false); err != nil {
		return diag.Decorate(err, "ApplyPatch")
	}
	return nil
}

type atomChange struct {
	r      *Residue
	a      *Atom
	isNew  bool
	after  *Atom //for new atoms, the atom they go after
	typ    string
	charge float64
}

type termChange struct {
	kind  TermKind
	atoms []*Atom
}

// patchPlan collects everything a patch application will do, so it
// can be checked completely before the molecule is touched.
type patchPlan struct {
	M       *Molecule
	name    string
	targets []*Residue
	deleted map[*Atom]bool
	added   map[*Residue]map[string]*Atom
	atoms   []atomChange
	terms   []termChange
	drop    []termKey
	ics     []patchIC
}

func (p *patchPlan) target(ref topo.AtomRef) (*Residue, error) {
	if ref.Target >= len(p.targets) {
		return nil, diag.New(diag.PatchTargetOutOfRange, "patch %s needs at least %d targets", p.name, ref.Target+1)
	}
	r := p.targets[ref.Target]
	switch ref.Offset {
	case topo.Previous:
		r = r.seg.neighbor(r, -1)
	case topo.Next:
		r = r.seg.neighbor(r, 1)
	}
	if r == nil {
		t := p.targets[ref.Target]
		return nil, diag.New(diag.PatchTargetOutOfRange, "patch %s refers to %s, but %s:%s has no such neighbor", p.name, ref, t.seg.ID, t.ID)
	}
	return r, nil
}

// lookup finds an atom as it will be after the deletions and additions planned so far.
func (p *patchPlan) lookup(r *Residue, name string) *Atom {
	if a, ok := p.added[r][strings.ToUpper(name)]; ok {
		return a
	}
	a := r.Atom(name)
	if a == nil || p.deleted[a] {
		return nil
	}
	return a
}

func (p *patchPlan) refAtoms(refs []topo.AtomRef, must bool) ([]*Atom, error) {
	ret := make([]*Atom, len(refs))
	for i, ref := range refs {
		r, err := p.target(ref)
		if err != nil {
			if must {
				return nil, err
			}
			return nil, nil
		}
		a := p.lookup(r, ref.Name)
		if a == nil {
			if must {
				return nil, diag.New(diag.InsufficientTarget, "patch %s: no atom %s in residue %s:%s", p.name, ref.Name, r.seg.ID, r.ID)
			}
			return nil, nil
		}
		ret[i] = a
	}
	return ret, nil
}

func (p *patchPlan) plan(t *topo.Residue) error {
	for _, ref := range t.DeleteAtoms {
		r, err := p.target(ref)
		if err != nil {
			return err
		}
		a := r.Atom(ref.Name)
		if a == nil {
			diag.Warnf(p.M.sink, "patch %s: atom %s to delete not found in residue %s:%s", p.name, ref.Name, r.seg.ID, r.ID)
			continue
		}
		p.deleted[a] = true
	}
	last := make(map[*Residue]*Atom)
	for _, spec := range t.Atoms {
		r, err := p.target(spec.Ref)
		if err != nil {
			return err
		}
		c := atomChange{r: r, typ: spec.Type, charge: spec.Charge}
		if c.a = p.lookup(r, spec.Ref.Name); c.a == nil {
			c.isNew = true
			c.after = last[r]
			c.a = &Atom{Name: spec.Ref.Name, Pos: VoidPosition, serial: p.M.nextSerial()}
			if p.added[r] == nil {
				p.added[r] = make(map[string]*Atom)
			}
			p.added[r][strings.ToUpper(spec.Ref.Name)] = c.a
		}
		last[r] = c.a
		p.atoms = append(p.atoms, c)
	}
	lists := []struct {
		kind TermKind
		refs [][]topo.AtomRef
		drop bool
	}{
		{BondTerm, flat(t.Bonds), false},
		{AngleTerm, flat(t.Angles), false},
		{DihedralTerm, flat(t.Dihedrals), false},
		{ImproperTerm, flat(t.Impropers), false},
		{CMapTerm, flat(t.CMaps), false},
		{BondTerm, flat(t.DeleteBonds), true},
		{AngleTerm, flat(t.DeleteAngles), true},
		{DihedralTerm, flat(t.DeleteDihedrals), true},
		{ImproperTerm, flat(t.DeleteImpropers), true},
	}
	for _, l := range lists {
		for _, refs := range l.refs {
			atoms, err := p.refAtoms(refs, !l.drop)
			if err != nil {
				return err
			}
			if atoms == nil {
				continue
			}
			if l.drop {
				p.drop = append(p.drop, keyOf(l.kind, atoms))
			} else {
				p.terms = append(p.terms, termChange{l.kind, atoms})
			}
		}
	}
	for _, ic := range t.ICs {
		pic := patchIC{ic: ic}
		ok := true
		for i, ref := range ic.Atoms {
			r, err := p.target(ref)
			if err != nil {
				ok = false
				break
			}
			pic.res[i] = r
			pic.names[i] = ref.Name
		}
		if ok {
			p.ics = append(p.ics, pic)
		}
	}
	return nil
}

// flat turns a slice of fixed-size reference tuples into a slice of slices.
func flat[T ~[2]topo.AtomRef | ~[3]topo.AtomRef | ~[4]topo.AtomRef | ~[8]topo.AtomRef](tuples []T) [][]topo.AtomRef {
	ret := make([][]topo.AtomRef, 0, len(tuples))
	for i := range tuples {
		ret = append(ret, refsOf(tuples[i]))
	}
	return ret
}

func refsOf(t any) []topo.AtomRef {
	switch v := t.(type) {
	case [2]topo.AtomRef:
		return v[:]
	case [3]topo.AtomRef:
		return v[:]
	case [4]topo.AtomRef:
		return v[:]
	case [8]topo.AtomRef:
		return v[:]
	}
	return nil
}

// insertAfter puts a right after the atom after, or at the end if after is nil.
func (R *Residue) insertAfter(after, a *Atom) {
	a.res = R
	i := slices.Index(R.atoms, after)
	if after == nil || i < 0 {
		R.atoms = append(R.atoms, a)
		return
	}
	R.atoms = slices.Insert(R.atoms, i+1, a)
}

func (p *patchPlan) commit(t *topo.Residue, deflt bool) {
	M := p.M
	for a := range p.deleted {
		a.res.removeAtom(a)
	}
	for _, c := range p.atoms {
		if c.isNew {
			c.r.insertAfter(c.after, c.a)
		}
		c.a.Type = c.typ
		c.a.Charge = c.charge
		c.a.chargeSet = false
		if !c.a.massSet {
			c.a.Mass = M.mass(c.typ)
		}
	}
	M.purge()
	for _, tc := range p.terms {
		delete(M.removed, keyOf(tc.kind, tc.atoms))
		M.addTerm(tc.kind, false, tc.atoms...)
	}
	for _, k := range p.drop {
		M.removed[k] = true
		M.removeTerms(k.kind, func(t *Term) bool { return keyOf(t.Kind, t.Atoms) == k })
	}
	p.targets[0].ics = append(p.targets[0].ics, p.ics...)
	M.patches = append(M.patches, &PatchRecord{Name: t.Name, Residues: slices.Clone(p.targets), Default: deflt})
	for _, r := range p.targets {
		r.Patches = append(r.Patches, t.Name)
	}
}

func (M *Molecule) applyPatch(name string, targets []Ident, deflt bool) error {
	t, err := M.patchTemplate(name)
	if err != nil {
		return err
	}
	if len(targets) < t.Targets() {
		return diag.New(diag.PatchTargetOutOfRange, "patch %s needs %d targets, %d given", t.Name, t.Targets(), len(targets))
	}
	p := &patchPlan{
		M:       M,
		name:    t.Name,
		deleted: make(map[*Atom]bool),
		added:   make(map[*Residue]map[string]*Atom),
	}
	for _, id := range targets {
		seg := M.Segment(id.Segid)
		var r *Residue
		if seg != nil {
			r = seg.Residue(id.Resid)
		}
		if r == nil {
			return diag.New(diag.PatchTargetOutOfRange, "patch %s: no residue %s:%s", t.Name, id.Segid, id.Resid)
		}
		p.targets = append(p.targets, r)
	}
	if err := p.plan(t); err != nil {
		return err
	}
	p.commit(t, deflt)
	return nil
}

// snapshot keeps what committing patches to the residues of one segment can
// change, so a half-done sequence of patches can be taken back.
type snapshot struct {
	M        *Molecule
	residues []residueState
	atoms    map[*Atom]atomState
	terms    [nTermKinds][]*Term
	auto     map[*Term]bool
	seen     map[termKey]*Term
	removed  map[termKey]bool
	patches  []*PatchRecord
	serial   int64
}

type residueState struct {
	r       *Residue
	atoms   []*Atom
	patches []string
	ics     []patchIC
}

type atomState struct {
	res       *Residue
	typ       string
	charge    float64
	mass      float64
	chargeSet bool
}

func (M *Molecule) snapshot(seg *Segment) *snapshot {
	s := &snapshot{
		M:       M,
		atoms:   make(map[*Atom]atomState),
		auto:    make(map[*Term]bool),
		seen:    maps.Clone(M.seen),
		removed: maps.Clone(M.removed),
		patches: slices.Clone(M.patches),
		serial:  M.serial,
	}
	for _, r := range seg.Residues() {
		s.residues = append(s.residues, residueState{r, slices.Clone(r.atoms), slices.Clone(r.Patches), slices.Clone(r.ics)})
		for _, a := range r.atoms {
			s.atoms[a] = atomState{a.res, a.Type, a.Charge, a.Mass, a.chargeSet}
		}
	}
	for k := range M.terms {
		s.terms[k] = slices.Clone(M.terms[k])
		for _, t := range M.terms[k] {
			s.auto[t] = t.Auto
		}
	}
	return s
}

// restore puts the molecule back as it was when the snapshot was taken.
func (s *snapshot) restore() {
	M := s.M
	for _, rs := range s.residues {
		for _, a := range rs.r.atoms {
			if _, ok := s.atoms[a]; !ok {
				a.res = nil
			}
		}
		rs.r.atoms, rs.r.Patches, rs.r.ics = rs.atoms, rs.patches, rs.ics
	}
	for a, st := range s.atoms {
		a.res, a.Type, a.Charge, a.Mass, a.chargeSet = st.res, st.typ, st.charge, st.mass, st.chargeSet
	}
	M.terms = s.terms
	for t, auto := range s.auto {
		t.Auto = auto
	}
	M.seen, M.removed, M.patches, M.serial = s.seen, s.removed, s.patches, s.serial
}

// RecordPatch registers a patch as applied to targets without changing any atom,
// as when a structure that already carries the patch is read from a file.
// Targets that don't exist are an error.
func (M *Molecule) RecordPatch(name string, targets []Ident, deflt bool) error {
	rec := &PatchRecord{Name: M.caps(name), Default: deflt}
	for _, t := range targets {
		_, r, _, err := M.find(Ident{Segid: t.Segid, Resid: t.Resid})
		if err != nil {
			return diag.Decorate(err, "RecordPatch")
		}
		if r == nil {
			return diag.New(diag.InsufficientTarget, "patch %s: target %s needs a resid", name, t.Segid)
		}
		rec.Residues = append(rec.Residues, r)
	}
	M.patches = append(M.patches, rec)
	for _, r := range rec.Residues {
		r.Patches = append(r.Patches, rec.Name)
	}
	return nil
}

// PatchRecords returns every patch application, in order.
func (M *Molecule) PatchRecords() []*PatchRecord { return slices.Clone(M.patches) }

// Patches lists the (patch, segid, resid) triples of the patches applied to the molecule.
// Patches applied by default to segment ends are skipped unless listAll is true.
// The listing of a patch stops at the first of its targets that is no longer part of the
// molecule.
func (M *Molecule) Patches(listAll bool) []PatchUse {
	var ret []PatchUse
	for _, p := range M.patches {
		if p.Default && !listAll {
			continue
		}
		for _, r := range p.Residues {
			if r.seg == nil || M.Segment(r.seg.ID) != r.seg {
				break
			}
			ret = append(ret, PatchUse{Patch: p.Name, Segid: r.seg.ID, Resid: r.ID})
		}
	}
	return ret
}
