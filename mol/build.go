/*
 * build.go, part of gopsfgen
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
	"strings"

	"github.com/rmera/gopsfgen/diag"
	"github.com/rmera/gopsfgen/topo"
)

// Terminal selects the first or last residue of a segment.
type Terminal int

const (
	FirstResidue Terminal = iota
	LastResidue
)

// BeginSegment creates a new segment and leaves it open, so residues can be added to it.
func (M *Molecule) BeginSegment(segid string) (*Segment, error) {
	if M.open != nil {
		return nil, diag.New(diag.SegmentOpen, "segment %s is still being built", M.open.ID)
	}
	seg, err := M.CreateSegment(M.caps(segid))
	if err != nil {
		return nil, diag.Decorate(err, "BeginSegment")
	}
	seg.closed = false
	if M.TerminalDefaults {
		seg.First, seg.Last = "", ""
	}
	M.open = seg
	return seg, nil
}

func (M *Molecule) openSegment(caller string) (*Segment, error) {
	if M.open == nil {
		return nil, diag.New(diag.NoOpenSegment, "%s needs a segment being built", caller)
	}
	return M.open, nil
}

// SetTerminalPatch sets the patch applied to the first or last residue of the open
// segment when it is ended. "none" means no patch. The patch is looked up only then.
func (M *Molecule) SetTerminalPatch(which Terminal, patch string) error {
	seg, err := M.openSegment("SetTerminalPatch")
	if err != nil {
		return err
	}
	patch = M.caps(patch)
	if which == FirstResidue {
		seg.First = patch
	} else {
		seg.Last = patch
	}
	return nil
}

// SetAutoGeneration sets whether angles and dihedrals are generated for the open segment.
func (M *Molecule) SetAutoGeneration(angles, dihedrals bool) error {
	seg, err := M.openSegment("SetAutoGeneration")
	if err != nil {
		return err
	}
	seg.AutoAngles = angles
	seg.AutoDihedrals = dihedrals
	return nil
}

// template returns the residue (non-patch) template for name, after aliasing.
func (M *Molecule) template(name string) (*topo.Residue, error) {
	canon, aliased := M.Aliases.ResidueName(name)
	if aliased {
		diag.Infof(M.sink, "aliasing residue %s to %s", name, canon)
	}
	if M.Store == nil {
		return nil, diag.New(diag.UnknownResidueTemplate, "no topology loaded, can't find %s", canon)
	}
	t, ok := M.Store.Residue(canon)
	if !ok || t.Patch {
		return nil, diag.New(diag.UnknownResidueTemplate, "unknown residue type %s", canon)
	}
	return t, nil
}

// instantiate creates the atoms of r from its template.
func (M *Molecule) instantiate(r *Residue) {
	r.atoms = make([]*Atom, 0, len(r.Template.Atoms))
	for _, spec := range r.Template.Atoms {
		r.atoms = append(r.atoms, M.newAtom(r, spec))
	}
}

func (M *Molecule) newAtom(r *Residue, spec topo.AtomSpec) *Atom {
	a := &Atom{
		Name:   spec.Ref.Name,
		Type:   spec.Type,
		Charge: spec.Charge,
		Pos:    VoidPosition,
		res:    r,
		serial: M.nextSerial(),
	}
	a.Mass = M.mass(spec.Type)
	return a
}

func (M *Molecule) mass(typ string) float64 {
	if M.Store == nil {
		return 0
	}
	m, ok := M.Store.Mass(typ)
	if !ok {
		diag.Warnf(M.sink, "unknown atom type %s, mass set to 0", typ)
	}
	return m
}

// AddResidue instantiates the template resname (after aliasing) as a new residue
// at the end of the open segment. Bonds, explicit angles, dihedrals, impropers
// and cross-terms of the template are created as soon as all their atoms exist,
// including those that link the residue with the previous one.
func (M *Molecule) AddResidue(resid, resname, chain string) (*Residue, error) {
	seg, err := M.openSegment("AddResidue")
	if err != nil {
		return nil, err
	}
	resid = M.caps(strings.TrimSpace(resid))
	if resid == "" {
		return nil, diag.New(diag.UnknownTarget, "empty resid")
	}
	if seg.Residue(resid) != nil {
		return nil, diag.New(diag.DuplicateResidue, "duplicate resid %s in segment %s", resid, seg.ID)
	}
	tmpl, err := M.template(M.caps(resname))
	if err != nil {
		return nil, diag.Decorate(err, "AddResidue")
	}
	r := &Residue{ID: resid, Name: tmpl.Name, Chain: chain, Template: tmpl, seg: seg}
	M.instantiate(r)
	seg.residues.Set(key(resid), r)
	M.linkResidue(r)
	return r, nil
}

// linkResidue creates the template terms of r and of its neighbors that
// have become resolvable.
func (M *Molecule) linkResidue(r *Residue) {
	if prev := r.seg.neighbor(r, -1); prev != nil {
		M.templateTerms(prev)
	}
	M.templateTerms(r)
	if next := r.seg.neighbor(r, 1); next != nil {
		M.templateTerms(next)
	}
}

// resolve returns the atom a template reference of r points to, or nil.
func (M *Molecule) resolve(r *Residue, ref topo.AtomRef) *Atom {
	target := r
	switch ref.Offset {
	case topo.Previous:
		target = r.seg.neighbor(r, -1)
	case topo.Next:
		target = r.seg.neighbor(r, 1)
	}
	if target == nil {
		return nil
	}
	return target.Atom(ref.Name)
}

func (M *Molecule) resolveAll(r *Residue, refs []topo.AtomRef) []*Atom {
	ret := make([]*Atom, len(refs))
	for i, ref := range refs {
		if ret[i] = M.resolve(r, ref); ret[i] == nil {
			return nil
		}
	}
	return ret
}

// templateTerms creates the terms of the template of r whose atoms all exist.
// Terms removed by patches are not brought back.
func (M *Molecule) templateTerms(r *Residue) {
	t := r.Template
	if t == nil {
		return
	}
	add := func(kind TermKind, refs []topo.AtomRef) {
		atoms := M.resolveAll(r, refs)
		if atoms == nil || M.removed[keyOf(kind, atoms)] {
			return
		}
		M.addTerm(kind, false, atoms...)
	}
	for _, b := range t.Bonds {
		add(BondTerm, b[:])
	}
	for _, a := range t.Angles {
		add(AngleTerm, a[:])
	}
	for _, d := range t.Dihedrals {
		add(DihedralTerm, d[:])
	}
	for _, d := range t.Impropers {
		add(ImproperTerm, d[:])
	}
	for _, c := range t.CMaps {
		add(CMapTerm, c[:])
	}
}

// MutateResidue replaces the residue resid of the open segment by an instance of
// the template resname. Atoms whose names exist in both templates keep their
// position, velocity, beta factor and any explicitly set mass or charge.
func (M *Molecule) MutateResidue(resid, resname string) error {
	seg, err := M.openSegment("MutateResidue")
	if err != nil {
		return err
	}
	r := seg.Residue(M.caps(resid))
	if r == nil {
		return diag.New(diag.UnknownTarget, "no residue %s in segment %s", resid, seg.ID)
	}
	tmpl, err := M.template(M.caps(resname))
	if err != nil {
		return diag.Decorate(err, "MutateResidue")
	}
	old := r.atoms
	for _, a := range old {
		a.res = nil
	}
	M.purge()
	r.Name = tmpl.Name
	r.Template = tmpl
	M.instantiate(r)
	for _, o := range old {
		a := r.Atom(o.Name)
		if a == nil {
			continue
		}
		a.Pos, a.Vel, a.Beta, a.State = o.Pos, o.Vel, o.Beta, o.State
		if o.massSet {
			a.Mass, a.massSet = o.Mass, true
		}
		if o.chargeSet {
			a.Charge, a.chargeSet = o.Charge, true
		}
	}
	M.linkResidue(r)
	return nil
}

func defaultPatch(r *Residue, which Terminal) string {
	if r.Template == nil {
		return ""
	}
	if which == FirstResidue {
		return r.Template.First
	}
	return r.Template.Last
}

// terminalPatch returns the patch to apply given the segment setting and the template default.
func terminalPatch(setting, deflt string) string {
	if setting == "" {
		setting = deflt
	}
	if setting == "" || strings.EqualFold(setting, "none") {
		return ""
	}
	return setting
}

// EndSegment finishes the open segment. The first and last patches are applied,
// angles and dihedrals are generated if the segment asks for them, and all the
// atoms of the molecule are renumbered. Generated terms include those that reach
// into segments closed before, through bonds added by patches. If a patch fails,
// the segment is left open and unchanged.
func (M *Molecule) EndSegment() error {
	seg, err := M.openSegment("EndSegment")
	if err != nil {
		return err
	}
	res := seg.Residues()
	if len(res) > 0 {
		first, last := res[0], res[len(res)-1]
		pf := terminalPatch(seg.First, defaultPatch(first, FirstResidue))
		pl := terminalPatch(seg.Last, defaultPatch(last, LastResidue))
		for _, p := range []string{pf, pl} {
			if p == "" {
				continue
			}
			if _, err := M.patchTemplate(p); err != nil {
				return diag.Decorate(err, "EndSegment")
			}
		}
		var before *snapshot
		if pf != "" {
			if pl != "" {
				before = M.snapshot(seg)
			}
			diag.Infof(M.sink, "applying patch %s to first residue %s:%s", pf, seg.ID, first.ID)
			if err := M.applyPatch(pf, []Ident{{Segid: seg.ID, Resid: first.ID}}, true); err != nil {
				return diag.Decorate(err, "EndSegment")
			}
		}
		if pl != "" {
			diag.Infof(M.sink, "applying patch %s to last residue %s:%s", pl, seg.ID, last.ID)
			if err := M.applyPatch(pl, []Ident{{Segid: seg.ID, Resid: last.ID}}, true); err != nil {
				if before != nil {
					before.restore()
				}
				return diag.Decorate(err, "EndSegment")
			}
		}
	}
	in := func(a *Atom) bool { return a.res != nil && a.res.seg == seg }
	if seg.AutoAngles {
		M.generateAngles(in)
	}
	if seg.AutoDihedrals {
		M.generateDihedrals(in)
	}
	seg.closed = true
	M.open = nil
	M.AssignIDs()
	return nil
}
