/*
 * edit.go, part of gopsfgen
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
	"github.com/rmera/gopsfgen/diag"
	"gonum.org/v1/gonum/spatial/r3"
)

// Attr is the attribute changed by an Edit.
type Attr int

const (
	EditSegid Attr = iota
	EditResname
	EditName
	EditMass
	EditCharge
	EditBeta
	EditPosition
	EditVelocity
)

func (A Attr) String() string {
	return [...]string{"segid", "resname", "name", "mass", "charge", "beta", "position", "velocity"}[A]
}

// Edit is a change of one attribute. Text is used for segid, resname and name,
// Value for mass, charge and beta, and Vec for position and velocity.
type Edit struct {
	Attr  Attr
	Text  string
	Value float64
	Vec   r3.Vec
}

// matched returns the atoms selected by a (possibly partial) target.
func matched(seg *Segment, res *Residue, at *Atom) []*Atom {
	switch {
	case at != nil:
		return []*Atom{at}
	case res != nil:
		return res.Atoms()
	}
	var ret []*Atom
	for _, r := range seg.residues.Values() {
		ret = append(ret, r.atoms...)
	}
	return ret
}

// Set applies e to the target t. Renaming a segment needs only the segid. Giving also
// a resid moves that residue to the end of the segment named e.Text, which is created
// if needed. Resname edits need a residue and no atom name, name and position edits
// need an atom. Mass, charge, beta and velocity edits apply to every atom matched.
func (M *Molecule) Set(t Ident, e Edit) error {
	seg, res, at, err := M.find(t)
	if err != nil {
		return diag.Decorate(err, "Set")
	}
	switch e.Attr {
	case EditSegid:
		if at != nil {
			return diag.New(diag.InsufficientTarget, "segid can't be set for a single atom")
		}
		if res != nil {
			return M.moveResidue(res, M.caps(e.Text))
		}
		return M.renameSegment(seg, M.caps(e.Text))
	case EditResname:
		if res == nil || at != nil {
			return diag.New(diag.InsufficientTarget, "resname needs a segid and a resid, and no atom name")
		}
		res.Name = M.caps(e.Text)
	case EditName:
		if at == nil {
			return diag.New(diag.InsufficientTarget, "atom name needs segid, resid and atom name")
		}
		name := M.caps(e.Text)
		if o := res.Atom(name); o != nil && o != at {
			return diag.New(diag.DuplicateAtom, "atom %s already present in residue %s:%s", name, seg.ID, res.ID)
		}
		at.Name = name
	case EditPosition:
		if at == nil {
			return diag.New(diag.InsufficientTarget, "position needs segid, resid and atom name")
		}
		at.SetPosition(e.Vec)
	default:
		for _, a := range matched(seg, res, at) {
			switch e.Attr {
			case EditMass:
				a.Mass, a.massSet = e.Value, true
			case EditCharge:
				a.Charge, a.chargeSet = e.Value, true
			case EditBeta:
				a.Beta = e.Value
			case EditVelocity:
				a.Vel = e.Vec
			}
		}
	}
	return nil
}

func (M *Molecule) renameSegment(seg *Segment, segid string) error {
	if len(segid) > MaxSegidLen {
		return diag.New(diag.SegmentIdTooLong, "segment name %q has more than %d characters", segid, MaxSegidLen)
	}
	if segid == "" {
		return diag.New(diag.UnknownTarget, "empty segment name")
	}
	if o := M.Segment(segid); o != nil && o != seg {
		return diag.New(diag.DuplicateSegment, "segment %s already exists", segid)
	}
	M.segments.Rekey(key(seg.ID), key(segid))
	seg.ID = segid
	return nil
}

func (M *Molecule) moveResidue(res *Residue, segid string) error {
	dst := M.Segment(segid)
	if dst == res.seg {
		return nil
	}
	if dst != nil && dst.Residue(res.ID) != nil {
		return diag.New(diag.DuplicateResidue, "residue %s already present in segment %s", res.ID, segid)
	}
	if dst == nil {
		var err error
		if dst, err = M.CreateSegment(segid); err != nil {
			return diag.Decorate(err, "Set")
		}
	}
	res.seg.residues.Delete(key(res.ID))
	res.seg = dst
	dst.residues.Set(key(res.ID), res)
	M.AssignIDs()
	return nil
}

// Delete removes a segment, a residue or an atom, with every term that references
// the removed atoms.
func (M *Molecule) Delete(t Ident) error {
	seg, res, at, err := M.find(t)
	if err != nil {
		return diag.Decorate(err, "Delete")
	}
	switch {
	case at != nil:
		res.removeAtom(at)
	case res != nil:
		seg.residues.Delete(key(res.ID))
		res.seg = nil
	default:
		M.segments.Delete(key(seg.ID))
		for _, r := range seg.residues.Values() {
			r.seg = nil
		}
		seg.mol = nil
		if M.open == seg {
			M.open = nil
		}
	}
	M.purge()
	M.AssignIDs()
	return nil
}
