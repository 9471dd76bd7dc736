/*
 * query.go, part of gopsfgen
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

package psfgen

import (
	"github.com/rmera/gopsfgen/diag"
	"github.com/rmera/gopsfgen/mol"
	"gonum.org/v1/gonum/spatial/r3"
)

// Segids returns the names of the segments, in order.
func (S *Session) Segids() []string { return S.mol.Segids() }

func (S *Session) segment(segid string) (*mol.Segment, error) {
	seg := S.mol.Segment(segid)
	if seg == nil {
		return nil, diag.New(diag.UnknownTarget, "no segment %s", segid)
	}
	return seg, nil
}

func (S *Session) residue(segid, resid string) (*mol.Residue, error) {
	seg, err := S.segment(segid)
	if err != nil {
		return nil, err
	}
	r := seg.Residue(resid)
	if r == nil {
		return nil, diag.New(diag.UnknownTarget, "no residue %s in segment %s", resid, segid)
	}
	return r, nil
}

// SegmentFirst returns the patch set for the first residue of the segment.
func (S *Session) SegmentFirst(segid string) (string, error) {
	seg, err := S.segment(segid)
	if err != nil {
		return "", err
	}
	return seg.First, nil
}

// SegmentLast returns the patch set for the last residue of the segment.
func (S *Session) SegmentLast(segid string) (string, error) {
	seg, err := S.segment(segid)
	if err != nil {
		return "", err
	}
	return seg.Last, nil
}

// Resids returns the resids of the segment, in order.
func (S *Session) Resids(segid string) ([]string, error) {
	seg, err := S.segment(segid)
	if err != nil {
		return nil, err
	}
	return seg.Resids(), nil
}

// Resname returns the name of a residue.
func (S *Session) Resname(segid, resid string) (string, error) {
	r, err := S.residue(segid, resid)
	if err != nil {
		return "", err
	}
	return r.Name, nil
}

// atomValues collects one value per atom of a residue.
func atomValues[T any](S *Session, segid, resid string, f func(*mol.Atom) T) ([]T, error) {
	r, err := S.residue(segid, resid)
	if err != nil {
		return nil, err
	}
	atoms := r.Atoms()
	ret := make([]T, len(atoms))
	for i, a := range atoms {
		ret[i] = f(a)
	}
	return ret, nil
}

// AtomNames returns the names of the atoms of a residue, in order.
func (S *Session) AtomNames(segid, resid string) ([]string, error) {
	return atomValues(S, segid, resid, func(a *mol.Atom) string { return a.Name })
}

// AtomPositions returns the positions of the atoms of a residue. Atoms
// without a position give mol.VoidPosition.
func (S *Session) AtomPositions(segid, resid string) ([]r3.Vec, error) {
	return atomValues(S, segid, resid, func(a *mol.Atom) r3.Vec {
		if !a.HasPosition() {
			return mol.VoidPosition
		}
		return a.Pos
	})
}

// AtomVelocities returns the velocities of the atoms of a residue.
func (S *Session) AtomVelocities(segid, resid string) ([]r3.Vec, error) {
	return atomValues(S, segid, resid, func(a *mol.Atom) r3.Vec { return a.Vel })
}

// AtomMasses returns the masses of the atoms of a residue.
func (S *Session) AtomMasses(segid, resid string) ([]float64, error) {
	return atomValues(S, segid, resid, func(a *mol.Atom) float64 { return a.Mass })
}

// AtomCharges returns the charges of the atoms of a residue.
func (S *Session) AtomCharges(segid, resid string) ([]float64, error) {
	return atomValues(S, segid, resid, func(a *mol.Atom) float64 { return a.Charge })
}

// AtomIDs returns the 1-based serial numbers of the atoms of a residue.
// The atoms of the molecule are numbered again first.
func (S *Session) AtomIDs(segid, resid string) ([]int, error) {
	S.mol.AssignIDs()
	return atomValues(S, segid, resid, func(a *mol.Atom) int { return a.ID })
}

// Patches returns the patches applied, as (patch, segid, resid) triples. Terminal
// patches applied when ending a segment are only listed if listAll is true.
func (S *Session) Patches(listAll bool) []PatchUse { return S.mol.Patches(listAll) }

// TopologyFiles returns the topology files read, in order.
func (S *Session) TopologyFiles() []string { return S.store.Files() }

// ResidueTemplates returns the names of the residue templates known.
func (S *Session) ResidueTemplates() []string { return S.store.Residues() }

// PatchTemplates returns the names of the patch templates known.
func (S *Session) PatchTemplates() []string { return S.store.Patches() }
