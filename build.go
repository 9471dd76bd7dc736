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

package psfgen

import (
	"github.com/rmera/gopsfgen/diag"
	"github.com/rmera/gopsfgen/mol"
	"github.com/rmera/gopsfgen/pdb"
	"github.com/rmera/gopsfgen/zio"
	"gonum.org/v1/gonum/spatial/r3"
)

// Names from the mol package, so most programs only need this one.
type (
	Ident     = mol.Ident
	Edit      = mol.Edit
	Attr      = mol.Attr
	Terminal  = mol.Terminal
	RegenKind = mol.RegenKind
	PatchUse  = mol.PatchUse
)

const (
	FirstResidue = mol.FirstResidue
	LastResidue  = mol.LastResidue

	RegenAngles    = mol.RegenAngles
	RegenDihedrals = mol.RegenDihedrals
	RegenResids    = mol.RegenResids
)

// ResidueSpec is a residue to be added to a segment.
type ResidueSpec struct {
	Resid   string
	Resname string
	Chain   string
}

// Mutation replaces the residue Resid by an instance of Resname.
type Mutation struct {
	Resid   string
	Resname string
}

// SegmentSpec describes a whole segment, built in one call by AddSegment.
type SegmentSpec struct {
	Segid string

	// PDB file the residues (and then their coordinates) are read from, if any.
	// Its residues go before those in Residues.
	PDB string

	First, Last string //terminal patches, "none" for no patch, "" for the session default

	// nil keeps the topology settings
	AutoAngles    *bool
	AutoDihedrals *bool

	Residues  []ResidueSpec
	Mutations []Mutation
}

// BeginSegment starts building the segment segid.
func (S *Session) BeginSegment(segid string) error {
	seg, err := S.mol.BeginSegment(segid)
	if err != nil {
		return err
	}
	if !S.cfg.AutoAngles || !S.cfg.AutoDihedrals {
		return S.mol.SetAutoGeneration(seg.AutoAngles && S.cfg.AutoAngles, seg.AutoDihedrals && S.cfg.AutoDihedrals)
	}
	return nil
}

// EndSegment finishes the segment being built.
func (S *Session) EndSegment() error { return S.mol.EndSegment() }

// AddResidue adds a residue to the end of the segment being built.
func (S *Session) AddResidue(resid, resname, chain string) error {
	_, err := S.mol.AddResidue(resid, resname, chain)
	return err
}

// MutateResidue replaces the residue resid of the segment being built.
func (S *Session) MutateResidue(resid, resname string) error {
	return S.mol.MutateResidue(resid, resname)
}

// SetTerminalPatch sets the patch for the first or last residue of the segment being built.
func (S *Session) SetTerminalPatch(which Terminal, patch string) error {
	return S.mol.SetTerminalPatch(which, patch)
}

// SetAuto sets the generation of angles and dihedrals for the segment being built.
func (S *Session) SetAuto(angles, dihedrals bool) error {
	return S.mol.SetAutoGeneration(angles, dihedrals)
}

func (S *Session) pdbResidues(path string) ([]pdb.Residue, error) {
	f, err := zio.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return pdb.ReadResidues(f, path)
}

// AddSegment builds the segment described by spec: residues from the PDB file and
// the list, mutations, terminal patches and generation settings. The coordinates in
// the PDB file are read at the end. If anything fails, the segment is removed.
func (S *Session) AddSegment(spec SegmentSpec) error {
	if err := S.BeginSegment(spec.Segid); err != nil {
		return diag.Decorate(err, "AddSegment")
	}
	segid := S.mol.OpenSegment().ID
	if err := S.buildSegment(spec); err != nil {
		if S.mol.Segment(segid) != nil {
			//only the failed segment goes away
			S.mol.Delete(Ident{Segid: segid})
		}
		return diag.Decorate(err, "AddSegment")
	}
	return nil
}

func (S *Session) buildSegment(spec SegmentSpec) error {
	var res []ResidueSpec
	if spec.PDB != "" {
		fromPDB, err := S.pdbResidues(spec.PDB)
		if err != nil {
			return err
		}
		for _, r := range fromPDB {
			res = append(res, ResidueSpec{Resid: r.Resid, Resname: r.Resname, Chain: r.Chain})
		}
	}
	res = append(res, spec.Residues...)
	for _, r := range res {
		if err := S.AddResidue(r.Resid, r.Resname, r.Chain); err != nil {
			return err
		}
	}
	for _, m := range spec.Mutations {
		if err := S.MutateResidue(m.Resid, m.Resname); err != nil {
			return err
		}
	}
	if spec.First != "" {
		if err := S.SetTerminalPatch(FirstResidue, spec.First); err != nil {
			return err
		}
	}
	if spec.Last != "" {
		if err := S.SetTerminalPatch(LastResidue, spec.Last); err != nil {
			return err
		}
	}
	if spec.AutoAngles != nil || spec.AutoDihedrals != nil {
		seg := S.mol.OpenSegment()
		angles, dihedrals := seg.AutoAngles, seg.AutoDihedrals
		if spec.AutoAngles != nil {
			angles = *spec.AutoAngles
		}
		if spec.AutoDihedrals != nil {
			dihedrals = *spec.AutoDihedrals
		}
		if err := S.SetAuto(angles, dihedrals); err != nil {
			return err
		}
	}
	segid := S.mol.OpenSegment().ID
	if err := S.EndSegment(); err != nil {
		return err
	}
	if spec.PDB != "" {
		if _, err := S.ReadCoords(spec.PDB, segid); err != nil {
			return err
		}
	}
	return nil
}

// Patch applies the patch name to the target residues, in order.
func (S *Session) Patch(name string, targets ...Ident) error {
	return S.mol.ApplyPatch(name, targets)
}

// DeleteAtoms deletes the atom, residue or segment t.
func (S *Session) DeleteAtoms(t Ident) error { return S.mol.Delete(t) }

// SetAttribute applies the edit e to the target t.
func (S *Session) SetAttribute(t Ident, e Edit) error { return S.mol.Set(t, e) }

// SetCoord sets the position of one atom.
func (S *Session) SetCoord(segid, resid, name string, pos r3.Vec) error {
	return S.mol.Set(Ident{Segid: segid, Resid: resid, Name: name}, Edit{Attr: mol.EditPosition, Vec: pos})
}

// Regenerate rebuilds the angles, dihedrals or resids of the whole molecule.
func (S *Session) Regenerate(what RegenKind) error { return S.mol.Regenerate(what) }

// GuessCoords places the atoms without a position using the internal coordinates
// of their residues.
func (S *Session) GuessCoords() error { return S.mol.GuessCoordinates() }
