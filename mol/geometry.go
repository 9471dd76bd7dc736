/*
 * geometry.go, part of gopsfgen
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

	"github.com/rmera/gopsfgen/diag"
	"github.com/rmera/gopsfgen/topo"
	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	deg2rad = math.Pi / 180
	rad2deg = 180 / math.Pi
	appzero = 0.0000001 //values this small are taken as zero
)

// Angle returns the angle a-b-c in degrees.
func Angle(a, b, c r3.Vec) float64 {
	v1 := r3.Sub(a, b)
	v2 := r3.Sub(c, b)
	argument := r3.Dot(v1, v2) / (r3.Norm(v1) * r3.Norm(v2))
	//Take care of floating point math errors
	if scalar.EqualWithinAbs(argument, 1, appzero) {
		argument = 1
	} else if scalar.EqualWithinAbs(argument, -1, appzero) {
		argument = -1
	}
	return math.Acos(argument) * rad2deg
}

// Dihedral returns the dihedral a-b-c-d in degrees, positive for a clockwise
// rotation of a-b onto c-d when looking from b to c.
func Dihedral(a, b, c, d r3.Vec) float64 {
	bma := r3.Sub(b, a)
	cmb := r3.Sub(c, b)
	dmc := r3.Sub(d, c)
	first := r3.Dot(r3.Scale(r3.Norm(cmb), bma), r3.Cross(cmb, dmc))
	second := r3.Dot(r3.Cross(bma, cmb), r3.Cross(cmb, dmc))
	return math.Atan2(first, second) * rad2deg
}

// place returns the position of an atom d bonded to c, such that |cd|=bond,
// the angle b-c-d is angle and the dihedral a-b-c-d is torsion. Angles in degrees.
func place(a, b, c r3.Vec, bond, angle, torsion float64) r3.Vec {
	theta := angle * deg2rad
	phi := torsion * deg2rad
	bc := r3.Unit(r3.Sub(c, b))
	n := r3.Unit(r3.Cross(r3.Sub(b, a), bc))
	m := r3.Cross(n, bc)
	d := r3.Scale(-bond*math.Cos(theta), bc)
	d = r3.Add(d, r3.Scale(bond*math.Sin(theta)*math.Cos(phi), m))
	d = r3.Add(d, r3.Scale(bond*math.Sin(theta)*math.Sin(phi), n))
	return r3.Add(c, d)
}

// resolvedIC is an IC record with its atoms found in the molecule.
// Missing atoms are nil.
type resolvedIC struct {
	at [4]*Atom
	ic topo.IC
}

func (M *Molecule) residueICs(r *Residue) []resolvedIC {
	var ret []resolvedIC
	if r.Template != nil {
		for _, ic := range r.Template.ICs {
			var ri resolvedIC
			ri.ic = ic
			for i, ref := range ic.Atoms {
				ri.at[i] = M.resolve(r, ref)
			}
			ret = append(ret, ri)
		}
	}
	for _, pic := range r.ics {
		ri := resolvedIC{ic: pic.ic}
		for i, pr := range pic.res {
			if pr.seg != nil {
				ri.at[i] = pr.Atom(pic.names[i])
			}
		}
		ret = append(ret, ri)
	}
	return ret
}

func known(a *Atom) bool { return a != nil && a.State != XYZVoid }

// guess tries to place one unknown atom of the IC. It returns true if it did.
func (ri resolvedIC) guess() bool {
	I, J, K, L := ri.at[0], ri.at[1], ri.at[2], ri.at[3]
	if I == nil || J == nil || K == nil || L == nil {
		return false
	}
	ic := ri.ic
	switch {
	case !known(L) && known(I) && known(J) && known(K):
		if ic.R34 <= 0 || ic.T234 <= 0 {
			return false
		}
		L.Pos = place(I.Pos, J.Pos, K.Pos, ic.R34, ic.T234, ic.Phi)
		L.State = XYZGuessed
		return true
	case !known(I) && known(J) && known(K) && known(L):
		if ic.R12 <= 0 || ic.T123 <= 0 {
			return false
		}
		if ic.Improper {
			I.Pos = place(L.Pos, J.Pos, K.Pos, ic.R12, ic.T123, -ic.Phi)
		} else {
			I.Pos = place(L.Pos, K.Pos, J.Pos, ic.R12, ic.T123, ic.Phi)
		}
		I.State = XYZGuessed
		return true
	}
	return false
}

// GuessCoordinates places the atoms without a position using the internal
// coordinates of their residues and the patches applied to them. Passes are
// repeated until one places nothing. Atoms that can't be placed keep
// VoidPosition. It fails with diag.UnresolvedCoordinate, before placing anything,
// if a residue with unknown atoms has no internal coordinates at all.
func (M *Molecule) GuessCoordinates() error {
	var ics []resolvedIC
	for _, s := range M.segments.Values() {
		for _, r := range s.residues.Values() {
			ric := M.residueICs(r)
			if len(ric) == 0 {
				for _, a := range r.atoms {
					if !known(a) {
						return diag.New(diag.UnresolvedCoordinate, "no internal coordinates for residue %s:%s (%s)", s.ID, r.ID, r.Name)
					}
				}
			}
			ics = append(ics, ric...)
		}
	}
	placed := 0
	atoms := M.Atoms()
	for pass := 0; pass <= len(atoms); pass++ {
		progress := false
		for _, ri := range ics {
			if ri.guess() {
				placed++
				progress = true
			}
		}
		if !progress {
			break
		}
	}
	if placed > 0 {
		diag.Infof(M.sink, "guessed coordinates for %d atoms", placed)
	}
	for _, a := range atoms {
		if !known(a) {
			a.Pos = VoidPosition
			diag.Warnf(M.sink, "failed to guess coordinate of atom %s:%s:%s", a.res.seg.ID, a.res.ID, a.Name)
		}
	}
	return nil
}
