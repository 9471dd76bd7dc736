/*
 * geometry_test.go, part of gopsfgen
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
	"testing"

	"github.com/rmera/gopsfgen/diag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestMeasures(Te *testing.T) {
	a := r3.Vec{X: 1, Y: 0, Z: 0}
	b := r3.Vec{}
	c := r3.Vec{X: 0, Y: 1, Z: 0}
	assert.InDelta(Te, 90, Angle(a, b, c), 1e-9)
	d := r3.Vec{X: 0, Y: 1, Z: 1}
	assert.InDelta(Te, 90, math.Abs(Dihedral(a, b, c, d)), 1e-9)
	assert.InDelta(Te, -Dihedral(a, b, c, d), Dihedral(d, b, c, a), 1e-9)
	assert.InDelta(Te, Dihedral(a, b, c, d), Dihedral(d, c, b, a), 1e-9)
}

func TestPlace(Te *testing.T) {
	a := r3.Vec{X: -1.2, Y: 1.1, Z: 0.3}
	b := r3.Vec{X: 0, Y: 0, Z: 0}
	c := r3.Vec{X: 1.5, Y: 0.1, Z: -0.2}
	for _, phi := range []float64{-170, -60, 0, 45, 120, 180} {
		d := place(a, b, c, 1.33, 112.5, phi)
		assert.InDelta(Te, 1.33, r3.Norm(r3.Sub(d, c)), 1e-9)
		assert.InDelta(Te, 112.5, Angle(b, c, d), 1e-9)
		got := Dihedral(a, b, c, d)
		if phi == 180 && got < 0 {
			got += 360
		}
		assert.InDelta(Te, phi, got, 1e-9, "phi %f", phi)
	}
}

func alanine(Te *testing.T) (*Molecule, *Residue) {
	M := New(testStore(Te), nil, nil)
	build(Te, M, "A", "1", "ALA")
	r := M.Segment("A").Residue("1")
	r.Atom("N").SetPosition(r3Vec(-0.5, 1.4, 0))
	r.Atom("CA").SetPosition(r3Vec(0, 0, 0))
	r.Atom("C").SetPosition(r3Vec(1.539, 0, 0))
	return M, r
}

func TestGuessCoordinates(Te *testing.T) {
	M, r := alanine(Te)
	rec := &diag.Recorder{}
	M.SetSink(rec)
	require.NoError(Te, M.GuessCoordinates())
	pos := func(n string) r3.Vec { return r.Atom(n).Pos }
	for _, n := range []string{"CB", "HA", "HB1", "HB2", "HB3"} {
		assert.Equal(Te, XYZGuessed, r.Atom(n).State, n)
	}
	//these need the neighbor residues
	for _, n := range []string{"HN", "O"} {
		assert.Equal(Te, XYZVoid, r.Atom(n).State, n)
		assert.True(Te, math.IsNaN(r.Atom(n).Pos.X))
	}
	assert.Equal(Te, XYZSet, r.Atom("N").State)
	assert.InDelta(Te, 1.5461, r3.Norm(r3.Sub(pos("CB"), pos("CA"))), 1e-6)
	assert.InDelta(Te, 111.09, Angle(pos("C"), pos("CA"), pos("CB")), 1e-6)
	assert.InDelta(Te, 123.23, Dihedral(pos("N"), pos("C"), pos("CA"), pos("CB")), 1e-6)
	assert.InDelta(Te, 177.25, Dihedral(pos("C"), pos("CA"), pos("CB"), pos("HB1")), 1e-6)
	assert.InDelta(Te, 1.1109, r3.Norm(r3.Sub(pos("HB1"), pos("CB"))), 1e-6)
	assert.Contains(Te, rec.Lines, "Info: guessed coordinates for 5 atoms")
	assert.Contains(Te, rec.Lines, "Warning: failed to guess coordinate of atom A:1:HN")

	//now build backwards, from the end of the IC records
	cpos := pos("C")
	for _, n := range []string{"N", "C", "HA", "HB2", "HB3"} {
		r.Atom(n).State = XYZVoid
	}
	require.NoError(Te, M.GuessCoordinates())
	assert.InDelta(Te, 0, r3.Norm(r3.Sub(cpos, pos("C"))), 1e-6)
	//N comes from the improper record N C *CA CB
	assert.InDelta(Te, 1.4592, r3.Norm(r3.Sub(pos("N"), pos("CA"))), 1e-6)
	assert.InDelta(Te, 114.44, Angle(pos("N"), pos("CA"), pos("C")), 1e-6)
	assert.InDelta(Te, 123.23, Dihedral(pos("N"), pos("C"), pos("CA"), pos("CB")), 1e-6)
}

func TestGuessNoAnchors(Te *testing.T) {
	M := New(testStore(Te), nil, nil)
	build(Te, M, "A", "1", "GLY")
	require.NoError(Te, M.GuessCoordinates())
	for _, a := range M.Atoms() {
		assert.Equal(Te, XYZVoid, a.State)
		assert.True(Te, math.IsNaN(a.Pos.Z))
	}
}

const noICs = `
RESI ION          1.00
ATOM SOD  HA      1.00
END
`

func TestGuessWithoutICs(Te *testing.T) {
	M := New(testStore(Te, noICs), nil, nil)
	build(Te, M, "A", "1", "GLY")
	build(Te, M, "I", "1", "ION")
	n := M.Segment("A").Residue("1").Atom("N")
	err := M.GuessCoordinates()
	assert.ErrorIs(Te, err, diag.UnresolvedCoordinate)
	assert.Equal(Te, XYZVoid, n.State)
	//once the ion has a position, there is nothing to complain about
	M.Segment("I").Residue("1").Atom("SOD").SetPosition(r3.Vec{})
	assert.NoError(Te, M.GuessCoordinates())
}

// Patch ICs are used when guessing. NTER places its hydrogens from N, CA and C.
func TestGuessPatchICs(Te *testing.T) {
	M := New(testStore(Te), nil, nil)
	M.TerminalDefaults = true
	build(Te, M, "A", "1", "ALA")
	r := M.Segment("A").Residue("1")
	r.Atom("N").SetPosition(r3Vec(-0.5, 1.4, 0))
	r.Atom("CA").SetPosition(r3Vec(0, 0, 0))
	r.Atom("C").SetPosition(r3Vec(1.539, 0, 0))
	require.NoError(Te, M.GuessCoordinates())
	for _, n := range []string{"HT1", "HT2", "HT3", "OT1", "OT2"} {
		assert.Equal(Te, XYZGuessed, r.Atom(n).State, n)
	}
	ht1 := r.Atom("HT1").Pos
	assert.InDelta(Te, 1.04, r3.Norm(r3.Sub(ht1, r.Atom("N").Pos)), 1e-6)
	assert.InDelta(Te, 180, math.Abs(Dihedral(ht1, r.Atom("N").Pos, r.Atom("CA").Pos, r.Atom("C").Pos)), 1e-6)
}
