/*
 * pdb_test.go, part of gopsfgen
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

package pdb

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rmera/gopsfgen/diag"
	"github.com/rmera/gopsfgen/mol"
	"github.com/rmera/gopsfgen/topo"
	"github.com/rmera/gopsfgen/zio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

const testTop = "../testdata/top_test.rtf"

func alanine(Te *testing.T, rec *diag.Recorder, resid string) *mol.Molecule {
	S := topo.NewStore(nil)
	require.NoError(Te, S.ReadFile(testTop))
	var sink diag.Sink
	if rec != nil {
		sink = rec
	}
	M := mol.New(S, nil, sink)
	_, err := M.BeginSegment("P")
	require.NoError(Te, err)
	_, err = M.AddResidue(resid, "ALA", "")
	require.NoError(Te, err)
	require.NoError(Te, M.EndSegment())
	return M
}

func TestWrite(Te *testing.T) {
	M := alanine(Te, nil, "1")
	a, err := M.Find(mol.Ident{Segid: "P", Resid: "1", Name: "N"})
	require.NoError(Te, err)
	a.SetPosition(r3.Vec{X: 1, Y: 2, Z: 3})
	ca, err := M.Find(mol.Ident{Segid: "P", Resid: "1", Name: "CA"})
	require.NoError(Te, err)
	ca.SetPosition(r3.Vec{X: -1.5, Y: 0, Z: 10.25})
	ca.State = mol.XYZGuessed
	ca.Beta = 2.5

	var b bytes.Buffer
	require.NoError(Te, Write(&b, M))
	lines := strings.Split(strings.TrimSuffix(b.String(), "\n"), "\n")
	require.Len(Te, lines, 2+10+1)
	assert.Equal(Te, "REMARK original generated coordinate pdb file", lines[0])
	assert.Equal(Te, "CRYST1    0.000    0.000    0.000  90.00  90.00  90.00 P 1           1", lines[1])
	assert.Equal(Te, "ATOM      1  N   ALA     1       1.000   2.000   3.000  1.00  0.00      P      N", lines[2])
	assert.Equal(Te, "ATOM      2  HN  ALA     1       0.000   0.000   0.000 -1.00  0.00      P      H", lines[3])
	assert.Equal(Te, "ATOM      3  CA  ALA     1      -1.500   0.000  10.250  0.00  2.50      P      C", lines[4])
	assert.Equal(Te, "END", lines[len(lines)-1])
}

func TestReadBack(Te *testing.T) {
	M := alanine(Te, nil, "1")
	for i, a := range M.Atoms() {
		a.SetPosition(r3.Vec{X: float64(i), Y: -float64(i), Z: 0.5})
	}
	name := filepath.Join(Te.TempDir(), "ala.pdb.zst")
	require.NoError(Te, WriteFile(name, M))

	f, err := zio.Open(name)
	require.NoError(Te, err)
	pos, err := ReadOrdered(f, name)
	f.Close()
	require.NoError(Te, err)
	require.Len(Te, pos, M.NumAtoms())
	for i, p := range pos {
		assert.InDelta(Te, float64(i), p.X, 1e-6)
		assert.InDelta(Te, -float64(i), p.Y, 1e-6)
	}

	f, err = zio.Open(name)
	require.NoError(Te, err)
	res, err := ReadResidues(f, name)
	f.Close()
	require.NoError(Te, err)
	assert.Equal(Te, []Residue{{Resid: "1", Resname: "ALA"}}, res)

	//the segid columns are used when no segment is given
	M2 := alanine(Te, nil, "1")
	f, err = zio.Open(name)
	require.NoError(Te, err)
	n, err := ReadCoords(f, M2, "", name)
	f.Close()
	require.NoError(Te, err)
	assert.Equal(Te, M2.NumAtoms(), n)
	for i, a := range M2.Atoms() {
		assert.True(Te, a.HasPosition())
		assert.Equal(Te, M.Atoms()[i].Pos, a.Pos)
	}
}

const aliased = `REMARK residues named as in the PDB
ATOM      1  N   ALB A   5      11.104   6.134  -6.504  1.00  0.00           N
ATOM      2  H   ALB A   5      11.500   5.700  -5.700  1.00  0.00           H
ATOM      3  CA  ALB A   5      11.639   6.071  -5.147  1.00  0.00           C
ATOM      4  XX  ALB A   5      12.000   6.000  -5.000  1.00  0.00           C
ATOM      5  N   GLY A   6      13.000   7.000  -4.000  1.00  0.00           N
ATOM      6  N   ALB A   7      14.000   8.000  -3.000  1.00  0.00           N
END
ATOM      7  N   ALB A   8      15.000   9.000  -2.000  1.00  0.00           N
`

func TestReadCoordsAliases(Te *testing.T) {
	rec := &diag.Recorder{}
	M := alanine(Te, rec, "5")
	require.NoError(Te, M.Aliases.Residue("ALB", "ALA"))
	require.NoError(Te, M.Aliases.Atom("ALA", "H", "HN"))

	n, err := ReadCoords(strings.NewReader(aliased), M, "P", "aliased.pdb")
	require.NoError(Te, err)
	assert.Equal(Te, 3, n)
	hn, err := M.Find(mol.Ident{Segid: "P", Resid: "5", Name: "HN"})
	require.NoError(Te, err)
	assert.Equal(Te, r3.Vec{X: 11.5, Y: 5.7, Z: -5.7}, hn.Pos)
	assert.Equal(Te, mol.XYZSet, hn.State)
	cb, err := M.Find(mol.Ident{Segid: "P", Resid: "5", Name: "CB"})
	require.NoError(Te, err)
	assert.False(Te, cb.HasPosition())

	//XX, the residue 6 and the residue 7 are reported; nothing after END is read
	require.Len(Te, rec.Lines, 3)
	for _, l := range rec.Lines {
		assert.True(Te, strings.HasPrefix(l, "Warning: "))
	}
	assert.Contains(Te, rec.Lines[0], "XX")

	res, err := ReadResidues(strings.NewReader(aliased), "aliased.pdb")
	require.NoError(Te, err)
	assert.Equal(Te, []Residue{
		{Resid: "5", Resname: "ALB", Chain: "A"},
		{Resid: "6", Resname: "GLY", Chain: "A"},
		{Resid: "7", Resname: "ALB", Chain: "A"},
	}, res)
}

func TestReadErrors(Te *testing.T) {
	bad := "ATOM      1  N   ALA A   1      11.104   xxxxx  -6.504  1.00  0.00           N\n"
	_, err := ReadOrdered(strings.NewReader("REMARK\n"+bad), "bad.pdb")
	require.Error(Te, err)
	assert.ErrorIs(Te, err, diag.FormatError)
	var e *diag.Error
	require.ErrorAs(Te, err, &e)
	assert.Equal(Te, "bad.pdb", e.FileName())
	assert.Equal(Te, 2, e.Line())

	pos, err := ReadOrdered(strings.NewReader("REMARK nothing here\n"), "empty.pdb")
	require.NoError(Te, err)
	assert.Empty(Te, pos)
}

func TestElements(Te *testing.T) {
	assert.Equal(Te, "H", ElementFromMass(1.008))
	assert.Equal(Te, "N", ElementFromMass(14.007))
	assert.Equal(Te, "S", ElementFromMass(32.06))
	assert.Equal(Te, "Fe", ElementFromMass(55.85))
	assert.Equal(Te, "", ElementFromMass(200))
	assert.Equal(Te, "", ElementFromMass(0))
}

func TestSplitResid(Te *testing.T) {
	for _, c := range []struct {
		in   string
		num  string
		code byte
	}{
		{"52A", "52", 'A'},
		{"52", "52", ' '},
		{"-3", "-3", ' '},
		{"A", "A", ' '},
		{"52AB", "52AB", ' '},
	} {
		num, code := splitResid(c.in)
		assert.Equal(Te, c.num, num, c.in)
		assert.Equal(Te, c.code, code, c.in)
	}
}
