/*
 * rtf_test.go, part of gopsfgen
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

package topo

import (
	"bufio"
	"errors"
	"strings"
	"testing"

	"github.com/rmera/gopsfgen/diag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTop = "../testdata/top_test.rtf"

func TestReadFile(Te *testing.T) {
	S := NewStore(nil)
	require.NoError(Te, S.ReadFile(testTop))
	assert.Equal(Te, []string{testTop}, S.Files())
	assert.Equal(Te, []string{"ALA", "CYS", "GLY", "TIP3"}, S.Residues())
	assert.Equal(Te, []string{"NTER", "CTER", "DISU"}, S.Patches())
	assert.Equal(Te, "NTER", S.First)
	assert.Equal(Te, "CTER", S.Last)
	assert.True(Te, S.AutoAngles)
	assert.True(Te, S.AutoDihedrals)

	ala, ok := S.Residue("ala")
	require.True(Te, ok)
	assert.Len(Te, ala.Atoms, 10)
	assert.Len(Te, ala.Bonds, 10)
	assert.Len(Te, ala.Impropers, 2)
	assert.Len(Te, ala.CMaps, 1)
	assert.Len(Te, ala.ICs, 10)
	assert.Equal(Te, "NTER", ala.First)
	assert.Equal(Te, "CTER", ala.Last)
	assert.Equal(Te, AtomRef{Offset: Next, Name: "N"}, ala.Bonds[4][1])
	assert.Equal(Te, AtomRef{Offset: Previous, Name: "C"}, ala.Impropers[0][1])
	cb, ok := ala.Atom("CB")
	require.True(Te, ok)
	assert.Equal(Te, "CT3", cb.Type)
	assert.InDelta(Te, -0.27, cb.Charge, 1e-9)

	ic := ala.ICs[0]
	assert.True(Te, ic.Improper)
	assert.Equal(Te, "N", ic.Atoms[2].Name)
	assert.InDelta(Te, 0.9996, ic.R34, 1e-9)

	tip, _ := S.Residue("TIP3")
	assert.True(Te, tip.NoAngles)
	assert.True(Te, tip.NoDihedrals)
	assert.Equal(Te, "NONE", tip.First)
	assert.Len(Te, tip.Angles, 1)
}

func TestPatches(Te *testing.T) {
	S := NewStore(nil)
	require.NoError(Te, S.ReadFile(testTop))
	nter, _ := S.Residue("NTER")
	assert.True(Te, nter.Patch)
	assert.Equal(Te, 1, nter.Targets())
	assert.Equal(Te, []AtomRef{{Name: "HN"}}, nter.DeleteAtoms)
	assert.Empty(Te, nter.First)

	disu, _ := S.Residue("DISU")
	assert.Equal(Te, 2, disu.Targets())
	assert.Equal(Te, AtomRef{Target: 1, Name: "SG"}, disu.Bonds[0][1])
	assert.Equal(Te, []AtomRef{{Name: "HG1"}, {Target: 1, Name: "HG1"}}, disu.DeleteAtoms)
}

func TestMassTypes(Te *testing.T) {
	S := NewStore(nil)
	require.NoError(Te, S.ReadFile(testTop))
	m, ok := S.Mass("ct1")
	require.True(Te, ok)
	assert.InDelta(Te, 12.011, m, 1e-9)
	t, ok := S.Type("NH1")
	require.True(Te, ok)
	assert.Equal(Te, 25, t.Index) //first automatic index after 24
	back, ok := S.TypeByIndex(25)
	require.True(Te, ok)
	assert.Equal(Te, "NH1", back.Name)
	assert.Equal(Te, "N", back.Element)
	_, ok = S.Mass("XX")
	assert.False(Te, ok)
}

func TestPartialParse(Te *testing.T) {
	top := `* broken
RESI AAA 0.0
ATOM C1 CT3 0.0
RESI BBB 0.0
ATOM C1 CT3 0.0
ATOM C1 CT3 0.0
RESI CCC 0.0
`
	S := NewStore(nil)
	err := S.Parse(bufio.NewReader(strings.NewReader(top)), "broken.rtf")
	require.Error(Te, err)
	assert.True(Te, errors.Is(err, diag.ParseError))
	var e *diag.Error
	require.True(Te, errors.As(err, &e))
	assert.Equal(Te, 6, e.Line())
	assert.Equal(Te, "broken.rtf", e.FileName())
	assert.Equal(Te, []string{"AAA"}, S.Residues())
}

func TestParseErrors(Te *testing.T) {
	bad := map[string]string{
		"unknown record": "RESI A 0\nFOO X\n",
		"bad numeric":    "MASS 1 H one\n",
		"outside":        "ATOM C1 CT3 0.0\n",
		"odd bond":       "RESI A 0\nATOM C1 C 0\nBOND C1\n",
		"short ic":       "RESI A 0\nIC A B C D 1 2 3\n",
	}
	for name, top := range bad {
		S := NewStore(nil)
		err := S.Parse(bufio.NewReader(strings.NewReader(top)), name)
		assert.True(Te, errors.Is(err, diag.ParseError), name)
	}
}

func TestReplaceAndCase(Te *testing.T) {
	rec := new(diag.Recorder)
	S := NewStore(rec)
	S.AllCaps = false
	top := "RESI Abc 0\nATOM c1 ct 0\nEND\n"
	require.NoError(Te, S.Parse(bufio.NewReader(strings.NewReader(top)), "a"))
	r, ok := S.Residue("ABC")
	require.True(Te, ok)
	assert.Equal(Te, "Abc", r.Name)
	assert.Equal(Te, "c1", r.Atoms[0].Ref.Name)

	top2 := "RESI ABC 1.0 - \n\n"
	require.NoError(Te, S.Parse(bufio.NewReader(strings.NewReader(top2)), "b"))
	r, _ = S.Residue("abc")
	assert.InDelta(Te, 1.0, r.Charge, 1e-9)
	assert.Len(Te, rec.Lines, 1)
	assert.Equal(Te, []string{"ABC"}, S.Residues())
}
