/*
 * psf_test.go, part of gopsfgen
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

package psf

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rmera/gopsfgen/diag"
	"github.com/rmera/gopsfgen/mol"
	"github.com/rmera/gopsfgen/topo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTop = "../testdata/top_test.rtf"

func peptide(Te *testing.T, segid string) *mol.Molecule {
	S := topo.NewStore(nil)
	require.NoError(Te, S.ReadFile(testTop))
	M := mol.New(S, nil, nil)
	M.TerminalDefaults = true
	_, err := M.BeginSegment(segid)
	require.NoError(Te, err)
	for i, r := range []string{"GLY", "ALA", "CYS"} {
		_, err := M.AddResidue(string(rune('1'+i)), r, "")
		require.NoError(Te, err)
	}
	require.NoError(Te, M.EndSegment())
	return M
}

func tuples(T []*mol.Term) []string {
	ret := make([]string, len(T))
	for i, t := range T {
		ret[i] = t.String()
	}
	return ret
}

func TestWriteXPlor(Te *testing.T) {
	M := peptide(Te, "P")
	var b bytes.Buffer
	require.NoError(Te, Write(&b, M, Options{Format: XPlor}))
	lines := strings.Split(b.String(), "\n")
	assert.Equal(Te, "PSF CMAP", lines[0])
	assert.Equal(Te, "", lines[1])
	assert.Equal(Te, "       5 !NTITLE", lines[2])
	assert.Equal(Te, " REMARKS original generated structure x-plor psf file", lines[3])
	assert.Equal(Te, " REMARKS topology ../testdata/top_test.rtf", lines[4])
	assert.Equal(Te, " REMARKS segment P { first NTER; last CTER; auto angles dihedrals }", lines[5])
	assert.Equal(Te, " REMARKS defaultpatch NTER P:1", lines[6])
	assert.Equal(Te, " REMARKS defaultpatch CTER P:3", lines[7])
	assert.Contains(Te, b.String(), "      32 !NATOM\n")
	assert.Contains(Te, b.String(), "       1 P    1    GLY  N    NH3   -0.300000       14.0070           0\n")
	assert.Contains(Te, b.String(), "       1 !NCRTERM: cross-terms\n")
	assert.Contains(Te, b.String(), "       1       0 !NGRP\n       0       0       0\n")
}

func TestWriteCharmmExt(Te *testing.T) {
	M := peptide(Te, "PROTA")
	var b bytes.Buffer
	require.NoError(Te, Write(&b, M, Options{Format: Charmm, NoCMap: true, NoPatches: true}))
	s := b.String()
	assert.True(Te, strings.HasPrefix(s, "PSF EXT\n\n"))
	assert.Contains(Te, s, "         3 !NTITLE\n")
	//NH3 gets index 26 from the mass table
	assert.Contains(Te, s, "         1 PROTA    1        GLY      N            26  -0.300000       14.0070           0\n")
	assert.NotContains(Te, s, "NCRTERM")
}

func roundTrip(Te *testing.T, M *mol.Molecule, o Options) *mol.Molecule {
	var b bytes.Buffer
	require.NoError(Te, Write(&b, M, o))
	S, err := Read(&b, M.Store, "test.psf")
	require.NoError(Te, err)
	assert.Equal(Te, o.Format, S.Format)
	M2 := mol.New(M.Store, nil, nil)
	require.NoError(Te, S.Apply(M2))
	return M2
}

func TestRoundTrip(Te *testing.T) {
	for _, f := range []Format{XPlor, Charmm} {
		M := peptide(Te, "P")
		M2 := roundTrip(Te, M, Options{Format: f})
		a1, a2 := M.Atoms(), M2.Atoms()
		require.Equal(Te, len(a1), len(a2))
		for i := range a1 {
			assert.Equal(Te, a1[i].Name, a2[i].Name)
			assert.Equal(Te, a1[i].Type, a2[i].Type)
			assert.InDelta(Te, a1[i].Charge, a2[i].Charge, 1e-6)
			assert.InDelta(Te, a1[i].Mass, a2[i].Mass, 1e-4)
			assert.Equal(Te, i+1, a2[i].ID)
		}
		assert.Equal(Te, tuples(M.Bonds()), tuples(M2.Bonds()))
		assert.Equal(Te, tuples(M.Angles()), tuples(M2.Angles()))
		assert.Equal(Te, tuples(M.Dihedrals()), tuples(M2.Dihedrals()))
		assert.Equal(Te, tuples(M.Impropers()), tuples(M2.Impropers()))
		assert.Equal(Te, tuples(M.CMaps()), tuples(M2.CMaps()))
		assert.Equal(Te, M.Patches(true), M2.Patches(true))
		seg := M2.Segment("P")
		assert.Equal(Te, "NTER", seg.First)
		assert.Equal(Te, "CTER", seg.Last)
		assert.Equal(Te, []string{"1", "2", "3"}, seg.Resids())

		//reading the same structure again clashes with it
		var b bytes.Buffer
		require.NoError(Te, Write(&b, M, Options{Format: f}))
		S, err := Read(&b, M.Store, "")
		require.NoError(Te, err)
		assert.ErrorIs(Te, S.Apply(M2), diag.DuplicateSegment)
		assert.Equal(Te, len(a1), M2.NumAtoms())
	}
}

func TestRoundTripFile(Te *testing.T) {
	M := peptide(Te, "P")
	name := filepath.Join(Te.TempDir(), "pep.psf.gz")
	require.NoError(Te, WriteFile(name, M, Options{}))
	S, err := ReadFile(name, M.Store)
	require.NoError(Te, err)
	assert.Len(Te, S.Atoms, M.NumAtoms())
	assert.Equal(Te, []string{testTop}, S.Topology)
}

func TestReadErrors(Te *testing.T) {
	_, err := Read(strings.NewReader("REMARK not a psf\n"), nil, "x.psf")
	assert.ErrorIs(Te, err, diag.FormatError)

	M := peptide(Te, "P")
	var b bytes.Buffer
	require.NoError(Te, Write(&b, M, Options{Format: Charmm}))
	_, err = Read(bytes.NewReader(b.Bytes()), nil, "x.psf")
	assert.ErrorIs(Te, err, diag.FormatError)

	cut := b.String()[:strings.Index(b.String(), "!NTHETA")+40]
	_, err = Read(strings.NewReader(cut), M.Store, "x.psf")
	assert.ErrorIs(Te, err, diag.FormatError)
}

func TestParseFormat(Te *testing.T) {
	f, err := ParseFormat("CHARMM")
	require.NoError(Te, err)
	assert.Equal(Te, Charmm, f)
	f, err = ParseFormat("x-plor")
	require.NoError(Te, err)
	assert.Equal(Te, XPlor, f)
	_, err = ParseFormat("gromacs")
	assert.Error(Te, err)
}
