/*
 * namdbin_test.go, part of gopsfgen
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

package namdbin

import (
	"bytes"
	"encoding/binary"
	"math"
	"path/filepath"
	"testing"

	"github.com/rmera/gopsfgen/diag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

var coords = []r3.Vec{
	{X: 1, Y: 2, Z: 3},
	{X: -0.125, Y: 1e-10, Z: 12345.678},
	{X: 0, Y: 0, Z: 0},
}

func TestWrite(Te *testing.T) {
	var b bytes.Buffer
	require.NoError(Te, Write(&b, coords))
	data := b.Bytes()
	require.Len(Te, data, 4+3*24)
	assert.Equal(Te, uint32(3), binary.LittleEndian.Uint32(data))
	assert.Equal(Te, -0.125, math.Float64frombits(binary.LittleEndian.Uint64(data[4+24:])))

	got, err := Read(bytes.NewReader(data), "x.bin")
	require.NoError(Te, err)
	assert.Equal(Te, coords, got)
}

func TestBigEndian(Te *testing.T) {
	var b bytes.Buffer
	binary.Write(&b, binary.BigEndian, int32(len(coords)))
	for _, c := range coords {
		binary.Write(&b, binary.BigEndian, [3]float64{c.X, c.Y, c.Z})
	}
	got, err := Read(&b, "big.bin")
	require.NoError(Te, err)
	assert.Equal(Te, coords, got)
}

func TestSizeMismatch(Te *testing.T) {
	var b bytes.Buffer
	require.NoError(Te, Write(&b, coords))
	data := b.Bytes()
	_, err := Read(bytes.NewReader(data[:len(data)-8]), "cut.bin")
	assert.ErrorIs(Te, err, diag.FormatError)
	_, err = Read(bytes.NewReader(data[:2]), "cut.bin")
	assert.ErrorIs(Te, err, diag.FormatError)

	got, err := Read(bytes.NewReader(data[:4:4]), "empty.bin")
	assert.ErrorIs(Te, err, diag.FormatError)
	assert.Nil(Te, got)

	var e bytes.Buffer
	require.NoError(Te, Write(&e, nil))
	got, err = Read(&e, "none.bin")
	require.NoError(Te, err)
	assert.Empty(Te, got)
}

func TestFile(Te *testing.T) {
	name := filepath.Join(Te.TempDir(), "c.coor.gz")
	require.NoError(Te, WriteFile(name, coords))
	got, err := ReadFile(name)
	require.NoError(Te, err)
	assert.Equal(Te, coords, got)
	_, err = ReadFile(filepath.Join(Te.TempDir(), "missing.coor"))
	assert.ErrorIs(Te, err, diag.IoFailure)
}
