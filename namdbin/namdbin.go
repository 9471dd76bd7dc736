/*
 * namdbin.go, part of gopsfgen
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

// Package namdbin reads and writes NAMD binary coordinate and velocity files:
// an int32 atom count followed by one x, y, z triple of float64 per atom.
// Files are written little-endian. Files written on big-endian machines are
// recognized and read correctly.
package namdbin

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"io"
	"math"

	"github.com/rmera/gopsfgen/diag"
	"github.com/rmera/gopsfgen/zio"
	"gonum.org/v1/gonum/spatial/r3"
)

const tripleSize = 3 * 8

// Write writes coords in NAMD binary format.
func Write(w io.Writer, coords []r3.Vec) error {
	if len(coords) > math.MaxInt32 {
		return diag.New(diag.FormatError, "too many atoms for a namdbin file: %d", len(coords))
	}
	out := bufio.NewWriter(w)
	buf := make([]byte, tripleSize)
	binary.LittleEndian.PutUint32(buf, uint32(len(coords)))
	out.Write(buf[:4])
	for _, c := range coords {
		binary.LittleEndian.PutUint64(buf[0:], math.Float64bits(c.X))
		binary.LittleEndian.PutUint64(buf[8:], math.Float64bits(c.Y))
		binary.LittleEndian.PutUint64(buf[16:], math.Float64bits(c.Z))
		out.Write(buf)
	}
	if err := out.Flush(); err != nil {
		return diag.Wrap(diag.IoFailure, err, "writing namdbin")
	}
	return nil
}

// order finds the byte order of a file of size bytes that starts with head.
func order(head []byte, size int) (binary.ByteOrder, int, error) {
	for _, e := range []binary.ByteOrder{binary.LittleEndian, binary.BigEndian} {
		n := int(int32(e.Uint32(head)))
		if n >= 0 && 4+n*tripleSize == size {
			return e, n, nil
		}
	}
	return nil, 0, diag.New(diag.FormatError, "file size %d doesn't match the atom count in either byte order", size)
}

// Read reads a NAMD binary file. The size of the data must agree with the
// atom count at its start.
func Read(r io.Reader, filename string) ([]r3.Vec, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, diag.Wrap(diag.IoFailure, err, "reading namdbin").At(filename, 0)
	}
	if len(data) < 4 {
		return nil, diag.New(diag.FormatError, "namdbin file too short: %d bytes", len(data)).At(filename, 0)
	}
	e, n, err := order(data[:4], len(data))
	if err != nil {
		return nil, err.(*diag.Error).At(filename, 0)
	}
	ret := make([]r3.Vec, n)
	data = data[4:]
	for i := range ret {
		d := data[i*tripleSize:]
		ret[i] = r3.Vec{
			X: math.Float64frombits(e.Uint64(d[0:])),
			Y: math.Float64frombits(e.Uint64(d[8:])),
			Z: math.Float64frombits(e.Uint64(d[16:])),
		}
	}
	return ret, nil
}

// WriteFile writes coords to the file name, compressed according to its extension.
func WriteFile(name string, coords []r3.Vec, level ...int) error {
	f, err := zio.Create(name, level...)
	if err != nil {
		return err
	}
	if err := Write(f, coords); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return diag.Wrap(diag.IoFailure, err, "closing %s", name).At(name, 0)
	}
	return nil
}

// ReadFile reads the namdbin file name.
func ReadFile(name string) ([]r3.Vec, error) {
	data, err := zio.ReadAll(name)
	if err != nil {
		return nil, err
	}
	return Read(bytes.NewReader(data), name)
}
