/*
 * read.go, part of gopsfgen
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
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/rmera/gopsfgen/diag"
	"github.com/rmera/gopsfgen/mol"
	"gonum.org/v1/gonum/spatial/r3"
)

// Residue is a residue as found in a PDB file.
type Residue struct {
	Resid   string
	Resname string
	Chain   string
}

// record is one ATOM or HETATM line.
type record struct {
	name    string
	resname string
	chain   string
	resid   string //includes the insertion code
	segid   string
	pos     r3.Vec
	line    int
}

// field returns the trimmed columns [from,to) of l, which may be shorter than to.
func field(l string, from, to int) string {
	if from >= len(l) {
		return ""
	}
	if to > len(l) {
		to = len(l)
	}
	return strings.TrimSpace(l[from:to])
}

// readLine parses a line with the fixed PDB columns.
func readLine(l string) (record, error) {
	var err error
	var r record
	r.name = field(l, 12, 16)
	r.resname = field(l, 17, 21)
	r.chain = field(l, 21, 22)
	r.resid = field(l, 22, 27)
	r.segid = field(l, 72, 76)
	var c [3]float64
	for i := range c {
		c[i], err = strconv.ParseFloat(field(l, 30+8*i, 38+8*i), 64)
		if err != nil {
			return r, diag.Wrap(diag.FormatError, err, "bad coordinate in atom record")
		}
	}
	r.pos = r3.Vec{X: c[0], Y: c[1], Z: c[2]}
	if r.name == "" || r.resid == "" {
		return r, diag.New(diag.FormatError, "atom record without atom name or resid")
	}
	return r, nil
}

// records calls f for each ATOM/HETATM line in r until the first END
// or ENDMDL, so only the first model of a multi-model file is read.
func records(r io.Reader, filename string, f func(record) error) error {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 1024), 1024*1024)
	n := 0
	for s.Scan() {
		n++
		l := s.Text()
		if strings.HasPrefix(l, "END") {
			break
		}
		if !strings.HasPrefix(l, "ATOM") && !strings.HasPrefix(l, "HETATM") {
			continue
		}
		rec, err := readLine(l)
		if err != nil {
			return err.(*diag.Error).At(filename, n)
		}
		rec.line = n
		if err := f(rec); err != nil {
			return err
		}
	}
	if err := s.Err(); err != nil {
		return diag.Wrap(diag.IoFailure, err, "reading pdb").At(filename, n)
	}
	return nil
}

// ReadResidues returns the residues in the PDB file, in order. A new residue starts
// whenever the resid or the residue name changes.
func ReadResidues(r io.Reader, filename string) ([]Residue, error) {
	var ret []Residue
	err := records(r, filename, func(rec record) error {
		if len(ret) > 0 {
			last := ret[len(ret)-1]
			if last.Resid == rec.resid && last.Resname == rec.resname {
				return nil
			}
		}
		ret = append(ret, Residue{Resid: rec.resid, Resname: rec.resname, Chain: rec.chain})
		return nil
	})
	if err != nil {
		return nil, diag.Decorate(err, "ReadResidues")
	}
	return ret, nil
}

// ReadCoords sets the positions of the atoms of m found in the PDB file. Atoms are
// looked for in the segment segid or, if segid is empty, in the segment named in
// the segid columns of each record. Residue and atom names are translated with
// the aliases of m. Atoms that can't be found, or residues with a different name
// than the one in the file, are reported to the sink of m and skipped.
// It returns the number of atoms whose position was set.
func ReadCoords(r io.Reader, m *mol.Molecule, segid, filename string) (int, error) {
	set := 0
	seen := make(map[*mol.Atom]bool)
	sink := m.Sink()
	err := records(r, filename, func(rec record) error {
		sid := segid
		if sid == "" {
			sid = rec.segid
		}
		seg := m.Segment(sid)
		if seg == nil {
			diag.Warnf(sink, "failed to set coordinate for atom %s %s:%s:%s (no such segment)", rec.name, rec.resname, rec.resid, sid)
			return nil
		}
		res := seg.Residue(rec.resid)
		if res == nil {
			diag.Warnf(sink, "failed to set coordinate for atom %s %s:%s:%s (no such residue)", rec.name, rec.resname, rec.resid, sid)
			return nil
		}
		resname, _ := m.Aliases.ResidueName(rec.resname)
		if !strings.EqualFold(resname, res.Name) {
			diag.Warnf(sink, "residue %s:%s is %s in the structure but %s in %s, skipping atom %s", sid, rec.resid, res.Name, rec.resname, filename, rec.name)
			return nil
		}
		name, _ := m.Aliases.AtomName(res.Name, rec.name)
		a := res.Atom(name)
		if a == nil {
			diag.Warnf(sink, "failed to set coordinate for atom %s %s:%s:%s", rec.name, rec.resname, rec.resid, sid)
			return nil
		}
		if seen[a] {
			diag.Warnf(sink, "duplicate coordinates for atom %s %s:%s:%s at line %d", rec.name, rec.resname, rec.resid, sid, rec.line)
		}
		seen[a] = true
		a.SetPosition(rec.pos)
		set++
		return nil
	})
	if err != nil {
		return set, diag.Decorate(err, "ReadCoords")
	}
	return set, nil
}

// ReadOrdered returns the coordinates of every atom record, in file order.
func ReadOrdered(r io.Reader, filename string) ([]r3.Vec, error) {
	var ret []r3.Vec
	err := records(r, filename, func(rec record) error {
		ret = append(ret, rec.pos)
		return nil
	})
	if err != nil {
		return nil, diag.Decorate(err, "ReadOrdered")
	}
	return ret, nil
}
