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

package psf

import (
	"bufio"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/rmera/gopsfgen/diag"
	"github.com/rmera/gopsfgen/mol"
	"github.com/rmera/gopsfgen/topo"
	"github.com/rmera/gopsfgen/zio"
)

// Atom is an atom record of a PSF file.
type Atom struct {
	Segid, Resid, Resname, Name, Type string
	Charge, Mass                      float64
}

// SegmentInfo holds the settings of a segment, as listed in the title of files
// written by this package.
type SegmentInfo struct {
	ID            string
	First, Last   string
	AutoAngles    bool
	AutoDihedrals bool
}

// PatchInfo is a patch listed in the title of the file.
type PatchInfo struct {
	Name    string
	Targets []mol.Ident
	Default bool
}

// Structure is the content of a PSF file, not yet added to any molecule.
// Term indexes are 0-based.
type Structure struct {
	Format    Format
	Ext       bool
	Remarks   []string
	Atoms     []Atom
	Bonds     [][2]int
	Angles    [][3]int
	Dihedrals [][4]int
	Impropers [][4]int
	CMaps     [][8]int
	Segments  []SegmentInfo
	Patches   []PatchInfo
	Topology  []string //topology files named in the title
}

type reader struct {
	r        *bufio.Reader
	filename string
	line     int
	eof      bool
}

func (R *reader) next() (string, error) {
	for {
		if R.eof {
			return "", io.EOF
		}
		s, err := R.r.ReadString('\n')
		if err != nil {
			if !errors.Is(err, io.EOF) {
				return "", diag.Wrap(diag.IoFailure, err, "reading psf").At(R.filename, R.line)
			}
			R.eof = true
			if s == "" {
				return "", io.EOF
			}
		}
		R.line++
		if strings.TrimSpace(s) != "" {
			return strings.TrimRight(s, "\r\n"), nil
		}
	}
}

func (R *reader) errorf(format string, a ...any) error {
	return diag.New(diag.FormatError, format, a...).At(R.filename, R.line)
}

// header reads a section header such as "  12 !NBOND: bonds", returning the counts
// before the tag and the tag itself ("NBOND").
func (R *reader) header() ([]int, string, error) {
	s, err := R.next()
	if err != nil {
		return nil, "", err
	}
	i := strings.Index(s, "!")
	if i < 0 {
		return nil, "", R.errorf("expected a section header, found %q", s)
	}
	tag := strings.Fields(s[i+1:])
	if len(tag) == 0 {
		return nil, "", R.errorf("empty section tag")
	}
	var counts []int
	for _, f := range strings.Fields(s[:i]) {
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, "", R.errorf("bad count %q in section header", f)
		}
		counts = append(counts, n)
	}
	if len(counts) == 0 {
		return nil, "", R.errorf("no count in section header %q", s)
	}
	return counts, strings.TrimSuffix(tag[0], ":"), nil
}

// ints reads n integers, spread over as many lines as needed.
func (R *reader) ints(n int) ([]int, error) {
	ret := make([]int, 0, n)
	for len(ret) < n {
		s, err := R.next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, R.errorf("file ends with %d of %d indexes read", len(ret), n)
			}
			return nil, err
		}
		for _, f := range strings.Fields(s) {
			v, err := strconv.Atoi(f)
			if err != nil {
				return nil, R.errorf("bad index %q", f)
			}
			ret = append(ret, v)
		}
	}
	if len(ret) > n {
		return nil, R.errorf("%d indexes found, %d expected", len(ret), n)
	}
	return ret, nil
}

// tuples reads count tuples of size atom indexes, and checks them against natoms.
func (R *reader) tuples(count, size, natoms int, add func([]int)) error {
	v, err := R.ints(count * size)
	if err != nil {
		return err
	}
	for i := 0; i < len(v); i += size {
		t := v[i : i+size]
		for j := range t {
			if t[j] < 1 || t[j] > natoms {
				return R.errorf("atom index %d out of range", t[j])
			}
			t[j]--
		}
		add(t)
	}
	return nil
}

func (S *Structure) remark(s string) {
	f := strings.Fields(s)
	if len(f) < 2 {
		return
	}
	switch f[0] {
	case "topology":
		S.Topology = append(S.Topology, strings.TrimSpace(strings.TrimPrefix(s, "topology")))
	case "patch", "defaultpatch":
		p := PatchInfo{Name: f[1], Default: f[0] == "defaultpatch"}
		for _, t := range f[2:] {
			segid, resid, ok := strings.Cut(t, ":")
			if !ok {
				return
			}
			p.Targets = append(p.Targets, mol.Ident{Segid: segid, Resid: resid})
		}
		S.Patches = append(S.Patches, p)
	case "segment":
		si := SegmentInfo{ID: f[1], First: "none", Last: "none"}
		body := strings.Trim(strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s[len("segment"):]), f[1])), "{} ")
		for _, item := range strings.Split(body, ";") {
			w := strings.Fields(item)
			if len(w) < 2 {
				continue
			}
			switch w[0] {
			case "first":
				si.First = w[1]
			case "last":
				si.Last = w[1]
			case "auto":
				for _, x := range w[1:] {
					switch x {
					case "angles":
						si.AutoAngles = true
					case "dihedrals":
						si.AutoDihedrals = true
					}
				}
			}
		}
		S.Segments = append(S.Segments, si)
	}
}

func (R *reader) atom(s string, store *topo.Store, S *Structure) error {
	f := strings.Fields(s)
	if len(f) < 8 {
		return R.errorf("atom record with %d fields", len(f))
	}
	a := Atom{Segid: f[1], Resid: f[2], Resname: f[3], Name: f[4], Type: f[5]}
	var err1, err2 error
	a.Charge, err1 = strconv.ParseFloat(f[6], 64)
	a.Mass, err2 = strconv.ParseFloat(f[7], 64)
	if err1 != nil || err2 != nil {
		return R.errorf("bad charge or mass in %q", s)
	}
	if idx, err := strconv.Atoi(a.Type); err == nil {
		S.Format = Charmm
		if store == nil {
			return R.errorf("numeric atom type %d, but no mass table to look it up", idx)
		}
		t, ok := store.TypeByIndex(idx)
		if !ok {
			return R.errorf("atom type index %d not in the mass table", idx)
		}
		a.Type = t.Name
	}
	S.Atoms = append(S.Atoms, a)
	return nil
}

// Read parses a PSF file, in either format. store is only needed for CHARMM
// files, to turn the numeric atom types into names.
func Read(r io.Reader, store *topo.Store, filename string) (*Structure, error) {
	R := &reader{r: bufio.NewReader(r), filename: filename}
	S := &Structure{Format: XPlor}
	s, err := R.next()
	if err != nil || !strings.HasPrefix(strings.TrimSpace(s), "PSF") {
		return nil, R.errorf("not a psf file")
	}
	for _, f := range strings.Fields(s)[1:] {
		if f == "EXT" {
			S.Ext = true
		}
	}
	counts, tag, err := R.header()
	if err != nil {
		return nil, err
	}
	if tag != "NTITLE" {
		return nil, R.errorf("expected !NTITLE, found !%s", tag)
	}
	for i := 0; i < counts[0]; i++ {
		s, err := R.next()
		if err != nil {
			return nil, R.errorf("title ends early")
		}
		s = strings.TrimSpace(s)
		S.Remarks = append(S.Remarks, s)
		if rest, ok := strings.CutPrefix(s, "REMARKS "); ok {
			S.remark(strings.TrimSpace(rest))
		}
	}
	counts, tag, err = R.header()
	if err != nil {
		return nil, err
	}
	if tag != "NATOM" {
		return nil, R.errorf("expected !NATOM, found !%s", tag)
	}
	natoms := counts[0]
	for i := 0; i < natoms; i++ {
		s, err := R.next()
		if err != nil {
			return nil, R.errorf("file ends with %d of %d atoms read", i, natoms)
		}
		if err := R.atom(s, store, S); err != nil {
			return nil, err
		}
	}
	for {
		counts, tag, err := R.header()
		if errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			return nil, err
		}
		n := counts[0]
		switch tag {
		case "NBOND":
			err = R.tuples(n, 2, natoms, func(t []int) { S.Bonds = append(S.Bonds, [2]int(t)) })
		case "NTHETA":
			err = R.tuples(n, 3, natoms, func(t []int) { S.Angles = append(S.Angles, [3]int(t)) })
		case "NPHI":
			err = R.tuples(n, 4, natoms, func(t []int) { S.Dihedrals = append(S.Dihedrals, [4]int(t)) })
		case "NIMPHI":
			err = R.tuples(n, 4, natoms, func(t []int) { S.Impropers = append(S.Impropers, [4]int(t)) })
		case "NCRTERM":
			err = R.tuples(n, 8, natoms, func(t []int) { S.CMaps = append(S.CMaps, [8]int(t)) })
		case "NDON", "NACC":
			_, err = R.ints(2 * n)
		case "NNB":
			_, err = R.ints(n + natoms)
		case "NGRP":
			_, err = R.ints(3 * n)
		default:
			//sections we know nothing about end the useful part of the file
			return S, nil
		}
		if err != nil {
			return nil, err
		}
	}
	return S, nil
}

// ReadFile reads the PSF file name, which can be compressed.
func ReadFile(name string, store *topo.Store) (*Structure, error) {
	f, err := zio.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f, store, name)
}

// Apply adds the structure to m as new segments, after the existing ones.
// Nothing is added if any of its segments already exists or the structure is
// inconsistent.
func (S *Structure) Apply(m *mol.Molecule) error {
	type resKey struct{ seg, res string }
	segs := make(map[string]bool)
	residues := make(map[resKey]bool)
	names := make(map[resKey]map[string]bool)
	prevSeg, prevRes := "", ""
	for i, a := range S.Atoms {
		if a.Segid == "" || a.Resid == "" {
			return diag.New(diag.FormatError, "atom %d has no segment name or resid", i+1)
		}
		if len(a.Segid) > mol.MaxSegidLen {
			return diag.New(diag.SegmentIdTooLong, "segment name %q has more than %d characters", a.Segid, mol.MaxSegidLen)
		}
		if i == 0 || a.Segid != prevSeg {
			if segs[a.Segid] || m.Segment(a.Segid) != nil {
				return diag.New(diag.DuplicateSegment, "segment %s already exists", a.Segid)
			}
			segs[a.Segid] = true
			prevRes = ""
		}
		k := resKey{a.Segid, a.Resid}
		if a.Resid != prevRes || a.Segid != prevSeg {
			if residues[k] {
				return diag.New(diag.DuplicateResidue, "residue %s:%s is not contiguous", a.Segid, a.Resid)
			}
			residues[k] = true
			names[k] = make(map[string]bool)
		}
		if names[k][strings.ToUpper(a.Name)] {
			return diag.New(diag.DuplicateAtom, "atom %s repeated in residue %s:%s", a.Name, a.Segid, a.Resid)
		}
		names[k][strings.ToUpper(a.Name)] = true
		prevSeg, prevRes = a.Segid, a.Resid
	}

	atoms := make([]*mol.Atom, 0, len(S.Atoms))
	var seg *mol.Segment
	var res *mol.Residue
	for _, a := range S.Atoms {
		var err error
		if seg == nil || seg.ID != a.Segid {
			if seg, err = m.CreateSegment(a.Segid); err != nil {
				return diag.Decorate(err, "Apply")
			}
			res = nil
		}
		if res == nil || res.ID != a.Resid {
			if res, err = seg.AppendResidue(a.Resid, a.Resname, ""); err != nil {
				return diag.Decorate(err, "Apply")
			}
		}
		at := &mol.Atom{Name: a.Name, Type: a.Type, Charge: a.Charge, Mass: a.Mass, Pos: mol.VoidPosition}
		if err := res.AppendAtom(at); err != nil {
			return diag.Decorate(err, "Apply")
		}
		atoms = append(atoms, at)
	}
	for _, b := range S.Bonds {
		m.AddTerm(mol.BondTerm, atoms[b[0]], atoms[b[1]])
	}
	for _, t := range S.Angles {
		m.AddTerm(mol.AngleTerm, atoms[t[0]], atoms[t[1]], atoms[t[2]])
	}
	for _, t := range S.Dihedrals {
		m.AddTerm(mol.DihedralTerm, atoms[t[0]], atoms[t[1]], atoms[t[2]], atoms[t[3]])
	}
	for _, t := range S.Impropers {
		m.AddTerm(mol.ImproperTerm, atoms[t[0]], atoms[t[1]], atoms[t[2]], atoms[t[3]])
	}
	for _, t := range S.CMaps {
		c := make([]*mol.Atom, 8)
		for i := range t {
			c[i] = atoms[t[i]]
		}
		m.AddTerm(mol.CMapTerm, c...)
	}
	for _, si := range S.Segments {
		if s := m.Segment(si.ID); s != nil && segs[si.ID] {
			s.First, s.Last = si.First, si.Last
			s.AutoAngles, s.AutoDihedrals = si.AutoAngles, si.AutoDihedrals
		}
	}
	for _, p := range S.Patches {
		ok := len(p.Targets) > 0
		for _, t := range p.Targets {
			ok = ok && segs[t.Segid]
		}
		if ok {
			if err := m.RecordPatch(p.Name, p.Targets, p.Default); err != nil {
				return diag.Decorate(err, "Apply")
			}
		}
	}
	m.AssignIDs()
	return nil
}
