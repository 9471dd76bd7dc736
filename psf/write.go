/*
 * write.go, part of gopsfgen
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

// Package psf reads and writes protein structure files, in both the CHARMM
// (numeric atom types) and the X-PLOR (named atom types) flavors, with the
// extended (EXT) field widths when needed.
package psf

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/rmera/gopsfgen/diag"
	"github.com/rmera/gopsfgen/mol"
	"github.com/rmera/gopsfgen/zio"
)

// Format is the flavor of PSF file.
type Format int

const (
	Charmm Format = iota //atom types written as indexes in the mass table
	XPlor                //atom types written as names
)

func (F Format) String() string {
	if F == Charmm {
		return "charmm"
	}
	return "x-plor"
}

// ParseFormat returns the format for "charmm" or "x-plor" ("xplor" also works).
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "charmm":
		return Charmm, nil
	case "x-plor", "xplor", "":
		return XPlor, nil
	}
	return XPlor, fmt.Errorf("ParseFormat: unknown psf format %q", s)
}

// Options controls the output of Write.
type Options struct {
	Format    Format
	Ext       bool     //use the extended format even when the standard one is enough
	NoCMap    bool     //leave the cross-terms out
	NoPatches bool     //don't list the applied patches in the title
	Remarks   []string //extra title lines
}

const maxStdAtoms = 99999999

func longer(n int, s ...string) bool {
	for _, v := range s {
		if len(v) > n {
			return true
		}
	}
	return false
}

// needsExt returns true if some field doesn't fit the standard format.
func needsExt(atoms []*mol.Atom) bool {
	if len(atoms) > maxStdAtoms {
		return true
	}
	for _, a := range atoms {
		r := a.Residue()
		if longer(4, r.Segment().ID, r.ID, r.Name, a.Name, a.Type) {
			return true
		}
	}
	return false
}

type writer struct {
	w   *bufio.Writer
	ext bool
}

func (W *writer) count(n int, title string) {
	if W.ext {
		fmt.Fprintf(W.w, "%10d %s\n", n, title)
		return
	}
	fmt.Fprintf(W.w, "%8d %s\n", n, title)
}

// section writes a list of terms as atom indexes, per terms in each line.
func (W *writer) section(title string, per int, terms []*mol.Term) {
	W.count(len(terms), title)
	for i, t := range terms {
		for _, a := range t.Atoms {
			if W.ext {
				fmt.Fprintf(W.w, "%10d", a.ID)
			} else {
				fmt.Fprintf(W.w, "%8d", a.ID)
			}
		}
		if (i+1)%per == 0 {
			W.w.WriteString("\n")
		}
	}
	if len(terms)%per != 0 {
		W.w.WriteString("\n")
	}
	W.w.WriteString("\n")
}

// segmentRemark describes the terminal patches and generation flags of a segment.
func segmentRemark(s *mol.Segment) string {
	first, last := s.First, s.Last
	res := s.Residues()
	if len(res) > 0 {
		if first == "" && res[0].Template != nil {
			first = res[0].Template.First
		}
		if last == "" && res[len(res)-1].Template != nil {
			last = res[len(res)-1].Template.Last
		}
	}
	if first == "" {
		first = "none"
	}
	if last == "" {
		last = "none"
	}
	auto := "none"
	switch {
	case s.AutoAngles && s.AutoDihedrals:
		auto = "angles dihedrals"
	case s.AutoAngles:
		auto = "angles"
	case s.AutoDihedrals:
		auto = "dihedrals"
	}
	return fmt.Sprintf("segment %s { first %s; last %s; auto %s }", s.ID, first, last, auto)
}

func patchRemark(p *mol.PatchRecord) (string, bool) {
	var b strings.Builder
	if p.Default {
		b.WriteString("defaultpatch ")
	} else {
		b.WriteString("patch ")
	}
	b.WriteString(p.Name)
	for _, r := range p.Residues {
		if r.Segment() == nil {
			return "", false
		}
		fmt.Fprintf(&b, " %s:%s", r.Segment().ID, r.ID)
	}
	return b.String(), true
}

func (W *writer) title(m *mol.Molecule, o Options) {
	lines := []string{fmt.Sprintf("original generated structure %s psf file", o.Format)}
	if m.Store != nil {
		for _, f := range m.Store.Files() {
			lines = append(lines, "topology "+f)
		}
	}
	for _, s := range m.Segments() {
		lines = append(lines, segmentRemark(s))
	}
	if !o.NoPatches {
		for _, p := range m.PatchRecords() {
			if l, ok := patchRemark(p); ok {
				lines = append(lines, l)
			}
		}
	}
	lines = append(lines, o.Remarks...)
	W.count(len(lines), "!NTITLE")
	for _, l := range lines {
		fmt.Fprintf(W.w, " REMARKS %s\n", l)
	}
	W.w.WriteString("\n")
}

func (W *writer) atoms(m *mol.Molecule, atoms []*mol.Atom, f Format) error {
	W.count(len(atoms), "!NATOM")
	for _, a := range atoms {
		r := a.Residue()
		typ := a.Type
		if f == Charmm {
			if m.Store == nil {
				return diag.New(diag.FormatError, "a charmm psf needs the mass table of the topology")
			}
			t, ok := m.Store.Type(a.Type)
			if !ok {
				return diag.New(diag.FormatError, "atom type %s has no index in the mass table", a.Type)
			}
			if W.ext {
				typ = fmt.Sprintf("%6d", t.Index)
			} else {
				typ = fmt.Sprintf("%4d", t.Index)
			}
		}
		if W.ext {
			fmt.Fprintf(W.w, "%10d %-8s %-8s %-8s %-8s %-6s %10.6f    %10.4f  %10d\n",
				a.ID, r.Segment().ID, r.ID, r.Name, a.Name, typ, a.Charge, a.Mass, 0)
		} else {
			fmt.Fprintf(W.w, "%8d %-4s %-4s %-4s %-4s %-4s %10.6f    %10.4f  %10d\n",
				a.ID, r.Segment().ID, r.ID, r.Name, a.Name, typ, a.Charge, a.Mass, 0)
		}
	}
	W.w.WriteString("\n")
	return nil
}

// Write writes the molecule m in PSF format. Atom IDs are assigned again
// before writing. The EXT format is used when any name is longer than 4
// characters or the atom count doesn't fit in 8 digits.
func Write(w io.Writer, m *mol.Molecule, o Options) error {
	m.AssignIDs()
	atoms := m.Atoms()
	W := &writer{w: bufio.NewWriter(w), ext: o.Ext || needsExt(atoms)}
	cmaps := m.CMaps()
	cmap := !o.NoCMap && len(cmaps) > 0
	W.w.WriteString("PSF")
	if W.ext {
		W.w.WriteString(" EXT")
	}
	if cmap {
		W.w.WriteString(" CMAP")
	}
	W.w.WriteString("\n\n")
	W.title(m, o)
	if err := W.atoms(m, atoms, o.Format); err != nil {
		return diag.Decorate(err, "Write")
	}
	W.section("!NBOND: bonds", 4, m.Bonds())
	W.section("!NTHETA: angles", 3, m.Angles())
	W.section("!NPHI: dihedrals", 2, m.Dihedrals())
	W.section("!NIMPHI: impropers", 2, m.Impropers())
	W.section("!NDON: donors", 4, nil)
	W.section("!NACC: acceptors", 4, nil)

	//no exclusions, so every atom has a zero
	W.count(0, "!NNB")
	W.w.WriteString("\n")
	for i := range atoms {
		W.w.WriteString(fmt.Sprintf("%8d", 0))
		if (i+1)%8 == 0 {
			W.w.WriteString("\n")
		}
	}
	if len(atoms)%8 != 0 {
		W.w.WriteString("\n")
	}
	W.w.WriteString("\n")
	fmt.Fprintf(W.w, "%8d %7d !NGRP\n%8d%8d%8d\n\n", 1, 0, 0, 0, 0)
	if cmap {
		W.section("!NCRTERM: cross-terms", 1, cmaps)
	}
	if err := W.w.Flush(); err != nil {
		return diag.Wrap(diag.IoFailure, err, "writing psf")
	}
	return nil
}

// WriteFile writes m to the file name, compressed according to its extension
// with the given level, if any.
func WriteFile(name string, m *mol.Molecule, o Options, level ...int) error {
	f, err := zio.Create(name, level...)
	if err != nil {
		return err
	}
	if err := Write(f, m, o); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return diag.Wrap(diag.IoFailure, err, "closing %s", name).At(name, 0)
	}
	return nil
}
