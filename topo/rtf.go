/*
 * rtf.go, part of gopsfgen
 *
 * Copyright 2025 Raul Mera A. (rmeraaatacademicosdotutadotcl)
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package topo

import (
	"bufio"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/rmera/gopsfgen/diag"
	"github.com/rmera/gopsfgen/zio"
)

// StringReader is what the parser needs to read a topology.
// *bufio.Reader implements it.
type StringReader interface {
	ReadString(delim byte) (string, error)
}

// ReadFile parses the CHARMM topology file name (possibly compressed) into the store.
// The file is added to the list of known topology files only if the parsing succeeds.
func (S *Store) ReadFile(name string) error {
	f, err := zio.Open(name)
	if err != nil {
		return diag.Decorate(err, "ReadFile")
	}
	defer f.Close()
	if err = S.Parse(bufio.NewReader(f), name); err != nil {
		return diag.Decorate(err, "ReadFile")
	}
	S.AddFile(name)
	return nil
}

// Returns s without CHARMM comments (anything after a '!') and without
// leading and trailing spaces, tabs and newlines.
func cleanString(s string) string {
	f := strings.SplitN(s, "!", 2)[0]
	return strings.Trim(f, "\r\n\t ")
}

// returns true if the line continues in the next one (ends in a lone '-')
func continues(s string) bool {
	f := strings.Fields(s)
	return len(f) > 0 && f[len(f)-1] == "-"
}

// rtfParser holds the state while one file is read.
type rtfParser struct {
	S        *Store
	filename string
	line     int
	current  *Residue
}

func (p *rtfParser) errorf(format string, a ...any) error {
	return diag.New(diag.ParseError, format, a...).At(p.filename, p.line)
}

func (p *rtfParser) name(s string) string {
	if p.S.AllCaps {
		return strings.ToUpper(s)
	}
	return s
}

// commit puts the residue being read, if any, in the store.
func (p *rtfParser) commit() {
	if p.current != nil {
		p.S.Add(p.current)
		p.current = nil
	}
}

// Parse reads a CHARMM residue topology from r and adds its templates to the store.
// filename is only used for error messages and provenance of the templates.
// Later templates with the same name replace earlier ones. On error, the templates
// completed before the offending line stay in the store, and the error, of kind
// diag.ParseError, carries the file and line.
func (S *Store) Parse(r StringReader, filename string) error {
	p := &rtfParser{S: S, filename: filename}
	var s, prev string
	var err error
	for s, err = r.ReadString('\n'); err == nil || (errors.Is(err, io.EOF) && s != ""); s, err = r.ReadString('\n') {
		p.line++
		s = cleanString(s)
		if continues(s) {
			prev += strings.TrimSuffix(s, "-") + " "
			if err != nil {
				break
			}
			continue
		}
		s = prev + s
		prev = ""
		if s == "" || strings.HasPrefix(s, "*") {
			if err != nil {
				break
			}
			continue
		}
		done, perr := p.record(s)
		if perr != nil {
			p.current = nil
			return perr
		}
		if done || err != nil {
			break
		}
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return diag.Wrap(diag.IoFailure, err, "reading topology").At(filename, p.line)
	}
	p.commit()
	return nil
}

// keyword returns the canonical 4-letter form of the first field of a record.
func keyword(f string) string {
	f = strings.ToUpper(f)
	if len(f) > 4 {
		f = f[:4]
	}
	return f
}

// record processes one clean line. It returns true if the line ends the topology.
func (p *rtfParser) record(s string) (bool, error) {
	f := strings.Fields(s)
	if _, err := strconv.ParseFloat(f[0], 64); err == nil {
		//version line
		return false, nil
	}
	kw := keyword(f[0])
	args := f[1:]
	switch kw {
	case "END", "RETU":
		p.commit()
		return true, nil
	case "READ", "DECL", "GROU", "DONO", "ACCE", "ANIS", "PRIN":
		return false, nil
	case "LONE":
		diag.Warnf(p.S.sink, "%s:%d: lone pairs are not supported, record ignored", p.filename, p.line)
		return false, nil
	case "MASS":
		return false, p.mass(args)
	case "DEFA":
		first, last, err := p.firstLast(args)
		if err != nil {
			return false, err
		}
		if first != "" {
			p.S.First = first
		}
		if last != "" {
			p.S.Last = last
		}
		return false, nil
	case "AUTO":
		for _, v := range args {
			switch keyword(v) {
			case "ANGL":
				p.S.AutoAngles = true
			case "DIHE":
				p.S.AutoDihedrals = true
			case "NOAN":
				p.S.AutoAngles = false
			case "NODI":
				p.S.AutoDihedrals = false
			case "NONE":
				p.S.AutoAngles = false
				p.S.AutoDihedrals = false
			default:
				return false, p.errorf("unknown AUTO option %s", v)
			}
		}
		return false, nil
	case "RESI", "PRES":
		return false, p.header(kw == "PRES", args)
	}
	//everything below needs a residue.
	if p.current == nil {
		return false, p.errorf("%s record outside of a residue", f[0])
	}
	var err error
	switch kw {
	case "ATOM":
		err = p.atom(args)
	case "BOND", "DOUB", "TRIP":
		err = p.tuples(args, 2, func(r []AtomRef) {
			p.current.Bonds = append(p.current.Bonds, [2]AtomRef(r))
		})
	case "ANGL", "THET":
		err = p.tuples(args, 3, func(r []AtomRef) {
			p.current.Angles = append(p.current.Angles, [3]AtomRef(r))
		})
	case "DIHE", "PHI":
		err = p.tuples(args, 4, func(r []AtomRef) {
			p.current.Dihedrals = append(p.current.Dihedrals, [4]AtomRef(r))
		})
	case "IMPR", "IMPH":
		err = p.tuples(args, 4, func(r []AtomRef) {
			p.current.Impropers = append(p.current.Impropers, [4]AtomRef(r))
		})
	case "CMAP":
		err = p.tuples(args, 8, func(r []AtomRef) {
			p.current.CMaps = append(p.current.CMaps, [8]AtomRef(r))
		})
	case "IC", "BILD":
		err = p.ic(args)
	case "DELE":
		err = p.delete(args)
	case "PATC":
		var first, last string
		first, last, err = p.firstLast(args)
		if first != "" {
			p.current.First = first
		}
		if last != "" {
			p.current.Last = last
		}
	default:
		err = p.errorf("unknown record type %s", f[0])
	}
	return false, err
}

// MASS index type mass [element]
func (p *rtfParser) mass(args []string) error {
	if len(args) < 3 {
		return p.errorf("MASS record needs index, type and mass")
	}
	index, err := strconv.Atoi(args[0])
	if err != nil {
		return p.errorf("bad MASS index %s", args[0])
	}
	mass, err := strconv.ParseFloat(args[2], 64)
	if err != nil {
		return p.errorf("bad mass %s for type %s", args[2], args[1])
	}
	m := MassType{Index: index, Name: p.name(args[1]), Mass: mass}
	if len(args) > 3 {
		m.Element = args[3]
	}
	p.S.AddType(m)
	return nil
}

// reads the "FIRST x LAST y" options of DEFA and PATC records.
func (p *rtfParser) firstLast(args []string) (first, last string, err error) {
	if len(args)%2 != 0 {
		return "", "", p.errorf("FIRST/LAST options come in pairs")
	}
	for i := 0; i < len(args); i += 2 {
		switch keyword(args[i]) {
		case "FIRS":
			first = p.name(args[i+1])
		case "LAST":
			last = p.name(args[i+1])
		default:
			return "", "", p.errorf("unknown option %s, expected FIRST or LAST", args[i])
		}
	}
	return first, last, nil
}

// RESI/PRES name [charge] [NOANgles] [NODIhedrals]
func (p *rtfParser) header(patch bool, args []string) error {
	p.commit()
	if len(args) < 1 {
		return p.errorf("residue record without a name")
	}
	r := &Residue{
		Name:   p.name(args[0]),
		Patch:  patch,
		First:  p.S.First,
		Last:   p.S.Last,
		Source: p.filename,
	}
	for _, v := range args[1:] {
		switch keyword(v) {
		case "NOAN":
			r.NoAngles = true
		case "NODI":
			r.NoDihedrals = true
		default:
			c, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return p.errorf("bad charge %s for residue %s", v, args[0])
			}
			r.Charge = c
		}
	}
	if patch {
		r.First, r.Last = "", ""
	}
	p.current = r
	return nil
}

// ref parses an atom reference. In patches, a leading number gives the (1-based) target.
// A leading '-' or '+' refers to the previous or next residue.
func (p *rtfParser) ref(s string) (AtomRef, error) {
	var r AtomRef
	if p.current.Patch {
		i := 0
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
		}
		if i > 0 && i < len(s) {
			t, _ := strconv.Atoi(s[:i])
			if t < 1 {
				return r, p.errorf("bad patch target in %s", s)
			}
			r.Target = t - 1
			s = s[i:]
		}
	}
	switch {
	case strings.HasPrefix(s, "-"):
		r.Offset = Previous
		s = s[1:]
	case strings.HasPrefix(s, "+"):
		r.Offset = Next
		s = s[1:]
	}
	if s == "" {
		return r, p.errorf("empty atom name")
	}
	r.Name = p.name(s)
	return r, nil
}

// ATOM name type charge
func (p *rtfParser) atom(args []string) error {
	if len(args) < 3 {
		return p.errorf("ATOM record needs name, type and charge")
	}
	ref, err := p.ref(args[0])
	if err != nil {
		return err
	}
	if ref.Offset != Self {
		return p.errorf("atom %s can't be declared in another residue", args[0])
	}
	charge, err := strconv.ParseFloat(args[2], 64)
	if err != nil {
		return p.errorf("bad charge %s for atom %s", args[2], args[0])
	}
	for _, v := range p.current.Atoms {
		if v.Ref == ref {
			return p.errorf("duplicate atom %s in residue %s", args[0], p.current.Name)
		}
	}
	p.current.Atoms = append(p.current.Atoms, AtomSpec{Ref: ref, Type: p.name(args[1]), Charge: charge})
	return nil
}

// tuples reads args as consecutive groups of n atom references and gives each to add.
func (p *rtfParser) tuples(args []string, n int, add func([]AtomRef)) error {
	if len(args) == 0 || len(args)%n != 0 {
		return p.errorf("expected groups of %d atoms, got %d names", n, len(args))
	}
	for i := 0; i < len(args); i += n {
		refs := make([]AtomRef, n)
		for j := range refs {
			r, err := p.ref(args[i+j])
			if err != nil {
				return err
			}
			refs[j] = r
		}
		add(refs)
	}
	return nil
}

// IC I J [*]K L R12 T123 PHI T234 R34
func (p *rtfParser) ic(args []string) error {
	if len(args) != 9 {
		return p.errorf("IC record needs 4 atoms and 5 values, got %d fields", len(args))
	}
	var ic IC
	for i := 0; i < 4; i++ {
		s := args[i]
		if i == 2 && strings.HasPrefix(s, "*") {
			ic.Improper = true
			s = s[1:]
		}
		r, err := p.ref(s)
		if err != nil {
			return err
		}
		ic.Atoms[i] = r
	}
	vals, err := parsefloats(args[4:]...)
	if err != nil {
		return p.errorf("bad IC value: %v", err)
	}
	ic.R12, ic.T123, ic.Phi, ic.T234, ic.R34 = vals[0], vals[1], vals[2], vals[3], vals[4]
	p.current.ICs = append(p.current.ICs, ic)
	return nil
}

// DELETE ATOM|BOND|ANGLE|DIHEDRAL|IMPROPER refs...
func (p *rtfParser) delete(args []string) error {
	if len(args) < 2 {
		return p.errorf("DELETE needs a record type and atoms")
	}
	R := p.current
	switch keyword(args[0]) {
	case "ATOM":
		return p.tuples(args[1:], 1, func(r []AtomRef) { R.DeleteAtoms = append(R.DeleteAtoms, r[0]) })
	case "BOND":
		return p.tuples(args[1:], 2, func(r []AtomRef) { R.DeleteBonds = append(R.DeleteBonds, [2]AtomRef(r)) })
	case "ANGL", "THET":
		return p.tuples(args[1:], 3, func(r []AtomRef) { R.DeleteAngles = append(R.DeleteAngles, [3]AtomRef(r)) })
	case "DIHE", "PHI":
		return p.tuples(args[1:], 4, func(r []AtomRef) { R.DeleteDihedrals = append(R.DeleteDihedrals, [4]AtomRef(r)) })
	case "IMPR", "IMPH":
		return p.tuples(args[1:], 4, func(r []AtomRef) { R.DeleteImpropers = append(R.DeleteImpropers, [4]AtomRef(r)) })
	case "DONO", "ACCE":
		return nil
	}
	return p.errorf("can't delete %s records", args[0])
}

func parsefloats(s ...string) ([]float64, error) {
	r := make([]float64, 0, len(s))
	for _, v := range s {
		i, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, err
		}
		r = append(r, i)
	}
	return r, nil
}
