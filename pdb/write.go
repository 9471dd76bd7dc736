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

// Package pdb writes the coordinates of a molecule in PDB format and reads
// residues and coordinates from PDB files.
package pdb

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"slices"
	"strings"

	"github.com/rmera/gopsfgen/diag"
	"github.com/rmera/gopsfgen/mol"
	"github.com/rmera/gopsfgen/topo"
	"github.com/rmera/gopsfgen/zio"
)

// A map for checking masses of elements. Just common bio-elements.
var symbolMass = map[string]float64{
	"H":  1.008,
	"C":  12.011,
	"O":  15.999,
	"N":  14.007,
	"P":  30.974,
	"S":  32.06,
	"Se": 78.96,
	"K":  39.1,
	"Ca": 40.08,
	"Mg": 24.305,
	"Cl": 35.45,
	"Na": 22.99,
	"Cu": 63.55,
	"Zn": 65.38,
	"Co": 58.93,
	"Fe": 55.845,
	"Mn": 54.94,
	"Cr": 51.996,
	"Si": 28.085,
	"Be": 9.012,
	"F":  18.998,
	"Br": 79.904,
	"I":  126.90,
}

var symbols []string

func init() {
	for k := range symbolMass {
		symbols = append(symbols, k)
	}
	slices.Sort(symbols)
}

// ElementFromMass returns the element whose mass is within 0.5 of m, or "".
func ElementFromMass(m float64) string {
	best, bestd := "", 0.5
	for _, s := range symbols {
		if d := math.Abs(symbolMass[s] - m); d < bestd {
			best, bestd = s, d
		}
	}
	return best
}

func element(store *topo.Store, a *mol.Atom) string {
	if store != nil {
		if t, ok := store.Type(a.Type); ok && t.Element != "" {
			return strings.ToUpper(t.Element)
		}
	}
	return strings.ToUpper(ElementFromMass(a.Mass))
}

// splitResid separates the insertion code from a resid such as "52A".
func splitResid(resid string) (string, byte) {
	i := len(resid)
	for i > 0 && (resid[i-1] < '0' || resid[i-1] > '9') {
		i--
	}
	if i == 0 || len(resid)-i != 1 {
		return resid, ' '
	}
	return resid[:i], resid[i]
}

// pdbName puts atom names shorter than 4 characters one column to the right,
// as in most PDB files.
func pdbName(name string) string {
	if len(name) < 4 {
		return " " + name
	}
	return name
}

func firstByte(s string) byte {
	if s == "" {
		return ' '
	}
	return s[0]
}

// Write writes the atoms of m in PDB format. Atoms without a position are written
// at the origin with an occupancy of -1, guessed ones with an occupancy of 0.
func Write(w io.Writer, m *mol.Molecule, remarks ...string) error {
	m.AssignIDs()
	out := bufio.NewWriter(w)
	out.WriteString("REMARK original generated coordinate pdb file\n")
	for _, r := range remarks {
		fmt.Fprintf(out, "REMARK %s\n", r)
	}
	out.WriteString("CRYST1    0.000    0.000    0.000  90.00  90.00  90.00 P 1           1\n")
	for _, a := range m.Atoms() {
		r := a.Residue()
		serial := fmt.Sprint(a.ID)
		if a.ID > 99999 {
			serial = "*****"
		}
		resid, ins := splitResid(r.ID)
		p := a.Pos
		occ := 1.0
		switch a.State {
		case mol.XYZVoid:
			p.X, p.Y, p.Z = 0, 0, 0
			occ = -1
		case mol.XYZGuessed:
			occ = 0
		}
		fmt.Fprintf(out, "ATOM  %5s %-4s%c%-4s%c%4s%c   %8.3f%8.3f%8.3f%6.2f%6.2f      %-4s%2s\n",
			serial, pdbName(a.Name), ' ', r.Name, firstByte(r.Chain), resid, ins,
			p.X, p.Y, p.Z, occ, a.Beta, r.Segment().ID, element(m.Store, a))
	}
	out.WriteString("END\n")
	if err := out.Flush(); err != nil {
		return diag.Wrap(diag.IoFailure, err, "writing pdb")
	}
	return nil
}

// WriteFile writes m to the PDB file name, compressed according to its extension
// with the given level, if any.
func WriteFile(name string, m *mol.Molecule, level ...int) error {
	f, err := zio.Create(name, level...)
	if err != nil {
		return err
	}
	if err := Write(f, m); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return diag.Wrap(diag.IoFailure, err, "closing %s", name).At(name, 0)
	}
	return nil
}
