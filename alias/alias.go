/*
 * alias.go, part of gopsfgen
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

// Package alias maps the residue and atom names found in coordinate files
// (e.g. HIS, or ILE CD1) to the names used by the topology (HSD, ILE CD).
package alias

import (
	"strings"

	"github.com/rmera/gopsfgen/diag"
)

type atomKey struct {
	res, atom string
}

// Table holds residue and atom aliases. The zero value is not usable, use New.
// Lookups are case-insensitive.
type Table struct {
	residues map[string]string
	atoms    map[atomKey]string
}

func New() *Table {
	return &Table{residues: make(map[string]string), atoms: make(map[atomKey]string)}
}

func up(s string) string { return strings.ToUpper(strings.TrimSpace(s)) }

// Residue declares that the residue called external in coordinate files
// is the template canonical.
func (T *Table) Residue(external, canonical string) error {
	if up(external) == "" || up(canonical) == "" {
		return diag.New(diag.UnknownTarget, "Residue: empty residue name in alias %q -> %q", external, canonical)
	}
	T.residues[up(external)] = canonical
	return nil
}

// Atom declares that, in residues with the (canonical) name resname,
// the atom called external in coordinate files is the template atom canonical.
func (T *Table) Atom(resname, external, canonical string) error {
	if up(resname) == "" || up(external) == "" || up(canonical) == "" {
		return diag.New(diag.UnknownTarget, "Atom: empty name in alias %s:%q -> %q", resname, external, canonical)
	}
	T.atoms[atomKey{up(resname), up(external)}] = canonical
	return nil
}

// ResidueName returns the canonical name for the residue name, and true if an
// alias was applied. Without an alias, name is returned as is.
func (T *Table) ResidueName(name string) (string, bool) {
	if T == nil {
		return name, false
	}
	if c, ok := T.residues[up(name)]; ok {
		return c, true
	}
	return name, false
}

// AtomName returns the canonical name for the atom name in the residue resname
// (itself a canonical name) and true if an alias was applied.
func (T *Table) AtomName(resname, name string) (string, bool) {
	if T == nil {
		return name, false
	}
	if c, ok := T.atoms[atomKey{up(resname), up(name)}]; ok {
		return c, true
	}
	return name, false
}

// Len returns the number of residue and atom aliases defined.
func (T *Table) Len() (residues, atoms int) {
	return len(T.residues), len(T.atoms)
}
