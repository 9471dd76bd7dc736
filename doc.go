/*
 * doc.go, part of gopsfgen
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

/*
Package psfgen builds molecular structures for simulation from CHARMM topology
files, and writes them as PSF, PDB and NAMD binary files.

**Capabilities**

    Reads CHARMM residue topology files (RTF and the topology part of stream files).

    Builds segments residue by residue, or from the residues found in a PDB file,
	with residue and atom name aliases for PDB files that don't follow the topology.

    Applies patches, including terminal patches and patches that link several
	residues, such as disulfide bridges. A patch is applied completely or not at all.

    Generates angles and dihedrals from the bonds.

    Places atoms without coordinates using the internal coordinates of the
	topology.

    Reads and writes PSF files, CHARMM and X-PLOR flavors, with the EXT format
	when needed. Reads and writes PDB and NAMD binary coordinates. Files ending
	in .gz or .zst are compressed.

A Session holds the whole state of one build. The packages under it (topo, mol, psf,
pdb, namdbin, alias) can also be used directly.
*/
package psfgen
