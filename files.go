/*
 * files.go, part of gopsfgen
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

package psfgen

import (
	"bytes"
	"io"

	"github.com/rmera/gopsfgen/diag"
	"github.com/rmera/gopsfgen/namdbin"
	"github.com/rmera/gopsfgen/pdb"
	"github.com/rmera/gopsfgen/psf"
	"github.com/rmera/gopsfgen/zio"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/spatial/r3"
)

// PSFCompanions names the coordinate files read along with a PSF file.
// Empty names are skipped. When both PDB and Bin are given, the binary
// coordinates are the ones kept.
type PSFCompanions struct {
	PDB string
	Bin string
	Vel string //velocities, in namdbin format
}

// Outputs names the files written by WriteAll. Empty names are skipped.
type Outputs struct {
	PSF        string
	PSFOptions *psf.Options //nil means the session defaults
	PDB        string
	Bin        string
	Vel        string
}

// PSFOptions returns the PSF options given by the session settings.
func (S *Session) PSFOptions() psf.Options {
	f, err := S.cfg.Format()
	if err != nil {
		f = psf.XPlor
	}
	return psf.Options{Format: f}
}

func readOrdered(path string) ([]r3.Vec, error) {
	f, err := zio.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return pdb.ReadOrdered(f, path)
}

// ReadPSF adds the structure in the PSF file path to the molecule, as new segments.
// The companion files are read at the same time. Every file must have the same number
// of atoms, or ErrAtomCountMismatch is returned and the molecule is not changed.
func (S *Session) ReadPSF(path string, c PSFCompanions) error {
	var st *psf.Structure
	var fromPDB, fromBin, vel []r3.Vec
	var g errgroup.Group
	g.Go(func() error {
		var err error
		st, err = psf.ReadFile(path, S.store)
		return err
	})
	if c.PDB != "" {
		g.Go(func() error {
			var err error
			fromPDB, err = readOrdered(c.PDB)
			return err
		})
	}
	if c.Bin != "" {
		g.Go(func() error {
			var err error
			fromBin, err = namdbin.ReadFile(c.Bin)
			return err
		})
	}
	if c.Vel != "" {
		g.Go(func() error {
			var err error
			vel, err = namdbin.ReadFile(c.Vel)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return diag.Decorate(err, "ReadPSF")
	}
	n := len(st.Atoms)
	for _, comp := range []struct {
		name   string
		coords []r3.Vec
	}{{c.PDB, fromPDB}, {c.Bin, fromBin}, {c.Vel, vel}} {
		if comp.name != "" && len(comp.coords) != n {
			return diag.New(diag.AtomCountMismatch, "%s has %d atoms, but %s has %d", path, n, comp.name, len(comp.coords))
		}
	}
	before := S.mol.NumAtoms()
	if err := st.Apply(S.mol); err != nil {
		return diag.Decorate(err, "ReadPSF")
	}
	atoms := S.mol.Atoms()[before:]
	for _, coords := range [][]r3.Vec{fromPDB, fromBin} {
		for i, p := range coords {
			atoms[i].SetPosition(p)
		}
	}
	for i, v := range vel {
		atoms[i].Vel = v
	}
	diag.Infof(S.sink, "read %d atoms from %s", n, path)
	return nil
}

// ReadCoords sets positions from the PDB file path for the atoms of segment segid,
// or of the segments named in the file if segid is empty. It returns the number
// of atoms set.
func (S *Session) ReadCoords(path, segid string) (int, error) {
	f, err := zio.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	n, err := pdb.ReadCoords(f, S.mol, segid, path)
	if err != nil {
		return n, err
	}
	diag.Infof(S.sink, "set coordinates of %d atoms from %s", n, path)
	return n, nil
}

// writeFile creates path, with the compression its name implies, and fills it with write.
func (S *Session) writeFile(path string, write func(io.Writer) error) error {
	f, err := zio.Create(path, S.cfg.CompressionLevel)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WritePSF writes the structure to the PSF file path.
func (S *Session) WritePSF(path string, o psf.Options) error {
	diag.Infof(S.sink, "writing %s psf file %s", o.Format, path)
	return psf.WriteFile(path, S.mol, o, S.cfg.CompressionLevel)
}

// WritePDB writes the coordinates to the PDB file path.
func (S *Session) WritePDB(path string) error {
	diag.Infof(S.sink, "writing pdb file %s", path)
	return pdb.WriteFile(path, S.mol, S.cfg.CompressionLevel)
}

// coordinates returns the positions and velocities of every atom. Atoms without a
// position are at the origin.
func (S *Session) coordinates() (pos, vel []r3.Vec) {
	atoms := S.mol.Atoms()
	pos = make([]r3.Vec, len(atoms))
	vel = make([]r3.Vec, len(atoms))
	void := 0
	for i, a := range atoms {
		if a.HasPosition() {
			pos[i] = a.Pos
		} else {
			void++
		}
		vel[i] = a.Vel
	}
	if void > 0 {
		diag.Warnf(S.sink, "%d atoms have no coordinates, written as zero", void)
	}
	return pos, vel
}

// WriteNamdBin writes the coordinates to the binary file path and, if velPath
// is not empty, the velocities to velPath.
func (S *Session) WriteNamdBin(path, velPath string) error {
	pos, vel := S.coordinates()
	if err := namdbin.WriteFile(path, pos, S.cfg.CompressionLevel); err != nil {
		return err
	}
	if velPath == "" {
		return nil
	}
	return namdbin.WriteFile(velPath, vel, S.cfg.CompressionLevel)
}

// WriteAll writes every file named in o. The contents are prepared one after the
// other, then the files are compressed and written at the same time.
func (S *Session) WriteAll(o Outputs) error {
	type output struct {
		path string
		data []byte
	}
	var outs []output
	render := func(path string, write func(io.Writer) error) error {
		if path == "" {
			return nil
		}
		var b bytes.Buffer
		if err := write(&b); err != nil {
			return err
		}
		outs = append(outs, output{path, b.Bytes()})
		return nil
	}
	po := S.PSFOptions()
	if o.PSFOptions != nil {
		po = *o.PSFOptions
	}
	S.mol.AssignIDs()
	var pos, vel []r3.Vec
	if o.Bin != "" || o.Vel != "" {
		pos, vel = S.coordinates()
	}
	err := firstError(
		render(o.PSF, func(w io.Writer) error { return psf.Write(w, S.mol, po) }),
		render(o.PDB, func(w io.Writer) error { return pdb.Write(w, S.mol) }),
		render(o.Bin, func(w io.Writer) error { return namdbin.Write(w, pos) }),
		render(o.Vel, func(w io.Writer) error { return namdbin.Write(w, vel) }),
	)
	if err != nil {
		return diag.Decorate(err, "WriteAll")
	}
	var g errgroup.Group
	for _, out := range outs {
		out := out
		g.Go(func() error {
			diag.Infof(S.sink, "writing %s", out.path)
			return S.writeFile(out.path, func(w io.Writer) error {
				if _, err := w.Write(out.data); err != nil {
					return diag.Wrap(diag.IoFailure, err, "writing %s", out.path)
				}
				return nil
			})
		})
	}
	if err := g.Wait(); err != nil {
		return diag.Decorate(err, "WriteAll")
	}
	return nil
}

func firstError(errs ...error) error {
	for _, e := range errs {
		if e != nil {
			return e
		}
	}
	return nil
}
