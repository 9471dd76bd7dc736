/*
 * config_test.go, part of gopsfgen
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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rmera/gopsfgen/psf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(Te *testing.T) {
	c := Default()
	assert.True(Te, c.AllCaps)
	assert.False(Te, c.TerminalDefaults)
	assert.True(Te, c.AutoAngles)
	assert.True(Te, c.AutoDihedrals)
	assert.Equal(Te, "psfgen) ", c.LogPrefix)
	f, err := c.Format()
	require.NoError(Te, err)
	assert.Equal(Te, psf.XPlor, f)
}

const settings = `all-caps: false
terminal-defaults: true
auto-dihedrals: false
psf-format: charmm
compression-level: 9
topologies:
  - top_all36_prot.rtf
  - toppar_water_ions.str
`

func TestLoad(Te *testing.T) {
	name := filepath.Join(Te.TempDir(), "psfgen.yaml")
	require.NoError(Te, os.WriteFile(name, []byte(settings), 0o644))
	c, err := Load(name)
	require.NoError(Te, err)
	assert.False(Te, c.AllCaps)
	assert.True(Te, c.TerminalDefaults)
	assert.True(Te, c.AutoAngles)
	assert.False(Te, c.AutoDihedrals)
	assert.Equal(Te, 9, c.CompressionLevel)
	assert.Equal(Te, []string{"top_all36_prot.rtf", "toppar_water_ions.str"}, c.Topologies)
	f, err := c.Format()
	require.NoError(Te, err)
	assert.Equal(Te, psf.Charmm, f)

	Te.Setenv("PSFGEN_PSF_FORMAT", "x-plor")
	Te.Setenv("PSFGEN_QUIET", "true")
	c, err = Load(name)
	require.NoError(Te, err)
	assert.Equal(Te, "x-plor", c.PSFFormat)
	assert.True(Te, c.Quiet)
}

func TestLoadErrors(Te *testing.T) {
	_, err := Load(filepath.Join(Te.TempDir(), "missing.yaml"))
	assert.Error(Te, err)

	name := filepath.Join(Te.TempDir(), "bad.yaml")
	require.NoError(Te, os.WriteFile(name, []byte("psf-format: gromacs\n"), 0o644))
	_, err = Load(name)
	assert.Error(Te, err)

	require.NoError(Te, os.WriteFile(name, []byte("compression-level: 42\n"), 0o644))
	_, err = Load(name)
	assert.Error(Te, err)

	c, err := Load("")
	require.NoError(Te, err)
	assert.Equal(Te, Default(), c)
}
