/*
 * diag_test.go, part of gopsfgen
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

package diag

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorKinds(Te *testing.T) {
	err := New(UnknownPatch, "no patch %q", "FOO")
	require.True(Te, errors.Is(err, UnknownPatch))
	assert.False(Te, errors.Is(err, UnknownResidueTemplate))
	assert.Equal(Te, `unknown patch: no patch "FOO"`, err.Error())

	wrapped := fmt.Errorf("Patch: %w", err)
	assert.True(Te, errors.Is(wrapped, UnknownPatch))
	assert.Equal(Te, UnknownPatch, KindOf(wrapped))
	assert.Equal(Te, Kind(0), KindOf(errors.New("plain")))
}

func TestErrorContext(Te *testing.T) {
	err := New(ParseError, "bad mass").At("top.rtf", 12)
	assert.Equal(Te, "top.rtf:12: parse error: bad mass", err.Error())
	assert.Equal(Te, "top.rtf", err.FileName())
	assert.Equal(Te, 12, err.Line())

	var e error = err
	Decorate(e, "Parse")
	Decorate(e, "ReadTopology")
	assert.Equal(Te, []string{"Parse", "ReadTopology"}, err.Decorate(""))

	plain := Decorate(errors.New("boom"), "WritePDB")
	assert.Equal(Te, "WritePDB: boom", plain.Error())
	assert.Nil(Te, Decorate(nil, "X"))
}

func TestWrapKeepsCause(Te *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(IoFailure, cause, "writing %s", "out.psf")
	assert.True(Te, errors.Is(err, cause))
	assert.True(Te, errors.Is(err, IoFailure))
}

func TestSinks(Te *testing.T) {
	var buf bytes.Buffer
	s := NewLogSink(&buf, "psfgen) ")
	Infof(s, "aliasing residue %s to %s", "HIS", "HSD")
	assert.Equal(Te, "psfgen) Info: aliasing residue HIS to HSD\n", buf.String())

	r := new(Recorder)
	Warnf(r, "failed to guess coordinate of %d atoms", 2)
	Infof(nil, "ignored")
	Discard.Print("ignored")
	assert.Equal(Te, []string{"Warning: failed to guess coordinate of 2 atoms"}, r.Lines)
}
