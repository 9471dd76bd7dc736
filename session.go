/*
 * session.go, part of gopsfgen
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
	"bufio"
	"io"

	"github.com/rmera/gopsfgen/alias"
	"github.com/rmera/gopsfgen/config"
	"github.com/rmera/gopsfgen/diag"
	"github.com/rmera/gopsfgen/mol"
	"github.com/rmera/gopsfgen/topo"
)

// Session owns one topology store, one alias table and the molecule built from them.
// It is not safe for concurrent use. Separate sessions share nothing.
type Session struct {
	store   *topo.Store
	aliases *alias.Table
	mol     *mol.Molecule
	sink    diag.Sink
	cfg     config.Config
}

type settings struct {
	cfg  config.Config
	sink diag.Sink
}

// Option changes the way a Session is created.
type Option func(*settings)

// WithSink sends the informational messages of the session to s.
func WithSink(s diag.Sink) Option {
	return func(o *settings) { o.sink = s }
}

// WithAllCaps sets whether names are uppercased.
func WithAllCaps(b bool) Option {
	return func(o *settings) { o.cfg.AllCaps = b }
}

// WithTerminalDefaults sets whether new segments use the terminal patches
// declared in the topology instead of none.
func WithTerminalDefaults(b bool) Option {
	return func(o *settings) { o.cfg.TerminalDefaults = b }
}

func sinkFor(c config.Config) diag.Sink {
	if c.Quiet {
		return diag.Discard
	}
	return diag.NewLogSink(nil, c.LogPrefix)
}

func newSession(c config.Config, opts []Option) *Session {
	o := &settings{cfg: c}
	for _, f := range opts {
		f(o)
	}
	if o.sink == nil {
		o.sink = sinkFor(o.cfg)
	}
	s := &Session{
		store:   topo.NewStore(o.sink),
		aliases: alias.New(),
		sink:    o.sink,
		cfg:     o.cfg,
	}
	s.store.AllCaps = o.cfg.AllCaps
	s.mol = mol.New(s.store, s.aliases, o.sink)
	s.mol.AllCaps = o.cfg.AllCaps
	s.mol.TerminalDefaults = o.cfg.TerminalDefaults
	return s
}

// New returns an empty session with the default settings, changed by opts.
func New(opts ...Option) *Session {
	return newSession(config.Default(), opts)
}

// NewFromConfig returns a session with the settings in c, and the topology
// files listed there already read. Options are applied on top of c.
func NewFromConfig(c config.Config, opts ...Option) (*Session, error) {
	if _, err := c.Format(); err != nil {
		return nil, diag.Decorate(err, "NewFromConfig")
	}
	s := newSession(c, opts)
	for _, t := range c.Topologies {
		if err := s.ReadTopology(t); err != nil {
			return nil, diag.Decorate(err, "NewFromConfig")
		}
	}
	return s, nil
}

// Close releases the molecule and the topology. The session can't be used afterwards.
func (S *Session) Close() {
	S.mol = nil
	S.store = nil
	S.aliases = nil
}

// Molecule returns the molecule being built.
func (S *Session) Molecule() *mol.Molecule { return S.mol }

// Topology returns the topology store of the session.
func (S *Session) Topology() *topo.Store { return S.store }

// Config returns the settings of the session.
func (S *Session) Config() config.Config { return S.cfg }

// ReadTopology reads a CHARMM topology file into the session. Templates read before
// an error in the file are kept.
func (S *Session) ReadTopology(path string) error {
	diag.Infof(S.sink, "reading topology file %s", path)
	return S.store.ReadFile(path)
}

// ParseTopology reads a CHARMM topology from r. name is recorded as its origin.
func (S *Session) ParseTopology(r io.Reader, name string) error {
	if err := S.store.Parse(bufio.NewReader(r), name); err != nil {
		return diag.Decorate(err, "ParseTopology")
	}
	S.store.AddFile(name)
	return nil
}

// SetAllCaps sets whether names given from now on are uppercased.
func (S *Session) SetAllCaps(b bool) {
	S.cfg.AllCaps = b
	S.store.AllCaps = b
	S.mol.AllCaps = b
}

// AliasResidue makes the residue name external, as found in PDB files,
// stand for the template canonical.
func (S *Session) AliasResidue(canonical, external string) error {
	diag.Infof(S.sink, "aliasing residue %s to %s", external, canonical)
	return S.aliases.Residue(external, canonical)
}

// AliasAtom makes the atom name external of the residue resname stand for the
// atom canonical of the template.
func (S *Session) AliasAtom(resname, canonical, external string) error {
	diag.Infof(S.sink, "aliasing residue %s atom %s to %s", resname, external, canonical)
	return S.aliases.Atom(resname, external, canonical)
}
