/*
 * config.go, part of gopsfgen
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

// Package config holds the session-wide settings, read with Viper from a
// settings file and from PSFGEN_* environment variables.
package config

import (
	"fmt"
	"strings"

	"github.com/rmera/gopsfgen/psf"
	"github.com/rmera/gopsfgen/zio"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of the environment variables that override settings,
// as in PSFGEN_PSF_FORMAT=charmm.
const EnvPrefix = "PSFGEN"

// Config is the set of settings of a session.
type Config struct {
	// uppercase the names given to the builder
	AllCaps bool `mapstructure:"all-caps"`

	// new segments use the terminal patches of their templates
	TerminalDefaults bool `mapstructure:"terminal-defaults"`

	// allow the automatic generation of angles and dihedrals. Setting these
	// to false turns generation off for every segment, whatever the topology says.
	AutoAngles    bool `mapstructure:"auto-angles"`
	AutoDihedrals bool `mapstructure:"auto-dihedrals"`

	// "charmm" or "x-plor"
	PSFFormat string `mapstructure:"psf-format"`

	// gzip level for compressed output
	CompressionLevel int `mapstructure:"compression-level"`

	// prefix of the lines logged
	LogPrefix string `mapstructure:"log-prefix"`

	// don't log informational messages at all
	Quiet bool `mapstructure:"quiet"`

	// topology files read when the session starts
	Topologies []string `mapstructure:"topologies"`
}

// Format returns the PSF format named in the settings.
func (C Config) Format() (psf.Format, error) {
	return psf.ParseFormat(C.PSFFormat)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("all-caps", true)
	v.SetDefault("terminal-defaults", false)
	v.SetDefault("auto-angles", true)
	v.SetDefault("auto-dihedrals", true)
	v.SetDefault("psf-format", "x-plor")
	v.SetDefault("compression-level", zio.DefaultLevel)
	v.SetDefault("log-prefix", "psfgen) ")
	v.SetDefault("quiet", false)
	v.SetDefault("topologies", []string{})
}

// Default returns the settings used when nothing else is given.
func Default() Config {
	v := viper.New()
	setDefaults(v)
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		//the defaults always decode
		panic(err)
	}
	return c
}

// New returns a Viper instance with the defaults and the environment bindings
// in place, for callers that want to add their own sources (flags, for instance).
func New() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the settings file path (any format Viper understands, chosen by the
// extension) on top of the defaults. Environment variables override both.
// An empty path means only defaults and environment.
func Load(path string) (Config, error) {
	v := New()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("Load: can't read settings from %s: %w", path, err)
		}
	}
	return FromViper(v)
}

// FromViper decodes and checks the settings held by v.
func FromViper(v *viper.Viper) (Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("FromViper: unable to decode settings: %w", err)
	}
	if _, err := c.Format(); err != nil {
		return Config{}, fmt.Errorf("FromViper: %w", err)
	}
	if c.CompressionLevel < -2 || c.CompressionLevel > 9 {
		return Config{}, fmt.Errorf("FromViper: compression level %d out of range", c.CompressionLevel)
	}
	return c, nil
}
