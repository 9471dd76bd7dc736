/*
 * zio.go, part of gopsfgen
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

// Package zio opens and creates the files read and written by gopsfgen,
// compressing or decompressing them transparently depending on the
// file extension: .gz for gzip, .zst or .zstd for zstandard. Any other
// extension means a plain file.
package zio

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/rmera/gopsfgen/diag"
)

// Compression is the compression scheme of a file.
type Compression int

const (
	Plain Compression = iota
	Gzip
	Zstd
)

// DefaultLevel is the gzip level used when none is given.
const DefaultLevel = gzip.DefaultCompression

// Detect returns the compression scheme implied by the extension of name.
func Detect(name string) Compression {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".gz":
		return Gzip
	case ".zst", ".zstd":
		return Zstd
	default:
		return Plain
	}
}

// *zstd.Decoder's Close doesn't return an error, so it
// doesn't implement io.ReadCloser.
type zstdReader struct {
	*zstd.Decoder
}

func (z zstdReader) Close() error {
	z.Decoder.Close()
	return nil
}

type readCloser struct {
	io.Reader
	closers []io.Closer
}

// Close closes the decompressor, if any, and then the file.
func (r *readCloser) Close() error {
	var err error
	for _, c := range r.closers {
		if e := c.Close(); e != nil && err == nil {
			err = e
		}
	}
	return err
}

// Open opens the file name for reading. The returned reader decompresses the data
// if the extension calls for it. Errors are of kind diag.IoFailure.
func Open(name string) (io.ReadCloser, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, diag.Wrap(diag.IoFailure, err, "can't open %s", name).At(name, 0)
	}
	buf := bufio.NewReader(f)
	switch Detect(name) {
	case Gzip:
		gz, err := gzip.NewReader(buf)
		if err != nil {
			f.Close()
			return nil, diag.Wrap(diag.IoFailure, err, "can't read gzip header").At(name, 0)
		}
		return &readCloser{gz, []io.Closer{gz, f}}, nil
	case Zstd:
		zs, err := zstd.NewReader(buf)
		if err != nil {
			f.Close()
			return nil, diag.Wrap(diag.IoFailure, err, "can't start zstd decoder").At(name, 0)
		}
		return &readCloser{zs, []io.Closer{zstdReader{zs}, f}}, nil
	default:
		return &readCloser{buf, []io.Closer{f}}, nil
	}
}

type writeCloser struct {
	io.Writer
	name    string
	flush   func() error
	closers []io.Closer
}

// Close flushes every layer and closes the file. The first error found is returned.
func (w *writeCloser) Close() error {
	var err error
	if w.flush != nil {
		err = w.flush()
	}
	for _, c := range w.closers {
		if e := c.Close(); e != nil && err == nil {
			err = e
		}
	}
	if err != nil {
		return diag.Wrap(diag.IoFailure, err, "can't close").At(w.name, 0)
	}
	return nil
}

// Create creates (or truncates) the file name for writing. Depending on the extension
// the data is compressed on the fly. The optional level applies only to gzip.
// The caller must Close the returned writer, or the data may not reach the disk.
func Create(name string, level ...int) (io.WriteCloser, error) {
	l := DefaultLevel
	if len(level) > 0 {
		l = level[0]
	}
	f, err := os.Create(name)
	if err != nil {
		return nil, diag.Wrap(diag.IoFailure, err, "can't create %s", name).At(name, 0)
	}
	switch Detect(name) {
	case Gzip:
		gz, err := gzip.NewWriterLevel(f, l)
		if err != nil {
			f.Close()
			return nil, diag.Wrap(diag.IoFailure, err, "can't start gzip writer").At(name, 0)
		}
		buf := bufio.NewWriter(gz)
		return &writeCloser{buf, name, buf.Flush, []io.Closer{gz, f}}, nil
	case Zstd:
		zs, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			f.Close()
			return nil, diag.Wrap(diag.IoFailure, err, "can't start zstd writer").At(name, 0)
		}
		buf := bufio.NewWriter(zs)
		return &writeCloser{buf, name, buf.Flush, []io.Closer{zs, f}}, nil
	default:
		buf := bufio.NewWriter(f)
		return &writeCloser{buf, name, buf.Flush, []io.Closer{f}}, nil
	}
}

// ReadAll reads the whole (possibly compressed) file name.
func ReadAll(name string) ([]byte, error) {
	r, err := Open(name)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, diag.Wrap(diag.IoFailure, err, "can't read").At(name, 0)
	}
	return b, nil
}
