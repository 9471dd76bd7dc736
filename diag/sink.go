/*
 * sink.go, part of gopsfgen
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
	"fmt"
	"io"
	"log"
	"os"
	"sync"
)

// Sink receives the informational messages produced while building a structure.
// It is never the only channel through which an error is reported.
type Sink interface {
	Print(line string)
}

// SinkFunc adapts a plain function to the Sink interface.
type SinkFunc func(string)

func (f SinkFunc) Print(line string) { f(line) }

// LogSink sends the messages to a *log.Logger.
type LogSink struct {
	*log.Logger
}

func (L LogSink) Print(line string) { L.Logger.Print(line) }

// NewLogSink returns a Sink that logs to w with the given prefix.
// A nil w means os.Stderr.
func NewLogSink(w io.Writer, prefix string) LogSink {
	if w == nil {
		w = os.Stderr
	}
	return LogSink{log.New(w, prefix, 0)}
}

// Default returns the sink used when none is given.
func Default() Sink { return NewLogSink(nil, "psfgen) ") }

type discard struct{}

func (discard) Print(string) {}

// Discard drops every message.
var Discard Sink = discard{}

// Recorder keeps every message it receives. Useful for tests and for callers
// that want to show the messages after the fact.
type Recorder struct {
	mu    sync.Mutex
	Lines []string
}

func (R *Recorder) Print(line string) {
	R.mu.Lock()
	R.Lines = append(R.Lines, line)
	R.mu.Unlock()
}

// Infof prints an "Info:" message to s. A nil s discards the message.
func Infof(s Sink, format string, a ...any) {
	if s == nil {
		return
	}
	s.Print("Info: " + fmt.Sprintf(format, a...))
}

// Warnf prints a "Warning:" message to s.
func Warnf(s Sink, format string, a ...any) {
	if s == nil {
		return
	}
	s.Print("Warning: " + fmt.Sprintf(format, a...))
}
