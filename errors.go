/*
 * errors.go, part of gopsfgen
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

import "github.com/rmera/gopsfgen/diag"

// Error classes. Every error returned by a Session can be tested against
// them with errors.Is.
const (
	ErrParse                  = diag.ParseError
	ErrUnknownResidueTemplate = diag.UnknownResidueTemplate
	ErrUnknownPatch           = diag.UnknownPatch
	ErrPatchTargetOutOfRange  = diag.PatchTargetOutOfRange
	ErrInsufficientTarget     = diag.InsufficientTarget
	ErrDuplicateSegment       = diag.DuplicateSegment
	ErrSegmentIdTooLong       = diag.SegmentIdTooLong
	ErrAtomCountMismatch      = diag.AtomCountMismatch
	ErrUnresolvedCoordinate   = diag.UnresolvedCoordinate
	ErrIoFailure              = diag.IoFailure
	ErrUnknownTarget          = diag.UnknownTarget
	ErrDuplicateResidue       = diag.DuplicateResidue
	ErrDuplicateAtom          = diag.DuplicateAtom
	ErrNoOpenSegment          = diag.NoOpenSegment
	ErrSegmentOpen            = diag.SegmentOpen
	ErrFormat                 = diag.FormatError
)
