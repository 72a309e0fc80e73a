// Copyright (C) 2025 sage-x-project
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

// SPDX-License-Identifier: LGPL-3.0-or-later

package errors

// Provenance errors
var (
	// ErrMissingParent indicates a page's declared parent does not exist.
	ErrMissingParent = &Error{
		Category: CategoryProvenance,
		Code:     "MISSING_PARENT",
		Message:  "parent page does not exist",
	}

	// ErrChildExists indicates a page already has a registered child under
	// the same relationship.
	ErrChildExists = &Error{
		Category: CategoryProvenance,
		Code:     "CHILD_EXISTS",
		Message:  "child relationship already recorded",
	}

	// ErrSameTypeParent indicates a page declared a parent of its own type.
	ErrSameTypeParent = &Error{
		Category: CategoryProvenance,
		Code:     "SAME_TYPE_PARENT",
		Message:  "parent page must not share the child's type",
	}

	// ErrUnversionedParent indicates a page's parent URI omitted a version.
	ErrUnversionedParent = &Error{
		Category: CategoryProvenance,
		Code:     "UNVERSIONED_PARENT",
		Message:  "parent URI must carry an explicit version",
	}

	// ErrCycle indicates recording a relationship would create a lineage
	// cycle.
	ErrCycle = &Error{
		Category: CategoryProvenance,
		Code:     "CYCLE",
		Message:  "relationship would introduce a lineage cycle",
	}
)
