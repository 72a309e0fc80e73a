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

// Validator and toolkit errors
var (
	// ErrValidatorFailed indicates a registered validator rejected a page,
	// including validators that panicked during evaluation.
	ErrValidatorFailed = &Error{
		Category: CategoryValidator,
		Code:     "VALIDATOR_FAILED",
		Message:  "page failed validation",
	}

	// ErrToolNotFound indicates a toolkit lookup for an unregistered tool
	// name.
	ErrToolNotFound = &Error{
		Category: CategoryToolkit,
		Code:     "TOOL_NOT_FOUND",
		Message:  "tool not found",
	}

	// ErrToolExecution indicates a tool's handler returned an error.
	ErrToolExecution = &Error{
		Category: CategoryToolkit,
		Code:     "TOOL_EXECUTION_ERROR",
		Message:  "tool execution failed",
	}

	// ErrInvalidCursor indicates a pagination cursor failed to decode.
	ErrInvalidCursor = &Error{
		Category: CategoryToolkit,
		Code:     "INVALID_CURSOR",
		Message:  "invalid pagination cursor",
	}
)
