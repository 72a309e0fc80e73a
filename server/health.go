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

package server

import (
	"context"

	"github.com/pagecore/pagecore/core/pagecontext"
	"github.com/pagecore/pagecore/observability/health"
)

// storageChecker is a health.Checker reporting the reachability of a
// pagecontext.Context's storage backend.
type storageChecker struct {
	ctx *pagecontext.Context
}

func (c storageChecker) Name() string { return "storage" }

func (c storageChecker) Check(ctx context.Context) health.CheckResult {
	if err := c.ctx.Ping(ctx); err != nil {
		return health.CheckResult{
			Name:    c.Name(),
			Status:  health.StatusUnhealthy,
			Message: err.Error(),
		}
	}
	return health.CheckResult{Name: c.Name(), Status: health.StatusHealthy}
}
