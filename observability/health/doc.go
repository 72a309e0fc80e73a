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

// Package health provides health check endpoints for a pagecore deployment.
//
// # Overview
//
// This package provides Kubernetes-compatible health check probes:
//   - Liveness: Is the HTTP process still running?
//   - Readiness: Can the page core reach its storage.Backend?
//   - Startup: Has the backend finished opening and migrating?
//
// # Liveness Probe
//
// Indicates the process is alive and should not be restarted:
//
//	liveness := health.NewLivenessChecker()
//	http.Handle("/livez", health.Handler(liveness))
//
// Returns 200 while running; 503 once Server.Stop calls MarkStopped.
//
// # Readiness Probe
//
// Indicates the page core can serve reads/writes, wrapping a Checker
// that pings the storage.Backend (a Postgres connection, or the
// in-process MemoryBackend):
//
//	readiness := health.NewReadinessChecker(storageChecker{ctx: pageContext})
//	http.Handle("/readyz", health.Handler(readiness))
//
// Checks all dependencies before marking ready.
//
// # Startup Probe
//
// Indicates initialization (opening and migrating storage) has finished:
//
//	startup := health.NewStartupChecker()
//	startup.MarkReady()  // Server.MarkStarted calls this once migrate() returns
//	http.Handle("/startupz", health.Handler(startup))
//
// Used for slow-starting deployments (large Postgres migrations) to
// prevent premature restarts before the first query can even run.
//
// # Custom Health Checks
//
// Implement the Checker interface for custom checks, the way
// server/health.go's storageChecker wraps pagecontext.Context.Ping:
//
//	type CustomCheck struct{}
//
//	func (c *CustomCheck) Name() string {
//	    return "custom"
//	}
//
//	func (c *CustomCheck) Check(ctx context.Context) health.CheckResult {
//	    // Perform health check
//	    return health.CheckResult{
//	        Name:   c.Name(),
//	        Status: health.StatusHealthy,
//	    }
//	}
//
// # Kubernetes Integration
//
//	apiVersion: v1
//	kind: Pod
//	spec:
//	  containers:
//	  - name: pagecore
//	    livenessProbe:
//	      httpGet:
//	        path: /livez
//	        port: 8080
//	      initialDelaySeconds: 30
//	      periodSeconds: 10
//	    readinessProbe:
//	      httpGet:
//	        path: /readyz
//	        port: 8080
//	      initialDelaySeconds: 10
//	      periodSeconds: 5
//	    startupProbe:
//	      httpGet:
//	        path: /startupz
//	        port: 8080
//	      failureThreshold: 30
//	      periodSeconds: 5
//
// # Response Format
//
// JSON response with health status:
//
//	{
//	  "name": "readiness",
//	  "status": "healthy",
//	  "details": {
//	    "checks": [
//	      {"name": "storage", "status": "healthy"}
//	    ]
//	  }
//	}
package health
