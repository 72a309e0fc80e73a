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

package metrics

const (
	// Cache metrics
	MetricCacheHits          = "pagecore_cache_hits_total"
	MetricCacheMisses        = "pagecore_cache_misses_total"
	MetricCacheInvalidations = "pagecore_cache_invalidations_total"

	// Router metrics
	MetricRouterRequests  = "pagecore_router_requests_total"
	MetricRouterErrors    = "pagecore_router_errors_total"
	MetricRouterDuration  = "pagecore_router_request_duration_seconds"
	MetricVersionRetries  = "pagecore_router_version_retries_total"
	MetricHandlerDuration = "pagecore_router_handler_duration_seconds"

	// Toolkit metrics
	MetricToolInvocations = "pagecore_tool_invocations_total"
	MetricToolErrors      = "pagecore_tool_errors_total"
	MetricToolCacheHits   = "pagecore_tool_cache_hits_total"
)

// PageMetrics provides page-core-specific metrics: cache hit/miss
// ratios, router request volume and latency, and toolkit invocation
// counts, all keyed by page type so a dashboard can break down
// activity per type.
type PageMetrics struct {
	collector Collector
}

// NewPageMetrics creates a page-core metrics recorder over collector.
func NewPageMetrics(collector Collector) *PageMetrics {
	return &PageMetrics{collector: collector}
}

// RecordCacheHit records a cache read that returned a valid page.
func (m *PageMetrics) RecordCacheHit(typeName string) {
	m.collector.IncrementCounter(MetricCacheHits, NewLabels("type", typeName))
}

// RecordCacheMiss records a cache read that found no valid page.
func (m *PageMetrics) RecordCacheMiss(typeName string) {
	m.collector.IncrementCounter(MetricCacheMisses, NewLabels("type", typeName))
}

// RecordInvalidations records how many rows an invalidation call marked
// invalid.
func (m *PageMetrics) RecordInvalidations(typeName string, count int) {
	m.collector.AddCounter(MetricCacheInvalidations, float64(count), NewLabels("type", typeName))
}

// RecordRouterRequest records a GetPage call and its handler latency.
func (m *PageMetrics) RecordRouterRequest(typeName string, durationSeconds float64) {
	labels := NewLabels("type", typeName)
	m.collector.IncrementCounter(MetricRouterRequests, labels)
	m.collector.ObserveHistogram(MetricRouterDuration, durationSeconds, labels)
}

// RecordRouterError records a GetPage call that returned an error.
func (m *PageMetrics) RecordRouterError(typeName, errorType string) {
	m.collector.IncrementCounter(MetricRouterErrors, NewLabels("type", typeName, "error", errorType))
}

// RecordVersionRetry records one version-allocation retry in
// storeIfAbsent.
func (m *PageMetrics) RecordVersionRetry(typeName string) {
	m.collector.IncrementCounter(MetricVersionRetries, NewLabels("type", typeName))
}

// RecordToolInvocation records a toolkit.Registry.Invoke call.
func (m *PageMetrics) RecordToolInvocation(toolName string) {
	m.collector.IncrementCounter(MetricToolInvocations, NewLabels("tool", toolName))
}

// RecordToolError records a toolkit.Registry.Invoke call that failed.
func (m *PageMetrics) RecordToolError(toolName string) {
	m.collector.IncrementCounter(MetricToolErrors, NewLabels("tool", toolName))
}

// RecordToolCacheHit records a toolkit result served from the
// result-caching wrapper without recomputation.
func (m *PageMetrics) RecordToolCacheHit(toolName string) {
	m.collector.IncrementCounter(MetricToolCacheHits, NewLabels("tool", toolName))
}
