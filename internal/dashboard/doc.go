// SPDX-License-Identifier: MPL-2.0

// Package dashboard serves the benchmark dashboard: static assets plus a
// small JSON API for benchmark results, system information, and triggering
// a sweep in the background.
package dashboard
