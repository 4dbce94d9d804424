// SPDX-License-Identifier: MPL-2.0

// Package analysis scans sweep logs for issue and performance markers.
//
// Everything here is failure tolerant: a missing log file or a log with no
// matches degrades each count to zero rather than producing an error. The
// report layer decides what the counts mean.
package analysis
