// SPDX-License-Identifier: MPL-2.0

// Package cueutil provides helpers for parsing CUE documents against an
// embedded schema and decoding them into Go structs with readable errors.
package cueutil
