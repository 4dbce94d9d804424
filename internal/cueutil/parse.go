// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// MaxDocumentSize caps the size of user-supplied CUE documents. Plans and
// config files are tiny; anything near this limit is not a plan file.
const MaxDocumentSize = 1 << 20

// Decode performs the schema-unify-decode flow for a user-supplied CUE
// document:
//
//  1. Compile the embedded schema
//  2. Compile the document and unify it with the schema root definition
//  3. Validate (concrete) and decode into T
//
// schemaPath names the root definition in the schema (e.g. "#Plan").
// filename is used only for error messages.
func Decode[T any](schema, data []byte, schemaPath, filename string) (*T, error) {
	if filename == "" {
		filename = "<input>"
	}
	if int64(len(data)) > MaxDocumentSize {
		return nil, fmt.Errorf("%s: file size %d bytes exceeds maximum %d bytes",
			filename, len(data), int64(MaxDocumentSize))
	}

	ctx := cuecontext.New()

	schemaValue := ctx.CompileBytes(schema)
	if schemaValue.Err() != nil {
		return nil, fmt.Errorf("internal error: failed to compile schema: %w", schemaValue.Err())
	}

	docValue := ctx.CompileBytes(data, cue.Filename(filename))
	if docValue.Err() != nil {
		return nil, FormatError(docValue.Err(), filename)
	}

	schemaRoot := schemaValue.LookupPath(cue.ParsePath(schemaPath))
	if schemaRoot.Err() != nil {
		return nil, fmt.Errorf("internal error: schema definition %s not found: %w", schemaPath, schemaRoot.Err())
	}

	unified := schemaRoot.Unify(docValue)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, FormatError(err, filename)
	}

	var result T
	if err := unified.Decode(&result); err != nil {
		return nil, FormatError(err, filename)
	}
	return &result, nil
}
