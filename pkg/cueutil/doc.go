// SPDX-License-Identifier: MPL-2.0

// Package cueutil validates CUE documents against an embedded schema.
//
//	//go:embed config_schema.cue
//	var schema []byte
//
//	values, err := cueutil.Decode[map[string]any](schema, "#Config", data,
//	    cueutil.WithFilename(path),
//	    cueutil.WithConcrete(false),
//	)
//
// Errors carry the file name and the dotted path of the offending field.
package cueutil
