// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

type (
	// Schema is a definition inside CUE schema source that documents are
	// checked against. It holds source only; every call compiles in a fresh
	// cue.Context, so a Schema is safe to share between goroutines.
	Schema struct {
		src  []byte
		path string
	}

	// ParseResult holds a decoded value and the unified CUE value it came from.
	ParseResult[T any] struct {
		Value   *T
		Unified cue.Value
	}
)

// NewSchema returns the definition at path (e.g. "#Config") in src.
func NewSchema(src []byte, path string) Schema {
	return Schema{src: src, path: path}
}

// Unify compiles data, unifies it with the schema definition and validates
// the result. Fields may stay non-concrete only with WithConcrete(false).
func (s Schema) Unify(data []byte, opts ...Option) (cue.Value, error) {
	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	filename := options.filename
	if filename == "" {
		filename = "<input>"
	}

	if err := CheckFileSize(data, options.maxFileSize, filename); err != nil {
		return cue.Value{}, err
	}

	ctx := cuecontext.New()
	schemaValue := ctx.CompileBytes(s.src)
	if schemaValue.Err() != nil {
		return cue.Value{}, fmt.Errorf("internal error: failed to compile schema: %w", schemaValue.Err())
	}
	def := schemaValue.LookupPath(cue.ParsePath(s.path))
	if def.Err() != nil {
		return cue.Value{}, fmt.Errorf("internal error: schema definition %s not found: %w", s.path, def.Err())
	}

	userValue := ctx.CompileBytes(data, cue.Filename(filename))
	if userValue.Err() != nil {
		return cue.Value{}, FormatError(userValue.Err(), filename)
	}

	unified := def.Unify(userValue)
	if err := unified.Validate(cue.Concrete(options.concrete)); err != nil {
		return cue.Value{}, FormatError(err, filename)
	}
	return unified, nil
}

// DecodeMap validates data and returns it as a generic map, the shape
// Viper merges.
func (s Schema) DecodeMap(data []byte, opts ...Option) (map[string]any, error) {
	unified, err := s.Unify(data, opts...)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := unified.Decode(&m); err != nil {
		return nil, FormatError(err, filenameOf(opts))
	}
	return m, nil
}

// ParseAndDecode validates data against the definition at schemaPath in
// schema and decodes it into T.
func ParseAndDecode[T any](schema, data []byte, schemaPath string, opts ...Option) (*ParseResult[T], error) {
	unified, err := NewSchema(schema, schemaPath).Unify(data, opts...)
	if err != nil {
		return nil, err
	}
	var result T
	if err := unified.Decode(&result); err != nil {
		return nil, FormatError(err, filenameOf(opts))
	}
	return &ParseResult[T]{Value: &result, Unified: unified}, nil
}

func filenameOf(opts []Option) string {
	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	if options.filename == "" {
		return "<input>"
	}
	return options.filename
}
