package compiler

import (
	_ "embed"

	"cuelang.org/go/cue"
)

//go:embed schema.cue
var schemaSource string

// SchemaSource returns the CUE source of the circuit definition schema.
func SchemaSource() string {
	return schemaSource
}

// circuitSchema compiles the embedded schema in ctx and returns #Circuit.
// Values from different contexts cannot be unified, so the schema is built
// per context rather than once per process.
func circuitSchema(ctx *cue.Context) (cue.Value, error) {
	v := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := v.Err(); err != nil {
		return cue.Value{}, err
	}
	return v.LookupPath(cue.ParsePath("#Circuit")), nil
}
