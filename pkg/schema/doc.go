// Package schema provides the field declarations and value validators used to
// check snapshot fragments before they are decoded into entities.
//
// A Type validates a single value. Built-in types cover strings, integers,
// booleans, lists, objects, nullable values and closed string enumerations.
// Int accepts the json.Number values produced by snapshot decoding, while
// StrictInt only accepts Go integers and is meant for caller-supplied arguments.
//
// A Fields value declares, per entity, which keys a fragment must carry, which
// keys are frozen after construction and which keys take part in equality:
//
//	var tileFields = schema.Declare("Tile").Equality("tag")
//
//	var boxFields = schema.Declare("Box").
//	    Expect("painted", schema.Bool()).
//	    Expect("triggers_chase", schema.Bool()).
//	    Equality("painted", "triggers_chase")
//
//	if err := boxFields.Check(fragment); err != nil {
//	    missing := schema.MissingKeys(err)
//	    ...
//	}
//
// Custom validators can be registered for domain-specific validation:
//
//	direction := schema.Custom("Direction", func(v any) error { ... })
//
// This package has no dependencies beyond the Go standard library.
package schema
