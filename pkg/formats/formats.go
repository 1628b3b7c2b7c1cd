// Package formats provides parsers for the files written by wow.export:
// OBJ geometry, MTL material libraries, JSON model and terrain sidecars,
// and model placement tables.
package formats

// Note: OBJ geometry is implemented in obj.go
// Note: MTL material libraries are implemented in mtl.go
// Note: placement tables are implemented in placement.go
