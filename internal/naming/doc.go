// Package naming implements the derived-image filename grammar. A derived file
// is named after its source with a `-{width}x{height}` suffix followed by zero
// or more `-option` / `-option(arg,arg)` fragments, e.g.
//
//	uploads/photo-200x_-quadrant(T).jpg
//
// Encode/Builder produce such names, Decode recognises them and ParseOptions
// splits the raw option suffix. A name that does not follow the grammar is not
// an error: Decode reports it as "not matched" so callers can fall back to an
// ordinary missing-file response.
package naming
