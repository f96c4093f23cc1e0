// Package crop turns a decoded derived-image request into exactly one pixel
// transform. Decide is a pure decision function over (width, height, options)
// that returns a Plan; Engine.Apply executes a Plan against a loaded image
// using disintegration/imaging, and Engine.Encode writes the result in the
// format implied by the destination extension.
//
// Decision order:
//
//	wildcard x wildcard, no options  -> Passthrough (bytes copied verbatim)
//	width or height over the limit   -> ErrDimensionTooLarge
//	trim + trim_perc                 -> ErrConflictingOptions
//	trim / trim_perc                 -> pre-crop before any resize
//	quadrant                         -> Fill anchored at T/L/C/R/B
//	resize                           -> exact resize, aspect ratio not kept
//	otherwise                        -> DefaultCrop
//
// Trim boxes must have x1 < x2 and y1 < y2. Option names the engine does not
// know are ignored.
package crop
