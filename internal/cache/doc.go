// Package cache treats the source directories themselves as the derived-image
// cache: an entry exists exactly when its file exists. There is no metadata
// record. The Store interface is the only way the lifecycle layer touches the
// files, so another backing store could satisfy the same contract. Writes use
// temp file + rename so a half-written derivative is never visible.
package cache
