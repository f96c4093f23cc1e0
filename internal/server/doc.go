// Package server hosts the Fiber HTTP service: the request-ID middleware, the
// catch-all image route that hands request paths to the derive manager, and
// the mapping from derive outcomes and error kinds to HTTP responses.
// Diagnostics live under /-/ and are registered by the routes subpackage;
// keep exports narrow and accept explicit dependencies.
package server
