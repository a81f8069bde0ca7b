// Package source provides media-index backends for the resolver. The
// device backend queries the local SQLite index; the unsupported
// backend reports no media, for deployments without an index.
package source
