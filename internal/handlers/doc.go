// Package handlers provides HTTP request handlers for the media resolver API.
//
// It includes handlers for:
//   - Query resolution and candidate validation
//   - Album and index statistics
//   - Manual reindex triggering
//   - Health checks and version info
package handlers
