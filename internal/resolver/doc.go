// Package resolver implements the media resolution pipeline: scan the
// index for raw asset handles, deduplicate across overlapping albums,
// narrow by search terms, then resolve surviving candidates to live
// files in bounded concurrent batches with per-item timeouts.
//
// The pipeline never fails as a whole. Unreadable albums are skipped,
// and a missing, empty, unsupported, timed-out, or panicking item is
// dropped from the output without affecting the rest of its batch. The
// worst case is an empty candidate list.
//
// Validation of previously recorded URIs is a separate request/response
// operation on the same service, with best-effort recovery through the
// index when a reference has gone stale.
package resolver
