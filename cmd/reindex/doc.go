// Command reindex manages the media index from the command line without
// the HTTP service running. It shares the SQLite index with the service,
// so a run here is picked up by an already-deployed resolver on its next
// query.
//
// Usage:
//
//	reindex run     # full index of MEDIA_ROOTS into DATABASE_DIR
//	reindex stats   # print index statistics
package main
