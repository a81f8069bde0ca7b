package source

import (
	"context"

	"media-resolver/internal/resolver"
)

// Unsupported is the media source used when no index is available. It
// enumerates nothing and fails every lookup, so resolution degrades to
// an empty candidate list instead of erroring.
type Unsupported struct{}

// NewUnsupported creates a media source that reports no media.
func NewUnsupported() *Unsupported {
	return &Unsupported{}
}

func (Unsupported) Albums(context.Context) ([]resolver.Album, error) {
	return nil, nil
}

func (Unsupported) AlbumByPath(context.Context, string) (resolver.Album, error) {
	return resolver.Album{}, resolver.ErrNotFound
}

func (Unsupported) Assets(context.Context, int64, resolver.AssetQuery) ([]resolver.Handle, error) {
	return nil, nil
}

func (Unsupported) FilePath(context.Context, string) (string, error) {
	return "", resolver.ErrNotFound
}

func (Unsupported) FindMatch(context.Context, resolver.MatchHint) (string, error) {
	return "", resolver.ErrNotFound
}
