package handlers

import (
	"media-resolver/internal/database"
	"media-resolver/internal/indexer"
	"media-resolver/internal/resolver"
)

type Handlers struct {
	resolver *resolver.Service
	db       *database.Database
	indexer  *indexer.Indexer
}

func New(svc *resolver.Service, db *database.Database, idx *indexer.Indexer) *Handlers {
	return &Handlers{
		resolver: svc,
		db:       db,
		indexer:  idx,
	}
}
