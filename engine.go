package kowari

import (
	"github.com/rs/zerolog/log"

	"github.com/kowari-db/kowari/index"
)

// QueryEngine composes a Storage and an index.Index. It owns neither: both
// are borrowed for the engine's lifetime, which is expected to be no
// longer than theirs.
type QueryEngine struct {
	storage Storage
	idx     index.Index
}

// NewQueryEngine binds storage and idx into a query engine. idx should
// already be built; storage should contain every id idx was built from.
func NewQueryEngine(storage Storage, idx index.Index) *QueryEngine {
	return &QueryEngine{storage: storage, idx: idx}
}

// Search delegates to the bound index for up to k candidate identifiers,
// fetches each one's vector from storage, and returns them in the index's
// order. The engine does no re-ranking of its own: the index is
// authoritative for ordering. A candidate id absent from storage is an
// index/storage divergence and aborts the query with NotFound rather than
// silently shortening the result.
func (e *QueryEngine) Search(query []float32, k int) ([]Vector, error) {
	ids, err := e.idx.Search(query, k)
	if err != nil {
		return nil, err
	}

	results := make([]Vector, len(ids))
	for i, id := range ids {
		v, err := e.storage.Get(id)
		if err != nil {
			log.Error().Str("id", id).Err(err).Msg("query engine: index returned an id absent from storage")
			return nil, err
		}
		results[i] = v
	}
	return results, nil
}
