package port

import "docchat/internal/domain"

// VectorIndex stores embedded chunks and serves similarity retrieval.
// Implementations must serialize AddDocuments against concurrent Retrieve
// calls: a reader observes either the pre- or post-append state, never a
// partially appended batch.
type VectorIndex interface {
	// AddDocuments embeds the chunks and appends them to the index.
	// The batch is all-or-nothing: if any embedding fails, nothing is added.
	AddDocuments(chunks []domain.Chunk) error

	// Retrieve embeds the query and returns up to k chunks selected by
	// diversity-aware ranking. diversityWeight is the MMR lambda: 1 selects
	// on pure relevance, 0 on pure diversity. An empty index yields an empty
	// result and a nil error.
	Retrieve(query string, k int, diversityWeight float64) ([]domain.ScoredChunk, error)

	// Stats reports document and chunk counts.
	Stats() domain.Stats
}
