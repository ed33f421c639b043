package index

import (
	"fmt"
	"math"
	"sync"

	"docchat/internal/domain"
	"docchat/internal/port"
)

// MemoryIndex is an in-memory, append-only vector index over embedded chunks.
// Search is brute-force cosine similarity followed by greedy MMR selection.
// A RWMutex serializes appends against reads: retrieval sees either the
// pre-append or post-append entry set, never a partial batch.
type MemoryIndex struct {
	mu        sync.RWMutex
	embedder  port.Embedder
	entries   []domain.EmbeddedChunk
	docs      map[string]struct{}
	dimension int
}

func NewMemoryIndex(embedder port.Embedder) *MemoryIndex {
	return &MemoryIndex{
		embedder: embedder,
		docs:     make(map[string]struct{}),
	}
}

// AddDocuments embeds the chunks and appends them. The batch is
// all-or-nothing: a failed or malformed embedding rejects the whole batch,
// so the index never holds a silently degraded subset.
func (s *MemoryIndex) AddDocuments(chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	// Embed outside the lock; readers stay unblocked during the call.
	vectors, err := s.embedder.Embed(texts)
	if err != nil {
		return fmt.Errorf("failed to embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(chunks))
	}
	for i, v := range vectors {
		if len(v) == 0 {
			return fmt.Errorf("empty embedding for chunk %s", chunks[i].ID)
		}
		if len(v) != len(vectors[0]) {
			return fmt.Errorf("inconsistent embedding dimensions in batch: %d vs %d", len(v), len(vectors[0]))
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dimension == 0 {
		s.dimension = len(vectors[0])
	} else if len(vectors[0]) != s.dimension {
		return fmt.Errorf("vector dimension mismatch: expected %d, got %d", s.dimension, len(vectors[0]))
	}

	for i, c := range chunks {
		s.entries = append(s.entries, domain.EmbeddedChunk{Chunk: c, Vector: vectors[i]})
		s.docs[c.DocID] = struct{}{}
	}

	return nil
}

// Retrieve embeds the query, scores every entry by cosine similarity and
// greedily selects up to k chunks by MMR:
//
//	score(c) = lambda*relevance(c) - (1-lambda)*maxSim(c, selected)
//
// with lambda = diversityWeight; higher lambda favors raw relevance. Results
// come back in selection order, best first. An empty index is a routine
// cold-start condition and yields an empty result with no error.
func (s *MemoryIndex) Retrieve(query string, k int, diversityWeight float64) ([]domain.ScoredChunk, error) {
	s.mu.RLock()
	entries := s.entries
	s.mu.RUnlock()

	if len(entries) == 0 || k <= 0 {
		return nil, nil
	}

	vectors, err := s.embedder.Embed([]string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(vectors) == 0 || len(vectors[0]) == 0 {
		return nil, fmt.Errorf("embedder returned no vector for query")
	}
	queryVec := vectors[0]

	relevance := make([]float64, len(entries))
	maxRel := 0.0
	for i, e := range entries {
		relevance[i] = cosineSimilarity(queryVec, e.Vector)
		if relevance[i] > maxRel {
			maxRel = relevance[i]
		}
	}
	if maxRel == 0 {
		maxRel = 1
	}

	return mmrSelect(entries, relevance, maxRel, k, diversityWeight), nil
}

// mmrSelect runs the greedy maximal-marginal-relevance loop over the
// candidate set until k chunks are chosen or the candidates are exhausted.
func mmrSelect(entries []domain.EmbeddedChunk, relevance []float64, maxRel float64, k int, lambda float64) []domain.ScoredChunk {
	if k > len(entries) {
		k = len(entries)
	}

	type candidate struct {
		entry domain.EmbeddedChunk
		rel   float64
	}

	remaining := make([]candidate, len(entries))
	for i, e := range entries {
		remaining[i] = candidate{entry: e, rel: relevance[i] / maxRel}
	}

	selected := make([]domain.ScoredChunk, 0, k)
	selectedVecs := make([][]float32, 0, k)

	for len(selected) < k && len(remaining) > 0 {
		bestIdx := -1
		bestScore := math.Inf(-1)

		for i, c := range remaining {
			maxSim := 0.0
			for _, sv := range selectedVecs {
				if sim := cosineSimilarity(c.entry.Vector, sv); sim > maxSim {
					maxSim = sim
				}
			}

			score := lambda*c.rel - (1-lambda)*maxSim
			if score > bestScore {
				bestScore = score
				bestIdx = i
			}
		}

		best := remaining[bestIdx]
		selected = append(selected, domain.ScoredChunk{Chunk: best.entry.Chunk, Score: best.rel})
		selectedVecs = append(selectedVecs, best.entry.Vector)
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
	}

	return selected
}

// Stats reports document and chunk counts for the current index contents.
func (s *MemoryIndex) Stats() domain.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	totalLen := 0
	for _, e := range s.entries {
		totalLen += e.Chunk.Length
	}

	avg := 0.0
	if len(s.entries) > 0 {
		avg = float64(totalLen) / float64(len(s.entries))
	}

	return domain.Stats{
		TotalDocs:   len(s.docs),
		TotalChunks: len(s.entries),
		AvgChunkLen: avg,
	}
}

// cosineSimilarity calculates the cosine similarity between two vectors.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
