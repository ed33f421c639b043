package index

import (
	"fmt"
	"sync"
	"testing"

	"docchat/internal/domain"
)

// fakeEmbedder maps known texts to preset vectors, so tests control the
// retrieval geometry exactly.
type fakeEmbedder struct {
	vectors map[string][]float32
	fail    bool
}

func (e *fakeEmbedder) Embed(texts []string) ([][]float32, error) {
	if e.fail {
		return nil, fmt.Errorf("embedder unavailable")
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, ok := e.vectors[t]
		if !ok {
			return nil, fmt.Errorf("no vector for %q", t)
		}
		out[i] = v
	}
	return out, nil
}

func (e *fakeEmbedder) Dimension() int    { return 2 }
func (e *fakeEmbedder) ModelName() string { return "fake" }

func chunkOf(id, text string) domain.Chunk {
	return domain.Chunk{ID: id, DocID: "doc-" + id, Text: text, Length: len(text)}
}

func TestRetrieveEmptyIndex(t *testing.T) {
	idx := NewMemoryIndex(&fakeEmbedder{})

	results, err := idx.Retrieve("anything", 10, 0.75)
	if err != nil {
		t.Fatalf("empty index retrieval must not error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected empty results, got %d", len(results))
	}
}

func TestAddDocumentsAllOrNothing(t *testing.T) {
	emb := &fakeEmbedder{fail: true}
	idx := NewMemoryIndex(emb)

	err := idx.AddDocuments([]domain.Chunk{chunkOf("a", "aaa"), chunkOf("b", "bbb")})
	if err == nil {
		t.Fatal("expected error from failing embedder")
	}

	if stats := idx.Stats(); stats.TotalChunks != 0 {
		t.Errorf("failed batch must leave the index empty, got %d chunks", stats.TotalChunks)
	}
}

func TestAddDocumentsDimensionMismatch(t *testing.T) {
	emb := &fakeEmbedder{vectors: map[string][]float32{
		"aaa": {1, 0},
		"bbb": {0, 1, 1},
	}}
	idx := NewMemoryIndex(emb)

	if err := idx.AddDocuments([]domain.Chunk{chunkOf("a", "aaa")}); err != nil {
		t.Fatal(err)
	}

	err := idx.AddDocuments([]domain.Chunk{chunkOf("b", "bbb")})
	if err == nil {
		t.Fatal("expected dimension mismatch error")
	}
	if stats := idx.Stats(); stats.TotalChunks != 1 {
		t.Errorf("rejected batch must not change the index, got %d chunks", stats.TotalChunks)
	}
}

func TestRetrieveRanksByRelevance(t *testing.T) {
	emb := &fakeEmbedder{vectors: map[string][]float32{
		"query": {1, 0},
		"best":  {1, 0},
		"good":  {0.9, 0.4},
		"far":   {0, 1},
	}}
	idx := NewMemoryIndex(emb)

	chunks := []domain.Chunk{chunkOf("1", "far"), chunkOf("2", "best"), chunkOf("3", "good")}
	if err := idx.AddDocuments(chunks); err != nil {
		t.Fatal(err)
	}

	results, err := idx.Retrieve("query", 3, 1.0)
	if err != nil {
		t.Fatal(err)
	}

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].Chunk.Text != "best" || results[1].Chunk.Text != "good" || results[2].Chunk.Text != "far" {
		t.Errorf("unexpected rank order: %s, %s, %s",
			results[0].Chunk.Text, results[1].Chunk.Text, results[2].Chunk.Text)
	}
	for i := 1; i < len(results); i++ {
		if results[i].Score > results[i-1].Score {
			t.Errorf("scores not descending at %d", i)
		}
	}
}

func TestRetrieveKLargerThanIndex(t *testing.T) {
	emb := &fakeEmbedder{vectors: map[string][]float32{
		"query": {1, 0},
		"only":  {1, 0},
	}}
	idx := NewMemoryIndex(emb)

	if err := idx.AddDocuments([]domain.Chunk{chunkOf("1", "only")}); err != nil {
		t.Fatal(err)
	}

	results, err := idx.Retrieve("query", 10, 0.75)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Errorf("expected 1 result, got %d", len(results))
	}
}

// Raising the diversity weight toward 1 must not lower the average relevance
// of the selected set: higher lambda favors raw relevance.
func TestDiversityMonotonicity(t *testing.T) {
	emb := &fakeEmbedder{vectors: map[string][]float32{
		"query": {1, 0},
		"near1": {1, 0},
		"near2": {0.99, 0.14},
		"ortho": {0, 1},
	}}
	idx := NewMemoryIndex(emb)

	chunks := []domain.Chunk{chunkOf("1", "near1"), chunkOf("2", "near2"), chunkOf("3", "ortho")}
	if err := idx.AddDocuments(chunks); err != nil {
		t.Fatal(err)
	}

	avgRel := func(lambda float64) float64 {
		results, err := idx.Retrieve("query", 2, lambda)
		if err != nil {
			t.Fatal(err)
		}
		sum := 0.0
		for _, r := range results {
			sum += r.Score
		}
		return sum / float64(len(results))
	}

	low := avgRel(0.2)
	high := avgRel(1.0)
	if high < low {
		t.Errorf("average relevance dropped as lambda rose: %.3f -> %.3f", low, high)
	}
}

func TestDiversitySelectsSpreadAtLowLambda(t *testing.T) {
	emb := &fakeEmbedder{vectors: map[string][]float32{
		"query": {1, 0},
		"near1": {1, 0},
		"near2": {0.99, 0.14},
		"ortho": {0, 1},
	}}
	idx := NewMemoryIndex(emb)

	chunks := []domain.Chunk{chunkOf("1", "near1"), chunkOf("2", "near2"), chunkOf("3", "ortho")}
	if err := idx.AddDocuments(chunks); err != nil {
		t.Fatal(err)
	}

	results, err := idx.Retrieve("query", 2, 0.1)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[1].Chunk.Text != "ortho" {
		t.Errorf("low lambda should pick the orthogonal chunk second, got %s", results[1].Chunk.Text)
	}
}

func TestConcurrentAddAndRetrieve(t *testing.T) {
	vectors := map[string][]float32{"query": {1, 0}}
	texts := make([]string, 50)
	for i := range texts {
		texts[i] = fmt.Sprintf("text-%d", i)
		vectors[texts[i]] = []float32{1, float32(i) / 50}
	}
	idx := NewMemoryIndex(&fakeEmbedder{vectors: vectors})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := idx.AddDocuments([]domain.Chunk{chunkOf(texts[i], texts[i])}); err != nil {
				t.Error(err)
			}
		}(i)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := idx.Retrieve("query", 5, 0.75); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	if stats := idx.Stats(); stats.TotalChunks != 50 {
		t.Errorf("expected 50 chunks after concurrent adds, got %d", stats.TotalChunks)
	}
}

func TestStats(t *testing.T) {
	emb := &fakeEmbedder{vectors: map[string][]float32{
		"aaaa": {1, 0},
		"bb":   {0, 1},
	}}
	idx := NewMemoryIndex(emb)

	chunks := []domain.Chunk{chunkOf("1", "aaaa"), chunkOf("2", "bb")}
	if err := idx.AddDocuments(chunks); err != nil {
		t.Fatal(err)
	}

	stats := idx.Stats()
	if stats.TotalChunks != 2 {
		t.Errorf("expected 2 chunks, got %d", stats.TotalChunks)
	}
	if stats.TotalDocs != 2 {
		t.Errorf("expected 2 docs, got %d", stats.TotalDocs)
	}
	if stats.AvgChunkLen != 3 {
		t.Errorf("expected avg chunk len 3, got %.1f", stats.AvgChunkLen)
	}
}
