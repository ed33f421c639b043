package usecase

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"

	"docchat/internal/domain"
	"docchat/internal/port"
)

// Ingestor drives the ingestion path: extract, chunk, index.
type Ingestor struct {
	extractor port.Extractor
	chunker   port.Chunker
	index     port.VectorIndex
}

func NewIngestor(extractor port.Extractor, chunker port.Chunker, index port.VectorIndex) *Ingestor {
	return &Ingestor{
		extractor: extractor,
		chunker:   chunker,
		index:     index,
	}
}

// IngestResult contains the results of one ingestion.
type IngestResult struct {
	Segments int
	Chunks   int
}

// IngestBytes extracts segments from raw container bytes, splits them and
// adds every chunk to the index in a single batch, so a failed embedding
// leaves the index exactly as it was. Extraction and indexing failures are
// fatal to the invocation. onProgress, if non-nil, receives per-segment
// chunking progress.
func (u *Ingestor) IngestBytes(source string, data []byte, onProgress func(done, total int)) (*IngestResult, error) {
	segments, err := u.extractor.Extract(data)
	if err != nil {
		return nil, fmt.Errorf("extraction failed: %w", err)
	}

	var allChunks []domain.Chunk
	for i, seg := range segments {
		doc := domain.Document{
			ID:     generateDocID(source, seg.Page),
			Source: source,
			Page:   seg.Page,
			Text:   seg.Text,
		}
		allChunks = append(allChunks, u.chunker.Split(doc)...)

		if onProgress != nil {
			onProgress(i+1, len(segments))
		}
	}

	if err := u.index.AddDocuments(allChunks); err != nil {
		return nil, fmt.Errorf("indexing failed: %w", err)
	}

	return &IngestResult{
		Segments: len(segments),
		Chunks:   len(allChunks),
	}, nil
}

// IngestFile reads and ingests a single file.
func (u *Ingestor) IngestFile(path string, onProgress func(done, total int)) (*IngestResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return u.IngestBytes(path, data, onProgress)
}

// generateDocID creates a stable ID for one page of a source.
func generateDocID(source string, page int) string {
	data := fmt.Sprintf("%s:%d", source, page)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:8])
}
