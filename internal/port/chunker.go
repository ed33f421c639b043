package port

import "docchat/internal/domain"

type Chunker interface {
	Split(doc domain.Document) []domain.Chunk
}
