package domain

type Document struct {
	ID     string
	Source string
	Page   int
	Text   string
}

// Chunk is a bounded substring of a source document prepared for embedding.
// StartOffset and Length address the document text; chunks are never mutated
// after creation.
type Chunk struct {
	ID          string
	DocID       string
	Source      string
	Page        int
	StartOffset int
	Length      int
	Text        string
}

// EmbeddedChunk pairs a chunk with its vector. All vectors held by one index
// share the same dimension.
type EmbeddedChunk struct {
	Chunk  Chunk
	Vector []float32
}

type ScoredChunk struct {
	Chunk Chunk
	Score float64
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Conversation carries the state of one pipeline invocation: the message
// history, the optional search-optimized restatement of the latest question,
// and the retrieved context in rank order (best first).
type Conversation struct {
	Messages         []Message
	RephrasedQuery   string
	RetrievedContext []Chunk
}

// LastUserMessage returns the content of the most recent user message, or ""
// if the conversation holds none.
func (c *Conversation) LastUserMessage() string {
	for i := len(c.Messages) - 1; i >= 0; i-- {
		if c.Messages[i].Role == RoleUser {
			return c.Messages[i].Content
		}
	}
	return ""
}

type Stats struct {
	TotalDocs   int
	TotalChunks int
	AvgChunkLen float64
}
