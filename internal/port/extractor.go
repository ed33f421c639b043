package port

// Segment is one extracted piece of a document container, with its page.
type Segment struct {
	Text string
	Page int
}

// Extractor turns raw container bytes (PDF, plain text) into text segments.
type Extractor interface {
	Extract(data []byte) ([]Segment, error)
}
