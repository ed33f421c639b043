// Package worker implements the message protocol spoken across the process
// boundary: inbound embed/query requests, outbound init_progress, log,
// complete and error events. The handler is transport-agnostic; cmd wiring
// supplies stdio or js transports around it.
package worker

import (
	"fmt"
	"log/slog"
	"sync"

	"docchat/internal/domain"
	"docchat/internal/port"
	"docchat/internal/usecase"
)

// Kind tags protocol messages. The inbound set is closed: anything outside
// embed/query produces exactly one error event, never a silent drop.
type Kind string

const (
	KindEmbed Kind = "embed"
	KindQuery Kind = "query"

	KindInitProgress Kind = "init_progress"
	KindLog          Kind = "log"
	KindComplete     Kind = "complete"
	KindError        Kind = "error"
)

// Request is one inbound protocol message.
type Request struct {
	Type     string           `json:"type"`
	Source   string           `json:"source,omitempty"`
	Payload  []byte           `json:"payload,omitempty"`
	Messages []domain.Message `json:"messages,omitempty"`
}

// Event is one outbound protocol message. Percent is never omitted so a 0%
// init_progress event still carries the field on the wire.
type Event struct {
	Type    Kind            `json:"type"`
	Percent int             `json:"percent"`
	Data    string          `json:"data,omitempty"`
	Message *domain.Message `json:"message,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// EmitFunc receives outbound events in order.
type EmitFunc func(Event)

// Worker dispatches protocol requests onto the ingestion and answering
// usecases. Each Handle call emits exactly one terminal complete or error
// event, possibly preceded by init_progress and log events.
type Worker struct {
	ingestor *usecase.Ingestor
	pipeline *usecase.Pipeline
	llm      port.LLM
	log      *slog.Logger

	loadOnce sync.Once
	loadErr  error
}

func New(ingestor *usecase.Ingestor, pipeline *usecase.Pipeline, llm port.LLM, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{
		ingestor: ingestor,
		pipeline: pipeline,
		llm:      llm,
		log:      logger,
	}
}

// Handle dispatches one request. Unrecognized kinds fall through to the
// error arm without touching the index or any conversation state.
func (w *Worker) Handle(req Request, emit EmitFunc) {
	switch Kind(req.Type) {
	case KindEmbed:
		w.handleEmbed(req, emit)
	case KindQuery:
		w.handleQuery(req, emit)
	default:
		w.log.Error("unknown request kind", "kind", req.Type)
		emit(Event{Type: KindError, Error: fmt.Sprintf("unknown request kind: %q", req.Type)})
	}
}

func (w *Worker) handleEmbed(req Request, emit EmitFunc) {
	if len(req.Payload) == 0 {
		emit(Event{Type: KindError, Error: "embed request carries no payload"})
		return
	}

	source := req.Source
	if source == "" {
		source = "upload"
	}

	result, err := w.ingestor.IngestBytes(source, req.Payload, func(done, total int) {
		emit(Event{Type: KindLog, Data: fmt.Sprintf("chunked segment %d/%d", done, total)})
	})
	if err != nil {
		emit(Event{Type: KindError, Error: err.Error()})
		return
	}

	msg := domain.Message{
		Role:    domain.RoleSystem,
		Content: fmt.Sprintf("Indexed %d chunks from %d segments of %s.", result.Chunks, result.Segments, source),
	}
	emit(Event{Type: KindComplete, Message: &msg})
}

func (w *Worker) handleQuery(req Request, emit EmitFunc) {
	if len(req.Messages) == 0 {
		emit(Event{Type: KindError, Error: "query request carries no messages"})
		return
	}

	if err := w.ensureLoaded(emit); err != nil {
		emit(Event{Type: KindError, Error: fmt.Sprintf("model load failed: %v", err)})
		return
	}

	conv := &domain.Conversation{Messages: req.Messages}
	msg, err := w.pipeline.Answer(conv)
	if err != nil {
		emit(Event{Type: KindError, Error: err.Error()})
		return
	}

	emit(Event{Type: KindComplete, Message: &msg})
}

// ensureLoaded performs the one-time model initialization before the first
// generation, forwarding load percentages as init_progress events. Advisory
// only; there is no cancellation.
func (w *Worker) ensureLoaded(emit EmitFunc) error {
	loader, ok := w.llm.(port.ModelLoader)
	if !ok {
		return nil
	}

	w.loadOnce.Do(func() {
		w.loadErr = loader.Load(func(percent int) {
			emit(Event{Type: KindInitProgress, Percent: percent})
		})
	})
	return w.loadErr
}
