package usecase

import (
	"fmt"
	"log/slog"
	"strings"

	"docchat/internal/domain"
	"docchat/internal/port"
)

// pipelineStage enumerates the states of one answering invocation.
type pipelineStage int

const (
	stageStart pipelineStage = iota
	stageRephrasing
	stageRetrieving
	stageGenerating
	stageDone
)

func (s pipelineStage) String() string {
	switch s {
	case stageStart:
		return "start"
	case stageRephrasing:
		return "rephrasing"
	case stageRetrieving:
		return "retrieving"
	case stageGenerating:
		return "generating"
	case stageDone:
		return "done"
	}
	return "unknown"
}

const rephrasePrompt = `You rewrite questions for document search.
Given a conversation and its latest question, produce a single concise,
self-contained restatement of the question optimized for semantic search.
Resolve pronouns and references using the conversation. Output ONLY the
restated question, nothing else.`

// Pipeline owns the collaborators of the answering state machine. One
// Pipeline serves many invocations; each invocation drives its own
// Conversation strictly sequentially through the stages.
type Pipeline struct {
	llm             port.LLM
	index           port.VectorIndex
	topK            int
	diversityWeight float64
	log             *slog.Logger
}

func NewPipeline(llm port.LLM, index port.VectorIndex, topK int, diversityWeight float64, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		llm:             llm,
		index:           index,
		topK:            topK,
		diversityWeight: diversityWeight,
		log:             logger,
	}
}

// route returns the stage that follows current. The Start arm is a genuine
// decision point kept for future routing even though it has a single
// successor today; callers must not assume a fixed linear chain.
func (p *Pipeline) route(current pipelineStage) pipelineStage {
	switch current {
	case stageStart:
		return stageRephrasing
	case stageRephrasing:
		return stageRetrieving
	case stageRetrieving:
		return stageGenerating
	default:
		return stageDone
	}
}

// Answer runs one pipeline invocation: rephrase, retrieve, generate. Rephrase
// and retrieve failures degrade (raw query, empty context) and are logged;
// a generation failure is fatal to the invocation and propagates. The new
// assistant message is appended to the conversation only after generation
// succeeds.
func (p *Pipeline) Answer(conv *domain.Conversation) (domain.Message, error) {
	question := conv.LastUserMessage()
	if question == "" {
		return domain.Message{}, fmt.Errorf("conversation has no user message")
	}

	var reply domain.Message

	for stage := p.route(stageStart); stage != stageDone; stage = p.route(stage) {
		switch stage {
		case stageRephrasing:
			p.rephrase(conv)
		case stageRetrieving:
			p.retrieve(conv)
		case stageGenerating:
			msg, err := p.generate(conv)
			if err != nil {
				return domain.Message{}, fmt.Errorf("generation failed: %w", err)
			}
			reply = msg
		}
	}

	conv.Messages = append(conv.Messages, reply)
	return reply, nil
}

// rephrase asks the model for a search-optimized restatement of the latest
// question. On failure the conversation keeps no rephrased query and the
// retrieval stage falls back to the raw question.
func (p *Pipeline) rephrase(conv *domain.Conversation) {
	userPrompt := formatHistory(conv.Messages) + "\n\nLatest question: " + conv.LastUserMessage()

	restated, err := p.llm.GenerateWithSystem(rephrasePrompt, userPrompt)
	if err != nil {
		p.log.Warn("rephrase failed, falling back to raw question", "error", err)
		return
	}

	restated = firstLine(restated)
	if restated == "" {
		p.log.Warn("rephrase produced empty output, falling back to raw question")
		return
	}

	conv.RephrasedQuery = restated
}

// retrieve fills the conversation's context from the index. A retrieval
// fault degrades to empty context; an empty index is not a fault at all.
func (p *Pipeline) retrieve(conv *domain.Conversation) {
	query := conv.RephrasedQuery
	if query == "" {
		query = conv.LastUserMessage()
	}

	results, err := p.index.Retrieve(query, p.topK, p.diversityWeight)
	if err != nil {
		p.log.Warn("retrieval failed, continuing with empty context", "error", err)
		conv.RetrievedContext = nil
		return
	}

	// Preserve retrieval rank order through to prompt construction.
	chunks := make([]domain.Chunk, len(results))
	for i, r := range results {
		chunks[i] = r.Chunk
	}
	conv.RetrievedContext = chunks
}

// generate produces the assistant message. The grounded and general prompts
// are separate templates: an empty context selects a genuinely conversational
// system prompt rather than a grounded prompt with a hole in it.
func (p *Pipeline) generate(conv *domain.Conversation) (domain.Message, error) {
	systemPrompt, err := renderSystemPrompt(conv.RetrievedContext)
	if err != nil {
		return domain.Message{}, err
	}

	userPrompt := conv.LastUserMessage()
	if len(conv.Messages) > 1 {
		userPrompt = formatHistory(conv.Messages[:len(conv.Messages)-1]) +
			"\n\nQuestion: " + conv.LastUserMessage()
	}

	answer, err := p.llm.GenerateWithSystem(systemPrompt, userPrompt)
	if err != nil {
		return domain.Message{}, err
	}

	return domain.Message{
		Role:    domain.RoleAssistant,
		Content: strings.TrimSpace(answer),
	}, nil
}

// formatHistory renders prior messages as a plain transcript.
func formatHistory(messages []domain.Message) string {
	if len(messages) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("Conversation so far:")
	for _, m := range messages {
		sb.WriteString("\n")
		sb.WriteString(string(m.Role))
		sb.WriteString(": ")
		sb.WriteString(m.Content)
	}
	return sb.String()
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[:idx]
	}
	return strings.Trim(s, `"' `)
}
