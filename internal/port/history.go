package port

import "docchat/internal/domain"

// HistoryStore persists the chat transcript across process restarts.
type HistoryStore interface {
	AppendMessage(msg domain.Message) error

	ListMessages() ([]domain.Message, error)

	Clear() error

	Close() error
}
