package chat

import "time"

// Exchange is one stored question/answer pair of a chat session.
type Exchange struct {
	id          int64
	sessionID   string
	userMessage string
	botReply    string
	createdAt   time.Time
}

// NewExchange creates an Exchange ready to be stored.
func NewExchange(sessionID, userMessage, botReply string) Exchange {
	return Exchange{sessionID: sessionID, userMessage: userMessage, botReply: botReply}
}

// Reconstruct creates an Exchange from storage.
func Reconstruct(id int64, sessionID, userMessage, botReply string, createdAt time.Time) Exchange {
	return Exchange{id: id, sessionID: sessionID, userMessage: userMessage, botReply: botReply, createdAt: createdAt}
}

// ID returns the storage identifier.
func (e *Exchange) ID() int64 { return e.id }

// SessionID returns the client session the exchange belongs to.
func (e *Exchange) SessionID() string { return e.sessionID }

// UserMessage returns the user's question.
func (e *Exchange) UserMessage() string { return e.userMessage }

// BotReply returns the assistant's answer.
func (e *Exchange) BotReply() string { return e.botReply }

// CreatedAt returns the storage timestamp.
func (e *Exchange) CreatedAt() time.Time { return e.createdAt }

// Reply is the outcome of answering one chat message.
type Reply struct {
	SessionID string
	Text      string
	// Sources are display previews of the retrieved documents.
	Sources []string
	// Context holds the full retrieved documents passed to the model.
	Context []string
}
