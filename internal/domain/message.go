package domain

import "time"

// TimestampLayout is the layout history and record timestamps are stored in.
const TimestampLayout = time.DateTime

// FallbackResponse is returned when no intent matches a message.
const FallbackResponse = "I'm sorry, I don't understand that."

// IncomingMessage is a single user message addressed to a house.
type IncomingMessage struct {
	TenantID   TenantID
	UserID     string
	Text       string
	ReceivedAt time.Time
}

// HistoryRecord is one entry of a house's chat history.
type HistoryRecord struct {
	UserID    string `json:"username"`
	Text      string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// NewHistoryRecord builds the record stored for msg.
func NewHistoryRecord(msg IncomingMessage) HistoryRecord {
	return HistoryRecord{
		UserID:    msg.UserID,
		Text:      msg.Text,
		Timestamp: msg.ReceivedAt.Format(TimestampLayout),
	}
}

// MatchResult is the outcome of routing one message.
type MatchResult struct {
	Response string   `json:"response"`
	Language Language `json:"language"`
}
