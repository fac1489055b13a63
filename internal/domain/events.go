package domain

import "time"

// Event types delivered to the status-reporting collaborator.
const (
	EventTypeTransferSettled  = "transfer.settled"
	EventTypeTransferBlocked  = "transfer.blocked"
	EventTypeTransferRejected = "transfer.rejected"
)

// OutboxEvent is an outbound status event written in the same
// transaction as the mutation it reports, then delivered by the result
// publisher.
type OutboxEvent struct {
	ID          string
	TransferID  string
	EventType   string
	Payload     map[string]any
	CreatedAt   time.Time
	PublishedAt *time.Time
	Published   bool
}

// ResultEvent is the payload shape for transfer status events.
type ResultEvent struct {
	TransferID   string `json:"transfer_id"`
	MessageID    string `json:"message_id"`
	Status       string `json:"status"`
	ErrorCode    string `json:"error_code,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}
