package services

import "context"

const (
	EventQuestionCreated = "question_created"
	EventQuestionUpdated = "question_updated"
	EventQuestionDeleted = "question_deleted"
)

// Event is the message sent to change-feed subscribers. Payload is a
// QuestionResponse for create/update and a DeletedPayload for delete.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type DeletedPayload struct {
	ID uint `json:"id"`
}

// EventPublisher receives question changes after they have been committed.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}
