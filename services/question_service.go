package services

import (
	"context"
	"fmt"
	"log"

	"questionbank/models"

	"gorm.io/gorm"
)

type QuestionService struct {
	db     *gorm.DB
	events EventPublisher
}

// NewQuestionService wires the service to a store handle. events may be nil,
// in which case no change events are emitted.
func NewQuestionService(db *gorm.DB, events EventPublisher) *QuestionService {
	return &QuestionService{
		db:     db,
		events: events,
	}
}

type ChoiceRequest struct {
	ChoiceText *string `json:"choice_text" binding:"required" example:"4"`
	IsCorrect  *bool   `json:"is_correct" binding:"required" example:"true"`
}

type QuestionRequest struct {
	QuestionText *string         `json:"question_text" binding:"required" example:"2+2=?"`
	Choices      []ChoiceRequest `json:"choices" binding:"required,dive"`
}

func (r *QuestionRequest) text() string {
	if r.QuestionText == nil {
		return ""
	}
	return *r.QuestionText
}

type ChoiceResponse struct {
	ChoiceText string `json:"choice_text" example:"4"`
	IsCorrect  bool   `json:"is_correct" example:"true"`
}

type QuestionResponse struct {
	ID           uint             `json:"id" example:"1"`
	QuestionText string           `json:"question_text" example:"2+2=?"`
	Choices      []ChoiceResponse `json:"choices"`
}

func (s *QuestionService) CreateQuestion(ctx context.Context, req *QuestionRequest) (*QuestionResponse, error) {
	var question models.Question
	var choices []models.Choice

	err := s.withTx(ctx, func(store questionStore) error {
		question = models.Question{QuestionText: req.text()}
		if err := store.insertQuestion(&question); err != nil {
			return fmt.Errorf("insert question: %w", err)
		}

		created, err := insertChoices(store, question.ID, req.Choices)
		if err != nil {
			return err
		}
		choices = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp := toResponse(question, choices)
	s.publish(ctx, EventQuestionCreated, resp)
	return resp, nil
}

func (s *QuestionService) GetQuestion(ctx context.Context, id uint) (*QuestionResponse, error) {
	store := questionStore{db: s.db.WithContext(ctx)}

	question, err := store.getQuestionByID(id)
	if err != nil {
		return nil, err
	}

	choices, err := store.listChoicesByQuestionIDs(question.ID)
	if err != nil {
		return nil, fmt.Errorf("list choices: %w", err)
	}

	return toResponse(*question, choices), nil
}

// ListQuestions returns up to limit questions after skipping skip, ordered
// by id.
func (s *QuestionService) ListQuestions(ctx context.Context, skip, limit int) ([]QuestionResponse, error) {
	store := questionStore{db: s.db.WithContext(ctx)}

	questions, err := store.listQuestionsPaged(skip, limit)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}

	ids := make([]uint, 0, len(questions))
	for _, q := range questions {
		ids = append(ids, q.ID)
	}

	choices, err := store.listChoicesByQuestionIDs(ids...)
	if err != nil {
		return nil, fmt.Errorf("list choices: %w", err)
	}

	byQuestion := make(map[uint][]models.Choice, len(questions))
	for _, c := range choices {
		byQuestion[c.QuestionID] = append(byQuestion[c.QuestionID], c)
	}

	result := make([]QuestionResponse, 0, len(questions))
	for _, q := range questions {
		result = append(result, *toResponse(q, byQuestion[q.ID]))
	}
	return result, nil
}

// UpdateQuestion overwrites the question text and replaces its whole choice
// set with req.Choices.
func (s *QuestionService) UpdateQuestion(ctx context.Context, id uint, req *QuestionRequest) (*QuestionResponse, error) {
	var question *models.Question
	var choices []models.Choice

	err := s.withTx(ctx, func(store questionStore) error {
		existing, err := store.getQuestionByID(id)
		if err != nil {
			return err
		}
		question = existing

		if err := store.updateQuestionText(id, req.text()); err != nil {
			return fmt.Errorf("update question: %w", err)
		}
		question.QuestionText = req.text()

		if err := store.deleteChoicesByQuestionID(id); err != nil {
			return fmt.Errorf("delete choices: %w", err)
		}

		if _, err := insertChoices(store, id, req.Choices); err != nil {
			return err
		}

		choices, err = store.listChoicesByQuestionIDs(id)
		if err != nil {
			return fmt.Errorf("list choices: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp := toResponse(*question, choices)
	s.publish(ctx, EventQuestionUpdated, resp)
	return resp, nil
}

// DeleteQuestion removes the question's choices and then the question.
func (s *QuestionService) DeleteQuestion(ctx context.Context, id uint) error {
	err := s.withTx(ctx, func(store questionStore) error {
		if _, err := store.getQuestionByID(id); err != nil {
			return err
		}

		if err := store.deleteChoicesByQuestionID(id); err != nil {
			return fmt.Errorf("delete choices: %w", err)
		}

		if err := store.deleteQuestionByID(id); err != nil {
			return fmt.Errorf("delete question: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.publish(ctx, EventQuestionDeleted, DeletedPayload{ID: id})
	return nil
}

// withTx runs fn inside a single transaction. It commits when fn returns nil
// and rolls back on error or panic; either way the connection goes back to
// the pool.
func (s *QuestionService) withTx(ctx context.Context, fn func(store questionStore) error) error {
	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("begin transaction: %w", tx.Error)
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(questionStore{db: tx}); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (s *QuestionService) publish(ctx context.Context, eventType string, payload interface{}) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, Event{Type: eventType, Payload: payload}); err != nil {
		log.Printf("Failed to publish %s event: %v", eventType, err)
	}
}

func insertChoices(store questionStore, questionID uint, reqs []ChoiceRequest) ([]models.Choice, error) {
	choices := make([]models.Choice, 0, len(reqs))
	for _, cReq := range reqs {
		choice := models.Choice{
			QuestionID: questionID,
		}
		if cReq.ChoiceText != nil {
			choice.ChoiceText = *cReq.ChoiceText
		}
		if cReq.IsCorrect != nil {
			choice.IsCorrect = *cReq.IsCorrect
		}

		if err := store.insertChoice(&choice); err != nil {
			return nil, fmt.Errorf("insert choice: %w", err)
		}
		choices = append(choices, choice)
	}
	return choices, nil
}

func toResponse(question models.Question, choices []models.Choice) *QuestionResponse {
	resp := &QuestionResponse{
		ID:           question.ID,
		QuestionText: question.QuestionText,
		Choices:      make([]ChoiceResponse, 0, len(choices)),
	}
	for _, c := range choices {
		resp.Choices = append(resp.Choices, ChoiceResponse{
			ChoiceText: c.ChoiceText,
			IsCorrect:  c.IsCorrect,
		})
	}
	return resp
}
