package services

import (
	"errors"

	"questionbank/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrQuestionNotFound = errors.New("question not found")

// questionStore runs single statements against whatever session it wraps:
// a request-scoped *gorm.DB or an open transaction.
type questionStore struct {
	db *gorm.DB
}

func (s questionStore) insertQuestion(question *models.Question) error {
	return s.db.Omit(clause.Associations).Create(question).Error
}

func (s questionStore) insertChoice(choice *models.Choice) error {
	return s.db.Create(choice).Error
}

func (s questionStore) getQuestionByID(id uint) (*models.Question, error) {
	var question models.Question
	err := s.db.Where("id = ?", id).First(&question).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrQuestionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &question, nil
}

// listChoicesByQuestionIDs fetches the choices of every given question in
// one query, ordered by id.
func (s questionStore) listChoicesByQuestionIDs(questionIDs ...uint) ([]models.Choice, error) {
	choices := []models.Choice{}
	if len(questionIDs) == 0 {
		return choices, nil
	}
	err := s.db.Where("question_id IN ?", questionIDs).
		Order("id").
		Find(&choices).Error
	return choices, err
}

func (s questionStore) listQuestionsPaged(skip, limit int) ([]models.Question, error) {
	questions := []models.Question{}
	err := s.db.Order("id").
		Offset(skip).
		Limit(limit).
		Find(&questions).Error
	return questions, err
}

func (s questionStore) updateQuestionText(id uint, text string) error {
	return s.db.Model(&models.Question{}).
		Where("id = ?", id).
		Update("question_text", text).Error
}

func (s questionStore) deleteChoicesByQuestionID(questionID uint) error {
	return s.db.Where("question_id = ?", questionID).Delete(&models.Choice{}).Error
}

func (s questionStore) deleteQuestionByID(id uint) error {
	return s.db.Delete(&models.Question{}, id).Error
}
