package models

type Choice struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	ChoiceText string `json:"choice_text" gorm:"not null"`
	IsCorrect  bool   `json:"is_correct" gorm:"not null"`
	QuestionID uint   `json:"question_id" gorm:"not null;index"`
}
