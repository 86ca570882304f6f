package models

type Question struct {
	ID           uint   `json:"id" gorm:"primaryKey"`
	QuestionText string `json:"question_text" gorm:"not null"`

	// Relationships
	Choices []Choice `json:"choices,omitempty" gorm:"foreignKey:QuestionID"`
}
