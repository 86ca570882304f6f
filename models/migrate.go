package models

import "gorm.io/gorm"

// AutoMigrate creates the questions and choices tables, including the
// choices.question_id foreign key.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&Question{}, &Choice{})
}
