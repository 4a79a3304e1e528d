package profile

import "time"

type Level string

const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
)

type ClientProfile struct {
	UserID                int       `db:"user_id" json:"user_id"`
	Phone                 string    `db:"phone" json:"phone"`
	EmergencyContactName  string    `db:"emergency_contact_name" json:"emergency_contact_name"`
	EmergencyContactPhone string    `db:"emergency_contact_phone" json:"emergency_contact_phone"`
	Level                 Level     `db:"level" json:"level"`
	PrimaryTrainerID      *int      `db:"primary_trainer_id" json:"primary_trainer_id,omitempty"`
	CreatedAt             time.Time `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time `db:"updated_at" json:"updated_at"`
}

type TrainerProfile struct {
	ID           int       `db:"id" json:"id"`
	UserID       int       `db:"user_id" json:"user_id"`
	DisplayName  string    `db:"display_name" json:"display_name"`
	Bio          string    `db:"bio" json:"bio"`
	Specialties  string    `db:"specialties" json:"specialties"`
	InstagramURL string    `db:"instagram_url" json:"instagram_url"`
	WebsiteURL   string    `db:"website_url" json:"website_url"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// UpdateClientRequest patches the caller's own profile. Omitted fields are
// left unchanged.
type UpdateClientRequest struct {
	Phone                 *string `json:"phone" binding:"omitempty,max=30"`
	EmergencyContactName  *string `json:"emergency_contact_name" binding:"omitempty,max=100"`
	EmergencyContactPhone *string `json:"emergency_contact_phone" binding:"omitempty,max=30"`
	Level                 *Level  `json:"level" binding:"omitempty,oneof=beginner intermediate advanced"`
}

type CreateTrainerRequest struct {
	UserID       int    `json:"user_id" binding:"required,min=1"`
	DisplayName  string `json:"display_name" binding:"max=100"`
	Bio          string `json:"bio"`
	Specialties  string `json:"specialties" binding:"max=255"`
	InstagramURL string `json:"instagram_url" binding:"omitempty,url"`
	WebsiteURL   string `json:"website_url" binding:"omitempty,url"`
}

// AssignTrainerRequest sets or clears (null) a client's primary trainer.
type AssignTrainerRequest struct {
	TrainerID *int `json:"trainer_id" binding:"omitempty,min=1"`
}
