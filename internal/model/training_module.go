package model

import (
	"time"

	"gorm.io/datatypes"
)

type TrainingModule struct {
	BaseModel
	Title           string         `gorm:"size:255;not null" json:"title"`
	Description     string         `gorm:"type:text" json:"description"`
	Category        string         `gorm:"size:100;index" json:"category"`
	OrderIndex      int            `gorm:"default:0;index" json:"orderIndex"`
	DurationMinutes int            `gorm:"default:0" json:"durationMinutes"`
	VideoURL        string         `gorm:"size:500" json:"videoUrl,omitempty"`
	Questions       []QuizQuestion `gorm:"foreignKey:ModuleID" json:"-"`
}

func (TrainingModule) TableName() string {
	return "training_modules"
}

// ModuleProgress is keyed by (UserID, ModuleID).
type ModuleProgress struct {
	BaseModel
	UserID               uint       `gorm:"not null;uniqueIndex:idx_progress_user_module" json:"userId"`
	ModuleID             uint       `gorm:"not null;uniqueIndex:idx_progress_user_module;index" json:"moduleId"`
	Completed            bool       `gorm:"default:false" json:"completed"`
	CompletionPercentage int        `gorm:"default:0" json:"completionPercentage"`
	CompletedAt          *time.Time `json:"completedAt,omitempty"`
}

func (ModuleProgress) TableName() string {
	return "module_progress"
}

type QuizQuestion struct {
	BaseModel
	ModuleID      uint                        `gorm:"not null;index" json:"moduleId"`
	Position      int                         `gorm:"default:0" json:"position"`
	Prompt        string                      `gorm:"type:text;not null" json:"prompt"`
	Options       datatypes.JSONSlice[string] `json:"options"`
	CorrectAnswer string                      `gorm:"size:500;not null" json:"-"`
}

func (QuizQuestion) TableName() string {
	return "quiz_questions"
}

// QuizResponse is an append-only record of one submitted attempt.
type QuizResponse struct {
	BaseModel
	UserID     uint                     `gorm:"not null;index" json:"userId"`
	ModuleID   uint                     `gorm:"not null;index" json:"moduleId"`
	Score      int                      `json:"score"`
	Total      int                      `json:"total"`
	Percentage int                      `json:"percentage"`
	Passed     bool                     `json:"passed"`
	Answers    datatypes.JSONSlice[int] `json:"answers"`
}

func (QuizResponse) TableName() string {
	return "quiz_responses"
}
