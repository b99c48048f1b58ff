package model

import "time"

// CompetencyRecord is an append-only scored assessment. ModuleID is the explicit link to a
// training module; records created before the link existed only carry a competency name.
type CompetencyRecord struct {
	BaseModel
	UserID     uint      `gorm:"not null;index" json:"userId"`
	ModuleID   *uint     `gorm:"index" json:"moduleId,omitempty"`
	Competency string    `gorm:"size:255;not null" json:"competency"`
	Score      int       `gorm:"not null" json:"score"`
	AssessedAt time.Time `gorm:"index" json:"assessedAt"`
	Notes      string    `gorm:"type:text" json:"notes,omitempty"`
}

func (CompetencyRecord) TableName() string {
	return "competency_records"
}
