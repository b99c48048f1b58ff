package model

import (
	"time"

	"gorm.io/datatypes"
)

type RecommendationKind string

const (
	KindIndividualCoaching RecommendationKind = "individual_coaching"
	KindPositiveTrend      RecommendationKind = "positive_trend"
	KindReviewTraining     RecommendationKind = "review_training"
	KindAssignTraining     RecommendationKind = "assign_training"
	KindInformational      RecommendationKind = "informational"
)

type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Rank orders severities, lower is more urgent.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityHigh:
		return 1
	case SeverityMedium:
		return 2
	default:
		return 3
	}
}

const (
	SourceRule = "rule"
	SourceAI   = "ai"
)

type Recommendation struct {
	BaseModel
	Kind         RecommendationKind `gorm:"size:50;not null;index" json:"kind"`
	Severity     Severity           `gorm:"size:20;not null" json:"severity"`
	Title        string             `gorm:"size:255;not null" json:"title"`
	Message      string             `gorm:"type:text" json:"message"`
	UserID       *uint              `gorm:"index" json:"userId,omitempty"`
	ModuleID     *uint              `gorm:"index" json:"moduleId,omitempty"`
	GroupID      *uint              `gorm:"index" json:"groupId,omitempty"`
	Source       string             `gorm:"size:20;not null;default:rule" json:"source"`
	Metadata     datatypes.JSON     `json:"metadata,omitempty"`
	Acknowledged bool               `gorm:"default:false;index" json:"acknowledged"`
	GeneratedAt  time.Time          `json:"generatedAt"`
}

func (Recommendation) TableName() string {
	return "recommendations"
}
