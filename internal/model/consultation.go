package model

const (
	ConsultationRoleUser      = "user"
	ConsultationRoleAssistant = "assistant"
)

// ConsultationSession is one AI consultant chat opened by a technician.
type ConsultationSession struct {
	UUIDBase
	UserID uint   `gorm:"not null;index" json:"userId"`
	Topic  string `gorm:"size:255" json:"topic"`
}

func (ConsultationSession) TableName() string {
	return "consultation_sessions"
}

type ConsultationMessage struct {
	BaseModel
	SessionID string `gorm:"type:varchar(36);not null;index" json:"sessionId"`
	Role      string `gorm:"size:20;not null" json:"role"`
	Content   string `gorm:"type:text;not null" json:"content"`
}

func (ConsultationMessage) TableName() string {
	return "consultation_messages"
}
