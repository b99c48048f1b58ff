package model

import "time"

type Certification struct {
	BaseModel
	UserID      uint       `gorm:"not null;index" json:"userId"`
	Name        string     `gorm:"size:255;not null" json:"name"`
	Issuer      string     `gorm:"size:255" json:"issuer"`
	IssuedAt    time.Time  `json:"issuedAt"`
	ExpiresAt   *time.Time `gorm:"index" json:"expiresAt,omitempty"`
	DocumentURL string     `gorm:"size:500" json:"documentUrl,omitempty"`
}

func (Certification) TableName() string {
	return "certifications"
}
