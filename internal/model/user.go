package model

import (
	"time"
)

type UserRole string

const (
	Technician UserRole = "technician"
	Manager    UserRole = "manager"
)

// swagger:model User
type User struct {
	BaseModel
	Name       string     `gorm:"size:100;not null" json:"name"`
	Email      string     `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Password   string     `gorm:"size:100;not null" json:"-"`
	Role       UserRole   `gorm:"size:20;not null;default:technician;index" json:"role"`
	GroupID    *uint      `gorm:"index" json:"groupId,omitempty"`
	LastLogin  *time.Time `json:"lastLogin,omitempty"`
	LastSeenAt *time.Time `json:"lastSeenAt,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// TeamGroup is a pharmacy site or shift that technicians are assigned to.
type TeamGroup struct {
	BaseModel
	Name string `gorm:"size:100;uniqueIndex;not null" json:"name"`
}

func (TeamGroup) TableName() string {
	return "team_groups"
}
