package model

import (
	"gorm.io/gorm"

	"realty_backend/internal/listing"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAgent Role = "agent"
	RoleAdmin Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAgent || r == RoleAdmin
}

type User struct {
	gorm.Model
	Email    string `json:"email" gorm:"uniqueIndex;not null"`
	Password string `json:"-" gorm:"not null"`
	Name     string `json:"name" gorm:"not null"`
	Role     Role   `json:"role" gorm:"not null;default:'user';index"`

	// Optional profile fields, edited from settings
	Phone      string `json:"phone"`
	Location   string `json:"location"`
	Avatar     string `json:"avatar"`
	Bio        string `json:"bio" gorm:"type:text"`
	Experience int    `json:"experience"`

	Properties []Property `json:"-" gorm:"foreignKey:AgentID"`
}

func (u *User) IsAgent() bool {
	return u.Role == RoleAgent
}

func (u *User) GetPublicProfile() map[string]interface{} {
	return map[string]interface{}{
		"id":         u.ID,
		"name":       u.Name,
		"email":      u.Email,
		"role":       u.Role,
		"phone":      u.Phone,
		"location":   u.Location,
		"avatar":     u.Avatar,
		"bio":        u.Bio,
		"experience": u.Experience,
	}
}

// ToAgent converts an agent row into a directory entry.
func (u *User) ToAgent(listings int) listing.Agent {
	return listing.Agent{
		ID:         u.ID,
		Name:       u.Name,
		Location:   u.Location,
		Email:      u.Email,
		Phone:      u.Phone,
		Avatar:     u.Avatar,
		Experience: u.Experience,
		Listings:   listings,
	}
}
